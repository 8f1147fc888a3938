// Package imagegen talks to remote text-to-image services.
//
// provider.go defines the Provider interface shared by every backend and the
// structured APIError they return for non-2xx responses.
//
// Backends:
//   - HuggingFaceProvider: HuggingFace Inference API (default)
//   - OpenAIProvider: OpenAI-compatible Images API via go-openai
//   - GeminiProvider: Google Imagen models via google.golang.org/genai
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"

	"imagestudio/core"
)

// GenerateRequest is a single text-to-image call.
type GenerateRequest struct {
	Prompt string // Final prompt, style suffix already applied
	Model  string // Overrides the provider's configured model when set
	Width  int
	Height int
}

// GenerateResult is a decoded image plus the bytes the service returned.
type GenerateResult struct {
	Image    image.Image
	Data     []byte
	MIMEType string
	Model    string // Model that served the request
}

// Provider generates one image per call.
//
// Implementations must be safe for concurrent use. The context bounds the
// call; providers also apply their HTTP client's timeout.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Name identifies the backend in logs and the audit trail.
	Name() string

	// Model returns the default model identifier shown on the page.
	Model() string
}

// APIError is a non-2xx response from an inference service.
//
// The message keeps the HTTP status text so callers classifying errors by
// their text ("unauthorized", "rate limit", "model") see it.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	status := http.StatusText(e.StatusCode)
	if status == "" {
		status = "status " + fmt.Sprint(e.StatusCode)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.StatusCode, status)
	}
	return fmt.Sprintf("%s: %d %s: %s", e.Provider, e.StatusCode, status, e.Message)
}

// requestFailed wraps a transport failure (timeout, DNS, refused connection)
// for provider. A *url.Error is reduced to its cause: its text repeats the
// request URL, and HuggingFace URLs contain "/models/", which would read as
// a model problem to callers classifying by message.
func requestFailed(provider string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	return fmt.Errorf("imagegen: %s request failed: %w", provider, err)
}

// NewProviderFromConfig builds the backend selected by INFERENCE_PROVIDER.
//
// Example:
//
//	provider, err := imagegen.NewProviderFromConfig(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	result, err := provider.Generate(ctx, imagegen.GenerateRequest{Prompt: "a cat", Width: 1024, Height: 1024})
func NewProviderFromConfig(ctx context.Context, cfg *core.Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	switch cfg.Provider {
	case core.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case core.ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case core.ProviderHuggingFace, "":
		return NewHuggingFaceProvider(cfg)
	default:
		return nil, fmt.Errorf("imagegen: unknown provider %q", cfg.Provider)
	}
}

func modelOrDefault(req GenerateRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}

func validateRequest(req GenerateRequest) error {
	if req.Prompt == "" {
		return fmt.Errorf("imagegen: prompt cannot be empty")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("imagegen: invalid dimensions %dx%d", req.Width, req.Height)
	}
	return nil
}
