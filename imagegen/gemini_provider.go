package imagegen

import (
	"context"
	"errors"
	"fmt"

	"imagestudio/core"

	"google.golang.org/genai"
)

// GeminiProvider generates images with Google Imagen models through the
// Gemini API.
//
// Imagen takes an aspect ratio rather than pixel dimensions; the requested
// width and height are mapped to the closest supported ratio.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// GeminiProviderConfig holds explicit settings, mainly for tests.
type GeminiProviderConfig struct {
	APIKey  string
	Model   string // default: imagen-3.0-generate-002
	BaseURL string // optional endpoint override
}

const defaultGeminiModel = "imagen-3.0-generate-002"

// NewGeminiProvider creates a provider from application config.
func NewGeminiProvider(ctx context.Context, cfg *core.Config) (*GeminiProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	return NewGeminiProviderWithConfig(ctx, GeminiProviderConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.ModelName,
		BaseURL: cfg.InferenceBaseURL,
	}, cfg)
}

// NewGeminiProviderWithConfig creates a provider with explicit settings.
// coreCfg supplies HTTP client settings and may be nil.
func NewGeminiProviderWithConfig(ctx context.Context, pc GeminiProviderConfig, coreCfg *core.Config) (*GeminiProvider, error) {
	if pc.APIKey == "" {
		return nil, fmt.Errorf("imagegen: Gemini API key is required")
	}
	if pc.Model == "" {
		pc.Model = defaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  pc.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if coreCfg != nil {
		clientCfg.HTTPClient = core.GetInferenceHTTPClient(coreCfg)
	}
	if pc.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: pc.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: pc.Model}, nil
}

// Generate requests a single PNG at the nearest supported aspect ratio.
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	model := modelOrDefault(req, p.model)

	resp, err := p.client.Models.GenerateImages(ctx, model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    AspectRatio(req.Width, req.Height),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, p.wrapError(err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("imagegen: Gemini returned no images")
	}
	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("imagegen: Gemini filtered the image: %s", generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("imagegen: Gemini returned an empty image")
	}

	result, err := DecodeResult(generated.Image.ImageBytes)
	if err != nil {
		return nil, err
	}
	result.Model = model
	return result, nil
}

func (p *GeminiProvider) wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: p.Name(), StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return requestFailed("Gemini", err)
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return core.ProviderGemini }

// Model returns the configured model identifier.
func (p *GeminiProvider) Model() string { return p.model }

var _ Provider = (*GeminiProvider)(nil)
