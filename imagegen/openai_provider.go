package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"imagestudio/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for OpenAI-compatible Images APIs
// (DALL-E 2/3, gpt-image-1 and self-hosted servers speaking the same API).
//
// The service only accepts a fixed set of sizes per model, so the requested
// dimensions are mapped to the closest supported size by aspect ratio.
//
// Thread Safety: OpenAIProvider is safe for concurrent use.
// The underlying OpenAI client handles connection pooling.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// OpenAIProviderConfig holds configuration specific to the OpenAI provider.
type OpenAIProviderConfig struct {
	// APIKey is the OpenAI API key (required)
	APIKey string

	// BaseURL is the API endpoint (default: https://api.openai.com/v1)
	BaseURL string

	// Model is the image model to use (default: dall-e-3)
	Model string
}

// NewOpenAIProvider creates a provider from application config.
//
// Example:
//
//	provider, err := NewOpenAIProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := provider.Generate(ctx, GenerateRequest{Prompt: "a sunset over mountains", Width: 1024, Height: 1024})
func NewOpenAIProvider(cfg *core.Config) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	return NewOpenAIProviderWithConfig(OpenAIProviderConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.InferenceBaseURL,
		Model:   cfg.ModelName,
	}, cfg)
}

// NewOpenAIProviderWithConfig creates an OpenAI provider with explicit configuration.
// coreCfg supplies HTTP client settings and may be nil.
func NewOpenAIProviderWithConfig(providerCfg OpenAIProviderConfig, coreCfg *core.Config) (*OpenAIProvider, error) {
	if providerCfg.APIKey == "" {
		return nil, fmt.Errorf("imagegen: OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(providerCfg.APIKey)
	if providerCfg.BaseURL != "" {
		clientConfig.BaseURL = providerCfg.BaseURL
	}
	if coreCfg != nil {
		clientConfig.HTTPClient = core.GetInferenceHTTPClient(coreCfg)
	} else {
		clientConfig.HTTPClient = core.GetHTTPClient(nil, core.DefaultInferenceTimeout)
	}

	model := providerCfg.Model
	if model == "" {
		model = openai.CreateImageModelDallE3
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Generate requests one image as base64 JSON and decodes it.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	model := modelOrDefault(req, p.model)

	imageReq := openai.ImageRequest{
		Prompt: req.Prompt,
		Model:  model,
		Size:   openAISize(model, req.Width, req.Height),
		N:      1,
	}
	// gpt-image models always return base64 and reject response_format
	if !strings.HasPrefix(model, "gpt-image") {
		imageReq.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}
	if model == openai.CreateImageModelDallE3 {
		imageReq.Style = openai.CreateImageStyleVivid
	}

	response, err := p.client.CreateImage(ctx, imageReq)
	if err != nil {
		return nil, p.wrapError(err)
	}

	if len(response.Data) == 0 {
		return nil, fmt.Errorf("imagegen: OpenAI returned empty Data array")
	}
	if response.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("imagegen: OpenAI returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to decode base64 image: %w", err)
	}

	result, err := DecodeResult(data)
	if err != nil {
		return nil, err
	}
	result.Model = model
	return result, nil
}

// wrapError converts go-openai errors carrying an HTTP status into *APIError.
func (p *OpenAIProvider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: p.Name(), StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{Provider: p.Name(), StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return requestFailed("OpenAI", err)
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string { return core.ProviderOpenAI }

// Model returns the configured image model name.
func (p *OpenAIProvider) Model() string { return p.model }

// Ensure OpenAIProvider implements Provider interface at compile time.
var _ Provider = (*OpenAIProvider)(nil)
