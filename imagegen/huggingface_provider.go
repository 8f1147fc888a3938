package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"imagestudio/core"
)

// maxErrorBody caps how much of an error response is read into a message.
const maxErrorBody = 64 << 10

// HuggingFaceProvider calls the HuggingFace Inference API text-to-image task.
//
// Request: POST {baseURL}/models/{model} with
// {"inputs": prompt, "parameters": {"width": w, "height": h}} and a Bearer
// token. The response body is the encoded image; failures carry
// {"error": "..."}.
//
// Thread Safety: safe for concurrent use.
type HuggingFaceProvider struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

// HuggingFaceProviderConfig holds explicit settings, mainly for tests.
type HuggingFaceProviderConfig struct {
	Token      string
	BaseURL    string // default: core.DefaultHuggingFaceURL
	Model      string // default: core.DefaultModelName
	HTTPClient *http.Client
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type hfErrorBody struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// NewHuggingFaceProvider creates a provider from application config.
func NewHuggingFaceProvider(cfg *core.Config) (*HuggingFaceProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	return NewHuggingFaceProviderWithConfig(HuggingFaceProviderConfig{
		Token:      cfg.HuggingFaceToken,
		BaseURL:    cfg.InferenceBaseURL,
		Model:      cfg.ModelName,
		HTTPClient: core.GetInferenceHTTPClient(cfg),
	})
}

// NewHuggingFaceProviderWithConfig creates a provider with explicit settings.
func NewHuggingFaceProviderWithConfig(pc HuggingFaceProviderConfig) (*HuggingFaceProvider, error) {
	if pc.Token == "" {
		return nil, fmt.Errorf("imagegen: HuggingFace token is required")
	}
	if pc.BaseURL == "" {
		pc.BaseURL = core.DefaultHuggingFaceURL
	}
	if pc.Model == "" {
		pc.Model = core.DefaultModelName
	}
	if pc.HTTPClient == nil {
		pc.HTTPClient = core.GetHTTPClient(nil, core.DefaultInferenceTimeout)
	}
	return &HuggingFaceProvider{
		httpClient: pc.HTTPClient,
		baseURL:    strings.TrimRight(pc.BaseURL, "/"),
		token:      pc.Token,
		model:      pc.Model,
	}, nil
}

// Generate posts the prompt and decodes the returned image.
func (p *HuggingFaceProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	model := modelOrDefault(req, p.model)

	body, err := json.Marshal(hfRequest{
		Inputs:     req.Prompt,
		Parameters: hfParameters{Width: req.Width, Height: req.Height},
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to encode request: %w", err)
	}

	endpoint := p.baseURL + "/models/" + escapeModelPath(model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, requestFailed("HuggingFace", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, p.decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to read image: %w", err)
	}

	// Some deployments answer 200 with a JSON error body
	if isJSON(resp.Header.Get("Content-Type")) {
		var eb hfErrorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return nil, &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: eb.Error}
		}
	}

	result, err := DecodeResult(data)
	if err != nil {
		return nil, err
	}
	result.Model = model
	return result, nil
}

func (p *HuggingFaceProvider) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(raw))
	var eb hfErrorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		msg = eb.Error
		if eb.EstimatedTime > 0 {
			msg = fmt.Sprintf("%s (estimated time %.0fs)", msg, eb.EstimatedTime)
		}
	}
	return &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: msg}
}

// Name returns "huggingface".
func (p *HuggingFaceProvider) Name() string { return core.ProviderHuggingFace }

// Model returns the configured model identifier.
func (p *HuggingFaceProvider) Model() string { return p.model }

// escapeModelPath escapes each segment of an "owner/name" model ID.
func escapeModelPath(model string) string {
	parts := strings.Split(model, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

var _ Provider = (*HuggingFaceProvider)(nil)
