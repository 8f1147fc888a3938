package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagestudio/core"
)

func TestNewOpenAIProvider_NilConfig(t *testing.T) {
	provider, err := NewOpenAIProvider(nil)
	if err == nil || provider != nil {
		t.Fatalf("expected error and nil provider, got %v, %v", provider, err)
	}
	if err.Error() != "imagegen: config cannot be nil" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestNewOpenAIProvider_EmptyAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(&core.Config{InferenceTimeout: core.DefaultInferenceTimeout}); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAIProvider_DefaultModel(t *testing.T) {
	p, err := NewOpenAIProviderWithConfig(OpenAIProviderConfig{APIKey: "sk-test"}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIProviderWithConfig: %v", err)
	}
	if p.Model() != "dall-e-3" {
		t.Errorf("Model = %q, want dall-e-3", p.Model())
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	pngData := testPNG(t, 4, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["size"] != "1792x1024" {
			t.Errorf("size = %v, want 1792x1024", body["size"])
		}
		if body["response_format"] != "b64_json" {
			t.Errorf("response_format = %v", body["response_format"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1,
			"data":    []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(pngData)}},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProviderWithConfig(OpenAIProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIProviderWithConfig: %v", err)
	}

	result, err := p.Generate(context.Background(), GenerateRequest{Prompt: "a lighthouse", Width: 1344, Height: 768})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Image.Bounds().Dx() != 4 {
		t.Errorf("bounds = %v", result.Image.Bounds())
	}
	if result.Model != "dall-e-3" {
		t.Errorf("Model = %q", result.Model)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded","type":"requests"}}`))
	}))
	defer srv.Close()

	p, _ := NewOpenAIProviderWithConfig(OpenAIProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)

	_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x", Width: 1024, Height: 1024})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v (%T) is not *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestOpenAISize(t *testing.T) {
	tests := []struct {
		model string
		w, h  int
		want  string
	}{
		{"dall-e-3", 1024, 1024, "1024x1024"},
		{"dall-e-3", 1344, 768, "1792x1024"},
		{"dall-e-3", 768, 1344, "1024x1792"},
		{"dall-e-3", 1536, 640, "1792x1024"},
		{"dall-e-2", 512, 512, "512x512"},
		{"dall-e-2", 1344, 768, "1024x1024"},
		{"gpt-image-1", 1344, 768, "1536x1024"},
		{"gpt-image-1", 768, 1344, "1024x1536"},
	}

	for _, tt := range tests {
		if got := openAISize(tt.model, tt.w, tt.h); got != tt.want {
			t.Errorf("openAISize(%s, %d, %d) = %q, want %q", tt.model, tt.w, tt.h, got, tt.want)
		}
	}
}
