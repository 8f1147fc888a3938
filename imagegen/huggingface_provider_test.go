package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"imagestudio/core"
)

func newTestHF(t *testing.T, handler http.HandlerFunc) *HuggingFaceProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewHuggingFaceProviderWithConfig(HuggingFaceProviderConfig{
		Token:      "hf_test",
		BaseURL:    srv.URL + "/",
		Model:      "black-forest-labs/FLUX.1-schnell",
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewHuggingFaceProviderWithConfig: %v", err)
	}
	return p
}

func TestHuggingFaceProvider_Success(t *testing.T) {
	pngData := testPNG(t, 8, 4)

	p := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/models/black-forest-labs/FLUX.1-schnell" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("Authorization = %q", got)
		}

		var body hfRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Inputs != "A red fox in snow, watercolor" {
			t.Errorf("inputs = %q", body.Inputs)
		}
		if body.Parameters.Width != 1344 || body.Parameters.Height != 768 {
			t.Errorf("parameters = %+v", body.Parameters)
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngData)
	})

	result, err := p.Generate(context.Background(), GenerateRequest{
		Prompt: "A red fox in snow, watercolor",
		Width:  1344,
		Height: 768,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", result.MIMEType)
	}
	if b := result.Image.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("bounds = %v", b)
	}
	if result.Model != "black-forest-labs/FLUX.1-schnell" {
		t.Errorf("Model = %q", result.Model)
	}
}

func TestHuggingFaceProvider_ModelOverride(t *testing.T) {
	pngData := testPNG(t, 2, 2)
	p := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/stabilityai/sdxl" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write(pngData)
	})

	result, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x", Model: "stabilityai/sdxl", Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Model != "stabilityai/sdxl" {
		t.Errorf("Model = %q", result.Model)
	}
}

func TestHuggingFaceProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantText   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"Invalid credentials in Authorization header"}`, 401, "authorization"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"Rate limit reached. You reached free usage limit"}`, 429, "rate limit"},
		{"model not found", http.StatusNotFound, `{"error":"Model foo/bar does not exist"}`, 404, "model"},
		{"loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading","estimated_time":20}`, 503, "estimated time 20s"},
		{"plain text", http.StatusInternalServerError, "boom", 500, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x", Width: 64, Height: 64})
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %T is not *APIError", err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(strings.ToLower(err.Error()), tt.wantText) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantText)
			}
		})
	}
}

func TestHuggingFaceProvider_TimeoutOmitsRequestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	p, err := NewHuggingFaceProviderWithConfig(HuggingFaceProviderConfig{
		Token:      "hf_test",
		BaseURL:    srv.URL + "/",
		Model:      "black-forest-labs/FLUX.1-schnell",
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("NewHuggingFaceProviderWithConfig: %v", err)
	}

	_, err = p.Generate(context.Background(), GenerateRequest{Prompt: "x", Width: 64, Height: 64})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "/models/") || strings.Contains(msg, "model") {
		t.Errorf("error %q mentions the model endpoint", err.Error())
	}
	var netErr interface{ Timeout() bool }
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("error %v does not report a timeout", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure reported as API error %v", apiErr)
	}
}

func TestHuggingFaceProvider_JSONErrorWith200(t *testing.T) {
	p := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	})

	_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x", Width: 64, Height: 64})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("err = %v, want model overloaded", err)
	}
}

func TestHuggingFaceProvider_NotAnImage(t *testing.T) {
	p := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("definitely not a png"))
	})

	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x", Width: 64, Height: 64}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHuggingFaceProvider_ValidatesRequest(t *testing.T) {
	p := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	if _, err := p.Generate(context.Background(), GenerateRequest{Width: 64, Height: 64}); err == nil {
		t.Error("expected error for empty prompt")
	}
	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Error("expected error for zero dimensions")
	}
}

func TestNewHuggingFaceProvider(t *testing.T) {
	if _, err := NewHuggingFaceProvider(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewHuggingFaceProvider(&core.Config{}); err == nil {
		t.Error("expected error for missing token")
	}

	p, err := NewHuggingFaceProvider(&core.Config{HuggingFaceToken: "hf_x", InferenceTimeout: core.DefaultInferenceTimeout})
	if err != nil {
		t.Fatalf("NewHuggingFaceProvider: %v", err)
	}
	if p.Model() != core.DefaultModelName {
		t.Errorf("Model = %q", p.Model())
	}
	if p.baseURL != core.DefaultHuggingFaceURL {
		t.Errorf("baseURL = %q", p.baseURL)
	}
	if p.Name() != core.ProviderHuggingFace {
		t.Errorf("Name = %q", p.Name())
	}
}

func TestEscapeModelPath(t *testing.T) {
	if got := escapeModelPath("owner/model name"); got != "owner/model%20name" {
		t.Errorf("escapeModelPath = %q", got)
	}
}
