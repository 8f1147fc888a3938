package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Message: "broken", Action: "fix it"}
	if got := err.Error(); got != "broken. fix it" {
		t.Errorf("Error() = %q, want %q", got, "broken. fix it")
	}

	err = &ConfigError{Message: "broken"}
	if got := err.Error(); got != "broken" {
		t.Errorf("Error() without action = %q, want %q", got, "broken")
	}
}

func TestErrMissingAuth_Steps(t *testing.T) {
	tests := []struct {
		provider string
		variable string
	}{
		{ProviderHuggingFace, "HUGGINGFACE_TOKEN"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGemini, "GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			err := ErrMissingAuth(tt.provider)
			if err.Code != ErrCodeMissingAuth {
				t.Errorf("Code = %s, want %s", err.Code, ErrCodeMissingAuth)
			}
			if len(err.Steps) == 0 {
				t.Fatal("expected setup steps")
			}
			if !strings.Contains(strings.Join(err.Steps, "\n"), tt.variable) {
				t.Errorf("steps do not mention %s: %v", tt.variable, err.Steps)
			}
		})
	}
}

func TestIsConfigError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", ErrInvalidConfig("PORT", "0", "set it"))

	configErr, ok := IsConfigError(wrapped)
	if !ok {
		t.Fatal("IsConfigError() = false for wrapped ConfigError")
	}
	if configErr.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %s, want %s", configErr.Code, ErrCodeInvalidConfig)
	}
	if got := GetErrorCode(wrapped); got != ErrCodeInvalidConfig {
		t.Errorf("GetErrorCode() = %s, want %s", got, ErrCodeInvalidConfig)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}
