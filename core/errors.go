package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string   // Error code for programmatic handling
	Message string   // Human-readable error message
	Action  string   // Actionable instruction for resolution
	Steps   []string // Optional step-by-step setup instructions
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing = "ENV_FILE_MISSING"
	ErrCodeMissingAuth    = "MISSING_AUTH"
	ErrCodeInvalidConfig  = "INVALID_CONFIG"
	ErrCodeCatalogInvalid = "CATALOG_INVALID"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Create a .env file next to the binary or export the variables in your shell",
	}
}

// ErrMissingAuth returns an error for a missing inference credential. The
// Steps field carries the setup instructions shown in place of the main page.
func ErrMissingAuth(provider string) *ConfigError {
	switch provider {
	case ProviderOpenAI:
		return &ConfigError{
			Code:    ErrCodeMissingAuth,
			Message: "OpenAI API key not found",
			Action:  "Set OPENAI_API_KEY in your .env file",
			Steps: []string{
				"Go to https://platform.openai.com/api-keys",
				"Create a new secret key",
				"Create a .env file in the project directory",
				"Add: OPENAI_API_KEY=your_key_here",
				"Restart the application",
			},
		}
	case ProviderGemini:
		return &ConfigError{
			Code:    ErrCodeMissingAuth,
			Message: "Gemini API key not found",
			Action:  "Set GEMINI_API_KEY in your .env file",
			Steps: []string{
				"Go to https://aistudio.google.com/apikey",
				"Create an API key",
				"Create a .env file in the project directory",
				"Add: GEMINI_API_KEY=your_key_here",
				"Restart the application",
			},
		}
	default:
		return &ConfigError{
			Code:    ErrCodeMissingAuth,
			Message: "HuggingFace API token not found",
			Action:  fmt.Sprintf("Set %s in your .env file", HuggingFaceTokenVariable),
			Steps: []string{
				"Go to https://huggingface.co/settings/tokens",
				"Create a new token with 'Write' permissions",
				"Copy the token",
				"Create a .env file in the project directory",
				fmt.Sprintf("Add: %s=your_token_here", HuggingFaceTokenVariable),
				"Restart the application",
			},
		}
	}
}

// ErrInvalidConfig returns an error for a configuration value that is present
// but out of range.
func ErrInvalidConfig(varName, value, action string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("Invalid value for %s: %q", varName, value),
		Action:  action,
	}
}

// ErrCatalogInvalid returns an error for a catalog override file that fails validation.
func ErrCatalogInvalid(path string, reason error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCatalogInvalid,
		Message: fmt.Sprintf("Invalid catalog file %s: %v", path, reason),
		Action:  "Fix the file or unset CATALOG_FILE to use the built-in styles and sizes",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
