package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns are compiled once at package initialization.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(hf_[a-zA-Z0-9]{20,})`),               // HuggingFace access tokens
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),          // OpenAI keys (sk-, sk-proj-)
	regexp.MustCompile(`(AIza[a-zA-Z0-9_-]{35})`),              // Google / Gemini API keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),   // Authorization headers
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),     // token= or token:
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),   // api_key= or api_key:
	regexp.MustCompile(`(?i)(apikey\s*[:=]\s*[^\s,;]{8,})`),    // apikey= or apikey:
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`),  // password= or password:
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),    // secret= or secret:
}

// sensitiveFieldNames mark a log field as sensitive regardless of its value.
var sensitiveFieldNames = []string{
	"HUGGINGFACE_TOKEN",
	"OPENAI_API_KEY",
	"GEMINI_API_KEY",
	"AUTHORIZATION",
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
	"CREDENTIAL",
}

// RedactSensitiveData replaces every detected credential in value with
// RedactedPlaceholder.
//
// Example:
//
//	RedactSensitiveData("401 for token hf_abcdefghijklmnopqrstuvwx")
//	// "401 for token [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}

	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// IsSensitiveField returns true if the field name indicates sensitive data.
//
// Example:
//
//	IsSensitiveField("huggingface_token")  // true
//	IsSensitiveField("prompt")             // false
func IsSensitiveField(fieldName string) bool {
	upperName := strings.ToUpper(fieldName)
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upperName, name) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData returns true if the value contains any sensitive data patterns.
func ContainsSensitiveData(value string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
