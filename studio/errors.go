package studio

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"imagestudio/imagegen"
)

// Errors reported by the controller before or instead of a generation.
var (
	ErrEmptyPrompt          = errors.New("prompt is empty")
	ErrGenerationInProgress = errors.New("a generation is already in progress for this session")
	ErrThrottled            = errors.New("generation rate limit exceeded for this session")
	ErrIndexOutOfRange      = errors.New("history index out of range")
)

// ErrorKind selects the message shown for a failed generation.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindAuth
	KindRateLimit
	KindModel
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindModel:
		return "model"
	default:
		return "generic"
	}
}

// GenerationError is a classified failure from the inference service.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Classify maps a provider error to an ErrorKind by case-insensitive
// substring, first match wins:
//
//	"authorization" or "unauthorized" -> KindAuth
//	"rate limit"                      -> KindRateLimit
//	"model"                           -> KindModel
//
// When no substring matches, an *imagegen.APIError status is consulted
// (401/403 auth, 429 rate limit, 404/503 model). Everything else is
// KindGeneric.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authorization"), strings.Contains(msg, "unauthorized"):
		return KindAuth
	case strings.Contains(msg, "rate limit"):
		return KindRateLimit
	case strings.Contains(msg, "model"):
		return KindModel
	}

	var apiErr *imagegen.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		case http.StatusTooManyRequests:
			return KindRateLimit
		case http.StatusNotFound, http.StatusServiceUnavailable:
			return KindModel
		}
	}

	return KindGeneric
}

// classify wraps err in a *GenerationError.
func classify(err error) *GenerationError {
	return &GenerationError{Kind: Classify(err), Err: err}
}
