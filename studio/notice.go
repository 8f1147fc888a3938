package studio

import (
	"errors"
	"fmt"

	"imagestudio/catalog"
	"imagestudio/core"
)

// NoticeLevel controls how a notice is styled.
type NoticeLevel string

const (
	LevelSuccess NoticeLevel = "success"
	LevelInfo    NoticeLevel = "info"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is a user-facing message shown above the form until dismissed or
// replaced by the next action.
type Notice struct {
	Level   NoticeLevel
	Title   string
	Message string
	Hint    string
	Steps   []string
}

const successTitle = "Image generated successfully!"

// NoticeFor renders err as a user-facing notice. provider and model name the
// configured backend for the auth and model templates.
func NoticeFor(err error, provider, model string) Notice {
	var genErr *GenerationError
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return Notice{Level: LevelWarning, Title: "Please enter a description for your image!"}
	case errors.Is(err, ErrGenerationInProgress):
		return Notice{
			Level:   LevelInfo,
			Title:   "Generation in progress",
			Message: "An image is already being generated in this session. Wait for it to finish before starting another.",
		}
	case errors.Is(err, ErrThrottled):
		return Notice{
			Level:   LevelWarning,
			Title:   "Rate Limit Exceeded",
			Message: "You're generating images faster than this server allows. Please wait a moment and try again.",
		}
	case errors.Is(err, ErrIndexOutOfRange):
		return Notice{Level: LevelWarning, Title: "That history entry no longer exists."}
	case errors.Is(err, catalog.ErrUnknownStyle), errors.Is(err, catalog.ErrUnknownSize):
		return Notice{
			Level:   LevelError,
			Title:   "Invalid selection",
			Message: err.Error(),
			Hint:    "Reload the page and pick a style and size from the lists.",
		}
	case errors.As(err, &genErr):
		return generationNotice(genErr, provider, model)
	case err == nil:
		return Notice{}
	default:
		return generationNotice(&GenerationError{Kind: KindGeneric, Err: err}, provider, model)
	}
}

func generationNotice(err *GenerationError, provider, model string) Notice {
	switch err.Kind {
	case KindAuth:
		return Notice{
			Level:   LevelError,
			Title:   "Authentication Error",
			Message: "Your API token is invalid or doesn't have the required permissions.",
			Steps:   authFixSteps(provider),
		}
	case KindRateLimit:
		return Notice{
			Level:   LevelError,
			Title:   "Rate Limit Exceeded",
			Message: "You've hit the free tier rate limit. Please wait a few minutes and try again.",
		}
	case KindModel:
		return Notice{
			Level:   LevelError,
			Title:   "Model Error",
			Message: fmt.Sprintf("There was an issue with the model: %s", model),
			Hint:    "The model might be temporarily unavailable. Try again in a few moments.",
		}
	default:
		return Notice{
			Level:   LevelError,
			Title:   "Error Generating Image",
			Message: fmt.Sprintf("Error details: %v", err.Err),
			Hint:    "Please try again or modify your prompt.",
		}
	}
}

func authFixSteps(provider string) []string {
	switch provider {
	case core.ProviderOpenAI, core.ProviderGemini:
		setup := core.ErrMissingAuth(provider)
		return []string{
			setup.Steps[0],
			setup.Steps[1],
			"Update your .env file with the new key",
			"Restart the application",
		}
	default:
		return []string{
			"Go to https://huggingface.co/settings/tokens",
			"Create a new token with 'Write' permissions",
			"Update your .env file with the new token",
			"Restart the application",
		}
	}
}
