package studio

import (
	"context"
	"time"
)

// Attempt describes one generation that reached the inference service.
type Attempt struct {
	SessionID   string
	EntryID     string // empty on failure
	Provider    string
	Model       string
	RawPrompt   string
	FinalPrompt string
	Style       string
	Size        string
	Width       int
	Height      int
	Random      bool
	Outcome     string // "success" or an ErrorKind string
	Error       string
	Duration    time.Duration
	CreatedAt   time.Time
}

// OutcomeSuccess is Attempt.Outcome for a generation that produced an image.
const OutcomeSuccess = "success"

// Recorder receives every attempt. Failures are logged by the controller
// and never shown to the user.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// NopRecorder discards attempts.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Attempt) error { return nil }
