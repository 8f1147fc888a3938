package studio

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"imagestudio/catalog"
	"imagestudio/imagegen"
	"imagestudio/logging"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   []imagegen.GenerateRequest
	err     error
	started chan struct{} // receives once per call when set
	release chan struct{} // blocks Generate until closed when set
}

func (f *fakeProvider) Generate(ctx context.Context, req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err := f.err
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &imagegen.GenerateResult{
		Image:    image.NewRGBA(image.Rect(0, 0, req.Width/64, req.Height/64)),
		MIMEType: "image/png",
		Model:    "test/model",
	}, nil
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "test/model" }

func (f *fakeProvider) Calls() []imagegen.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]imagegen.GenerateRequest(nil), f.calls...)
}

type memRecorder struct {
	mu       sync.Mutex
	attempts []Attempt
	err      error
}

func (r *memRecorder) Record(_ context.Context, a Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return r.err
}

func (r *memRecorder) All() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Attempt(nil), r.attempts...)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, p imagegen.Provider, opts Options) *Controller {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedNow }
	}
	c, err := NewController(catalog.Default(), p, logging.NewNopLogger(), opts)
	require.NoError(t, err)
	return c
}

var errBoom = errors.New("boom")

func imageOf(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
