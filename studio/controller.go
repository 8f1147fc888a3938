// Package studio holds per-session state and the generation controller that
// turns form input into inference requests and history entries.
package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"imagestudio/catalog"
	"imagestudio/imagegen"
	"imagestudio/logging"
)

// Request is the user's form input for one generation.
type Request struct {
	Prompt string
	Style  string
	Size   string
}

// Options tunes a Controller. Zero values disable the optional behaviour.
type Options struct {
	// HistoryLimit trims the oldest entries beyond this count; 0 is unbounded
	HistoryLimit int

	// RatePerMinute and Burst configure the per-session throttle; 0 disables it
	RatePerMinute int
	Burst         int

	// Recorder receives every attempt that reaches the provider
	Recorder Recorder

	// Clock stamps history entries; defaults to time.Now
	Clock func() time.Time
}

// Controller runs generations against a provider and applies the results to
// sessions.
//
// Thread-Safety: Controller is stateless apart from its dependencies and is
// safe for concurrent use across sessions. Per-session serialisation is
// enforced by Session.
type Controller struct {
	catalog  *catalog.Catalog
	provider imagegen.Provider
	logger   *logging.Logger
	recorder Recorder
	clock    func() time.Time

	historyLimit  int
	ratePerMinute int
	burst         int
}

// NewController creates a Controller.
//
// Returns an error if any required component is nil.
//
// Example:
//
//	ctrl, err := studio.NewController(catalog.Default(), provider, logger, studio.Options{HistoryLimit: 50})
//	session := ctrl.NewSession()
//	view, err := ctrl.Dispatch(ctx, session, studio.GenerateAction{Prompt: "a fox", Style: "Watercolor", Size: catalog.DefaultSizeLabel})
func NewController(cat *catalog.Catalog, provider imagegen.Provider, logger *logging.Logger, opts Options) (*Controller, error) {
	if cat == nil {
		return nil, fmt.Errorf("studio: catalog cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("studio: provider cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("studio: logger cannot be nil")
	}
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RatePerMinute > 0 && opts.Burst < 1 {
		opts.Burst = 1
	}

	return &Controller{
		catalog:       cat,
		provider:      provider,
		logger:        logger.Named("controller"),
		recorder:      opts.Recorder,
		clock:         opts.Clock,
		historyLimit:  opts.HistoryLimit,
		ratePerMinute: opts.RatePerMinute,
		burst:         opts.Burst,
	}, nil
}

// NewSession creates a session with this controller's throttle settings.
func (c *Controller) NewSession() *Session {
	var limiter *rate.Limiter
	if c.ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.ratePerMinute)), c.burst)
	}
	s := NewSession(limiter)
	s.form = FormState{Style: catalog.DefaultStyleName, Size: catalog.DefaultSizeLabel}
	return s
}

// Catalog returns the style/size/prompt tables.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// ProviderName returns the backend identifier.
func (c *Controller) ProviderName() string { return c.provider.Name() }

// Model returns the backend's default model identifier.
func (c *Controller) Model() string { return c.provider.Model() }

// Generate runs one generation for req. On success the new entry is at
// index 0 of the session history. Every outcome is also stored in the
// session as a notice.
func (c *Controller) Generate(ctx context.Context, s *Session, req Request) (*HistoryEntry, error) {
	return c.run(ctx, s, req, nil)
}

// GenerateRandom samples a prompt, style and size, stores them as the
// session's pending random selection and runs exactly one generation with
// them. Random mode is cleared afterwards whatever the outcome.
func (c *Controller) GenerateRandom(ctx context.Context, s *Session) (*HistoryEntry, error) {
	sel := c.catalog.RandomSelection()

	c.logger.Debug("random selection",
		zap.String("session", s.ID),
		zap.String("prompt", sel.Prompt),
		zap.String("style", sel.Style),
		zap.String("size", sel.Size),
	)

	return c.run(ctx, s, Request{Prompt: sel.Prompt, Style: sel.Style, Size: sel.Size}, &sel)
}

// run claims the session and performs one generation. sel is the random
// selection behind req, nil for a user request. The session stays locked from
// the in-progress check until generating is set, so a rejected request never
// touches the state of the one in flight.
func (c *Controller) run(ctx context.Context, s *Session, req Request, sel *catalog.Selection) (*HistoryEntry, error) {
	random := sel != nil
	log := c.logger.With(zap.String("session", s.ID), zap.Bool("random", random))

	s.mu.Lock()
	if s.generating {
		s.setNoticeLocked(c.notice(ErrGenerationInProgress))
		s.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	if random {
		s.pendingRandom = sel
		s.randomMode = true
		defer func() {
			s.mu.Lock()
			s.randomMode = false
			s.mu.Unlock()
		}()
	} else {
		s.form = FormState{Prompt: req.Prompt, Style: req.Style, Size: req.Size}
	}

	c.transitionLocked(log, s, PhaseValidating)
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, c.rejectLocked(log, s, ErrEmptyPrompt)
	}

	c.transitionLocked(log, s, PhaseComposing)
	finalPrompt, err := c.catalog.Styles.Compose(req.Prompt, req.Style)
	if err != nil {
		return nil, c.rejectLocked(log, s, err)
	}
	width, height, err := c.catalog.Sizes.DimensionsOf(req.Size)
	if err != nil {
		return nil, c.rejectLocked(log, s, err)
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, c.rejectLocked(log, s, ErrThrottled)
	}

	s.generating = true
	s.lastPrompt = finalPrompt
	c.transitionLocked(log, s, PhaseRequesting)
	s.mu.Unlock()

	// The session lock is released for the network call so the page stays
	// responsive for other requests of the same session.
	start := c.clock()
	result, genErr := c.provider.Generate(ctx, imagegen.GenerateRequest{
		Prompt: finalPrompt,
		Width:  width,
		Height: height,
	})
	var entry *HistoryEntry
	if genErr == nil {
		entry, genErr = c.buildEntry(result, req, finalPrompt, width, height)
	}
	elapsed := c.clock().Sub(start)

	attempt := Attempt{
		SessionID:   s.ID,
		Provider:    c.provider.Name(),
		Model:       c.provider.Model(),
		RawPrompt:   req.Prompt,
		FinalPrompt: finalPrompt,
		Style:       req.Style,
		Size:        req.Size,
		Width:       width,
		Height:      height,
		Random:      random,
		Duration:    elapsed,
		CreatedAt:   start,
	}

	s.mu.Lock()
	s.generating = false
	var resultErr error
	if genErr != nil {
		classified := classify(genErr)
		attempt.Outcome = classified.Kind.String()
		attempt.Error = genErr.Error()
		c.transitionLocked(log, s, PhaseFailed)
		s.setNoticeLocked(c.notice(classified))
		log.Warn("generation failed",
			zap.String("kind", classified.Kind.String()),
			zap.Duration("duration", elapsed),
			zap.Error(genErr),
		)
		resultErr = classified
	} else {
		attempt.Outcome = OutcomeSuccess
		attempt.EntryID = entry.ID
		attempt.Model = entry.Model
		s.insertLocked(entry, c.historyLimit)
		s.lastEntryID = entry.ID
		c.transitionLocked(log, s, PhaseSucceeded)
		s.setNoticeLocked(Notice{Level: LevelSuccess, Title: successTitle})
		log.Info("image generated",
			zap.String("entry", entry.ID),
			zap.String("style", req.Style),
			zap.String("size", req.Size),
			zap.Duration("duration", elapsed),
		)
	}
	c.transitionLocked(log, s, PhaseIdle)
	s.mu.Unlock()

	c.record(ctx, log, attempt)
	return entry, resultErr
}

// rejectLocked reports a failure found before the network call, then
// unlocks the session.
func (c *Controller) rejectLocked(log *logging.Logger, s *Session, err error) error {
	defer s.mu.Unlock()

	if errors.Is(err, ErrEmptyPrompt) {
		log.Debug("empty prompt rejected")
	} else {
		c.transitionLocked(log, s, PhaseFailed)
		log.Warn("generation rejected", zap.Error(err))
	}
	s.setNoticeLocked(c.notice(err))
	c.transitionLocked(log, s, PhaseIdle)
	return err
}

func (c *Controller) transitionLocked(log *logging.Logger, s *Session, to Phase) {
	if s.phase == to {
		return
	}
	log.Debug("phase", zap.Stringer("from", s.phase), zap.Stringer("to", to))
	s.phase = to
}

func (c *Controller) buildEntry(result *imagegen.GenerateResult, req Request, finalPrompt string, width, height int) (*HistoryEntry, error) {
	if result == nil || result.Image == nil {
		return nil, fmt.Errorf("studio: provider returned no image")
	}

	data := result.Data
	if result.MIMEType != "image/png" || len(data) == 0 {
		encoded, err := imagegen.EncodePNG(result.Image)
		if err != nil {
			return nil, err
		}
		data = encoded
	}

	model := result.Model
	if model == "" {
		model = c.provider.Model()
	}

	return &HistoryEntry{
		ID:          uuid.NewString(),
		Image:       result.Image,
		PNG:         data,
		FinalPrompt: finalPrompt,
		RawPrompt:   req.Prompt,
		Style:       req.Style,
		Size:        req.Size,
		Width:       width,
		Height:      height,
		Model:       model,
		CreatedAt:   c.clock(),
	}, nil
}

func (c *Controller) record(ctx context.Context, log *logging.Logger, a Attempt) {
	if err := c.recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		log.Warn("failed to record generation attempt", zap.Error(err))
	}
}

func (c *Controller) notice(err error) Notice {
	return NoticeFor(err, c.provider.Name(), c.provider.Model())
}
