package db

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"imagestudio/logging"
	"imagestudio/studio"
)

// writeTimeout bounds a single queued insert.
const writeTimeout = 5 * time.Second

// AuditRecorder implements studio.Recorder by queueing attempts to an
// AsyncWriter so generation latency never includes a database write.
type AuditRecorder struct {
	repo   *Repository
	writer *AsyncWriter
	logger *logging.Logger
}

// NewAuditRecorder creates and starts a recorder over repo.
func NewAuditRecorder(repo *Repository, logger *logging.Logger) *AuditRecorder {
	r := &AuditRecorder{repo: repo, logger: logger.Named("audit")}
	r.writer = NewAsyncWriter(r.handle, DefaultChannelCapacity)
	r.writer.Start()
	return r
}

// Record queues a. A full queue drops the attempt and reports an error.
func (r *AuditRecorder) Record(_ context.Context, a studio.Attempt) error {
	if !r.writer.Write(recordFromAttempt(a)) {
		return errQueueFull
	}
	return nil
}

// Close drains pending writes, waiting at most timeout.
func (r *AuditRecorder) Close(timeout time.Duration) {
	if !r.writer.StopWithTimeout(timeout) {
		r.logger.Warn("audit writes still pending at shutdown", zap.Int("pending", r.writer.Pending()))
	}
}

func (r *AuditRecorder) handle(op WriteOperation) error {
	rec, ok := op.Data.(GenerationRecord)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := r.repo.InsertGeneration(ctx, rec); err != nil {
		r.logger.Error("failed to write audit record", zap.String("session", rec.SessionID), zap.Error(err))
		return err
	}
	return nil
}

func recordFromAttempt(a studio.Attempt) GenerationRecord {
	return GenerationRecord{
		SessionID:   a.SessionID,
		EntryID:     a.EntryID,
		Provider:    a.Provider,
		Model:       a.Model,
		RawPrompt:   a.RawPrompt,
		FinalPrompt: a.FinalPrompt,
		Style:       a.Style,
		SizeLabel:   a.Size,
		Width:       a.Width,
		Height:      a.Height,
		Random:      a.Random,
		Outcome:     a.Outcome,
		Error:       logging.RedactSensitiveData(a.Error),
		Duration:    a.Duration,
		CreatedAt:   a.CreatedAt,
	}
}

var errQueueFull = errors.New("audit queue is full, record dropped")

var _ studio.Recorder = (*AuditRecorder)(nil)
