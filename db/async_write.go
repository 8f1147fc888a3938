package db

import (
	"context"
	"sync"
	"time"
)

// DefaultChannelCapacity is the default buffer size for async write channels.
const DefaultChannelCapacity = 100

// DefaultDrainTimeout is the maximum time to wait for pending writes during shutdown.
const DefaultDrainTimeout = 30 * time.Second

// WriteOperation is a queued write.
type WriteOperation struct {
	// Data holds the write payload, a GenerationRecord for the audit recorder
	Data interface{}
	// Timestamp when the operation was queued
	Timestamp time.Time
}

// WriteHandler processes one write. Implementations handle their own error
// logging.
type WriteHandler func(op WriteOperation) error

// AsyncWriter moves database writes off the request path using a buffered
// channel drained by one background goroutine.
//
// This molecule composes:
//   - Channel send/receive (atoms)
//   - Context cancellation (atom)
//   - Graceful shutdown with drain (composition)
//
// A full buffer drops the write rather than blocking a generation.
type AsyncWriter struct {
	writeChan chan WriteOperation
	handler   WriteHandler
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
	mu        sync.Mutex
}

// NewAsyncWriter creates a writer with a buffer of capacity operations
// (DefaultChannelCapacity when capacity <= 0).
func NewAsyncWriter(handler WriteHandler, capacity int) *AsyncWriter {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncWriter{
		writeChan: make(chan WriteOperation, capacity),
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the background goroutine. Calling it twice is a no-op.
func (w *AsyncWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.processWrites()
}

func (w *AsyncWriter) processWrites() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drainChannel()
			return
		case op := <-w.writeChan:
			_ = w.handler(op)
		}
	}
}

// drainChannel processes whatever is still buffered.
func (w *AsyncWriter) drainChannel() {
	for {
		select {
		case op := <-w.writeChan:
			_ = w.handler(op)
		default:
			return
		}
	}
}

// Write queues data without blocking. It returns false when the buffer is
// full or the writer has been stopped.
func (w *AsyncWriter) Write(data interface{}) bool {
	if w.ctx.Err() != nil {
		return false
	}
	select {
	case w.writeChan <- WriteOperation{Data: data, Timestamp: time.Now()}:
		return true
	default:
		return false
	}
}

// Pending returns the number of buffered operations.
func (w *AsyncWriter) Pending() int {
	return len(w.writeChan)
}

// StopWithTimeout stops the writer and waits up to timeout for the buffer
// to drain. Returns true if it drained in time.
func (w *AsyncWriter) StopWithTimeout(timeout time.Duration) bool {
	w.cancel()

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		w.drainChannel()
		return true
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
