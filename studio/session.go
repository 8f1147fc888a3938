package studio

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"imagestudio/catalog"
)

// HistoryEntry is one generated image. Entries are never mutated after
// creation, only removed.
type HistoryEntry struct {
	ID          string
	Image       image.Image
	PNG         []byte
	FinalPrompt string
	RawPrompt   string
	Style       string
	Size        string
	Width       int
	Height      int
	Model       string
	CreatedAt   time.Time
}

// FormState is what the form controls show on the next render.
type FormState struct {
	Prompt string
	Style  string
	Size   string
}

// Session is the per-browser state of the studio. All methods are safe for
// concurrent use; at most one generation runs per session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu             sync.Mutex
	history        []*HistoryEntry // newest first
	historyVisible bool
	randomMode     bool
	pendingRandom  *catalog.Selection
	generating     bool
	phase          Phase
	notice         *Notice
	lastEntryID    string
	lastPrompt     string // final prompt of the latest attempt
	form           FormState
	limiter        *rate.Limiter
	thumbnails     map[string][]byte
}

// NewSession creates an empty session. limiter throttles generations and
// may be nil for no limit.
func NewSession(limiter *rate.Limiter) *Session {
	return &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		limiter:    limiter,
		thumbnails: make(map[string][]byte),
	}
}

// ToggleHistory flips history visibility and returns the new value.
func (s *Session) ToggleHistory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyVisible = !s.historyVisible
	return s.historyVisible
}

// HistoryVisible reports whether the history panel is shown.
func (s *Session) HistoryVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyVisible
}

// DeleteEntry removes the entry at index i (0 is newest). Out-of-range
// indexes return ErrIndexOutOfRange and leave history unchanged.
func (s *Session) DeleteEntry(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.history) {
		return ErrIndexOutOfRange
	}
	delete(s.thumbnails, s.history[i].ID)
	s.history = append(s.history[:i:i], s.history[i+1:]...)
	return nil
}

// ClearHistory removes every entry.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	clear(s.thumbnails)
}

// Entry returns the entry at index i.
func (s *Session) Entry(i int) (*HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.history) {
		return nil, ErrIndexOutOfRange
	}
	return s.history[i], nil
}

// History returns a snapshot of the entries, newest first.
func (s *Session) History() []*HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*HistoryEntry(nil), s.history...)
}

// Len returns the number of history entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// RandomMode reports whether a random generation is running.
func (s *Session) RandomMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.randomMode
}

// PendingRandom returns the last random selection, or nil.
func (s *Session) PendingRandom() *catalog.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingRandom == nil {
		return nil
	}
	sel := *s.pendingRandom
	return &sel
}

// Generating reports whether a generation is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Phase returns the current phase of the session's generation.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Notice returns the current notice, or nil.
func (s *Session) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}

// DismissNotice clears the current notice.
func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
}

// Thumbnail returns the cached thumbnail for entry i, computing it with
// render on first use.
func (s *Session) Thumbnail(i int, render func(*HistoryEntry) ([]byte, error)) ([]byte, error) {
	entry, err := s.Entry(i)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	cached, ok := s.thumbnails[entry.ID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := render(entry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The entry may have been deleted while rendering
	if s.indexOfLocked(entry.ID) >= 0 {
		s.thumbnails[entry.ID] = data
	}
	return data, nil
}

// insertLocked puts e at the head and trims the oldest entries beyond limit
// (0 means unbounded).
func (s *Session) insertLocked(e *HistoryEntry, limit int) {
	s.history = append([]*HistoryEntry{e}, s.history...)
	if limit > 0 && len(s.history) > limit {
		for _, old := range s.history[limit:] {
			delete(s.thumbnails, old.ID)
		}
		s.history = s.history[:limit:limit]
	}
}

func (s *Session) indexOfLocked(id string) int {
	for i, e := range s.history {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) setNoticeLocked(n Notice) {
	s.notice = &n
}
