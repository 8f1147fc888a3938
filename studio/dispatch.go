package studio

import (
	"context"
	"time"

	"imagestudio/catalog"
)

// Action is a user event applied to a session by Controller.Dispatch.
type Action interface {
	action()
}

// GenerateAction submits the form.
type GenerateAction struct {
	Prompt string
	Style  string
	Size   string
}

// RandomGenerateAction generates from a random prompt, style and size.
type RandomGenerateAction struct{}

// ToggleHistoryAction shows or hides the history panel.
type ToggleHistoryAction struct{}

// DeleteEntryAction removes the history entry at Index.
type DeleteEntryAction struct {
	Index int
}

// ClearHistoryAction removes every history entry.
type ClearHistoryAction struct{}

// DismissNoticeAction hides the current notice.
type DismissNoticeAction struct{}

func (GenerateAction) action()       {}
func (RandomGenerateAction) action() {}
func (ToggleHistoryAction) action()  {}
func (DeleteEntryAction) action()    {}
func (ClearHistoryAction) action()   {}
func (DismissNoticeAction) action()  {}

// EntryView is a history entry prepared for rendering.
type EntryView struct {
	Index       int
	ID          string
	FinalPrompt string
	RawPrompt   string
	Style       string
	Size        string
	Width       int
	Height      int
	Model       string
	CreatedAt   time.Time
}

// View is a render snapshot of a session.
type View struct {
	Provider string
	Model    string

	Styles []string
	Sizes  []string
	Form   FormState

	Notice      *Notice
	Latest      *EntryView // nil when nothing generated or the entry was removed
	FinalPrompt string     // final prompt of the latest attempt

	Generating    bool
	RandomMode    bool
	PendingRandom *catalog.Selection

	HistoryVisible bool
	HistoryCount   int
	History        []EntryView // populated only when HistoryVisible
}

// Dispatch applies a to s and returns the resulting view. The error is the
// action's failure, if any; it is also reflected in View.Notice.
func (c *Controller) Dispatch(ctx context.Context, s *Session, a Action) (View, error) {
	var err error

	switch act := a.(type) {
	case GenerateAction:
		_, err = c.Generate(ctx, s, Request{Prompt: act.Prompt, Style: act.Style, Size: act.Size})
	case RandomGenerateAction:
		_, err = c.GenerateRandom(ctx, s)
	case ToggleHistoryAction:
		s.ToggleHistory()
	case DeleteEntryAction:
		if err = s.DeleteEntry(act.Index); err != nil {
			s.mu.Lock()
			s.setNoticeLocked(c.notice(err))
			s.mu.Unlock()
		}
	case ClearHistoryAction:
		s.ClearHistory()
	case DismissNoticeAction:
		s.DismissNotice()
	}

	return c.View(s), err
}

// View builds a render snapshot of s without changing it.
func (c *Controller) View(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	form := s.form
	if form.Style == "" {
		form.Style = catalog.DefaultStyleName
	}
	if form.Size == "" {
		form.Size = catalog.DefaultSizeLabel
	}

	v := View{
		Provider:       c.provider.Name(),
		Model:          c.provider.Model(),
		Styles:         c.catalog.Styles.Names(),
		Sizes:          c.catalog.Sizes.Labels(),
		Form:           form,
		FinalPrompt:    s.lastPrompt,
		Generating:     s.generating,
		RandomMode:     s.randomMode,
		HistoryVisible: s.historyVisible,
		HistoryCount:   len(s.history),
	}
	if s.notice != nil {
		n := *s.notice
		v.Notice = &n
	}
	if s.pendingRandom != nil {
		sel := *s.pendingRandom
		v.PendingRandom = &sel
	}
	if i := s.indexOfLocked(s.lastEntryID); s.lastEntryID != "" && i >= 0 {
		ev := entryView(i, s.history[i])
		v.Latest = &ev
	}
	if s.historyVisible {
		v.History = make([]EntryView, len(s.history))
		for i, e := range s.history {
			v.History[i] = entryView(i, e)
		}
	}
	return v
}

func entryView(i int, e *HistoryEntry) EntryView {
	return EntryView{
		Index:       i,
		ID:          e.ID,
		FinalPrompt: e.FinalPrompt,
		RawPrompt:   e.RawPrompt,
		Style:       e.Style,
		Size:        e.Size,
		Width:       e.Width,
		Height:      e.Height,
		Model:       e.Model,
		CreatedAt:   e.CreatedAt,
	}
}
