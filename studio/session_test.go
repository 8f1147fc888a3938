package studio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/catalog"
)

func sessionWith(t *testing.T, prompts ...string) (*Controller, *Session) {
	t.Helper()
	c := newTestController(t, &fakeProvider{}, Options{})
	s := c.NewSession()
	for _, p := range prompts {
		_, err := c.Generate(context.Background(), s, Request{Prompt: p, Style: "None", Size: catalog.DefaultSizeLabel})
		require.NoError(t, err)
	}
	return c, s
}

func rawPrompts(s *Session) []string {
	var out []string
	for _, e := range s.History() {
		out = append(out, e.RawPrompt)
	}
	return out
}

func TestSession_DeleteEntry(t *testing.T) {
	_, s := sessionWith(t, "a", "b", "c") // history: c, b, a

	require.NoError(t, s.DeleteEntry(1))
	assert.Equal(t, []string{"c", "a"}, rawPrompts(s))

	require.NoError(t, s.DeleteEntry(1))
	assert.Equal(t, []string{"c"}, rawPrompts(s))
}

func TestSession_DeleteEntryOutOfRange(t *testing.T) {
	_, s := sessionWith(t, "a", "b")

	for _, i := range []int{-1, 2, 100} {
		assert.ErrorIs(t, s.DeleteEntry(i), ErrIndexOutOfRange, "index %d", i)
	}
	assert.Equal(t, []string{"b", "a"}, rawPrompts(s))

	_, err := s.Entry(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSession_ClearHistory(t *testing.T) {
	_, s := sessionWith(t, "a", "b")

	s.ClearHistory()
	assert.Zero(t, s.Len())

	// Clearing an empty history is fine
	s.ClearHistory()
	assert.Zero(t, s.Len())
}

func TestSession_ToggleHistory(t *testing.T) {
	s := NewSession(nil)

	assert.False(t, s.HistoryVisible())
	assert.True(t, s.ToggleHistory())
	assert.True(t, s.HistoryVisible())
	assert.False(t, s.ToggleHistory())
}

func TestSession_HistorySnapshotIsCopy(t *testing.T) {
	_, s := sessionWith(t, "a", "b")

	snap := s.History()
	snap[0] = nil
	e, err := s.Entry(0)
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestSession_Thumbnail(t *testing.T) {
	_, s := sessionWith(t, "a")
	renders := 0
	render := func(*HistoryEntry) ([]byte, error) {
		renders++
		return []byte("thumb"), nil
	}

	data, err := s.Thumbnail(0, render)
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb"), data)

	_, err = s.Thumbnail(0, render)
	require.NoError(t, err)
	assert.Equal(t, 1, renders, "thumbnail should be cached")

	_, err = s.Thumbnail(5, render)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.Thumbnail(0, func(*HistoryEntry) ([]byte, error) { return nil, errBoom })
	assert.NoError(t, err, "cached value is used")

	s.ClearHistory()
	assert.Empty(t, s.thumbnails)
}

func TestSession_ThumbnailRenderError(t *testing.T) {
	_, s := sessionWith(t, "a")

	_, err := s.Thumbnail(0, func(*HistoryEntry) ([]byte, error) { return nil, errBoom })
	assert.True(t, errors.Is(err, errBoom))
}

func TestSession_DismissNotice(t *testing.T) {
	_, s := sessionWith(t, "a")
	require.NotNil(t, s.Notice())

	s.DismissNotice()
	assert.Nil(t, s.Notice())
}
