package catalog

import (
	"errors"
	"fmt"
)

// SizeEntry is a named output resolution.
type SizeEntry struct {
	Label  string `yaml:"label"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// SizeCatalog is an ordered, immutable set of output sizes.
type SizeCatalog struct {
	entries []SizeEntry
	byLabel map[string]SizeEntry
	src     Source
}

// NewSizeCatalog validates entries: at least one, labels unique, positive
// dimensions.
func NewSizeCatalog(entries []SizeEntry) (*SizeCatalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog has no sizes")
	}
	byLabel := make(map[string]SizeEntry, len(entries))
	for i, e := range entries {
		if e.Label == "" {
			return nil, fmt.Errorf("size %d has no label", i)
		}
		if e.Width <= 0 || e.Height <= 0 {
			return nil, fmt.Errorf("size %q has non-positive dimensions %dx%d", e.Label, e.Width, e.Height)
		}
		if _, dup := byLabel[e.Label]; dup {
			return nil, fmt.Errorf("duplicate size %q", e.Label)
		}
		byLabel[e.Label] = e
	}
	return &SizeCatalog{
		entries: append([]SizeEntry(nil), entries...),
		byLabel: byLabel,
	}, nil
}

// DimensionsOf returns width and height for label, or ErrUnknownSize.
func (c *SizeCatalog) DimensionsOf(label string) (int, int, error) {
	e, ok := c.byLabel[label]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownSize, label)
	}
	return e.Width, e.Height, nil
}

// Has reports whether label is a catalog size.
func (c *SizeCatalog) Has(label string) bool {
	_, ok := c.byLabel[label]
	return ok
}

// Labels returns size labels in declaration order.
func (c *SizeCatalog) Labels() []string {
	labels := make([]string, len(c.entries))
	for i, e := range c.entries {
		labels[i] = e.Label
	}
	return labels
}

// Entries returns a copy of the sizes in declaration order.
func (c *SizeCatalog) Entries() []SizeEntry {
	return append([]SizeEntry(nil), c.entries...)
}

// RandomLabel returns a uniformly chosen size label.
func (c *SizeCatalog) RandomLabel() string {
	return c.entries[pick(c.src, len(c.entries))].Label
}
