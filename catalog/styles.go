package catalog

import (
	"errors"
	"fmt"
)

// StyleEntry maps a style name to the text appended to the user's prompt.
type StyleEntry struct {
	Name   string `yaml:"name"`
	Suffix string `yaml:"suffix"`
}

// StyleCatalog is an ordered, immutable set of styles.
type StyleCatalog struct {
	entries []StyleEntry
	byName  map[string]string
	src     Source
}

// NewStyleCatalog validates entries: at least one, names non-empty and unique.
func NewStyleCatalog(entries []StyleEntry) (*StyleCatalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog has no styles")
	}
	byName := make(map[string]string, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("style %d has no name", i)
		}
		if _, dup := byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate style %q", e.Name)
		}
		byName[e.Name] = e.Suffix
	}
	return &StyleCatalog{
		entries: append([]StyleEntry(nil), entries...),
		byName:  byName,
	}, nil
}

// SuffixOf returns the suffix for name, or ErrUnknownStyle.
func (c *StyleCatalog) SuffixOf(name string) (string, error) {
	suffix, ok := c.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return suffix, nil
}

// Has reports whether name is a catalog style.
func (c *StyleCatalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Compose looks up styleName and appends its suffix to rawPrompt.
func (c *StyleCatalog) Compose(rawPrompt, styleName string) (string, error) {
	suffix, err := c.SuffixOf(styleName)
	if err != nil {
		return "", err
	}
	return Compose(rawPrompt, suffix), nil
}

// Names returns style names in declaration order.
func (c *StyleCatalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the styles in declaration order.
func (c *StyleCatalog) Entries() []StyleEntry {
	return append([]StyleEntry(nil), c.entries...)
}

// RandomName returns a uniformly chosen style name.
func (c *StyleCatalog) RandomName() string {
	return c.entries[pick(c.src, len(c.entries))].Name
}

// Compose appends suffix to rawPrompt verbatim. Suffixes carry their own
// separator, so an empty suffix returns rawPrompt unchanged.
func Compose(rawPrompt, suffix string) string {
	return rawPrompt + suffix
}
