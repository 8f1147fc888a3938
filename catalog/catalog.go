// Package catalog holds the static style, size and example-prompt tables
// offered by the studio and composes final prompts from them.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"imagestudio/core"
)

// Lookup errors. The page only offers catalog keys, so these indicate a
// tampered form or a stale override file.
var (
	ErrUnknownStyle = errors.New("unknown style")
	ErrUnknownSize  = errors.New("unknown size")
	ErrEmptyPool    = errors.New("random prompt pool is empty")
)

// DefaultStyleName and DefaultSizeLabel preselect the form controls.
const (
	DefaultStyleName = "None"
	DefaultSizeLabel = "Square (1024x1024)"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Source picks a uniformly random index in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource uses the auto-seeded top-level math/rand/v2 functions.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Catalog bundles the three tables loaded from one document.
type Catalog struct {
	Styles  *StyleCatalog
	Sizes   *SizeCatalog
	Prompts *PromptPool
}

type document struct {
	Styles  []StyleEntry `yaml:"styles"`
	Sizes   []SizeEntry  `yaml:"sizes"`
	Prompts []string     `yaml:"prompts"`
}

// Default returns the catalog compiled into the binary. It panics if the
// embedded document is invalid, which only a broken build can cause.
func Default() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog override from disk. Validation failures are
// reported as a *core.ConfigError so startup can print an actionable message.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ErrCatalogInvalid(path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, core.ErrCatalogInvalid(path, err)
	}
	return c, nil
}

// Load returns the override at path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	styles, err := NewStyleCatalog(doc.Styles)
	if err != nil {
		return nil, err
	}
	sizes, err := NewSizeCatalog(doc.Sizes)
	if err != nil {
		return nil, err
	}
	prompts, err := NewPromptPool(doc.Prompts)
	if err != nil {
		return nil, err
	}

	return &Catalog{Styles: styles, Sizes: sizes, Prompts: prompts}, nil
}

// WithSource makes every table draw random choices from src. Tests use it
// with a seeded *rand.Rand.
func (c *Catalog) WithSource(src Source) *Catalog {
	c.Styles.src = src
	c.Sizes.src = src
	c.Prompts.src = src
	return c
}

// Selection is a prompt/style/size triple drawn for random mode.
type Selection struct {
	Prompt string
	Style  string
	Size   string
}

// RandomSelection samples one entry from each table.
func (c *Catalog) RandomSelection() Selection {
	return Selection{
		Prompt: c.Prompts.Random(),
		Style:  c.Styles.RandomName(),
		Size:   c.Sizes.RandomLabel(),
	}
}

func pick(src Source, n int) int {
	if src == nil {
		src = globalSource{}
	}
	return src.IntN(n)
}
