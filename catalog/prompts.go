package catalog

import (
	"fmt"
	"strings"
)

// PromptPool is the list of example prompts used by random mode.
type PromptPool struct {
	prompts []string
	src     Source
}

// NewPromptPool rejects an empty pool and blank entries.
func NewPromptPool(prompts []string) (*PromptPool, error) {
	if len(prompts) == 0 {
		return nil, ErrEmptyPool
	}
	for i, p := range prompts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("prompt %d is blank", i)
		}
	}
	return &PromptPool{prompts: append([]string(nil), prompts...)}, nil
}

// Random returns a uniformly chosen prompt.
func (p *PromptPool) Random() string {
	return p.prompts[pick(p.src, len(p.prompts))]
}

// All returns a copy of the pool.
func (p *PromptPool) All() []string {
	return append([]string(nil), p.prompts...)
}

// Len returns the number of prompts.
func (p *PromptPool) Len() int {
	return len(p.prompts)
}
