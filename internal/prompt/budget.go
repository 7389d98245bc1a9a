// Package prompt builds token-budget-aware sales-pitch prompts from
// recommendation results.
package prompt

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Budgeter wraps tiktoken for approximate token counting.
type Budgeter struct {
	enc *tiktoken.Tiktoken
}

// NewBudgeter creates a Budgeter using the cl100k_base encoding
// (used by GPT-4 and Claude — a good approximation for all providers).
func NewBudgeter() (*Budgeter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("budgeter: get encoding: %w", err)
	}
	return &Budgeter{enc: enc}, nil
}

// Count returns the approximate number of tokens in s.
func (b *Budgeter) Count(s string) int {
	return len(b.enc.Encode(s, nil, nil))
}

// Truncate truncates s to at most maxTokens tokens, returning the result.
func (b *Budgeter) Truncate(s string, maxTokens int) string {
	tokens := b.enc.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	// Decode the truncated token slice back to a string.
	return b.enc.Decode(tokens[:maxTokens])
}
