package prompt

import (
	"fmt"
	"strings"

	"github.com/alphaboost/shoprec/internal/engine"
)

const systemPrompt = `You are a friendly shop assistant for an online apparel store.
Recommend only from the products listed in the context. Keep the reply short
(2-4 sentences), lead with the opener line, mention at most the top product by
name, and include its link. Never invent products, prices, or discounts.`

// BuildOptions controls pitch prompt construction.
type BuildOptions struct {
	Query   string
	Class   string
	Results []engine.Scored
	BaseURL string // prefixed to product handles to form links
	Budget  int    // max tokens for the product context block; 0 = no cap
}

// Built holds the assembled prompt parts for the completion call.
type Built struct {
	SystemPrompt string
	ContextText  string
	UserMessage  string
	TokensUsed   int
}

// Builder assembles pitch prompts within a token budget.
type Builder struct {
	budgeter *Budgeter
}

// NewBuilder creates a Builder.
func NewBuilder(budgeter *Budgeter) *Builder {
	return &Builder{budgeter: budgeter}
}

// Build renders the recommended products into a context block, truncated
// to the token budget, and pairs it with the opener for the query's
// trigger class.
func (b *Builder) Build(opts BuildOptions) Built {
	var sb strings.Builder
	sb.WriteString("Opener line: ")
	sb.WriteString(Opener(opts.Class))
	sb.WriteString("\n\nRecommended products (best first):\n")

	for i, r := range opts.Results {
		p := r.Product
		fmt.Fprintf(&sb, "%d. %s", i+1, p.Title)
		if p.Price > 0 {
			fmt.Fprintf(&sb, " ($%.2f)", p.Price)
		}
		if p.Material != "" {
			fmt.Fprintf(&sb, " — %s", p.Material)
		}
		if len(p.Sizes) > 0 {
			fmt.Fprintf(&sb, " — sizes %s", strings.Join(p.Sizes, "/"))
		}
		fmt.Fprintf(&sb, "\n   link: %s\n", Link(opts.BaseURL, p))
	}

	contextText := sb.String()
	if opts.Budget > 0 && b.budgeter != nil {
		contextText = b.budgeter.Truncate(contextText, opts.Budget)
	}

	built := Built{
		SystemPrompt: systemPrompt,
		ContextText:  contextText,
		UserMessage:  opts.Query,
	}
	if b.budgeter != nil {
		built.TokensUsed = b.budgeter.Count(systemPrompt) +
			b.budgeter.Count(contextText) +
			b.budgeter.Count(opts.Query)
	}
	return built
}

// Link forms the product URL from the shop base URL and the product
// handle, falling back to the bare handle when no base is configured.
func Link(baseURL string, p engine.Product) string {
	handle := p.Handle
	if handle == "" {
		handle = p.ID
	}
	if baseURL == "" {
		return handle
	}
	return strings.TrimRight(baseURL, "/") + "/products/" + handle
}
