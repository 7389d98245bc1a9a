// Package engine implements the product recommendation core: query
// tokenization, catalog caching, rule-based boosting, lexical scoring,
// and engagement-weighted re-ranking.
package engine

import (
	"context"
	"fmt"
	"time"
)

// EngagementKind classifies a feedback event.
type EngagementKind string

const (
	KindClick    EngagementKind = "click"
	KindPurchase EngagementKind = "purchase"
)

// ValidEngagementKind returns true if k is a recognised feedback kind.
func ValidEngagementKind(k EngagementKind) bool {
	return k == KindClick || k == KindPurchase
}

// Product is a single catalog item. ID is the stable handle used by rules
// and engagement records; Triggers are author-curated phrases matched as
// literal substrings of the query. Price, material, sizes and category are
// opaque to the engine and only carried through for display.
type Product struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Handle   string   `json:"handle"` // URL-forming handle, e.g. products/<handle>
	Body     string   `json:"body,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Triggers []string `json:"triggers,omitempty"`

	Price    float64  `json:"price,omitempty"`
	Material string   `json:"material,omitempty"`
	Sizes    []string `json:"sizes,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Validate checks the fields the engine depends on. Called at the
// cache-load boundary; display attributes are not validated.
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product: missing id (title %q)", p.Title)
	}
	if p.Title == "" {
		return fmt.Errorf("product %s: missing title", p.ID)
	}
	return nil
}

// Snapshot is an immutable, fully-loaded view of the catalog. It is
// replaced wholesale on refresh and never mutated while visible to
// in-flight scoring.
type Snapshot struct {
	Items    []Product
	LoadedAt time.Time
}

// Scored pairs a product with its recommendation score.
type Scored struct {
	Product Product
	Score   int
}

// Loader fetches the full catalog from its backing store. Errors propagate
// to the cache, which keeps serving the previous snapshot if one exists.
type Loader func(ctx context.Context) ([]Product, error)

// Searcher is the catalog keyword-search collaborator used by the
// pipeline's primary mode. A failing Searcher makes the pipeline fall
// through to a local substring scan over the cached snapshot.
type Searcher interface {
	Search(ctx context.Context, keywords []string) ([]Product, error)
}

// EngagementSource reads accumulated engagement weights for a trigger
// class. Weight is clicks*1 + purchases*3; absent records weigh 0.
type EngagementSource interface {
	Weights(ctx context.Context, class string, ids []string) (map[string]int, error)
}
