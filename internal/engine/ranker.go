package engine

import (
	"context"
	"sort"
)

// Engagement weight multipliers.
const (
	ClickWeight    = 1
	PurchaseWeight = 3
)

// Ranker re-orders candidates by accumulated engagement, read through an
// EngagementSource at call time. No isolation is provided: a concurrent
// bump may or may not be visible, which is acceptable.
type Ranker struct {
	src EngagementSource
}

// NewRanker creates a Ranker over the given source. A nil source yields a
// ranker that preserves input order.
func NewRanker(src EngagementSource) *Ranker {
	return &Ranker{src: src}
}

// Rank stable-sorts candidates descending by engagement weight for the
// given trigger class. Candidates with equal weight keep their incoming
// relative order, so the caller's lexical ordering remains the tie-break.
// Source failures degrade to the input order.
func (r *Ranker) Rank(ctx context.Context, class string, candidates []Product) []Product {
	if r.src == nil || len(candidates) < 2 {
		return candidates
	}

	ids := make([]string, len(candidates))
	for i, p := range candidates {
		ids[i] = p.ID
	}
	weights, err := r.src.Weights(ctx, class, ids)
	if err != nil || len(weights) == 0 {
		return candidates
	}

	out := make([]Product, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return weights[out[i].ID] > weights[out[j].ID]
	})
	return out
}
