package engine

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// DefaultLimit is the number of recommendations returned when the caller
// does not specify one.
const DefaultLimit = 3

// Mode selects the pipeline's ranking semantics. A deployment picks one
// mode per Pipeline instance; mixing modes across requests against the
// same instance is not supported.
type Mode int

const (
	// ModeRanked returns an ordered list: keyword search over the
	// snapshot (token-overlap fallback), rule boosting, then
	// engagement re-ranking.
	ModeRanked Mode = iota
	// ModeSingle returns at most one product: the best rule-boosted
	// trigger-phrase match over the full catalog.
	ModeSingle
)

// GeneralClass scopes engagement counters when the query yields no
// keywords.
const GeneralClass = "general"

// Pipeline orchestrates tokenization, catalog lookup, scoring, rule
// boosting and engagement re-ranking into a single recommendation call.
type Pipeline struct {
	cache    *Cache
	rules    *Table
	ranker   *Ranker
	searcher Searcher
	mode     Mode
}

// NewPipeline creates a Pipeline. rules, ranker and searcher may be nil;
// the corresponding stages then degrade to no-ops (no boosts, input-order
// ranking, local snapshot scan).
func NewPipeline(cache *Cache, rules *Table, ranker *Ranker, searcher Searcher, mode Mode) *Pipeline {
	if ranker == nil {
		ranker = NewRanker(nil)
	}
	return &Pipeline{cache: cache, rules: rules, ranker: ranker, searcher: searcher, mode: mode}
}

// TriggerClass returns the engagement key for a query: its first
// extracted keyword, or GeneralClass when the query yields none.
func TriggerClass(query string) string {
	if tokens := QueryTokens(query); len(tokens) > 0 {
		return tokens[0]
	}
	return GeneralClass
}

// Recommend returns up to limit scored products for the query, best
// first. Empty or malformed queries yield an empty list, never an error;
// a catalog load failure is returned only when no cached snapshot exists
// at all.
func (p *Pipeline) Recommend(ctx context.Context, query string, limit int) ([]Scored, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	snap, err := p.cache.Snapshot(ctx)
	if snap == nil || len(snap.Items) == 0 {
		return nil, err
	}

	active := p.activeRules(query)

	var results []Scored
	if p.mode == ModeSingle {
		if best, ok := p.bestMatch(query, snap.Items, active); ok {
			results = []Scored{best}
		}
	} else {
		results = p.ranked(ctx, query, snap.Items, active)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ranked implements ModeRanked: candidate search, rule boosting, then
// engagement re-ranking scoped by the query's trigger class.
func (p *Pipeline) ranked(ctx context.Context, query string, items []Product, active []Rule) []Scored {
	keywords := QueryTokens(query)

	var candidates []Scored
	if p.searcher != nil && len(keywords) > 0 {
		hits, err := p.searcher.Search(ctx, keywords)
		if err != nil {
			// Degraded local mode: substring scan over the snapshot.
			hits = regexScan(items, keywords)
		}
		candidates = overlapScored(hits, keywords)
	}

	if len(candidates) == 0 {
		candidates = overlapScored(items, keywords)
	}

	for i := range candidates {
		candidates[i].Score += ruleBoost(active, candidates[i].Product.ID)
	}

	// A rule never fires without producing a recommendation: fall back
	// to the first existing boost target even at zero lexical overlap.
	if len(candidates) == 0 {
		if fb, ok := RuleFallback(active, items); ok {
			candidates = []Scored{{Product: fb}}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	class := GeneralClass
	if len(keywords) > 0 {
		class = keywords[0]
	}
	return p.rerank(ctx, class, candidates)
}

// bestMatch implements ModeSingle: the full-catalog trigger-phrase scorer
// with rule boosts, one winner (first on ties), or the rule fallback.
func (p *Pipeline) bestMatch(query string, items []Product, active []Rule) (Scored, bool) {
	best := Scored{Score: -1}
	for _, item := range items {
		if s := Score(query, item, active); s > best.Score {
			best = Scored{Product: item, Score: s}
		}
	}
	if best.Score > 0 {
		return best, true
	}
	if fb, ok := RuleFallback(active, items); ok {
		return Scored{Product: fb}, true
	}
	return Scored{}, false
}

// rerank applies engagement weights while preserving lexical order among
// equally-weighted candidates.
func (p *Pipeline) rerank(ctx context.Context, class string, candidates []Scored) []Scored {
	if len(candidates) < 2 {
		return candidates
	}
	products := make([]Product, len(candidates))
	scoreByID := make(map[string]int, len(candidates))
	for i, c := range candidates {
		products[i] = c.Product
		scoreByID[c.Product.ID] = c.Score
	}
	ranked := p.ranker.Rank(ctx, class, products)
	out := make([]Scored, len(ranked))
	for i, prod := range ranked {
		out[i] = Scored{Product: prod, Score: scoreByID[prod.ID]}
	}
	return out
}

func (p *Pipeline) activeRules(query string) []Rule {
	if p.rules == nil {
		return nil
	}
	return p.rules.Active(query)
}

// overlapScored scores items with the token-overlap matcher and keeps
// those above zero, in input order.
func overlapScored(items []Product, keywords []string) []Scored {
	if len(keywords) == 0 {
		return nil
	}
	var out []Scored
	for _, item := range items {
		if s := OverlapScore(keywords, productTokens(item)); s > 0 {
			out = append(out, Scored{Product: item, Score: s})
		}
	}
	return out
}

// regexScan is the local degraded search: items whose title, body, tags
// or triggers match any keyword as a whole word.
func regexScan(items []Product, keywords []string) []Product {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	re, err := regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil
	}

	var hits []Product
	for _, item := range items {
		var sb strings.Builder
		sb.WriteString(item.Title)
		sb.WriteByte(' ')
		sb.WriteString(item.Body)
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(item.Tags, " "))
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(item.Triggers, " "))
		if re.MatchString(sb.String()) {
			hits = append(hits, item)
		}
	}
	return hits
}
