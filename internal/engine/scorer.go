package engine

import "strings"

// Score computes the primary match score for one product: the number of
// its trigger phrases occurring as literal substrings of the lower-cased
// query, plus the boost of every active rule targeting its ID. Substring
// matching is deliberate so multi-word phrases like "muscle tee" count.
// Each rule contributes its boost at most once per product, no matter how
// many of its keywords matched the query.
func Score(query string, p Product, active []Rule) int {
	lowered := strings.ToLower(query)

	score := 0
	for _, trigger := range p.Triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(trigger)) {
			score++
		}
	}

	return score + ruleBoost(active, p.ID)
}

// ruleBoost sums the boosts of active rules targeting the given product
// ID, counting each rule once.
func ruleBoost(active []Rule, id string) int {
	total := 0
	for _, r := range active {
		for _, target := range r.Targets {
			if target == id {
				total += r.Boost
				break
			}
		}
	}
	return total
}

// RuleFallback picks the product an active rule should still recommend
// when nothing in the catalog scored above zero: the first boost target,
// in rule-declaration order, that exists in the catalog. The returned
// product carries a literal score of 0; the rule fired on topic, not on
// lexical overlap.
func RuleFallback(active []Rule, items []Product) (Product, bool) {
	if len(active) == 0 {
		return Product{}, false
	}
	byID := make(map[string]Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	for _, r := range active {
		for _, id := range r.Targets {
			if p, ok := byID[id]; ok {
				return p, true
			}
		}
	}
	return Product{}, false
}

// OverlapScore is the catalog-independent secondary matcher: it counts
// query tokens that partially match any item token, where token A matches
// token B if either contains the other. Each query token counts at most
// once.
func OverlapScore(queryTokens, itemTokens []string) int {
	score := 0
	for _, qt := range queryTokens {
		for _, it := range itemTokens {
			if strings.Contains(it, qt) || strings.Contains(qt, it) {
				score++
				break
			}
		}
	}
	return score
}
