package engine

import (
	"regexp"
	"strings"
	"unicode"
)

// maxQueryTokens bounds adversarial-length queries. Catalog items are
// tokenized without a cap.
const maxQueryTokens = 10

var markupRe = regexp.MustCompile(`<[^>]*>`)

// stopwords are articles, common pronouns and prepositions excluded from
// matching. Length-2-or-less tokens are dropped separately, so only longer
// filler words need to appear here.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "can": true, "may": true, "might": true,
	"not": true, "but": true, "than": true, "then": true, "that": true,
	"this": true, "these": true, "those": true, "with": true, "from": true,
	"into": true, "about": true, "out": true, "you": true, "your": true,
	"yours": true, "she": true, "her": true, "hers": true, "him": true,
	"his": true, "they": true, "them": true, "their": true, "our": true,
	"ours": true, "its": true, "what": true, "which": true, "who": true,
	"whom": true, "how": true, "when": true, "where": true, "why": true,
	"some": true, "any": true, "all": true, "just": true, "very": true,
	"want": true, "need": true, "looking": true, "like": true,
}

// Tokenize normalizes text into a deduplicated list of significant words:
// lower-cased, markup stripped, split on runs of non-alphanumerics, with
// stopwords and tokens of length <= 2 removed. Order is first-occurrence,
// so repeated calls on the same input are deterministic.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(markupRe.ReplaceAllString(text, " "))
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(words))
	var tokens []string
	for _, w := range words {
		if len(w) <= 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// QueryTokens is the query-side variant of Tokenize: identical
// normalization, truncated to the first maxQueryTokens tokens.
func QueryTokens(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) > maxQueryTokens {
		tokens = tokens[:maxQueryTokens]
	}
	return tokens
}

// productTokens derives the unbounded token set for a catalog item from
// its title, body, tags and trigger phrases.
func productTokens(p Product) []string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	sb.WriteByte(' ')
	sb.WriteString(p.Body)
	for _, t := range p.Tags {
		sb.WriteByte(' ')
		sb.WriteString(t)
	}
	for _, t := range p.Triggers {
		sb.WriteByte(' ')
		sb.WriteString(t)
	}
	return Tokenize(sb.String())
}
