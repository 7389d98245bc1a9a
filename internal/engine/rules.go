package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Rule boosts specific products when one of its keyword phrases appears in
// the query. Phrases are matched as literal substrings of the lower-cased
// query (they may contain spaces), and targets are stable product IDs.
type Rule struct {
	Keywords []string `toml:"keywords"`
	Targets  []string `toml:"targets"`
	Boost    int      `toml:"boost"`
}

// Active reports whether any of the rule's keyword phrases is a substring
// of the lower-cased query text.
func (r Rule) Active(loweredQuery string) bool {
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(loweredQuery, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ruleFile is the on-disk shape of the rule table: a list of [[rule]]
// records.
type ruleFile struct {
	Rules []Rule `toml:"rule"`
}

// LoadRules reads the rule table from a TOML file. Declaration order is
// preserved; it drives the rule-fallback selection.
func LoadRules(path string) ([]Rule, error) {
	var rf ruleFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return nil, fmt.Errorf("rules: load %s: %w", path, err)
	}
	for i, r := range rf.Rules {
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rules: rule %d has no keywords", i+1)
		}
		if len(r.Targets) == 0 {
			return nil, fmt.Errorf("rules: rule %d has no targets", i+1)
		}
		if r.Boost <= 0 {
			return nil, fmt.Errorf("rules: rule %d has non-positive boost %d", i+1, r.Boost)
		}
	}
	return rf.Rules, nil
}

// Table holds the active rule set. Rules are immutable once published;
// Replace swaps in a new set wholesale, which makes the table
// hot-reloadable from a file watcher.
type Table struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewTable creates a Table with the given initial rules.
func NewTable(rules []Rule) *Table {
	return &Table{rules: rules}
}

// Replace swaps the rule set.
func (t *Table) Replace(rules []Rule) {
	t.mu.Lock()
	t.rules = rules
	t.mu.Unlock()
}

// Rules returns the current rule set in declaration order.
func (t *Table) Rules() []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rules
}

// Active returns the rules activated by the query, in declaration order.
func (t *Table) Active(query string) []Rule {
	lowered := strings.ToLower(query)
	var active []Rule
	for _, r := range t.Rules() {
		if r.Active(lowered) {
			active = append(active, r)
		}
	}
	return active
}

// UnknownTargets returns rule target IDs that do not exist in the catalog
// snapshot. Such targets are legal (scoring silently skips them) but
// usually indicate a stale rule file, so the CLI reports them.
func UnknownTargets(rules []Rule, items []Product) []string {
	known := make(map[string]bool, len(items))
	for _, p := range items {
		known[p.ID] = true
	}
	var unknown []string
	seen := make(map[string]bool)
	for _, r := range rules {
		for _, id := range r.Targets {
			if !known[id] && !seen[id] {
				seen[id] = true
				unknown = append(unknown, id)
			}
		}
	}
	return unknown
}
