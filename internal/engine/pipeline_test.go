package engine

import (
	"context"
	"errors"
	"testing"
)

func testCatalog() []Product {
	return []Product{
		{
			ID:       "tee-a",
			Title:    "Iron Discipline Tee",
			Handle:   "iron-discipline-tee",
			Tags:     []string{"training"},
			Triggers: []string{"gym", "strength"},
		},
		{
			ID:       "tee-b",
			Title:    "Heartline Tee",
			Handle:   "heartline-tee",
			Tags:     []string{"casual"},
			Triggers: []string{"gift", "love"},
		},
		{
			ID:       "hoodie-a",
			Title:    "Winter Armor Hoodie",
			Handle:   "winter-armor-hoodie",
			Tags:     []string{"outdoor"},
			Triggers: []string{"cold", "winter"},
		},
	}
}

func staticCache(items []Product) *Cache {
	return NewCache(func(ctx context.Context) ([]Product, error) {
		return items, nil
	}, 0, nil)
}

type fakeSearcher struct {
	hits []Product
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, keywords []string) ([]Product, error) {
	return f.hits, f.err
}

func TestPipeline_RankedRuleBoost(t *testing.T) {
	table := NewTable([]Rule{
		{Keywords: []string{"anniversary"}, Targets: []string{"tee-b"}, Boost: 5},
	})
	p := NewPipeline(staticCache(testCatalog()), table, nil, nil, ModeRanked)

	got, err := p.Recommend(context.Background(), "anniversary gift", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	// One token overlap ("gift" trigger) plus the boost.
	if got[0].Product.ID != "tee-b" || got[0].Score != 6 {
		t.Errorf("got %s score %d, want tee-b score 6", got[0].Product.ID, got[0].Score)
	}
}

func TestPipeline_EmptyQuery(t *testing.T) {
	p := NewPipeline(staticCache(testCatalog()), nil, nil, nil, ModeRanked)

	for _, query := range []string{"", "   ", "\t\n"} {
		got, err := p.Recommend(context.Background(), query, 3)
		if err != nil {
			t.Errorf("Recommend(%q): %v", query, err)
		}
		if len(got) != 0 {
			t.Errorf("Recommend(%q) = %v, want empty", query, got)
		}
	}
}

func TestPipeline_EmptyCatalog(t *testing.T) {
	p := NewPipeline(staticCache(nil), nil, nil, nil, ModeRanked)

	got, err := p.Recommend(context.Background(), "gym tee", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results from empty catalog, got %v", got)
	}
}

func TestPipeline_LimitAndDefault(t *testing.T) {
	// Every product carries the shared tag so all three overlap.
	items := testCatalog()
	for i := range items {
		items[i].Tags = append(items[i].Tags, "apparel")
	}
	p := NewPipeline(staticCache(items), nil, nil, nil, ModeRanked)

	got, err := p.Recommend(context.Background(), "apparel", 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit 2: got %d results", len(got))
	}

	got, err = p.Recommend(context.Background(), "apparel", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != DefaultLimit {
		t.Errorf("limit 0: got %d results, want %d", len(got), DefaultLimit)
	}
}

func TestPipeline_RuleFallback(t *testing.T) {
	table := NewTable([]Rule{
		{Keywords: []string{"valentines"}, Targets: []string{"tee-b"}, Boost: 5},
	})
	p := NewPipeline(staticCache(testCatalog()), table, nil, nil, ModeRanked)

	// No catalog token overlaps "valentines"; the rule still produces its
	// first target.
	got, err := p.Recommend(context.Background(), "valentines", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].Product.ID != "tee-b" {
		t.Fatalf("expected tee-b fallback, got %v", got)
	}
	if got[0].Score != 0 {
		t.Errorf("fallback score = %d, want 0", got[0].Score)
	}
}

func TestPipeline_SearcherHits(t *testing.T) {
	searcher := &fakeSearcher{hits: []Product{testCatalog()[2]}}
	p := NewPipeline(staticCache(testCatalog()), nil, nil, searcher, ModeRanked)

	got, err := p.Recommend(context.Background(), "winter hoodie", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].Product.ID != "hoodie-a" {
		t.Fatalf("expected searcher hit hoodie-a only, got %v", got)
	}
}

func TestPipeline_SearcherErrorDegrades(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("db locked")}
	p := NewPipeline(staticCache(testCatalog()), nil, nil, searcher, ModeRanked)

	got, err := p.Recommend(context.Background(), "winter hoodie", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].Product.ID != "hoodie-a" {
		t.Fatalf("expected local scan to find hoodie-a, got %v", got)
	}
}

func TestPipeline_EngagementRerank(t *testing.T) {
	items := []Product{
		{ID: "tee-a", Title: "Gym Tee One"},
		{ID: "tee-b", Title: "Gym Tee Two"},
		{ID: "tee-c", Title: "Gym Tee Three"},
	}
	src := &fakeEngagement{weights: map[string]int{"tee-c": 9}}
	p := NewPipeline(staticCache(items), nil, NewRanker(src), nil, ModeRanked)

	got, err := p.Recommend(context.Background(), "gym tee", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []string{"tee-c", "tee-a", "tee-b"}
	for i, id := range want {
		if got[i].Product.ID != id {
			t.Fatalf("rerank order wrong at %d: got %s, want %s", i, got[i].Product.ID, id)
		}
	}
	// Lexical scores survive the reorder.
	for _, s := range got {
		if s.Score != 2 {
			t.Errorf("%s score = %d, want 2", s.Product.ID, s.Score)
		}
	}
	// Engagement is scoped by the first query keyword.
	if src.lastClass != "gym" {
		t.Errorf("engagement class = %q, want gym", src.lastClass)
	}
}

func TestPipeline_ModeSingle(t *testing.T) {
	p := NewPipeline(staticCache(testCatalog()), nil, nil, nil, ModeSingle)

	got, err := p.Recommend(context.Background(), "strength for the gym", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ModeSingle returned %d results", len(got))
	}
	if got[0].Product.ID != "tee-a" || got[0].Score != 2 {
		t.Errorf("got %s score %d, want tee-a score 2", got[0].Product.ID, got[0].Score)
	}
}

func TestPipeline_ModeSingleRuleFallback(t *testing.T) {
	table := NewTable([]Rule{
		{Keywords: []string{"anniversary"}, Targets: []string{"tee-b"}, Boost: 5},
	})
	p := NewPipeline(staticCache(testCatalog()), table, nil, nil, ModeSingle)

	// The rule boost alone wins even without a trigger match.
	got, err := p.Recommend(context.Background(), "our anniversary", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].Product.ID != "tee-b" {
		t.Fatalf("expected tee-b, got %v", got)
	}
}

func TestPipeline_ModeSingleNoMatch(t *testing.T) {
	p := NewPipeline(staticCache(testCatalog()), nil, nil, nil, ModeSingle)

	got, err := p.Recommend(context.Background(), "quantum flux capacitor", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestTriggerClass(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"gym tee", "gym"},
		{"I want the best", "best"},
		{"", GeneralClass},
		{"a an of", GeneralClass},
	}
	for _, tt := range tests {
		if got := TriggerClass(tt.query); got != tt.want {
			t.Errorf("TriggerClass(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
