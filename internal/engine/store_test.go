package engine

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alphaboost/shoprec/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "shoprec.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return NewStore(database)
}

func TestStore_ReplaceAndLoadCatalog(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	items := []Product{
		{
			ID:       "tee-a",
			Title:    "Iron Discipline Tee",
			Handle:   "iron-discipline-tee",
			Body:     "Breathable training tee.",
			Tags:     []string{"training", "gym"},
			Triggers: []string{"gym", "strength"},
			Price:    24.90,
			Material: "cotton",
			Sizes:    []string{"S", "M", "L"},
			Category: "tops",
		},
		{ID: "tee-b", Title: "Heartline Tee", Handle: "heartline-tee"},
	}
	if err := store.ReplaceCatalog(ctx, items); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	got, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("catalog roundtrip:\n got %+v\nwant %+v", got, items)
	}

	// A second replace drops the old rows.
	if err := store.ReplaceCatalog(ctx, items[:1]); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	n, err := store.CountProducts(ctx)
	if err != nil {
		t.Fatalf("CountProducts: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 product after replace, got %d", n)
	}
}

func TestStore_ReplaceCatalogRejectsInvalid(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceCatalog(ctx, []Product{{ID: "ok", Title: "Ok"}}); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	err := store.ReplaceCatalog(ctx, []Product{{Title: "no id"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	// The failed transaction must not have cleared the catalog.
	n, _ := store.CountProducts(ctx)
	if n != 1 {
		t.Errorf("expected previous catalog intact, got %d products", n)
	}
}

func TestStore_UpsertProduct(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := Product{ID: "tee-a", Title: "Iron Discipline Tee", Handle: "iron-discipline-tee"}
	if err := store.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("UpsertProduct: %v", err)
	}

	p.Title = "Iron Discipline Tee v2"
	p.Tags = []string{"training"}
	if err := store.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("UpsertProduct update: %v", err)
	}

	got, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 product, got %d", len(got))
	}
	if got[0].Title != "Iron Discipline Tee v2" || !reflect.DeepEqual(got[0].Tags, []string{"training"}) {
		t.Errorf("update not applied: %+v", got[0])
	}
}

func TestStore_Search(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.ReplaceCatalog(ctx, []Product{
		{ID: "tee-a", Title: "Iron Discipline Tee", Triggers: []string{"gym"}},
		{ID: "hoodie-a", Title: "Winter Armor Hoodie", Body: "For cold mornings."},
		{ID: "mug-a", Title: "Motivation Mug", Tags: []string{"office"}},
	})
	if err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{"trigger match", []string{"gym"}, []string{"tee-a"}},
		{"body match", []string{"cold"}, []string{"hoodie-a"}},
		{"tag match", []string{"office"}, []string{"mug-a"}},
		{"any keyword", []string{"gym", "office"}, []string{"tee-a", "mug-a"}},
		{"case insensitive", []string{"WINTER"}, []string{"hoodie-a"}},
		{"no hit", []string{"sailing"}, nil},
		{"no keywords", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := store.Search(ctx, tt.keywords)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			var got []string
			for _, p := range hits {
				got = append(got, p.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%v) = %v, want %v", tt.keywords, got, tt.want)
			}
		})
	}
}

func TestStore_BumpAndWeights(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Bump(ctx, "gym", "tee-a", KindClick); err != nil {
			t.Fatalf("Bump click: %v", err)
		}
	}
	if err := store.Bump(ctx, "gym", "tee-a", KindPurchase); err != nil {
		t.Fatalf("Bump purchase: %v", err)
	}
	if err := store.Bump(ctx, "gym", "tee-b", KindClick); err != nil {
		t.Fatalf("Bump click: %v", err)
	}
	// A different class is scored independently.
	if err := store.Bump(ctx, "winter", "tee-a", KindPurchase); err != nil {
		t.Fatalf("Bump purchase: %v", err)
	}

	weights, err := store.Weights(ctx, "gym", []string{"tee-a", "tee-b", "tee-c"})
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	// 3 clicks + 1 purchase = 3 + 3.
	if weights["tee-a"] != 6 {
		t.Errorf("tee-a weight = %d, want 6", weights["tee-a"])
	}
	if weights["tee-b"] != 1 {
		t.Errorf("tee-b weight = %d, want 1", weights["tee-b"])
	}
	if _, ok := weights["tee-c"]; ok {
		t.Error("tee-c has no engagement record and must be absent")
	}

	clicks, purchases, err := store.EngagementTotals(ctx)
	if err != nil {
		t.Fatalf("EngagementTotals: %v", err)
	}
	if clicks != 4 || purchases != 2 {
		t.Errorf("totals = %d clicks, %d purchases; want 4, 2", clicks, purchases)
	}
}

func TestStore_BumpDefaultsAndValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Bump(ctx, "", "tee-a", KindClick); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	weights, err := store.Weights(ctx, GeneralClass, []string{"tee-a"})
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if weights["tee-a"] != 1 {
		t.Errorf("empty class should map to %q, weight = %d", GeneralClass, weights["tee-a"])
	}

	if err := store.Bump(ctx, "gym", "tee-a", "view"); err == nil {
		t.Fatal("expected error for unknown engagement kind")
	}
}

func TestStore_RecommendationLog(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	results := []Scored{
		{Product: Product{ID: "tee-b"}, Score: 6},
		{Product: Product{ID: "tee-a"}, Score: 1},
	}
	id, err := store.LogRecommendation(ctx, "anniversary gift", "anniversary", results)
	if err != nil {
		t.Fatalf("LogRecommendation: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	recs, err := store.RecentRecommendations(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRecommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.ID != id || rec.Query != "anniversary gift" || rec.Class != "anniversary" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !reflect.DeepEqual(rec.Results, []string{"tee-b", "tee-a"}) {
		t.Errorf("results = %v", rec.Results)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}

	n, err := store.CountRecommendations(ctx)
	if err != nil {
		t.Fatalf("CountRecommendations: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
