package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alphaboost/shoprec/internal/db"
)

// Store provides read/write access to the shoprec SQLite database. It is
// the catalog Loader and keyword Searcher consumed by the Pipeline, and
// the mutation path for engagement counters.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given DB.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Conn exposes the underlying *sql.DB for low-level queries.
func (s *Store) Conn() *sql.DB {
	return s.db.Conn()
}

// ---- Catalog ----

// ReplaceCatalog swaps the stored catalog wholesale inside a transaction.
// Used by the import command; the cache is invalidated separately.
func (s *Store) ReplaceCatalog(ctx context.Context, items []Product) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: replace catalog: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("store: clear products: %w", err)
	}
	for _, p := range items {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("store: replace catalog: %w", err)
		}
		if err := upsertProduct(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertProduct inserts or updates a single product, as driven by a
// catalog-change notification for one item.
func (s *Store) UpsertProduct(ctx context.Context, p Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("store: upsert product: %w", err)
	}
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: upsert product: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertProduct(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertProduct(ctx context.Context, tx *sql.Tx, p Product) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO products (id, title, handle, body, tags, triggers, price, material, sizes, category, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		    title      = excluded.title,
		    handle     = excluded.handle,
		    body       = excluded.body,
		    tags       = excluded.tags,
		    triggers   = excluded.triggers,
		    price      = excluded.price,
		    material   = excluded.material,
		    sizes      = excluded.sizes,
		    category   = excluded.category,
		    updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Title, p.Handle, p.Body,
		marshalStrings(p.Tags), marshalStrings(p.Triggers),
		p.Price, p.Material, marshalStrings(p.Sizes), p.Category,
	)
	if err != nil {
		return fmt.Errorf("store: upsert product %s: %w", p.ID, err)
	}
	return nil
}

// LoadCatalog returns every stored product in insertion-stable ID order.
// It satisfies the Loader signature consumed by the catalog cache.
func (s *Store) LoadCatalog(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, title, handle, body, tags, triggers, price, material, sizes, category FROM products ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: load catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanProducts(rows)
}

// Search returns products whose title, body, tags or triggers contain any
// of the keywords. It is the Pipeline's primary-mode search collaborator.
func (s *Store) Search(ctx context.Context, keywords []string) ([]Product, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	var clauses []string
	var args []any
	for _, kw := range keywords {
		pattern := "%" + strings.ToLower(kw) + "%"
		clauses = append(clauses,
			`(lower(title) LIKE ? OR lower(body) LIKE ? OR lower(tags) LIKE ? OR lower(triggers) LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	query := `SELECT id, title, handle, body, tags, triggers, price, material, sizes, category
		FROM products WHERE ` + strings.Join(clauses, " OR ") + ` ORDER BY rowid`

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search products: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanProducts(rows)
}

// CountProducts returns the number of stored products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

// ---- Engagement ----

// Bump increments the click or purchase counter for (class, productID),
// creating the record on first event. This is the only mutation path into
// engagement counters; records are never deleted.
func (s *Store) Bump(ctx context.Context, class, productID string, kind EngagementKind) error {
	if !ValidEngagementKind(kind) {
		return fmt.Errorf("store: invalid engagement kind %q", kind)
	}
	if class == "" {
		class = GeneralClass
	}

	column := "clicks"
	if kind == KindPurchase {
		column = "purchases"
	}
	stmt := fmt.Sprintf(`
		INSERT INTO engagement (class, product_id, %[1]s)
		VALUES (?, ?, 1)
		ON CONFLICT(class, product_id) DO UPDATE SET
		    %[1]s      = %[1]s + 1,
		    updated_at = CURRENT_TIMESTAMP`, column)

	if _, err := s.db.Conn().ExecContext(ctx, stmt, class, productID); err != nil {
		return fmt.Errorf("store: bump engagement: %w", err)
	}
	return nil
}

// Weights returns the engagement weight (clicks + purchases*3) per product
// for the given class. Products without a record are absent from the map.
func (s *Store) Weights(ctx context.Context, class string, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+1)
	args = append(args, class)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.Conn().QueryContext(ctx, fmt.Sprintf(
		`SELECT product_id, clicks*%d + purchases*%d FROM engagement
		 WHERE class = ? AND product_id IN (%s)`,
		ClickWeight, PurchaseWeight, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("store: engagement weights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	weights := make(map[string]int)
	for rows.Next() {
		var id string
		var w int
		if err := rows.Scan(&id, &w); err != nil {
			return nil, err
		}
		weights[id] = w
	}
	return weights, rows.Err()
}

// EngagementTotals returns the catalog-wide click and purchase counts.
func (s *Store) EngagementTotals(ctx context.Context) (clicks, purchases int, err error) {
	err = s.db.Conn().QueryRowContext(ctx,
		`SELECT COALESCE(SUM(clicks),0), COALESCE(SUM(purchases),0) FROM engagement`,
	).Scan(&clicks, &purchases)
	return clicks, purchases, err
}

// ---- Recommendation log ----

// Recommendation records one served recommend call for the status view.
type Recommendation struct {
	ID        string
	Query     string
	Class     string
	Results   []string // product IDs, best first
	CreatedAt time.Time
}

// LogRecommendation persists the outcome of a recommend call and returns
// the generated row ID.
func (s *Store) LogRecommendation(ctx context.Context, query, class string, results []Scored) (string, error) {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Product.ID
	}

	var id string
	err := s.db.Conn().QueryRowContext(ctx, `
		INSERT INTO recommendations (id, query, class, results)
		VALUES (lower(hex(randomblob(16))), ?, ?, ?)
		RETURNING id`,
		query, class, marshalStrings(ids),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("store: log recommendation: %w", err)
	}
	return id, nil
}

// RecentRecommendations returns the n most recent logged calls, newest
// first.
func (s *Store) RecentRecommendations(ctx context.Context, n int) ([]Recommendation, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, query, class, results, created_at
		FROM recommendations
		ORDER BY created_at DESC
		LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("store: recent recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Recommendation
	for rows.Next() {
		var rec Recommendation
		var results, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Class, &results, &createdAt); err != nil {
			return nil, err
		}
		rec.Results = unmarshalStrings(results)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountRecommendations returns the total number of logged recommend calls.
func (s *Store) CountRecommendations(ctx context.Context) (int, error) {
	var n int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM recommendations`).Scan(&n)
	return n, err
}

// ---- Helpers ----

func scanProducts(rows *sql.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		var tags, triggers, sizes string
		if err := rows.Scan(&p.ID, &p.Title, &p.Handle, &p.Body, &tags, &triggers,
			&p.Price, &p.Material, &sizes, &p.Category); err != nil {
			return nil, err
		}
		p.Tags = unmarshalStrings(tags)
		p.Triggers = unmarshalStrings(triggers)
		p.Sizes = unmarshalStrings(sizes)
		out = append(out, p)
	}
	return out, rows.Err()
}

func marshalStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// parseTime tries multiple SQLite timestamp layouts.
// go-sqlite3 may return RFC3339 or the plain "2006-01-02 15:04:05" format
// depending on the connection string and platform.
func parseTime(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
