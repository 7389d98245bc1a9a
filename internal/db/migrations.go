package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL migration statements.
// Each entry is applied once in order. New migrations are appended at the end.
var migrations = []string{
	// Migration 0: initial schema
	`CREATE TABLE IF NOT EXISTS products (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		handle     TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '[]',
		triggers   TEXT NOT NULL DEFAULT '[]',
		price      REAL DEFAULT 0,
		material   TEXT DEFAULT '',
		sizes      TEXT DEFAULT '[]',
		category   TEXT DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS engagement (
		class      TEXT NOT NULL,
		product_id TEXT NOT NULL,
		clicks     INTEGER NOT NULL DEFAULT 0,
		purchases  INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (class, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS recommendations (
		id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		query      TEXT NOT NULL,
		class      TEXT NOT NULL,
		results    TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_products_category       ON products(category)`,
	`CREATE INDEX IF NOT EXISTS idx_engagement_product      ON engagement(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_created ON recommendations(created_at DESC)`,
}

// applyMigrations runs any migrations that have not yet been applied.
func applyMigrations(conn *sql.DB) error {
	// Ensure the migration tracking table exists first.
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmt := range migrations {
		var count int
		row := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, i)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", i, err)
		}
		if count > 0 {
			continue
		}

		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}

		if _, err := conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i); err != nil {
			return fmt.Errorf("record migration %d: %w", i, err)
		}
	}

	return nil
}
