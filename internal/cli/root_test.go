package cli

import (
	"os"
	"testing"

	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/db"
	"github.com/alphaboost/shoprec/internal/engine"
)

func setupTestShop(t *testing.T) (string, *engine.Store) {
	t.Helper()
	root := t.TempDir()
	database, err := db.Open(config.ShopDBPath(root))
	if err != nil {
		t.Fatalf("open shop db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return root, engine.NewStore(database)
}

func TestLoadRuleTable_MissingFile(t *testing.T) {
	table, err := loadRuleTable(t.TempDir())
	if err != nil {
		t.Fatalf("loadRuleTable: %v", err)
	}
	if len(table.Rules()) != 0 {
		t.Errorf("expected empty table, got %d rules", len(table.Rules()))
	}
}

func TestLoadRuleTable_ReadsFile(t *testing.T) {
	root, _ := setupTestShop(t)
	content := "[[rule]]\nkeywords = [\"anniversary\"]\ntargets = [\"tee-b\"]\nboost = 5\n"
	if err := os.WriteFile(config.RulesPath(root), []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	table, err := loadRuleTable(root)
	if err != nil {
		t.Fatalf("loadRuleTable: %v", err)
	}
	if len(table.Rules()) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(table.Rules()))
	}
	if table.Rules()[0].Boost != 5 {
		t.Errorf("boost = %d", table.Rules()[0].Boost)
	}
}

func TestLoadRuleTable_InvalidFile(t *testing.T) {
	root, _ := setupTestShop(t)
	if err := os.WriteFile(config.RulesPath(root), []byte("[[rule]]\nboost = 5\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if _, err := loadRuleTable(root); err == nil {
		t.Fatal("expected error for invalid rules file")
	}
}

func TestBuildPipeline(t *testing.T) {
	root, store := setupTestShop(t)

	gcfg := config.DefaultGlobal()
	pipeline, table, cache, err := buildPipeline(root, gcfg, store)
	if err != nil {
		t.Fatalf("buildPipeline: %v", err)
	}
	if pipeline == nil || table == nil || cache == nil {
		t.Fatal("buildPipeline returned nil components")
	}
}

func TestEnsureInitialized(t *testing.T) {
	if _, err := ensureInitialized(t.TempDir()); err == nil {
		t.Fatal("expected error for uninitialized shop")
	}

	root, _ := setupTestShop(t)
	dbPath, err := ensureInitialized(root)
	if err != nil {
		t.Fatalf("ensureInitialized: %v", err)
	}
	if dbPath != config.ShopDBPath(root) {
		t.Errorf("dbPath = %q", dbPath)
	}
}
