// Package cli defines the Cobra command tree for the shoprec CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/db"
	"github.com/alphaboost/shoprec/internal/engine"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shoprec",
	Short: "Rule-boosted product recommendations with an engagement feedback loop",
	Long: `Shoprec recommends catalog products in response to free-text customer
messages. It combines trigger-phrase matching and a declarative boost-rule
table with click/purchase feedback, so the ranking improves as customers
engage.

Run 'shoprec init' in a shop directory to get started, then
'shoprec import catalog.json' to load products.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		newInitCmd(),
		newImportCmd(),
		newRecommendCmd(),
		newFeedbackCmd(),
		newRulesCmd(),
		newWatchCmd(),
		newStatusCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shoprec %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// findRoot walks up from the working directory looking for a .shoprec
// directory.
func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".shoprec")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no .shoprec directory found; run `shoprec init` first")
		}
		dir = parent
	}
}

// ensureInitialized verifies the shop database exists and returns its path.
func ensureInitialized(root string) (string, error) {
	dbPath := config.ShopDBPath(root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("shoprec not initialized; run `shoprec init` first")
	}
	return dbPath, nil
}

// openStore opens the shop database and wraps it in a Store. The caller
// owns the returned DB and must close it.
func openStore(root string) (*db.DB, *engine.Store, error) {
	dbPath, err := ensureInitialized(root)
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return database, engine.NewStore(database), nil
}

// loadRuleTable loads the shop's rule table. A missing rules file is not
// an error; the engine just runs without boosts.
func loadRuleTable(root string) (*engine.Table, error) {
	path := config.RulesPath(root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return engine.NewTable(nil), nil
	}
	rules, err := engine.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return engine.NewTable(rules), nil
}

// buildPipeline assembles the recommendation pipeline for a shop. The
// table and cache are returned alongside so long-running commands can
// hot-reload rules and invalidate the snapshot.
func buildPipeline(root string, gcfg config.GlobalConfig, store *engine.Store) (*engine.Pipeline, *engine.Table, *engine.Cache, error) {
	table, err := loadRuleTable(root)
	if err != nil {
		return nil, nil, nil, err
	}

	mode := engine.ModeRanked
	if gcfg.Engine.Mode == "single" {
		mode = engine.ModeSingle
	}

	cache := engine.NewCache(store.LoadCatalog, gcfg.Engine.CacheTTL(), nil)
	ranker := engine.NewRanker(store)
	return engine.NewPipeline(cache, table, ranker, store, mode), table, cache, nil
}
