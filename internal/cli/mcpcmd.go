package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/engine"
	mcpserver "github.com/alphaboost/shoprec/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the recommender as MCP tools over stdio",
		Long: `Start an MCP server exposing recommend_products, record_engagement, and
shop_status, so chat agents can drive the recommendation loop.

While serving, .shoprec/ is watched: rules.toml edits hot-reload the rule
table and database writes from other shoprec processes invalidate the
catalog snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}
			gcfg, err := config.Load(root)
			if err != nil {
				gcfg = config.DefaultGlobal()
			}
			scfg, _ := config.LoadShop(root)

			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			pipeline, table, cache, err := buildPipeline(root, gcfg, store)
			if err != nil {
				return err
			}

			stop, err := watchShopDir(root, table, cache)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: shop dir watch disabled: %v\n", err)
			} else {
				defer stop()
			}

			srv := mcpserver.NewServer(store, pipeline, scfg.Shop.BaseURL, version)
			return srv.ServeStdio()
		},
	}
	return cmd
}

// watchShopDir hot-reloads rules.toml and invalidates the catalog cache
// when another process writes to the shop database. Returns a stop
// function closing the watcher.
func watchShopDir(root string, table *engine.Table, cache *engine.Cache) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(config.ShopConfigDirPath(root)); err != nil {
		watcher.Close()
		return nil, err
	}

	rulesPath := config.RulesPath(root)
	dbPath := config.ShopDBPath(root)

	go func() {
		// Light debounce: SQLite touches the db and -wal files in bursts.
		var lastInvalidate time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				switch {
				case event.Name == rulesPath:
					if rules, err := engine.LoadRules(rulesPath); err == nil {
						table.Replace(rules)
					}
				case strings.HasPrefix(event.Name, dbPath):
					if time.Since(lastInvalidate) > time.Second {
						lastInvalidate = time.Now()
						cache.Invalidate()
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
