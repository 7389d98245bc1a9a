package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/engine"
)

func newWatchCmd() *cobra.Command {
	var (
		catalogFile string
		debounceMs  int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the rules file (and optionally a catalog file) for changes",
		Long: `Start a long-running watcher on .shoprec/rules.toml. Edits are validated
and reported as they land; with --catalog, changes to the given JSON file
are re-imported into the shop database, so a catalog export dropped by an
upstream sync lands without restarting anything.

Changes are debounced so a burst of writes is handled once.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}
			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the containing directories: editors replace files on
			// save, which drops watches on the files themselves.
			rulesPath := config.RulesPath(root)
			if err := watcher.Add(filepath.Dir(rulesPath)); err != nil {
				return fmt.Errorf("watch rules dir: %w", err)
			}
			if catalogFile != "" {
				abs, err := filepath.Abs(catalogFile)
				if err != nil {
					return err
				}
				catalogFile = abs
				if err := watcher.Add(filepath.Dir(abs)); err != nil {
					return fmt.Errorf("watch catalog dir: %w", err)
				}
			}

			debounce := time.Duration(debounceMs) * time.Millisecond
			fmt.Printf("Watching %s", rulesPath)
			if catalogFile != "" {
				fmt.Printf(" and %s", catalogFile)
			}
			fmt.Printf(" (debounce %s). Press Ctrl-C to stop.\n", debounce)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			pending := make(map[string]bool)
			timer := time.NewTimer(debounce)
			timer.Stop() // Don't fire immediately.

			for {
				select {
				case <-sigCh:
					fmt.Println("\nStopping watcher.")
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
						continue
					}
					switch event.Name {
					case rulesPath, catalogFile:
						pending[event.Name] = true
						timer.Reset(debounce)
					}

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "  watch error: %v\n", err)

				case <-timer.C:
					if len(pending) == 0 {
						continue
					}
					batch := pending
					pending = make(map[string]bool)

					ts := time.Now().Format("15:04:05")
					if batch[rulesPath] {
						if rules, err := engine.LoadRules(rulesPath); err != nil {
							fmt.Printf("[%s] rules: %v\n", ts, err)
						} else {
							fmt.Printf("[%s] rules reloaded (%d rules)\n", ts, len(rules))
						}
					}
					if catalogFile != "" && batch[catalogFile] {
						n, err := reimportCatalog(cmd, store, catalogFile)
						if err != nil {
							fmt.Printf("[%s] catalog: %v\n", ts, err)
						} else {
							fmt.Printf("[%s] catalog reimported (%d products)\n", ts, n)
						}
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog JSON file to re-import on change")
	cmd.Flags().IntVar(&debounceMs, "debounce", 500, "debounce interval in milliseconds")

	return cmd
}

// reimportCatalog re-reads the catalog file and replaces the stored
// catalog.
func reimportCatalog(cmd *cobra.Command, store *engine.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var items []engine.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("no products in %s", path)
	}
	if err := store.ReplaceCatalog(cmd.Context(), items); err != nil {
		return 0, err
	}
	return len(items), nil
}
