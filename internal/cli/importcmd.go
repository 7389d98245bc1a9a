package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/engine"
)

func newImportCmd() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "import <catalog.json>",
		Short: "Load a catalog snapshot into the shop database",
		Long: `Read a JSON array of products and store it as the shop catalog.

By default the stored catalog is replaced wholesale, matching the snapshot
semantics of the engine; --merge upserts items one by one instead, leaving
products absent from the file untouched.`,
		Args: cobra.ExactArgs(1),
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

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read catalog file: %w", err)
			}
			var items []engine.Product
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("parse catalog file: %w", err)
			}
			if len(items) == 0 {
				return fmt.Errorf("catalog file contains no products")
			}
			for _, p := range items {
				if err := p.Validate(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if merge {
				bar := progressbar.Default(int64(len(items)), "importing")
				for _, p := range items {
					if err := store.UpsertProduct(ctx, p); err != nil {
						return err
					}
					_ = bar.Add(1)
				}
			} else {
				if err := store.ReplaceCatalog(ctx, items); err != nil {
					return err
				}
			}

			fmt.Printf("Imported %d products.\n", len(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "upsert products instead of replacing the catalog")

	return cmd
}
