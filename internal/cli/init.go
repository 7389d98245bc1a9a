package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/db"
)

// starterRules seeds a new shop with one example rule so the file format
// is self-documenting.
const starterRules = `# Trigger rules: when any keyword phrase appears in the customer message,
# the listed product IDs get the boost added to their score.
#
# [[rule]]
# keywords = ["anniversary", "wedding gift"]
# targets  = ["angel-tee"]
# boost    = 5
`

func newInitCmd() *cobra.Command {
	var shopName string
	var baseURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a shop in the current directory",
		Long: `Create the .shoprec directory with a fresh database, a shop config,
and a starter rules.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			dir := config.ShopConfigDirPath(root)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			// Opening the database applies migrations.
			database, err := db.Open(config.ShopDBPath(root))
			if err != nil {
				return fmt.Errorf("create database: %w", err)
			}
			defer database.Close()

			if shopName == "" {
				shopName = filepath.Base(root)
			}
			if err := config.SaveShop(root, config.ShopConfig{
				Shop: config.ShopMeta{Name: shopName, BaseURL: baseURL},
			}); err != nil {
				return err
			}

			rulesPath := config.RulesPath(root)
			if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
				if err := os.WriteFile(rulesPath, []byte(starterRules), 0o644); err != nil {
					return fmt.Errorf("write rules file: %w", err)
				}
			}

			fmt.Printf("Initialized shop %q in %s\n", shopName, dir)
			fmt.Println("Next: shoprec import <catalog.json>")
			return nil
		},
	}

	cmd.Flags().StringVar(&shopName, "name", "", "shop name (default: directory name)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "store base URL used to form product links")

	return cmd
}
