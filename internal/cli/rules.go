package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/engine"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and validate the trigger-rule table",
		Long: `Print the rules from .shoprec/rules.toml and flag boost targets that do
not exist in the catalog. Unknown targets are not an error — scoring skips
them silently — but they usually mean the rule file is stale.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}

			path := config.RulesPath(root)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("No rules defined.")
				return nil
			}
			rules, err := engine.LoadRules(path)
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				fmt.Println("No rules defined.")
				return nil
			}

			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			items, err := store.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			for i, r := range rules {
				fmt.Printf("%d. keywords: %s\n   targets:  %s (boost +%d)\n",
					i+1, strings.Join(r.Keywords, ", "), strings.Join(r.Targets, ", "), r.Boost)
			}

			if unknown := engine.UnknownTargets(rules, items); len(unknown) > 0 {
				fmt.Printf("\nwarning: %d target(s) not in the catalog: %s\n",
					len(unknown), strings.Join(unknown, ", "))
			}
			return nil
		},
	}
	return cmd
}
