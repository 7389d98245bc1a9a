package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/config"
)

func newStatusCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog size, engagement totals, and recent recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}
			scfg, _ := config.LoadShop(root)

			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			products, err := store.CountProducts(ctx)
			if err != nil {
				return err
			}
			clicks, purchases, err := store.EngagementTotals(ctx)
			if err != nil {
				return err
			}
			served, _ := store.CountRecommendations(ctx)

			rules, rulesErr := loadRuleTable(root)

			name := scfg.Shop.Name
			if name == "" {
				name = root
			}
			fmt.Printf("Shop:     %s\n", name)
			fmt.Printf("Products: %d\n", products)
			if rulesErr == nil {
				fmt.Printf("Rules:    %d\n", len(rules.Rules()))
			}
			fmt.Printf("Engagement: %d clicks, %d purchases\n", clicks, purchases)
			fmt.Printf("Served:   %d recommendations\n", served)

			if recent > 0 {
				recs, err := store.RecentRecommendations(ctx, recent)
				if err != nil {
					return err
				}
				if len(recs) > 0 {
					fmt.Println("\nRecent:")
					for _, r := range recs {
						fmt.Printf("  [%s] (%s) %q → %s\n",
							r.CreatedAt.Format("2006-01-02 15:04"), r.Class, r.Query,
							strings.Join(r.Results, ", "))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent recommendations to show (0 to hide)")

	return cmd
}
