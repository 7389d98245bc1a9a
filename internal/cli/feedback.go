package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphaboost/shoprec/internal/engine"
)

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <class> <product-id> <click|purchase>",
		Short: "Record a click or purchase for a recommended product",
		Long: `Bump the engagement counter for a (trigger class, product) pair. The
ranker weighs purchases three times as heavily as clicks, so recorded
feedback shifts future rankings within that class.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, productID := args[0], args[1]
			kind := engine.EngagementKind(args[2])
			if !engine.ValidEngagementKind(kind) {
				return fmt.Errorf("invalid kind %q (valid: click, purchase)", args[2])
			}

			root, err := findRoot()
			if err != nil {
				return err
			}
			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := store.Bump(cmd.Context(), class, productID, kind); err != nil {
				return err
			}
			fmt.Printf("Recorded %s for %s (class %s).\n", kind, productID, class)
			return nil
		},
	}
	return cmd
}
