package main

import (
	"fmt"

	"fitsync/catalog"

	"github.com/spf13/cobra"
)

// newSeedCmd creates the seed command
func newSeedCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the built-in exercise catalog",
		Long: `Insert the embedded exercise catalog into the local database.

Only missing exercises are added; entries already downloaded from the
remote catalog are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			added, err := catalog.Seed(a.db)
			if err != nil {
				return fmt.Errorf("failed to seed exercise catalog: %w", err)
			}
			fmt.Printf("Added %d exercises\n", added)
			return nil
		},
	}
}
