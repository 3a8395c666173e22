package main

import (
	"fmt"

	"fitsync/internal/migrate"
	"fitsync/store"

	"github.com/spf13/cobra"
)

// newAdoptCmd creates the adopt command
func newAdoptCmd(app **App) *cobra.Command {
	var discard bool

	cmd := &cobra.Command{
		Use:   "adopt <user-id>",
		Short: "Assign locally-owned data to a user account",
		Long: `Reassign all data recorded before sign-in to the given user account.

Workouts, sets and progress snapshots recorded while signed out are owned
by the "local" sentinel and never upload. Adopting moves them to the user
in a single transaction so they join the next sync. With --discard the
local data is deleted instead of adopted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			migrator := migrate.New(a.db)

			if discard {
				if len(args) > 0 {
					return fmt.Errorf("--discard takes no user ID")
				}
				if !migrator.HasLocalData() {
					fmt.Println("No local data to discard")
					return nil
				}
				if !migrator.CleanupLocalData() {
					return fmt.Errorf("failed to discard local data")
				}
				fmt.Println("Local data discarded")
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("user ID required (or use --discard)")
			}
			userID := args[0]
			if userID == store.SentinelOwner {
				return fmt.Errorf("cannot adopt into the %q sentinel", store.SentinelOwner)
			}

			if !migrator.HasLocalData() {
				fmt.Println("No local data to adopt")
				return nil
			}

			if !migrator.MigrateLocalDataToUser(userID) {
				return fmt.Errorf("adoption failed; local data is unchanged")
			}

			fmt.Printf("Local data adopted by user %s\n", userID)
			fmt.Println("Run 'fitsync sync' to upload it.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&discard, "discard", false, "delete local data instead of adopting it")

	return cmd
}
