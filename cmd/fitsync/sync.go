package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fitsync/internal/jobs"
	syncengine "fitsync/sync"

	"github.com/spf13/cobra"
)

// newSyncCmd creates the sync command
func newSyncCmd(app **App) *cobra.Command {
	var fullSync bool
	var userOnly bool
	var background bool
	var userID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize local data with the remote store",
		Long: `Synchronize the local database with the remote document store.

Each data type syncs independently: the shared exercise catalog downloads
for everyone, while workouts and progress snapshots require a signed-in
user. A run reports per-type outcomes and an overall worst-of result.

Examples:
  fitsync sync               # incremental sync
  fitsync sync --full        # ignore checkpoints, re-sync everything
  fitsync sync --user-only   # skip the shared catalog
  fitsync sync --background  # spawn a detached process and return`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app

			uid := userID
			if uid == "" {
				uid = a.config.Sync.UserID
			}

			if background {
				spawnArgs := []string{}
				if uid != "" {
					spawnArgs = append(spawnArgs, "--user", uid)
				}
				if err := jobs.SpawnBackgroundSync(spawnArgs...); err != nil {
					return fmt.Errorf("failed to spawn background sync: %w", err)
				}
				fmt.Println("Background sync started")
				return nil
			}

			manager, err := a.syncManager()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			fmt.Println("Syncing...")
			var state *syncengine.State
			switch {
			case fullSync:
				state, err = manager.FullSync(ctx, uid)
			case userOnly:
				state, err = manager.SyncUserData(ctx, uid)
			default:
				state, err = manager.SyncAll(ctx, uid)
			}
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			printSyncState(state)
			if state.Overall().Kind == syncengine.OutcomeError {
				return fmt.Errorf("sync finished with errors")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullSync, "full", false, "ignore checkpoints and re-sync everything")
	cmd.Flags().BoolVar(&userOnly, "user-only", false, "sync only user-scoped data")
	cmd.Flags().BoolVar(&background, "background", false, "run sync in a detached background process")
	cmd.Flags().StringVar(&userID, "user", "", "acting user ID (overrides config)")

	return cmd
}

// printSyncState displays per-type outcomes and the overall result
func printSyncState(state *syncengine.State) {
	fmt.Println("\n=== Sync Complete ===")

	types := make([]string, 0, len(state.Outcomes))
	for dataType := range state.Outcomes {
		types = append(types, dataType)
	}
	sort.Strings(types)

	for _, dataType := range types {
		fmt.Printf("  %-12s %s\n", dataType+":", state.Outcomes[dataType])
	}

	fmt.Printf("Overall: %s\n", state.Overall())
	fmt.Printf("Duration: %s\n", state.Duration.Round(time.Millisecond))
	fmt.Println()
}
