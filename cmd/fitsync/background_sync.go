package main

import (
	"context"
	"time"

	"fitsync/internal/jobs"
	"fitsync/internal/utils"

	"github.com/spf13/cobra"
)

// newBackgroundSyncCmd creates a hidden command that runs sync in a
// detached process. Failures are logged, never surfaced: nothing is
// watching the exit code, and the retry driver has already done its work.
func newBackgroundSyncCmd(app **App) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:    jobs.BackgroundSyncCommand,
		Hidden: true,
		Short:  "Internal command for background sync (do not call directly)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app

			if !a.config.Sync.Enabled {
				return nil
			}

			uid := userID
			if uid == "" {
				uid = a.config.Sync.UserID
			}

			manager, err := a.syncManager()
			if err != nil {
				utils.Warnf("[BackgroundSync] not starting: %v", err)
				return nil
			}

			client, err := a.remoteClient()
			if err != nil {
				return nil
			}

			// Let the parent process exit before doing work
			time.Sleep(100 * time.Millisecond)

			runner := jobs.NewRunner()
			runner.Connectivity = func(ctx context.Context) bool {
				return client.Ping(ctx) == nil
			}

			job := &jobs.SyncAllJob{Manager: manager, UserID: uid}
			if err := runner.Run(context.Background(), job); err != nil {
				utils.Errorf("[BackgroundSync] %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "acting user ID")

	return cmd
}
