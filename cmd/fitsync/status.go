package main

import (
	"context"
	"fmt"
	"time"

	"fitsync/internal/migrate"

	"github.com/spf13/cobra"
)

// newStatusCmd creates the status command
func newStatusCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local database and sync status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app

			stats, err := a.db.Stats()
			if err != nil {
				return fmt.Errorf("failed to read database stats: %w", err)
			}

			installID, err := a.device.ID()
			if err != nil {
				installID = "(unavailable)"
			}

			fmt.Println("\n=== fitsync Status ===")
			fmt.Printf("Database: %s\n", a.db.Path())
			fmt.Println(stats)
			fmt.Printf("Installation: %s\n", installID)
			fmt.Printf("Device name: %s\n", a.config.DeviceName())

			if migrate.New(a.db).HasLocalData() {
				fmt.Println("Local data: present (run 'fitsync adopt <user-id>' after sign-in)")
			} else {
				fmt.Println("Local data: none")
			}

			if !a.config.Sync.Enabled {
				fmt.Println("Sync: disabled")
				fmt.Println()
				return nil
			}

			fmt.Printf("Remote: %s\n", a.config.Remote.BaseURL)
			if a.config.Sync.UserID != "" {
				fmt.Printf("User: %s\n", a.config.Sync.UserID)
			} else {
				fmt.Println("User: not signed in (shared catalog only)")
			}

			client, err := a.remoteClient()
			if err != nil {
				fmt.Printf("Connection: unavailable (%v)\n", err)
				fmt.Println()
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("Connection: offline (%v)\n", err)
			} else {
				fmt.Println("Connection: online")
			}

			fmt.Println()
			return nil
		},
	}
}
