package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"fitsync/internal/credentials"

	"github.com/spf13/cobra"
)

// newTokenCmd creates the token command with set/clear subcommands
func newTokenCmd(app **App) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the remote API token",
		Long: `Store or remove the remote API token in the OS keyring.

The ` + credentials.EnvToken + ` environment variable, when set, takes
priority over the keyring.`,
	}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the API token in the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app

			fmt.Print("API token: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token := strings.TrimSpace(line)
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			store := credentials.NewKeyringStore(a.config.Remote.Account)
			if err := store.Set(token); err != nil {
				return err
			}
			fmt.Println("Token stored")
			return nil
		},
	})

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the API token from the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			store := credentials.NewKeyringStore(a.config.Remote.Account)
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Println("Token removed")
			return nil
		},
	})

	return tokenCmd
}
