package main

import (
	"fmt"
	"os"

	"fitsync/internal/config"
	"fitsync/internal/credentials"
	"fitsync/internal/device"
	"fitsync/internal/utils"
	"fitsync/store/remote"
	"fitsync/store/sqlite"
	syncengine "fitsync/sync"

	"github.com/spf13/cobra"
)

// App wires the components together once per invocation. Everything is
// constructed here and passed down; commands never reach for globals.
type App struct {
	config *config.Config
	db     *sqlite.DB
	device *device.Provider
}

func NewApp(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sqlite.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	provider, err := device.NewProvider("")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize installation identity: %w", err)
	}

	return &App{config: cfg, db: db, device: provider}, nil
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// remoteClient builds the remote store client, resolving the API token
func (a *App) remoteClient() (*remote.Client, error) {
	if !a.config.Sync.Enabled {
		return nil, utils.ErrSyncNotEnabled()
	}
	if a.config.Remote.BaseURL == "" {
		return nil, utils.ErrNoRemoteConfigured()
	}

	token, _, err := credentials.Resolve(a.config.Remote.Account)
	if err != nil {
		return nil, err
	}

	return remote.NewClient(a.config.Remote.BaseURL, token), nil
}

// syncManager builds the sync manager on top of the remote client
func (a *App) syncManager() (*syncengine.Manager, error) {
	client, err := a.remoteClient()
	if err != nil {
		return nil, err
	}
	return syncengine.NewManager(a.db, client, a.device, a.config.DeviceName()), nil
}

func main() {
	var verbose bool
	var configPath string

	var app *App

	rootCmd := &cobra.Command{
		Use:   "fitsync",
		Short: "Local-first fitness tracker sync",
		Long: `fitsync keeps a local SQLite workout log and synchronizes it with a
remote document store. Data recorded before sign-in is owned by the
"local" sentinel and can be adopted into a user account later.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			utils.SetVerboseMode(verbose)
			var err error
			app, err = NewApp(configPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.Close()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(newSyncCmd(&app))
	rootCmd.AddCommand(newAdoptCmd(&app))
	rootCmd.AddCommand(newStatusCmd(&app))
	rootCmd.AddCommand(newSeedCmd(&app))
	rootCmd.AddCommand(newTokenCmd(&app))
	rootCmd.AddCommand(newBackgroundSyncCmd(&app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
