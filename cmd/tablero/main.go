package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/config"
	"github.com/tablerohq/tablero/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "tablero",
	Short: "Tablero - task management for consultancies",
	Long:  `Tablero is a role-based task manager with a Kanban board, calendar and user administration, backed by a REST API daemon.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configPath string

	cfg       config.Config
	configDir string
	sess      *session.Manager
	client    *api.Client
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "API server address (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(statsCmd)
}

// setup loads configuration, the persisted session and the API client
// shared by every subcommand.
func setup() error {
	var err error
	configDir, err = config.Dir()
	if err != nil {
		return err
	}

	path := configPath
	if path == "" {
		path = filepath.Join(configDir, "config.yaml")
	}
	cfg, err = config.Load(path, configDir)
	if err != nil {
		return err
	}
	if apiAddr != "" {
		cfg.APIURL = apiAddr
	}

	sess, err = session.NewManager(configDir)
	if err != nil {
		return err
	}
	client = api.New(cfg.APIURL, sess.Token)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
