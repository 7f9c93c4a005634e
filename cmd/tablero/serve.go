package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tablerohq/tablero/internal/server"
	"github.com/tablerohq/tablero/internal/server/store"
	"github.com/tablerohq/tablero/internal/sweeper"
)

var (
	listenAddr string
	dbPath     string
	demoSeed   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Tablero API server",
	Long:  `Starts the Tablero daemon which provides the HTTP API used by the TUI and the CLI.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (overrides config)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
	serveCmd.Flags().BoolVar(&demoSeed, "seed", false, "Seed demo users on first start")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("Starting Tablero server...")

	if listenAddr == "" {
		listenAddr = cfg.Listen
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	st, err := store.New(dbPath)
	if err != nil {
		return err
	}

	srv := server.NewServer(st, listenAddr)

	if demoSeed || cfg.DemoSeed {
		seedPassword := cfg.DemoPassword
		if seedPassword == "" {
			seedPassword = "tablero"
		}
		if err := srv.Seed(seedPassword); err != nil {
			log.Printf("Warning: demo seed failed: %v", err)
		}
	}

	// Background sweeper notifies assignees of overdue tasks.
	sw := sweeper.New(st, sweeper.DefaultConfig())
	sw.Start()
	defer sw.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			st.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing database connection...")
	if err := st.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
