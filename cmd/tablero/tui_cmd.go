package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"github.com/tablerohq/tablero/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isServerRunning(cfg.APIURL) {
		fmt.Println("Tablero server not running. Starting background service...")
		if err := startServer(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	app := tui.New(sess, client)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func isServerRunning(addr string) bool {
	hc := http.Client{Timeout: 500 * time.Millisecond}
	resp, err := hc.Get(addr + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func startServer() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	// Start "tablero serve" detached so it survives TUI exit.
	proc := exec.Command(exe, "serve")
	configureServerProc(proc)
	proc.Stdin = nil
	proc.Stdout = nil
	proc.Stderr = nil

	if err := proc.Start(); err != nil {
		return err
	}

	fmt.Print("   Waiting for server...")
	for i := 0; i < 20; i++ {
		if isServerRunning(cfg.APIURL) {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("server started but API not reachable at %s", cfg.APIURL)
}
