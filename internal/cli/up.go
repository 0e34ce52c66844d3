//go:build linux

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charliek/mplog/internal/api"
	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/server"
	"github.com/charliek/mplog/internal/store"
	"github.com/charliek/mplog/internal/tui"
)

// Up command flags
var upHeadless bool

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the aggregator: socket listener, inspection API and TUI",
	Long: `Run the aggregator. Binds the Unix socket, accepts client
connections, and opens the interactive inspector. With --headless the
records are printed to the terminal instead.

The socket path must be free; a stale socket file from a previous run
must be removed before starting.`,
	RunE: runUp,
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	st := store.New(store.Config{SubscriptionBuffer: cfg.Limits.SubscriptionBuffer})
	defer st.Close()

	listener := server.NewListener(server.Config{
		SocketPath:      cfg.Socket,
		MaxMessageBytes: cfg.Limits.MaxMessageBytes,
	}, st)
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Stop()

	// Shutdown requested over the API
	shutdownCh := make(chan struct{})
	shutdownFn := func() { close(shutdownCh) }

	var apiServer *api.Server
	if cfg.API.APIEnabled() {
		handlers := api.NewHandlers(st, cfg.Socket, configPath, shutdownFn)
		apiServer = api.NewServer(api.ServerConfig{
			Host: cfg.API.Host,
			Port: cfg.API.Port,
		}, handlers)

		fmt.Printf("API server: http://%s\n", apiServer.Addr())
		go func() {
			if err := apiServer.Start(); err != nil {
				// Server closed is expected on shutdown
				if !strings.Contains(err.Error(), "Server closed") {
					fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
				}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if upHeadless {
		go printRecords(st)

		select {
		case sig := <-sigCh:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
		case <-shutdownCh:
			fmt.Println("\nShutdown requested via API...")
		}
	} else {
		// The TUI blocks until quit
		if err := tui.Run(st); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		}
	}

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()
		_ = apiServer.Shutdown(shutdownCtx)
	}

	fmt.Println("Shutdown complete")
	return nil
}

// printRecords subscribes to the store and prints records to the terminal
func printRecords(st *store.Store) {
	_, ch, err := st.Subscribe(domain.EventFilter{})
	if err != nil {
		return
	}

	for ev := range ch {
		printStreamEvent(api.ToStreamEventResponse(ev))
	}
}

func init() {
	upCmd.Flags().BoolVar(&upHeadless, "headless", false, "Print records to the terminal instead of the TUI")
	rootCmd.AddCommand(upCmd)
}
