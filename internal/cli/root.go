package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charliek/mplog/internal/config"
	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
)

// Version is set during build
var Version = "dev"

// Global flags
var (
	configPath string
	socketPath string
	apiAddr    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mplog",
	Short: "A multi-process log aggregator",
	Long: `mplog collects log records from many processes and threads over a
Unix domain socket and lets you inspect them live. It supports:
  - A length-prefixed binary wire protocol with five severities
  - Per-process, per-thread log lanes in arrival order
  - An interactive TUI for navigating processes, threads and entries
  - A localhost HTTP API for scripted inspection and live streaming`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// For client commands, discover the API address if not explicitly set
		clientCommands := map[string]bool{
			"status":  true,
			"threads": true,
			"logs":    true,
			"stop":    true,
		}
		if clientCommands[cmd.Name()] && !cmd.Flags().Changed("addr") {
			apiAddr = discoverAPIAddress()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mplog version %s\n", Version)
	},
}

func init() {
	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.DefaultConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Unix socket path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "addr", constants.DefaultAPIAddress, "API address for client commands")

	// Set version template
	rootCmd.SetVersionTemplate("mplog version {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration honoring flag and environment overrides.
// A missing default config file falls back to built-in defaults; a missing
// file named with --config is an error.
func loadConfig(explicit bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !explicit && errors.Is(err, domain.ErrConfigNotFound) {
			cfg = config.Default()
		} else {
			return nil, err
		}
	}

	configDir := filepath.Dir(configPath)
	if abs, absErr := filepath.Abs(configPath); absErr == nil {
		configDir = filepath.Dir(abs)
	}
	if err := config.ApplyEnvOverrides(cfg, configDir); err != nil {
		return nil, err
	}

	if socketPath != "" {
		cfg.Socket = socketPath
	}
	return cfg, nil
}

// discoverAPIAddress resolves the API address for client commands from the
// config file, falling back to the default.
func discoverAPIAddress() string {
	cfg, err := loadConfig(false)
	if err != nil {
		return constants.DefaultAPIAddress
	}
	return fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port)
}

// resolveSocket returns the socket path for emit-side commands.
func resolveSocket() string {
	cfg, err := loadConfig(false)
	if err != nil {
		if socketPath != "" {
			return socketPath
		}
		return constants.DefaultSocketPath
	}
	return cfg.Socket
}
