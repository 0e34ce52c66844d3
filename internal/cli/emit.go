//go:build linux

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/emitter"
)

// Emit command flags
var emitLevel string

// emitCmd represents the emit command
var emitCmd = &cobra.Command{
	Use:   "emit <message...>",
	Short: "Send one log record to a running aggregator",
	Long: `Send one log record over the Unix socket, stamped with this
process id and thread id.

Examples:
  mplog emit hello world
  mplog emit --level error something went wrong`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmit,
}

func runEmit(cmd *cobra.Command, args []string) error {
	level := domain.LevelInfo
	if emitLevel != "" {
		parsed, err := domain.ParseLevel(emitLevel)
		if err != nil {
			return err
		}
		level = parsed
	}

	logger, err := emitter.Dial(resolveSocket(), emitter.Config{})
	if err != nil {
		return err
	}
	defer logger.Close()

	return logger.Emit(level, strings.Join(args, " "))
}

func init() {
	emitCmd.Flags().StringVar(&emitLevel, "level", "info", "Record severity (error..trace)")
	rootCmd.AddCommand(emitCmd)
}
