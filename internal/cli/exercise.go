//go:build linux

package cli

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/emitter"
)

// Exercise command flags
var (
	exerciseThreads  int
	exerciseCount    int
	exerciseInterval time.Duration
)

// exerciseCmd represents the exercise command
var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Emit test traffic from several OS threads",
	Long: `Emit a burst of records from several OS threads of this process,
cycling through all five severities. Useful for populating a running
aggregator and watching lanes fill up per thread.`,
	RunE: runExercise,
}

func runExercise(cmd *cobra.Command, args []string) error {
	logger, err := emitter.Dial(resolveSocket(), emitter.Config{})
	if err != nil {
		return err
	}
	defer logger.Close()

	levels := []domain.Level{
		domain.LevelError, domain.LevelWarn, domain.LevelInfo,
		domain.LevelDebug, domain.LevelTrace,
	}

	var wg sync.WaitGroup
	for w := 0; w < exerciseThreads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			// Pin the goroutine so all its records carry one thread id.
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			for i := 0; i < exerciseCount; i++ {
				level := levels[i%len(levels)]
				if err := logger.Emit(level, fmt.Sprintf("worker %d message %d", worker, i)); err != nil {
					fmt.Printf("worker %d: emit failed: %v\n", worker, err)
					return
				}
				if exerciseInterval > 0 {
					time.Sleep(exerciseInterval)
				}
			}
		}(w)
	}
	wg.Wait()

	fmt.Printf("emitted %d records from %d threads\n", exerciseThreads*exerciseCount, exerciseThreads)
	return nil
}

func init() {
	exerciseCmd.Flags().IntVar(&exerciseThreads, "threads", 4, "Number of OS threads to emit from")
	exerciseCmd.Flags().IntVar(&exerciseCount, "count", 100, "Records per thread")
	exerciseCmd.Flags().DurationVar(&exerciseInterval, "interval", 0, "Delay between records per thread")
	rootCmd.AddCommand(exerciseCmd)
}
