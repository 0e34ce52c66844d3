package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/charliek/mplog/internal/api"
	"github.com/charliek/mplog/internal/constants"
)

// Status command flags
var statusJSON bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show aggregator status and observed processes",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient(apiAddr)

	status, err := client.GetStatus()
	if err != nil {
		return fmt.Errorf("%w\nIs mplog running? Try 'mplog up' first", err)
	}

	processes, err := client.GetProcesses()
	if err != nil {
		return err
	}

	if statusJSON {
		output := map[string]interface{}{
			"status":    status,
			"processes": processes.Processes,
		}
		return json.NewEncoder(os.Stdout).Encode(output)
	}

	fmt.Printf("Status: %s\n", status.Status)
	fmt.Printf("Uptime: %s\n", formatDuration(time.Duration(status.UptimeSeconds)*time.Second))
	fmt.Printf("Socket: %s\n", status.SocketPath)
	fmt.Printf("Totals: %d processes, %d threads, %d entries\n",
		status.Processes, status.Threads, status.Entries)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PID\tPID(HEX)\tTHREADS\tENTRIES")
	fmt.Fprintln(w, "---\t--------\t-------\t-------")
	for _, p := range processes.Processes {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", p.PID, p.PIDHex, p.Threads, p.Entries)
	}
	return w.Flush()
}

// threadsCmd represents the threads command
var threadsCmd = &cobra.Command{
	Use:   "threads <pid>",
	Short: "List observed threads of a process",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreads,
}

func runThreads(cmd *cobra.Command, args []string) error {
	pid, err := parsePIDArg(args[0])
	if err != nil {
		return err
	}

	client := NewClient(apiAddr)
	threads, err := client.GetThreads(pid)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TID\tTID(HEX)\tENTRIES")
	fmt.Fprintln(w, "---\t--------\t-------")
	for _, t := range threads.Threads {
		fmt.Fprintf(w, "%d\t%s\t%d\n", t.TID, t.TIDHex, t.Entries)
	}
	return w.Flush()
}

// Logs command flags
var (
	logsLines   int
	logsFollow  bool
	logsJSON    bool
	logsPIDs    []int32
	logsLevel   string
	logsPattern string
	logsRegex   bool
)

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs [pid tid]",
	Short: "Fetch one thread's log lane, or follow the live stream",
	Long: `Fetch the tail of one thread's log lane, or follow records live.

Examples:
  mplog logs 4821 139832          # last entries of one thread
  mplog logs 4821 139832 -n 500   # more of them
  mplog logs -f                   # follow everything
  mplog logs -f --pid 4821 --level warn --pattern timeout`,
	RunE: runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	client := NewClient(apiAddr)

	if logsFollow {
		params := StreamParams{
			PIDs:    logsPIDs,
			Level:   logsLevel,
			Pattern: logsPattern,
			Regex:   logsRegex,
		}
		return client.StreamLogs(params, func(ev api.StreamEventResponse) {
			if logsJSON {
				_ = json.NewEncoder(os.Stdout).Encode(ev)
			} else {
				printStreamEvent(ev)
			}
		})
	}

	if len(args) != 2 {
		return fmt.Errorf("expected <pid> <tid> arguments (or use --follow)")
	}
	pid, err := parsePIDArg(args[0])
	if err != nil {
		return err
	}
	tid, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid tid %q", args[1])
	}

	logs, err := client.GetLogs(pid, tid, logsLines)
	if err != nil {
		return err
	}

	if logsJSON {
		return json.NewEncoder(os.Stdout).Encode(logs)
	}

	for _, entry := range logs.Logs {
		printLogEntry(entry)
	}
	if len(logs.Logs) < logs.TotalCount {
		fmt.Printf("\n(showing %d of %d entries)\n", len(logs.Logs), logs.TotalCount)
	}
	return nil
}

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Shut down a running aggregator",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(apiAddr)
		if err := client.Shutdown(); err != nil {
			return err
		}
		fmt.Println("Shutdown initiated")
		return nil
	},
}

func parsePIDArg(s string) (int32, error) {
	pid, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return int32(pid), nil
}

// formatDuration formats a duration nicely
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")

	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", constants.DefaultLogLimit, "Number of lines to fetch")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow the live stream")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "Output as JSON")
	logsCmd.Flags().Int32SliceVar(&logsPIDs, "pid", nil, "Restrict the stream to these pids")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Least severe level to stream (error..trace)")
	logsCmd.Flags().StringVar(&logsPattern, "pattern", "", "Message pattern filter")
	logsCmd.Flags().BoolVar(&logsRegex, "regex", false, "Treat --pattern as a regular expression")

	rootCmd.AddCommand(statusCmd, threadsCmd, logsCmd, stopCmd)
}
