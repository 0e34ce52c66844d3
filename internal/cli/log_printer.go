package cli

import (
	"fmt"
	"time"

	"github.com/charliek/mplog/internal/api"
)

// ANSI colors for terminal log output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// levelColor returns a color for a level name
func levelColor(level string) string {
	switch level {
	case "ERROR":
		return colorRed
	case "WARN":
		return colorYellow
	case "DEBUG", "TRACE":
		return colorDim
	default:
		return ""
	}
}

// printLogEntry prints one lane entry
func printLogEntry(entry api.LogEntryResponse) {
	ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	color := levelColor(entry.Level)

	fmt.Printf("%s %s%-5s%s %s\n",
		ts.Format("15:04:05.000000"),
		color, entry.Level, colorReset,
		entry.Message)
}

// printStreamEvent prints one live event with its origin
func printStreamEvent(ev api.StreamEventResponse) {
	ts, err := time.Parse(time.RFC3339Nano, ev.Entry.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	color := levelColor(ev.Entry.Level)

	fmt.Printf("%s %s%x/%x%s %s%-5s%s %s\n",
		ts.Format("15:04:05.000000"),
		colorCyan, ev.PID, ev.TID, colorReset,
		color, ev.Entry.Level, colorReset,
		ev.Entry.Message)
}
