package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parishworks/sexton/internal/conversions"
)

// WatchCmd returns the watch command: poll a subject's conversion records
// until the latest one reaches a terminal status.
func WatchCmd() *cobra.Command {
	var (
		server   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <page|post> <subjectId>",
		Short: "Watch a subject's conversion until it settles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := conversions.Kind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown kind %q (expected page or post)", args[0])
			}

			return runWatch(cmd, kind, args[1], server, interval)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Sexton server URL (default $SEXTON_SERVER or "+defaultServer+")")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Poll interval")
	return cmd
}

func runWatch(cmd *cobra.Command, kind conversions.Kind, subjectID, server string, interval time.Duration) error {
	client := NewClient(server)
	ctx := cmd.Context()

	var last conversions.Status
	for {
		result, err := client.Conversions(ctx, kind, subjectID)
		if err != nil {
			return err
		}
		if len(result.Data) == 0 {
			return fmt.Errorf("no conversions found for subject %s", subjectID)
		}

		record := result.Data[0]
		if record.AgentTaskStatus != last {
			last = record.AgentTaskStatus
			fmt.Printf(
				"%s  %s  %s\n",
				time.Now().Local().Format("15:04:05"),
				record.ID,
				colorRecordStatus(record.AgentTaskStatus),
			)
		}

		if record.AgentTaskStatus.Terminal() {
			if record.LastError != nil {
				fmt.Printf("          %s\n", color.New(color.FgRed).Sprint(*record.LastError))
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func colorRecordStatus(status conversions.Status) string {
	switch status {
	case conversions.StatusCompleted:
		return color.New(color.FgGreen).Sprint(string(status))
	case conversions.StatusFailed:
		return color.New(color.FgRed).Sprint(string(status))
	case conversions.StatusRunning:
		return color.New(color.FgCyan).Sprint(string(status))
	default:
		return color.New(color.FgYellow).Sprint(string(status))
	}
}
