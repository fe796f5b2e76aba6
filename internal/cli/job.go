package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parishworks/sexton/internal/queue"
)

// JobCmd returns the job status command.
func JobCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "job <id>",
		Short: "Show a queued job's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(server)

			job, err := client.Job(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printJob(job)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Sexton server URL (default $SEXTON_SERVER or "+defaultServer+")")
	return cmd
}

func printJob(job *queue.Job) {
	fmt.Printf("Job:      %s\n", job.ID)
	fmt.Printf("Kind:     %s\n", job.Kind)
	fmt.Printf("Status:   %s\n", colorJobStatus(job.Status))
	fmt.Printf("Step:     %d (attempts: %d)\n", job.Step, job.Attempts)
	if job.LastError != nil {
		fmt.Printf("Error:    %s\n", color.New(color.FgRed).Sprint(*job.LastError))
	}
	fmt.Printf("Created:  %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:  %s\n", job.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}

func colorJobStatus(status queue.Status) string {
	switch status {
	case queue.StatusCompleted:
		return color.New(color.FgGreen).Sprint(string(status))
	case queue.StatusFailed:
		return color.New(color.FgRed).Sprint(string(status))
	case queue.StatusRunning:
		return color.New(color.FgCyan).Sprint(string(status))
	default:
		return color.New(color.FgYellow).Sprint(string(status))
	}
}
