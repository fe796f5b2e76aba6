package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/workflow"
)

// ConvertCmd returns the convert command group.
func ConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Enqueue a content conversion",
	}

	cmd.AddCommand(convertPageCmd())
	cmd.AddCommand(convertVideoCmd())
	return cmd
}

func convertPageCmd() *cobra.Command {
	var (
		server   string
		taskOnly bool
	)

	cmd := &cobra.Command{
		Use:   "page <documentId> <url>",
		Short: "Convert an external web page into a CMS page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, conversions.KindPage, args[0], args[1], server, taskOnly)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Sexton server URL (default $SEXTON_SERVER or "+defaultServer+")")
	cmd.Flags().BoolVar(&taskOnly, "task", false, "Queue only the begin step instead of the full workflow")
	return cmd
}

func convertVideoCmd() *cobra.Command {
	var (
		server   string
		taskOnly bool
	)

	cmd := &cobra.Command{
		Use:   "video <documentId> <url>",
		Short: "Create a CMS post from a YouTube video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, conversions.KindPost, args[0], args[1], server, taskOnly)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Sexton server URL (default $SEXTON_SERVER or "+defaultServer+")")
	cmd.Flags().BoolVar(&taskOnly, "task", false, "Queue only the begin step instead of the full workflow")
	return cmd
}

func runConvert(cmd *cobra.Command, kind conversions.Kind, subjectID, url, server string, taskOnly bool) error {
	client := NewClient(server)

	resp, err := client.Enqueue(cmd.Context(), kind, workflow.EnqueueRequest{
		Task:     taskOnly,
		Workflow: !taskOnly,
		Data: workflow.BeginInput{
			SubjectID: subjectID,
			URL:       url,
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	return nil
}
