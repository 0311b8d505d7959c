package cmd

import (
	"github.com/spf13/cobra"

	"projsync/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	task, _, err := getTask(args[0])
	if err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	f.Task(task)
	return nil
}
