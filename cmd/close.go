package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var closeCmd = &cobra.Command{
	Use:   "close <task-id>",
	Short: "Close a task",
	Long: `Move a task to the Done stage.

If the task is linked to a GitHub issue, the issue is closed and the
link fields are cleared. The task is closed locally even when the
remote close fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runClose,
}

var closeStage string

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().StringVarP(&closeStage, "stage", "s", models.StageDone, "Closing stage name")
}

func runClose(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	if !models.IsClosedStageName(closeStage) {
		return fmt.Errorf("'%s' is not a closing stage", closeStage)
	}
	if task.IsClosedStage() {
		return fmt.Errorf("task %s is already closed", task.ID)
	}

	task.Stage = closeStage
	if err := db.GetDB().Save(task).Error; err != nil {
		return fmt.Errorf("failed to close task: %w", err)
	}

	f := output.New(IsJSONOutput())

	if task.HasIssue() {
		syncer, syncErr := newSyncer()
		if syncErr == nil {
			syncErr = syncer.CloseIssue(context.Background(), project, task)
		}
		if syncErr != nil && !IsJSONOutput() {
			f.Info(fmt.Sprintf("Task closed, but closing the issue failed: %v", syncErr))
		}
	}

	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Closed task %s", task.ID))
	}
	return nil
}
