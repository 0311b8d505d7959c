package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var reopenStage string

var reopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Reopen a closed task",
	Long: `Move a closed task back to an open stage.

Closing a task clears its issue link, so a reopened task has no
GitHub issue; create one again with 'pjs issue create' if needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReopen,
}

func init() {
	rootCmd.AddCommand(reopenCmd)
	reopenCmd.Flags().StringVarP(&reopenStage, "stage", "s", models.StageInProgress, "Stage to reopen into")
}

func runReopen(cmd *cobra.Command, args []string) error {
	task, _, err := getTask(args[0])
	if err != nil {
		return err
	}

	if !task.IsClosedStage() {
		return fmt.Errorf("task %s is not closed (stage '%s')", task.ID, task.Stage)
	}
	if models.IsClosedStageName(reopenStage) {
		return fmt.Errorf("'%s' is a closing stage", reopenStage)
	}

	task.Stage = reopenStage
	if err := db.GetDB().Save(task).Error; err != nil {
		return fmt.Errorf("failed to reopen task: %w", err)
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Reopened task %s into '%s'", task.ID, reopenStage))
	}
	return nil
}
