package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Long: `Update a task's fields.

If the project has auto-update-issues enabled and the task is linked
to a GitHub issue, the edit is pushed to the issue. The local change
is saved even when the push fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var (
	updateTitle       string
	updateDescription string
	updateStage       string
	updateMilestone   string
	updateAddTags     []string
	updateRemoveTags  []string
	updateAssignees   []string
)

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVarP(&updateStage, "stage", "s", "", "New stage")
	updateCmd.Flags().StringVarP(&updateMilestone, "milestone", "m", "", "New milestone title")
	updateCmd.Flags().StringSliceVar(&updateAddTags, "add-tag", nil, "Tags to add")
	updateCmd.Flags().StringSliceVar(&updateRemoveTags, "remove-tag", nil, "Tags to remove")
	updateCmd.Flags().StringSliceVarP(&updateAssignees, "assignees", "a", nil, "Replace assignees")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	changed := false
	if cmd.Flags().Changed("title") {
		task.Title = updateTitle
		changed = true
	}
	if cmd.Flags().Changed("description") {
		task.Description = updateDescription
		changed = true
	}
	if cmd.Flags().Changed("stage") {
		task.Stage = updateStage
		changed = true
	}
	if cmd.Flags().Changed("milestone") {
		task.Milestone = updateMilestone
		changed = true
	}
	if cmd.Flags().Changed("assignees") {
		task.Assignees = models.StringSlice(updateAssignees)
		changed = true
	}
	for _, tag := range updateAddTags {
		task.AddTag(tag)
		changed = true
	}
	for _, tag := range updateRemoveTags {
		task.RemoveTag(tag)
		changed = true
	}

	if !changed {
		return fmt.Errorf("no changes specified")
	}

	if err := db.GetDB().Save(task).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	f := output.New(IsJSONOutput())

	if project.AutoUpdateIssues && task.HasIssue() {
		syncer, syncErr := newSyncer()
		if syncErr == nil {
			syncErr = syncer.UpdateIssue(context.Background(), project, task)
		}
		if syncErr != nil && !IsJSONOutput() {
			f.Info(fmt.Sprintf("Task saved, but issue update failed: %v", syncErr))
		}
	}

	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Updated task %s", task.ID))
		f.TaskBrief(task)
	}
	return nil
}
