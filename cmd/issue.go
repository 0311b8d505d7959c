package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/output"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sync tasks with GitHub issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create <task-id>",
	Short: "Create a GitHub issue for a task",
	Long: `Open a GitHub issue mirroring a task.

Tags become labels (created on the repository if missing), the
milestone is resolved or created by title, and assignees are passed
through. The issue URL and number are recorded on the task.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueCreate,
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Push a task's current state to its GitHub issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueUpdate,
}

var issueCloseCmd = &cobra.Command{
	Use:   "close <task-id>",
	Short: "Close the GitHub issue linked to a task",
	Long: `Close the GitHub issue linked to a task and clear the link fields.

The task itself is not closed; use 'pjs close' to close both.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueClose,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueCloseCmd)
}

func runIssueCreate(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}
	if task.HasIssue() {
		return fmt.Errorf("task %s already has issue #%d (%s)", task.ID, task.IssueNumber, task.IssueURL)
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.CreateIssue(context.Background(), project, task); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Created issue #%d for task %s", task.IssueNumber, task.ID))
		f.KeyValue("URL", task.IssueURL)
	}
	return nil
}

func runIssueUpdate(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.UpdateIssue(context.Background(), project, task); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Updated issue #%d for task %s", task.IssueNumber, task.ID))
	}
	return nil
}

func runIssueClose(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.CloseIssue(context.Background(), project, task); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Closed the issue linked to task %s", task.ID))
	}
	return nil
}
