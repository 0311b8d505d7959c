package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/output"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Manage pull requests for tasks",
}

var prCreateCmd = &cobra.Command{
	Use:   "create <task-id>",
	Short: "Open a pull request for a task's branch",
	Long: `Open a pull request from the task's bound branch.

The PR title defaults to the task title and the base branch defaults
to the repository's default branch. The PR URL and number are recorded
on the task.`,
	Args: cobra.ExactArgs(1),
	RunE: runPRCreate,
}

var prMergeCmd = &cobra.Command{
	Use:   "merge <task-id>",
	Short: "Merge the pull request linked to a task",
	Long: `Merge the pull request linked to a task.

On success the PR link fields are cleared and the merge is recorded in
the project history. A PR GitHub reports as not merged is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runPRMerge,
}

var (
	prTitle string
	prBody  string
	prBase  string
)

func init() {
	rootCmd.AddCommand(prCmd)
	prCmd.AddCommand(prCreateCmd)
	prCmd.AddCommand(prMergeCmd)

	prCreateCmd.Flags().StringVar(&prTitle, "title", "", "Pull request title (defaults to the task title)")
	prCreateCmd.Flags().StringVar(&prBody, "body", "", "Pull request body")
	prCreateCmd.Flags().StringVarP(&prBase, "base", "b", "", "Base branch (defaults to the repository default branch)")
}

func runPRCreate(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.CreatePullRequest(context.Background(), project, task, prTitle, prBody, prBase); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Opened pull request #%d for task %s", task.PullNumber, task.ID))
		f.KeyValue("URL", task.PullURL)
	}
	return nil
}

func runPRMerge(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.MergePullRequest(context.Background(), project, task); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Merged the pull request for task %s", task.ID))
	}
	return nil
}
