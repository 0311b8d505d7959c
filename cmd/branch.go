package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/output"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage task branches",
}

var branchCreateCmd = &cobra.Command{
	Use:   "create <task-id> <branch-name>",
	Short: "Create a branch on the connected repository",
	Long: `Create a branch on the connected GitHub repository and bind it to a
task. The branch starts from --base, or the repository's default
branch when --base is not given.`,
	Args: cobra.ExactArgs(2),
	RunE: runBranchCreate,
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete <task-id> <branch-name>",
	Short: "Delete a branch from the connected repository",
	Long: `Delete a branch from the connected GitHub repository.

A branch already gone from the remote is treated as deleted. The local
mirror row is removed and the task's branch binding is cleared when it
pointed at the deleted branch.`,
	Args: cobra.ExactArgs(2),
	RunE: runBranchDelete,
}

var branchBase string

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchCreateCmd)
	branchCmd.AddCommand(branchDeleteCmd)

	branchCreateCmd.Flags().StringVarP(&branchBase, "base", "b", "", "Base branch to start from (defaults to the repository default branch)")
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.CreateBranch(context.Background(), project, task, args[1], branchBase); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Created branch '%s' for task %s", args[1], task.ID))
	}
	return nil
}

func runBranchDelete(cmd *cobra.Command, args []string) error {
	task, project, err := getTask(args[0])
	if err != nil {
		return err
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}
	if err := syncer.DeleteBranch(context.Background(), project, task, args[1]); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Task(task)
	} else {
		f.Success(fmt.Sprintf("Deleted branch '%s'", args[1]))
	}
	return nil
}
