package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Long: `Create a new task in a project.

If the project has auto-create-issues enabled and a connected
repository, a matching GitHub issue is opened and linked to the task.
The task is saved locally even when the issue push fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var (
	createProject     string
	createDescription string
	createStage       string
	createTags        []string
	createAssignees   []string
	createMilestone   string
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createProject, "project", "p", "", "Project for the task (defaults to the default project)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Task description")
	createCmd.Flags().StringVarP(&createStage, "stage", "s", models.StageNew, "Initial stage")
	createCmd.Flags().StringSliceVarP(&createTags, "tags", "t", nil, "Tags (become issue labels)")
	createCmd.Flags().StringSliceVarP(&createAssignees, "assignees", "a", nil, "GitHub usernames to assign")
	createCmd.Flags().StringVarP(&createMilestone, "milestone", "m", "", "Milestone title")
}

func runCreate(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(createProject)
	if err != nil {
		return err
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       args[0],
		Description: createDescription,
		Stage:       createStage,
		Tags:        models.StringSlice(createTags),
		Assignees:   models.StringSlice(createAssignees),
		Milestone:   createMilestone,
	}
	if err := db.GetDB().Create(&task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	f := output.New(IsJSONOutput())

	if project.AutoCreateIssues && project.Connected {
		syncer, syncErr := newSyncer()
		if syncErr == nil {
			syncErr = syncer.CreateIssue(context.Background(), project, &task)
		}
		if syncErr != nil && !IsJSONOutput() {
			f.Info(fmt.Sprintf("Task saved, but issue creation failed: %v", syncErr))
		}
	}

	if IsJSONOutput() {
		f.Task(&task)
	} else {
		f.Success(fmt.Sprintf("Created task %s", task.ID))
		f.TaskBrief(&task)
	}
	return nil
}
