package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var (
	archiveProject string
	archiveAll     bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive [task-id]",
	Short: "Archive closed tasks",
	Long: `Archive a closed task, hiding it from lists and searches.

With --all-closed, every closed task in the project is archived.
Archived tasks can be removed permanently with 'pjs cleanup'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().StringVarP(&archiveProject, "project", "p", "", "Project (defaults to the default project)")
	archiveCmd.Flags().BoolVar(&archiveAll, "all-closed", false, "Archive every closed task in the project")
}

func runArchive(cmd *cobra.Command, args []string) error {
	f := output.New(IsJSONOutput())

	if len(args) == 1 {
		task, _, err := getTask(args[0])
		if err != nil {
			return err
		}
		if !task.IsClosedStage() {
			return fmt.Errorf("task %s is not closed; close it before archiving", task.ID)
		}
		if err := db.GetDB().Delete(task).Error; err != nil {
			return fmt.Errorf("failed to archive task: %w", err)
		}
		if IsJSONOutput() {
			OutputJSON(map[string]interface{}{"archived": 1, "task_id": task.ID})
		} else {
			f.Success(fmt.Sprintf("Archived task %s", task.ID))
		}
		return nil
	}

	if !archiveAll {
		return fmt.Errorf("give a task ID or use --all-closed")
	}

	project, err := resolveProject(archiveProject)
	if err != nil {
		return err
	}

	var tasks []models.Task
	if err := db.GetDB().Where("project_id = ?", project.ID).Find(&tasks).Error; err != nil {
		return err
	}

	archived := 0
	for i := range tasks {
		if !tasks[i].IsClosedStage() {
			continue
		}
		if err := db.GetDB().Delete(&tasks[i]).Error; err != nil {
			return fmt.Errorf("failed to archive task %s: %w", tasks[i].ID, err)
		}
		archived++
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"archived": archived, "project": project.Name})
	} else {
		f.Success(fmt.Sprintf("Archived %d closed task(s)", archived))
	}
	return nil
}
