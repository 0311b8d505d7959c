package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
)

var (
	historyProject string
	historyTask    string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show sync history for a project",
	Long: `Show the record of sync actions for a project: issue pushes, branch
and pull request operations, webhook registrations, connects and
disconnects. Filter to one task with --task.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyProject, "project", "p", "", "Project (defaults to the default project)")
	historyCmd.Flags().StringVarP(&historyTask, "task", "t", "", "Filter by task ID")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(historyProject)
	if err != nil {
		return err
	}

	query := db.GetDB().Where("project_id = ?", project.ID)
	if historyTask != "" {
		query = query.Where("task_id = ?", historyTask)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").Limit(historyLimit).Find(&entries).Error; err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"project": project.Name,
			"count":   len(entries),
			"history": entries,
		})
		return nil
	}

	if len(entries) == 0 {
		fmt.Printf("No sync history for project '%s'\n", project.Name)
		return nil
	}

	fmt.Printf("Sync history for '%s':\n\n", project.Name)
	for _, e := range entries {
		timestamp := e.CreatedAt.Format(models.DateTimeFormat)
		if e.TaskID != "" {
			fmt.Printf("  %s  [%s] %s\n", timestamp, e.TaskID, e.Message)
		} else {
			fmt.Printf("  %s  %s\n", timestamp, e.Message)
		}
		if e.Link != "" {
			fmt.Printf("             %s\n", e.Link)
		}
	}
	return nil
}
