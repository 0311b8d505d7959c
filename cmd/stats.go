package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
)

var statsProject string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show project statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsProject, "project", "p", "", "Project (defaults to the default project)")
}

func runStats(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(statsProject)
	if err != nil {
		return err
	}
	database := db.GetDB()

	// Stage counts in a single query
	type stageCount struct {
		Stage string
		Count int64
	}
	var stageCounts []stageCount
	database.Model(&models.Task{}).
		Where("project_id = ?", project.ID).
		Select("stage, count(*) as count").
		Group("stage").
		Scan(&stageCounts)

	var total, closed int64
	for _, sc := range stageCounts {
		total += sc.Count
		if models.IsClosedStageName(sc.Stage) {
			closed += sc.Count
		}
	}

	var withIssue, withPull int64
	database.Model(&models.Task{}).
		Where("project_id = ? AND issue_number > 0", project.ID).
		Count(&withIssue)
	database.Model(&models.Task{}).
		Where("project_id = ? AND pull_number > 0", project.ID).
		Count(&withPull)

	var branches, commits int64
	database.Model(&models.Branch{}).
		Joins("JOIN repository_links ON repository_links.id = branches.repository_link_id").
		Where("repository_links.project_id = ?", project.ID).
		Count(&branches)
	database.Model(&models.Commit{}).
		Where("project_id = ?", project.ID).
		Count(&commits)

	if IsJSONOutput() {
		stages := make(map[string]int64, len(stageCounts))
		for _, sc := range stageCounts {
			stages[sc.Stage] = sc.Count
		}
		OutputJSON(map[string]interface{}{
			"project":          project.Name,
			"connected":        project.Connected,
			"total_tasks":      total,
			"open_tasks":       total - closed,
			"closed_tasks":     closed,
			"stages":           stages,
			"tasks_with_issue": withIssue,
			"tasks_with_pull":  withPull,
			"branches":         branches,
			"commits":          commits,
		})
		return nil
	}

	fmt.Printf("Statistics for '%s':\n\n", project.Name)
	fmt.Printf("  Tasks:    %d total, %d open, %d closed\n", total, total-closed, closed)
	for _, sc := range stageCounts {
		fmt.Printf("    %-14s %d\n", sc.Stage, sc.Count)
	}
	fmt.Println()
	fmt.Printf("  GitHub:   %d task(s) with issues, %d with pull requests\n", withIssue, withPull)
	if project.Connected {
		fmt.Printf("  Mirror:   %d branch(es), %d commit(s)\n", branches, commits)
	} else {
		fmt.Println("  Mirror:   no repository connected")
	}
	return nil
}
