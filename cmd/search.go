package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var searchProject string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", "", "Limit to one project")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := "%" + strings.ToLower(args[0]) + "%"

	// Database-side filtering with LIKE
	dbq := db.GetDB().
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", query, query)
	if searchProject != "" {
		project, err := resolveProject(searchProject)
		if err != nil {
			return err
		}
		dbq = dbq.Where("project_id = ?", project.ID)
	}

	var matches []models.Task
	if err := dbq.Order("created_at DESC").Find(&matches).Error; err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"count": len(matches), "tasks": matches})
		return nil
	}

	if len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}

	f := output.New(IsJSONOutput())
	f.TaskList(matches, fmt.Sprintf("%d match(es)", len(matches)))
	return nil
}
