package cmd

import (
	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runList,
}

var (
	listProject string
	listStage   string
	listAll     bool
	listTag     string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "Filter by project (defaults to the default project)")
	listCmd.Flags().StringVarP(&listStage, "stage", "s", "", "Filter by stage")
	listCmd.Flags().BoolVarP(&listAll, "all", "A", false, "Include closed tasks")
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Filter by tag")
}

func runList(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(listProject)
	if err != nil {
		return err
	}

	query := db.GetDB().Where("project_id = ?", project.ID)
	if listStage != "" {
		query = query.Where("stage = ?", listStage)
	}

	var tasks []models.Task
	if err := query.Order("created_at asc").Find(&tasks).Error; err != nil {
		return err
	}

	filtered := tasks[:0]
	for _, t := range tasks {
		if !listAll && listStage == "" && t.IsClosedStage() {
			continue
		}
		if listTag != "" && !hasTag(&t, listTag) {
			continue
		}
		filtered = append(filtered, t)
	}

	f := output.New(IsJSONOutput())
	f.TaskList(filtered, "Tasks in "+project.Name)
	return nil
}

func hasTag(t *models.Task, tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
