package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show project details",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectShow,
}

var projectDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDefault,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update project settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

var (
	projectDescription      string
	projectAutoCreateIssues bool
	projectAutoUpdateIssues bool
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDefaultCmd)
	projectCmd.AddCommand(projectUpdateCmd)

	projectCreateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "Project description")
	projectCreateCmd.Flags().BoolVar(&projectAutoCreateIssues, "auto-create-issues", false, "Create a GitHub issue whenever a task is created")
	projectCreateCmd.Flags().BoolVar(&projectAutoUpdateIssues, "auto-update-issues", false, "Push task edits to the linked GitHub issue")

	projectUpdateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "Project description")
	projectUpdateCmd.Flags().BoolVar(&projectAutoCreateIssues, "auto-create-issues", false, "Create a GitHub issue whenever a task is created")
	projectUpdateCmd.Flags().BoolVar(&projectAutoUpdateIssues, "auto-update-issues", false, "Push task edits to the linked GitHub issue")
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	var existing models.Project
	err := db.GetDB().Where("name = ?", name).First(&existing).Error
	if err == nil {
		return fmt.Errorf("project '%s' already exists", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	project := models.Project{
		Name:             name,
		Description:      projectDescription,
		AutoCreateIssues: projectAutoCreateIssues,
		AutoUpdateIssues: projectAutoUpdateIssues,
	}
	if err := db.GetDB().Create(&project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Project(&project)
	} else {
		f.Success(fmt.Sprintf("Created project '%s'", name))
		f.Info(fmt.Sprintf("Connect a repository with 'pjs connect --project %s'", name))
	}
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	var projects []models.Project
	if err := db.GetDB().Order("name asc").Find(&projects).Error; err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	f.ProjectList(projects)
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	project, err := resolveProject(name)
	if err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	f.Project(project)

	if !IsJSONOutput() && project.Connected {
		var link models.RepositoryLink
		if err := db.GetDB().Where("project_id = ?", project.ID).First(&link).Error; err == nil {
			f.Section("Repository")
			f.Repository(&link)
		}
	}
	return nil
}

func runProjectDefault(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(args[0])
	if err != nil {
		return err
	}
	if err := db.SetConfig(models.ConfigDefaultProject, project.Name); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	f.Success(fmt.Sprintf("Default project set to '%s'", project.Name))
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(args[0])
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if cmd.Flags().Changed("description") {
		updates["description"] = projectDescription
	}
	if cmd.Flags().Changed("auto-create-issues") {
		updates["auto_create_issues"] = projectAutoCreateIssues
	}
	if cmd.Flags().Changed("auto-update-issues") {
		updates["auto_update_issues"] = projectAutoUpdateIssues
	}
	if len(updates) == 0 {
		return fmt.Errorf("no changes specified")
	}

	if err := db.GetDB().Model(project).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Project(project)
	} else {
		f.Success(fmt.Sprintf("Updated project '%s'", project.Name))
	}
	return nil
}
