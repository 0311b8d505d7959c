package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage repositories",
}

var repoCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new GitHub repository",
	Long: `Create a new repository under the authenticated GitHub account and
record it locally. The new repository is not bound to a project; use
'pjs connect --repo' to link it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepoCreate,
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally known repositories",
	RunE:  runRepoList,
}

var (
	repoDescription string
	repoPrivate     bool
)

func init() {
	rootCmd.AddCommand(repoCmd)
	repoCmd.AddCommand(repoCreateCmd)
	repoCmd.AddCommand(repoListCmd)

	repoCreateCmd.Flags().StringVarP(&repoDescription, "description", "d", "", "Repository description")
	repoCreateCmd.Flags().BoolVar(&repoPrivate, "private", false, "Create a private repository")
}

func runRepoCreate(cmd *cobra.Command, args []string) error {
	syncer, err := newSyncer()
	if err != nil {
		return err
	}

	link, err := syncer.CreateRepository(context.Background(), args[0], repoDescription, repoPrivate)
	if err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.Repository(link)
		return nil
	}
	f.Success(fmt.Sprintf("Created repository %s", link.FullName))
	f.KeyValue("URL", link.HTMLURL)
	f.KeyValue("Clone", link.CloneURL)
	return nil
}

func runRepoList(cmd *cobra.Command, args []string) error {
	var links []models.RepositoryLink
	if err := db.GetDB().Order("full_name asc").Find(&links).Error; err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.JSON(links)
		return nil
	}
	if len(links) == 0 {
		f.Info("No repositories known (use 'pjs connect' or 'pjs repo create')")
		return nil
	}
	for _, link := range links {
		vis := "public"
		if link.Private {
			vis = "private"
		}
		bound := ""
		if link.ProjectID != nil {
			var project models.Project
			if err := db.GetDB().First(&project, *link.ProjectID).Error; err == nil {
				bound = fmt.Sprintf(" -> project '%s'", project.Name)
			}
		}
		fmt.Printf("  %s (%s)%s\n", link.FullName, vis, bound)
	}
	return nil
}
