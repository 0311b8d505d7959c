package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror repository data locally",
}

var syncBranchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "Sync branches from the connected repository",
	Long: `Fetch the connected repository's branches and mirror them locally.

Branches already mirrored are left untouched. Reports the number of
newly added branches; zero is a normal result.`,
	RunE: runSyncBranches,
}

var syncCommitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Sync commits from the connected repository",
	Long: `Fetch recent commits for every remote branch and mirror them locally.

A commit reachable from several branches is stored once and associated
with each branch. Branches whose commit listing fails are skipped and
reported without aborting the run.`,
	RunE: runSyncCommits,
}

var syncProject string

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncBranchesCmd)
	syncCmd.AddCommand(syncCommitsCmd)

	syncCmd.PersistentFlags().StringVarP(&syncProject, "project", "p", "", "Project to sync (defaults to the default project)")
}

func runSyncBranches(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(syncProject)
	if err != nil {
		return err
	}
	syncer, err := newSyncer()
	if err != nil {
		return err
	}

	added, err := syncer.SyncBranches(context.Background(), project)
	if err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.JSON(map[string]interface{}{"project": project.Name, "branches_added": added})
		return nil
	}
	if added == 0 {
		f.Info("Branches are up to date")
	} else {
		f.Success(fmt.Sprintf("Added %d new branch(es)", added))
	}

	var branches []models.Branch
	err = db.GetDB().
		Joins("JOIN repository_links ON repository_links.id = branches.repository_link_id").
		Where("repository_links.project_id = ?", project.ID).
		Order("branches.name asc").
		Find(&branches).Error
	if err == nil && len(branches) > 0 {
		f.BranchList(branches)
	}
	return nil
}

func runSyncCommits(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(syncProject)
	if err != nil {
		return err
	}
	syncer, err := newSyncer()
	if err != nil {
		return err
	}

	result, err := syncer.SyncCommits(context.Background(), project)
	if err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if IsJSONOutput() {
		f.JSON(map[string]interface{}{
			"project":          project.Name,
			"branches_scanned": result.BranchesScanned,
			"commits_added":    result.CommitsAdded,
			"links_added":      result.LinksAdded,
			"skipped_branches": result.SkippedBranches,
		})
		return nil
	}

	f.Success(fmt.Sprintf("Scanned %d branch(es): %d new commit(s), %d new branch association(s)",
		result.BranchesScanned, result.CommitsAdded, result.LinksAdded))
	for _, name := range result.SkippedBranches {
		f.Info(fmt.Sprintf("Skipped branch '%s' (listing failed)", name))
	}
	return nil
}
