package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
	"projsync/internal/output"
)

var cleanupForce bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Permanently delete archived tasks",
	Long: `Permanently delete archived tasks and their sync history entries.

This cannot be undone. Archived tasks are those removed with
'pjs archive'.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "Skip confirmation")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	var archived []models.Task
	if err := db.GetDB().Unscoped().
		Where("deleted_at IS NOT NULL").
		Find(&archived).Error; err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	if len(archived) == 0 {
		if IsJSONOutput() {
			OutputJSON(map[string]interface{}{"deleted": 0})
		} else {
			f.Info("No archived tasks to clean up")
		}
		return nil
	}

	if !cleanupForce {
		fmt.Printf("Permanently delete %d archived task(s)? This cannot be undone. [y/N]: ", len(archived))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	for i := range archived {
		if err := db.GetDB().Unscoped().Delete(&archived[i]).Error; err != nil {
			return fmt.Errorf("failed to delete task %s: %w", archived[i].ID, err)
		}
		db.GetDB().Where("task_id = ?", archived[i].ID).Delete(&models.AuditLog{})
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"deleted": len(archived)})
	} else {
		f.Success(fmt.Sprintf("Deleted %d archived task(s)", len(archived)))
	}
	return nil
}
