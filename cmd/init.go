package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/models"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize projsync in the current directory",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force reinitialize")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	projsyncDir := filepath.Join(cwd, db.ProjsyncDir)
	dbPath := filepath.Join(projsyncDir, db.DBFileName)

	// Check if already initialized
	if info, err := os.Stat(projsyncDir); err == nil && info.IsDir() {
		if !forceInit {
			return fmt.Errorf("already initialized. Use --force to reinitialize")
		}
		if err := os.RemoveAll(projsyncDir); err != nil {
			return fmt.Errorf("failed to remove existing projsync directory: %w", err)
		}
	}

	// Create .projsync directory
	if err := os.MkdirAll(projsyncDir, 0755); err != nil {
		return fmt.Errorf("failed to create projsync directory: %w", err)
	}

	database, err := db.InitDB(dbPath)
	if err != nil {
		return err
	}

	if err := database.Create(&models.Config{Key: models.ConfigSchemaVersion, Value: db.SchemaVersion}).Error; err != nil {
		return fmt.Errorf("failed to save schema version: %w", err)
	}
	if err := database.Create(&models.Config{Key: models.ConfigInitializedAt, Value: time.Now().Format(time.RFC3339)}).Error; err != nil {
		return fmt.Errorf("failed to save initialization time: %w", err)
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "path": projsyncDir})
	} else {
		fmt.Printf("Initialized projsync in %s\n", projsyncDir)
		fmt.Println("Next: 'pjs config github' to store credentials, 'pjs project create' to add a project")
	}
	return nil
}
