package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"projsync/internal/db"
)

var (
	Version    = "0.1.0"
	jsonOutput bool
)

// commandsExemptFromDB lists commands that don't require database initialization
var commandsExemptFromDB = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "pjs",
	Short: "projsync - sync project tasks with GitHub",
	Long: `projsync (pjs) keeps local project tasks in sync with GitHub.

QUICK START:
  pjs init                          # Initialize in current directory
  pjs config github                 # Store GitHub credentials
  pjs project create "Backend"      # Create a project
  pjs connect --project Backend     # Link a GitHub repository
  pjs create "Fix login bug"        # Create task (auto-creates issue if enabled)
  pjs sync branches                 # Mirror remote branches
  pjs sync commits                  # Mirror remote commits

PROJECTS: each project links to at most one GitHub repository.
Enable --auto-create-issues / --auto-update-issues per project to push
task changes to GitHub issues automatically.

BRANCHES & PRS:
  pjs branch create <task-id> <name>   # Create remote branch bound to task
  pjs pr create <task-id>              # Open PR from the task's branch
  pjs pr merge <task-id>               # Merge the task's PR

JSON OUTPUT: Add --json flag to any command for machine-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if commandsExemptFromDB[cmd.Name()] {
			return nil
		}
		return db.EnsureInitialized()
	},
}

func Execute() {
	defer db.CloseDB()

	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			OutputJSON(map[string]interface{}{"error": true, "message": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.Version = Version
}

func OutputJSON(data interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(data)
}

func IsJSONOutput() bool {
	return jsonOutput
}
