package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"projsync/internal/output"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the repository from a project",
	Long: `Disconnect the GitHub repository from a project.

Removes registered webhooks from the remote repository, then deletes
the mirrored branches, commits and the repository link. The project's
tasks are untouched.`,
	RunE: runDisconnect,
}

var (
	disconnectProject string
	disconnectForce   bool
)

func init() {
	rootCmd.AddCommand(disconnectCmd)

	disconnectCmd.Flags().StringVarP(&disconnectProject, "project", "p", "", "Project to disconnect (defaults to the default project)")
	disconnectCmd.Flags().BoolVarP(&disconnectForce, "force", "f", false, "Skip confirmation")
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	project, err := resolveProject(disconnectProject)
	if err != nil {
		return err
	}

	if !disconnectForce {
		fmt.Printf("Disconnect the repository from project '%s'? Mirrored branches and commits will be deleted. [y/N]: ", project.Name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	syncer, err := newSyncer()
	if err != nil {
		return err
	}

	if err := syncer.Disconnect(context.Background(), project); err != nil {
		return err
	}

	f := output.New(IsJSONOutput())
	f.Success(fmt.Sprintf("Disconnected repository from project '%s'", project.Name))
	return nil
}
