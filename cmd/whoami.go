package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projsync/internal/db"
	"projsync/internal/gh"
	"projsync/internal/models"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated GitHub identity",
	Long: `Show the GitHub account the stored credentials authenticate as.

Performs a live API request and reports the remote login, which may
differ from the locally configured username.`,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), gh.ListTimeout)
	defer cancel()

	user, _, err := client.GitHub().Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to fetch authenticated user: %w", err)
	}

	localUsername, _ := db.GetConfig(models.ConfigGitHubUsername)

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"login":          user.GetLogin(),
			"name":           user.GetName(),
			"local_username": localUsername,
		})
		return nil
	}

	fmt.Printf("Authenticated as: %s\n", user.GetLogin())
	if name := user.GetName(); name != "" {
		fmt.Printf("  Name: %s\n", name)
	}
	if localUsername != "" && localUsername != user.GetLogin() {
		fmt.Printf("  Note: locally configured username is %q\n", localUsername)
	}
	return nil
}
