package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"projsync/internal/db"
	"projsync/internal/gh"
	"projsync/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage projsync configuration",
}

var configGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Configure GitHub credentials",
	Long: `Configure the GitHub credentials used for all sync operations.

This command will prompt you for:
  - GitHub username
  - GitHub Personal Access Token (stored securely in system keyring)

To create a token:
  1. Go to GitHub Settings → Developer settings → Personal access tokens
  2. Generate a token with repo, issues and webhook permissions
  3. Copy token immediately (shown only once)

Use --test to verify the stored credentials against the API.`,
	RunE: runConfigGitHub,
}

var (
	configGitHubUsername   string
	configGitHubToken      string
	configGitHubAPIURL     string
	configGitHubWebhookURL string
	configGitHubShow       bool
	configGitHubClear      bool
	configGitHubTest       bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGitHubCmd)

	configGitHubCmd.Flags().StringVar(&configGitHubUsername, "username", "", "GitHub username")
	configGitHubCmd.Flags().StringVar(&configGitHubToken, "token", "", "GitHub token (use stdin for security)")
	configGitHubCmd.Flags().StringVar(&configGitHubAPIURL, "api-url", "", "GitHub API base URL (for GitHub Enterprise)")
	configGitHubCmd.Flags().StringVar(&configGitHubWebhookURL, "webhook-url", "", "Externally reachable base URL for webhook delivery")
	configGitHubCmd.Flags().BoolVar(&configGitHubShow, "show", false, "Show current configuration")
	configGitHubCmd.Flags().BoolVar(&configGitHubClear, "clear", false, "Clear GitHub credentials")
	configGitHubCmd.Flags().BoolVar(&configGitHubTest, "test", false, "Test the stored credentials")
}

func runConfigGitHub(cmd *cobra.Command, args []string) error {
	if configGitHubShow {
		return showGitHubConfig()
	}
	if configGitHubClear {
		return clearGitHubConfig()
	}
	if configGitHubTest {
		return testGitHubConnection()
	}

	// If flags provided, use non-interactive mode
	if configGitHubUsername != "" || configGitHubToken != "" ||
		configGitHubAPIURL != "" || configGitHubWebhookURL != "" {
		return configureGitHubNonInteractive()
	}

	return configureGitHubInteractive()
}

func showGitHubConfig() error {
	username, _ := db.GetConfig(models.ConfigGitHubUsername)
	apiURL, _ := db.GetConfig(models.ConfigAPIBaseURL)
	webhookURL, _ := db.GetConfig(models.ConfigWebhookBaseURL)
	tokenSet, _ := db.GetConfig(models.ConfigGitHubTokenSet)
	connected, _ := db.GetConfig(models.ConfigGitHubConnected)

	if apiURL == "" {
		apiURL = models.DefaultAPIBaseURL
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"username":    username,
			"api_url":     apiURL,
			"webhook_url": webhookURL,
			"token_set":   tokenSet == "true",
			"connected":   connected == "true",
		})
		return nil
	}

	fmt.Println("GitHub Configuration:")
	if username != "" {
		fmt.Printf("  Username:    %s\n", username)
	} else {
		fmt.Println("  Username:    (not configured)")
	}
	fmt.Printf("  API URL:     %s\n", apiURL)
	if webhookURL != "" {
		fmt.Printf("  Webhook URL: %s\n", webhookURL)
	} else {
		fmt.Println("  Webhook URL: (not configured)")
	}
	if tokenSet == "true" {
		fmt.Println("  Token:       (stored in system keyring)")
	} else {
		fmt.Println("  Token:       (not configured)")
	}
	if connected == "true" {
		fmt.Println("  Connection:  tested OK")
	} else {
		fmt.Println("  Connection:  not tested")
	}
	return nil
}

func clearGitHubConfig() error {
	// Username and token are cleared together
	db.DeleteConfig(models.ConfigGitHubUsername)
	db.DeleteConfig(models.ConfigGitHubTokenSet)
	db.DeleteConfig(models.ConfigGitHubConnected)

	// Clear from keyring
	keyring.Delete(models.KeyringServiceName, models.KeyringGitHubTokenKey)

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "message": "GitHub credentials cleared"})
	} else {
		fmt.Println("GitHub credentials cleared")
	}
	return nil
}

// setCredential stores username+token together and resets the
// connection-tested flag.
func setCredential(username, token string) error {
	if err := keyring.Set(models.KeyringServiceName, models.KeyringGitHubTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	if err := db.SetConfig(models.ConfigGitHubUsername, username); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	if err := db.SetConfig(models.ConfigGitHubTokenSet, "true"); err != nil {
		return fmt.Errorf("failed to save token flag: %w", err)
	}
	// New credentials are untested until --test succeeds
	if err := db.SetConfig(models.ConfigGitHubConnected, "false"); err != nil {
		return fmt.Errorf("failed to reset connection flag: %w", err)
	}
	return nil
}

func testGitHubConnection() error {
	opts, err := clientOptions()
	if err != nil {
		return err
	}
	client, err := gh.NewClient(opts)
	if err != nil {
		return err
	}

	login, err := client.TestConnection(context.Background())
	if err != nil {
		db.SetConfig(models.ConfigGitHubConnected, "false")

		var connErr *gh.ConnectivityError
		if errors.As(err, &connErr) {
			return err
		}
		// Remote rejection: report, don't treat as fatal
		if IsJSONOutput() {
			OutputJSON(map[string]interface{}{"connected": false, "message": err.Error()})
		} else {
			fmt.Printf("Connection failed: %v\n", err)
		}
		return nil
	}

	if err := db.SetConfig(models.ConfigGitHubConnected, "true"); err != nil {
		return err
	}
	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"connected": true, "login": login})
	} else {
		fmt.Printf("Connected as %s\n", login)
	}
	return nil
}

func configureGitHubNonInteractive() error {
	if configGitHubUsername != "" && configGitHubToken == "" {
		// Username alone is allowed only when a token is already stored
		if _, err := keyring.Get(models.KeyringServiceName, models.KeyringGitHubTokenKey); err != nil {
			return fmt.Errorf("token is required when setting credentials (use --token)")
		}
		if err := db.SetConfig(models.ConfigGitHubUsername, configGitHubUsername); err != nil {
			return fmt.Errorf("failed to save username: %w", err)
		}
		if err := db.SetConfig(models.ConfigGitHubConnected, "false"); err != nil {
			return err
		}
	}

	if configGitHubToken != "" {
		username := configGitHubUsername
		if username == "" {
			username, _ = db.GetConfig(models.ConfigGitHubUsername)
		}
		if username == "" {
			return fmt.Errorf("username is required when setting a token (use --username)")
		}
		if err := setCredential(username, configGitHubToken); err != nil {
			return err
		}
	}

	if configGitHubAPIURL != "" {
		if err := db.SetConfig(models.ConfigAPIBaseURL, configGitHubAPIURL); err != nil {
			return fmt.Errorf("failed to save API URL: %w", err)
		}
	}

	if configGitHubWebhookURL != "" {
		if err := db.SetConfig(models.ConfigWebhookBaseURL, configGitHubWebhookURL); err != nil {
			return fmt.Errorf("failed to save webhook URL: %w", err)
		}
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "message": "GitHub configuration updated"})
	} else {
		fmt.Println("GitHub configuration updated")
	}
	return nil
}

func configureGitHubInteractive() error {
	reader := bufio.NewReader(os.Stdin)

	currentUsername, _ := db.GetConfig(models.ConfigGitHubUsername)

	fmt.Println("GitHub Credentials Setup")
	fmt.Println("========================")
	fmt.Println()

	if currentUsername != "" {
		fmt.Printf("Username [%s]: ", currentUsername)
	} else {
		fmt.Print("Username: ")
	}
	usernameInput, _ := reader.ReadString('\n')
	usernameInput = strings.TrimSpace(usernameInput)
	if usernameInput == "" {
		usernameInput = currentUsername
	}
	if usernameInput == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Println()
	fmt.Println("GitHub Personal Access Token")
	fmt.Println("  Create at: GitHub Settings → Developer settings → Personal access tokens")
	fmt.Println()
	fmt.Print("Token (paste and press Enter): ")

	tokenInput, _ := reader.ReadString('\n')
	tokenInput = strings.TrimSpace(tokenInput)

	if tokenInput == "" {
		// Check if token already exists
		if _, err := keyring.Get(models.KeyringServiceName, models.KeyringGitHubTokenKey); err != nil {
			return fmt.Errorf("token is required")
		}
		fmt.Println("(keeping existing token)")
		if err := db.SetConfig(models.ConfigGitHubUsername, usernameInput); err != nil {
			return fmt.Errorf("failed to save username: %w", err)
		}
	} else {
		if err := setCredential(usernameInput, tokenInput); err != nil {
			return err
		}
		fmt.Println("(token stored in system keyring)")
	}

	fmt.Println()
	fmt.Println("GitHub credentials configured!")
	fmt.Printf("  Username: %s\n", usernameInput)
	fmt.Println("Run 'pjs config github --test' to verify the connection.")

	return nil
}
