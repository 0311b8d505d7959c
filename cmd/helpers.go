package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"gorm.io/gorm"

	"projsync/internal/db"
	"projsync/internal/gh"
	"projsync/internal/models"
)

// GetGitHubToken retrieves the GitHub token from keyring or environment
func GetGitHubToken() (string, error) {
	// First try environment variable
	if token := os.Getenv("PJS_GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	// Then try keyring
	token, err := keyring.Get(models.KeyringServiceName, models.KeyringGitHubTokenKey)
	if err != nil {
		return "", fmt.Errorf("GitHub token not found. Run 'pjs config github' or set PJS_GITHUB_TOKEN")
	}
	return token, nil
}

// clientOptions assembles client options from the config store and keyring
func clientOptions() (gh.Options, error) {
	token, err := GetGitHubToken()
	if err != nil {
		return gh.Options{}, err
	}
	username, _ := db.GetConfig(models.ConfigGitHubUsername)
	baseURL, _ := db.GetConfig(models.ConfigAPIBaseURL)
	webhookURL, _ := db.GetConfig(models.ConfigWebhookBaseURL)

	return gh.Options{
		BaseURL:        baseURL,
		Token:          token,
		Username:       username,
		WebhookBaseURL: webhookURL,
	}, nil
}

// newClient builds a bare API client without the sync layer
func newClient() (*gh.Client, error) {
	opts, err := clientOptions()
	if err != nil {
		return nil, err
	}
	return gh.NewClient(opts)
}

// newSyncer builds a Syncer against the current database and configuration
func newSyncer() (*gh.Syncer, error) {
	opts, err := clientOptions()
	if err != nil {
		return nil, err
	}
	client, err := gh.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return gh.NewSyncer(db.GetDB(), client), nil
}

// resolveProject loads a project by name, falling back to the
// configured default project when the name is empty.
func resolveProject(name string) (*models.Project, error) {
	if name == "" {
		name, _ = db.GetConfig(models.ConfigDefaultProject)
	}
	if name == "" {
		return nil, fmt.Errorf("no project given (use --project or set a default with 'pjs project default')")
	}

	var project models.Project
	err := db.GetDB().Where("name = ?", name).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("project '%s' not found (use 'pjs project list')", name)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// getTask loads a task and its project by task ID
func getTask(id string) (*models.Task, *models.Project, error) {
	var task models.Task
	err := db.GetDB().Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("task '%s' not found (use 'pjs list')", id)
	}
	if err != nil {
		return nil, nil, err
	}

	var project models.Project
	if err := db.GetDB().First(&project, task.ProjectID).Error; err != nil {
		return nil, nil, fmt.Errorf("project for task '%s' not found", id)
	}
	return &task, &project, nil
}
