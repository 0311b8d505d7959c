package models

import (
	"time"
)

// Config stores key-value configuration for the workspace
type Config struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Config
func (Config) TableName() string {
	return "config"
}

// Common config keys
const (
	ConfigSchemaVersion  = "schema_version"
	ConfigInitializedAt  = "initialized_at"
	ConfigDefaultProject = "default_project"

	ConfigGitHubUsername  = "github_username"
	ConfigGitHubTokenSet  = "github_token_set"
	ConfigGitHubConnected = "github_connected"
	ConfigAPIBaseURL      = "github_api_url"
	ConfigWebhookBaseURL  = "webhook_base_url"
)

// Keyring constants for token storage
const (
	KeyringServiceName    = "projsync"
	KeyringGitHubTokenKey = "github-token"
)

// DefaultAPIBaseURL is used when no per-installation URL is configured
const DefaultAPIBaseURL = "https://api.github.com/"
