package gh

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"projsync/internal/models"
)

// Syncer composes the GitHub client with local persistence. Every
// user-facing sync operation lives on this type; each one blocks
// until its HTTP calls complete or time out.
type Syncer struct {
	db     *gorm.DB
	client *Client
}

// NewSyncer builds a Syncer
func NewSyncer(database *gorm.DB, client *Client) *Syncer {
	return &Syncer{db: database, client: client}
}

// DB exposes the persistence handle (used by the wizard and tests)
func (s *Syncer) DB() *gorm.DB {
	return s.db
}

// SplitFullName splits "owner/repo" into its parts
func SplitFullName(fullName string) (owner, name string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", Configurationf("invalid repository %q: expected 'owner/repo'", fullName)
	}
	return parts[0], parts[1], nil
}

// linkForProject loads the repository link bound to a project
func (s *Syncer) linkForProject(projectID uint) (*models.RepositoryLink, error) {
	var link models.RepositoryLink
	err := s.db.Where("project_id = ?", projectID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Statef("no repository is connected to this project")
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// connectedLink loads the project's link and requires connected=true
func (s *Syncer) connectedLink(projectID uint) (*models.RepositoryLink, error) {
	link, err := s.linkForProject(projectID)
	if err != nil {
		return nil, err
	}
	if !link.Connected {
		return nil, Statef("repository %s is not connected", link.FullName)
	}
	return link, nil
}

func (s *Syncer) audit(projectID uint, message, link string) {
	// Audit entries never abort the action they describe
	_ = models.PostAudit(s.db, projectID, message, link)
}

func (s *Syncer) auditTask(projectID uint, taskID, message, link string) {
	_ = models.PostTaskAudit(s.db, projectID, taskID, message, link)
}
