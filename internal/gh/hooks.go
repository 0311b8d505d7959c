package gh

import (
	"context"
	"fmt"

	"github.com/google/go-github/v63/github"
	"github.com/google/uuid"

	"projsync/internal/models"
)

// CreateWebhook registers a GitHub webhook for the project's linked
// repository and persists the remote id locally. The secret is
// required; the delivery URL is built from the installation's
// configured base URL plus a per-webhook path.
func (s *Syncer) CreateWebhook(ctx context.Context, project *models.Project, hook *models.Webhook) error {
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}
	if hook.Secret == "" {
		return Configurationf("webhook secret is not set")
	}

	hook.Path = uuid.NewString()
	deliveryURL, err := s.client.WebhookURL(hook.Path)
	if err != nil {
		return err
	}

	insecureSSL := "1"
	if hook.SSLVerification {
		insecureSSL = "0"
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	created, _, err := s.client.GitHub().Repositories.CreateHook(reqCtx, link.Owner, link.Name, &github.Hook{
		Active: github.Bool(true),
		Events: hook.Events(),
		Config: &github.HookConfig{
			URL:         github.String(deliveryURL),
			ContentType: github.String("json"),
			Secret:      github.String(hook.Secret),
			InsecureSSL: github.String(insecureSSL),
		},
	})
	if err != nil {
		return wrapRemote(err)
	}

	hook.RemoteID = created.GetID()
	hook.ProjectID = project.ID
	hook.RepositoryLinkID = link.ID
	if err := s.db.Create(hook).Error; err != nil {
		return err
	}

	s.audit(project.ID,
		fmt.Sprintf("GitHub webhook created with ID %d", hook.RemoteID), "")
	return nil
}
