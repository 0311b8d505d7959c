package gh

import (
	"context"
	"fmt"

	"github.com/google/go-github/v63/github"

	"projsync/internal/models"
)

// snapshotFromRepository maps a GitHub repository payload onto a local
// metadata snapshot.
func snapshotFromRepository(repo *github.Repository) models.RepositoryLink {
	link := models.RepositoryLink{
		RemoteID:        repo.GetID(),
		Owner:           repo.GetOwner().GetLogin(),
		Name:            repo.GetName(),
		FullName:        repo.GetFullName(),
		Description:     repo.GetDescription(),
		Private:         repo.GetPrivate(),
		HTMLURL:         repo.GetHTMLURL(),
		CloneURL:        repo.GetCloneURL(),
		SSHURL:          repo.GetSSHURL(),
		Language:        repo.GetLanguage(),
		StarsCount:      repo.GetStargazersCount(),
		ForksCount:      repo.GetForksCount(),
		OpenIssuesCount: repo.GetOpenIssuesCount(),
		Archived:        repo.GetArchived(),
		Disabled:        repo.GetDisabled(),
		Visibility:      repo.GetVisibility(),
		DefaultBranch:   repo.GetDefaultBranch(),
		AvatarURL:       repo.GetOwner().GetAvatarURL(),
	}
	if created := repo.GetCreatedAt(); !created.IsZero() {
		t := created.Time
		link.RemoteCreatedAt = &t
	}
	if updated := repo.GetUpdatedAt(); !updated.IsZero() {
		t := updated.Time
		link.RemoteUpdatedAt = &t
	}
	return link
}

// Connect binds a GitHub repository to a project by full name and
// stores the metadata snapshot. On any remote failure the project's
// connected flag is cleared and nothing is persisted.
func (s *Syncer) Connect(ctx context.Context, project *models.Project, fullName string) (*models.RepositoryLink, error) {
	if fullName == "" {
		return nil, Configurationf("repository name is not set")
	}
	owner, name, err := SplitFullName(fullName)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.RepositoryLink{}).
		Where("owner = ? AND name = ?", owner, name).
		Count(&count)
	if count > 0 {
		return nil, Statef("repository %s is already connected", fullName)
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	repo, _, err := s.client.GitHub().Repositories.Get(reqCtx, owner, name)
	if err != nil {
		project.Connected = false
		s.db.Model(project).Update("connected", false)
		return nil, wrapRemote(err)
	}

	link := snapshotFromRepository(repo)
	link.Connected = true
	link.ProjectID = &project.ID

	if link.AvatarURL != "" {
		// Best effort: a missing avatar never fails the connect
		if avatar, err := s.client.FetchImage(ctx, link.AvatarURL); err == nil {
			link.Avatar = avatar
		}
	}

	if err := s.db.Create(&link).Error; err != nil {
		return nil, err
	}

	project.Connected = true
	project.GitHubURL = link.HTMLURL
	if err := s.db.Model(project).Updates(map[string]interface{}{
		"connected":  true,
		"github_url": link.HTMLURL,
	}).Error; err != nil {
		return nil, err
	}

	s.audit(project.ID,
		fmt.Sprintf("Repository %q connected to project %q", link.FullName, project.Name),
		link.HTMLURL)
	return &link, nil
}

// Disconnect removes the project's repository link. Remote webhooks
// are deleted first; only 404 is tolerated. Local state is mutated
// only after the remote side is clean.
func (s *Syncer) Disconnect(ctx context.Context, project *models.Project) error {
	link, err := s.linkForProject(project.ID)
	if err != nil {
		return err
	}

	var hooks []models.Webhook
	if err := s.db.Where("project_id = ?", project.ID).Find(&hooks).Error; err != nil {
		return err
	}
	for _, hook := range hooks {
		if hook.RemoteID == 0 {
			continue
		}
		reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
		_, err := s.client.GitHub().Repositories.DeleteHook(reqCtx, link.Owner, link.Name, hook.RemoteID)
		cancel()
		if err != nil {
			wrapped := wrapRemote(err)
			if !IsNotFound(wrapped) {
				return wrapped
			}
		}
	}

	// Remote side clean: drop the mirror and the link
	if err := s.db.Where("project_id = ?", project.ID).Delete(&models.Webhook{}).Error; err != nil {
		return err
	}
	if err := s.db.Exec(
		"DELETE FROM commit_branches WHERE commit_id IN (SELECT id FROM commits WHERE project_id = ?)",
		project.ID).Error; err != nil {
		return err
	}
	if err := s.db.Where("project_id = ?", project.ID).Delete(&models.Commit{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("repository_link_id = ?", link.ID).Delete(&models.Branch{}).Error; err != nil {
		return err
	}
	if err := s.db.Delete(link).Error; err != nil {
		return err
	}

	project.Connected = false
	project.GitHubURL = ""
	if err := s.db.Model(project).Updates(map[string]interface{}{
		"connected":  false,
		"github_url": "",
	}).Error; err != nil {
		return err
	}

	s.audit(project.ID,
		fmt.Sprintf("Repository %q disconnected from project %q", link.FullName, project.Name), "")
	return nil
}

// SyncBranches mirrors remote branches that are not yet known locally
// and returns the number added. Zero additions is a reported result,
// not an error.
func (s *Syncer) SyncBranches(ctx context.Context, project *models.Project) (int, error) {
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return 0, err
	}

	branches, err := s.listRemoteBranches(ctx, link)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, remote := range branches {
		var existing models.Branch
		err := s.db.Where("name = ? AND repository_link_id = ?", remote.GetName(), link.ID).
			First(&existing).Error
		if err == nil {
			continue
		}
		branch := models.Branch{
			Name:             remote.GetName(),
			RepositoryLinkID: link.ID,
			Protected:        remote.GetProtected(),
			IsDefault:        remote.GetName() == link.DefaultBranch,
		}
		if err := s.db.Create(&branch).Error; err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *Syncer) listRemoteBranches(ctx context.Context, link *models.RepositoryLink) ([]*github.Branch, error) {
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.Branch
	for {
		reqCtx, cancel := context.WithTimeout(ctx, ListTimeout)
		branches, resp, err := s.client.GitHub().Repositories.ListBranches(reqCtx, link.Owner, link.Name, opts)
		cancel()
		if err != nil {
			return nil, wrapRemote(err)
		}
		all = append(all, branches...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// CreateRepository creates a new repository on GitHub for the
// authenticated user and stores the resulting snapshot locally. The
// link is not bound to a project; the connect wizard does that.
func (s *Syncer) CreateRepository(ctx context.Context, name, description string, private bool) (*models.RepositoryLink, error) {
	if name == "" {
		return nil, Configurationf("repository name is not set")
	}

	var count int64
	s.db.Model(&models.RepositoryLink{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, Statef("a repository named %q already exists locally", name)
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	repo, _, err := s.client.GitHub().Repositories.Create(reqCtx, "", &github.Repository{
		Name:        github.String(name),
		Description: github.String(description),
		Private:     github.Bool(private),
	})
	if err != nil {
		return nil, wrapRemote(err)
	}

	link := snapshotFromRepository(repo)
	link.Connected = true
	if link.AvatarURL != "" {
		if avatar, err := s.client.FetchImage(ctx, link.AvatarURL); err == nil {
			link.Avatar = avatar
		}
	}
	if err := s.db.Create(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
