package gh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v63/github"
	"gorm.io/gorm"

	"projsync/internal/models"
)

// Wizard states
const (
	WizardStateForm    = "form"
	WizardStateSelect  = "select_repo"
	WizardStatePreview = "preview"
)

// Listing pagination limits
const (
	listingPageSize = 100
	listingMaxPages = 10
)

// RepoListing is one transient row of the connect wizard's repository
// list: a full metadata snapshot of a repository the user may select.
type RepoListing struct {
	RemoteID        int64      `json:"remote_id"`
	Name            string     `json:"name"`
	Owner           string     `json:"owner"`
	FullName        string     `json:"full_name"`
	Description     string     `json:"description,omitempty"`
	Private         bool       `json:"private"`
	HTMLURL         string     `json:"html_url,omitempty"`
	CloneURL        string     `json:"clone_url,omitempty"`
	SSHURL          string     `json:"ssh_url,omitempty"`
	DefaultBranch   string     `json:"default_branch"`
	Language        string     `json:"language,omitempty"`
	StarsCount      int        `json:"stars_count"`
	ForksCount      int        `json:"forks_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	Archived        bool       `json:"archived"`
	Disabled        bool       `json:"disabled"`
	Visibility      string     `json:"visibility,omitempty"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// DisplayName renders the row the way the selection list shows it
func (r *RepoListing) DisplayName() string {
	if r.Private {
		return r.FullName + " (Private)"
	}
	return r.FullName
}

// ConnectWizard drives the multi-step repository connection flow:
// form -> select_repo -> preview -> persist. Back-navigation only
// rewinds the state; repository listing is read-only, so no remote
// side effects exist before the final persist step.
type ConnectWizard struct {
	State    string
	Project  *models.Project
	Rows     []RepoListing
	Selected *RepoListing

	TotalCount   int
	PublicCount  int
	PrivateCount int

	syncer *Syncer
}

// NewConnectWizard starts a wizard in the form state
func NewConnectWizard(syncer *Syncer, project *models.Project) *ConnectWizard {
	return &ConnectWizard{
		State:   WizardStateForm,
		Project: project,
		syncer:  syncer,
	}
}

// FetchRepositories pages through the authenticated user's
// repositories (100 per page, capped at 10 pages) and fills the
// selection list. Zero results is a hard stop.
func (w *ConnectWizard) FetchRepositories(ctx context.Context, repoType, sortKey, direction string) error {
	if repoType == "" {
		repoType = "all"
	}
	if sortKey == "" {
		sortKey = "updated"
	}
	if direction == "" {
		direction = "desc"
	}

	var all []*github.Repository
	for page := 1; ; page++ {
		opts := &github.RepositoryListByAuthenticatedUserOptions{
			Type:      repoType,
			Sort:      sortKey,
			Direction: direction,
			ListOptions: github.ListOptions{
				PerPage: listingPageSize,
				Page:    page,
			},
		}

		reqCtx, cancel := context.WithTimeout(ctx, ListTimeout)
		repos, _, err := w.syncer.client.GitHub().Repositories.ListByAuthenticatedUser(reqCtx, opts)
		cancel()
		if err != nil {
			return wrapListingError(err)
		}
		if len(repos) == 0 {
			break
		}
		all = append(all, repos...)
		if page >= listingMaxPages {
			break
		}
	}

	if len(all) == 0 {
		return Statef("no repositories found for the specified criteria")
	}

	w.Rows = w.Rows[:0]
	w.PublicCount = 0
	w.PrivateCount = 0
	for _, repo := range all {
		row := listingFromRepository(repo)
		w.Rows = append(w.Rows, row)
		if row.Private {
			w.PrivateCount++
		} else {
			w.PublicCount++
		}
	}
	w.TotalCount = len(w.Rows)
	w.Selected = nil
	w.State = WizardStateSelect
	return nil
}

// wrapListingError translates listing failures into the specific
// user-facing messages the wizard shows.
func wrapListingError(err error) error {
	wrapped := wrapRemote(err)
	switch errorStatus(wrapped) {
	case 401:
		return &RemoteRejectionError{StatusCode: 401,
			Message: "GitHub authentication failed. Please check your token"}
	case 403:
		return &RemoteRejectionError{StatusCode: 403,
			Message: "GitHub API rate limit exceeded. Please try again later"}
	case 404:
		return &RemoteRejectionError{StatusCode: 404,
			Message: "unable to access your repositories. Please check your token permissions"}
	}
	return wrapped
}

func listingFromRepository(repo *github.Repository) RepoListing {
	row := RepoListing{
		RemoteID:        repo.GetID(),
		Name:            repo.GetName(),
		Owner:           repo.GetOwner().GetLogin(),
		FullName:        repo.GetFullName(),
		Description:     repo.GetDescription(),
		Private:         repo.GetPrivate(),
		HTMLURL:         repo.GetHTMLURL(),
		CloneURL:        repo.GetCloneURL(),
		SSHURL:          repo.GetSSHURL(),
		DefaultBranch:   repo.GetDefaultBranch(),
		Language:        repo.GetLanguage(),
		StarsCount:      repo.GetStargazersCount(),
		ForksCount:      repo.GetForksCount(),
		OpenIssuesCount: repo.GetOpenIssuesCount(),
		Archived:        repo.GetArchived(),
		Disabled:        repo.GetDisabled(),
		Visibility:      repo.GetVisibility(),
		AvatarURL:       repo.GetOwner().GetAvatarURL(),
	}
	if row.DefaultBranch == "" {
		row.DefaultBranch = "main"
	}
	if created := repo.GetCreatedAt(); !created.IsZero() {
		t := created.Time
		row.CreatedAt = &t
	}
	if updated := repo.GetUpdatedAt(); !updated.IsZero() {
		t := updated.Time
		row.UpdatedAt = &t
	}
	return row
}

// Select picks a repository from the fetched list by full name
func (w *ConnectWizard) Select(fullName string) error {
	if w.State != WizardStateSelect && w.State != WizardStatePreview {
		return Statef("no repository list fetched yet")
	}
	for i := range w.Rows {
		if w.Rows[i].FullName == fullName {
			w.Selected = &w.Rows[i]
			return nil
		}
	}
	return Statef("repository %q is not in the fetched list", fullName)
}

// Preview renders a read-only summary of the selected repository.
// No network call is made.
func (w *ConnectWizard) Preview() (string, error) {
	if w.Selected == nil {
		return "", Statef("please select a repository to preview")
	}
	repo := w.Selected

	var sb strings.Builder
	write := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&sb, "%-16s %s\n", label+":", value)
	}
	write("Name", repo.Name)
	write("Full Name", repo.FullName)
	write("Owner", repo.Owner)
	write("Description", repo.Description)
	write("Private", yesNo(repo.Private))
	write("Language", repo.Language)
	write("Default Branch", repo.DefaultBranch)
	write("Open Issues", fmt.Sprintf("%d", repo.OpenIssuesCount))
	write("Stars", fmt.Sprintf("%d", repo.StarsCount))
	write("Forks", fmt.Sprintf("%d", repo.ForksCount))
	write("Archived", yesNo(repo.Archived))
	write("Visibility", repo.Visibility)
	write("URL", repo.HTMLURL)
	if repo.CreatedAt != nil {
		write("Created", repo.CreatedAt.Format(models.DateTimeFormat))
	}
	if repo.UpdatedAt != nil {
		write("Updated", repo.UpdatedAt.Format(models.DateTimeFormat))
	}

	w.State = WizardStatePreview
	return sb.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Back rewinds the wizard one state. Nothing else is undone; the flow
// has no remote side effects before Connect.
func (w *ConnectWizard) Back() {
	switch w.State {
	case WizardStatePreview:
		w.State = WizardStateSelect
	case WizardStateSelect:
		w.State = WizardStateForm
	}
}

// Connect persists the selected repository as the project's link,
// flags its default branch and posts an audit entry. A link matching
// the same (remote id, full_name, name) triple is a state error.
func (w *ConnectWizard) Connect(ctx context.Context) (*models.RepositoryLink, error) {
	if w.Selected == nil {
		return nil, Statef("please select a repository to connect")
	}
	repo := w.Selected
	database := w.syncer.db

	var count int64
	database.Model(&models.RepositoryLink{}).
		Where("remote_id = ? AND full_name = ? AND name = ?", repo.RemoteID, repo.FullName, repo.Name).
		Count(&count)
	if count > 0 {
		return nil, Statef("repository %q is already connected", repo.FullName)
	}

	link := models.RepositoryLink{
		RemoteID:        repo.RemoteID,
		Owner:           repo.Owner,
		Name:            repo.Name,
		FullName:        repo.FullName,
		Description:     repo.Description,
		Private:         repo.Private,
		HTMLURL:         repo.HTMLURL,
		CloneURL:        repo.CloneURL,
		SSHURL:          repo.SSHURL,
		Language:        repo.Language,
		StarsCount:      repo.StarsCount,
		ForksCount:      repo.ForksCount,
		OpenIssuesCount: repo.OpenIssuesCount,
		Archived:        repo.Archived,
		Disabled:        repo.Disabled,
		Visibility:      repo.Visibility,
		DefaultBranch:   repo.DefaultBranch,
		AvatarURL:       repo.AvatarURL,
		Connected:       true,
		ProjectID:       &w.Project.ID,
		RemoteCreatedAt: repo.CreatedAt,
		RemoteUpdatedAt: repo.UpdatedAt,
	}
	if err := database.Create(&link).Error; err != nil {
		return nil, err
	}

	// Flag the default branch, creating its mirror row if needed
	var branch models.Branch
	err := database.Where("name = ? AND repository_link_id = ?", repo.DefaultBranch, link.ID).
		First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		branch = models.Branch{
			Name:             repo.DefaultBranch,
			RepositoryLinkID: link.ID,
			IsDefault:        true,
		}
		if err := database.Create(&branch).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if !branch.IsDefault {
		if err := database.Model(&branch).Update("is_default", true).Error; err != nil {
			return nil, err
		}
	}

	w.Project.Connected = true
	w.Project.GitHubURL = link.HTMLURL
	if err := database.Model(w.Project).Updates(map[string]interface{}{
		"connected":  true,
		"github_url": link.HTMLURL,
	}).Error; err != nil {
		return nil, err
	}

	w.syncer.audit(w.Project.ID,
		fmt.Sprintf("Repository %q connected to project %q", link.FullName, w.Project.Name),
		link.HTMLURL)
	return &link, nil
}
