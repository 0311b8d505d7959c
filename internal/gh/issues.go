package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v63/github"

	"projsync/internal/models"
)

const (
	// issueBodyPlaceholder fills the body when a task has no description
	issueBodyPlaceholder = "No description provided."
	// labelColor is applied to labels created on the fly
	labelColor = "a64d79"
)

// IssueState maps a stage name to a GitHub issue state
func IssueState(stage string) string {
	if models.IsClosedStageName(stage) {
		return "closed"
	}
	return "open"
}

// PrepareIssueRequest derives the GitHub issue payload from a task's
// fields. It is deterministic: the same task fields always produce the
// same payload. Milestone resolution happens separately because it
// needs remote calls.
func PrepareIssueRequest(task *models.Task) *github.IssueRequest {
	body := task.Description
	if body == "" {
		body = issueBodyPlaceholder
	}

	req := &github.IssueRequest{
		Title: github.String(task.Title),
		Body:  github.String(body),
		State: github.String(IssueState(task.Stage)),
	}

	if len(task.Tags) > 0 {
		labels := make([]string, 0, len(task.Tags))
		for _, tag := range task.Tags {
			labels = append(labels, strings.ToLower(tag))
		}
		req.Labels = &labels
	}

	if len(task.Assignees) > 0 {
		assignees := make([]string, 0, len(task.Assignees))
		assignees = append(assignees, task.Assignees...)
		req.Assignees = &assignees
	}

	return req
}

// ensureLabels creates any labels that don't exist in the remote
// repository yet, using a fixed color and description.
func (s *Syncer) ensureLabels(ctx context.Context, link *models.RepositoryLink, labels []string) error {
	reqCtx, cancel := context.WithTimeout(ctx, ListTimeout)
	existing, _, err := s.client.GitHub().Issues.ListLabels(reqCtx, link.Owner, link.Name,
		&github.ListOptions{PerPage: 100})
	cancel()
	if err != nil {
		return wrapRemote(err)
	}

	known := make(map[string]bool, len(existing))
	for _, label := range existing {
		known[strings.ToLower(label.GetName())] = true
	}

	for _, label := range labels {
		if known[strings.ToLower(label)] {
			continue
		}
		reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
		_, _, err := s.client.GitHub().Issues.CreateLabel(reqCtx, link.Owner, link.Name, &github.Label{
			Name:        github.String(label),
			Color:       github.String(labelColor),
			Description: github.String(fmt.Sprintf("Auto-created for tag '%s'", label)),
		})
		cancel()
		if err != nil {
			return wrapRemote(err)
		}
	}
	return nil
}

// resolveMilestone finds a milestone by title, creating it remotely
// when absent, and returns its number.
func (s *Syncer) resolveMilestone(ctx context.Context, link *models.RepositoryLink, title string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, ListTimeout)
	milestones, _, err := s.client.GitHub().Issues.ListMilestones(reqCtx, link.Owner, link.Name,
		&github.MilestoneListOptions{State: "all", ListOptions: github.ListOptions{PerPage: 100}})
	cancel()
	if err != nil {
		return 0, wrapRemote(err)
	}
	for _, milestone := range milestones {
		if milestone.GetTitle() == title {
			return milestone.GetNumber(), nil
		}
	}

	reqCtx, cancel = context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	created, _, err := s.client.GitHub().Issues.CreateMilestone(reqCtx, link.Owner, link.Name,
		&github.Milestone{Title: github.String(title)})
	if err != nil {
		return 0, wrapRemote(err)
	}
	return created.GetNumber(), nil
}

// buildIssueRequest prepares the payload and performs the remote
// resolution steps it needs (label creation, milestone lookup).
func (s *Syncer) buildIssueRequest(ctx context.Context, link *models.RepositoryLink, task *models.Task) (*github.IssueRequest, error) {
	req := PrepareIssueRequest(task)
	if req.Labels != nil {
		if err := s.ensureLabels(ctx, link, *req.Labels); err != nil {
			return nil, err
		}
	}
	if task.Milestone != "" {
		number, err := s.resolveMilestone(ctx, link, task.Milestone)
		if err != nil {
			return nil, err
		}
		req.Milestone = github.Int(number)
	}
	return req, nil
}

// CreateIssue creates a GitHub issue from the task and stores the
// remote url and number on it. The local write is applied directly so
// it cannot re-trigger an update push.
func (s *Syncer) CreateIssue(ctx context.Context, project *models.Project, task *models.Task) error {
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}

	req, err := s.buildIssueRequest(ctx, link, task)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	issue, _, err := s.client.GitHub().Issues.Create(reqCtx, link.Owner, link.Name, req)
	if err != nil {
		return wrapRemote(err)
	}

	task.IssueURL = issue.GetHTMLURL()
	task.IssueNumber = issue.GetNumber()
	if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"issue_url":    task.IssueURL,
		"issue_number": task.IssueNumber,
	}).Error; err != nil {
		return err
	}

	s.auditTask(project.ID, task.ID,
		fmt.Sprintf("Issue %q created in repository %s", task.Title, link.FullName),
		task.IssueURL)
	return nil
}

// UpdateIssue pushes the task's current fields to its GitHub issue
func (s *Syncer) UpdateIssue(ctx context.Context, project *models.Project, task *models.Task) error {
	if !task.HasIssue() {
		return Statef("no associated GitHub issue to update")
	}
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}

	req, err := s.buildIssueRequest(ctx, link, task)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	issue, _, err := s.client.GitHub().Issues.Edit(reqCtx, link.Owner, link.Name, task.IssueNumber, req)
	if err != nil {
		return wrapRemote(err)
	}

	s.auditTask(project.ID, task.ID,
		fmt.Sprintf("GitHub issue #%d updated", issue.GetNumber()),
		issue.GetHTMLURL())
	return nil
}

// CloseIssue closes the task's GitHub issue (the provider has no hard
// delete) and clears the local reference only on success.
func (s *Syncer) CloseIssue(ctx context.Context, project *models.Project, task *models.Task) error {
	if !task.HasIssue() {
		return Statef("no associated GitHub issue to close")
	}
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	_, _, err = s.client.GitHub().Issues.Edit(reqCtx, link.Owner, link.Name, task.IssueNumber,
		&github.IssueRequest{State: github.String("closed")})
	if err != nil {
		return wrapRemote(err)
	}

	// Capture before clearing; the audit entry references the URL
	issueURL := task.IssueURL
	task.IssueURL = ""
	task.IssueNumber = 0
	if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"issue_url":    "",
		"issue_number": 0,
	}).Error; err != nil {
		return err
	}

	s.auditTask(project.ID, task.ID, "GitHub issue closed", issueURL)
	return nil
}
