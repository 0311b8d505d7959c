package gh

import (
	"context"
	"fmt"

	"github.com/google/go-github/v63/github"

	"projsync/internal/models"
)

// CreatePullRequest opens a pull request from the task's bound branch
// into the base branch and stores the reference on the task.
func (s *Syncer) CreatePullRequest(ctx context.Context, project *models.Project, task *models.Task, title, body, base string) error {
	if task.BranchName == "" {
		return Statef("task %s has no bound branch", task.ID)
	}
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}
	if base == "" {
		base = link.DefaultBranch
	}
	if title == "" {
		title = task.Title
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	pull, _, err := s.client.GitHub().PullRequests.Create(reqCtx, link.Owner, link.Name, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(task.BranchName),
		Base:  github.String(base),
		Draft: github.Bool(false),
	})
	if err != nil {
		return wrapRemote(err)
	}

	task.PullURL = pull.GetHTMLURL()
	task.PullNumber = pull.GetNumber()
	task.PullMerged = false
	if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"pull_url":    task.PullURL,
		"pull_number": task.PullNumber,
		"pull_merged": false,
	}).Error; err != nil {
		return err
	}

	s.auditTask(project.ID, task.ID,
		fmt.Sprintf("Pull request #%d opened: %s -> %s", task.PullNumber, task.BranchName, base),
		task.PullURL)
	return nil
}

// MergePullRequest merges the task's pull request. The url and number
// are captured before the clearing write so the audit entry can still
// reference them.
func (s *Syncer) MergePullRequest(ctx context.Context, project *models.Project, task *models.Task) error {
	if !task.HasPull() {
		return Statef("task %s has no pull request to merge", task.ID)
	}
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}

	commitTitle := fmt.Sprintf("Merge pull request #%d from %s", task.PullNumber, task.BranchName)

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	result, _, err := s.client.GitHub().PullRequests.Merge(reqCtx, link.Owner, link.Name, task.PullNumber, "",
		&github.PullRequestOptions{
			CommitTitle: commitTitle,
			MergeMethod: "merge",
		})
	if err != nil {
		return wrapRemote(err)
	}
	if !result.GetMerged() {
		return &RemoteRejectionError{StatusCode: 405, Message: result.GetMessage()}
	}

	// Capture before clearing
	pullURL := task.PullURL
	pullNumber := task.PullNumber

	task.PullURL = ""
	task.PullNumber = 0
	task.PullMerged = true
	if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"pull_url":    "",
		"pull_number": 0,
		"pull_merged": true,
	}).Error; err != nil {
		return err
	}

	s.auditTask(project.ID, task.ID,
		fmt.Sprintf("Pull request #%d merged", pullNumber), pullURL)
	return nil
}
