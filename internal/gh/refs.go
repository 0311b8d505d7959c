package gh

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v63/github"
	"gorm.io/gorm"

	"projsync/internal/models"
)

// CreateBranch creates a remote branch from the current head of the
// base branch, mirrors it locally and binds it to the task. An empty
// base defaults to the repository's default branch.
func (s *Syncer) CreateBranch(ctx context.Context, project *models.Project, task *models.Task, name, base string) error {
	if name == "" {
		return Configurationf("branch name is not set")
	}
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}
	if base == "" {
		base = link.DefaultBranch
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	ref, _, err := s.client.GitHub().Git.GetRef(reqCtx, link.Owner, link.Name, "heads/"+base)
	cancel()
	if err != nil {
		return wrapRemote(err)
	}

	reqCtx, cancel = context.WithTimeout(ctx, WriteTimeout)
	_, _, err = s.client.GitHub().Git.CreateRef(reqCtx, link.Owner, link.Name, &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: ref.GetObject().SHA},
	})
	cancel()
	if err != nil {
		return wrapRemote(err)
	}

	// Mirror locally; the branch may already exist from a prior sync
	var branch models.Branch
	err = s.db.Where("name = ? AND repository_link_id = ?", name, link.ID).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		branch = models.Branch{Name: name, RepositoryLinkID: link.ID}
		if err := s.db.Create(&branch).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	task.BranchName = name
	if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Update("branch_name", name).Error; err != nil {
		return err
	}

	s.auditTask(project.ID, task.ID,
		fmt.Sprintf("Branch %q created from %q", name, base), "")
	return nil
}

// DeleteBranch deletes a remote branch. A 404 means the branch is
// already gone and counts as success. The task's binding is cleared
// only when it matches the deleted name.
func (s *Syncer) DeleteBranch(ctx context.Context, project *models.Project, task *models.Task, name string) error {
	if name == "" {
		return Configurationf("branch name is not set")
	}
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, WriteTimeout)
	_, err = s.client.GitHub().Git.DeleteRef(reqCtx, link.Owner, link.Name, "heads/"+name)
	cancel()
	if err != nil {
		wrapped := wrapRemote(err)
		if !IsNotFound(wrapped) {
			return wrapped
		}
	}

	if err := s.db.Where("name = ? AND repository_link_id = ?", name, link.ID).
		Delete(&models.Branch{}).Error; err != nil {
		return err
	}

	if task != nil && task.BranchName == name {
		task.BranchName = ""
		if err := s.db.Model(&models.Task{}).Where("id = ?", task.ID).
			Update("branch_name", "").Error; err != nil {
			return err
		}
	}

	s.audit(project.ID, fmt.Sprintf("Branch %q deleted", name), "")
	return nil
}
