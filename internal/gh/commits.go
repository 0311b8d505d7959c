package gh

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v63/github"
	"gorm.io/gorm"

	"projsync/internal/models"
)

// CommitSyncResult reports the outcome of one commit mirror pass.
type CommitSyncResult struct {
	BranchesScanned int      `json:"branches_scanned"`
	CommitsAdded    int      `json:"commits_added"`
	LinksAdded      int      `json:"links_added"`
	SkippedBranches []string `json:"skipped_branches,omitempty"`
}

// SyncCommits mirrors commits for every remote branch of the linked
// repository. A commit already present for the project (by hash) only
// gains branch membership. One branch's fetch failure skips that
// branch; the rest of the sync continues.
func (s *Syncer) SyncCommits(ctx context.Context, project *models.Project) (*CommitSyncResult, error) {
	link, err := s.connectedLink(project.ID)
	if err != nil {
		return nil, err
	}

	remoteBranches, err := s.listRemoteBranches(ctx, link)
	if err != nil {
		return nil, err
	}

	result := &CommitSyncResult{}
	for _, remote := range remoteBranches {
		branch, err := s.ensureBranch(link, remote)
		if err != nil {
			return result, err
		}

		reqCtx, cancel := context.WithTimeout(ctx, ListTimeout)
		commits, _, err := s.client.GitHub().Repositories.ListCommits(reqCtx, link.Owner, link.Name,
			&github.CommitsListOptions{
				SHA:         branch.Name,
				ListOptions: github.ListOptions{PerPage: 100},
			})
		cancel()
		if err != nil {
			// Partial-failure tolerance: skip this branch only
			result.SkippedBranches = append(result.SkippedBranches, branch.Name)
			continue
		}

		result.BranchesScanned++
		for _, remoteCommit := range commits {
			added, linked, err := s.mirrorCommit(project.ID, branch, remoteCommit)
			if err != nil {
				return result, err
			}
			if added {
				result.CommitsAdded++
			}
			if linked {
				result.LinksAdded++
			}
		}
	}
	return result, nil
}

// ensureBranch loads or creates the local mirror row for a remote branch
func (s *Syncer) ensureBranch(link *models.RepositoryLink, remote *github.Branch) (*models.Branch, error) {
	var branch models.Branch
	err := s.db.Where("name = ? AND repository_link_id = ?", remote.GetName(), link.ID).
		First(&branch).Error
	if err == nil {
		return &branch, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	branch = models.Branch{
		Name:             remote.GetName(),
		RepositoryLinkID: link.ID,
		Protected:        remote.GetProtected(),
		IsDefault:        remote.GetName() == link.DefaultBranch,
	}
	if err := s.db.Create(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// mirrorCommit upserts one commit by (hash, project) and grows its
// branch membership. Reports (createdNew, addedBranchLink).
func (s *Syncer) mirrorCommit(projectID uint, branch *models.Branch, remote *github.RepositoryCommit) (bool, bool, error) {
	hash := remote.GetSHA()
	if hash == "" {
		return false, false, nil
	}

	var existing models.Commit
	err := s.db.Preload("Branches").
		Where("hash = ? AND project_id = ?", hash, projectID).
		First(&existing).Error
	if err == nil {
		if existing.HasBranch(branch.ID) {
			return false, false, nil
		}
		if err := s.db.Model(&existing).Association("Branches").Append(branch); err != nil {
			return false, false, fmt.Errorf("failed to link commit %s to branch %s: %w", hash, branch.Name, err)
		}
		return false, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, err
	}

	detail := remote.GetCommit()
	commit := models.Commit{
		Hash:           hash,
		ProjectID:      projectID,
		Message:        detail.GetMessage(),
		AuthorName:     detail.GetAuthor().GetName(),
		AuthorEmail:    detail.GetAuthor().GetEmail(),
		CommitterName:  detail.GetCommitter().GetName(),
		CommitterEmail: detail.GetCommitter().GetEmail(),
		URL:            remote.GetHTMLURL(),
		CommittedAt:    detail.GetAuthor().GetDate().Time,
		Branches:       []models.Branch{*branch},
	}
	if err := s.db.Create(&commit).Error; err != nil {
		return false, false, err
	}
	return true, false, nil
}
