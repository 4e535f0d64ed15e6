package pullrequest

import (
	"context"

	"pkgbump/internal/domain"

	"github.com/pkg/errors"
)

var (
	ErrMissingSourceBranch      = errors.New("missing source branch")
	ErrMissingDestinationBranch = errors.New("missing destination branch")
	ErrMissingTitle             = errors.New("missing title")
)

type Repository interface {
	Creator
	BranchResolver
}

type Creator interface {
	Create(ctx context.Context, o *CreateOptions) (*Entity, error)
}

// BranchResolver looks up the main branch of a repository.
type BranchResolver interface {
	DefaultBranch(ctx context.Context, repo domain.Repository) (string, error)
}

type CreateOptions struct {
	Repository  domain.Repository
	Title       string
	Description string
	Source      string
	Destination string
	CloseBranch bool
	// DefaultReviewers adds the repository's default reviewers, except the
	// author, to the pull request.
	DefaultReviewers bool
}

func (o *CreateOptions) Validate() error {
	if o.Source == "" {
		return ErrMissingSourceBranch
	}
	if o.Destination == "" {
		return ErrMissingDestinationBranch
	}
	if o.Title == "" {
		return ErrMissingTitle
	}

	return nil
}
