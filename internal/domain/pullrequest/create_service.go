package pullrequest

import (
	"context"
	"time"

	"pkgbump/internal/errcodes"

	"github.com/rs/zerolog/log"
)

// CreateService opens pull requests, resolving the destination branch when
// the caller did not name one. Every remote call gets its own timeout.
type CreateService struct {
	repo    Repository
	timeout time.Duration
}

func NewCreateService(r Repository, timeout time.Duration) *CreateService {
	return &CreateService{repo: r, timeout: timeout}
}

func (cs *CreateService) DefaultBranch(ctx context.Context, o *CreateOptions) (string, error) {
	ctx, cancel := cs.withTimeout(ctx)
	defer cancel()

	b, err := cs.repo.DefaultBranch(ctx, o.Repository)
	if err != nil {
		return "", errcodes.Classify(errcodes.KindPublish, "default branch", err)
	}

	log.Debug().Str("repository", o.Repository.String()).Str("branch", b).Msg("resolved destination branch")

	return b, nil
}

func (cs *CreateService) Create(ctx context.Context, o *CreateOptions) (*Entity, error) {
	if o.Destination == "" {
		b, err := cs.DefaultBranch(ctx, o)
		if err != nil {
			return nil, err
		}
		resolved := *o
		resolved.Destination = b
		o = &resolved
	}

	if err := o.Validate(); err != nil {
		return nil, errcodes.Publish("create", err)
	}

	ctx, cancel := cs.withTimeout(ctx)
	defer cancel()

	pr, err := cs.repo.Create(ctx, o)
	if err != nil {
		return nil, errcodes.Classify(errcodes.KindPublish, "create", err)
	}

	return pr, nil
}

func (cs *CreateService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cs.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, cs.timeout)
}
