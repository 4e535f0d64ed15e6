package gitutils

import (
	"context"
	"time"

	"pkgbump/internal/errcodes"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Submitter commits the working tree of a cloned repository onto a new
// branch and pushes that branch to origin.
type Submitter struct {
	Identity Identity
	Auth     transport.AuthMethod
	// Timeout bounds each push. Zero means no limit.
	Timeout time.Duration

	now func() time.Time
}

func NewSubmitter(id Identity, auth transport.AuthMethod, timeout time.Duration) *Submitter {
	return &Submitter{Identity: id, Auth: auth, Timeout: timeout, now: time.Now}
}

// Commit creates branch from HEAD, stages every change in dir and commits
// it with the submitter's identity.
func (s *Submitter) Commit(ctx context.Context, dir, branch, message string) error {
	if err := ctx.Err(); err != nil {
		return errcodes.Transport("commit", err)
	}
	if !s.Identity.Complete() {
		return errcodes.Transport("commit", ErrMissingIdentity)
	}

	r, err := openRepo(dir)
	if err != nil {
		return errcodes.Transport("open", err)
	}

	w, err := r.Worktree()
	if err != nil {
		return errcodes.Transport("worktree", err)
	}

	if err := checkoutNewBranch(r, w, branch); err != nil {
		return errcodes.Transport("checkout", errors.Wrap(err, branch))
	}

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return errcodes.Transport("add", err)
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.Identity.Name,
			Email: s.Identity.Email,
			When:  now(),
		},
	})
	if err != nil {
		return errcodes.Transport("commit", err)
	}

	log.Debug().Str("branch", branch).Str("commit", hash.String()).Msg("committed")

	return nil
}

func checkoutNewBranch(r *git.Repository, w *git.Worktree, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)

	_, err := r.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Unborn HEAD: the first commit creates the branch.
		return r.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, ref))
	}
	if err != nil {
		return err
	}

	return w.Checkout(&git.CheckoutOptions{
		Branch: ref,
		Create: true,
		Keep:   true,
	})
}

// Push publishes refs/heads/<branch> to origin.
func (s *Submitter) Push(ctx context.Context, dir, branch string) error {
	r, err := openRepo(dir)
	if err != nil {
		return errcodes.Transport("open", err)
	}

	if _, err := r.Reference(plumbing.NewBranchReferenceName(branch), true); err != nil {
		return errcodes.Transport("push", errors.Wrap(err, branch))
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	err = r.PushContext(ctx, &git.PushOptions{
		RemoteName: RemoteName,
		RefSpecs:   []config.RefSpec{branchRefSpec(branch)},
		Auth:       s.Auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		err = nil
	}
	if err != nil {
		return errcodes.Transport("push", errors.Wrap(err, branch))
	}

	log.Debug().Str("branch", branch).Msg("pushed")

	return nil
}
