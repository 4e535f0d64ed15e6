// Package update runs a single dependency update from clone to pull request.
package update

import (
	"context"

	"pkgbump/internal/domain"
	"pkgbump/internal/domain/pullrequest"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/manifest"
	"pkgbump/internal/workspace"

	"github.com/rs/zerolog/log"
)

type Workspaces interface {
	Locate(domain.Repository) *workspace.Workspace
	Acquire(context.Context, *workspace.Workspace) error
	Release(*workspace.Workspace)
}

type Manifests interface {
	Load(dir string) (*manifest.Manifest, error)
	Save(dir string, m *manifest.Manifest) error
}

// Submitter commits and pushes. A failure in either step fails the
// submission as a whole.
type Submitter interface {
	Commit(ctx context.Context, dir, branch, message string) error
	Push(ctx context.Context, dir, branch string) error
}

type Publisher interface {
	Create(context.Context, *pullrequest.CreateOptions) (*pullrequest.Entity, error)
}

type Pipeline struct {
	workspaces Workspaces
	manifests  Manifests
	submitter  Submitter
	publisher  Publisher
	listener   Listener
}

func NewPipeline(w Workspaces, m Manifests, s Submitter, p Publisher) *Pipeline {
	return &Pipeline{
		workspaces: w,
		manifests:  m,
		submitter:  s,
		publisher:  p,
	}
}

func (p *Pipeline) SetListener(l Listener) {
	p.listener = l
}

// run carries the state of one pipeline execution.
type run struct {
	p       *Pipeline
	req     *Request
	ws      *workspace.Workspace
	state   State
	outcome *Outcome
}

func (r *run) enter(s State) {
	r.state = s
	log.Debug().
		Str("repository", r.req.Repository.String()).
		Str("state", string(s)).
		Msg("pipeline transition")

	if r.p.listener != nil {
		r.p.listener.Transition(s)
	}
}

func (r *run) fail(k errcodes.Kind, op string, err error) *Outcome {
	r.outcome.Status = StatusFailed
	r.outcome.Err = errcodes.Classify(k, op, err)
	r.outcome.FailedIn = r.state

	return r.outcome
}

// Run executes req. The workspace is released exactly once on every path
// after the request validated, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, req *Request) *Outcome {
	r := &run{p: p, req: req, outcome: &Outcome{}}
	r.enter(StateInit)

	if err := req.Validate(); err != nil {
		r.fail(errcodes.KindValidation, "", err)
		r.outcome.FinalState = StateFailed
		r.enter(StateFailed)
		return r.outcome
	}

	r.ws = p.workspaces.Locate(req.Repository)
	defer r.cleanUp()

	return r.execute(ctx)
}

func (r *run) cleanUp() {
	r.enter(StateCleaningUp)
	r.p.workspaces.Release(r.ws)

	final := StateDone
	if r.outcome.Status == StatusFailed {
		final = StateFailed
	}
	r.outcome.FinalState = final
	r.enter(final)
}

func (r *run) execute(ctx context.Context) *Outcome {
	p, req := r.p, r.req

	if err := p.workspaces.Acquire(ctx, r.ws); err != nil {
		return r.fail(errcodes.KindTransport, "clone", err)
	}
	r.enter(StateCloned)

	m, err := p.manifests.Load(r.ws.Path)
	if err != nil {
		return r.fail(errcodes.KindManifestFormat, "load", err)
	}
	r.enter(StateManifestRead)

	change := m.Upsert(req.Package, req.Version)
	r.outcome.Change = change
	if !change.Changed {
		r.enter(StateNoOp)
		r.outcome.Status = StatusNoOp
		return r.outcome
	}

	if err := p.manifests.Save(r.ws.Path, m); err != nil {
		return r.fail(errcodes.KindManifestFormat, "save", err)
	}
	r.enter(StateManifestUpdated)

	cs := NewChangeSet(req.Package, req.Version, change)
	r.outcome.ChangeSet = &cs

	if err := p.submitter.Commit(ctx, r.ws.Path, cs.Branch, cs.CommitMessage); err != nil {
		return r.fail(errcodes.KindTransport, "commit", err)
	}
	r.enter(StateCommitted)

	if err := p.submitter.Push(ctx, r.ws.Path, cs.Branch); err != nil {
		return r.fail(errcodes.KindTransport, "push", err)
	}
	r.enter(StatePushed)

	pr, err := p.publisher.Create(ctx, &pullrequest.CreateOptions{
		Repository:       req.Repository,
		Title:            cs.Title,
		Description:      cs.Description,
		Source:           cs.Branch,
		Destination:      req.Destination,
		CloseBranch:      req.CloseSourceBranch,
		DefaultReviewers: req.DefaultReviewers,
	})
	if err != nil {
		return r.fail(errcodes.KindPublish, "publish", err)
	}
	r.enter(StatePublished)

	r.outcome.Status = StatusOK
	r.outcome.PullRequest = pr

	return r.outcome
}
