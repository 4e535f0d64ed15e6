package update

import (
	"context"
	"path/filepath"

	"pkgbump/internal/domain"
	"pkgbump/internal/domain/pullrequest"
	"pkgbump/internal/manifest"
	"pkgbump/internal/workspace"

	"github.com/spf13/afero"
)

// SpyWorkspaces fakes clones on an in-memory filesystem.
type SpyWorkspaces struct {
	Fs afero.Fs
	// Manifest is written to the clone when not empty.
	Manifest   string
	AcquireErr error

	AcquireCalls int
	ReleaseCalls int
}

func NewSpyWorkspaces(manifestContent string) *SpyWorkspaces {
	return &SpyWorkspaces{Fs: afero.NewMemMapFs(), Manifest: manifestContent}
}

func (s *SpyWorkspaces) Locate(repo domain.Repository) *workspace.Workspace {
	return &workspace.Workspace{
		Repository: repo,
		Path:       filepath.Join("/scratch", repo.Workspace, repo.Name),
		URL:        "git@bitbucket.org:" + repo.String() + ".git",
	}
}

func (s *SpyWorkspaces) Acquire(_ context.Context, ws *workspace.Workspace) error {
	s.AcquireCalls++
	if err := s.Fs.MkdirAll(ws.Path, 0755); err != nil {
		return err
	}
	if s.AcquireErr != nil {
		return s.AcquireErr
	}
	if s.Manifest == "" {
		return nil
	}

	return afero.WriteFile(s.Fs, filepath.Join(ws.Path, manifest.FileName), []byte(s.Manifest), 0644)
}

func (s *SpyWorkspaces) Release(ws *workspace.Workspace) {
	s.ReleaseCalls++
	_ = s.Fs.RemoveAll(ws.Path)
}

func (s *SpyWorkspaces) Exists(ws string) bool {
	ok, _ := afero.Exists(s.Fs, ws)
	return ok
}

// SpySubmitter records the manifest content at commit time.
type SpySubmitter struct {
	Fs        afero.Fs
	CommitErr error
	PushErr   error

	Committed []string
	Pushed    []string
	Snapshot  string
}

func (s *SpySubmitter) Commit(_ context.Context, dir, branch, _ string) error {
	if s.CommitErr != nil {
		return s.CommitErr
	}
	s.Committed = append(s.Committed, branch)
	data, _ := afero.ReadFile(s.Fs, filepath.Join(dir, manifest.FileName))
	s.Snapshot = string(data)

	return nil
}

func (s *SpySubmitter) Push(_ context.Context, _, branch string) error {
	if s.PushErr != nil {
		return s.PushErr
	}
	s.Pushed = append(s.Pushed, branch)

	return nil
}

type SpyPublisher struct {
	Err error

	Calls []*pullrequest.CreateOptions
}

func (s *SpyPublisher) Create(_ context.Context, o *pullrequest.CreateOptions) (*pullrequest.Entity, error) {
	s.Calls = append(s.Calls, o)
	if s.Err != nil {
		return nil, s.Err
	}

	return &pullrequest.Entity{
		ID:     "7",
		Title:  o.Title,
		Source: o.Source,
		URL:    "https://bitbucket.org/" + o.Repository.String() + "/pull-requests/7",
	}, nil
}
