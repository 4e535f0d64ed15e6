// Package workspace owns the scratch checkout a single update run works in.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"pkgbump/internal/domain"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/gitutils"
	"pkgbump/internal/pkg/fs"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Transport string

const (
	TransportSSH   Transport = "ssh"
	TransportHTTPS Transport = "https"

	DefaultHost    = "bitbucket.org"
	DefaultTimeout = 2 * time.Minute
)

var ErrUnknownTransport = errors.New("unknown git transport")

func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case "", TransportSSH:
		return TransportSSH, nil
	case TransportHTTPS:
		return TransportHTTPS, nil
	}

	return "", errors.Wrap(ErrUnknownTransport, s)
}

type Workspace struct {
	Repository domain.Repository
	Path       string
	URL        string
}

var cloneRepo = gitutils.Clone

type Manager struct {
	Root      string
	Host      string
	Transport Transport
	Auth      transport.AuthMethod
	Timeout   time.Duration

	fs afero.Fs
}

func NewManager(root, host string, t Transport, auth transport.AuthMethod, timeout time.Duration) *Manager {
	if host == "" {
		host = DefaultHost
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Manager{
		Root:      root,
		Host:      host,
		Transport: t,
		Auth:      auth,
		Timeout:   timeout,
		fs:        fs.OS(),
	}
}

// Locate returns the workspace for repo without touching the filesystem.
// The path is fixed for a given root and repository.
func (m *Manager) Locate(repo domain.Repository) *Workspace {
	return &Workspace{
		Repository: repo,
		Path:       filepath.Join(m.Root, repo.Workspace, repo.Name),
		URL:        m.remoteURL(repo),
	}
}

func (m *Manager) remoteURL(repo domain.Repository) string {
	if m.Transport == TransportHTTPS {
		return fmt.Sprintf("https://%s/%s/%s.git", m.Host, repo.Workspace, repo.Name)
	}

	return fmt.Sprintf("git@%s:%s/%s.git", m.Host, repo.Workspace, repo.Name)
}

// Acquire clears any stale checkout at the workspace path and clones the
// repository into it.
func (m *Manager) Acquire(ctx context.Context, ws *Workspace) error {
	ok, err := fs.Exists(m.fs, ws.Path)
	if err != nil {
		return errcodes.Transport("clean", err)
	}
	if ok {
		log.Debug().Str("path", ws.Path).Msg("removing stale workspace")
		if err := m.fs.RemoveAll(ws.Path); err != nil {
			return errcodes.Transport("clean", err)
		}
	}

	if err := fs.EnsureDir(m.fs, filepath.Dir(ws.Path), 0755); err != nil {
		return errcodes.Transport("clean", err)
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	log.Debug().Str("url", ws.URL).Str("path", ws.Path).Msg("cloning")
	if err := cloneRepo(ctx, ws.URL, ws.Path, m.Auth); err != nil {
		return errcodes.Classify(errcodes.KindTransport, "clone", err)
	}

	return nil
}

// Release removes the workspace. Failures are logged, never returned.
func (m *Manager) Release(ws *Workspace) {
	if err := m.fs.RemoveAll(ws.Path); err != nil {
		log.Warn().Err(err).Str("path", ws.Path).Msg("cannot remove workspace")
		return
	}

	log.Debug().Str("path", ws.Path).Msg("workspace released")
}
