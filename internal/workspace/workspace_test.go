package workspace

import (
	"context"
	"testing"
	"time"

	"pkgbump/internal/domain"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/pkg/fs"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repo = domain.Repository{Workspace: "acme", Name: "web"}

func newTestManager(t Transport) (*Manager, *fs.MockFS) {
	m := NewManager("/scratch", "", t, nil, 0)
	mfs := fs.NewMockFS()
	m.fs = mfs

	return m, mfs
}

func stubClone(t *testing.T, fn func(ctx context.Context, url, dir string, auth transport.AuthMethod) error) {
	t.Helper()
	old := cloneRepo
	cloneRepo = fn
	t.Cleanup(func() { cloneRepo = old })
}

func TestManager_Locate(t *testing.T) {
	t.Run("uses the ssh remote by default", func(t *testing.T) {
		m, _ := newTestManager(TransportSSH)

		ws := m.Locate(repo)
		assert.Equal(t, "/scratch/acme/web", ws.Path)
		assert.Equal(t, "git@bitbucket.org:acme/web.git", ws.URL)
		assert.Equal(t, repo, ws.Repository)
	})

	t.Run("uses the https remote", func(t *testing.T) {
		m, _ := newTestManager(TransportHTTPS)
		m.Host = "git.example.com"

		assert.Equal(t, "https://git.example.com/acme/web.git", m.Locate(repo).URL)
	})

	t.Run("gives distinct repositories distinct paths", func(t *testing.T) {
		m, _ := newTestManager(TransportSSH)

		a := m.Locate(domain.Repository{Workspace: "a-b", Name: "c"})
		b := m.Locate(domain.Repository{Workspace: "a", Name: "b-c"})
		assert.NotEqual(t, a.Path, b.Path)
	})

	t.Run("is stable for the same repository", func(t *testing.T) {
		m, _ := newTestManager(TransportSSH)
		assert.Equal(t, m.Locate(repo), m.Locate(repo))
	})
}

func TestManager_Acquire(t *testing.T) {
	t.Run("removes a stale checkout before cloning", func(t *testing.T) {
		m, mfs := newTestManager(TransportSSH)
		require.NoError(t, afero.WriteFile(mfs, "/scratch/acme/web/leftover", []byte("x"), 0644))

		var stalePresent bool
		stubClone(t, func(ctx context.Context, url, dir string, auth transport.AuthMethod) error {
			stalePresent, _ = afero.Exists(mfs, "/scratch/acme/web/leftover")
			return nil
		})

		require.NoError(t, m.Acquire(context.Background(), m.Locate(repo)))
		assert.False(t, stalePresent)
		assert.Equal(t, []string{"/scratch/acme/web"}, mfs.RemoveAllCalls)
	})

	t.Run("passes the url and a deadline to the clone", func(t *testing.T) {
		m, _ := newTestManager(TransportSSH)
		m.Timeout = time.Minute

		var gotURL, gotDir string
		var hasDeadline bool
		stubClone(t, func(ctx context.Context, url, dir string, auth transport.AuthMethod) error {
			gotURL, gotDir = url, dir
			_, hasDeadline = ctx.Deadline()
			return nil
		})

		require.NoError(t, m.Acquire(context.Background(), m.Locate(repo)))
		assert.Equal(t, "git@bitbucket.org:acme/web.git", gotURL)
		assert.Equal(t, "/scratch/acme/web", gotDir)
		assert.True(t, hasDeadline)
	})

	t.Run("reports clone failures as transport errors", func(t *testing.T) {
		m, _ := newTestManager(TransportSSH)
		vErr := errors.New("permission denied (publickey)")
		stubClone(t, func(context.Context, string, string, transport.AuthMethod) error { return vErr })

		err := m.Acquire(context.Background(), m.Locate(repo))
		assert.Equal(t, errcodes.KindTransport, errcodes.KindOf(err))
		assert.ErrorIs(t, err, vErr)
	})

	t.Run("reports a stale checkout that cannot be removed", func(t *testing.T) {
		m, mfs := newTestManager(TransportSSH)
		require.NoError(t, mfs.MkdirAll("/scratch/acme/web", 0755))
		mfs.RemoveAllErr = errors.New("busy")
		stubClone(t, func(context.Context, string, string, transport.AuthMethod) error {
			t.Fatal("clone must not run")
			return nil
		})

		err := m.Acquire(context.Background(), m.Locate(repo))
		assert.Equal(t, errcodes.KindTransport, errcodes.KindOf(err))
	})
}

func TestManager_Release(t *testing.T) {
	t.Run("removes the workspace", func(t *testing.T) {
		m, mfs := newTestManager(TransportSSH)
		require.NoError(t, afero.WriteFile(mfs, "/scratch/acme/web/package.json", []byte("{}"), 0644))

		m.Release(m.Locate(repo))

		ok, _ := afero.Exists(mfs, "/scratch/acme/web")
		assert.False(t, ok)
	})

	t.Run("swallows removal errors", func(t *testing.T) {
		m, mfs := newTestManager(TransportSSH)
		mfs.RemoveAllErr = errors.New("busy")

		assert.NotPanics(t, func() { m.Release(m.Locate(repo)) })
		assert.Len(t, mfs.RemoveAllCalls, 1)
	})
}

func TestParseTransport(t *testing.T) {
	tr, err := ParseTransport("")
	assert.NoError(t, err)
	assert.Equal(t, TransportSSH, tr)

	tr, err = ParseTransport("https")
	assert.NoError(t, err)
	assert.Equal(t, TransportHTTPS, tr)

	_, err = ParseTransport("ftp")
	assert.ErrorIs(t, err, ErrUnknownTransport)
}
