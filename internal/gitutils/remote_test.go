package gitutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemote(t *testing.T) {
	tests := []struct {
		uri  string
		want *Remote
	}{
		{"git@bitbucket.org:acme/web.git", &Remote{Host: "bitbucket.org", Workspace: "acme", Name: "web"}},
		{"git@bitbucket.org:acme/web", &Remote{Host: "bitbucket.org", Workspace: "acme", Name: "web"}},
		{"ssh://git@bitbucket.org:22/acme/web.git", &Remote{Host: "bitbucket.org", Workspace: "acme", Name: "web"}},
		{"https://jane@bitbucket.org/acme/web.git", &Remote{Host: "bitbucket.org", Workspace: "acme", Name: "web"}},
		{"https://bitbucket.org/acme/web", &Remote{Host: "bitbucket.org", Workspace: "acme", Name: "web"}},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			r, err := ParseRemote(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}

	t.Run("fails on empty string", func(t *testing.T) {
		_, err := ParseRemote("")
		assert.ErrorIs(t, err, ErrUnableToParseRemoteRepositoryURI)
	})

	t.Run("fails on a local path", func(t *testing.T) {
		_, err := ParseRemote("/tmp/repo")
		assert.ErrorIs(t, err, ErrUnableToParseRemoteRepositoryURI)
	})
}

func TestOriginRemote(t *testing.T) {
	t.Run("prefers origin over other remotes", func(t *testing.T) {
		dir := t.TempDir()
		r, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		_, err = r.CreateRemote(&config.RemoteConfig{Name: "fork", URLs: []string{"git@bitbucket.org:jane/web.git"}})
		require.NoError(t, err)
		_, err = r.CreateRemote(&config.RemoteConfig{Name: RemoteName, URLs: []string{"git@bitbucket.org:acme/web.git"}})
		require.NoError(t, err)

		remote, err := OriginRemote(dir)
		require.NoError(t, err)
		assert.Equal(t, "acme", remote.Workspace)
		assert.Equal(t, "web", remote.Name)
	})

	t.Run("detects the repository from a subdirectory", func(t *testing.T) {
		dir := t.TempDir()
		r, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		_, err = r.CreateRemote(&config.RemoteConfig{Name: RemoteName, URLs: []string{"https://bitbucket.org/acme/api.git"}})
		require.NoError(t, err)

		sub := filepath.Join(dir, "src", "lib")
		require.NoError(t, os.MkdirAll(sub, 0755))

		remote, err := OriginRemote(sub)
		require.NoError(t, err)
		assert.Equal(t, "api", remote.Name)
	})

	t.Run("fails without remotes", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)

		_, err = OriginRemote(dir)
		assert.ErrorIs(t, err, ErrNoRemotes)
	})

	t.Run("fails outside a repository", func(t *testing.T) {
		_, err := OriginRemote(t.TempDir())
		assert.Error(t, err)
	})
}
