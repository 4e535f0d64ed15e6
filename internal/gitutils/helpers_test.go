package gitutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var testIdentity = Identity{Name: "Test Bot", Email: "bot@example.com"}

// newRemote creates a bare repository holding one commit with the given
// files on its default branch and returns its path.
func newRemote(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	bare := filepath.Join(base, "remote.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	seedDir := filepath.Join(base, "seed")
	seed, err := git.PlainInit(seedDir, false)
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(seedDir, name), []byte(content), 0644))
	}

	w, err := seed.Worktree()
	require.NoError(t, err)
	require.NoError(t, w.AddWithOptions(&git.AddOptions{All: true}))
	_, err = w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "seed", Email: "seed@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = seed.CreateRemote(&config.RemoteConfig{Name: RemoteName, URLs: []string{bare}})
	require.NoError(t, err)

	head, err := seed.Head()
	require.NoError(t, err)
	require.NoError(t, seed.Push(&git.PushOptions{
		RemoteName: RemoteName,
		RefSpecs:   []config.RefSpec{branchRefSpec(head.Name().Short())},
	}))

	return bare
}

func newEmptyRemote(t *testing.T) string {
	t.Helper()
	bare := filepath.Join(t.TempDir(), "empty.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	return bare
}

func branchCommit(t *testing.T, repoPath, branch string) *object.Commit {
	t.Helper()
	r, err := git.PlainOpen(repoPath)
	require.NoError(t, err)

	ref, err := r.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(t, err)

	c, err := r.CommitObject(ref.Hash())
	require.NoError(t, err)

	return c
}

// currentBranch returns the short name of the branch HEAD points at.
func currentBranch(dir string) (string, error) {
	r, err := openRepo(dir)
	if err != nil {
		return "", err
	}

	head, err := r.Head()
	if err != nil {
		return "", err
	}

	return head.Name().Short(), nil
}
