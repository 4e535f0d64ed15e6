package persistance

import (
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() (*XDGPersistanceRepo, afero.Fs) {
	fsys := afero.NewMemMapFs()
	return NewXDGPersistanceRepo(fsys, "/home/jane/.config/pkgbump"), fsys
}

func TestXDGPersistanceRepo_GetRuns(t *testing.T) {
	t.Run("returns nothing without a state file", func(t *testing.T) {
		repo, _ := newTestRepo()

		runs, err := repo.GetRuns()
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("fails on a corrupt state file", func(t *testing.T) {
		repo, fsys := newTestRepo()
		require.NoError(t, afero.WriteFile(fsys, "/home/jane/.config/pkgbump/state", []byte("{"), 0600))

		_, err := repo.GetRuns()
		assert.Error(t, err)
	})
}

func TestXDGPersistanceRepo_AddRun(t *testing.T) {
	t.Run("persists runs most recent first", func(t *testing.T) {
		repo, fsys := newTestRepo()
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, repo.AddRun(&RunInfo{Repository: "acme/web", Package: "a", Status: "ok", Time: base}))
		require.NoError(t, repo.AddRun(&RunInfo{Repository: "acme/web", Package: "b", Status: "no-op", Time: base.Add(time.Hour)}))

		reloaded := NewXDGPersistanceRepo(fsys, "/home/jane/.config/pkgbump")
		runs, err := reloaded.GetRuns()
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "b", runs[0].Package)
		assert.Equal(t, "a", runs[1].Package)
	})

	t.Run("stamps runs without a time", func(t *testing.T) {
		repo, _ := newTestRepo()
		r := &RunInfo{Package: "a"}

		require.NoError(t, repo.AddRun(r))
		assert.False(t, r.Time.IsZero())
	})

	t.Run("keeps only the latest runs", func(t *testing.T) {
		repo, _ := newTestRepo()
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < MaxRuns+5; i++ {
			require.NoError(t, repo.AddRun(&RunInfo{Package: fmt.Sprint(i), Time: base.Add(time.Duration(i) * time.Minute)}))
		}

		runs, err := repo.GetRuns()
		require.NoError(t, err)
		assert.Len(t, runs, MaxRuns)
		assert.Equal(t, fmt.Sprint(MaxRuns+4), runs[0].Package)
		assert.Equal(t, "5", runs[len(runs)-1].Package)
	})
}
