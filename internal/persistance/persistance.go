package persistance

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"pkgbump/internal/pkg/fs"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

const (
	DefaultDir = "~/.config/pkgbump"
	stateFile  = "state"
	// MaxRuns is the number of runs kept in the state file.
	MaxRuns = 50
)

type RunInfo struct {
	Repository  string    `json:"repository"`
	Package     string    `json:"package"`
	Version     string    `json:"version"`
	Previous    string    `json:"previous,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	PullRequest string    `json:"pullRequest,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Time        time.Time `json:"time"`
}

type state struct {
	Runs []*RunInfo `json:"runs,omitempty"`
}

type PersistanceRepo interface {
	AddRun(*RunInfo) error
	GetRuns() ([]*RunInfo, error)
}

type XDGPersistanceRepo struct {
	dir string
	fs  afero.Fs
	s   *state
}

func NewXDGPersistanceRepo(fsys afero.Fs, dir string) *XDGPersistanceRepo {
	return &XDGPersistanceRepo{dir: dir, fs: fsys, s: &state{}}
}

func (repo *XDGPersistanceRepo) path() (string, error) {
	dir, err := homedir.Expand(repo.dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, stateFile), nil
}

func (repo *XDGPersistanceRepo) load() error {
	path, err := repo.path()
	if err != nil {
		return err
	}

	if ok, _ := fs.Exists(repo.fs, path); !ok {
		repo.s = &state{}
		return nil
	}

	data, err := afero.ReadFile(repo.fs, path)
	if err != nil {
		return err
	}

	s := &state{}
	err = json.Unmarshal(data, s)
	if err != nil {
		return fmt.Errorf("cannot load state file: %v", err)
	}
	repo.s = s

	return nil
}

func (repo *XDGPersistanceRepo) save() error {
	path, err := repo.path()
	if err != nil {
		return err
	}

	err = fs.EnsureDir(repo.fs, filepath.Dir(path), 0700)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(repo.s, "", "  ")
	if err != nil {
		return err
	}

	return afero.WriteFile(repo.fs, path, data, 0600)
}

// GetRuns returns the recorded runs, most recent first.
func (repo *XDGPersistanceRepo) GetRuns() ([]*RunInfo, error) {
	err := repo.load()
	if err != nil {
		return nil, err
	}

	runs := slices.Clone(repo.s.Runs)
	slices.SortStableFunc(runs, func(a, b *RunInfo) int {
		return b.Time.Compare(a.Time)
	})

	return runs, nil
}

// AddRun records r, dropping the oldest runs beyond MaxRuns.
func (repo *XDGPersistanceRepo) AddRun(r *RunInfo) error {
	err := repo.load()
	if err != nil {
		return err
	}

	if r.Time.IsZero() {
		r.Time = time.Now()
	}

	repo.s.Runs = append(repo.s.Runs, r)
	slices.SortStableFunc(repo.s.Runs, func(a, b *RunInfo) int {
		return a.Time.Compare(b.Time)
	})
	if n := len(repo.s.Runs); n > MaxRuns {
		repo.s.Runs = slices.Delete(repo.s.Runs, 0, n-MaxRuns)
	}

	return repo.save()
}

var persistanceRepo PersistanceRepo = NewXDGPersistanceRepo(fs.OS(), DefaultDir)

func GetRepo() PersistanceRepo {
	return persistanceRepo
}
