package fs

import (
	"os"

	"github.com/spf13/afero"
)

func OS() afero.Fs { return afero.NewOsFs() }

func Exists(fsys afero.Fs, path string) (bool, error) {
	return afero.Exists(fsys, path)
}

// EnsureDir creates path and any missing parents.
func EnsureDir(fsys afero.Fs, path string, perm os.FileMode) error {
	ok, err := afero.DirExists(fsys, path)
	if err != nil || ok {
		return err
	}

	return fsys.MkdirAll(path, perm)
}
