package fs

import (
	"os"

	"github.com/spf13/afero"
)

// MockFS wraps an afero.Fs and fails the operations that have an error set.
type MockFS struct {
	afero.Fs

	RemoveAllErr error
	WriteErr     error

	RemoveAllCalls []string
}

func NewMockFS() *MockFS {
	return &MockFS{Fs: afero.NewMemMapFs()}
}

func (m *MockFS) RemoveAll(path string) error {
	m.RemoveAllCalls = append(m.RemoveAllCalls, path)
	if m.RemoveAllErr != nil {
		return m.RemoveAllErr
	}

	return m.Fs.RemoveAll(path)
}

func (m *MockFS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if m.WriteErr != nil && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, m.WriteErr
	}

	return m.Fs.OpenFile(name, flag, perm)
}
