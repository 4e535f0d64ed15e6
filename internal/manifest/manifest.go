// Package manifest reads and rewrites a package.json dependency manifest
// without disturbing the order or content of the members it does not touch.
package manifest

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"path/filepath"

	"pkgbump/internal/errcodes"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"golang.org/x/exp/slices"
)

const (
	FileName        = "package.json"
	dependenciesKey = "dependencies"
)

var (
	ErrInvalidJSON             = errors.New("manifest is not valid JSON")
	ErrRootNotObject           = errors.New("manifest root is not a JSON object")
	ErrDependenciesNotAnObject = errors.New("manifest dependencies member is not a JSON object")
)

type member struct {
	// key is the raw JSON token of the member name, quotes included.
	key   string
	name  string
	value json.RawMessage
}

type Dependency struct {
	Name    string
	Version string
}

// Change describes the effect of an Upsert.
type Change struct {
	Changed  bool
	Inserted bool
	Previous string
}

type Manifest struct {
	members         []member
	deps            []member
	hasDeps         bool
	trailingNewline bool
}

// New returns a manifest with an empty dependency mapping.
func New() *Manifest {
	return &Manifest{
		members:         []member{{key: quote(dependenciesKey), name: dependenciesKey}},
		hasDeps:         true,
		trailingNewline: true,
	}
}

func Parse(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrRootNotObject
	}

	m := &Manifest{trailingNewline: bytes.HasSuffix(data, []byte("\n"))}

	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == dependenciesKey {
			if !value.IsObject() {
				err = ErrDependenciesNotAnObject
				return false
			}
			m.hasDeps = true
			m.deps = nil
			value.ForEach(func(k, v gjson.Result) bool {
				m.deps = set(m.deps, member{key: k.Raw, name: k.String(), value: json.RawMessage(v.Raw)})
				return true
			})
		}

		m.members = set(m.members, member{key: key.Raw, name: name, value: json.RawMessage(value.Raw)})
		return true
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// set replaces the value of an existing member in place, keeping its
// original position, or appends a new one.
func set(members []member, mb member) []member {
	i := indexOf(members, mb.name)
	if i == -1 {
		return append(members, mb)
	}

	members[i].value = mb.value
	return members
}

func indexOf(members []member, name string) int {
	return slices.IndexFunc(members, func(mb member) bool {
		return mb.name == name
	})
}

// Dependency returns the version constraint recorded for name.
func (m *Manifest) Dependency(name string) (string, bool) {
	i := indexOf(m.deps, name)
	if i == -1 {
		return "", false
	}

	return gjson.ParseBytes(m.deps[i].value).String(), true
}

func (m *Manifest) Dependencies() []Dependency {
	deps := make([]Dependency, 0, len(m.deps))
	for _, d := range m.deps {
		deps = append(deps, Dependency{
			Name:    d.name,
			Version: gjson.ParseBytes(d.value).String(),
		})
	}

	return deps
}

// Members returns the top-level member names in document order.
func (m *Manifest) Members() []string {
	names := make([]string, 0, len(m.members))
	for _, mb := range m.members {
		names = append(names, mb.name)
	}

	return names
}

// Upsert sets dependencies[name] = version. Nothing is modified when the
// entry already holds exactly that version.
func (m *Manifest) Upsert(name, version string) Change {
	value := json.RawMessage(quote(version))

	if i := indexOf(m.deps, name); i != -1 {
		current := gjson.ParseBytes(m.deps[i].value)
		if current.Type == gjson.String && current.String() == version {
			return Change{Previous: version}
		}

		m.deps[i].value = value
		return Change{Changed: true, Previous: current.String()}
	}

	m.deps = append(m.deps, member{key: quote(name), name: name, value: value})
	if !m.hasDeps {
		m.hasDeps = true
		m.members = append(m.members, member{key: quote(dependenciesKey), name: dependenciesKey})
	}

	return Change{Changed: true, Inserted: true}
}

// Marshal renders the manifest with two space indentation.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, mb := range m.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(mb.key)
		buf.WriteByte(':')
		if mb.name == dependenciesKey {
			writeObject(&buf, m.deps)
		} else {
			buf.Write(mb.value)
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	err := json.Indent(&out, buf.Bytes(), "", "  ")
	if err != nil {
		return nil, err
	}

	if m.trailingNewline {
		out.WriteByte('\n')
	}

	return out.Bytes(), nil
}

func writeObject(buf *bytes.Buffer, members []member) {
	buf.WriteByte('{')
	for i, mb := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(mb.key)
		buf.WriteByte(':')
		buf.Write(mb.value)
	}
	buf.WriteByte('}')
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string never fails.
	_ = enc.Encode(s)

	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Load reads the manifest of the repository checked out at dir. A missing
// file yields an empty manifest.
func Load(fsys afero.Fs, dir string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, errcodes.ManifestFormat("read", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errcodes.ManifestFormat("parse", errors.Wrap(err, FileName))
	}

	return m, nil
}

func Save(fsys afero.Fs, dir string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return errcodes.ManifestFormat("marshal", err)
	}

	err = afero.WriteFile(fsys, filepath.Join(dir, FileName), data, 0644)
	if err != nil {
		return errcodes.ManifestFormat("write", err)
	}

	return nil
}

// Store loads and saves manifests on a fixed filesystem.
type Store struct {
	Fs afero.Fs
}

func NewStore(fsys afero.Fs) *Store {
	return &Store{Fs: fsys}
}

func (s *Store) Load(dir string) (*Manifest, error) {
	return Load(s.Fs, dir)
}

func (s *Store) Save(dir string, m *Manifest) error {
	return Save(s.Fs, dir, m)
}
