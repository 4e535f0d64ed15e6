package manifest

import (
	"testing"

	"pkgbump/internal/errcodes"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoDir = "/work/repo"

func writeManifest(t *testing.T, fsys afero.Fs, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, repoDir+"/"+FileName, []byte(content), 0644))
}

func readManifest(t *testing.T, fsys afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, repoDir+"/"+FileName)
	require.NoError(t, err)
	return string(data)
}

func TestLoad(t *testing.T) {
	t.Run("returns an empty manifest when the file is missing", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, fsys.MkdirAll(repoDir, 0755))

		m, err := Load(fsys, repoDir)
		require.NoError(t, err)
		assert.Empty(t, m.Dependencies())
		assert.Equal(t, []string{"dependencies"}, m.Members())
	})

	t.Run("fails with a manifest format error on invalid json", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeManifest(t, fsys, `{"dependencies": {`)

		_, err := Load(fsys, repoDir)
		require.Error(t, err)
		assert.Equal(t, errcodes.KindManifestFormat, errcodes.KindOf(err))
	})

	t.Run("fails when the root is not an object", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeManifest(t, fsys, `["left-pad"]`)

		_, err := Load(fsys, repoDir)
		assert.Equal(t, errcodes.KindManifestFormat, errcodes.KindOf(err))
		assert.ErrorIs(t, err, ErrRootNotObject)
	})

	t.Run("fails when dependencies is not an object", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeManifest(t, fsys, `{"dependencies": ["left-pad"]}`)

		_, err := Load(fsys, repoDir)
		assert.ErrorIs(t, err, ErrDependenciesNotAnObject)
	})

	t.Run("keeps dependency order", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeManifest(t, fsys, `{"name":"app","dependencies":{"zod":"3.0.0","axios":"1.0.0","left-pad":"1.1.0"}}`)

		m, err := Load(fsys, repoDir)
		require.NoError(t, err)
		assert.Equal(t, []Dependency{
			{Name: "zod", Version: "3.0.0"},
			{Name: "axios", Version: "1.0.0"},
			{Name: "left-pad", Version: "1.1.0"},
		}, m.Dependencies())
		assert.Equal(t, []string{"name", "dependencies"}, m.Members())
	})
}

func TestManifest_Upsert(t *testing.T) {
	t.Run("reports no change when the version is already current", func(t *testing.T) {
		m, err := Parse([]byte(`{"dependencies": {"left-pad": "1.1.0"}}`))
		require.NoError(t, err)

		c := m.Upsert("left-pad", "1.1.0")
		assert.False(t, c.Changed)
		assert.Equal(t, "1.1.0", c.Previous)
	})

	t.Run("updates a different version in place", func(t *testing.T) {
		m, err := Parse([]byte(`{"dependencies": {"a": "1", "left-pad": "1.1.0", "z": "2"}}`))
		require.NoError(t, err)

		c := m.Upsert("left-pad", "1.2.0")
		assert.Equal(t, Change{Changed: true, Previous: "1.1.0"}, c)
		assert.Equal(t, []Dependency{
			{Name: "a", Version: "1"},
			{Name: "left-pad", Version: "1.2.0"},
			{Name: "z", Version: "2"},
		}, m.Dependencies())
	})

	t.Run("appends a new dependency", func(t *testing.T) {
		m, err := Parse([]byte(`{"dependencies": {"a": "1"}}`))
		require.NoError(t, err)

		c := m.Upsert("left-pad", "1.2.0")
		assert.True(t, c.Changed)
		assert.True(t, c.Inserted)
		v, ok := m.Dependency("left-pad")
		assert.True(t, ok)
		assert.Equal(t, "1.2.0", v)
		assert.Equal(t, "left-pad", m.Dependencies()[1].Name)
	})

	t.Run("treats a non string entry as a different version", func(t *testing.T) {
		m, err := Parse([]byte(`{"dependencies": {"left-pad": 1}}`))
		require.NoError(t, err)

		assert.True(t, m.Upsert("left-pad", "1").Changed)
	})

	t.Run("adds a dependencies member when the manifest has none", func(t *testing.T) {
		m, err := Parse([]byte(`{"name": "app", "version": "0.1.0"}`))
		require.NoError(t, err)

		m.Upsert("left-pad", "1.2.0")
		assert.Equal(t, []string{"name", "version", "dependencies"}, m.Members())
	})
}

func TestSave(t *testing.T) {
	t.Run("writes a synthesized manifest", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, fsys.MkdirAll(repoDir, 0755))

		m, err := Load(fsys, repoDir)
		require.NoError(t, err)
		m.Upsert("left-pad", "1.2.0")
		require.NoError(t, Save(fsys, repoDir, m))

		assert.Equal(t, "{\n  \"dependencies\": {\n    \"left-pad\": \"1.2.0\"\n  }\n}\n", readManifest(t, fsys))
	})

	t.Run("preserves untouched members and their order", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeManifest(t, fsys, `{
    "name": "app",
    "scripts": {"test": "jest", "build": "tsc"},
    "dependencies": {"zod": "3.0.0", "left-pad": "1.1.0"},
    "files": [],
    "private": true
}`)

		m, err := Load(fsys, repoDir)
		require.NoError(t, err)
		m.Upsert("left-pad", "1.2.0")
		m.Upsert("axios", "^1.6.0")
		require.NoError(t, Save(fsys, repoDir, m))

		expected := `{
  "name": "app",
  "scripts": {
    "test": "jest",
    "build": "tsc"
  },
  "dependencies": {
    "zod": "3.0.0",
    "left-pad": "1.2.0",
    "axios": "^1.6.0"
  },
  "files": [],
  "private": true
}`
		assert.Equal(t, expected, readManifest(t, fsys))
	})

	t.Run("does not escape html characters in versions", func(t *testing.T) {
		m := New()
		m.Upsert("left-pad", ">=1.0.0 <2.0.0")

		data, err := m.Marshal()
		require.NoError(t, err)
		assert.Contains(t, string(data), `"left-pad": ">=1.0.0 <2.0.0"`)
	})
}

func TestManifest_RoundTrip(t *testing.T) {
	sources := []string{
		`{}`,
		`{"dependencies": {}}`,
		`{"name": "app", "dependencies": {"b": "2.0.0", "a": "1.0.0"}, "devDependencies": {"jest": "29"}}`,
		`{"name": "unicode é", "nested": {"deep": [1, 2, {"x": null}]}, "dependencies": {"@scope/pkg": "~1.0.0"}}`,
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			m, err := Parse([]byte(src))
			require.NoError(t, err)
			m.Upsert("left-pad", "1.2.0")

			data, err := m.Marshal()
			require.NoError(t, err)

			parsed, err := Parse(data)
			require.NoError(t, err)
			assert.Equal(t, m.Members(), parsed.Members())
			assert.Equal(t, m.Dependencies(), parsed.Dependencies())

			again, err := parsed.Marshal()
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}
