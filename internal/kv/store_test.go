package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openers builds a fresh instance of every backend for the shared contract tests.
func openers(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file": func() Store {
			s, err := OpenFile(filepath.Join(t.TempDir(), "storage.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "local.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_Contract(t *testing.T) {
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("k", "v1"))
			require.NoError(t, s.Set("k", "v2"))
			v, ok, err := s.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)

			require.NoError(t, s.Remove("k"))
			require.NoError(t, s.Remove("k"))
			_, ok, err = s.Get("k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	_, ok, err := s.Get("phones")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("phones", `[{"id":"1"}]`))

	again, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := again.Get("phones")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("not-json"), 0o644))

	_, err := OpenFile(path)
	assert.ErrorContains(t, err, "decode")
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("current_user", `{"username":"omar"}`))
	require.NoError(t, s.Close())

	again, err := OpenSQLite(path)
	require.NoError(t, err)
	defer again.Close()
	v, ok, err := again.Get("current_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"username":"omar"}`, v)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		want    any
		wantErr bool
	}{
		{backend: "", path: filepath.Join(dir, "a.json"), want: &FileStore{}},
		{backend: "file", path: filepath.Join(dir, "b.json"), want: &FileStore{}},
		{backend: "SQLite", path: filepath.Join(dir, "c.db"), want: &SQLiteStore{}},
		{backend: "memory", want: &MemoryStore{}},
		{backend: "redis", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(tt.backend, tt.path)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown local backend")
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestCodec(t *testing.T) {
	c := NewCodec(NewMemoryStore(), zap.NewNop())

	require.NoError(t, c.Set("list", []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, GetOr(c, "list", []string{}))
	assert.True(t, c.Has("list"))

	assert.Equal(t, []string{"def"}, GetOr(c, "missing", []string{"def"}))

	require.NoError(t, c.Store().Set("broken", "{"))
	assert.Equal(t, 7, GetOr(c, "broken", 7))

	require.NoError(t, c.Store().Set("null", "null"))
	assert.Equal(t, "x", GetOr(c, "null", "x"))

	err := c.Set("bad", make(chan int))
	assert.Error(t, err)
	assert.False(t, c.Has("bad"))

	require.NoError(t, c.Remove("list"))
	assert.False(t, c.Has("list"))
}

func TestCodec_Lookup(t *testing.T) {
	c := NewCodec(NewMemoryStore(), nil)
	var out map[string]int

	ok, err := c.Lookup("m", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("m", map[string]int{"x": 1}))
	ok, err = c.Lookup("m", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]int{"x": 1}, out)

	require.NoError(t, c.Store().Set("m", "[]"))
	_, err = c.Lookup("m", &out)
	assert.ErrorContains(t, err, "decode m")
}
