package catscope_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/catscope/catscope"
	"github.com/stretchr/testify/assert"
)

func newTestScope(opts *catscope.Options) (*catscope.Scope, *catscope.MapStore) {
	store := catscope.NewMapStore("testapp")
	if opts == nil {
		opts = &catscope.Options{Handler: catscope.NewNilHandler()}
	}
	return catscope.New(store, opts), store
}

func TestNew(t *testing.T) {
	t.Run("store must not be nil", func(t *testing.T) {
		testFunc := func() { catscope.New(nil, nil) }
		assert.Panics(t, testFunc, "nil store should have raised a panic")
	})

	t.Run("seed config entries are written to the store", func(t *testing.T) {
		s, store := newTestScope(&catscope.Options{
			Handler: catscope.NewNilHandler(),
			Config: &catscope.Config{
				Categories: []catscope.Category{
					{Name: "api", LogLevel: "DEBUG"},
					{Name: "api.client.http", LogLevel: "WARN"},
				},
			},
		})
		_, ok := store.Get("logging/categories:api", nil)
		assert.True(t, ok)
		assert.Equal(t, catscope.LevelDebug, s.Logger("api").Level())
		assert.Equal(t, catscope.LevelWarn, s.Logger("api.client.http").Level())
	})

	t.Run("test with debug mode enabled", func(t *testing.T) {
		var buf bytes.Buffer
		_ = catscope.New(catscope.NewMapStore("testapp"), &catscope.Options{
			Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
			Debug:   true,
		})
		line, err := buf.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		assert.Contains(t, line, "msg=\"debug mode enabled\"")
	})
}

func TestScope_Logger(t *testing.T) {
	t.Run("category must not be empty", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.Panics(t, func() { s.Logger("") }, "empty category should have raised a panic")
	})

	t.Run("unset categories resolve to ERROR", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.Equal(t, catscope.LevelError, s.Logger("api").Level())
		assert.Equal(t, catscope.LevelError, s.Logger("db.pool.conn").Level())
	})

	t.Run("descendants inherit the nearest configured ancestor", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.NoError(t, s.SetLevel("api", "DEBUG"))
		assert.Equal(t, catscope.LevelDebug, s.Logger("api.client").Level())
		assert.Equal(t, catscope.LevelDebug, s.Logger("api.client.http").Level())
		// Siblings outside the subtree stay at the default.
		assert.Equal(t, catscope.LevelError, s.Logger("db.pool").Level())
	})

	t.Run("more specific configuration overrides less specific", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.NoError(t, s.SetLevel("api", "DEBUG"))
		assert.NoError(t, s.SetLevel("api.client", "WARN"))
		assert.Equal(t, catscope.LevelWarn, s.Logger("api.client.http").Level())
		assert.Equal(t, catscope.LevelDebug, s.Logger("api.server").Level())
	})

	t.Run("resolution leaves a sentinel for every queried unset category", func(t *testing.T) {
		s, store := newTestScope(nil)
		assert.NoError(t, s.SetLevel("api", "INFO"))
		_ = s.Logger("api.client.http")

		for _, key := range []string{"categories:api.client.http", "categories:api.client"} {
			v, ok := store.Subspace("logging").Get(key, nil)
			assert.True(t, ok, "expected sentinel for %q", key)
			assert.Equal(t, "", v)
		}
		// The configured ancestor keeps its value.
		v, _ := store.Subspace("logging").Get("categories:api", nil)
		assert.Equal(t, "INFO", v)
	})

	t.Run("blank sentinel is skipped during resolution", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.NoError(t, s.SetLevel("api", "WARN"))
		_ = s.Logger("api.client") // leaves a sentinel for api.client
		assert.Equal(t, catscope.LevelWarn, s.Logger("api.client").Level())
	})

	t.Run("invalid stored identifiers fall through to the ancestor", func(t *testing.T) {
		s, store := newTestScope(nil)
		store.Subspace("logging").Set("categories:api.client", "LOUD")
		assert.NoError(t, s.SetLevel("api", "INFO"))
		assert.Equal(t, catscope.LevelInfo, s.Logger("api.client").Level())
	})

	t.Run("logger level is fixed at creation time", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.NoError(t, s.SetLevel("api", "DEBUG"))
		l := s.Logger("api.client")
		assert.NoError(t, s.SetLevel("api", "ERROR"))
		assert.Equal(t, catscope.LevelDebug, l.Level())
		assert.Equal(t, catscope.LevelError, s.Logger("api.client").Level())
	})
}

func TestScope_SetLevel(t *testing.T) {
	t.Run("rejects unknown level identifiers", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.Error(t, s.SetLevel("api", "VERBOSE"))
		assert.Error(t, s.SetLevel("api", ""))
	})

	t.Run("rejects empty categories", func(t *testing.T) {
		s, _ := newTestScope(nil)
		assert.Error(t, s.SetLevel("", "DEBUG"))
	})

	t.Run("identifiers are case-insensitive and stored upper-case", func(t *testing.T) {
		s, store := newTestScope(nil)
		assert.NoError(t, s.SetLevel("api", "warn"))
		v, ok := store.Get("logging/categories:api", nil)
		assert.True(t, ok)
		assert.Equal(t, "WARN", v)
	})
}

func TestScope_Namespace(t *testing.T) {
	store := catscope.NewMapStore("testapp")
	s := catscope.New(store, &catscope.Options{Handler: catscope.NewNilHandler()})
	assert.Equal(t, "testapp", s.Namespace().Name())

	// Keys written through the scope are visible through the namespace.
	assert.NoError(t, s.SetLevel("api", "INFO"))
	v, ok := s.Namespace().Get("logging/categories:api", nil)
	assert.True(t, ok)
	assert.Equal(t, "INFO", v)
}
