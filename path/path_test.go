package path

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("round-trip", func(t *testing.T) {
		p, err := New("/a//b/")
		require.NoError(t, err)
		assert.Equal(t, "/a/b", p.String())
	})
	t.Run("root", func(t *testing.T) {
		p, err := New("/")
		require.NoError(t, err)
		assert.True(t, p.IsRoot())
		assert.Equal(t, "/", p.String())
	})
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
	t.Run("rejects missing leading slash", func(t *testing.T) {
		_, err := New("a/b")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
	t.Run("rejects colon", func(t *testing.T) {
		_, err := New("/a:b")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestJoin(t *testing.T) {
	root, err := New("/a")
	require.NoError(t, err)
	t.Run("appends a component", func(t *testing.T) {
		p, err := root.Join("b")
		require.NoError(t, err)
		assert.Equal(t, "/a/b", p.String())
	})
	t.Run("rejects slash in component", func(t *testing.T) {
		_, err := root.Join("b/c")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
	t.Run("rejects colon in component", func(t *testing.T) {
		_, err := root.Join("b:c")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
	t.Run("rejects empty component", func(t *testing.T) {
		_, err := root.Join("")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestParentAndLast(t *testing.T) {
	p, err := New("/a//b/")
	require.NoError(t, err)
	parent, err := p.Parent()
	require.NoError(t, err)
	assert.Equal(t, "/a", parent.String())
	last, err := p.Last()
	require.NoError(t, err)
	assert.Equal(t, "b", last)

	t.Run("root has no parent", func(t *testing.T) {
		_, err := Root().Parent()
		assert.ErrorIs(t, err, ErrRootHasNoParent)
	})
	t.Run("root has no last component", func(t *testing.T) {
		_, err := Root().Last()
		assert.ErrorIs(t, err, ErrRootHasNoParent)
	})
}

func TestIsSubpath(t *testing.T) {
	ab, err := New("/a/b")
	require.NoError(t, err)
	a, err := New("/a")
	require.NoError(t, err)
	abc, err := New("/a/b/c")
	require.NoError(t, err)

	assert.True(t, ab.IsSubpath(a))
	assert.True(t, ab.IsSubpath(ab))
	assert.False(t, ab.IsSubpath(abc))
}

func TestIterator(t *testing.T) {
	p, err := New("/a/b/c")
	require.NoError(t, err)
	it := p.Iterator()
	var got []string
	for it.HasNext() {
		c, ok := it.Next()
		require.True(t, ok)
		got = append(got, c)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("iterator components mismatch (-want +got):\n%s", diff)
	}
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	a, _ := New("/a")
	ab, _ := New("/a/b")
	ac, _ := New("/a/c")
	ab2, _ := New("/a/b")

	assert.Equal(t, -1, a.Compare(ab), "prefix orders before extension")
	assert.Equal(t, 1, ab.Compare(a))
	assert.Equal(t, 0, ab.Compare(ab2))
	assert.Equal(t, -1, ab.Compare(ac))
}

func TestEquals(t *testing.T) {
	p1, _ := New("/a/b/")
	p2, _ := New("/a//b")
	assert.True(t, p1.Equals(p2))
}

func TestList(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := List(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("not a directory", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "f")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		_, err := List(file)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})
	t.Run("lists nested files relative to root", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "c"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "top"), []byte("x"), 0644))
		paths, err := List(dir)
		require.NoError(t, err)
		var got []string
		for _, p := range paths {
			got = append(got, p.String())
		}
		assert.ElementsMatch(t, []string{"/a/b/c", "/top"}, got)
	})
}
