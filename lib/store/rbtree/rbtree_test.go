package rbtree

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyplex/keyplex/lib/config"
	"github.com/keyplex/keyplex/lib/record"
)

func newTestStore() *Store {
	cfg := config.Default()
	cfg.SchedulerPollInterval = 10 * time.Millisecond
	cfg.SchedulerGCInterval = 20 * time.Millisecond
	return New(cfg)
}

func person(n string) record.Record {
	return record.Record{
		LastName:  "Last" + n,
		FirstName: "First" + n,
		Birthday:  "2000",
		City:      "City" + n,
		Coins:     n,
	}
}

// assertRedBlackInvariants checks that the root is black, then walks
// every root-to-null path and fails the test if the count of black
// nodes differs between paths, or if a red node has a red child.
func assertRedBlackInvariants(t *testing.T, s *Store) {
	t.Helper()
	if s.root != nil {
		assert.Equal(t, black, s.root.color, "root must be black")
	}

	var height int
	var checked bool

	var walk func(n *node, blacks int)
	walk = func(n *node, blacks int) {
		if n == nil {
			if !checked {
				height = blacks
				checked = true
			} else {
				assert.Equal(t, height, blacks, "unequal black-height across paths")
			}
			return
		}
		if n.isRed() {
			assert.False(t, n.left.isRed(), "red node %q has red left child", n.key)
			assert.False(t, n.right.isRed(), "red node %q has red right child", n.key)
		}
		next := blacks
		if !n.isRed() {
			next++
		}
		walk(n.left, next)
		walk(n.right, next)
	}
	walk(s.root, 0)
}

func TestSetThenGet(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	assert.True(t, s.Set("foo0", person("0"), -1))
	assert.Equal(t, person("0"), s.Get("foo0"))
	assert.True(t, s.Exists("foo0"))
	assertRedBlackInvariants(t, s)
}

func TestSetTwiceKeepsFirstValue(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo0", person("0"), -1))
	assert.False(t, s.Set("foo0", person("1"), -1))
	assert.Equal(t, person("0"), s.Get("foo0"))
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	assert.False(t, s.Delete("missing"))
	require.True(t, s.Set("foo0", person("0"), -1))
	assert.True(t, s.Delete("foo0"))
	assert.False(t, s.Delete("foo0"))
	assert.False(t, s.Exists("foo0"))
}

func TestUpdateMergesWildcardFields(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo0", person("0"), -1))
	update := record.Record{LastName: record.Wildcard, FirstName: "NewFirst", Birthday: record.Wildcard, City: record.Wildcard, Coins: record.Wildcard}
	assert.True(t, s.Update("foo0", update))

	got := s.Get("foo0")
	assert.Equal(t, "NewFirst", got.FirstName)
	assert.Equal(t, "Last0", got.LastName)
}

func TestKeysAreAscending(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	inserted := []string{"foo5", "foo1", "foo9", "foo0", "foo3", "foo7", "foo2", "foo8", "foo4", "foo6"}
	for _, k := range inserted {
		require.True(t, s.Set(k, person(k), -1))
	}

	keys := s.Keys()
	require.Len(t, keys, 10)
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, keys)
	assertRedBlackInvariants(t, s)
}

func TestKeysAndShowAllAlignment(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	for i := 0; i < 10; i++ {
		n := string(rune('0' + i))
		require.True(t, s.Set("foo"+n, person(n), -1))
	}

	keys := s.Keys()
	values := s.ShowAll()
	require.Len(t, keys, 10)
	require.Len(t, values, 10)
	for i, k := range keys {
		assert.Equal(t, k[3:], values[i].Coins)
	}
}

func TestDeleteManyPreservesInvariantsAndOrder(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	for i := 0; i < 25; i++ {
		k := keyName(i)
		require.True(t, s.Set(k, person(k), -1))
	}
	assertRedBlackInvariants(t, s)

	for i := 5; i < 20; i++ {
		assert.True(t, s.Delete(keyName(i)))
		assertRedBlackInvariants(t, s)
	}

	keys := s.Keys()
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, keys)
	assert.Len(t, keys, 10)
}

func keyName(i int) string {
	if i < 10 {
		return "key0" + string(rune('0'+i))
	}
	return "key" + string(rune('0'+i/10)) + string(rune('0'+i%10))
}

func TestRenameMovesValueAndTTL(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo1", person("1"), 100))
	assert.True(t, s.Rename("foo1", "foo"))

	assert.False(t, s.Exists("foo1"))
	assert.True(t, s.Exists("foo"))
	assert.Equal(t, person("1"), s.Get("foo"))
	assert.InDelta(t, 100, s.Ttl("foo"), 1)
}

func TestRenameSameKeyIsNoOp(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo2", person("2"), -1))
	assert.True(t, s.Rename("foo2", "foo2"))
	assert.True(t, s.Exists("foo2"))
}

func TestRenameFailsWhenDestinationExists(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo1", person("1"), -1))
	require.True(t, s.Set("foo2", person("2"), -1))
	assert.False(t, s.Rename("foo1", "foo2"))
}

func TestFindWildcard(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	for i := 0; i < 8; i++ {
		n := string(rune('0' + i))
		rec := person(n)
		if i == 1 || i == 4 || i == 7 {
			rec.FirstName = "FirstName1"
		}
		require.True(t, s.Set("foo"+n, rec, -1))
	}

	got := s.Find(record.Record{LastName: "-", FirstName: "FirstName1", Birthday: "-", City: "-", Coins: "-"})
	assert.Len(t, got, 3)
}

func TestTtlExpiry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo", person("0"), 1))
	require.Eventually(t, func() bool {
		return !s.Exists("foo")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUploadExportRoundTrip(t *testing.T) {
	src := newTestStore()
	defer src.Close()

	for i := 0; i < 5; i++ {
		n := string(rune('0' + i))
		require.True(t, src.Set("foo"+n, person(n), -1))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "dump.txt")
	assert.Equal(t, 5, src.Export(path))

	dst := newTestStore()
	defer dst.Close()
	assert.Equal(t, 5, dst.Upload(path))
	assert.Equal(t, src.Keys(), dst.Keys())
}

func TestUploadMissingFileReturnsZero(t *testing.T) {
	s := newTestStore()
	defer s.Close()
	assert.Equal(t, 0, s.Upload(filepath.Join(os.TempDir(), "does-not-exist-keyplex.txt")))
}
