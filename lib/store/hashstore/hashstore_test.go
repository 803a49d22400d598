package hashstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyplex/keyplex/lib/config"
	"github.com/keyplex/keyplex/lib/record"
)

func newTestStore() *Store {
	cfg := config.Default()
	cfg.HashCapacity = 4
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

func TestSetThenGet(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	assert.True(t, s.Set("foo0", person("0"), -1))
	assert.Equal(t, person("0"), s.Get("foo0"))
	assert.True(t, s.Exists("foo0"))
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

func TestUpdateOnMissingKeyFails(t *testing.T) {
	s := newTestStore()
	defer s.Close()
	assert.False(t, s.Update("missing", person("0")))
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

	byKey := make(map[string]record.Record)
	for i, k := range keys {
		byKey[k] = values[i]
	}
	for i := 0; i < 10; i++ {
		n := string(rune('0' + i))
		assert.Equal(t, person(n), byKey["foo"+n])
	}
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

func TestRenameFailsWhenSourceMissing(t *testing.T) {
	s := newTestStore()
	defer s.Close()
	assert.False(t, s.Rename("missing", "foo"))
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

func TestTtlLowerBoundAndExpiry(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo", person("0"), 1))
	ttl := s.Ttl("foo")
	assert.GreaterOrEqual(t, ttl, 0)
	assert.LessOrEqual(t, ttl, 1)

	require.Eventually(t, func() bool {
		return !s.Exists("foo")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTtlUnknownKeyIsMinusOne(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	require.True(t, s.Set("foo", person("0"), -1))
	assert.Equal(t, -1, s.Ttl("foo"))
	assert.Equal(t, -1, s.Ttl("missing"))
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
	written := src.Export(path)
	assert.Equal(t, 5, written)

	dst := newTestStore()
	defer dst.Close()
	loaded := dst.Upload(path)
	assert.Equal(t, 5, loaded)

	assert.ElementsMatch(t, src.Keys(), dst.Keys())
	for _, k := range src.Keys() {
		assert.Equal(t, src.Get(k), dst.Get(k))
	}
}

func TestUploadMissingFileReturnsZero(t *testing.T) {
	s := newTestStore()
	defer s.Close()
	assert.Equal(t, 0, s.Upload(filepath.Join(os.TempDir(), "does-not-exist-keyplex.txt")))
}

func TestUploadStopsAtFirstMalformedLine(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	content := "foo0 \"A\" \"B\" 1 \"C\" 2\ngarbage line here\nfoo1 \"A\" \"B\" 2 \"C\" 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assert.Equal(t, 1, s.Upload(path))
}
