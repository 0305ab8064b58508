package migrate

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicat/internal/catalog/store"
)

func writeMeetingDoc(t *testing.T, dataDir, id, content string) string {
	t.Helper()
	path := filepath.Join(dataDir, "meeting", id, "basic.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSourcesMigration(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	st := store.NewFileStore(dataDir, filepath.Join(dir, "register"))

	legacy := writeMeetingDoc(t, dataDir, "m-1", `{
  "main": {"group_id": "g-1", "num": 3},
  "date": "2026-04-01",
  "holding": "regular",
  "sources": [
    {"url": "https://example.org/minutes", "source_type": "minutes", "title": null},
    {"url": "https://example.org/extra", "source_type": "other", "title": "Extra"}
  ]
}`)
	writeMeetingDoc(t, dataDir, "m-2", `{
  "main": {"group_id": "g-1", "num": 4},
  "date": "2026-04-02",
  "holding": "regular",
  "sources": {
    "meeting_page": null,
    "transcript": "https://example.org/t",
    "announcement": null,
    "other": []
  }
}`)

	changed, err := Sources(st, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{legacy}, changed, "only the legacy document is rewritten")

	raw, err := os.ReadFile(legacy)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	sources, ok := doc["sources"].(map[string]any)
	require.True(t, ok, "sources are now in the categorized form")
	assert.Equal(t, "https://example.org/minutes", sources["transcript"], "legacy minutes folds into transcript")
	assert.Nil(t, sources["meeting_page"])
	other, ok := sources["other"].([]any)
	require.True(t, ok)
	require.Len(t, other, 1)

	// untouched fields survive the rewrite
	assert.Equal(t, "2026-04-01", doc["date"])

	// migrated documents still load through the typed model
	m, err := st.GetMeeting("m-1")
	require.NoError(t, err)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "transcript", m.Sources[0].SourceType)

	t.Run("second run is a no-op", func(t *testing.T) {
		changed, err := Sources(st, slog.Default())
		require.NoError(t, err)
		assert.Empty(t, changed)
	})
}

func TestSourcesMigrationMissingField(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	st := store.NewFileStore(dataDir, filepath.Join(dir, "register"))

	path := writeMeetingDoc(t, dataDir, "m-1", `{
  "main": {"group_id": "g-1", "num": 3},
  "date": "2026-04-01",
  "holding": "regular"
}`)

	changed, err := Sources(st, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{path}, changed, "a missing field gains the empty categorized form")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	sources, ok := doc["sources"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, sources["other"])
}

func TestSourcesMigrationKeepsFieldOrder(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	st := store.NewFileStore(dataDir, filepath.Join(dir, "register"))

	path := writeMeetingDoc(t, dataDir, "m-1", `{
  "id": "m-1",
  "main": {"group_id": "g-1", "num": 3},
  "date": "2026-04-01",
  "holding": "regular",
  "sources": [
    {"url": "https://example.org/minutes", "source_type": "minutes", "title": null}
  ],
  "attendee": ["p-1"]
}`)

	changed, err := Sources(st, slog.Default())
	require.NoError(t, err)
	require.Equal(t, []string{path}, changed)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)

	// the rewrite touches sources only; every other field stays where the
	// original author put it
	last := -1
	for _, key := range []string{`"id"`, `"main"`, `"date"`, `"holding"`, `"sources"`, `"attendee"`} {
		idx := strings.Index(text, key)
		require.Greater(t, idx, last, "field %s moved", key)
		last = idx
	}
}
