package export

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicat/internal/catalog/models"
	"civicat/internal/catalog/store"
	"civicat/internal/viewer"
)

func exportFixture(t *testing.T) (*store.FileStore, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	st := store.NewFileStore(filepath.Join(dir, "data"), filepath.Join(dir, "register"))

	parent := "g-1"
	require.NoError(t, st.PutGroup(models.Group{
		ID: "g-1", Name: "Assembly", Category: "council", OfficialURL: "https://example.org/a",
	}))
	require.NoError(t, st.PutGroup(models.Group{
		ID: "g-2", Name: "Budget Committee", Parent: &parent, Category: "committee", OfficialURL: "https://example.org/b",
	}))
	require.NoError(t, st.PutPerson(models.Person{ID: "p-1", Name: "Alice Tanaka"}))
	require.NoError(t, st.PutMeeting(models.Meeting{
		ID:   "m-1",
		Main: models.SessionRef{GroupID: "g-1", Num: 3},
		Date: "2026-04-01", Holding: "regular",
	}))

	handler, err := viewer.New(st, viewer.Config{SiteTitle: "Catalog"}, slog.Default())
	require.NoError(t, err)
	r := chi.NewRouter()
	handler.Register(r)
	return st, r
}

func TestExportRun(t *testing.T) {
	st, site := exportFixture(t)
	out := t.TempDir()

	exp := New(st, site, WithWorkers(4))
	paths, err := exp.Run(context.Background(), out)
	require.NoError(t, err)

	expected := []string{
		"/",
		"/group/",
		"/group/tree/",
		"/group/tree/1/",
		"/group/tree/2/",
		"/group/g-1/",
		"/group/g-1/children/",
		"/group/g-2/",
		"/group/g-2/children/",
		"/person/",
		"/person/p-1/",
		"/meeting/",
		"/meeting/m-1/",
	}
	assert.ElementsMatch(t, expected, paths)

	for _, p := range expected {
		page := filepath.Join(out, filepath.FromSlash(p), "index.html")
		raw, err := os.ReadFile(page)
		require.NoError(t, err, p)
		assert.Contains(t, string(raw), "<html", p)
	}

	raw, err := os.ReadFile(filepath.Join(out, "group", "g-1", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Assembly")
}

func TestExportTreeLevelCap(t *testing.T) {
	st, site := exportFixture(t)
	out := t.TempDir()

	exp := New(st, site, WithTreeLevels(1))
	paths, err := exp.Run(context.Background(), out)
	require.NoError(t, err)

	assert.Contains(t, paths, "/group/tree/1/")
	assert.NotContains(t, paths, "/group/tree/2/")
}

func TestExportFailsOnBrokenRoute(t *testing.T) {
	st, _ := exportFixture(t)
	out := t.TempDir()

	// a handler that routes nothing turns every page into a 404
	exp := New(st, http.NotFoundHandler())
	_, err := exp.Run(context.Background(), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}
