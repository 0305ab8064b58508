// Package export renders every viewer route to a static file tree so the
// site can be published from plain file hosting.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"civicat/internal/catalog/models"
	"civicat/internal/tree"
)

// Store enumerates the records whose pages get exported.
type Store interface {
	ListGroups() ([]models.Group, error)
	ListPersons() ([]models.Person, error)
	ListMeetings() ([]models.Meeting, error)
}

// Exporter walks the viewer's routes and writes each page under its path as
// index.html.
type Exporter struct {
	store      Store
	site       http.Handler
	logger     *slog.Logger
	workers    int
	treeLevels int
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// WithWorkers caps the number of pages rendered concurrently.
func WithWorkers(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithTreeLevels caps how many depth-limited tree pages are exported. Zero
// exports one page per level of the hierarchy.
func WithTreeLevels(n int) Option {
	return func(e *Exporter) { e.treeLevels = n }
}

// New returns an Exporter that renders pages through site, which must route
// the viewer paths.
func New(store Store, site http.Handler, opts ...Option) *Exporter {
	e := &Exporter{
		store:   store,
		site:    site,
		logger:  slog.Default(),
		workers: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run renders every page into outDir and returns the exported paths.
func (e *Exporter) Run(ctx context.Context, outDir string) ([]string, error) {
	paths, err := e.paths()
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.renderPage(path, outDir); err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}
			e.logger.Debug("exported page", "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Info("export finished", "pages", len(paths), "out", outDir)
	return paths, nil
}

// paths enumerates every route the viewer serves for the current data.
func (e *Exporter) paths() ([]string, error) {
	groups, err := e.store.ListGroups()
	if err != nil {
		return nil, err
	}
	persons, err := e.store.ListPersons()
	if err != nil {
		return nil, err
	}
	meetings, err := e.store.ListMeetings()
	if err != nil {
		return nil, err
	}
	t, err := tree.Build(groups, 0)
	if err != nil {
		return nil, err
	}

	levels := t.MaxDepth
	if e.treeLevels > 0 && e.treeLevels < levels {
		levels = e.treeLevels
	}

	paths := []string{"/", "/group/", "/group/tree/", "/person/", "/meeting/"}
	for level := 1; level <= levels; level++ {
		paths = append(paths, fmt.Sprintf("/group/tree/%d/", level))
	}
	for _, g := range groups {
		paths = append(paths, "/group/"+g.ID+"/", "/group/"+g.ID+"/children/")
	}
	for _, p := range persons {
		paths = append(paths, "/person/"+p.ID+"/")
	}
	for _, m := range meetings {
		paths = append(paths, "/meeting/"+m.ID+"/")
	}
	return paths, nil
}

func (e *Exporter) renderPage(path, outDir string) error {
	rec := httptest.NewRecorder()
	e.site.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		return fmt.Errorf("unexpected status %d", rec.Code)
	}

	dir := filepath.Join(outDir, filepath.FromSlash(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "index.html"), rec.Body.Bytes(), 0o644)
}
