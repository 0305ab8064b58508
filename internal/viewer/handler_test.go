package viewer

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"civicat/internal/catalog/models"
	"civicat/internal/catalog/store"
)

type ViewerSuite struct {
	suite.Suite

	store  *store.FileStore
	router chi.Router
}

func TestViewerSuite(t *testing.T) {
	suite.Run(t, new(ViewerSuite))
}

func (s *ViewerSuite) SetupTest() {
	dir := s.T().TempDir()
	s.store = store.NewFileStore(filepath.Join(dir, "data"), filepath.Join(dir, "register"))

	parent := "g-1"
	s.Require().NoError(s.store.PutGroup(models.Group{
		ID: "g-1", Name: "Assembly", Category: "council", OfficialURL: "https://example.org/a",
	}))
	s.Require().NoError(s.store.PutGroup(models.Group{
		ID: "g-2", Name: "Budget Committee", Parent: &parent, Category: "committee", OfficialURL: "https://example.org/b",
	}))
	s.Require().NoError(s.store.PutPerson(models.Person{ID: "p-1", Name: "Alice Tanaka"}))
	s.Require().NoError(s.store.PutMeeting(models.Meeting{
		ID:       "m-1",
		Main:     models.SessionRef{GroupID: "g-1", Num: 3},
		Sub:      []models.SessionRef{{GroupID: "g-2", Num: 1}},
		Date:     "2026-04-01",
		Holding:  "regular",
		Attendee: []string{"p-1"},
		Sources: models.SourceList{
			{URL: "https://example.org/minutes", SourceType: models.SourceTranscript},
		},
	}))

	handler, err := New(s.store, Config{SiteTitle: "Catalog"}, slog.Default())
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	handler.Register(s.router)
}

func (s *ViewerSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *ViewerSuite) TestPagesRender() {
	pages := map[string][]string{
		"/":                    {"Catalog"},
		"/group/":              {"Assembly", "Budget Committee"},
		"/group/tree/":         {"Assembly", "Budget Committee"},
		"/group/tree/1/":       {"Assembly"},
		"/group/g-1/":          {"Assembly"},
		"/group/g-1/children/": {"Budget Committee"},
		"/person/":             {"Alice Tanaka"},
		"/person/p-1/":         {"Alice Tanaka"},
		"/meeting/":            {"2026-04-01"},
		"/meeting/m-1/":        {"2026-04-01", "Alice Tanaka"},
	}

	for path, wants := range pages {
		s.Run(path, func() {
			rec := s.get(path)
			s.Require().Equal(http.StatusOK, rec.Code)
			for _, want := range wants {
				s.Contains(rec.Body.String(), want)
			}
		})
	}
}

func (s *ViewerSuite) TestGroupDetailShowsParentName() {
	rec := s.get("/group/g-2/")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Assembly", "parent is shown by name")
}

func (s *ViewerSuite) TestGroupDetailListsMeetings() {
	s.Run("main session", func() {
		rec := s.get("/group/g-1/")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "2026-04-01")
	})

	s.Run("sub session", func() {
		rec := s.get("/group/g-2/")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "2026-04-01")
	})
}

func (s *ViewerSuite) TestMeetingSearch() {
	rec := s.get("/meeting/?q=2026-04")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "2026-04-01")

	rec = s.get("/meeting/?q=no-such-date")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), "2026-04-01")
}

func (s *ViewerSuite) TestNotFound() {
	for _, path := range []string{"/group/missing/", "/person/missing/", "/meeting/missing/"} {
		s.Run(path, func() {
			s.Equal(http.StatusNotFound, s.get(path).Code)
		})
	}
}

func (s *ViewerSuite) TestBasePathPrefixesLinks() {
	handler, err := New(s.store, Config{BasePath: "/catalog", SiteTitle: "Catalog"}, slog.Default())
	s.Require().NoError(err)

	router := chi.NewRouter()
	handler.Register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `href="/catalog/group/"`)
}
