package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"civicat/internal/catalog/models"
	"civicat/pkg/platform/sentinel"
)

type FileStoreSuite struct {
	suite.Suite

	dir   string
	store *FileStore
}

func TestFileStoreSuite(t *testing.T) {
	suite.Run(t, new(FileStoreSuite))
}

func (s *FileStoreSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = NewFileStore(filepath.Join(s.dir, "data"), filepath.Join(s.dir, "register"))
}

func (s *FileStoreSuite) TestGroupRoundTrip() {
	parent := "g-0"
	g := models.Group{
		ID:          "g-1",
		Name:        "Assembly",
		Parent:      &parent,
		Category:    "council",
		OfficialURL: "https://example.org/assembly",
	}
	s.Require().NoError(s.store.PutGroup(g))

	got, err := s.store.GetGroup("g-1")
	s.Require().NoError(err)
	s.Equal(g, *got)
	s.True(s.store.GroupExists("g-1"))
}

func (s *FileStoreSuite) TestGetGroupNotFound() {
	_, err := s.store.GetGroup("missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.False(s.store.GroupExists("missing"))
}

func (s *FileStoreSuite) TestListGroupsSortedAndEmptyDir() {
	groups, err := s.store.ListGroups()
	s.Require().NoError(err)
	s.Empty(groups)

	s.Require().NoError(s.store.PutGroup(models.Group{ID: "b", Name: "B", Category: "c", OfficialURL: "https://example.org/b"}))
	s.Require().NoError(s.store.PutGroup(models.Group{ID: "a", Name: "A", Category: "c", OfficialURL: "https://example.org/a"}))

	groups, err = s.store.ListGroups()
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal("a", groups[0].ID)
	s.Equal("b", groups[1].ID)
}

func (s *FileStoreSuite) TestDeleteGroup() {
	s.Require().NoError(s.store.PutGroup(models.Group{ID: "a", Name: "A", Category: "c", OfficialURL: "https://example.org/a"}))
	s.Require().NoError(s.store.DeleteGroup("a"))
	s.False(s.store.GroupExists("a"))

	// deleting a missing record is not an error
	s.NoError(s.store.DeleteGroup("a"))
}

func (s *FileStoreSuite) TestPersonRoundTrip() {
	yomi := "たなか"
	p := models.Person{ID: "p-1", Name: "Alice Tanaka", NameYomi: &yomi}
	s.Require().NoError(s.store.PutPerson(p))

	got, err := s.store.GetPerson("p-1")
	s.Require().NoError(err)
	s.Equal(p, *got)
}

func (s *FileStoreSuite) meeting(id string) models.Meeting {
	return models.Meeting{
		ID:        id,
		Main:      models.SessionRef{GroupID: "g-1", Num: 3},
		Sub:       []models.SessionRef{},
		Date:      "2026-04-01",
		Holding:   "regular",
		Agenda:    []string{},
		Attendee:  []string{},
		Sources:   models.SourceList{},
		Materials: []models.Material{},
	}
}

func (s *FileStoreSuite) TestMeetingRoundTrip() {
	m := s.meeting("m-1")
	s.Require().NoError(s.store.PutMeeting(m))

	got, err := s.store.GetMeeting("m-1")
	s.Require().NoError(err)
	s.Equal(m, *got)
	s.True(s.store.MeetingExists("m-1"))

	// each meeting lives in its own directory
	s.FileExists(filepath.Join(s.dir, "data", "meeting", "m-1", "basic.json"))
}

func (s *FileStoreSuite) TestDeleteMeetingRemovesDirectory() {
	s.Require().NoError(s.store.PutMeeting(s.meeting("m-1")))
	s.Require().NoError(s.store.DeleteMeeting("m-1"))

	s.False(s.store.MeetingExists("m-1"))
	s.NoDirExists(filepath.Join(s.dir, "data", "meeting", "m-1"))
}

func (s *FileStoreSuite) TestListMeetingsSkipsDirsWithoutRecord() {
	s.Require().NoError(s.store.PutMeeting(s.meeting("m-1")))
	s.Require().NoError(os.MkdirAll(filepath.Join(s.dir, "data", "meeting", "stray"), 0o755))

	meetings, err := s.store.ListMeetings()
	s.Require().NoError(err)
	s.Require().Len(meetings, 1)
	s.Equal("m-1", meetings[0].ID)
}

func (s *FileStoreSuite) TestRegistersNilWhenAbsent() {
	raw, err := s.store.GroupRegister()
	s.Require().NoError(err)
	s.Nil(raw)

	path := filepath.Join(s.dir, "register", "group", "form.json")
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))
	s.Require().NoError(os.WriteFile(path, []byte(`[]`), 0o644))

	raw, err = s.store.GroupRegister()
	s.Require().NoError(err)
	s.JSONEq(`[]`, string(raw))
}

func (s *FileStoreSuite) TestWrittenJSONShape() {
	s.Require().NoError(s.store.PutPerson(models.Person{ID: "p-1", Name: "Alice & Bob"}))

	raw, err := os.ReadFile(filepath.Join(s.dir, "data", "person", "p-1.json"))
	s.Require().NoError(err)

	content := string(raw)
	s.Contains(content, "  \"id\": \"p-1\"", "records are two-space indented")
	s.Contains(content, "Alice & Bob", "HTML escaping is off")
	s.Equal(byte('\n'), raw[len(raw)-1], "records end with a newline")
}
