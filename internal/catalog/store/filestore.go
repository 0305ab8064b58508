// Package store implements the on-disk record store: one JSON document per
// group/person under data/<kind>/<id>.json, one directory per meeting holding
// its canonical basic.json, and per-kind register files under register/.
// Pure I/O; business rules live in the conversion and handler layers.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"civicat/internal/catalog/models"
	"civicat/pkg/platform/sentinel"
)

// FileStore reads and writes catalog records below dataDir and register
// batches below registerDir. Single-writer use only; writes overwrite whole
// records and take no locks.
type FileStore struct {
	dataDir     string
	registerDir string
}

func NewFileStore(dataDir, registerDir string) *FileStore {
	return &FileStore{dataDir: dataDir, registerDir: registerDir}
}

// ---- groups ----

// ListGroups returns every group record ordered by filename, with the
// identifier taken from the filename.
func (s *FileStore) ListGroups() ([]models.Group, error) {
	groups := []models.Group{}
	err := s.eachJSONFile(filepath.Join(s.dataDir, "group"), func(id, path string) error {
		var g models.Group
		if err := readJSON(path, &g); err != nil {
			return err
		}
		g.ID = id
		groups = append(groups, g)
		return nil
	})
	return groups, err
}

func (s *FileStore) GetGroup(id string) (*models.Group, error) {
	var g models.Group
	if err := readJSON(s.GroupPath(id), &g); err != nil {
		return nil, err
	}
	g.ID = id
	return &g, nil
}

func (s *FileStore) PutGroup(g models.Group) error {
	return writeJSON(s.GroupPath(g.ID), g)
}

func (s *FileStore) DeleteGroup(id string) error {
	return removeFile(s.GroupPath(id))
}

func (s *FileStore) GroupPath(id string) string {
	return filepath.Join(s.dataDir, "group", id+".json")
}

func (s *FileStore) GroupExists(id string) bool {
	return fileExists(s.GroupPath(id))
}

// ---- persons ----

// ListPersons returns every person record ordered by filename.
func (s *FileStore) ListPersons() ([]models.Person, error) {
	persons := []models.Person{}
	err := s.eachJSONFile(filepath.Join(s.dataDir, "person"), func(id, path string) error {
		var p models.Person
		if err := readJSON(path, &p); err != nil {
			return err
		}
		p.ID = id
		persons = append(persons, p)
		return nil
	})
	return persons, err
}

func (s *FileStore) GetPerson(id string) (*models.Person, error) {
	var p models.Person
	if err := readJSON(s.PersonPath(id), &p); err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func (s *FileStore) PutPerson(p models.Person) error {
	return writeJSON(s.PersonPath(p.ID), p)
}

func (s *FileStore) DeletePerson(id string) error {
	return removeFile(s.PersonPath(id))
}

func (s *FileStore) PersonPath(id string) string {
	return filepath.Join(s.dataDir, "person", id+".json")
}

func (s *FileStore) PersonExists(id string) bool {
	return fileExists(s.PersonPath(id))
}

// ---- meetings ----

// ListMeetings returns every meeting record ordered by directory name, with
// the identifier taken from the directory name. Directories without a
// basic.json are skipped.
func (s *FileStore) ListMeetings() ([]models.Meeting, error) {
	meetings := []models.Meeting{}
	dir := filepath.Join(s.dataDir, "meeting")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return meetings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), "basic.json")
		if !fileExists(path) {
			continue
		}
		var m models.Meeting
		if err := readJSON(path, &m); err != nil {
			return nil, err
		}
		m.ID = entry.Name()
		meetings = append(meetings, m)
	}
	return meetings, nil
}

func (s *FileStore) GetMeeting(id string) (*models.Meeting, error) {
	var m models.Meeting
	if err := readJSON(s.MeetingPath(id), &m); err != nil {
		return nil, err
	}
	m.ID = id
	return &m, nil
}

func (s *FileStore) PutMeeting(m models.Meeting) error {
	return writeJSON(s.MeetingPath(m.ID), m)
}

// DeleteMeeting removes the whole meeting directory. No-op when absent.
func (s *FileStore) DeleteMeeting(id string) error {
	return os.RemoveAll(filepath.Join(s.dataDir, "meeting", id))
}

func (s *FileStore) MeetingPath(id string) string {
	return filepath.Join(s.dataDir, "meeting", id, "basic.json")
}

func (s *FileStore) MeetingExists(id string) bool {
	return fileExists(s.MeetingPath(id))
}

// GroupDocs returns the raw group documents keyed by path, for callers that
// operate below the typed model (validation sweeps, migrations).
func (s *FileStore) GroupDocs() (map[string]json.RawMessage, error) {
	return s.flatDocs(filepath.Join(s.dataDir, "group"))
}

// PersonDocs returns the raw person documents keyed by path.
func (s *FileStore) PersonDocs() (map[string]json.RawMessage, error) {
	return s.flatDocs(filepath.Join(s.dataDir, "person"))
}

func (s *FileStore) flatDocs(dir string) (map[string]json.RawMessage, error) {
	docs := map[string]json.RawMessage{}
	err := s.eachJSONFile(dir, func(_, path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		docs[path] = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// MeetingDocs returns the raw meeting documents keyed by path.
func (s *FileStore) MeetingDocs() (map[string]json.RawMessage, error) {
	docs := map[string]json.RawMessage{}
	dir := filepath.Join(s.dataDir, "meeting")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return docs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), "basic.json")
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs[path] = raw
	}
	return docs, nil
}

// WriteRawMeetingDoc overwrites a meeting document at path verbatim, keeping
// the store's JSON formatting. Used by the sources migration, which has to
// rewrite documents that predate the typed model.
func (s *FileStore) WriteRawMeetingDoc(path string, doc any) error {
	return writeJSON(path, doc)
}

// ---- registers ----

// GroupRegister returns the raw group register batch, or nil when no register
// file has been authored.
func (s *FileStore) GroupRegister() ([]byte, error) {
	return readRegister(filepath.Join(s.registerDir, "group", "form.json"))
}

// PersonRegister returns the raw person register batch.
func (s *FileStore) PersonRegister() ([]byte, error) {
	return readRegister(filepath.Join(s.registerDir, "person", "form.json"))
}

// MeetingRegister returns the raw meeting register batch.
func (s *FileStore) MeetingRegister() ([]byte, error) {
	return readRegister(filepath.Join(s.registerDir, "meeting", "form.json"))
}

// ---- helpers ----

func (s *FileStore) eachJSONFile(dir string, fn func(id, path string) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	// os.ReadDir returns entries sorted by filename, which fixes the
	// enumeration order.
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := fn(strings.TrimSuffix(name, ".json"), filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func readRegister(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read register %s: %w", path, err)
	}
	return raw, nil
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON persists v as two-space indented UTF-8 JSON with a trailing
// newline, creating parent directories as needed.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func removeFile(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
