// Package viewer serves the read-only site over converted data. The same
// handler backs live serving and the static export, which renders these
// routes to files.
package viewer

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"civicat/internal/catalog/models"
	"civicat/internal/tree"
	"civicat/pkg/platform/sentinel"
)

//go:embed templates/*.html
var templateFS embed.FS

// Store is the read surface the viewer needs.
type Store interface {
	ListGroups() ([]models.Group, error)
	ListPersons() ([]models.Person, error)
	ListMeetings() ([]models.Meeting, error)
	GetGroup(id string) (*models.Group, error)
	GetPerson(id string) (*models.Person, error)
	GetMeeting(id string) (*models.Meeting, error)
}

// Config carries the site-level presentation settings.
type Config struct {
	// BasePath prefixes every generated URL so the exported site can live
	// below a project-page path. Empty serves from the root.
	BasePath   string
	SiteTitle  string
	Disclaimer string
}

// Handler renders the viewer pages.
type Handler struct {
	store     Store
	cfg       Config
	logger    *slog.Logger
	templates map[string]*template.Template
}

// New parses the embedded templates and returns a ready handler.
func New(store Store, cfg Config, logger *slog.Logger) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")

	templates, err := parseTemplates(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	return &Handler{store: store, cfg: cfg, logger: logger, templates: templates}, nil
}

var viewerPages = []string{
	"index", "group_list", "group_detail", "group_tree", "group_children",
	"person_list", "person_detail", "meeting_list", "meeting_detail",
}

func parseTemplates(basePath string) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"url": func(path string) string { return basePath + path },
	}
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout template: %w", err)
	}
	out := make(map[string]*template.Template, len(viewerPages))
	for _, page := range viewerPages {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+page+".html"); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// Register mounts every viewer route. All routes end in a slash so the
// static export can mirror them as directories.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/group/", h.handleGroupList)
	r.Get("/group/tree/", h.handleGroupTree)
	r.Get("/group/tree/{level}/", h.handleGroupTreeLevel)
	r.Get("/group/{id}/", h.handleGroupDetail)
	r.Get("/group/{id}/children/", h.handleGroupChildren)
	r.Get("/person/", h.handlePersonList)
	r.Get("/person/{id}/", h.handlePersonDetail)
	r.Get("/meeting/", h.handleMeetingList)
	r.Get("/meeting/{id}/", h.handleMeetingDetail)
}

type page struct {
	Title      string
	SiteTitle  string
	Disclaimer string
	Data       any
}

func (h *Handler) render(w http.ResponseWriter, name, title string, data any) {
	t, ok := h.templates[name]
	if !ok {
		h.fail(w, fmt.Errorf("unknown template %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := t.ExecuteTemplate(w, "layout.html", page{
		Title:      title,
		SiteTitle:  h.cfg.SiteTitle,
		Disclaimer: h.cfg.Disclaimer,
		Data:       data,
	})
	if err != nil {
		h.logger.Error("render failed", "template", name, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("viewer request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index", h.cfg.SiteTitle, nil)
}

// ---- groups ----

func (h *Handler) handleGroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.sortedGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "group_list", "Groups", groups)
}

// GroupDetailData backs the group detail page. ParentID is empty when the
// parent reference could not be resolved to a known group.
type GroupDetailData struct {
	Group        models.Group
	ParentLabel  string
	ParentID     string
	MainMeetings []MeetingRow
	SubMeetings  []MeetingRow
}

func (h *Handler) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	group, err := h.store.GetGroup(id)
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	groups, err := h.store.ListGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	data := GroupDetailData{Group: *group, ParentLabel: "-"}
	data.ParentLabel, data.ParentID = parentLabel(*group, groups)

	meetings, err := h.sortedMeetings()
	if err != nil {
		h.fail(w, err)
		return
	}
	names := groupNames(groups)
	for _, m := range meetings {
		row := meetingRow(m, names)
		if m.Main.GroupID == id {
			data.MainMeetings = append(data.MainMeetings, row)
		}
		for _, sub := range m.Sub {
			if sub.GroupID == id {
				data.SubMeetings = append(data.SubMeetings, row)
				break
			}
		}
	}
	h.render(w, "group_detail", group.Name, data)
}

// parentLabel resolves a group's parent for display. Parents stored as names
// (pre-conversion hand edits) are resolved through the name index as a
// fallback; a parent that resolves nowhere is shown verbatim without a link.
func parentLabel(g models.Group, groups []models.Group) (label, parentID string) {
	if !g.HasParent() {
		return "-", ""
	}
	byID := make(map[string]string, len(groups))
	byName := make(map[string]string, len(groups))
	for _, other := range groups {
		byID[other.ID] = other.Name
		byName[other.Name] = other.ID
	}

	parent := *g.Parent
	name, ok := byID[parent]
	if !ok {
		if resolved, found := byName[parent]; found {
			return fmt.Sprintf("%s (%s)", parent, resolved), resolved
		}
		return parent, ""
	}
	return fmt.Sprintf("%s (%s)", name, parent), parent
}

// TreeData backs the full and depth-limited tree pages. Level is zero on the
// unlimited page.
type TreeData struct {
	Roots    []*tree.Node
	Level    int
	MaxDepth int
}

func (h *Handler) handleGroupTree(w http.ResponseWriter, r *http.Request) {
	h.renderTree(w, 0)
}

func (h *Handler) handleGroupTreeLevel(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || level < 0 {
		http.NotFound(w, r)
		return
	}
	h.renderTree(w, level)
}

func (h *Handler) renderTree(w http.ResponseWriter, level int) {
	groups, err := h.sortedGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	t, err := tree.Build(groups, level)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "group_tree", "Group tree", TreeData{Roots: t.Roots, Level: level, MaxDepth: t.MaxDepth})
}

// GroupChildrenData backs the per-group subtree page.
type GroupChildrenData struct {
	Group models.Group
	Roots []*tree.Node
}

func (h *Handler) handleGroupChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	group, err := h.store.GetGroup(id)
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	groups, err := h.sortedGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	t, err := tree.Build(groups, 0)
	if err != nil {
		h.fail(w, err)
		return
	}
	node := findNode(t.Roots, id)
	children := []*tree.Node{}
	if node != nil {
		children = node.Children
	}
	h.render(w, "group_children", group.Name+" children", GroupChildrenData{Group: *group, Roots: children})
}

func findNode(nodes []*tree.Node, id string) *tree.Node {
	for _, n := range nodes {
		if n.Group.ID == id {
			return n
		}
		if found := findNode(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// ---- persons ----

func (h *Handler) handlePersonList(w http.ResponseWriter, r *http.Request) {
	persons, err := h.store.ListPersons()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "person_list", "Persons", persons)
}

func (h *Handler) handlePersonDetail(w http.ResponseWriter, r *http.Request) {
	person, err := h.store.GetPerson(chi.URLParam(r, "id"))
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "person_detail", person.Name, person)
}

// ---- meetings ----

// MeetingRow is one entry of a meeting listing.
type MeetingRow struct {
	ID        string
	Date      string
	GroupName string
	Num       int
	Holding   string
}

// MeetingListData backs the meeting listing with its search box.
type MeetingListData struct {
	Meetings []MeetingRow
	Query    string
}

func (h *Handler) handleMeetingList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	meetings, err := h.sortedMeetings()
	if err != nil {
		h.fail(w, err)
		return
	}
	if query != "" {
		meetings = filterMeetings(meetings, query)
	}
	groups, err := h.store.ListGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	names := groupNames(groups)
	data := MeetingListData{Query: query, Meetings: make([]MeetingRow, 0, len(meetings))}
	for _, m := range meetings {
		data.Meetings = append(data.Meetings, meetingRow(m, names))
	}
	h.render(w, "meeting_list", "Meetings", data)
}

// filterMeetings keeps meetings whose id, date, main session number or
// holding contains the query, case-insensitively.
func filterMeetings(meetings []models.Meeting, query string) []models.Meeting {
	q := strings.ToLower(query)
	out := []models.Meeting{}
	for _, m := range meetings {
		if strings.Contains(strings.ToLower(m.ID), q) ||
			strings.Contains(strings.ToLower(m.Date), q) ||
			strings.Contains(strconv.Itoa(m.Main.Num), q) ||
			strings.Contains(strings.ToLower(m.Holding), q) {
			out = append(out, m)
		}
	}
	return out
}

// MeetingDetailData backs the meeting detail page with names joined in and
// sources normalized into their slots.
type MeetingDetailData struct {
	Meeting     models.Meeting
	MainName    string
	SubRows     []MeetingRow
	Attendees   []models.Person
	Sources     models.SourceSet
	GroupNames  map[string]string
	PersonNames map[string]string
}

func (h *Handler) handleMeetingDetail(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.store.GetMeeting(chi.URLParam(r, "id"))
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	groups, err := h.store.ListGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	persons, err := h.store.ListPersons()
	if err != nil {
		h.fail(w, err)
		return
	}

	names := groupNames(groups)
	personsByID := make(map[string]models.Person, len(persons))
	personNames := make(map[string]string, len(persons))
	for _, p := range persons {
		personsByID[p.ID] = p
		personNames[p.ID] = p.Name
	}

	data := MeetingDetailData{
		Meeting:     *meeting,
		MainName:    names[meeting.Main.GroupID],
		Sources:     models.NormalizeSources(meeting.Sources),
		GroupNames:  names,
		PersonNames: personNames,
	}
	for _, sub := range meeting.Sub {
		data.SubRows = append(data.SubRows, MeetingRow{
			ID:        meeting.ID,
			GroupName: names[sub.GroupID],
			Num:       sub.Num,
		})
	}
	for _, id := range meeting.Attendee {
		if p, ok := personsByID[id]; ok {
			data.Attendees = append(data.Attendees, p)
		} else {
			data.Attendees = append(data.Attendees, models.Person{ID: id, Name: id})
		}
	}
	h.render(w, "meeting_detail", "Meeting "+meeting.Date, data)
}

// ---- shared loading helpers ----

func (h *Handler) sortedGroups() ([]models.Group, error) {
	groups, err := h.store.ListGroups()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// sortedMeetings orders meetings newest first, ties broken by main session
// number descending.
func (h *Handler) sortedMeetings() ([]models.Meeting, error) {
	meetings, err := h.store.ListMeetings()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		if meetings[i].Date != meetings[j].Date {
			return meetings[i].Date > meetings[j].Date
		}
		return meetings[i].Main.Num > meetings[j].Main.Num
	})
	return meetings, nil
}

func groupNames(groups []models.Group) map[string]string {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names
}

func meetingRow(m models.Meeting, names map[string]string) MeetingRow {
	name := names[m.Main.GroupID]
	if name == "" {
		name = m.Main.GroupID
	}
	return MeetingRow{
		ID:        m.ID,
		Date:      m.Date,
		GroupName: name,
		Num:       m.Main.Num,
		Holding:   m.Holding,
	}
}
