// Package editor serves the form-based CRUD screens over the record store.
// It is the write path of the catalog: every save is schema-validated before
// it reaches disk, and a failed save redisplays the operator's input
// alongside the error.
package editor

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civicat/internal/catalog/models"
	"civicat/internal/catalog/schema"
	"civicat/internal/tree"
	dErrors "civicat/pkg/domain-errors"
	"civicat/pkg/platform/sentinel"
)

//go:embed templates/*.html
var templateFS embed.FS

// Store is the read/write surface the editor needs.
type Store interface {
	ListGroups() ([]models.Group, error)
	ListPersons() ([]models.Person, error)
	ListMeetings() ([]models.Meeting, error)
	GetGroup(id string) (*models.Group, error)
	GetPerson(id string) (*models.Person, error)
	GetMeeting(id string) (*models.Meeting, error)
	PutGroup(models.Group) error
	PutPerson(models.Person) error
	PutMeeting(models.Meeting) error
	DeleteGroup(id string) error
	DeletePerson(id string) error
	DeleteMeeting(id string) error
}

// Validator gates records before they are persisted.
type Validator interface {
	Validate(doc any, name string) error
}

// Handler wires the editor screens to the store.
type Handler struct {
	store     Store
	validator Validator
	logger    *slog.Logger
	templates map[string]*template.Template
	newID     func() string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithIDFunc overrides identifier minting for direct UI creation.
func WithIDFunc(newID func() string) Option {
	return func(h *Handler) { h.newID = newID }
}

// New parses the embedded templates and returns a ready handler.
func New(store Store, validator Validator, logger *slog.Logger, opts ...Option) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		store:     store,
		validator: validator,
		logger:    logger,
		templates: templates,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

var editorPages = []string{
	"index", "group_list", "group_detail", "group_form", "group_tree",
	"person_list", "person_detail", "person_form",
	"meeting_list", "meeting_detail", "meeting_form",
}

func parseTemplates() (map[string]*template.Template, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout template: %w", err)
	}
	out := make(map[string]*template.Template, len(editorPages))
	for _, page := range editorPages {
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

// Register mounts every editor route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/health", h.handleHealth)

	r.Route("/group", func(r chi.Router) {
		r.Get("/", h.handleGroupList)
		r.Get("/tree", h.handleGroupTree)
		r.Get("/new", h.handleGroupNew)
		r.Post("/new", h.handleGroupCreate)
		r.Get("/{id}", h.handleGroupDetail)
		r.Get("/{id}/edit", h.handleGroupEdit)
		r.Post("/{id}/edit", h.handleGroupUpdate)
		r.Post("/{id}/delete", h.handleGroupDelete)
	})

	r.Route("/person", func(r chi.Router) {
		r.Get("/", h.handlePersonList)
		r.Get("/new", h.handlePersonNew)
		r.Post("/new", h.handlePersonCreate)
		r.Get("/{id}", h.handlePersonDetail)
		r.Get("/{id}/edit", h.handlePersonEdit)
		r.Post("/{id}/edit", h.handlePersonUpdate)
		r.Post("/{id}/delete", h.handlePersonDelete)
	})

	r.Route("/meeting", func(r chi.Router) {
		r.Get("/", h.handleMeetingList)
		r.Get("/new", h.handleMeetingNew)
		r.Post("/new", h.handleMeetingCreate)
		r.Get("/{id}", h.handleMeetingDetail)
		r.Get("/{id}/edit", h.handleMeetingEdit)
		r.Post("/{id}/edit", h.handleMeetingUpdate)
		r.Post("/{id}/delete", h.handleMeetingDelete)
	})
}

type page struct {
	Title string
	Error string
	Data  any
}

func (h *Handler) render(w http.ResponseWriter, name, title, errMsg string, data any) {
	t, ok := h.templates[name]
	if !ok {
		h.fail(w, fmt.Errorf("unknown template %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", page{Title: title, Error: errMsg, Data: data}); err != nil {
		h.logger.Error("render failed", "template", name, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("editor request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index", "civicat editor", "", nil)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- group ----

func (h *Handler) handleGroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "group_list", "Groups", "", groups)
}

func (h *Handler) handleGroupTree(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups()
	if err != nil {
		h.fail(w, err)
		return
	}
	t, err := tree.Build(groups, 0)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "group_tree", "Group tree", "", t)
}

// GroupFormData backs the group form for both create and edit.
type GroupFormData struct {
	ID   string
	Mode string
	Form GroupForm
}

func (h *Handler) handleGroupNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, "group_form", "New group", "", GroupFormData{Mode: "new"})
}

func (h *Handler) handleGroupCreate(w http.ResponseWriter, r *http.Request) {
	form := groupFormFromRequest(r)
	id := h.newID()
	if err := h.saveGroup(form.toGroup(id)); err != nil {
		h.render(w, "group_form", "New group", dErrors.MessageOf(err), GroupFormData{Mode: "new", Form: form})
		return
	}
	http.Redirect(w, r, "/group/"+id, http.StatusSeeOther)
}

func (h *Handler) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	group, err := h.store.GetGroup(chi.URLParam(r, "id"))
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "group_detail", group.Name, "", group)
}

func (h *Handler) handleGroupEdit(w http.ResponseWriter, r *http.Request) {
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
	h.render(w, "group_form", "Edit "+group.Name, "", GroupFormData{ID: id, Mode: "edit", Form: groupFormOf(*group)})
}

func (h *Handler) handleGroupUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form := groupFormFromRequest(r)
	if err := h.saveGroup(form.toGroup(id)); err != nil {
		h.render(w, "group_form", "Edit group", dErrors.MessageOf(err), GroupFormData{ID: id, Mode: "edit", Form: form})
		return
	}
	http.Redirect(w, r, "/group/"+id, http.StatusSeeOther)
}

func (h *Handler) handleGroupDelete(w http.ResponseWriter, r *http.Request) {
	// No cascade: children and meeting references to this group go dangling.
	if err := h.store.DeleteGroup(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/group/", http.StatusSeeOther)
}

func (h *Handler) saveGroup(g models.Group) error {
	if err := h.validator.Validate(g, schema.GroupData); err != nil {
		return err
	}
	return h.store.PutGroup(g)
}

// ---- person ----

// PersonFormData backs the person form.
type PersonFormData struct {
	ID   string
	Mode string
	Form PersonForm
}

func (h *Handler) handlePersonList(w http.ResponseWriter, r *http.Request) {
	persons, err := h.store.ListPersons()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "person_list", "Persons", "", persons)
}

func (h *Handler) handlePersonNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, "person_form", "New person", "", PersonFormData{Mode: "new"})
}

func (h *Handler) handlePersonCreate(w http.ResponseWriter, r *http.Request) {
	form := personFormFromRequest(r)
	id := h.newID()
	if err := h.savePerson(form.toPerson(id)); err != nil {
		h.render(w, "person_form", "New person", dErrors.MessageOf(err), PersonFormData{Mode: "new", Form: form})
		return
	}
	http.Redirect(w, r, "/person/"+id, http.StatusSeeOther)
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
	h.render(w, "person_detail", person.Name, "", person)
}

func (h *Handler) handlePersonEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	person, err := h.store.GetPerson(id)
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "person_form", "Edit "+person.Name, "", PersonFormData{ID: id, Mode: "edit", Form: personFormOf(*person)})
}

func (h *Handler) handlePersonUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form := personFormFromRequest(r)
	if err := h.savePerson(form.toPerson(id)); err != nil {
		h.render(w, "person_form", "Edit person", dErrors.MessageOf(err), PersonFormData{ID: id, Mode: "edit", Form: form})
		return
	}
	http.Redirect(w, r, "/person/"+id, http.StatusSeeOther)
}

func (h *Handler) handlePersonDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePerson(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/person/", http.StatusSeeOther)
}

func (h *Handler) savePerson(p models.Person) error {
	if err := h.validator.Validate(p, schema.PersonData); err != nil {
		return err
	}
	return h.store.PutPerson(p)
}

// ---- meeting ----

// MeetingFormData backs the meeting form, including the pickers for known
// groups and persons.
type MeetingFormData struct {
	ID      string
	Mode    string
	Form    MeetingForm
	Groups  []models.Group
	Persons []models.Person
}

// MeetingListData backs the meeting listing with display names joined in.
type MeetingListData struct {
	Meetings    []models.Meeting
	GroupNames  map[string]string
	PersonNames map[string]string
}

func (h *Handler) handleMeetingList(w http.ResponseWriter, r *http.Request) {
	data, err := h.meetingListData()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "meeting_list", "Meetings", "", data)
}

func (h *Handler) meetingListData() (MeetingListData, error) {
	meetings, err := h.store.ListMeetings()
	if err != nil {
		return MeetingListData{}, err
	}
	groupNames, personNames, err := h.nameMaps()
	if err != nil {
		return MeetingListData{}, err
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		if meetings[i].Date != meetings[j].Date {
			return meetings[i].Date > meetings[j].Date
		}
		return meetings[i].Main.Num > meetings[j].Main.Num
	})
	return MeetingListData{Meetings: meetings, GroupNames: groupNames, PersonNames: personNames}, nil
}

func (h *Handler) nameMaps() (groups, persons map[string]string, err error) {
	groupList, err := h.store.ListGroups()
	if err != nil {
		return nil, nil, err
	}
	personList, err := h.store.ListPersons()
	if err != nil {
		return nil, nil, err
	}
	groups = make(map[string]string, len(groupList))
	for _, g := range groupList {
		groups[g.ID] = g.Name
	}
	persons = make(map[string]string, len(personList))
	for _, p := range personList {
		persons[p.ID] = p.Name
	}
	return groups, persons, nil
}

func (h *Handler) meetingFormData(id, mode string, form MeetingForm) (MeetingFormData, error) {
	groups, err := h.store.ListGroups()
	if err != nil {
		return MeetingFormData{}, err
	}
	persons, err := h.store.ListPersons()
	if err != nil {
		return MeetingFormData{}, err
	}
	return MeetingFormData{ID: id, Mode: mode, Form: form, Groups: groups, Persons: persons}, nil
}

func (h *Handler) handleMeetingNew(w http.ResponseWriter, r *http.Request) {
	data, err := h.meetingFormData("", "new", MeetingForm{})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "meeting_form", "New meeting", "", data)
}

func (h *Handler) handleMeetingCreate(w http.ResponseWriter, r *http.Request) {
	form := meetingFormFromRequest(r)
	id := h.newID()
	if err := h.saveMeetingForm(form, id); err != nil {
		data, derr := h.meetingFormData("", "new", form)
		if derr != nil {
			h.fail(w, derr)
			return
		}
		h.render(w, "meeting_form", "New meeting", dErrors.MessageOf(err), data)
		return
	}
	http.Redirect(w, r, "/meeting/"+id, http.StatusSeeOther)
}

// MeetingDetailData backs the meeting detail page.
type MeetingDetailData struct {
	Meeting     models.Meeting
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
	groupNames, personNames, err := h.nameMaps()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "meeting_detail", "Meeting "+meeting.Date, "", MeetingDetailData{
		Meeting:     *meeting,
		GroupNames:  groupNames,
		PersonNames: personNames,
	})
}

func (h *Handler) handleMeetingEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	meeting, err := h.store.GetMeeting(id)
	if errors.Is(err, sentinel.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	data, err := h.meetingFormData(id, "edit", meetingFormOf(*meeting))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "meeting_form", "Edit meeting", "", data)
}

func (h *Handler) handleMeetingUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form := meetingFormFromRequest(r)
	if err := h.saveMeetingForm(form, id); err != nil {
		data, derr := h.meetingFormData(id, "edit", form)
		if derr != nil {
			h.fail(w, derr)
			return
		}
		h.render(w, "meeting_form", "Edit meeting", dErrors.MessageOf(err), data)
		return
	}
	http.Redirect(w, r, "/meeting/"+id, http.StatusSeeOther)
}

func (h *Handler) handleMeetingDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteMeeting(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/meeting/", http.StatusSeeOther)
}

func (h *Handler) saveMeetingForm(form MeetingForm, id string) error {
	meeting, err := form.toMeeting(id)
	if err != nil {
		return err
	}
	if err := h.validator.Validate(meeting, schema.MeetingData); err != nil {
		return err
	}
	return h.store.PutMeeting(meeting)
}
