package editor

import (
	"net/http"
	"strconv"
	"strings"

	"civicat/internal/catalog/models"
	dErrors "civicat/pkg/domain-errors"
)

// The meeting form carries its list-valued fields as flat text lines, one
// item per line. These helpers parse and re-serialize that format.

// parseLines splits a textarea into trimmed, non-empty lines.
func parseLines(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseSubLines parses co-hosting sessions, one "group_id,num" per line.
func parseSubLines(raw string) ([]models.SessionRef, error) {
	out := []models.SessionRef{}
	for _, line := range parseLines(raw) {
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "sub lines must be group_id,num")
		}
		num, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "sub line num must be an integer")
		}
		out = append(out, models.SessionRef{GroupID: strings.TrimSpace(parts[0]), Num: num})
	}
	return out, nil
}

// parseSourceLines parses sources, one "url|type|title" per line. Type
// defaults to other; title is optional.
func parseSourceLines(raw string) models.SourceList {
	out := models.SourceList{}
	for _, line := range parseLines(raw) {
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		src := models.Source{URL: parts[0], SourceType: models.SourceOther}
		if len(parts) > 1 && parts[1] != "" {
			src.SourceType = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			title := parts[2]
			src.Title = &title
		}
		out = append(out, src)
	}
	return out
}

// parseMaterialLines parses materials, one "url|title" per line.
func parseMaterialLines(raw string) []models.Material {
	out := []models.Material{}
	for _, line := range parseLines(raw) {
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		m := models.Material{URL: parts[0]}
		if len(parts) > 1 && parts[1] != "" {
			title := parts[1]
			m.Title = &title
		}
		out = append(out, m)
	}
	return out
}

// optional turns a form value into a present-or-absent field.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// GroupForm carries the group form fields for parsing and redisplay.
type GroupForm struct {
	Name        string
	Parent      string
	Category    string
	ListURL     string
	OfficialURL string
}

func groupFormFromRequest(r *http.Request) GroupForm {
	return GroupForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Parent:      strings.TrimSpace(r.PostFormValue("parent")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		ListURL:     strings.TrimSpace(r.PostFormValue("list_url")),
		OfficialURL: strings.TrimSpace(r.PostFormValue("official_url")),
	}
}

func groupFormOf(g models.Group) GroupForm {
	f := GroupForm{Name: g.Name, Category: g.Category, OfficialURL: g.OfficialURL}
	if g.Parent != nil {
		f.Parent = *g.Parent
	}
	if g.ListURL != nil {
		f.ListURL = *g.ListURL
	}
	return f
}

func (f GroupForm) toGroup(id string) models.Group {
	return models.Group{
		ID:          id,
		Name:        f.Name,
		Parent:      optional(f.Parent),
		Category:    f.Category,
		ListURL:     optional(f.ListURL),
		OfficialURL: f.OfficialURL,
	}
}

// PersonForm carries the person form fields.
type PersonForm struct {
	Name     string
	NameYomi string
}

func personFormFromRequest(r *http.Request) PersonForm {
	return PersonForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		NameYomi: strings.TrimSpace(r.PostFormValue("name_yomi")),
	}
}

func personFormOf(p models.Person) PersonForm {
	f := PersonForm{Name: p.Name}
	if p.NameYomi != nil {
		f.NameYomi = *p.NameYomi
	}
	return f
}

func (f PersonForm) toPerson(id string) models.Person {
	return models.Person{ID: id, Name: f.Name, NameYomi: optional(f.NameYomi)}
}

// MeetingForm carries the meeting form's flat fields, so a failed save can
// redisplay exactly what the operator typed.
type MeetingForm struct {
	MainGroupID    string
	MainNum        string
	SubLines       string
	Date           string
	Holding        string
	StartTime      string
	EndTime        string
	AgendaLines    string
	AttendeeLines  string
	AttendeeMulti  []string
	SourcesLines   string
	MaterialsLines string
}

func meetingFormFromRequest(r *http.Request) MeetingForm {
	return MeetingForm{
		MainGroupID:    strings.TrimSpace(r.PostFormValue("main_group_id")),
		MainNum:        strings.TrimSpace(r.PostFormValue("main_num")),
		SubLines:       r.PostFormValue("sub_lines"),
		Date:           strings.TrimSpace(r.PostFormValue("date")),
		Holding:        strings.TrimSpace(r.PostFormValue("holding")),
		StartTime:      r.PostFormValue("start_time"),
		EndTime:        r.PostFormValue("end_time"),
		AgendaLines:    r.PostFormValue("agenda_lines"),
		AttendeeLines:  r.PostFormValue("attendee_lines"),
		AttendeeMulti:  nonEmpty(r.PostForm["attendee_multi"]),
		SourcesLines:   r.PostFormValue("sources_lines"),
		MaterialsLines: r.PostFormValue("materials_lines"),
	}
}

func nonEmpty(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// meetingFormOf re-serializes a stored meeting into the flat form layout for
// the edit page.
func meetingFormOf(m models.Meeting) MeetingForm {
	subLines := make([]string, 0, len(m.Sub))
	for _, s := range m.Sub {
		subLines = append(subLines, s.GroupID+","+strconv.Itoa(s.Num))
	}
	sourceLines := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		title := ""
		if s.Title != nil {
			title = *s.Title
		}
		sourceLines = append(sourceLines, s.URL+"|"+s.SourceType+"|"+title)
	}
	materialLines := make([]string, 0, len(m.Materials))
	for _, mt := range m.Materials {
		title := ""
		if mt.Title != nil {
			title = *mt.Title
		}
		materialLines = append(materialLines, mt.URL+"|"+title)
	}
	f := MeetingForm{
		MainGroupID:    m.Main.GroupID,
		MainNum:        strconv.Itoa(m.Main.Num),
		SubLines:       strings.Join(subLines, "\n"),
		Date:           m.Date,
		Holding:        m.Holding,
		AgendaLines:    strings.Join(m.Agenda, "\n"),
		AttendeeLines:  strings.Join(m.Attendee, "\n"),
		SourcesLines:   strings.Join(sourceLines, "\n"),
		MaterialsLines: strings.Join(materialLines, "\n"),
	}
	if m.StartTime != nil {
		f.StartTime = *m.StartTime
	}
	if m.EndTime != nil {
		f.EndTime = *m.EndTime
	}
	return f
}

func (f MeetingForm) toMeeting(id string) (models.Meeting, error) {
	num, err := strconv.Atoi(f.MainNum)
	if err != nil {
		return models.Meeting{}, dErrors.New(dErrors.CodeBadRequest, "main num must be an integer")
	}
	sub, err := parseSubLines(f.SubLines)
	if err != nil {
		return models.Meeting{}, err
	}

	// an explicit multi-select wins over the free-text lines
	attendees := f.AttendeeMulti
	if len(attendees) == 0 {
		attendees = parseLines(f.AttendeeLines)
	}

	return models.Meeting{
		ID:        id,
		Main:      models.SessionRef{GroupID: f.MainGroupID, Num: num},
		Sub:       sub,
		Date:      f.Date,
		Holding:   f.Holding,
		StartTime: optional(f.StartTime),
		EndTime:   optional(f.EndTime),
		Agenda:    parseLines(f.AgendaLines),
		Attendee:  attendees,
		Sources:   parseSourceLines(f.SourcesLines),
		Materials: parseMaterialLines(f.MaterialsLines),
	}, nil
}
