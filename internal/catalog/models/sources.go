package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Source types carried by register entries and canonical records. Legacy
// spellings ("minutes", "notice") are folded into their current slots when
// sources are normalized.
const (
	SourceMeetingPage  = "meeting_page"
	SourceTranscript   = "transcript"
	SourceAnnouncement = "announcement"
	SourceOther        = "other"
)

// Source is a single reference URL attached to a meeting.
type Source struct {
	URL        string  `json:"url"`
	SourceType string  `json:"source_type"`
	Title      *string `json:"title"`
}

// Material is a distributed document attached to a meeting.
type Material struct {
	URL   string  `json:"url"`
	Title *string `json:"title"`
}

// SourceSet is the categorized view of a meeting's sources: one slot per
// well-known type plus an overflow list. The one-time migration pass persists
// this shape; the viewer renders from it.
type SourceSet struct {
	MeetingPage  *string    `json:"meeting_page"`
	Transcript   *string    `json:"transcript"`
	Announcement *string    `json:"announcement"`
	Other        []Material `json:"other"`
}

// SourceList is the canonical list form. Records migrated to the categorized
// map form still decode into it, so both on-disk shapes load uniformly.
type SourceList []Source

func (s *SourceList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var set SourceSet
		if err := json.Unmarshal(trimmed, &set); err != nil {
			return err
		}
		*s = set.Flatten()
		return nil
	}
	var list []Source
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// Flatten turns the categorized set back into list form, slots first.
func (s SourceSet) Flatten() SourceList {
	var list SourceList
	appendSlot := func(url *string, sourceType string) {
		if url != nil && *url != "" {
			list = append(list, Source{URL: *url, SourceType: sourceType})
		}
	}
	appendSlot(s.MeetingPage, SourceMeetingPage)
	appendSlot(s.Transcript, SourceTranscript)
	appendSlot(s.Announcement, SourceAnnouncement)
	for _, o := range s.Other {
		if o.URL == "" {
			continue
		}
		list = append(list, Source{URL: o.URL, SourceType: SourceOther, Title: o.Title})
	}
	return list
}

// NormalizeSources categorizes a source list into the slot form. The first
// source of each well-known type wins its slot; everything else, including
// sources with unknown types, lands in Other. Sources with a blank URL are
// dropped.
func NormalizeSources(list SourceList) SourceSet {
	set := SourceSet{Other: []Material{}}
	for _, src := range list {
		url := strings.TrimSpace(src.URL)
		if url == "" {
			continue
		}
		switch src.SourceType {
		case SourceMeetingPage:
			if set.MeetingPage == nil {
				set.MeetingPage = &url
				continue
			}
		case SourceTranscript, "minutes":
			if set.Transcript == nil {
				set.Transcript = &url
				continue
			}
		case SourceAnnouncement, "notice":
			if set.Announcement == nil {
				set.Announcement = &url
				continue
			}
		}
		set.Other = append(set.Other, Material{URL: url, Title: src.Title})
	}
	return set
}
