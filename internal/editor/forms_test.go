package editor

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicat/internal/catalog/models"
	dErrors "civicat/pkg/domain-errors"
)

func TestParseSubLines(t *testing.T) {
	t.Run("parses group and session number", func(t *testing.T) {
		refs, err := parseSubLines("g-1,3\n g-2 , 4 \n\n")
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, models.SessionRef{GroupID: "g-1", Num: 3}, refs[0])
		assert.Equal(t, models.SessionRef{GroupID: "g-2", Num: 4}, refs[1])
	})

	t.Run("malformed line is a bad request", func(t *testing.T) {
		_, err := parseSubLines("just-an-id")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	t.Run("non-numeric session number is a bad request", func(t *testing.T) {
		_, err := parseSubLines("g-1,three")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func TestParseSourceLines(t *testing.T) {
	list := parseSourceLines("https://example.org/a|transcript|Minutes\nhttps://example.org/b\nhttps://example.org/c||Untyped")

	require.Len(t, list, 3)
	assert.Equal(t, models.SourceTranscript, list[0].SourceType)
	require.NotNil(t, list[0].Title)
	assert.Equal(t, "Minutes", *list[0].Title)

	assert.Equal(t, models.SourceOther, list[1].SourceType, "type defaults to other")
	assert.Nil(t, list[1].Title)

	assert.Equal(t, models.SourceOther, list[2].SourceType)
	require.NotNil(t, list[2].Title)
}

func TestParseMaterialLines(t *testing.T) {
	materials := parseMaterialLines("https://example.org/doc|Handout\nhttps://example.org/raw")

	require.Len(t, materials, 2)
	require.NotNil(t, materials[0].Title)
	assert.Equal(t, "Handout", *materials[0].Title)
	assert.Nil(t, materials[1].Title)
}

func meetingFormFrom(t *testing.T, values url.Values) MeetingForm {
	t.Helper()
	req := httptest.NewRequest("POST", "/meeting/new", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return meetingFormFromRequest(req)
}

func TestMeetingFormToMeeting(t *testing.T) {
	form := meetingFormFrom(t, url.Values{
		"main_group_id":  {"g-1"},
		"main_num":       {"3"},
		"sub_lines":      {"g-2,1"},
		"date":           {"2026-04-01"},
		"holding":        {"regular"},
		"start_time":     {"10:00"},
		"agenda_lines":   {"Opening\nBudget"},
		"attendee_lines": {"p-1\np-2"},
	})

	m, err := form.toMeeting("m-1")
	require.NoError(t, err)

	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, models.SessionRef{GroupID: "g-1", Num: 3}, m.Main)
	require.Len(t, m.Sub, 1)
	assert.Equal(t, "2026-04-01", m.Date)
	require.NotNil(t, m.StartTime)
	assert.Equal(t, "10:00", *m.StartTime)
	assert.Nil(t, m.EndTime)
	assert.Equal(t, []string{"Opening", "Budget"}, m.Agenda)
	assert.Equal(t, []string{"p-1", "p-2"}, m.Attendee)
}

func TestMeetingFormAttendeeSelectionWins(t *testing.T) {
	form := meetingFormFrom(t, url.Values{
		"main_group_id":  {"g-1"},
		"main_num":       {"1"},
		"date":           {"2026-04-01"},
		"holding":        {"regular"},
		"attendee_multi": {"p-9"},
		"attendee_lines": {"p-1\np-2"},
	})

	m, err := form.toMeeting("m-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-9"}, m.Attendee)
}

func TestMeetingFormBadNumber(t *testing.T) {
	form := MeetingForm{MainGroupID: "g-1", MainNum: "three", Date: "2026-04-01", Holding: "regular"}

	_, err := form.toMeeting("m-1")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestMeetingFormRoundTrip(t *testing.T) {
	start := "10:00"
	title := "Minutes"
	m := models.Meeting{
		ID:        "m-1",
		Main:      models.SessionRef{GroupID: "g-1", Num: 3},
		Sub:       []models.SessionRef{{GroupID: "g-2", Num: 1}},
		Date:      "2026-04-01",
		Holding:   "regular",
		StartTime: &start,
		Agenda:    []string{"Opening"},
		Attendee:  []string{"p-1"},
		Sources:   models.SourceList{{URL: "https://example.org/a", SourceType: "transcript", Title: &title}},
		Materials: []models.Material{{URL: "https://example.org/doc"}},
	}

	form := meetingFormOf(m)
	back, err := form.toMeeting("m-1")
	require.NoError(t, err)
	assert.Equal(t, m, back)
}
