package models

// SessionRef ties a meeting to a group and that group's session number.
type SessionRef struct {
	GroupID string `json:"group_id"`
	Num     int    `json:"num"`
}

// Meeting is a single convened session.
//
// Main is the convening body; Sub lists co-hosting bodies in order. Main,
// Sub and Attendee hold hard references that must resolve to existing
// Group/Person identifiers at conversion time.
type Meeting struct {
	ID        string       `json:"id"`
	Main      SessionRef   `json:"main"`
	Sub       []SessionRef `json:"sub"`
	Date      string       `json:"date"`
	Holding   string       `json:"holding"`
	StartTime *string      `json:"start_time"`
	EndTime   *string      `json:"end_time"`
	Agenda    []string     `json:"agenda"`
	Attendee  []string     `json:"attendee"`
	Sources   SourceList   `json:"sources"`
	Materials []Material   `json:"materials"`
}
