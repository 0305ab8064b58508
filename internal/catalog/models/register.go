package models

// Register records are the human-authored inputs to conversion. Reference
// fields (group parent, meeting main/sub/attendee) carry display names, or
// literal identifiers pasted from already-converted data; the conversion
// pipeline resolves them either way.

// GroupRegister is a register entry for a group.
type GroupRegister struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Parent      *string `json:"parent"`
	Category    string  `json:"category"`
	ListURL     *string `json:"list_url"`
	OfficialURL string  `json:"official_url"`
}

// PersonRegister is a register entry for a person.
type PersonRegister struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	NameYomi *string `json:"name_yomi"`
}

// MeetingRegister is a register entry for a meeting. Main.GroupID, the sub
// group references and the attendee entries are names, not identifiers.
type MeetingRegister struct {
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
