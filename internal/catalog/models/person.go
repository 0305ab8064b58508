package models

// Person is an individual who can be listed as a meeting attendee.
type Person struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	NameYomi *string `json:"name_yomi"`
}
