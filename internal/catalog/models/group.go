package models

// Group is a deliberative body in the catalog.
//
// Invariants:
//   - ID is assigned once (by conversion or direct creation) and never changes
//   - Name is unique within the kind under trim normalization
//   - Parent, when set, refers to another Group's ID and must not form a cycle
//
// Deleting a group does not cascade: children and meeting references are left
// dangling. The tree builder treats a group whose parent no longer resolves
// as a root.
type Group struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Parent      *string `json:"parent"`
	Category    string  `json:"category"`
	ListURL     *string `json:"list_url"`
	OfficialURL string  `json:"official_url"`
}

// HasParent reports whether the group declares a non-empty parent reference.
func (g Group) HasParent() bool {
	return g.Parent != nil && *g.Parent != ""
}
