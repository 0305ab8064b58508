package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Docs is the raw-document surface of the store the validation sweep reads.
// The sweep validates documents exactly as they sit on disk: loading them
// through the typed model first would fill absent optional fields with Go
// zero values and misreport hand-authored documents.
type Docs interface {
	GroupRegister() ([]byte, error)
	PersonRegister() ([]byte, error)
	MeetingRegister() ([]byte, error)

	GroupDocs() (map[string]json.RawMessage, error)
	PersonDocs() (map[string]json.RawMessage, error)
	MeetingDocs() (map[string]json.RawMessage, error)
}

// SweepResult reports a validation sweep: every document checked, in order,
// and one entry per failure.
type SweepResult struct {
	Checked  []string
	Failures []string
}

// Ok reports whether every checked document validated.
func (r SweepResult) Ok() bool { return len(r.Failures) == 0 }

// Sweep validates every authored register batch against its register schema
// and every stored data document against its data schema. A missing register
// file is skipped; an unreadable store is an error, a failing document is a
// recorded failure.
func Sweep(docs Docs, v Validator) (SweepResult, error) {
	var result SweepResult
	check := func(where string, err error) {
		result.Checked = append(result.Checked, where)
		if err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", where, err))
		}
	}

	registers := []struct {
		name string
		read func() ([]byte, error)
	}{
		{GroupRegister, docs.GroupRegister},
		{PersonRegister, docs.PersonRegister},
		{MeetingRegister, docs.MeetingRegister},
	}
	for _, reg := range registers {
		raw, err := reg.read()
		if err != nil {
			return result, err
		}
		if raw == nil {
			continue
		}
		check(reg.name, validateRaw(v, raw, reg.name))
	}

	dataDocs := []struct {
		name string
		load func() (map[string]json.RawMessage, error)
	}{
		{GroupData, docs.GroupDocs},
		{PersonData, docs.PersonDocs},
		{MeetingData, docs.MeetingDocs},
	}
	for _, d := range dataDocs {
		byPath, err := d.load()
		if err != nil {
			return result, err
		}
		paths := make([]string, 0, len(byPath))
		for path := range byPath {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			check(path, validateRaw(v, byPath[path], d.name))
		}
	}
	return result, nil
}

func validateRaw(v Validator, raw []byte, name string) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	return v.Validate(doc, name)
}
