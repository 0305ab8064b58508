// Package schema gates every record against its JSON schema before it is
// allowed to reach storage. Schemas are embedded so the binaries stay
// self-contained; validation itself sits behind an interface so it can be
// swapped without touching the pipeline.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/santhosh-tekuri/jsonschema/v6"

	dErrors "civicat/pkg/domain-errors"
)

// Schema names understood by the validator. The register tier validates a
// whole authored batch before conversion; the data tier validates a single
// canonical record before it is written.
const (
	GroupRegister   = "group.register"
	GroupData       = "group.data"
	PersonRegister  = "person.register"
	PersonData      = "person.data"
	MeetingRegister = "meeting.register"
	MeetingData     = "meeting.data"
)

//go:embed base/*.json
var baseFS embed.FS

var schemaFiles = map[string]string{
	GroupRegister:   "base/group.register.schema.json",
	GroupData:       "base/group.data.schema.json",
	PersonRegister:  "base/person.register.schema.json",
	PersonData:      "base/person.data.schema.json",
	MeetingRegister: "base/meeting.basic.register.schema.json",
	MeetingData:     "base/meeting.basic.data.schema.json",
}

// Validator checks a record against a named schema.
type Validator interface {
	Validate(doc any, name string) error
}

// JSONSchemaValidator validates records against the embedded JSON schemas.
type JSONSchemaValidator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema up front so a broken schema
// fails at startup, not mid-conversion.
func NewValidator() (*JSONSchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	for _, path := range schemaFiles {
		raw, err := fs.ReadFile(baseFS, path)
		if err != nil {
			return nil, fmt.Errorf("read embedded schema %s: %w", path, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse embedded schema %s: %w", path, err)
		}
		if err := compiler.AddResource(path, doc); err != nil {
			return nil, fmt.Errorf("register schema %s: %w", path, err)
		}
	}

	v := &JSONSchemaValidator{schemas: make(map[string]*jsonschema.Schema, len(schemaFiles))}
	for name, path := range schemaFiles {
		compiled, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		v.schemas[name] = compiled
	}
	return v, nil
}

// Validate checks doc against the named schema. doc may be a typed record or
// an already-decoded JSON value; it is canonicalized through JSON encoding
// either way so the schema sees exactly what would be persisted.
func (v *JSONSchemaValidator) Validate(doc any, name string) error {
	compiled, ok := v.schemas[name]
	if !ok {
		return dErrors.Newf(dErrors.CodeInternal, "unknown schema %q", name)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode record for validation")
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decode record for validation")
	}
	if err := compiled.Validate(instance); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("record violates %s schema", name))
	}
	return nil
}
