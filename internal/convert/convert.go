// Package convert implements the register-to-data pipeline: it loads
// human-authored register batches, resolves display names to stable
// identifiers, validates every produced record against its schema and writes
// canonical records to the store. Re-running a conversion reuses previously
// assigned identifiers, so the pipeline is idempotent under name stability.
package convert

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"civicat/internal/catalog/models"
	"civicat/internal/catalog/schema"
	dErrors "civicat/pkg/domain-errors"
)

// Store is the record store surface the pipeline depends on. *Register
// methods return the raw authored batch (nil when none exists); list methods
// seed the registries; exists/path methods classify writes and report
// dry-run destinations.
type Store interface {
	GroupRegister() ([]byte, error)
	PersonRegister() ([]byte, error)
	MeetingRegister() ([]byte, error)

	ListGroups() ([]models.Group, error)
	ListPersons() ([]models.Person, error)
	ListMeetings() ([]models.Meeting, error)

	PutGroup(models.Group) error
	PutPerson(models.Person) error
	PutMeeting(models.Meeting) error

	GroupPath(id string) string
	PersonPath(id string) string
	MeetingPath(id string) string

	GroupExists(id string) bool
	PersonExists(id string) bool
	MeetingExists(id string) bool
}

// Validator gates records against a named schema.
type Validator interface {
	Validate(doc any, name string) error
}

// Recorder observes conversion outcomes; main wires it to Prometheus.
type Recorder interface {
	RecordConversion(kind, outcome string)
}

// Converter runs register-to-data conversion for every entity kind.
type Converter struct {
	store     Store
	validator Validator
	logger    *slog.Logger
	recorder  Recorder
	mint      func() string
}

// Option customizes a Converter.
type Option func(*Converter)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

func WithRecorder(recorder Recorder) Option {
	return func(c *Converter) { c.recorder = recorder }
}

// WithIDFunc overrides identifier minting, mainly for deterministic tests.
func WithIDFunc(mint func() string) Option {
	return func(c *Converter) { c.mint = mint }
}

// New constructs a converter over the given store and validator.
func New(store Store, validator Validator, opts ...Option) (*Converter, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	c := &Converter{
		store:     store,
		validator: validator,
		logger:    slog.Default(),
		mint:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Options controls a group or person conversion run. Dry runs perform full
// resolution and validation but suppress every write, recording the
// destination paths instead.
type Options struct {
	DryRun bool
}

// MeetingOptions adds the missing-reference policy to Options. Lenient runs
// skip a register entry whose main, sub or attendee reference does not
// resolve, record the error, and continue; the default is to fail the run at
// the first unresolved reference.
type MeetingOptions struct {
	DryRun  bool
	Lenient bool
}

// RunOptions controls a full conversion run across all kinds.
type RunOptions struct {
	DryRun  bool
	Lenient bool
}

// Run converts groups, then persons, then meetings. The ordering is a
// sequencing contract, not an incidental call order: the meeting converter
// consumes the completed group and person registries.
func (c *Converter) Run(opts RunOptions) (*Summary, error) {
	sum := &Summary{}

	groups, groupResult, err := c.ConvertGroups(Options{DryRun: opts.DryRun})
	sum.Group = groupResult
	if err != nil {
		return sum, err
	}

	persons, personResult, err := c.ConvertPersons(Options{DryRun: opts.DryRun})
	sum.Person = personResult
	if err != nil {
		return sum, err
	}

	meetingResult, err := c.ConvertMeetings(groups, persons, MeetingOptions{
		DryRun:  opts.DryRun,
		Lenient: opts.Lenient,
	})
	sum.Meeting = meetingResult
	return sum, err
}

// ConvertGroups converts the group register batch and returns the completed
// name registry (seed entries plus newly assigned identifiers) for use by
// dependent conversions. An unresolvable parent reference fails the run;
// nothing is written on a failed run.
func (c *Converter) ConvertGroups(opts Options) (*NameRegistry, *Result, error) {
	result := newResult()
	registry := NewNameRegistry(WithMinter(c.mint))

	regs, err := loadRegister[models.GroupRegister](c, c.store.GroupRegister, schema.GroupRegister)
	if err != nil {
		return registry, result, err
	}

	existing, err := c.store.ListGroups()
	if err != nil {
		return registry, result, dErrors.Wrap(err, dErrors.CodeInternal, "load existing groups")
	}
	for _, g := range existing {
		registry.Register(g.Name, g.ID)
	}

	// Assign identifiers for the whole batch before resolving any parent,
	// since a parent may name a group that appears later in the register.
	ids := make([]string, len(regs))
	for i, rec := range regs {
		if rec.ID != "" {
			ids[i] = rec.ID
			registry.Register(rec.Name, rec.ID)
			continue
		}
		ids[i] = registry.ResolveOrCreate(rec.Name)
	}

	out := make([]models.Group, len(regs))
	for i, rec := range regs {
		var parent *string
		if rec.Parent != nil && strings.TrimSpace(*rec.Parent) != "" {
			parentID, err := registry.Resolve(*rec.Parent)
			if err != nil {
				return registry, result, dErrors.Wrap(err, dErrors.CodeUnresolvedReference,
					fmt.Sprintf("group %q: unresolvable parent", rec.Name))
			}
			parent = &parentID
		}
		g := models.Group{
			ID:          ids[i],
			Name:        rec.Name,
			Parent:      parent,
			Category:    rec.Category,
			ListURL:     rec.ListURL,
			OfficialURL: rec.OfficialURL,
		}
		if err := c.validator.Validate(g, schema.GroupData); err != nil {
			return registry, result, err
		}
		out[i] = g
	}

	for _, g := range out {
		if err := c.persist(result, opts.DryRun, "group", c.store.GroupPath(g.ID),
			c.store.GroupExists(g.ID), func() error { return c.store.PutGroup(g) }); err != nil {
			return registry, result, err
		}
	}

	c.logger.Info("group conversion finished",
		"created", result.Created, "updated", result.Updated, "dry_run", opts.DryRun)
	return registry, result, nil
}

// ConvertPersons converts the person register batch and returns the
// completed person name registry.
func (c *Converter) ConvertPersons(opts Options) (*NameRegistry, *Result, error) {
	result := newResult()
	registry := NewNameRegistry(WithMinter(c.mint))

	regs, err := loadRegister[models.PersonRegister](c, c.store.PersonRegister, schema.PersonRegister)
	if err != nil {
		return registry, result, err
	}

	existing, err := c.store.ListPersons()
	if err != nil {
		return registry, result, dErrors.Wrap(err, dErrors.CodeInternal, "load existing persons")
	}
	for _, p := range existing {
		registry.Register(p.Name, p.ID)
	}

	out := make([]models.Person, len(regs))
	for i, rec := range regs {
		id := rec.ID
		if id == "" {
			id = registry.ResolveOrCreate(rec.Name)
		} else {
			registry.Register(rec.Name, id)
		}
		p := models.Person{ID: id, Name: rec.Name, NameYomi: rec.NameYomi}
		if err := c.validator.Validate(p, schema.PersonData); err != nil {
			return registry, result, err
		}
		out[i] = p
	}

	for _, p := range out {
		if err := c.persist(result, opts.DryRun, "person", c.store.PersonPath(p.ID),
			c.store.PersonExists(p.ID), func() error { return c.store.PutPerson(p) }); err != nil {
			return registry, result, err
		}
	}

	c.logger.Info("person conversion finished",
		"created", result.Created, "updated", result.Updated, "dry_run", opts.DryRun)
	return registry, result, nil
}

// ConvertMeetings converts the meeting register batch. It requires the
// completed group and person registries, so groups and persons must be
// converted first. Every record is resolved and validated before any record
// is written: a strict-mode failure therefore converts zero meetings.
func (c *Converter) ConvertMeetings(groups, persons *NameRegistry, opts MeetingOptions) (*Result, error) {
	result := newResult()
	if groups == nil || persons == nil {
		return result, dErrors.New(dErrors.CodeInternal, "group and person registries are required")
	}

	regs, err := loadRegister[models.MeetingRegister](c, c.store.MeetingRegister, schema.MeetingRegister)
	if err != nil {
		return result, err
	}

	// Meetings carry no name; idempotent reconversion keys existing records
	// on their natural identity (main group, date, session number) instead.
	seed := NewNameRegistry(WithMinter(c.mint))
	existing, err := c.store.ListMeetings()
	if err != nil {
		return result, dErrors.Wrap(err, dErrors.CodeInternal, "load existing meetings")
	}
	for _, m := range existing {
		seed.Register(meetingKey(m.Main.GroupID, m.Date, m.Main.Num), m.ID)
	}

	resolved := make([]models.Meeting, 0, len(regs))
	for _, rec := range regs {
		m, err := c.resolveMeeting(rec, groups, persons, seed)
		if err != nil {
			if opts.Lenient && dErrors.CodeOf(err) == dErrors.CodeUnresolvedReference {
				result.Skipped++
				result.Errors = append(result.Errors, err.Error())
				c.recordOutcome("meeting", "skipped")
				continue
			}
			return result, err
		}
		if err := c.validator.Validate(m, schema.MeetingData); err != nil {
			return result, err
		}
		resolved = append(resolved, m)
	}

	for _, m := range resolved {
		if err := c.persist(result, opts.DryRun, "meeting", c.store.MeetingPath(m.ID),
			c.store.MeetingExists(m.ID), func() error { return c.store.PutMeeting(m) }); err != nil {
			return result, err
		}
	}

	c.logger.Info("meeting conversion finished",
		"created", result.Created, "updated", result.Updated, "skipped", result.Skipped,
		"dry_run", opts.DryRun, "lenient", opts.Lenient)
	return result, nil
}

// resolveMeeting turns one register entry into a canonical record. Any
// unresolved main/sub/attendee reference is returned as an
// unresolved-reference error naming the offending input.
func (c *Converter) resolveMeeting(rec models.MeetingRegister, groups, persons, seed *NameRegistry) (models.Meeting, error) {
	var zero models.Meeting

	mainID, err := groups.Resolve(rec.Main.GroupID)
	if err != nil {
		return zero, dErrors.Wrap(err, dErrors.CodeUnresolvedReference,
			fmt.Sprintf("meeting on %s: main group", rec.Date))
	}

	sub := make([]models.SessionRef, 0, len(rec.Sub))
	for _, s := range rec.Sub {
		groupID, err := groups.Resolve(s.GroupID)
		if err != nil {
			return zero, dErrors.Wrap(err, dErrors.CodeUnresolvedReference,
				fmt.Sprintf("meeting on %s: sub group", rec.Date))
		}
		sub = append(sub, models.SessionRef{GroupID: groupID, Num: s.Num})
	}

	attendee := make([]string, 0, len(rec.Attendee))
	for _, a := range rec.Attendee {
		personID, err := persons.Resolve(a)
		if err != nil {
			return zero, dErrors.Wrap(err, dErrors.CodeUnresolvedReference,
				fmt.Sprintf("meeting on %s: attendee", rec.Date))
		}
		attendee = append(attendee, personID)
	}

	id := rec.ID
	if id == "" {
		id = seed.ResolveOrCreate(meetingKey(mainID, rec.Date, rec.Main.Num))
	}

	return models.Meeting{
		ID:        id,
		Main:      models.SessionRef{GroupID: mainID, Num: rec.Main.Num},
		Sub:       sub,
		Date:      rec.Date,
		Holding:   rec.Holding,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		Agenda:    orEmpty(rec.Agenda),
		Attendee:  attendee,
		Sources:   defaultSourceTypes(rec.Sources),
		Materials: orEmpty(rec.Materials),
	}, nil
}

// persist writes one record, or records its planned path under dry-run, and
// classifies the write as created or updated.
func (c *Converter) persist(result *Result, dryRun bool, kind, path string, exists bool, put func() error) error {
	if dryRun {
		result.Planned = append(result.Planned, path)
		c.recordOutcome(kind, "planned")
		return nil
	}
	if err := put(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "write "+kind+" record")
	}
	if exists {
		result.Updated++
		c.recordOutcome(kind, "updated")
	} else {
		result.Created++
		c.recordOutcome(kind, "created")
	}
	return nil
}

func (c *Converter) recordOutcome(kind, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordConversion(kind, outcome)
	}
}

// loadRegister reads a register batch, validates the raw document against the
// register-tier schema, then decodes it into typed records. A missing
// register file is an empty batch.
func loadRegister[T any](c *Converter, read func() ([]byte, error), schemaName string) ([]T, error) {
	raw, err := read()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read register")
	}
	if raw == nil {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "register file is not valid JSON")
	}
	if err := c.validator.Validate(doc, schemaName); err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode register records")
	}
	return out, nil
}

func meetingKey(groupID, date string, num int) string {
	return fmt.Sprintf("%s|%s|%d", groupID, date, num)
}

func defaultSourceTypes(list models.SourceList) models.SourceList {
	out := make(models.SourceList, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s.SourceType) == "" {
			s.SourceType = models.SourceOther
		}
		out = append(out, s)
	}
	return out
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
