package convert

import (
	"strings"

	"github.com/google/uuid"

	dErrors "civicat/pkg/domain-errors"
)

// NameRegistry translates human-supplied names into stable identifiers.
// Normalization is surrounding-whitespace trim only; case and punctuation are
// significant. Every registered identifier is also keyed to itself, so
// register entries that embed a pasted identifier resolve like names do.
type NameRegistry struct {
	nameToID map[string]string
	mint     func() string
}

// RegistryOption customizes a NameRegistry.
type RegistryOption func(*NameRegistry)

// WithMinter overrides how fresh identifiers are minted. Tests use this for
// deterministic identifiers; the default is uuid.NewString.
func WithMinter(mint func() string) RegistryOption {
	return func(r *NameRegistry) { r.mint = mint }
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry(opts ...RegistryOption) *NameRegistry {
	r := &NameRegistry{
		nameToID: map[string]string{},
		mint:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// Register maps name to id, and id to itself. The first registration of a
// key wins; later registrations never overwrite, so colliding normalized
// names surface as stale lookups rather than silent remapping.
func (r *NameRegistry) Register(name, id string) {
	for _, key := range []string{normalizeName(name), normalizeName(id)} {
		if key == "" {
			continue
		}
		if _, ok := r.nameToID[key]; !ok {
			r.nameToID[key] = id
		}
	}
}

// Resolve looks up the identifier for input. It never mutates the registry
// and never guesses: a miss is an unresolved-reference error carrying the
// original input text.
func (r *NameRegistry) Resolve(input string) (string, error) {
	if id, ok := r.nameToID[normalizeName(input)]; ok {
		return id, nil
	}
	return "", dErrors.Newf(dErrors.CodeUnresolvedReference, "name not registered: %s", input)
}

// Lookup is Resolve without the error, for callers probing whether a name is
// already known.
func (r *NameRegistry) Lookup(input string) (string, bool) {
	id, ok := r.nameToID[normalizeName(input)]
	return id, ok
}

// ResolveOrCreate looks input up and, on a miss, mints a fresh identifier,
// registers it and returns it. Only valid where creating a forward reference
// is semantically allowed, never for reference fields with a closed universe.
func (r *NameRegistry) ResolveOrCreate(input string) string {
	if id, ok := r.nameToID[normalizeName(input)]; ok {
		return id
	}
	id := r.mint()
	r.Register(input, id)
	return id
}
