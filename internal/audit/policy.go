package audit

// Policy declares, per entity type, whether mutations are tracked and which
// fields are stripped or masked before storage. Policies are defined at
// startup and immutable afterwards.
type Policy struct {
	// Tracked gates record emission entirely. Untracked types are a silent
	// skip, not an error.
	Tracked bool
	// ExcludedFields are removed from snapshots before diffing, so they never
	// appear in stored state or in FieldsChanged. Typical entries are fields
	// that always change, like update timestamps.
	ExcludedFields []string
	// RedactedFields keep their key but have the value replaced with the
	// Redacted sentinel. Exclusion runs first, so a field listed in both sets
	// is excluded.
	RedactedFields []string
}

// Registry maps entity type names to their audit policy. Adding a trackable
// entity type is a configuration change here, not a code change in the diff
// engine.
type Registry map[string]Policy

// Lookup returns the policy for an entity type. The second return value is
// false when no policy is declared, which callers treat the same as untracked.
func (r Registry) Lookup(entity string) (Policy, bool) {
	p, ok := r[entity]
	return p, ok
}

// DefaultRegistry declares the entity types this service tracks.
func DefaultRegistry() Registry {
	return Registry{
		"Book": {
			Tracked:        true,
			ExcludedFields: []string{"updatedAt"},
		},
		"User": {
			Tracked:        true,
			ExcludedFields: []string{"credentials", "updatedAt"},
			RedactedFields: []string{"credentials"},
		},
	}
}
