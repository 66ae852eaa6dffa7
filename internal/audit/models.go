// Package audit records who changed what, when, and under which request. It is
// append-only by contract: nothing in this package can modify or delete a
// record once written.
package audit

import "time"

// Action enumerates the mutation kinds that produce audit records.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
	ActionLogin   Action = "login"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRestore, ActionLogin:
		return true
	}
	return false
}

// SystemActor is recorded when a request scope exists but carries no
// authenticated actor.
const SystemActor = "system"

// Redacted is the sentinel stored in place of redacted field values. It is
// never reversible; the original value does not leave the service.
const Redacted = "[REDACTED]"

// Snapshot is a point-in-time key-value representation of an entity's state.
// Values may be scalars, nested maps, or slices; the diff engine compares them
// structurally without knowledge of entity schemas.
type Snapshot map[string]any

// Diff captures the cleaned before/after states of a mutation. FieldsChanged
// is nil both when only one side was supplied (nothing to compare) and when a
// two-sided comparison found no differences; consumers must not conflate the
// two by inspecting FieldsChanged alone.
type Diff struct {
	Before        Snapshot `json:"before,omitempty"`
	After         Snapshot `json:"after,omitempty"`
	FieldsChanged []string `json:"fieldsChanged,omitempty"`
}

// Record is one immutable audit entry.
type Record struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entityId"`
	Action    Action         `json:"action"`
	ActorID   string         `json:"actorId"`
	RequestID string         `json:"requestId"`
	Diff      *Diff          `json:"diff,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
