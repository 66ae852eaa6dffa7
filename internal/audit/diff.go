package audit

import (
	"reflect"
	"slices"
)

// internalFields are storage identity fields that carry no meaning for audit
// consumers and are stripped from every snapshot regardless of policy.
var internalFields = []string{"id"}

// computeDiff cleans both snapshots under the given policy and, when both
// sides are present, computes the set of fields whose values differ.
//
// A nil result means no diff applies (login actions, for example). A non-nil
// result with nil FieldsChanged means either a one-sided snapshot or a
// two-sided comparison that found nothing changed.
//
// Redacted fields compare as the sentinel on both sides, so a change in a
// redacted field's underlying value never shows up in FieldsChanged. That is
// an accepted property of redaction, not a defect: the stored trail must not
// leak even the fact of which sensitive value changed.
func computeDiff(before, after Snapshot, policy Policy) *Diff {
	if before == nil && after == nil {
		return nil
	}

	diff := &Diff{
		Before: cleanSnapshot(before, policy),
		After:  cleanSnapshot(after, policy),
	}

	if diff.Before == nil || diff.After == nil {
		return diff
	}

	var changed []string
	for field := range unionKeys(diff.Before, diff.After) {
		beforeVal, inBefore := diff.Before[field]
		afterVal, inAfter := diff.After[field]
		if inBefore != inAfter || !equalValues(beforeVal, afterVal) {
			changed = append(changed, field)
		}
	}
	if len(changed) > 0 {
		slices.Sort(changed)
		diff.FieldsChanged = changed
	}
	return diff
}

// cleanSnapshot copies s, drops excluded and storage-internal fields, then
// masks redacted fields. Exclusion runs before redaction on purpose: a field
// listed in both sets is gone before the redaction pass sees it.
func cleanSnapshot(s Snapshot, policy Policy) Snapshot {
	if s == nil {
		return nil
	}

	cleaned := make(Snapshot, len(s))
	for k, v := range s {
		cleaned[k] = v
	}

	for _, field := range policy.ExcludedFields {
		delete(cleaned, field)
	}
	for _, field := range internalFields {
		delete(cleaned, field)
	}
	for _, field := range policy.RedactedFields {
		if _, ok := cleaned[field]; ok {
			cleaned[field] = Redacted
		}
	}
	return cleaned
}

func unionKeys(a, b Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// equalValues compares two snapshot values structurally: nested maps and
// slices by value, scalars by type-strict equality. There is no coercion
// across types, so the string "1" and the number 1 are unequal.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
