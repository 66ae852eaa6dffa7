package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff(t *testing.T) {
	t.Run("nil when both snapshots absent", func(t *testing.T) {
		assert.Nil(t, computeDiff(nil, nil, Policy{Tracked: true}))
	})

	t.Run("one-sided create leaves fieldsChanged absent", func(t *testing.T) {
		diff := computeDiff(nil, Snapshot{"title": "A"}, Policy{Tracked: true})
		require.NotNil(t, diff)
		assert.Nil(t, diff.Before)
		assert.Equal(t, Snapshot{"title": "A"}, diff.After)
		assert.Nil(t, diff.FieldsChanged)
	})

	t.Run("one-sided delete leaves fieldsChanged absent", func(t *testing.T) {
		diff := computeDiff(Snapshot{"title": "A"}, nil, Policy{Tracked: true})
		require.NotNil(t, diff)
		assert.Equal(t, Snapshot{"title": "A"}, diff.Before)
		assert.Nil(t, diff.After)
		assert.Nil(t, diff.FieldsChanged)
	})

	t.Run("changed field is reported", func(t *testing.T) {
		diff := computeDiff(
			Snapshot{"title": "A", "authors": "X"},
			Snapshot{"title": "B", "authors": "X"},
			Policy{Tracked: true},
		)
		require.NotNil(t, diff)
		assert.Equal(t, []string{"title"}, diff.FieldsChanged)
	})

	t.Run("field present on only one side is reported", func(t *testing.T) {
		diff := computeDiff(
			Snapshot{"title": "A"},
			Snapshot{"title": "A", "tags": []any{"new"}},
			Policy{Tracked: true},
		)
		require.NotNil(t, diff)
		assert.Equal(t, []string{"tags"}, diff.FieldsChanged)
	})

	t.Run("identical snapshots leave fieldsChanged absent", func(t *testing.T) {
		diff := computeDiff(
			Snapshot{"title": "A", "nested": map[string]any{"a": 1}},
			Snapshot{"title": "A", "nested": map[string]any{"a": 1}},
			Policy{Tracked: true},
		)
		require.NotNil(t, diff)
		assert.Nil(t, diff.FieldsChanged, "no spurious changes for equal snapshots")
	})

	t.Run("nested structures compare by value", func(t *testing.T) {
		diff := computeDiff(
			Snapshot{"meta": map[string]any{"tags": []any{"a", "b"}}},
			Snapshot{"meta": map[string]any{"tags": []any{"a", "c"}}},
			Policy{Tracked: true},
		)
		require.NotNil(t, diff)
		assert.Equal(t, []string{"meta"}, diff.FieldsChanged)
	})

	t.Run("no coercion across types", func(t *testing.T) {
		diff := computeDiff(
			Snapshot{"year": "1"},
			Snapshot{"year": 1},
			Policy{Tracked: true},
		)
		require.NotNil(t, diff)
		assert.Equal(t, []string{"year"}, diff.FieldsChanged)
	})

	t.Run("multiple changes are sorted", func(t *testing.T) {
		diff := computeDiff(
			Snapshot{"title": "A", "authors": "X", "publishedBy": "P"},
			Snapshot{"title": "B", "authors": "Y", "publishedBy": "P"},
			Policy{Tracked: true},
		)
		require.NotNil(t, diff)
		assert.Equal(t, []string{"authors", "title"}, diff.FieldsChanged)
	})
}

func TestComputeDiffPolicy(t *testing.T) {
	t.Run("excluded fields never appear in snapshots or changes", func(t *testing.T) {
		policy := Policy{Tracked: true, ExcludedFields: []string{"updatedAt"}}
		diff := computeDiff(
			Snapshot{"title": "A", "updatedAt": "t1"},
			Snapshot{"title": "B", "updatedAt": "t2"},
			policy,
		)
		require.NotNil(t, diff)
		assert.NotContains(t, diff.Before, "updatedAt")
		assert.NotContains(t, diff.After, "updatedAt")
		assert.Equal(t, []string{"title"}, diff.FieldsChanged)
	})

	t.Run("redacted fields store only the sentinel", func(t *testing.T) {
		policy := Policy{Tracked: true, RedactedFields: []string{"credentials"}}
		diff := computeDiff(
			Snapshot{"name": "u", "credentials": "old-hash"},
			Snapshot{"name": "u", "credentials": "new-hash"},
			policy,
		)
		require.NotNil(t, diff)
		assert.Equal(t, Redacted, diff.Before["credentials"])
		assert.Equal(t, Redacted, diff.After["credentials"])
		// The sentinel matches on both sides, so the underlying change is
		// invisible to change detection.
		assert.Nil(t, diff.FieldsChanged)
	})

	t.Run("redaction skips fields that are absent", func(t *testing.T) {
		policy := Policy{Tracked: true, RedactedFields: []string{"credentials"}}
		diff := computeDiff(Snapshot{"name": "u"}, nil, policy)
		require.NotNil(t, diff)
		assert.NotContains(t, diff.Before, "credentials")
	})

	t.Run("exclusion wins over redaction", func(t *testing.T) {
		policy := Policy{
			Tracked:        true,
			ExcludedFields: []string{"credentials"},
			RedactedFields: []string{"credentials"},
		}
		diff := computeDiff(Snapshot{"credentials": "hash", "name": "u"}, nil, policy)
		require.NotNil(t, diff)
		assert.NotContains(t, diff.Before, "credentials")
	})

	t.Run("storage identity fields are stripped", func(t *testing.T) {
		diff := computeDiff(Snapshot{"id": "b1", "title": "A"}, nil, Policy{Tracked: true})
		require.NotNil(t, diff)
		assert.NotContains(t, diff.Before, "id")
	})

	t.Run("input snapshots are not mutated", func(t *testing.T) {
		policy := Policy{Tracked: true, ExcludedFields: []string{"updatedAt"}, RedactedFields: []string{"secret"}}
		before := Snapshot{"title": "A", "updatedAt": "t1", "secret": "s"}
		computeDiff(before, nil, policy)
		assert.Equal(t, Snapshot{"title": "A", "updatedAt": "t1", "secret": "s"}, before)
	})
}
