package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximbogatyrev/reindexer"
	"github.com/maximbogatyrev/reindexer/adapter/evaluator"
	"github.com/maximbogatyrev/reindexer/adapter/payload"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

type M = map[string]any

func testEvaluator(t *testing.T) *evaluator.Evaluator {
	t.Helper()
	ns, err := payload.NewNamespace("items",
		payload.IndexDef{Name: "id", JSONPaths: []string{"id"}, Type: variant.TypeInt64},
		payload.IndexDef{Name: "price", JSONPaths: []string{"price"}, Type: variant.TypeDouble},
	)
	require.NoError(t, err)
	return evaluator.NewEvaluator("items", ns)
}

func updateEntries(t *testing.T, build func(q *reindexer.Query) error) []reindexer.UpdateEntry {
	t.Helper()
	q := reindexer.NewQuery("items")
	require.NoError(t, build(q))
	return q.UpdateFields()
}

func TestSetScalar(t *testing.T) {
	m := NewModifier()
	doc := M{"id": 1}
	entries := updateEntries(t, func(q *reindexer.Query) error {
		return q.Set("price", variant.Array{variant.NewInt64(99)}, false)
	})
	require.NoError(t, m.Modify(doc, entries...))
	assert.Equal(t, int64(99), doc["price"])
}

func TestSetArray(t *testing.T) {
	m := NewModifier()
	doc := M{"id": 1}
	entries := updateEntries(t, func(q *reindexer.Query) error {
		return q.SetArray("tags", variant.Array{variant.NewInt64(1), variant.NewInt64(2)})
	})
	require.NoError(t, m.Modify(doc, entries...))
	assert.Equal(t, []any{int64(1), int64(2)}, doc["tags"])
}

func TestSetNestedPath(t *testing.T) {
	m := NewModifier()
	doc := M{"id": 1}
	entries := updateEntries(t, func(q *reindexer.Query) error {
		return q.Set("specs.weight", variant.Array{variant.NewDouble(1.5)}, false)
	})
	require.NoError(t, m.Modify(doc, entries...))
	specs, ok := doc["specs"].(M)
	require.True(t, ok)
	assert.Equal(t, 1.5, specs["weight"])
}

func TestSetExpression(t *testing.T) {
	m := NewModifier(WithEvaluator(testEvaluator(t)))
	doc := M{"id": 1, "price": 10.0}
	entries := updateEntries(t, func(q *reindexer.Query) error {
		return q.Set("price", variant.Array{variant.NewString("price * 2 + 1")}, true)
	})
	require.NoError(t, m.Modify(doc, entries...))
	assert.Equal(t, 21.0, doc["price"])
}

func TestSetExpressionWithoutEvaluator(t *testing.T) {
	m := NewModifier()
	entries := updateEntries(t, func(q *reindexer.Query) error {
		return q.Set("price", variant.Array{variant.NewString("price * 2")}, true)
	})
	var target ErrNoEvaluator
	assert.ErrorAs(t, m.Modify(M{}, entries...), &target)
}

func TestSetObject(t *testing.T) {
	m := NewModifier()
	doc := M{"id": 1}
	entries := updateEntries(t, func(q *reindexer.Query) error {
		return q.SetObject("nested", variant.Array{variant.NewString(`{"a": 1, "b": [2, 3]}`)}, false)
	})
	require.NoError(t, m.Modify(doc, entries...))
	nested, ok := doc["nested"].(M)
	require.True(t, ok)
	assert.Equal(t, 1.0, nested["a"])
}

func TestDrop(t *testing.T) {
	m := NewModifier()
	doc := M{"id": 1, "obsolete": "x", "specs": M{"old": 1}}
	entries := updateEntries(t, func(q *reindexer.Query) error {
		if err := q.Drop("obsolete"); err != nil {
			return err
		}
		return q.Drop("specs.old")
	})
	require.NoError(t, m.Modify(doc, entries...))
	assert.NotContains(t, doc, "obsolete")
	assert.NotContains(t, doc["specs"].(M), "old")
}
