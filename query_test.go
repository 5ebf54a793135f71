package reindexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Or and Not apply to the next condition only; the link falls back to AND
// afterwards.
func TestNextOperationReset(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Where("a", CondEq, 1))
	require.NoError(t, q.Or().Where("b", CondEq, 2))
	require.NoError(t, q.Where("c", CondEq, 3))
	require.NoError(t, q.Not().Where("d", CondEq, 4))
	require.NoError(t, q.Where("e", CondEq, 5))

	ops := make([]OpType, 0, q.Entries.Size())
	for i := 0; i < q.Entries.Size(); i = q.Entries.Next(i) {
		ops = append(ops, q.Entries.OperationAt(i))
	}
	assert.Equal(t, []OpType{OpAnd, OpOr, OpAnd, OpNot, OpAnd}, ops)
}

func TestCloseBracketWithoutOpenPanics(t *testing.T) {
	q := NewQuery("items")
	assert.Panics(t, func() { q.CloseBracket() })
}

func TestBracketSubtreeSizes(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Where("a", CondEq, 1))
	q.OpenBracket()
	require.NoError(t, q.Where("b", CondEq, 2))
	q.OpenBracket()
	require.NoError(t, q.Where("c", CondEq, 3))
	q.CloseBracket()
	q.CloseBracket()
	require.NoError(t, q.Where("d", CondEq, 4))

	e := &q.Entries
	require.Equal(t, 6, e.Size())
	assert.Equal(t, 1, e.SizeAt(0))
	assert.Equal(t, 4, e.SizeAt(1))
	assert.Equal(t, 1, e.SizeAt(2))
	assert.Equal(t, 2, e.SizeAt(3))
	// The sibling after the outer bracket is the last condition.
	assert.Equal(t, 5, e.Next(1))
}

func TestConditionValueCounts(t *testing.T) {
	q := NewQuery("items")
	assert.Error(t, q.Where("a", CondRange, 1))
	assert.Error(t, q.Where("a", CondEq))
	assert.Error(t, q.Where("a", CondEmpty, 1))
	assert.NoError(t, q.Where("a", CondRange, 1, 2))
}

func TestBetweenFieldsInapplicableConditions(t *testing.T) {
	q := NewQuery("items")
	var target ErrConditionInapplicable
	assert.ErrorAs(t, q.WhereBetweenFields("a", CondAny, "b"), &target)
	assert.ErrorAs(t, q.WhereBetweenFields("a", CondEmpty, "b"), &target)
	assert.ErrorAs(t, q.WhereBetweenFields("a", CondDWithin, "b"), &target)
	assert.NoError(t, q.WhereBetweenFields("a", CondLt, "b"))
}

func TestForcedSortOrderFirstEntryOnly(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Sort("a", false))
	err := q.Sort("b", false, 1, 2)
	var target ErrForcedSortOrder
	assert.ErrorAs(t, err, &target)
}

// Narrowed columns leave room for distinct aggregations only, and a
// select filter may coexist with a single distinct aggregation at most.
func TestDistinctAggregationVsSelectFilter(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Select("id"))
	assert.True(t, q.CanAddAggregation(AggDistinct))
	assert.False(t, q.CanAddAggregation(AggSum))
	var target ErrAggregationWithSelectFields
	assert.ErrorAs(t, q.AggregateSum("price"), &target)
	assert.NoError(t, q.AggregateDistinct("name"))

	p := NewQuery("items")
	require.NoError(t, p.AggregateDistinct("name"))
	assert.True(t, p.CanAddSelectFilter())
	assert.NoError(t, p.Select("id"))

	twice := NewQuery("items")
	require.NoError(t, twice.AggregateDistinct("name"))
	require.NoError(t, twice.AggregateDistinct("color"))
	assert.False(t, twice.CanAddSelectFilter())
	assert.ErrorAs(t, twice.Select("id"), &target)

	summed := NewQuery("items")
	require.NoError(t, summed.AggregateSum("price"))
	assert.False(t, summed.CanAddSelectFilter())
	assert.ErrorAs(t, summed.Select("id"), &target)
}

func TestAggregateEntryValidation(t *testing.T) {
	_, err := NewAggregateEntry(AggSum, []string{"a", "b"})
	assert.Error(t, err)
	_, err = NewAggregateEntry(AggFacet, nil)
	assert.Error(t, err)

	sum, err := NewAggregateEntry(AggSum, []string{"a"})
	require.NoError(t, err)
	assert.Error(t, sum.SetLimit(1))
	assert.Error(t, sum.AddSortingEntry(SortingEntry{Expression: "a"}))
}

func TestSetObjectRequiresStrings(t *testing.T) {
	q := NewQuery("items")
	var target ErrObjectValueType
	err := q.SetObject("nested", variant.Array{variant.NewInt64(1)}, false)
	assert.ErrorAs(t, err, &target)
}

func TestEmptyUpdateColumn(t *testing.T) {
	q := NewQuery("items")
	var target ErrEmptyUpdateColumn
	assert.ErrorAs(t, q.Drop(""), &target)
	assert.ErrorAs(t, q.Set("", variant.Array{variant.NewInt64(1)}, false), &target)
}

func TestEmptyDistinctIgnored(t *testing.T) {
	q := NewQuery("items")
	q.Distinct("")
	assert.Equal(t, 0, q.Entries.Size())
}

// A lazy copy shares leaf payloads but owns its structure: equal-position
// edits on the copy stay private.
func TestMakeLazyCopy(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Where("a", CondEq, 1))
	q.OpenBracket()
	require.NoError(t, q.Where("b", CondEq, 2))
	q.CloseBracket()

	cp := q.Entries.MakeLazyCopy()
	require.True(t, q.Entries.Equal(&cp))

	orig, ok := q.Entries.ConditionAt(0)
	require.True(t, ok)
	copied, ok := cp.ConditionAt(0)
	require.True(t, ok)
	assert.Same(t, orig, copied)

	b, ok := cp.BracketAt(1)
	require.True(t, ok)
	b.AddEqualPosition("b", "c")
	origBracket, ok := q.Entries.BracketAt(1)
	require.True(t, ok)
	assert.Empty(t, origBracket.EqualPositions())

	cp.AppendAlwaysFalse(OpAnd)
	assert.Equal(t, 3, q.Entries.Size())
	assert.Equal(t, 4, cp.Size())
}

// Shared leaves see value updates from either side of a lazy copy.
func TestLazyCopySharesLeafPayloads(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Where("a", CondEq, 1))
	cp := q.Entries.MakeLazyCopy()

	orig, _ := q.Entries.ConditionAt(0)
	require.NoError(t, orig.SetCondAndValues(CondLt, variant.Array{variant.NewInt64(5)}))

	copied, _ := cp.ConditionAt(0)
	assert.Equal(t, CondLt, copied.Condition())
}

func TestInnerJoinHonorsPendingOr(t *testing.T) {
	q := NewQuery("orders")
	require.NoError(t, q.Where("status", CondEq, "open"))
	q.Or().InnerJoin(NewQuery("customers")).On("customer_id", CondEq, "id")

	require.Len(t, q.JoinQueries(), 1)
	assert.Equal(t, OrInnerJoin, q.JoinQueries()[0].JoinType())
	joinIdx, ok := q.Entries.JoinAt(1)
	require.True(t, ok)
	assert.Equal(t, 0, joinIdx)
	assert.Equal(t, OpOr, q.Entries.OperationAt(1))
}

func TestLeftJoinAddsNoLeaf(t *testing.T) {
	q := NewQuery("orders")
	q.LeftJoin(NewQuery("managers")).On("manager_id", CondEq, "id")
	assert.Equal(t, 0, q.Entries.Size())
	require.Len(t, q.JoinQueries(), 1)
}

func TestOnHonorsPendingOr(t *testing.T) {
	q := NewQuery("orders")
	jq := q.InnerJoin(NewQuery("customers"))
	jq.On("customer_id", CondEq, "id")
	jq.Or()
	jq.On("alt_customer_id", CondEq, "id")

	entries := jq.JoinEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, OpAnd, entries[0].Operation())
	assert.Equal(t, OpOr, entries[1].Operation())
}

func TestWalkNested(t *testing.T) {
	q := NewQuery("root")
	q.InnerJoin(NewQuery("joined")).On("a", CondEq, "b")
	merged := NewQuery("merged")
	merged.InnerJoin(NewQuery("merged_join")).On("c", CondEq, "d")
	q.Merge(merged)

	var names []string
	q.WalkNested(true, true, true, func(sub *Query) {
		names = append(names, sub.Namespace)
	})
	assert.Equal(t, []string{"root", "joined", "merged", "merged_join"}, names)
}

func TestFieldBindingIsOneShot(t *testing.T) {
	f := newQueryField("price")
	assert.False(t, f.FieldsHaveBeenSet())

	f.SetIndexData(domain.IndexData{IndexNo: 2, FieldType: variant.TypeInt64, SelectType: variant.TypeInt64})
	assert.True(t, f.IsFieldIndexed())
	assert.Equal(t, 2, f.IndexNo())

	assert.NotPanics(t, func() {
		f.SetIndexData(domain.IndexData{IndexNo: 2, FieldType: variant.TypeInt64, SelectType: variant.TypeInt64})
	})
	assert.Panics(t, func() {
		f.SetIndexData(domain.IndexData{IndexNo: 3})
	})
}
