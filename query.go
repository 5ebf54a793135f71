package reindexer

import (
	"slices"

	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Query is a request against one namespace: an expression tree plus
// sorting, paging, aggregations, select filters and update payloads, with
// joined and merged sub-queries attached. It is built through the fluent
// methods below and carried to the executor either directly or through the
// binary codec.
type Query struct {
	// Namespace is the collection the query runs against.
	Namespace string
	// Entries is the expression tree.
	Entries Entries

	sortingEntries  []SortingEntry
	forcedSortOrder variant.Array
	joinQueries     []*JoinedQuery
	mergeQueries    []*JoinedQuery
	selectFilter    []string
	selectFunctions []string
	aggregations    []AggregateEntry
	updateFields    []UpdateEntry

	start      uint32
	count      uint32
	calcTotal  CalcTotalMode
	debugLevel int
	strictMode StrictMode
	explain    bool
	withRank   bool

	nextOp OpType
}

// NewQuery returns an empty query against namespace.
func NewQuery(namespace string) *Query {
	return &Query{
		Namespace: namespace,
		start:     defaultOffset,
		count:     defaultLimit,
		nextOp:    OpAnd,
	}
}

// JoinedQuery is a query attached to a parent as a join or merge stream.
type JoinedQuery struct {
	Query
	joinType    JoinType
	joinEntries []QueryJoinEntry
}

// NewJoinedQuery wraps q as a sub-query of kind joinType.
func NewJoinedQuery(joinType JoinType, q *Query) *JoinedQuery {
	return &JoinedQuery{Query: *q, joinType: joinType}
}

// JoinType returns how the sub-query is attached.
func (jq *JoinedQuery) JoinType() JoinType { return jq.joinType }

// JoinEntries returns the ON predicates.
func (jq *JoinedQuery) JoinEntries() []QueryJoinEntry { return jq.joinEntries }

// On appends an ON predicate linking leftField of the parent namespace to
// rightField of this one. A pending Or applies to the predicate.
func (jq *JoinedQuery) On(leftField string, cond CondType, rightField string) *JoinedQuery {
	jq.joinEntries = append(jq.joinEntries, NewQueryJoinEntry(jq.nextOp, leftField, cond, rightField))
	jq.nextOp = OpAnd
	return jq
}

// Or makes the next condition (or ON predicate) fold with OR.
func (q *Query) Or() *Query {
	q.nextOp = OpOr
	return q
}

// Not makes the next condition fold negated.
func (q *Query) Not() *Query {
	q.nextOp = OpNot
	return q
}

// takeOp consumes the pending operation and restores the AND default.
func (q *Query) takeOp() OpType {
	op := q.nextOp
	q.nextOp = OpAnd
	return op
}

// Where appends a value condition on field. Values are converted from
// plain Go values; slices become tuples.
func (q *Query) Where(field string, cond CondType, values ...any) error {
	va := make(variant.Array, 0, len(values))
	for _, v := range values {
		el, err := variant.FromInterface(v)
		if err != nil {
			return err
		}
		// A single slice argument is the value list itself, not a tuple.
		if len(values) == 1 && el.Type() == variant.TypeTuple {
			va = append(va, el.Tuple()...)
			continue
		}
		va = append(va, el)
	}
	return q.WhereVariant(field, cond, va)
}

// WhereVariant appends a value condition with already-typed values.
func (q *Query) WhereVariant(field string, cond CondType, values variant.Array) error {
	qe, err := newQueryEntry(field, cond, values)
	if err != nil {
		return err
	}
	q.Entries.Append(q.takeOp(), qe)
	return nil
}

// WhereComposite appends a condition on a composite index; each value set
// becomes one tuple.
func (q *Query) WhereComposite(field string, cond CondType, values ...variant.Array) error {
	va := make(variant.Array, 0, len(values))
	for _, sub := range values {
		va = append(va, variant.NewTuple(sub...))
	}
	return q.WhereVariant(field, cond, va)
}

// WhereBetweenFields appends a condition comparing two fields of the same
// row.
func (q *Query) WhereBetweenFields(left string, cond CondType, right string) error {
	be, err := newBetweenFieldsQueryEntry(left, cond, right)
	if err != nil {
		return err
	}
	q.Entries.AppendBetweenFields(q.takeOp(), be)
	return nil
}

// DWithin appends a geometry condition: field within distance of point.
func (q *Query) DWithin(field string, point variant.Point, distance float64) error {
	return q.WhereVariant(field, CondDWithin, variant.Array{
		variant.NewPoint(point),
		variant.NewDouble(distance),
	})
}

// AlwaysFalse appends a leaf that never matches.
func (q *Query) AlwaysFalse() *Query {
	q.Entries.AppendAlwaysFalse(q.takeOp())
	return q
}

// Distinct asks the executor to deduplicate results by field. An empty
// name is ignored.
func (q *Query) Distinct(field string) *Query {
	if field == "" {
		return q
	}
	q.Entries.Append(q.takeOp(), newDistinctEntry(field))
	return q
}

// OpenBracket starts a grouping scope; the pending operation links the
// whole group.
func (q *Query) OpenBracket() *Query {
	q.Entries.OpenBracket(q.takeOp())
	return q
}

// CloseBracket ends the innermost scope. Panics when no scope is open.
func (q *Query) CloseBracket() *Query {
	q.Entries.CloseBracket()
	return q
}

// EqualPosition constrains the listed array fields of the current scope to
// match at the same element index.
func (q *Query) EqualPosition(fields ...string) *Query {
	q.Entries.AddEqualPosition(fields...)
	return q
}

// Sort appends a sort clause. A forced order (documents with the listed
// first-clause values come first, in that order) is only allowed on the
// first clause.
func (q *Query) Sort(expression string, desc bool, forcedOrder ...any) error {
	if len(forcedOrder) > 0 && len(q.sortingEntries) > 0 {
		return domain.ErrForcedSortOrder{}
	}
	for _, v := range forcedOrder {
		el, err := variant.FromInterface(v)
		if err != nil {
			return err
		}
		q.forcedSortOrder = append(q.forcedSortOrder, el)
	}
	q.sortingEntries = append(q.sortingEntries, SortingEntry{Expression: expression, Desc: desc})
	return nil
}

// SortingEntries returns the sort clauses.
func (q *Query) SortingEntries() []SortingEntry { return q.sortingEntries }

// ForcedSortOrder returns the forced first-clause value order.
func (q *Query) ForcedSortOrder() variant.Array { return q.forcedSortOrder }

// Limit caps the number of returned documents.
func (q *Query) Limit(limit uint32) *Query {
	q.count = limit
	return q
}

// Offset skips the first offset matching documents.
func (q *Query) Offset(offset uint32) *Query {
	q.start = offset
	return q
}

// HasLimit reports whether Limit was set.
func (q *Query) HasLimit() bool { return q.count != defaultLimit }

// HasOffset reports whether Offset was set.
func (q *Query) HasOffset() bool { return q.start != defaultOffset }

// LimitValue returns the limit, or its unset default.
func (q *Query) LimitValue() uint32 { return q.count }

// OffsetValue returns the offset, or its unset default.
func (q *Query) OffsetValue() uint32 { return q.start }

// ReqTotal asks for the exact total match count.
func (q *Query) ReqTotal() *Query {
	q.calcTotal = ModeAccurateTotal
	return q
}

// CachedTotal asks for a cached total match count.
func (q *Query) CachedTotal() *Query {
	q.calcTotal = ModeCachedTotal
	return q
}

// CalcTotal returns the requested total-count mode.
func (q *Query) CalcTotal() CalcTotalMode { return q.calcTotal }

// Explain asks the executor to attach its plan to the results.
func (q *Query) Explain() *Query {
	q.explain = true
	return q
}

// IsExplain reports whether a plan was requested.
func (q *Query) IsExplain() bool { return q.explain }

// WithRank asks for ranked full-text results.
func (q *Query) WithRank() *Query {
	q.withRank = true
	return q
}

// IsWithRank reports whether ranked results were requested.
func (q *Query) IsWithRank() bool { return q.withRank }

// Strict sets how the executor treats unknown field names.
func (q *Query) Strict(mode StrictMode) *Query {
	q.strictMode = mode
	return q
}

// StrictModeValue returns the strict mode.
func (q *Query) StrictModeValue() StrictMode { return q.strictMode }

// Debug sets the execution log verbosity.
func (q *Query) Debug(level int) *Query {
	q.debugLevel = level
	return q
}

// DebugLevel returns the execution log verbosity.
func (q *Query) DebugLevel() int { return q.debugLevel }

// CanAddAggregation reports whether an aggregation of type t can be added
// without conflicting with select filters. Once columns are narrowed only
// a distinct aggregation fits.
func (q *Query) CanAddAggregation(t AggType) bool {
	return t == AggDistinct || len(q.selectFilter) == 0
}

// CanAddSelectFilter reports whether select filters can be added without
// conflicting with the present aggregations: a single distinct aggregation
// is the only one a filter may coexist with.
func (q *Query) CanAddSelectFilter() bool {
	if len(q.aggregations) == 0 {
		return true
	}
	return len(q.aggregations) == 1 && q.aggregations[0].aggType == AggDistinct
}

// Aggregate appends an aggregation request.
func (q *Query) Aggregate(entry AggregateEntry) error {
	if !q.CanAddAggregation(entry.aggType) {
		return domain.ErrAggregationWithSelectFields{}
	}
	q.aggregations = append(q.aggregations, entry)
	return nil
}

// AggregateSum appends a sum aggregation over field.
func (q *Query) AggregateSum(field string) error {
	return q.aggregateField(AggSum, field)
}

// AggregateAvg appends an average aggregation over field.
func (q *Query) AggregateAvg(field string) error {
	return q.aggregateField(AggAvg, field)
}

// AggregateMin appends a minimum aggregation over field.
func (q *Query) AggregateMin(field string) error {
	return q.aggregateField(AggMin, field)
}

// AggregateMax appends a maximum aggregation over field.
func (q *Query) AggregateMax(field string) error {
	return q.aggregateField(AggMax, field)
}

// AggregateDistinct appends a distinct aggregation over field.
func (q *Query) AggregateDistinct(field string) error {
	return q.aggregateField(AggDistinct, field)
}

// AggregateFacet appends a facet aggregation over fields and returns it so
// sort, limit and offset can be attached.
func (q *Query) AggregateFacet(fields ...string) (*AggregateEntry, error) {
	entry, err := NewAggregateEntry(AggFacet, fields)
	if err != nil {
		return nil, err
	}
	if err := q.Aggregate(entry); err != nil {
		return nil, err
	}
	return &q.aggregations[len(q.aggregations)-1], nil
}

func (q *Query) aggregateField(t AggType, field string) error {
	entry, err := NewAggregateEntry(t, []string{field})
	if err != nil {
		return err
	}
	return q.Aggregate(entry)
}

// Aggregations returns the aggregation requests.
func (q *Query) Aggregations() []AggregateEntry { return q.aggregations }

// Select narrows the returned columns.
func (q *Query) Select(fields ...string) error {
	if !q.CanAddSelectFilter() {
		return domain.ErrAggregationWithSelectFields{}
	}
	q.selectFilter = append(q.selectFilter, fields...)
	return nil
}

// SelectFilter returns the narrowed column list.
func (q *Query) SelectFilter() []string { return q.selectFilter }

// Functions attaches select function texts to the query.
func (q *Query) Functions(functions ...string) *Query {
	q.selectFunctions = append(q.selectFunctions, functions...)
	return q
}

// SelectFunctions returns the attached select function texts.
func (q *Query) SelectFunctions() []string { return q.selectFunctions }

// Set writes values into column on matching documents. When isExpression
// is set, the single value is an arithmetic expression evaluated per
// document.
func (q *Query) Set(column string, values variant.Array, isExpression bool) error {
	return q.addUpdate(column, values, FieldModeSet, isExpression, len(values) > 1)
}

// SetArray writes values into column as an array value even when there is
// a single element.
func (q *Query) SetArray(column string, values variant.Array) error {
	return q.addUpdate(column, values, FieldModeSet, false, true)
}

// SetObject writes json object payloads into column. Every value must be
// a string holding a json object.
func (q *Query) SetObject(column string, values variant.Array, isArray bool) error {
	for _, v := range values {
		if v.Type() != variant.TypeString {
			return domain.ErrObjectValueType{Type: v.Type()}
		}
	}
	return q.addUpdate(column, values, FieldModeSetJson, false, isArray)
}

// Drop removes column from matching documents.
func (q *Query) Drop(column string) error {
	return q.addUpdate(column, nil, FieldModeDrop, false, false)
}

func (q *Query) addUpdate(column string, values variant.Array, mode FieldModifyMode, isExpression, isArray bool) error {
	entry, err := NewUpdateEntry(column, values, mode, isExpression, isArray)
	if err != nil {
		return err
	}
	q.updateFields = append(q.updateFields, entry)
	return nil
}

// UpdateFields returns the column mutations.
func (q *Query) UpdateFields() []UpdateEntry { return q.updateFields }

// Join attaches sub as a joined sub-query with a single ON predicate
// leftField <cond> rightField. Inner joins also become a leaf of the
// expression tree: a pending Or turns an inner join into an OR INNER one.
func (q *Query) Join(joinType JoinType, leftField string, cond CondType, rightField string, sub *Query) *JoinedQuery {
	jq := NewJoinedQuery(joinType, sub)
	jq.joinEntries = append(jq.joinEntries, NewQueryJoinEntry(OpAnd, leftField, cond, rightField))
	q.attachJoin(jq)
	return jq
}

// InnerJoin attaches sub as an inner join to be linked with ON.
func (q *Query) InnerJoin(sub *Query) *JoinedQuery {
	if q.nextOp == OpOr {
		return q.AddJoin(OrInnerJoin, sub)
	}
	return q.AddJoin(InnerJoin, sub)
}

// LeftJoin attaches sub as a left join to be linked with ON.
func (q *Query) LeftJoin(sub *Query) *JoinedQuery {
	return q.AddJoin(LeftJoin, sub)
}

// OrInnerJoin attaches sub as an inner join folded with OR.
func (q *Query) OrInnerJoin(sub *Query) *JoinedQuery {
	return q.AddJoin(OrInnerJoin, sub)
}

// AddJoin attaches sub as a joined sub-query of kind joinType. ON
// predicates are added on the returned JoinedQuery.
func (q *Query) AddJoin(joinType JoinType, sub *Query) *JoinedQuery {
	jq := NewJoinedQuery(joinType, sub)
	q.attachJoin(jq)
	return jq
}

// attachJoin stores jq and, for inner joins, plants the leaf that folds
// the join verdict into the expression tree.
func (q *Query) attachJoin(jq *JoinedQuery) {
	q.joinQueries = append(q.joinQueries, jq)
	if jq.joinType == LeftJoin {
		q.takeOp()
		return
	}
	op := q.takeOp()
	if jq.joinType == OrInnerJoin {
		op = OpOr
	}
	q.Entries.AppendJoin(op, len(q.joinQueries)-1)
}

// JoinQueries returns the joined sub-queries.
func (q *Query) JoinQueries() []*JoinedQuery { return q.joinQueries }

// Merge attaches sub as a merge stream: its results are appended to this
// query's.
func (q *Query) Merge(sub *Query) *Query {
	q.mergeQueries = append(q.mergeQueries, NewJoinedQuery(Merge, sub))
	return q
}

// MergeQueries returns the merge streams.
func (q *Query) MergeQueries() []*JoinedQuery { return q.mergeQueries }

// WalkNested visits q, its merge streams and all join sub-queries,
// recursively.
func (q *Query) WalkNested(visitSelf bool, visitMerged bool, visitJoined bool, visitor func(*Query)) {
	if visitSelf {
		visitor(q)
	}
	if visitJoined {
		for _, jq := range q.joinQueries {
			jq.WalkNested(true, visitMerged, visitJoined, visitor)
		}
	}
	if visitMerged {
		for _, mq := range q.mergeQueries {
			mq.WalkNested(true, visitMerged, visitJoined, visitor)
		}
	}
}

// Equal reports whether two queries mean the same request. Transient
// builder state and field binding do not take part.
func (q *Query) Equal(o *Query) bool {
	if q.Namespace != o.Namespace ||
		q.start != o.start || q.count != o.count ||
		q.calcTotal != o.calcTotal ||
		q.debugLevel != o.debugLevel || q.strictMode != o.strictMode ||
		q.explain != o.explain || q.withRank != o.withRank {
		return false
	}
	if !q.Entries.Equal(&o.Entries) {
		return false
	}
	if len(q.sortingEntries) != len(o.sortingEntries) {
		return false
	}
	for n := range q.sortingEntries {
		if q.sortingEntries[n] != o.sortingEntries[n] {
			return false
		}
	}
	if !q.forcedSortOrder.Equal(o.forcedSortOrder) {
		return false
	}
	if !slices.Equal(q.selectFilter, o.selectFilter) || !slices.Equal(q.selectFunctions, o.selectFunctions) {
		return false
	}
	if len(q.aggregations) != len(o.aggregations) {
		return false
	}
	for n := range q.aggregations {
		if !q.aggregations[n].equal(&o.aggregations[n]) {
			return false
		}
	}
	if len(q.updateFields) != len(o.updateFields) {
		return false
	}
	for n := range q.updateFields {
		if !q.updateFields[n].equal(&o.updateFields[n]) {
			return false
		}
	}
	if len(q.joinQueries) != len(o.joinQueries) || len(q.mergeQueries) != len(o.mergeQueries) {
		return false
	}
	for n := range q.joinQueries {
		if !q.joinQueries[n].equalJoined(o.joinQueries[n]) {
			return false
		}
	}
	for n := range q.mergeQueries {
		if !q.mergeQueries[n].equalJoined(o.mergeQueries[n]) {
			return false
		}
	}
	return true
}

func (jq *JoinedQuery) equalJoined(o *JoinedQuery) bool {
	if jq.joinType != o.joinType || len(jq.joinEntries) != len(o.joinEntries) {
		return false
	}
	for n := range jq.joinEntries {
		if !jq.joinEntries[n].equal(&o.joinEntries[n]) {
			return false
		}
	}
	return jq.Query.Equal(&o.Query)
}
