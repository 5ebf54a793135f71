package reindexer

import (
	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// QueryEntry is a value condition: field, operator and target values. A
// distinct entry is a degenerate condition that never filters and only asks
// the executor to deduplicate by the field.
type QueryEntry struct {
	QueryField
	cond     CondType
	values   variant.Array
	distinct bool
}

func verifyConditionValues(cond CondType, values variant.Array) error {
	switch cond {
	case CondAny, CondEmpty:
		if len(values) != 0 {
			return domain.ErrConditionValues{Cond: cond.String(), Count: len(values)}
		}
	case CondRange:
		if len(values) != 2 {
			return domain.ErrConditionValues{Cond: cond.String(), Count: len(values)}
		}
	case CondDWithin:
		if len(values) != 2 {
			return domain.ErrDWithinValues{}
		}
		if _, ok := values[0].AsPoint(); !ok {
			return domain.ErrDWithinValues{}
		}
		if !values[1].Type().IsNumeric() {
			return domain.ErrDWithinValues{}
		}
	default:
		if len(values) == 0 {
			return domain.ErrConditionValues{Cond: cond.String(), Count: 0}
		}
	}
	return nil
}

func newQueryEntry(field string, cond CondType, values variant.Array) (*QueryEntry, error) {
	if err := verifyConditionValues(cond, values); err != nil {
		return nil, err
	}
	return &QueryEntry{QueryField: newQueryField(field), cond: cond, values: values}, nil
}

func newDistinctEntry(field string) *QueryEntry {
	return &QueryEntry{QueryField: newQueryField(field), cond: CondAny, distinct: true}
}

// Condition returns the operator.
func (e *QueryEntry) Condition() CondType { return e.cond }

// Values returns the target values.
func (e *QueryEntry) Values() variant.Array { return e.values }

// Distinct reports whether this is a distinct entry.
func (e *QueryEntry) Distinct() bool { return e.distinct }

// SetCondAndValues replaces the operator and target values, keeping field
// binding intact.
func (e *QueryEntry) SetCondAndValues(cond CondType, values variant.Array) error {
	if err := verifyConditionValues(cond, values); err != nil {
		return err
	}
	e.cond = cond
	e.values = values
	return nil
}

func (e *QueryEntry) equal(o *QueryEntry) bool {
	return e.QueryField.equal(&o.QueryField) &&
		e.cond == o.cond &&
		e.distinct == o.distinct &&
		e.values.Equal(o.values)
}

// BetweenFieldsQueryEntry compares two fields of the same row.
type BetweenFieldsQueryEntry struct {
	left  QueryField
	right QueryField
	cond  CondType
}

func newBetweenFieldsQueryEntry(left string, cond CondType, right string) (*BetweenFieldsQueryEntry, error) {
	switch cond {
	case CondAny, CondEmpty, CondDWithin:
		return nil, domain.ErrConditionInapplicable{Cond: cond.String()}
	}
	return &BetweenFieldsQueryEntry{
		left:  newQueryField(left),
		right: newQueryField(right),
		cond:  cond,
	}, nil
}

// LeftField returns the left operand field.
func (e *BetweenFieldsQueryEntry) LeftField() *QueryField { return &e.left }

// RightField returns the right operand field.
func (e *BetweenFieldsQueryEntry) RightField() *QueryField { return &e.right }

// Condition returns the operator.
func (e *BetweenFieldsQueryEntry) Condition() CondType { return e.cond }

func (e *BetweenFieldsQueryEntry) equal(o *BetweenFieldsQueryEntry) bool {
	return e.cond == o.cond && e.left.equal(&o.left) && e.right.equal(&o.right)
}

// QueryJoinEntry is one ON predicate of a joined sub-query: a field of the
// parent namespace against a field of the joined one.
type QueryJoinEntry struct {
	op         OpType
	cond       CondType
	leftField  QueryField
	rightField QueryField
}

// NewQueryJoinEntry returns an ON predicate.
func NewQueryJoinEntry(op OpType, leftField string, cond CondType, rightField string) QueryJoinEntry {
	return QueryJoinEntry{
		op:         op,
		cond:       cond,
		leftField:  newQueryField(leftField),
		rightField: newQueryField(rightField),
	}
}

// Operation returns how the predicate folds into the ON clause.
func (e *QueryJoinEntry) Operation() OpType { return e.op }

// Condition returns the operator.
func (e *QueryJoinEntry) Condition() CondType { return e.cond }

// LeftField returns the parent-namespace field.
func (e *QueryJoinEntry) LeftField() *QueryField { return &e.leftField }

// RightField returns the joined-namespace field.
func (e *QueryJoinEntry) RightField() *QueryField { return &e.rightField }

func (e *QueryJoinEntry) equal(o *QueryJoinEntry) bool {
	return e.op == o.op && e.cond == o.cond &&
		e.leftField.equal(&o.leftField) && e.rightField.equal(&o.rightField)
}

// SortingEntry is one sort clause: an expression (usually a field name) and
// a direction.
type SortingEntry struct {
	Expression string
	Desc       bool
}

// AggregateEntry describes one aggregation request. Sort, limit and offset
// are meaningful for facets only.
type AggregateEntry struct {
	aggType AggType
	fields  []string
	sorting []SortingEntry
	limit   uint32
	offset  uint32
}

// Aggregation paging defaults mean "not set".
const (
	aggNoLimit  uint32 = 1<<32 - 1
	aggNoOffset uint32 = 0
)

// NewAggregateEntry validates the field count against the aggregation
// type: facets take one or more fields, everything else exactly one.
func NewAggregateEntry(aggType AggType, fields []string) (AggregateEntry, error) {
	switch aggType {
	case AggFacet:
		if len(fields) == 0 {
			return AggregateEntry{}, domain.ErrAggregationFields{AggType: aggType.String(), Count: 0}
		}
	default:
		if len(fields) != 1 {
			return AggregateEntry{}, domain.ErrAggregationFields{AggType: aggType.String(), Count: len(fields)}
		}
	}
	return AggregateEntry{aggType: aggType, fields: fields, limit: aggNoLimit, offset: aggNoOffset}, nil
}

// Type returns the aggregation function.
func (a *AggregateEntry) Type() AggType { return a.aggType }

// Fields returns the aggregated field names.
func (a *AggregateEntry) Fields() []string { return a.fields }

// Sorting returns the facet sort clauses.
func (a *AggregateEntry) Sorting() []SortingEntry { return a.sorting }

// Limit returns the facet limit, or its unset default.
func (a *AggregateEntry) Limit() uint32 { return a.limit }

// Offset returns the facet offset, or its unset default.
func (a *AggregateEntry) Offset() uint32 { return a.offset }

// AddSortingEntry appends a facet sort clause.
func (a *AggregateEntry) AddSortingEntry(s SortingEntry) error {
	if a.aggType != AggFacet {
		return domain.ErrAggregationParams{AggType: a.aggType.String(), Param: "sort"}
	}
	a.sorting = append(a.sorting, s)
	return nil
}

// SetLimit caps the number of facet groups returned.
func (a *AggregateEntry) SetLimit(limit uint32) error {
	if a.aggType != AggFacet {
		return domain.ErrAggregationParams{AggType: a.aggType.String(), Param: "limit"}
	}
	a.limit = limit
	return nil
}

// SetOffset skips leading facet groups.
func (a *AggregateEntry) SetOffset(offset uint32) error {
	if a.aggType != AggFacet {
		return domain.ErrAggregationParams{AggType: a.aggType.String(), Param: "offset"}
	}
	a.offset = offset
	return nil
}

func (a *AggregateEntry) equal(o *AggregateEntry) bool {
	if a.aggType != o.aggType || a.limit != o.limit || a.offset != o.offset {
		return false
	}
	if len(a.fields) != len(o.fields) || len(a.sorting) != len(o.sorting) {
		return false
	}
	for n := range a.fields {
		if a.fields[n] != o.fields[n] {
			return false
		}
	}
	for n := range a.sorting {
		if a.sorting[n] != o.sorting[n] {
			return false
		}
	}
	return true
}

// UpdateEntry is one column mutation of an update query.
type UpdateEntry struct {
	column       string
	values       variant.Array
	mode         FieldModifyMode
	isExpression bool
	isArray      bool
}

// NewUpdateEntry validates the column name and returns the mutation.
func NewUpdateEntry(column string, values variant.Array, mode FieldModifyMode, isExpression, isArray bool) (UpdateEntry, error) {
	if column == "" {
		return UpdateEntry{}, domain.ErrEmptyUpdateColumn{}
	}
	return UpdateEntry{
		column:       column,
		values:       values,
		mode:         mode,
		isExpression: isExpression,
		isArray:      isArray,
	}, nil
}

// Column returns the mutated column.
func (u *UpdateEntry) Column() string { return u.column }

// Values returns the payload values.
func (u *UpdateEntry) Values() variant.Array { return u.values }

// Mode returns the mutation kind.
func (u *UpdateEntry) Mode() FieldModifyMode { return u.mode }

// IsExpression reports whether Values holds an arithmetic expression
// string to be evaluated per row.
func (u *UpdateEntry) IsExpression() bool { return u.isExpression }

// IsArray reports whether the column is written as an array.
func (u *UpdateEntry) IsArray() bool { return u.isArray }

func (u *UpdateEntry) equal(o *UpdateEntry) bool {
	return u.column == o.column && u.mode == o.mode &&
		u.isExpression == o.isExpression && u.isArray == o.isArray &&
		u.values.Equal(o.values)
}
