package domain

import (
	"fmt"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// ErrAggregationWithSelectFields is returned when distinct aggregations are
// mixed with select filters in one query.
type ErrAggregationWithSelectFields struct{}

// Error implements [error].
func (e ErrAggregationWithSelectFields) Error() string {
	return "impossible to combine aggregation of fields and select of aggregated fields"
}

// ErrForcedSortOrder is returned when a forced sort order is attached to a
// sorting entry other than the first.
type ErrForcedSortOrder struct{}

// Error implements [error].
func (e ErrForcedSortOrder) Error() string {
	return "forced sort order is allowed for the first sorting entry only"
}

// ErrEmptyUpdateColumn is returned when an update operation names no
// column.
type ErrEmptyUpdateColumn struct{}

// Error implements [error].
func (e ErrEmptyUpdateColumn) Error() string {
	return "empty field name in update operation"
}

// ErrObjectValueType is returned when a json object update is given a
// non-string payload.
type ErrObjectValueType struct {
	Type variant.Type
}

// Error implements [error].
func (e ErrObjectValueType) Error() string {
	return fmt.Sprintf("unexpected value type for json object update: %s", e.Type)
}

// ErrConditionInapplicable is returned when a condition that needs a value
// operand is put between two fields.
type ErrConditionInapplicable struct {
	Cond string
}

// Error implements [error].
func (e ErrConditionInapplicable) Error() string {
	return fmt.Sprintf("condition %s is inapplicable between two fields", e.Cond)
}

// ErrConditionValues is returned when a condition is built with a value
// count its operator cannot take.
type ErrConditionValues struct {
	Cond  string
	Count int
}

// Error implements [error].
func (e ErrConditionValues) Error() string {
	return fmt.Sprintf("condition %s cannot take %d values", e.Cond, e.Count)
}

// ErrAggregationFields is returned when an aggregation is built with a
// field count its type cannot take.
type ErrAggregationFields struct {
	AggType string
	Count   int
}

// Error implements [error].
func (e ErrAggregationFields) Error() string {
	return fmt.Sprintf("aggregation %s cannot be applied to %d fields", e.AggType, e.Count)
}

// ErrAggregationParams is returned when sort, limit or offset is attached
// to a non-facet aggregation.
type ErrAggregationParams struct {
	AggType string
	Param   string
}

// Error implements [error].
func (e ErrAggregationParams) Error() string {
	return fmt.Sprintf("%s is allowed only for facet aggregation, not %s", e.Param, e.AggType)
}

// ErrUnknownTag is returned while decoding a binary query buffer holding a
// record tag this version does not know.
type ErrUnknownTag struct {
	Tag int
}

// Error implements [error].
func (e ErrUnknownTag) Error() string {
	return fmt.Sprintf("unknown type %d while parsing binary buffer", e.Tag)
}

// ErrBracketsMismatch is returned while decoding when a close-bracket
// record shows up with no bracket open.
type ErrBracketsMismatch struct{}

// Error implements [error].
func (e ErrBracketsMismatch) Error() string {
	return "close bracket record without a matching open bracket"
}

// ErrEqualPositionTarget is returned while decoding when an equal-position
// record points at a node that is not a bracket.
type ErrEqualPositionTarget struct {
	Position int
}

// Error implements [error].
func (e ErrEqualPositionTarget) Error() string {
	return fmt.Sprintf("equal position record points at non-bracket node %d", e.Position)
}

// ErrDWithinValues is returned when a DWithin condition does not carry a
// point and a distance.
type ErrDWithinValues struct{}

// Error implements [error].
func (e ErrDWithinValues) Error() string {
	return "DWithin condition requires a point and a distance"
}

// ErrJoinOnRootQuery is returned while decoding when a join-on record shows
// up outside a joined sub-query block.
type ErrJoinOnRootQuery struct{}

// Error implements [error].
func (e ErrJoinOnRootQuery) Error() string {
	return "join condition record in a non-joined query"
}

// ErrDivisionByZero is returned by the arithmetic evaluator.
type ErrDivisionByZero struct{}

// Error implements [error].
func (e ErrDivisionByZero) Error() string {
	return "division by zero in arithmetical expression"
}

// ErrFieldType is returned when an arithmetic expression references a field
// whose type has no numeric meaning.
type ErrFieldType struct {
	Field string
}

// Error implements [error].
func (e ErrFieldType) Error() string {
	return fmt.Sprintf("only integral type non-array fields are supported in arithmetical expressions: %s", e.Field)
}

// ErrEmptyFieldValue is returned when an arithmetic expression references a
// scalar field that holds no value.
type ErrEmptyFieldValue struct {
	Field string
}

// Error implements [error].
func (e ErrEmptyFieldValue) Error() string {
	return fmt.Sprintf("calculating value of an empty field is impossible: %s", e.Field)
}

// ErrExprSyntax is returned for malformed arithmetic expressions.
type ErrExprSyntax struct {
	Msg string
	Pos int
}

// Error implements [error].
func (e ErrExprSyntax) Error() string {
	return fmt.Sprintf("expression syntax error at position %d: %s", e.Pos, e.Msg)
}
