// Package reindexer implements the query-expression core of an embeddable
// document database: the Query aggregate with its flattened bracket-aware
// expression tree, the tagged-varint binary codec carrying queries between
// processes, and the value model conditions are expressed in.
//
// Evaluating a tree against rows lives in [adapter/matcher], arithmetic
// update expressions in [adapter/evaluator], update application in
// [adapter/modifier] and the in-memory reference field source in
// [adapter/payload].
package reindexer

import (
	"github.com/maximbogatyrev/reindexer/domain"
)

// ErrAggregationWithSelectFields is returned when distinct aggregations
// and select filters are mixed in one query.
type ErrAggregationWithSelectFields = domain.ErrAggregationWithSelectFields

// ErrForcedSortOrder is returned when a forced sort order is attached to a
// sorting entry other than the first.
type ErrForcedSortOrder = domain.ErrForcedSortOrder

// ErrEmptyUpdateColumn is returned when an update operation names no
// column.
type ErrEmptyUpdateColumn = domain.ErrEmptyUpdateColumn

// ErrObjectValueType is returned when a json object update is given a
// non-string payload.
type ErrObjectValueType = domain.ErrObjectValueType

// ErrConditionInapplicable is returned when a condition that needs a value
// operand is put between two fields.
type ErrConditionInapplicable = domain.ErrConditionInapplicable

// ErrConditionValues is returned when a condition is built with a value
// count its operator cannot take.
type ErrConditionValues = domain.ErrConditionValues

// ErrUnknownTag is returned while decoding a binary query buffer holding a
// record tag this version does not know.
type ErrUnknownTag = domain.ErrUnknownTag

// ErrBracketsMismatch is returned while decoding when a close-bracket
// record shows up with no bracket open.
type ErrBracketsMismatch = domain.ErrBracketsMismatch

// ErrEqualPositionTarget is returned while decoding when an
// equal-position record points at a node that is not a bracket.
type ErrEqualPositionTarget = domain.ErrEqualPositionTarget

// ErrDWithinValues is returned when a DWithin condition does not carry a
// point and a distance.
type ErrDWithinValues = domain.ErrDWithinValues
