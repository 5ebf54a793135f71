// Package domain declares the interfaces the query core expects from its
// collaborators and the errors shared across component packages.
package domain

import (
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Index numbers recorded in [IndexData] and bound into query fields.
const (
	// IndexNotSet marks a field no one has resolved yet.
	IndexNotSet = -1
	// IndexUnindexed marks a field that has been resolved and has no
	// index; values come from its json path.
	IndexUnindexed = -2
)

// FieldsSet lists the index positions a (possibly composite) field spans.
// A negative position marks a missing member.
type FieldsSet []int

// HaveEmpty reports whether some member of the set is missing.
func (f FieldsSet) HaveEmpty() bool {
	for _, n := range f {
		if n < 0 {
			return true
		}
	}
	return false
}

// IndexData is the schema information bound into a query field on first
// use.
type IndexData struct {
	// IndexNo is the index position, or [IndexUnindexed].
	IndexNo int
	// Fields lists member positions for composite indexes.
	Fields FieldsSet
	// FieldType is the declared value type.
	FieldType variant.Type
	// SelectType is the type condition values are expected in. Usually
	// equal to FieldType.
	SelectType variant.Type
	// CompositeTypes lists member types for composite indexes.
	CompositeTypes []variant.Type
	// IsArray reports whether the field holds multiple values per row.
	IsArray bool
}

// FieldSource resolves field names against a namespace schema and fetches
// field values out of rows. The in-memory reference implementation lives in
// adapter/payload; the real one is the storage engine.
type FieldSource interface {
	// ResolveField returns binding data for a field name, or false when
	// the namespace does not know the name. Unknown names are not an
	// error: the caller falls back to json-path access.
	ResolveField(namespace, field string) (IndexData, bool)
	// Values returns the values of an indexed field in row.
	Values(row any, indexNo int) variant.Array
	// ValuesByPath returns the values at a dotted json path in row, and
	// false when the path does not exist.
	ValuesByPath(row any, path string) (variant.Array, bool)
}

// FunctionCall is a parsed function invocation from an update expression,
// e.g. now() or serial().
type FunctionCall struct {
	// Name is the function name.
	Name string
	// Args holds the raw argument texts.
	Args []string
	// Field is the column the enclosing expression is evaluated for.
	Field string
}

// FunctionExecutor evaluates function calls found in update expressions.
type FunctionExecutor interface {
	Execute(call FunctionCall, row any) (variant.Variant, error)
}

// JoinResultSource answers whether a joined sub-query matched a row. The
// join executor owns the actual join; the condition evaluator only folds
// its verdict into the expression tree.
type JoinResultSource interface {
	JoinResult(joinIndex int, row any) bool
}
