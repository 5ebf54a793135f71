package reindexer

// CondType is a condition operator.
type CondType int

// Condition operators. The numeric values are wire-visible.
const (
	CondAny     CondType = 0
	CondEq      CondType = 1
	CondLt      CondType = 2
	CondLe      CondType = 3
	CondGt      CondType = 4
	CondGe      CondType = 5
	CondRange   CondType = 6
	CondSet     CondType = 7
	CondAllSet  CondType = 8
	CondEmpty   CondType = 9
	CondLike    CondType = 10
	CondDWithin CondType = 11
)

// String implements [fmt.Stringer].
func (c CondType) String() string {
	switch c {
	case CondAny:
		return "ANY"
	case CondEq:
		return "="
	case CondLt:
		return "<"
	case CondLe:
		return "<="
	case CondGt:
		return ">"
	case CondGe:
		return ">="
	case CondRange:
		return "RANGE"
	case CondSet:
		return "IN"
	case CondAllSet:
		return "ALLSET"
	case CondEmpty:
		return "EMPTY"
	case CondLike:
		return "LIKE"
	case CondDWithin:
		return "DWITHIN"
	}
	return "?"
}

// OpType links a tree node to the accumulator of its scope.
type OpType int

// Tree operations. The numeric values are wire-visible.
const (
	OpOr  OpType = 1
	OpAnd OpType = 2
	OpNot OpType = 3
)

// String implements [fmt.Stringer].
func (o OpType) String() string {
	switch o {
	case OpOr:
		return "OR"
	case OpAnd:
		return "AND"
	case OpNot:
		return "NOT"
	}
	return "?"
}

// JoinType tells how a sub-query is attached to its parent.
type JoinType int

// Join kinds. The numeric values are wire-visible.
const (
	LeftJoin    JoinType = 0
	InnerJoin   JoinType = 1
	OrInnerJoin JoinType = 2
	Merge       JoinType = 3
)

// String implements [fmt.Stringer].
func (j JoinType) String() string {
	switch j {
	case LeftJoin:
		return "LEFT JOIN"
	case InnerJoin:
		return "INNER JOIN"
	case OrInnerJoin:
		return "OR INNER JOIN"
	case Merge:
		return "MERGE"
	}
	return "?"
}

// AggType is an aggregation function.
type AggType int

// Aggregation kinds. The numeric values are wire-visible.
const (
	AggSum      AggType = 0
	AggAvg      AggType = 1
	AggFacet    AggType = 2
	AggMin      AggType = 3
	AggMax      AggType = 4
	AggDistinct AggType = 5
)

// String implements [fmt.Stringer].
func (a AggType) String() string {
	switch a {
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggFacet:
		return "FACET"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggDistinct:
		return "DISTINCT"
	}
	return "?"
}

// CalcTotalMode tells whether and how the total match count is requested.
type CalcTotalMode int

// Total-count modes. The numeric values are wire-visible.
const (
	ModeNoTotal       CalcTotalMode = 0
	ModeCachedTotal   CalcTotalMode = 1
	ModeAccurateTotal CalcTotalMode = 2
)

// StrictMode controls how the executor treats unknown field names.
type StrictMode int

// Strict modes. The numeric values are wire-visible.
const (
	StrictModeNotSet  StrictMode = 0
	StrictModeNone    StrictMode = 1
	StrictModeNames   StrictMode = 2
	StrictModeIndexes StrictMode = 3
)

// FieldModifyMode tells how an update entry is applied to a document.
type FieldModifyMode int

// Update modes. The numeric values are wire-visible.
const (
	FieldModeSet     FieldModifyMode = 0
	FieldModeDrop    FieldModifyMode = 1
	FieldModeSetJson FieldModifyMode = 2
)

// SerializeMode selects which parts of a query the codec writes.
type SerializeMode uint8

// Serialize mode flags.
const (
	Normal           SerializeMode = 0
	SkipLimitOffset  SerializeMode = 1 << 0
	WithJoinEntries  SerializeMode = 1 << 1
	SkipJoinQueries  SerializeMode = 1 << 2
	SkipMergeQueries SerializeMode = 1 << 3
)

// Record tags of the binary query buffer.
const (
	queryCondition              = 0
	queryDistinct               = 1
	querySortIndex              = 2
	queryJoinOn                 = 3
	queryLimit                  = 4
	queryOffset                 = 5
	queryReqTotal               = 6
	queryDebugLevel             = 7
	queryAggregation            = 8
	querySelectFilter           = 9
	querySelectFunction         = 10
	queryEnd                    = 11
	queryExplain                = 12
	queryEqualPosition          = 13
	queryUpdateField            = 14
	queryAggregationLimit       = 15
	queryAggregationOffset      = 16
	queryAggregationSort        = 17
	queryOpenBracket            = 18
	queryCloseBracket           = 19
	queryJoinCondition          = 20
	queryDropField              = 21
	queryUpdateObject           = 22
	queryWithRank               = 23
	queryStrictMode             = 24
	queryUpdateFieldV2          = 25
	queryBetweenFieldsCondition = 26
	queryAlwaysFalseCondition   = 27
)

const (
	defaultOffset uint32 = 0
	defaultLimit  uint32 = 1<<32 - 1
)
