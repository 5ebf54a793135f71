// Package matcher evaluates query expression trees against rows.
package matcher

import (
	"github.com/maximbogatyrev/reindexer"
	"github.com/maximbogatyrev/reindexer/adapter/comparer"
	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Matcher folds an expression tree over a row, left to right: the
// accumulator starts true, And intersects, Or unions, Not intersects the
// negation. Brackets evaluate their scope with the same rule and fold the
// single verdict like a leaf.
//
// Field references bind lazily: the first row evaluated against a field
// resolves it through the field source and the binding sticks. A Matcher
// carries no synchronization; share it only behind external locking.
type Matcher struct {
	namespace string
	fields    domain.FieldSource
	joins     domain.JoinResultSource
	comparer  *comparer.Comparer
}

// NewMatcher returns a matcher resolving fields of namespace through
// fields.
func NewMatcher(namespace string, fields domain.FieldSource, options ...Option) *Matcher {
	m := &Matcher{
		namespace: namespace,
		fields:    fields,
		comparer:  comparer.NewComparer(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Satisfies reports whether row matches the expression tree.
func (m *Matcher) Satisfies(e *reindexer.Entries, row any) bool {
	return m.satisfiesScope(e, 0, e.Size(), e.EqualPositions(), row)
}

func (m *Matcher) satisfiesScope(e *reindexer.Entries, from, to int, equalPositions [][]string, row any) bool {
	groupOf, groupResult := m.resolveGroups(e, from, to, equalPositions, row)

	result := true
	for i := from; i < to; i = e.Next(i) {
		local := m.evalNode(e, i, groupOf, groupResult, row)
		switch e.OperationAt(i) {
		case reindexer.OpOr:
			result = result || local
		case reindexer.OpNot:
			result = result && !local
		default:
			result = result && local
		}
	}
	return result
}

func (m *Matcher) evalNode(e *reindexer.Entries, i int, groupOf map[string]int, groupResult []bool, row any) bool {
	if e.IsSubTree(i) {
		b, _ := e.BracketAt(i)
		return m.satisfiesScope(e, i+1, e.Next(i), b.EqualPositions(), row)
	}
	if qe, ok := e.ConditionAt(i); ok {
		if qe.Distinct() {
			return true
		}
		if g, ok := groupOf[qe.FieldName()]; ok {
			return groupResult[g]
		}
		return m.matchCondition(qe, row)
	}
	if be, ok := e.BetweenFieldsAt(i); ok {
		return m.matchBetweenFields(be, row)
	}
	if joinIdx, ok := e.JoinAt(i); ok {
		return m.joins != nil && m.joins.JoinResult(joinIdx, row)
	}
	// Always-false leaf.
	return false
}

func (m *Matcher) matchCondition(qe *reindexer.QueryEntry, row any) bool {
	m.bind(&qe.QueryField)
	if qe.HaveEmptyField() {
		return qe.Condition() == reindexer.CondEmpty
	}
	vals, ok := m.fetch(&qe.QueryField, row)
	if !ok {
		return qe.Condition() == reindexer.CondEmpty
	}
	return m.comparer.CompareCond(vals, qe.Condition(), qe.Values())
}

func (m *Matcher) matchBetweenFields(be *reindexer.BetweenFieldsQueryEntry, row any) bool {
	m.bind(be.LeftField())
	m.bind(be.RightField())
	lvals, lok := m.fetch(be.LeftField(), row)
	rvals, rok := m.fetch(be.RightField(), row)
	if !lok || !rok {
		return false
	}
	return m.comparer.CompareCondValues(lvals, be.Condition(), rvals)
}

// bind attaches schema data to a field on first use. Unknown names bind as
// unindexed and fall back to json-path access.
func (m *Matcher) bind(f *reindexer.QueryField) {
	if f.FieldsHaveBeenSet() {
		return
	}
	if d, ok := m.fields.ResolveField(m.namespace, f.FieldName()); ok {
		f.SetIndexData(d)
		return
	}
	f.SetIndexData(domain.IndexData{
		IndexNo:    domain.IndexUnindexed,
		FieldType:  variant.TypeUndefined,
		SelectType: variant.TypeUndefined,
	})
}

func (m *Matcher) fetch(f *reindexer.QueryField, row any) (variant.Array, bool) {
	if f.IsFieldIndexed() {
		return m.fields.Values(row, f.IndexNo()), true
	}
	return m.fields.ValuesByPath(row, f.FieldName())
}

// resolveGroups precomputes the joint verdict of every equal-position
// group of a scope: the group holds when some element index, valid in
// every grouped field, satisfies all grouped conditions at once. Each
// grouped leaf then contributes the joint verdict at its own position in
// the fold.
func (m *Matcher) resolveGroups(e *reindexer.Entries, from, to int, equalPositions [][]string, row any) (map[string]int, []bool) {
	if len(equalPositions) == 0 {
		return nil, nil
	}
	groupOf := make(map[string]int)
	for g, fields := range equalPositions {
		for _, f := range fields {
			groupOf[f] = g
		}
	}
	groups := make([][]groupMember, len(equalPositions))
	for i := from; i < to; i = e.Next(i) {
		qe, ok := e.ConditionAt(i)
		if !ok || qe.Distinct() {
			continue
		}
		g, ok := groupOf[qe.FieldName()]
		if !ok {
			continue
		}
		m.bind(&qe.QueryField)
		vals, found := m.fetch(&qe.QueryField, row)
		if qe.HaveEmptyField() || !found {
			vals = nil
		}
		groups[g] = append(groups[g], groupMember{cond: qe.Condition(), targets: qe.Values(), vals: vals})
	}
	result := make([]bool, len(equalPositions))
	for g, members := range groups {
		result[g] = m.jointResult(members)
	}
	return groupOf, result
}

// groupMember is one condition taking part in an equal-position group,
// with the row values of its field already fetched.
type groupMember struct {
	cond    reindexer.CondType
	targets variant.Array
	vals    variant.Array
}

// jointResult searches for an element index valid in every grouped field
// that satisfies all member conditions at that index.
func (m *Matcher) jointResult(members []groupMember) bool {
	if len(members) == 0 {
		return false
	}
	minLen := len(members[0].vals)
	for _, mem := range members[1:] {
		if len(mem.vals) < minLen {
			minLen = len(mem.vals)
		}
	}
	for i := 0; i < minLen; i++ {
		all := true
		for _, mem := range members {
			if !m.comparer.CompareCond(variant.Array{mem.vals[i]}, mem.cond, mem.targets) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
