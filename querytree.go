package reindexer

import (
	"slices"
)

// Bracket is the payload of a grouping node: its equal-position groups.
type Bracket struct {
	equalPositions [][]string
}

// EqualPositions returns the field groups attached to this bracket.
func (b *Bracket) EqualPositions() [][]string { return b.equalPositions }

// AddEqualPosition attaches a field group to this bracket.
func (b *Bracket) AddEqualPosition(fields ...string) {
	b.equalPositions = append(b.equalPositions, fields)
}

type nodeKind int

const (
	nodeBracket nodeKind = iota
	nodeCondition
	nodeBetweenFields
	nodeJoin
	nodeAlwaysFalse
)

// node is one slot of the flattened tree. size is the node count of the
// subtree rooted here, itself included, so the next sibling of node i is
// node i+size. Leaf payloads sit behind pointers and stay shared across
// lazy copies; bracket payloads are stored by value so copies diverge.
type node struct {
	op      OpType
	kind    nodeKind
	size    int
	cond    *QueryEntry
	between *BetweenFieldsQueryEntry
	joinIdx int
	bracket Bracket
}

// Entries is the flattened, bracket-aware expression tree of a query.
// Nodes live in one slice in prefix order; brackets span their children by
// subtree size instead of pointers.
type Entries struct {
	nodes          []node
	equalPositions [][]string
	opened         []int
}

// Size returns the total node count.
func (e *Entries) Size() int { return len(e.nodes) }

// Empty reports whether the tree has no nodes.
func (e *Entries) Empty() bool { return len(e.nodes) == 0 }

// Next returns the position of the sibling after node i.
func (e *Entries) Next(i int) int { return i + e.nodes[i].size }

// OperationAt returns the operation linking node i to its scope.
func (e *Entries) OperationAt(i int) OpType { return e.nodes[i].op }

// SetOperationAt replaces the operation of node i.
func (e *Entries) SetOperationAt(i int, op OpType) { e.nodes[i].op = op }

// SizeAt returns the subtree size of node i, itself included.
func (e *Entries) SizeAt(i int) int { return e.nodes[i].size }

// IsSubTree reports whether node i is a bracket.
func (e *Entries) IsSubTree(i int) bool { return e.nodes[i].kind == nodeBracket }

// ConditionAt returns the value condition at node i, or false.
func (e *Entries) ConditionAt(i int) (*QueryEntry, bool) {
	if e.nodes[i].kind != nodeCondition {
		return nil, false
	}
	return e.nodes[i].cond, true
}

// BetweenFieldsAt returns the two-field condition at node i, or false.
func (e *Entries) BetweenFieldsAt(i int) (*BetweenFieldsQueryEntry, bool) {
	if e.nodes[i].kind != nodeBetweenFields {
		return nil, false
	}
	return e.nodes[i].between, true
}

// JoinAt returns the join index at node i, or false.
func (e *Entries) JoinAt(i int) (int, bool) {
	if e.nodes[i].kind != nodeJoin {
		return 0, false
	}
	return e.nodes[i].joinIdx, true
}

// IsAlwaysFalse reports whether node i never matches.
func (e *Entries) IsAlwaysFalse(i int) bool { return e.nodes[i].kind == nodeAlwaysFalse }

// BracketAt returns the bracket payload of node i, or false. The pointer
// is valid until the tree is next mutated.
func (e *Entries) BracketAt(i int) (*Bracket, bool) {
	if e.nodes[i].kind != nodeBracket {
		return nil, false
	}
	return &e.nodes[i].bracket, true
}

// EqualPositions returns the root-scope field groups.
func (e *Entries) EqualPositions() [][]string { return e.equalPositions }

// AddEqualPosition attaches a field group to the innermost open bracket,
// or to the root scope when no bracket is open.
func (e *Entries) AddEqualPosition(fields ...string) {
	if len(e.opened) == 0 {
		e.equalPositions = append(e.equalPositions, fields)
		return
	}
	e.nodes[e.opened[len(e.opened)-1]].bracket.AddEqualPosition(fields...)
}

// appendNode places n at the end of the table and grows every open
// bracket to span it.
func (e *Entries) appendNode(n node) {
	e.nodes = append(e.nodes, n)
	for _, b := range e.opened {
		e.nodes[b].size++
	}
}

// Append adds a value condition leaf.
func (e *Entries) Append(op OpType, qe *QueryEntry) {
	e.appendNode(node{op: op, kind: nodeCondition, size: 1, cond: qe})
}

// AppendBetweenFields adds a two-field condition leaf.
func (e *Entries) AppendBetweenFields(op OpType, be *BetweenFieldsQueryEntry) {
	e.appendNode(node{op: op, kind: nodeBetweenFields, size: 1, between: be})
}

// AppendJoin adds a join leaf referencing joined sub-query joinIdx.
func (e *Entries) AppendJoin(op OpType, joinIdx int) {
	e.appendNode(node{op: op, kind: nodeJoin, size: 1, joinIdx: joinIdx})
}

// AppendAlwaysFalse adds a leaf that never matches.
func (e *Entries) AppendAlwaysFalse(op OpType) {
	e.appendNode(node{op: op, kind: nodeAlwaysFalse, size: 1})
}

// OpenBracket starts a grouping scope. Nodes appended until the matching
// CloseBracket become its children.
func (e *Entries) OpenBracket(op OpType) {
	e.appendNode(node{op: op, kind: nodeBracket, size: 1})
	e.opened = append(e.opened, len(e.nodes)-1)
}

// CloseBracket ends the innermost open scope. Closing with no open
// bracket is a programming error and panics.
func (e *Entries) CloseBracket() {
	if len(e.opened) == 0 {
		panic("close bracket before open it")
	}
	e.opened = e.opened[:len(e.opened)-1]
}

// OpenBracketsCount returns how many scopes are still open.
func (e *Entries) OpenBracketsCount() int { return len(e.opened) }

// LastOpenBracket returns the innermost open bracket payload. The pointer
// is valid until the tree is next mutated.
func (e *Entries) LastOpenBracket() (*Bracket, bool) {
	if len(e.opened) == 0 {
		return nil, false
	}
	return &e.nodes[e.opened[len(e.opened)-1]].bracket, true
}

// ForEachValueCondition calls f for every value condition leaf, depth
// first.
func (e *Entries) ForEachValueCondition(f func(*QueryEntry)) {
	for i := range e.nodes {
		if e.nodes[i].kind == nodeCondition {
			f(e.nodes[i].cond)
		}
	}
}

// MakeLazyCopy returns a copy that shares the leaf payloads of e but owns
// its node table, so structural edits and equal-position changes on either
// side stay private.
func (e *Entries) MakeLazyCopy() Entries {
	cp := Entries{
		nodes:          slices.Clone(e.nodes),
		equalPositions: slices.Clone(e.equalPositions),
		opened:         slices.Clone(e.opened),
	}
	for i := range cp.nodes {
		cp.nodes[i].bracket.equalPositions = slices.Clone(cp.nodes[i].bracket.equalPositions)
	}
	return cp
}

// Equal reports structural equality: same shape, operations, leaf payloads
// and equal-position groups. Field binding state does not take part.
func (e *Entries) Equal(o *Entries) bool {
	if len(e.nodes) != len(o.nodes) || !equalPositionsEqual(e.equalPositions, o.equalPositions) {
		return false
	}
	for i := range e.nodes {
		a, b := &e.nodes[i], &o.nodes[i]
		if a.op != b.op || a.kind != b.kind || a.size != b.size {
			return false
		}
		switch a.kind {
		case nodeCondition:
			if !a.cond.equal(b.cond) {
				return false
			}
		case nodeBetweenFields:
			if !a.between.equal(b.between) {
				return false
			}
		case nodeJoin:
			if a.joinIdx != b.joinIdx {
				return false
			}
		case nodeBracket:
			if !equalPositionsEqual(a.bracket.equalPositions, b.bracket.equalPositions) {
				return false
			}
		}
	}
	return true
}

func equalPositionsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !slices.Equal(a[n], b[n]) {
			return false
		}
	}
	return true
}
