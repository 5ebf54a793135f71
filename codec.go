package reindexer

import (
	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
	"github.com/maximbogatyrev/reindexer/pkg/wire"
)

// Serialize writes the query into ser as a stream of tagged records closed
// by an end marker, followed by one block per joined and merged sub-query.
func (q *Query) Serialize(ser *wire.Serializer, mode SerializeMode) error {
	if err := q.serializeRecords(ser, mode, nil); err != nil {
		return err
	}
	if mode&SkipJoinQueries == 0 {
		for _, jq := range q.joinQueries {
			ser.PutVarUInt(uint64(jq.joinType))
			if err := jq.serializeRecords(ser, mode|WithJoinEntries, jq.joinEntries); err != nil {
				return err
			}
		}
	}
	if mode&SkipMergeQueries == 0 {
		for _, mq := range q.mergeQueries {
			ser.PutVarUInt(uint64(Merge))
			if err := mq.serializeRecords(ser, mode, nil); err != nil {
				return err
			}
			for _, jq := range mq.joinQueries {
				ser.PutVarUInt(uint64(jq.joinType))
				if err := jq.serializeRecords(ser, mode|WithJoinEntries, jq.joinEntries); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (q *Query) serializeRecords(ser *wire.Serializer, mode SerializeMode, joinEntries []QueryJoinEntry) error {
	ser.PutVString(q.Namespace)

	if err := q.Entries.serialize(ser); err != nil {
		return err
	}
	q.Entries.serializeEqualPositions(ser)

	if mode&WithJoinEntries != 0 {
		for n := range joinEntries {
			je := &joinEntries[n]
			ser.PutVarUInt(queryJoinOn)
			ser.PutVarUInt(uint64(je.op))
			ser.PutVarUInt(uint64(je.cond))
			ser.PutVString(je.leftField.fieldName)
			ser.PutVString(je.rightField.fieldName)
		}
	}

	for n := range q.aggregations {
		a := &q.aggregations[n]
		ser.PutVarUInt(queryAggregation)
		ser.PutVarUInt(uint64(a.aggType))
		ser.PutVarUInt(uint64(len(a.fields)))
		for _, f := range a.fields {
			ser.PutVString(f)
		}
		for _, s := range a.sorting {
			ser.PutVarUInt(queryAggregationSort)
			ser.PutVString(s.Expression)
			ser.PutVarUInt(boolToUint(s.Desc))
		}
		if a.limit != aggNoLimit {
			ser.PutVarUInt(queryAggregationLimit)
			ser.PutVarUInt(uint64(a.limit))
		}
		if a.offset != aggNoOffset {
			ser.PutVarUInt(queryAggregationOffset)
			ser.PutVarUInt(uint64(a.offset))
		}
	}

	for n, s := range q.sortingEntries {
		ser.PutVarUInt(querySortIndex)
		ser.PutVString(s.Expression)
		ser.PutVarUInt(boolToUint(s.Desc))
		// The forced order belongs to the first clause only.
		if n == 0 {
			ser.PutVarUInt(uint64(len(q.forcedSortOrder)))
			for _, v := range q.forcedSortOrder {
				if err := ser.PutVariant(v); err != nil {
					return err
				}
			}
		} else {
			ser.PutVarUInt(0)
		}
	}

	if q.withRank {
		ser.PutVarUInt(queryWithRank)
	}
	for _, f := range q.selectFilter {
		ser.PutVarUInt(querySelectFilter)
		ser.PutVString(f)
	}
	for _, f := range q.selectFunctions {
		ser.PutVarUInt(querySelectFunction)
		ser.PutVString(f)
	}
	if q.debugLevel != 0 {
		ser.PutVarUInt(queryDebugLevel)
		ser.PutVarUInt(uint64(q.debugLevel))
	}
	if q.strictMode != StrictModeNotSet {
		ser.PutVarUInt(queryStrictMode)
		ser.PutVarUInt(uint64(q.strictMode))
	}
	if mode&SkipLimitOffset == 0 {
		if q.HasLimit() {
			ser.PutVarUInt(queryLimit)
			ser.PutVarUInt(uint64(q.count))
		}
		if q.HasOffset() {
			ser.PutVarUInt(queryOffset)
			ser.PutVarUInt(uint64(q.start))
		}
	}
	if q.calcTotal != ModeNoTotal {
		ser.PutVarUInt(queryReqTotal)
		ser.PutVarUInt(uint64(q.calcTotal))
	}
	if q.explain {
		ser.PutVarUInt(queryExplain)
	}

	for n := range q.updateFields {
		u := &q.updateFields[n]
		switch u.mode {
		case FieldModeDrop:
			ser.PutVarUInt(queryDropField)
			ser.PutVString(u.column)
		case FieldModeSetJson:
			ser.PutVarUInt(queryUpdateObject)
			ser.PutVString(u.column)
			ser.PutVarUInt(boolToUint(u.isArray))
			ser.PutVarUInt(uint64(len(u.values)))
			for _, v := range u.values {
				ser.PutVarUInt(boolToUint(u.isExpression))
				if err := ser.PutVariant(v); err != nil {
					return err
				}
			}
		default:
			ser.PutVarUInt(queryUpdateFieldV2)
			ser.PutVString(u.column)
			ser.PutVarUInt(boolToUint(u.isArray))
			ser.PutVarUInt(uint64(len(u.values)))
			for _, v := range u.values {
				ser.PutVarUInt(boolToUint(u.isExpression))
				if err := ser.PutVariant(v); err != nil {
					return err
				}
			}
		}
	}

	ser.PutVarUInt(queryEnd)
	return nil
}

// serialize writes the tree as open/close bracket and leaf records in
// prefix order.
func (e *Entries) serialize(ser *wire.Serializer) error {
	var walk func(from, to int) error
	walk = func(from, to int) error {
		for i := from; i < to; i = e.Next(i) {
			n := &e.nodes[i]
			switch n.kind {
			case nodeBracket:
				ser.PutVarUInt(queryOpenBracket)
				ser.PutVarUInt(uint64(n.op))
				if err := walk(i+1, i+n.size); err != nil {
					return err
				}
				ser.PutVarUInt(queryCloseBracket)
			case nodeCondition:
				if n.cond.distinct {
					ser.PutVarUInt(queryDistinct)
					ser.PutVString(n.cond.fieldName)
					continue
				}
				ser.PutVarUInt(queryCondition)
				ser.PutVString(n.cond.fieldName)
				ser.PutVarUInt(uint64(n.op))
				ser.PutVarUInt(uint64(n.cond.cond))
				if n.cond.cond == CondDWithin {
					point, _ := n.cond.values[0].AsPoint()
					ser.PutVarUInt(3)
					if err := ser.PutVariant(variant.NewDouble(point.X())); err != nil {
						return err
					}
					if err := ser.PutVariant(variant.NewDouble(point.Y())); err != nil {
						return err
					}
					if err := ser.PutVariant(n.cond.values[1]); err != nil {
						return err
					}
					continue
				}
				ser.PutVarUInt(uint64(len(n.cond.values)))
				for _, v := range n.cond.values {
					if err := ser.PutVariant(v); err != nil {
						return err
					}
				}
			case nodeBetweenFields:
				ser.PutVarUInt(queryBetweenFieldsCondition)
				ser.PutVarUInt(uint64(n.op))
				ser.PutVString(n.between.left.fieldName)
				ser.PutVarUInt(uint64(n.between.cond))
				ser.PutVString(n.between.right.fieldName)
			case nodeJoin:
				ser.PutVarUInt(queryJoinCondition)
				if n.op == OpOr {
					ser.PutVarUInt(uint64(OrInnerJoin))
				} else {
					ser.PutVarUInt(uint64(InnerJoin))
				}
				ser.PutVarUInt(uint64(n.joinIdx))
			case nodeAlwaysFalse:
				ser.PutVarUInt(queryAlwaysFalseCondition)
				ser.PutVarUInt(uint64(n.op))
			}
		}
		return nil
	}
	return walk(0, len(e.nodes))
}

// serializeEqualPositions writes the field groups of the root scope and of
// every bracket. Positions are 1-based node indexes, 0 meaning the root.
func (e *Entries) serializeEqualPositions(ser *wire.Serializer) {
	putGroup := func(pos int, fields []string) {
		ser.PutVarUInt(queryEqualPosition)
		ser.PutVarUInt(uint64(pos))
		ser.PutVarUInt(uint64(len(fields)))
		for _, f := range fields {
			ser.PutVString(f)
		}
	}
	for _, g := range e.equalPositions {
		putGroup(0, g)
	}
	for i := range e.nodes {
		if e.nodes[i].kind != nodeBracket {
			continue
		}
		for _, g := range e.nodes[i].bracket.equalPositions {
			putGroup(i+1, g)
		}
	}
}

// Deserialize reads a root query with its joined and merged sub-query
// blocks.
func (q *Query) Deserialize(r *wire.Reader) error {
	if _, err := q.deserializeRecords(r, nil); err != nil {
		return err
	}
	for !r.Eof() {
		tag, err := r.GetVarUInt()
		if err != nil {
			return err
		}
		jt := JoinType(tag)
		jq := NewJoinedQuery(jt, NewQuery(""))
		hasJoinConds, err := jq.deserializeRecords(r, &jq.joinEntries)
		if err != nil {
			return err
		}
		if jt == Merge {
			q.mergeQueries = append(q.mergeQueries, jq)
			continue
		}
		// Joins after a merge block belong to the merged query.
		target := q
		if len(q.mergeQueries) > 0 {
			target = &q.mergeQueries[len(q.mergeQueries)-1].Query
		}
		target.joinQueries = append(target.joinQueries, jq)
		if jt != LeftJoin && !target.hasJoinLeaves() && !hasJoinConds {
			op := OpAnd
			if jt == OrInnerJoin {
				op = OpOr
			}
			target.Entries.AppendJoin(op, len(target.joinQueries)-1)
		}
	}
	return nil
}

func (q *Query) hasJoinLeaves() bool {
	for i := range q.Entries.nodes {
		if q.Entries.nodes[i].kind == nodeJoin {
			return true
		}
	}
	return false
}

type pendingEqualPosition struct {
	pos    int
	fields []string
}

// deserializeRecords reads tagged records up to the end marker. When
// joinEntries is non-nil the stream belongs to a joined sub-query and may
// carry ON records. It reports whether a join-condition leaf was read.
func (q *Query) deserializeRecords(r *wire.Reader, joinEntries *[]QueryJoinEntry) (bool, error) {
	ns, err := r.GetVString()
	if err != nil {
		return false, err
	}
	q.Namespace = ns

	hasJoinConds := false
	var equalPositions []pendingEqualPosition

	for {
		tag, err := r.GetVarUInt()
		if err != nil {
			return hasJoinConds, err
		}
		switch tag {
		case queryCondition:
			if err := q.readCondition(r); err != nil {
				return hasJoinConds, err
			}
		case queryDistinct:
			field, err := r.GetVString()
			if err != nil {
				return hasJoinConds, err
			}
			q.Entries.Append(OpAnd, newDistinctEntry(field))
		case queryBetweenFieldsCondition:
			if err := q.readBetweenFields(r); err != nil {
				return hasJoinConds, err
			}
		case queryAlwaysFalseCondition:
			op, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.Entries.AppendAlwaysFalse(OpType(op))
		case queryJoinCondition:
			jt, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			joinIdx, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			op := OpAnd
			if JoinType(jt) == OrInnerJoin {
				op = OpOr
			}
			q.Entries.AppendJoin(op, int(joinIdx))
			hasJoinConds = true
		case queryOpenBracket:
			op, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.Entries.OpenBracket(OpType(op))
		case queryCloseBracket:
			if q.Entries.OpenBracketsCount() == 0 {
				return hasJoinConds, domain.ErrBracketsMismatch{}
			}
			q.Entries.CloseBracket()
		case queryEqualPosition:
			ep, err := readEqualPosition(r)
			if err != nil {
				return hasJoinConds, err
			}
			equalPositions = append(equalPositions, ep)
		case queryJoinOn:
			if joinEntries == nil {
				return hasJoinConds, domain.ErrJoinOnRootQuery{}
			}
			je, err := readJoinOn(r)
			if err != nil {
				return hasJoinConds, err
			}
			*joinEntries = append(*joinEntries, je)
		case queryAggregation:
			if err := q.readAggregation(r); err != nil {
				return hasJoinConds, err
			}
		case querySortIndex:
			if err := q.readSortIndex(r); err != nil {
				return hasJoinConds, err
			}
		case queryWithRank:
			q.withRank = true
		case querySelectFilter:
			f, err := r.GetVString()
			if err != nil {
				return hasJoinConds, err
			}
			q.selectFilter = append(q.selectFilter, f)
		case querySelectFunction:
			f, err := r.GetVString()
			if err != nil {
				return hasJoinConds, err
			}
			q.selectFunctions = append(q.selectFunctions, f)
		case queryDebugLevel:
			v, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.debugLevel = int(v)
		case queryStrictMode:
			v, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.strictMode = StrictMode(v)
		case queryLimit:
			v, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.count = uint32(v)
		case queryOffset:
			v, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.start = uint32(v)
		case queryReqTotal:
			v, err := r.GetVarUInt()
			if err != nil {
				return hasJoinConds, err
			}
			q.calcTotal = CalcTotalMode(v)
		case queryExplain:
			q.explain = true
		case queryDropField:
			column, err := r.GetVString()
			if err != nil {
				return hasJoinConds, err
			}
			if err := q.Drop(column); err != nil {
				return hasJoinConds, err
			}
		case queryUpdateField, queryUpdateFieldV2, queryUpdateObject:
			if err := q.readUpdateField(r, int(tag)); err != nil {
				return hasJoinConds, err
			}
		case queryEnd:
			return hasJoinConds, q.attachEqualPositions(equalPositions)
		default:
			return hasJoinConds, domain.ErrUnknownTag{Tag: int(tag)}
		}
	}
}

func (q *Query) readCondition(r *wire.Reader) error {
	field, err := r.GetVString()
	if err != nil {
		return err
	}
	op, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	cond, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	cnt, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	values := make(variant.Array, 0, cnt)
	for n := uint64(0); n < cnt; n++ {
		v, err := r.GetVariant()
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	// The wire form of DWithin is flat: two coordinates and a distance.
	if CondType(cond) == CondDWithin && len(values) == 3 {
		values = variant.Array{variant.NewTuple(values[0], values[1]), values[2]}
	}
	qe, err := newQueryEntry(field, CondType(cond), values)
	if err != nil {
		return err
	}
	q.Entries.Append(OpType(op), qe)
	return nil
}

func (q *Query) readBetweenFields(r *wire.Reader) error {
	op, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	left, err := r.GetVString()
	if err != nil {
		return err
	}
	cond, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	right, err := r.GetVString()
	if err != nil {
		return err
	}
	be, err := newBetweenFieldsQueryEntry(left, CondType(cond), right)
	if err != nil {
		return err
	}
	q.Entries.AppendBetweenFields(OpType(op), be)
	return nil
}

func readEqualPosition(r *wire.Reader) (pendingEqualPosition, error) {
	pos, err := r.GetVarUInt()
	if err != nil {
		return pendingEqualPosition{}, err
	}
	cnt, err := r.GetVarUInt()
	if err != nil {
		return pendingEqualPosition{}, err
	}
	fields := make([]string, 0, cnt)
	for n := uint64(0); n < cnt; n++ {
		f, err := r.GetVString()
		if err != nil {
			return pendingEqualPosition{}, err
		}
		fields = append(fields, f)
	}
	return pendingEqualPosition{pos: int(pos), fields: fields}, nil
}

// attachEqualPositions resolves positions recorded during decode against
// the finished tree: 0 is the root scope, i+1 the bracket at node i.
func (q *Query) attachEqualPositions(pending []pendingEqualPosition) error {
	for _, ep := range pending {
		if ep.pos == 0 {
			q.Entries.equalPositions = append(q.Entries.equalPositions, ep.fields)
			continue
		}
		i := ep.pos - 1
		if i < 0 || i >= q.Entries.Size() {
			return domain.ErrEqualPositionTarget{Position: ep.pos}
		}
		b, ok := q.Entries.BracketAt(i)
		if !ok {
			return domain.ErrEqualPositionTarget{Position: ep.pos}
		}
		b.AddEqualPosition(ep.fields...)
	}
	return nil
}

func readJoinOn(r *wire.Reader) (QueryJoinEntry, error) {
	op, err := r.GetVarUInt()
	if err != nil {
		return QueryJoinEntry{}, err
	}
	cond, err := r.GetVarUInt()
	if err != nil {
		return QueryJoinEntry{}, err
	}
	left, err := r.GetVString()
	if err != nil {
		return QueryJoinEntry{}, err
	}
	right, err := r.GetVString()
	if err != nil {
		return QueryJoinEntry{}, err
	}
	return NewQueryJoinEntry(OpType(op), left, CondType(cond), right), nil
}

// readAggregation reads the aggregation header and its optional parameter
// records. A record tag that does not belong to the aggregation is pushed
// back for the main loop.
func (q *Query) readAggregation(r *wire.Reader) error {
	aggType, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	cnt, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	fields := make([]string, 0, cnt)
	for n := uint64(0); n < cnt; n++ {
		f, err := r.GetVString()
		if err != nil {
			return err
		}
		fields = append(fields, f)
	}
	entry, err := NewAggregateEntry(AggType(aggType), fields)
	if err != nil {
		return err
	}
	for !r.Eof() {
		save := r.Pos()
		tag, err := r.GetVarUInt()
		if err != nil {
			return err
		}
		switch tag {
		case queryAggregationSort:
			expr, err := r.GetVString()
			if err != nil {
				return err
			}
			desc, err := r.GetVarUInt()
			if err != nil {
				return err
			}
			if err := entry.AddSortingEntry(SortingEntry{Expression: expr, Desc: desc != 0}); err != nil {
				return err
			}
		case queryAggregationLimit:
			v, err := r.GetVarUInt()
			if err != nil {
				return err
			}
			if err := entry.SetLimit(uint32(v)); err != nil {
				return err
			}
		case queryAggregationOffset:
			v, err := r.GetVarUInt()
			if err != nil {
				return err
			}
			if err := entry.SetOffset(uint32(v)); err != nil {
				return err
			}
		default:
			r.SetPos(save)
			return q.Aggregate(entry)
		}
	}
	return q.Aggregate(entry)
}

func (q *Query) readSortIndex(r *wire.Reader) error {
	expr, err := r.GetVString()
	if err != nil {
		return err
	}
	desc, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	cnt, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	if cnt != 0 && len(q.sortingEntries) > 0 {
		return domain.ErrForcedSortOrder{}
	}
	for n := uint64(0); n < cnt; n++ {
		v, err := r.GetVariant()
		if err != nil {
			return err
		}
		q.forcedSortOrder = append(q.forcedSortOrder, v)
	}
	q.sortingEntries = append(q.sortingEntries, SortingEntry{Expression: expr, Desc: desc != 0})
	return nil
}

// readUpdateField reads the three update record layouts. The legacy layout
// has no array flag: multi-value payloads imply an array column.
func (q *Query) readUpdateField(r *wire.Reader, tag int) error {
	column, err := r.GetVString()
	if err != nil {
		return err
	}
	isArray := false
	if tag != queryUpdateField {
		v, err := r.GetVarUInt()
		if err != nil {
			return err
		}
		isArray = v != 0
	}
	cnt, err := r.GetVarUInt()
	if err != nil {
		return err
	}
	if tag == queryUpdateField && cnt > 1 {
		isArray = true
	}
	isExpression := false
	values := make(variant.Array, 0, cnt)
	for n := uint64(0); n < cnt; n++ {
		expr, err := r.GetVarUInt()
		if err != nil {
			return err
		}
		isExpression = expr != 0
		v, err := r.GetVariant()
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	mode := FieldModeSet
	if tag == queryUpdateObject {
		mode = FieldModeSetJson
	}
	entry, err := NewUpdateEntry(column, values, mode, isExpression, isArray)
	if err != nil {
		return err
	}
	q.updateFields = append(q.updateFields, entry)
	return nil
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
