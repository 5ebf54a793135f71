package reindexer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
	"github.com/maximbogatyrev/reindexer/pkg/wire"
)

type CodecTestSuite struct {
	suite.Suite
}

func (s *CodecTestSuite) roundTrip(q *Query) *Query {
	ser := wire.NewSerializer()
	s.Require().NoError(q.Serialize(ser, Normal))
	out := NewQuery("")
	s.Require().NoError(out.Deserialize(wire.NewReader(ser.Bytes())))
	return out
}

func (s *CodecTestSuite) assertRoundTrip(q *Query) {
	out := s.roundTrip(q)
	s.True(q.Equal(out), "query changed across serialize/deserialize")
}

// A buffer holding only the namespace and the end marker is the empty
// query.
func (s *CodecTestSuite) TestEmptyQuery() {
	q := NewQuery("items")
	out := s.roundTrip(q)
	s.Equal("items", out.Namespace)
	s.True(q.Equal(out))
}

func (s *CodecTestSuite) TestConditions() {
	q := NewQuery("items")
	s.Require().NoError(q.Where("id", CondEq, 7))
	s.Require().NoError(q.Or().Where("price", CondRange, 10, 99))
	s.Require().NoError(q.Not().Where("name", CondLike, "ab%"))
	s.Require().NoError(q.Where("tags", CondSet, []int{1, 2, 3}))
	s.Require().NoError(q.Where("code", CondAllSet, 4, 5))
	s.Require().NoError(q.Where("deleted", CondEmpty))
	s.Require().NoError(q.Where("extra", CondAny))
	s.assertRoundTrip(q)
}

func (s *CodecTestSuite) TestBracketsAndEqualPositions() {
	q := NewQuery("items")
	s.Require().NoError(q.Where("id", CondGt, 0))
	q.OpenBracket()
	s.Require().NoError(q.Where("a", CondEq, 1))
	s.Require().NoError(q.Or().Where("b", CondEq, 2))
	q.EqualPosition("a", "b")
	q.CloseBracket()
	q.EqualPosition("x", "y")
	s.assertRoundTrip(q)

	out := s.roundTrip(q)
	s.Equal([][]string{{"x", "y"}}, out.Entries.EqualPositions())
	b, ok := out.Entries.BracketAt(1)
	s.Require().True(ok)
	s.Equal([][]string{{"a", "b"}}, b.EqualPositions())
}

func (s *CodecTestSuite) TestDistinctAndAlwaysFalse() {
	q := NewQuery("items")
	q.Distinct("color")
	q.Not().AlwaysFalse()
	s.Require().NoError(q.Where("id", CondLt, 10))
	s.assertRoundTrip(q)
}

func (s *CodecTestSuite) TestBetweenFields() {
	q := NewQuery("items")
	s.Require().NoError(q.WhereBetweenFields("updated", CondGt, "created"))
	s.assertRoundTrip(q)
}

// DWithin travels as three flat values and comes back as point plus
// distance.
func (s *CodecTestSuite) TestDWithin() {
	q := NewQuery("points")
	s.Require().NoError(q.DWithin("location", variant.Point{1.5, -2.5}, 10))
	out := s.roundTrip(q)
	s.True(q.Equal(out))

	qe, ok := out.Entries.ConditionAt(0)
	s.Require().True(ok)
	s.Equal(CondDWithin, qe.Condition())
	s.Require().Len(qe.Values(), 2)
	p, ok := qe.Values()[0].AsPoint()
	s.Require().True(ok)
	s.Equal(variant.Point{1.5, -2.5}, p)
}

func (s *CodecTestSuite) TestSortingAndForcedOrder() {
	q := NewQuery("items")
	s.Require().NoError(q.Sort("year", true, 2007, 2019, 2021))
	s.Require().NoError(q.Sort("name", false))
	s.assertRoundTrip(q)
}

// A forced-order value list on a non-first sort record is malformed.
func (s *CodecTestSuite) TestForcedOrderOnSecondSortRecord() {
	ser := wire.NewSerializer()
	ser.PutVString("items")
	ser.PutVarUInt(querySortIndex)
	ser.PutVString("year")
	ser.PutVarUInt(0)
	ser.PutVarUInt(0)
	ser.PutVarUInt(querySortIndex)
	ser.PutVString("name")
	ser.PutVarUInt(0)
	ser.PutVarUInt(1)
	s.Require().NoError(ser.PutVariant(variant.NewInt64(2007)))
	ser.PutVarUInt(queryEnd)

	out := NewQuery("")
	err := out.Deserialize(wire.NewReader(ser.Bytes()))
	s.ErrorAs(err, &ErrForcedSortOrder{})
}

func (s *CodecTestSuite) TestPagingTotalsAndFlags() {
	q := NewQuery("items").
		Limit(25).
		Offset(100).
		ReqTotal().
		Explain().
		WithRank().
		Strict(StrictModeNames).
		Debug(3)
	s.Require().NoError(q.Select("id", "name"))
	q.Functions("name = highlight(<b>,</b>)")
	s.assertRoundTrip(q)
}

// SkipLimitOffset leaves paging at defaults on the wire.
func (s *CodecTestSuite) TestSkipLimitOffsetMode() {
	q := NewQuery("items").Limit(5).Offset(10)
	ser := wire.NewSerializer()
	s.Require().NoError(q.Serialize(ser, SkipLimitOffset))
	out := NewQuery("")
	s.Require().NoError(out.Deserialize(wire.NewReader(ser.Bytes())))
	s.False(out.HasLimit())
	s.False(out.HasOffset())
}

func (s *CodecTestSuite) TestAggregations() {
	q := NewQuery("items")
	s.Require().NoError(q.AggregateSum("price"))
	facet, err := q.AggregateFacet("brand", "model")
	s.Require().NoError(err)
	s.Require().NoError(facet.AddSortingEntry(SortingEntry{Expression: "count", Desc: true}))
	s.Require().NoError(facet.SetLimit(10))
	s.Require().NoError(facet.SetOffset(2))
	s.Require().NoError(q.AggregateMin("price"))
	s.assertRoundTrip(q)
}

func (s *CodecTestSuite) TestUpdates() {
	q := NewQuery("items")
	s.Require().NoError(q.Where("id", CondEq, 1))
	s.Require().NoError(q.Set("price", variant.Array{variant.NewInt64(99)}, false))
	s.Require().NoError(q.Set("price2", variant.Array{variant.NewString("price * 2")}, true))
	s.Require().NoError(q.SetArray("tags", variant.Array{variant.NewInt64(1), variant.NewInt64(2)}))
	s.Require().NoError(q.SetObject("nested", variant.Array{variant.NewString(`{"a":1}`)}, false))
	s.Require().NoError(q.Drop("obsolete"))
	s.assertRoundTrip(q)
}

func (s *CodecTestSuite) TestJoins() {
	q := NewQuery("orders")
	s.Require().NoError(q.Where("status", CondEq, "open"))
	q.InnerJoin(NewQuery("customers")).On("customer_id", CondEq, "id")
	q.LeftJoin(NewQuery("managers")).On("manager_id", CondEq, "id")
	q.Or().InnerJoin(NewQuery("partners")).On("partner_id", CondEq, "id")
	s.assertRoundTrip(q)

	out := s.roundTrip(q)
	s.Require().Len(out.JoinQueries(), 3)
	s.Equal(InnerJoin, out.JoinQueries()[0].JoinType())
	s.Equal(LeftJoin, out.JoinQueries()[1].JoinType())
	s.Equal(OrInnerJoin, out.JoinQueries()[2].JoinType())
}

func (s *CodecTestSuite) TestMerge() {
	q := NewQuery("items_2024")
	s.Require().NoError(q.Where("id", CondGt, 0))
	sub := NewQuery("items_2023")
	s.Require().NoError(sub.Where("id", CondGt, 0))
	q.Merge(sub)
	s.assertRoundTrip(q)
}

// Joined streams without explicit join-condition leaves grow one during
// decode, OR INNER joins with an OR link.
func (s *CodecTestSuite) TestJoinLeafSynthesis() {
	ser := wire.NewSerializer()
	ser.PutVString("orders")
	ser.PutVarUInt(queryEnd)
	ser.PutVarUInt(uint64(OrInnerJoin))
	ser.PutVString("customers")
	ser.PutVarUInt(queryEnd)

	out := NewQuery("")
	s.Require().NoError(out.Deserialize(wire.NewReader(ser.Bytes())))
	s.Require().Equal(1, out.Entries.Size())
	joinIdx, ok := out.Entries.JoinAt(0)
	s.Require().True(ok)
	s.Equal(0, joinIdx)
	s.Equal(OpOr, out.Entries.OperationAt(0))
}

// The legacy update record has no array flag; multi-value payloads imply
// an array column.
func (s *CodecTestSuite) TestLegacyUpdateFieldDecode() {
	ser := wire.NewSerializer()
	ser.PutVString("items")
	ser.PutVarUInt(queryUpdateField)
	ser.PutVString("tags")
	ser.PutVarUInt(2)
	ser.PutVarUInt(0)
	s.Require().NoError(ser.PutVariant(variant.NewInt64(1)))
	ser.PutVarUInt(0)
	s.Require().NoError(ser.PutVariant(variant.NewInt64(2)))
	ser.PutVarUInt(queryUpdateField)
	ser.PutVString("price")
	ser.PutVarUInt(1)
	ser.PutVarUInt(0)
	s.Require().NoError(ser.PutVariant(variant.NewInt64(5)))
	ser.PutVarUInt(queryEnd)

	out := NewQuery("")
	s.Require().NoError(out.Deserialize(wire.NewReader(ser.Bytes())))
	s.Require().Len(out.UpdateFields(), 2)
	s.True(out.UpdateFields()[0].IsArray())
	s.False(out.UpdateFields()[1].IsArray())
}

func (s *CodecTestSuite) TestUnknownTag() {
	ser := wire.NewSerializer()
	ser.PutVString("items")
	ser.PutVarUInt(99)
	out := NewQuery("")
	err := out.Deserialize(wire.NewReader(ser.Bytes()))
	s.Require().Error(err)
	s.ErrorAs(err, &ErrUnknownTag{})
}

func (s *CodecTestSuite) TestCloseBracketMismatchOnDecode() {
	ser := wire.NewSerializer()
	ser.PutVString("items")
	ser.PutVarUInt(queryCloseBracket)
	out := NewQuery("")
	err := out.Deserialize(wire.NewReader(ser.Bytes()))
	s.ErrorAs(err, &ErrBracketsMismatch{})
}

func (s *CodecTestSuite) TestEqualPositionOnNonBracket() {
	ser := wire.NewSerializer()
	ser.PutVString("items")
	ser.PutVarUInt(queryDistinct)
	ser.PutVString("color")
	ser.PutVarUInt(queryEqualPosition)
	ser.PutVarUInt(1)
	ser.PutVarUInt(2)
	ser.PutVString("a")
	ser.PutVString("b")
	ser.PutVarUInt(queryEnd)

	out := NewQuery("")
	err := out.Deserialize(wire.NewReader(ser.Bytes()))
	s.ErrorAs(err, &ErrEqualPositionTarget{})
}

func TestCodecTestSuite(t *testing.T) {
	suite.Run(t, new(CodecTestSuite))
}

func TestTruncatedBuffer(t *testing.T) {
	q := NewQuery("items")
	require.NoError(t, q.Where("id", CondEq, 1))
	ser := wire.NewSerializer()
	require.NoError(t, q.Serialize(ser, Normal))
	buf := ser.Bytes()

	out := NewQuery("")
	err := out.Deserialize(wire.NewReader(buf[:len(buf)-2]))
	require.Error(t, err)
}
