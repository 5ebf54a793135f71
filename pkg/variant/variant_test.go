package variant

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromInterface(t *testing.T) {
	tests := []struct {
		in   any
		want Type
	}{
		{nil, TypeNull},
		{5, TypeInt},
		{int64(5), TypeInt64},
		{uint16(5), TypeInt64},
		{2.5, TypeDouble},
		{float32(2.5), TypeDouble},
		{"x", TypeString},
		{true, TypeBool},
		{uuid.New(), TypeUuid},
		{[]any{1, 2}, TypeTuple},
		{[]string{"a"}, TypeTuple},
	}
	for _, tt := range tests {
		v, err := FromInterface(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Type(), "input %v", tt.in)
	}

	_, err := FromInterface(struct{}{})
	assert.Error(t, err)
}

func TestCompareRelaxedNumerics(t *testing.T) {
	c, err := Compare(NewInt(5), NewDouble(5.0))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = Compare(NewInt64(5), NewDouble(5.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(NewDouble(6), NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestCompareStringsBoolsUuids(t *testing.T) {
	c, err := Compare(NewString("a"), NewString("b"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(NewBool(false), NewBool(true))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	u := uuid.New()
	assert.True(t, Equal(NewUuid(u), NewUuid(u)))
}

func TestCompareIncomparable(t *testing.T) {
	_, err := Compare(NewString("5"), NewInt(5))
	var target ErrIncomparable
	assert.ErrorAs(t, err, &target)
	assert.False(t, Equal(NewString("5"), NewInt(5)))
}

func TestNullOrdersFirst(t *testing.T) {
	c, err := Compare(NewNull(), NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
	assert.True(t, Equal(NewNull(), NewNull()))
}

func TestCompareTuples(t *testing.T) {
	a := NewTuple(NewInt(1), NewString("x"))
	b := NewTuple(NewInt(1), NewString("y"))
	c, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	shorter := NewTuple(NewInt(1))
	c, err = Compare(shorter, a)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestPoint(t *testing.T) {
	p := Point{3, 4}
	assert.Equal(t, 5.0, p.DistanceTo(Point{0, 0}))

	v := NewPoint(p)
	got, ok := v.AsPoint()
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = NewTuple(NewInt(1)).AsPoint()
	assert.False(t, ok)
	_, ok = NewString("no").AsPoint()
	assert.False(t, ok)
}

func TestArrayContains(t *testing.T) {
	a, err := FromInterfaces(1, 2.0, "x")
	require.NoError(t, err)
	assert.True(t, a.Contains(NewInt64(2)))
	assert.True(t, a.Contains(NewString("x")))
	assert.False(t, a.Contains(NewString("y")))
}
