package wire

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	u := uuid.New()
	ser := NewSerializer().
		PutVarUInt(0).
		PutVarUInt(300).
		PutVarInt(-1).
		PutVarInt(1 << 40).
		PutVString("").
		PutVString("naïve").
		PutDouble(-2.5).
		PutUuid(u)

	r := NewReader(ser.Bytes())

	got, err := r.GetVarUInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
	got, err = r.GetVarUInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(300), got)

	i, err := r.GetVarInt()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), i)
	i, err = r.GetVarInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), i)

	s, err := r.GetVString()
	require.NoError(t, err)
	assert.Equal(t, "", s)
	s, err = r.GetVString()
	require.NoError(t, err)
	assert.Equal(t, "naïve", s)

	d, err := r.GetDouble()
	require.NoError(t, err)
	assert.Equal(t, -2.5, d)

	gotUuid, err := r.GetUuid()
	require.NoError(t, err)
	assert.Equal(t, u, gotUuid)

	assert.True(t, r.Eof())
}

func TestVariantRoundTrip(t *testing.T) {
	values := []variant.Variant{
		variant.NewInt(-7),
		variant.NewInt64(1 << 40),
		variant.NewDouble(3.25),
		variant.NewString("abc"),
		variant.NewBool(true),
		variant.NewBool(false),
		variant.NewNull(),
		variant.NewUuid(uuid.New()),
		variant.NewTuple(variant.NewDouble(1), variant.NewDouble(2)),
		variant.NewComposite(variant.NewInt64(1), variant.NewString("x")),
	}

	ser := NewSerializer()
	for _, v := range values {
		require.NoError(t, ser.PutVariant(v))
	}

	r := NewReader(ser.Bytes())
	for _, want := range values {
		got, err := r.GetVariant()
		require.NoError(t, err)
		assert.Equal(t, want.Type(), got.Type())
		assert.True(t, variant.Equal(want, got), "value %s", want)
	}
	assert.True(t, r.Eof())
}

func TestVariantUnknownTag(t *testing.T) {
	r := NewReader([]byte{byte(variant.TypeUndefined)})
	_, err := r.GetVariant()
	var target ErrVariantType
	assert.ErrorAs(t, err, &target)
}

// A decoder that peeks at a record it does not own rewinds to the saved
// offset and leaves the record for its caller.
func TestPosPushBack(t *testing.T) {
	ser := NewSerializer().PutVarUInt(1).PutVarUInt(2).PutVarUInt(3)

	r := NewReader(ser.Bytes())
	_, err := r.GetVarUInt()
	require.NoError(t, err)

	mark := r.Pos()
	peeked, err := r.GetVarUInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), peeked)

	r.SetPos(mark)
	again, err := r.GetVarUInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), again)
}

func TestUnderflow(t *testing.T) {
	var target ErrBufferUnderflow

	r := NewReader(nil)
	_, err := r.GetVarUInt()
	assert.ErrorAs(t, err, &target)

	r = NewReader([]byte{0x80})
	_, err = r.GetVarUInt()
	assert.ErrorAs(t, err, &target)

	r = NewReader([]byte{3, 'a'})
	_, err = r.GetVString()
	assert.ErrorAs(t, err, &target)

	r = NewReader([]byte{1, 2, 3})
	_, err = r.GetDouble()
	assert.ErrorAs(t, err, &target)

	r = NewReader([]byte{1, 2, 3})
	_, err = r.GetUuid()
	assert.ErrorAs(t, err, &target)
}

func TestAppendAndReset(t *testing.T) {
	a := NewSerializer().PutVarUInt(1)
	b := NewSerializer().PutVarUInt(2)
	a.Append(b)

	r := NewReader(a.Bytes())
	v, err := r.GetVarUInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	v, err = r.GetVarUInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	a.Reset()
	assert.Equal(t, 0, a.Len())
}

func TestStreamRoundTrip(t *testing.T) {
	ser := NewSerializer().PutVString("payload").PutDouble(1.5)

	var sink bytes.Buffer
	n, err := ser.WriteTo(context.Background(), &sink)
	require.NoError(t, err)
	assert.Equal(t, int64(ser.Len()), n)

	r, err := NewReaderFrom(context.Background(), &sink)
	require.NoError(t, err)
	s, err := r.GetVString()
	require.NoError(t, err)
	assert.Equal(t, "payload", s)
}

func TestCanceledStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSerializer().PutVarUInt(1).WriteTo(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewReaderFrom(ctx, bytes.NewReader([]byte{1}))
	assert.ErrorIs(t, err, context.Canceled)
}
