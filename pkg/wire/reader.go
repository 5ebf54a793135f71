package wire

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/dolmen-go/contextio"
	"github.com/google/uuid"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// ErrBufferUnderflow is returned when a read runs past the end of the
// buffer.
type ErrBufferUnderflow struct {
	Pos int
}

// Error implements [error].
func (e ErrBufferUnderflow) Error() string {
	return fmt.Sprintf("binary buffer underflow at offset %d", e.Pos)
}

// ErrVariantType is returned for a value-kind tag that has no wire
// representation.
type ErrVariantType struct {
	Type variant.Type
}

// Error implements [error].
func (e ErrVariantType) Error() string {
	return fmt.Sprintf("variant type %s cannot be binary encoded", e.Type)
}

// Reader decodes a buffer produced by [Serializer]. The read position can be
// saved and restored, which the codec uses to push back a record it peeked
// at but does not own.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// NewReaderFrom drains r into a reader, honoring ctx cancellation between
// reads.
func NewReaderFrom(ctx context.Context, r io.Reader) (*Reader, error) {
	buf, err := io.ReadAll(contextio.NewReader(ctx, r))
	if err != nil {
		return nil, err
	}
	return NewReader(buf), nil
}

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// SetPos rewinds or advances the read offset.
func (r *Reader) SetPos(pos int) { r.pos = pos }

// Eof reports whether the whole buffer has been consumed.
func (r *Reader) Eof() bool { return r.pos >= len(r.buf) }

// GetVarUInt reads an unsigned LEB128 varint.
func (r *Reader) GetVarUInt() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, ErrBufferUnderflow{Pos: r.pos}
	}
	r.pos += n
	return v, nil
}

// GetVarInt reads a zigzag varint.
func (r *Reader) GetVarInt() (int64, error) {
	v, n := binary.Varint(r.buf[r.pos:])
	if n <= 0 {
		return 0, ErrBufferUnderflow{Pos: r.pos}
	}
	r.pos += n
	return v, nil
}

// GetVString reads a length-prefixed string.
func (r *Reader) GetVString() (string, error) {
	l, err := r.GetVarUInt()
	if err != nil {
		return "", err
	}
	if r.pos+int(l) > len(r.buf) {
		return "", ErrBufferUnderflow{Pos: r.pos}
	}
	s := string(r.buf[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

// GetDouble reads 8 little-endian IEEE 754 bytes.
func (r *Reader) GetDouble() (float64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, ErrBufferUnderflow{Pos: r.pos}
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// GetUuid reads two fixed-width little-endian 64-bit words.
func (r *Reader) GetUuid() (uuid.UUID, error) {
	if r.pos+16 > len(r.buf) {
		return uuid.UUID{}, ErrBufferUnderflow{Pos: r.pos}
	}
	var u uuid.UUID
	binary.LittleEndian.PutUint64(u[0:8], binary.LittleEndian.Uint64(r.buf[r.pos:]))
	binary.LittleEndian.PutUint64(u[8:16], binary.LittleEndian.Uint64(r.buf[r.pos+8:]))
	r.pos += 16
	return u, nil
}

// GetVariant reads a value-kind tag and its payload.
func (r *Reader) GetVariant() (variant.Variant, error) {
	tag, err := r.GetVarUInt()
	if err != nil {
		return variant.Variant{}, err
	}
	switch variant.Type(tag) {
	case variant.TypeInt:
		v, err := r.GetVarInt()
		return variant.NewInt(int(v)), err
	case variant.TypeInt64:
		v, err := r.GetVarInt()
		return variant.NewInt64(v), err
	case variant.TypeDouble:
		v, err := r.GetDouble()
		return variant.NewDouble(v), err
	case variant.TypeString:
		v, err := r.GetVString()
		return variant.NewString(v), err
	case variant.TypeBool:
		v, err := r.GetVarUInt()
		return variant.NewBool(v != 0), err
	case variant.TypeNull:
		return variant.NewNull(), nil
	case variant.TypeUuid:
		v, err := r.GetUuid()
		return variant.NewUuid(v), err
	case variant.TypeTuple, variant.TypeComposite:
		cnt, err := r.GetVarUInt()
		if err != nil {
			return variant.Variant{}, err
		}
		sub := make(variant.Array, 0, cnt)
		for n := uint64(0); n < cnt; n++ {
			el, err := r.GetVariant()
			if err != nil {
				return variant.Variant{}, err
			}
			sub = append(sub, el)
		}
		if variant.Type(tag) == variant.TypeComposite {
			return variant.NewComposite(sub...), nil
		}
		return variant.NewTuple(sub...), nil
	}
	return variant.Variant{}, ErrVariantType{Type: variant.Type(tag)}
}
