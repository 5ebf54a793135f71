// Package wire implements the tagged-varint binary buffer the query codec
// writes to and reads from. Unsigned integers are LEB128 varints, signed
// integers are zigzag varints, doubles are 8-byte little-endian IEEE 754 and
// strings are length-prefixed byte runs.
package wire

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/dolmen-go/contextio"
	"github.com/google/uuid"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Serializer is an append-only binary buffer. Put methods return the
// serializer so writes chain.
type Serializer struct {
	buf []byte
}

// NewSerializer returns an empty serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Bytes returns the accumulated buffer. The slice aliases the serializer's
// storage and is only valid until the next Put.
func (s *Serializer) Bytes() []byte { return s.buf }

// Len returns the number of bytes written so far.
func (s *Serializer) Len() int { return len(s.buf) }

// Reset empties the buffer keeping its storage.
func (s *Serializer) Reset() { s.buf = s.buf[:0] }

// PutVarUInt appends v as an unsigned LEB128 varint.
func (s *Serializer) PutVarUInt(v uint64) *Serializer {
	s.buf = binary.AppendUvarint(s.buf, v)
	return s
}

// PutVarInt appends v as a zigzag varint.
func (s *Serializer) PutVarInt(v int64) *Serializer {
	s.buf = binary.AppendVarint(s.buf, v)
	return s
}

// PutVString appends a varint length prefix followed by the bytes of v.
func (s *Serializer) PutVString(v string) *Serializer {
	s.buf = binary.AppendUvarint(s.buf, uint64(len(v)))
	s.buf = append(s.buf, v...)
	return s
}

// PutDouble appends v as 8 little-endian IEEE 754 bytes.
func (s *Serializer) PutDouble(v float64) *Serializer {
	s.buf = binary.LittleEndian.AppendUint64(s.buf, math.Float64bits(v))
	return s
}

// PutUuid appends u as two fixed-width little-endian 64-bit words.
func (s *Serializer) PutUuid(u uuid.UUID) *Serializer {
	s.buf = binary.LittleEndian.AppendUint64(s.buf, binary.LittleEndian.Uint64(u[0:8]))
	s.buf = binary.LittleEndian.AppendUint64(s.buf, binary.LittleEndian.Uint64(u[8:16]))
	return s
}

// PutVariant appends the value-kind tag of v followed by its payload.
func (s *Serializer) PutVariant(v variant.Variant) error {
	s.PutVarUInt(uint64(v.Type()))
	switch v.Type() {
	case variant.TypeInt, variant.TypeInt64:
		s.PutVarInt(v.Int64())
	case variant.TypeDouble:
		s.PutDouble(v.Float())
	case variant.TypeString:
		s.PutVString(v.Str())
	case variant.TypeBool:
		if v.Bool() {
			s.PutVarUInt(1)
		} else {
			s.PutVarUInt(0)
		}
	case variant.TypeNull:
	case variant.TypeUuid:
		s.PutUuid(v.Uuid())
	case variant.TypeTuple, variant.TypeComposite:
		sub := v.Tuple()
		s.PutVarUInt(uint64(len(sub)))
		for _, el := range sub {
			if err := s.PutVariant(el); err != nil {
				return err
			}
		}
	default:
		return ErrVariantType{Type: v.Type()}
	}
	return nil
}

// Append copies the contents of o onto s.
func (s *Serializer) Append(o *Serializer) *Serializer {
	s.buf = append(s.buf, o.buf...)
	return s
}

// WriteTo streams the buffer into w, honoring ctx cancellation between
// writes.
func (s *Serializer) WriteTo(ctx context.Context, w io.Writer) (int64, error) {
	n, err := contextio.NewWriter(ctx, w).Write(s.buf)
	return int64(n), err
}
