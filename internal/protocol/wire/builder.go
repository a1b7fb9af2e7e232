package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Builder appends fields in proto3 canonical form: scalars equal to their
// zero value are omitted, submessages are always written.
// Callers append fields in ascending field number order.
type Builder struct {
	buf []byte
}

func NewBuilder(size int) *Builder {
	return &Builder{buf: make([]byte, 0, size)}
}

func (b *Builder) Uint32(num protowire.Number, v uint32) {
	if v == 0 {
		return
	}
	b.buf = protowire.AppendTag(b.buf, num, protowire.VarintType)
	b.buf = protowire.AppendVarint(b.buf, uint64(v))
}

// Int32 writes v sign-extended to 64 bits, as int32 and enum fields require.
func (b *Builder) Int32(num protowire.Number, v int32) {
	if v == 0 {
		return
	}
	b.buf = protowire.AppendTag(b.buf, num, protowire.VarintType)
	b.buf = protowire.AppendVarint(b.buf, uint64(int64(v)))
}

// Double omits only positive zero; -0.0 has a non-zero bit pattern.
func (b *Builder) Double(num protowire.Number, v float64) {
	bits := math.Float64bits(v)
	if bits == 0 {
		return
	}
	b.buf = protowire.AppendTag(b.buf, num, protowire.Fixed64Type)
	b.buf = protowire.AppendFixed64(b.buf, bits)
}

func (b *Builder) Text(num protowire.Number, v string) {
	if v == "" {
		return
	}
	b.buf = protowire.AppendTag(b.buf, num, protowire.BytesType)
	b.buf = protowire.AppendString(b.buf, v)
}

func (b *Builder) Message(num protowire.Number, body []byte) {
	b.buf = protowire.AppendTag(b.buf, num, protowire.BytesType)
	b.buf = protowire.AppendBytes(b.buf, body)
}

// PackedInt32 writes a repeated int32/enum field in packed form.
func (b *Builder) PackedInt32(num protowire.Number, vs []int32) {
	if len(vs) == 0 {
		return
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(uint64(int64(v)))
	}
	b.buf = protowire.AppendTag(b.buf, num, protowire.BytesType)
	b.buf = protowire.AppendVarint(b.buf, uint64(size))
	for _, v := range vs {
		b.buf = protowire.AppendVarint(b.buf, uint64(int64(v)))
	}
}

func (b *Builder) Len() int { return len(b.buf) }

func (b *Builder) Bytes() []byte {
	return b.buf
}
