package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestBuilderDecodeRoundTripPreservesUnknown(t *testing.T) {
	b := NewBuilder(32)
	b.Uint32(1, 7)
	b.Double(2, 37.13)
	b.Text(9999, "extra") // unknown to any schema
	out, err := DecodeFields(b.Bytes())
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(out))
	}
	if v, err := out[0].Uint32(); err != nil || v != 7 {
		t.Fatalf("uint32 field: v=%d err=%v", v, err)
	}
	if v, err := out[1].Double(); err != nil || v != 37.13 {
		t.Fatalf("double field: v=%v err=%v", v, err)
	}
	if out[2].Num != 9999 || !bytes.Equal(out[2].Value, []byte("extra")) {
		t.Fatalf("unknown field not preserved: %+v", out[2])
	}
}

func TestBuilderOmitsZeroScalars(t *testing.T) {
	b := NewBuilder(8)
	b.Uint32(1, 0)
	b.Int32(2, 0)
	b.Double(3, 0)
	b.Text(4, "")
	b.PackedInt32(5, nil)
	if b.Len() != 0 {
		t.Fatalf("expected empty encoding, got %x", b.Bytes())
	}
}

func TestBuilderKeepsNegativeZeroAndEmptyMessage(t *testing.T) {
	b := NewBuilder(16)
	b.Double(1, math.Copysign(0, -1))
	b.Message(2, nil)
	want := []byte{0x09, 0, 0, 0, 0, 0, 0, 0, 0x80, 0x12, 0x00}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("got %x want %x", b.Bytes(), want)
	}
}

func TestInt32NegativeSignExtends(t *testing.T) {
	b := NewBuilder(16)
	b.Int32(2, -5)
	if b.Len() != 11 {
		t.Fatalf("expected 1 byte tag + 10 byte varint, got %d", b.Len())
	}
	fields, err := DecodeFields(b.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, err := fields[0].Int32()
	if err != nil || v != -5 {
		t.Fatalf("int32: v=%d err=%v", v, err)
	}
}

func TestInt32AcceptsTwosComplementWidth(t *testing.T) {
	cases := []struct {
		varint uint64
		want   int32
	}{
		{0xFFFFFFFF, -1},
		{0x80000000, math.MinInt32},
		{uint64(math.MaxInt32), math.MaxInt32},
		{math.MaxUint64, -1},
	}
	for _, tc := range cases {
		buf := protowire.AppendTag(nil, 2, protowire.VarintType)
		buf = protowire.AppendVarint(buf, tc.varint)
		fields, err := DecodeFields(buf)
		if err != nil {
			t.Fatalf("decode %#x: %v", tc.varint, err)
		}
		v, err := fields[0].Int32()
		if err != nil || v != tc.want {
			t.Fatalf("varint %#x: v=%d err=%v want %d", tc.varint, v, err, tc.want)
		}
	}
	buf := protowire.AppendTag(nil, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, 1<<32)
	fields, err := DecodeFields(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := fields[0].Int32(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestPackedAndUnpackedVarints(t *testing.T) {
	b := NewBuilder(16)
	b.PackedInt32(5, []int32{0, 2, 4})
	fields, err := DecodeFields(b.Bytes())
	if err != nil {
		t.Fatalf("decode packed: %v", err)
	}
	vs, err := fields[0].Varints()
	if err != nil || len(vs) != 3 || vs[1] != 2 {
		t.Fatalf("packed varints: %v err=%v", vs, err)
	}

	unpacked := []byte{0x28, 0x03, 0x28, 0x01}
	fields, err = DecodeFields(unpacked)
	if err != nil {
		t.Fatalf("decode unpacked: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(fields))
	}
	vs, err = fields[1].Varints()
	if err != nil || len(vs) != 1 || vs[0] != 1 {
		t.Fatalf("unpacked varints: %v err=%v", vs, err)
	}
}

func TestDecodeFieldsTruncatedIsDeterministic(t *testing.T) {
	// field 1, bytes, len=5, value only 2 bytes
	_, err := DecodeFields([]byte{0x0a, 0x05, 'a', 'b'})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Offset != 0 || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("unexpected parse error: %+v", pe)
	}
}

func TestDecodeFieldsRejectsFieldZero(t *testing.T) {
	if _, err := DecodeFields([]byte{0x00, 0x01}); err == nil {
		t.Fatalf("expected error for field number 0")
	}
}

func TestDecodeFieldsRejectsStrayEndGroup(t *testing.T) {
	tag := protowire.AppendTag(nil, 1, protowire.EndGroupType)
	if _, err := DecodeFields(tag); err == nil {
		t.Fatalf("expected error for unmatched end group")
	}
}

func TestUint32Overflow(t *testing.T) {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, math.MaxUint32+1)
	fields, err := DecodeFields(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := fields[0].Uint32(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestAccessorTypeMismatch(t *testing.T) {
	f := Field{Num: 1, Type: protowire.Fixed64Type}
	if _, err := f.Uint32(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := f.Text(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	f := Field{Num: 1, Type: protowire.BytesType, Value: []byte{0xff, 0xfe}}
	if _, err := f.Text(); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestDecodeFieldsCopiesValues(t *testing.T) {
	buf := []byte{0x0a, 0x02, 'h', 'i'}
	fields, err := DecodeFields(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	buf[2] = 'X'
	if string(fields[0].Value) != "hi" {
		t.Fatalf("decoded value aliases input: %q", fields[0].Value)
	}
}
