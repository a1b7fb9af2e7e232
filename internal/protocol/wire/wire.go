package wire

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrTypeMismatch = errors.New("wire: field type mismatch")
	ErrOverflow     = errors.New("wire: value overflows field width")
	ErrInvalidUTF8  = errors.New("wire: string field is not valid utf-8")
)

// ParseError locates a grammar failure within the parsed buffer.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wire: offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Field is one decoded tag/value pair. Exactly one of Varint, Fixed, or Value
// is meaningful, selected by Type.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Offset int
	Varint uint64
	Fixed  uint64
	Value  []byte
}

// DecodeFields splits payload into fields in wire order. Unknown field
// numbers are kept; groups are skipped over but keep their tag.
func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0, 4)
	i := 0
	for i < len(payload) {
		num, typ, n := protowire.ConsumeTag(payload[i:])
		if n < 0 {
			return nil, &ParseError{Offset: i, Err: protowire.ParseError(n)}
		}
		f := Field{Num: num, Type: typ, Offset: i}
		i += n

		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(payload[i:])
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(payload[i:])
			f.Fixed = uint64(v)
		case protowire.Fixed64Type:
			f.Fixed, n = protowire.ConsumeFixed64(payload[i:])
		case protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(payload[i:])
			if n >= 0 {
				f.Value = make([]byte, len(v))
				copy(f.Value, v)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, payload[i:])
		}
		if n < 0 {
			return nil, &ParseError{Offset: f.Offset, Err: protowire.ParseError(n)}
		}
		i += n
		fields = append(fields, f)
	}
	return fields, nil
}

// Uint32 returns a varint field as uint32, rejecting values wider than 32 bits.
func (f Field) Uint32() (uint32, error) {
	if f.Type != protowire.VarintType {
		return 0, ErrTypeMismatch
	}
	if f.Varint > math.MaxUint32 {
		return 0, ErrOverflow
	}
	return uint32(f.Varint), nil
}

// Int32 returns a varint field as int32. Both the sign-extended 10-byte form
// and the 32-bit two's-complement form older nanopb encoders emit are accepted.
func (f Field) Int32() (int32, error) {
	if f.Type != protowire.VarintType {
		return 0, ErrTypeMismatch
	}
	if f.Varint <= math.MaxUint32 {
		return int32(uint32(f.Varint)), nil
	}
	v := int64(f.Varint)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, ErrOverflow
	}
	return int32(v), nil
}

// Double returns a fixed64 field as an IEEE-754 double.
func (f Field) Double() (float64, error) {
	if f.Type != protowire.Fixed64Type {
		return 0, ErrTypeMismatch
	}
	return math.Float64frombits(f.Fixed), nil
}

// Text returns a length-delimited field as a UTF-8 string.
func (f Field) Text() (string, error) {
	if f.Type != protowire.BytesType {
		return "", ErrTypeMismatch
	}
	if !utf8.Valid(f.Value) {
		return "", ErrInvalidUTF8
	}
	return string(f.Value), nil
}

// Message returns the body of a length-delimited submessage field.
func (f Field) Message() ([]byte, error) {
	if f.Type != protowire.BytesType {
		return nil, ErrTypeMismatch
	}
	return f.Value, nil
}

// Varints returns the values of a repeated varint field occurrence, accepting
// both the packed and the unpacked encoding.
func (f Field) Varints() ([]uint64, error) {
	switch f.Type {
	case protowire.VarintType:
		return []uint64{f.Varint}, nil
	case protowire.BytesType:
		out := make([]uint64, 0, len(f.Value))
		for i := 0; i < len(f.Value); {
			v, n := protowire.ConsumeVarint(f.Value[i:])
			if n < 0 {
				return nil, &ParseError{Offset: i, Err: protowire.ParseError(n)}
			}
			out = append(out, v)
			i += n
		}
		return out, nil
	default:
		return nil, ErrTypeMismatch
	}
}
