package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedVariant = errors.New("protocol: unsupported variant")
	ErrMalformed          = errors.New("protocol: malformed message")
	ErrMissingMetadata    = errors.New("protocol: missing metadata")
	ErrMissingPayload     = errors.New("protocol: missing payload")
	// ErrAmbiguousPayload matches ErrMissingPayload under errors.Is: a oneof
	// with several members written has no single payload either.
	ErrAmbiguousPayload = fmt.Errorf("%w: multiple variants set", ErrMissingPayload)
	ErrUnknownEnum      = errors.New("protocol: unknown enum value")
)

// UnsupportedVariantError reports a lookup table miss at encode time.
type UnsupportedVariantError struct {
	Table string
	Key   string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("protocol: %s %q not implemented", e.Table, e.Key)
}

func (e *UnsupportedVariantError) Is(target error) bool {
	return target == ErrUnsupportedVariant
}

// DecodeError reports bytes that do not parse against the schema. Path names
// the message or submessage being parsed, e.g. "Measurement.power".
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: malformed %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// IsSemantic reports whether err is a protocol invariant violation on
// otherwise well-formed bytes.
func IsSemantic(err error) bool {
	return errors.Is(err, ErrMissingMetadata) || errors.Is(err, ErrMissingPayload)
}

func malformed(path string, err error) error {
	return &DecodeError{Path: path, Err: err}
}

// EnumError reports a closed enum field holding a value outside its table.
type EnumError struct {
	Enum  string
	Value int32
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("protocol: unknown %s value %d", e.Enum, e.Value)
}

func (e *EnumError) Is(target error) bool {
	return target == ErrUnknownEnum
}
