package protocol

import (
	"fmt"

	"github.com/danmuck/spsproto/internal/protocol/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Metadata is shared by every measurement. Timestamp is Unix epoch seconds
// (schema v1, uint32 on the wire).
type Metadata struct {
	CellID    uint32
	LoggerID  uint32
	Timestamp uint32
}

// MeasurementType names a payload variant by its oneof field name.
type MeasurementType string

const (
	TypePower    MeasurementType = "power"
	TypeTeros12  MeasurementType = "teros12"
	TypePhytos31 MeasurementType = "phytos31"
	TypeBME280   MeasurementType = "bme280"
	TypeTeros21  MeasurementType = "teros21"
)

// ValueKind is the runtime type tag reported next to projected values so
// integer and floating point fields are never conflated.
type ValueKind string

const (
	KindFloat ValueKind = "float"
	KindInt   ValueKind = "int"
)

// FieldValue is one projected payload field under its JSON name.
type FieldValue struct {
	Name  string
	Value any
	Kind  ValueKind
}

func floatValue(name string, v float64) FieldValue {
	return FieldValue{Name: name, Value: v, Kind: KindFloat}
}

func uintValue(name string, v uint32) FieldValue {
	return FieldValue{Name: name, Value: v, Kind: KindInt}
}

func intValue(name string, v int32) FieldValue {
	return FieldValue{Name: name, Value: v, Kind: KindInt}
}

// Payload is the closed set of measurement variants. Implementations live in
// this package only.
type Payload interface {
	Type() MeasurementType
	Values() []FieldValue
	tag() protowire.Number
	encode(b *wire.Builder)
	merge(fields []wire.Field) (Payload, error)
}

// Measurement is a validated measurement: metadata plus exactly one payload.
type Measurement struct {
	Meta    Metadata
	Payload Payload
}

// ResponseType is the server acknowledgement code.
type ResponseType int32

const (
	ResponseSuccess ResponseType = 0
	ResponseError   ResponseType = 1
)

func (r ResponseType) String() string {
	switch r {
	case ResponseSuccess:
		return "SUCCESS"
	case ResponseError:
		return "ERROR"
	default:
		return fmt.Sprintf("ResponseType(%d)", int32(r))
	}
}

func (r ResponseType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseResponseType matches SUCCESS or ERROR case-insensitively.
func ParseResponseType(s string) (ResponseType, error) {
	return Lookup(responseTypes, "response status", s)
}

var responseTypes = map[string]ResponseType{
	"success": ResponseSuccess,
	"error":   ResponseError,
}

type Response struct {
	Resp ResponseType `json:"resp"`
}

func (r Response) Success() bool { return r.Resp == ResponseSuccess }
