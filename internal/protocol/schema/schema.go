package schema

import (
	"fmt"

	"github.com/danmuck/spsproto/internal/protocol/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Message identifies one message shape of soil_power_sensor.proto.
type Message uint8

const (
	MsgMeasurementMetadata Message = iota + 1
	MsgPowerMeasurement
	MsgTeros12Measurement
	MsgTeros21Measurement
	MsgPhytos31Measurement
	MsgBME280Measurement
	MsgMeasurement
	MsgResponse
	MsgUserConfiguration
	MsgEsp32Command
	MsgPageCommand
	MsgTestCommand
)

var messageNames = map[Message]string{
	MsgMeasurementMetadata: "MeasurementMetadata",
	MsgPowerMeasurement:    "PowerMeasurement",
	MsgTeros12Measurement:  "Teros12Measurement",
	MsgTeros21Measurement:  "Teros21Measurement",
	MsgPhytos31Measurement: "Phytos31Measurement",
	MsgBME280Measurement:   "BME280Measurement",
	MsgMeasurement:         "Measurement",
	MsgResponse:            "Response",
	MsgUserConfiguration:   "UserConfiguration",
	MsgEsp32Command:        "Esp32Command",
	MsgPageCommand:         "PageCommand",
	MsgTestCommand:         "TestCommand",
}

func (m Message) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Message(%d)", uint8(m))
}

// Field numbers. These are fixed by deployed firmware and must not change.
const (
	MetaCellID   protowire.Number = 1
	MetaLoggerID protowire.Number = 2
	MetaTs       protowire.Number = 3

	PowerVoltage protowire.Number = 2
	PowerCurrent protowire.Number = 3

	Teros12VwcRaw protowire.Number = 2
	Teros12VwcAdj protowire.Number = 3
	Teros12Temp   protowire.Number = 4
	Teros12Ec     protowire.Number = 5

	Teros21MatricPot protowire.Number = 1
	Teros21Temp      protowire.Number = 2

	Phytos31Voltage     protowire.Number = 1
	Phytos31LeafWetness protowire.Number = 2

	BME280Pressure    protowire.Number = 1
	BME280Temperature protowire.Number = 2
	BME280Humidity    protowire.Number = 3

	MeasurementMeta     protowire.Number = 1
	MeasurementPower    protowire.Number = 2
	MeasurementTeros12  protowire.Number = 3
	MeasurementPhytos31 protowire.Number = 4
	MeasurementBME280   protowire.Number = 5
	MeasurementTeros21  protowire.Number = 6

	ResponseResp protowire.Number = 1

	ConfigLoggerID        protowire.Number = 1
	ConfigCellID          protowire.Number = 2
	ConfigUploadMethod    protowire.Number = 3
	ConfigUploadInterval  protowire.Number = 4
	ConfigEnabledSensors  protowire.Number = 5
	ConfigVoltageSlope    protowire.Number = 6
	ConfigVoltageOffset   protowire.Number = 7
	ConfigCurrentSlope    protowire.Number = 8
	ConfigCurrentOffset   protowire.Number = 9
	ConfigWiFiSSID        protowire.Number = 10
	ConfigWiFiPassword    protowire.Number = 11
	ConfigAPIEndpointURL  protowire.Number = 12
	ConfigAPIEndpointPort protowire.Number = 13

	CommandPage protowire.Number = 1
	CommandTest protowire.Number = 2

	PageFileRequest    protowire.Number = 1
	PageFileDescriptor protowire.Number = 2
	PageBlockSize      protowire.Number = 3
	PageNumBytes       protowire.Number = 4

	TestState protowire.Number = 1
	TestData  protowire.Number = 2
)

// Kind is the declared scalar or composite type of a field.
type Kind uint8

const (
	KindUint32 Kind = iota + 1
	KindInt32
	KindEnum
	KindDouble
	KindString
	KindMessage
	KindRepeatedEnum
)

func (k Kind) String() string {
	switch k {
	case KindUint32:
		return "uint32"
	case KindInt32:
		return "int32"
	case KindEnum:
		return "enum"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindMessage:
		return "message"
	case KindRepeatedEnum:
		return "repeated enum"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Accepts reports whether a field of kind k may arrive with wire type t.
// Repeated enums are accepted packed or unpacked.
func (k Kind) Accepts(t protowire.Type) bool {
	switch k {
	case KindUint32, KindInt32, KindEnum:
		return t == protowire.VarintType
	case KindDouble:
		return t == protowire.Fixed64Type
	case KindString, KindMessage:
		return t == protowire.BytesType
	case KindRepeatedEnum:
		return t == protowire.VarintType || t == protowire.BytesType
	default:
		return false
	}
}

type FieldSpec struct {
	Num  protowire.Number
	Name string
	Kind Kind
	// Oneof names the oneof group the field belongs to, if any.
	Oneof string
	// Sub is the message a KindMessage field carries.
	Sub Message
}

type ValidationError struct {
	Message Message
	FieldID protowire.Number
	Reason  string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: message=%s: %s", e.Message, e.Reason)
	}
	return fmt.Sprintf("schema: message=%s field=%d: %s", e.Message, e.FieldID, e.Reason)
}

var definitions = map[Message][]FieldSpec{
	MsgMeasurementMetadata: {
		{MetaCellID, "cell_id", KindUint32, "", 0},
		{MetaLoggerID, "logger_id", KindUint32, "", 0},
		{MetaTs, "ts", KindUint32, "", 0},
	},
	MsgPowerMeasurement: {
		{PowerVoltage, "voltage", KindDouble, "", 0},
		{PowerCurrent, "current", KindDouble, "", 0},
	},
	MsgTeros12Measurement: {
		{Teros12VwcRaw, "vwc_raw", KindDouble, "", 0},
		{Teros12VwcAdj, "vwc_adj", KindDouble, "", 0},
		{Teros12Temp, "temp", KindDouble, "", 0},
		{Teros12Ec, "ec", KindUint32, "", 0},
	},
	MsgTeros21Measurement: {
		{Teros21MatricPot, "matric_pot", KindDouble, "", 0},
		{Teros21Temp, "temp", KindDouble, "", 0},
	},
	MsgPhytos31Measurement: {
		{Phytos31Voltage, "voltage", KindDouble, "", 0},
		{Phytos31LeafWetness, "leaf_wetness", KindDouble, "", 0},
	},
	MsgBME280Measurement: {
		{BME280Pressure, "pressure", KindUint32, "", 0},
		{BME280Temperature, "temperature", KindInt32, "", 0},
		{BME280Humidity, "humidity", KindUint32, "", 0},
	},
	MsgMeasurement: {
		{MeasurementMeta, "meta", KindMessage, "", MsgMeasurementMetadata},
		{MeasurementPower, "power", KindMessage, "measurement", MsgPowerMeasurement},
		{MeasurementTeros12, "teros12", KindMessage, "measurement", MsgTeros12Measurement},
		{MeasurementPhytos31, "phytos31", KindMessage, "measurement", MsgPhytos31Measurement},
		{MeasurementBME280, "bme280", KindMessage, "measurement", MsgBME280Measurement},
		{MeasurementTeros21, "teros21", KindMessage, "measurement", MsgTeros21Measurement},
	},
	MsgResponse: {
		{ResponseResp, "resp", KindEnum, "", 0},
	},
	MsgUserConfiguration: {
		{ConfigLoggerID, "logger_id", KindUint32, "", 0},
		{ConfigCellID, "cell_id", KindUint32, "", 0},
		{ConfigUploadMethod, "Upload_method", KindEnum, "", 0},
		{ConfigUploadInterval, "Upload_interval", KindUint32, "", 0},
		{ConfigEnabledSensors, "enabled_sensors", KindRepeatedEnum, "", 0},
		{ConfigVoltageSlope, "Voltage_Slope", KindDouble, "", 0},
		{ConfigVoltageOffset, "Voltage_Offset", KindDouble, "", 0},
		{ConfigCurrentSlope, "Current_Slope", KindDouble, "", 0},
		{ConfigCurrentOffset, "Current_Offset", KindDouble, "", 0},
		{ConfigWiFiSSID, "WiFi_SSID", KindString, "", 0},
		{ConfigWiFiPassword, "WiFi_Password", KindString, "", 0},
		{ConfigAPIEndpointURL, "API_Endpoint_URL", KindString, "", 0},
		{ConfigAPIEndpointPort, "API_Endpoint_Port", KindUint32, "", 0},
	},
	MsgEsp32Command: {
		{CommandPage, "page_command", KindMessage, "command", MsgPageCommand},
		{CommandTest, "test_command", KindMessage, "command", MsgTestCommand},
	},
	MsgPageCommand: {
		{PageFileRequest, "file_request", KindEnum, "", 0},
		{PageFileDescriptor, "file_descriptor", KindUint32, "", 0},
		{PageBlockSize, "block_size", KindUint32, "", 0},
		{PageNumBytes, "num_bytes", KindUint32, "", 0},
	},
	MsgTestCommand: {
		{TestState, "state", KindEnum, "", 0},
		{TestData, "data", KindInt32, "", 0},
	},
}

func Lookup(msg Message, num protowire.Number) (FieldSpec, bool) {
	for _, spec := range definitions[msg] {
		if spec.Num == num {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Oneof returns the members of the named oneof group of msg.
func Oneof(msg Message, group string) []FieldSpec {
	out := make([]FieldSpec, 0, 4)
	for _, spec := range definitions[msg] {
		if spec.Oneof == group {
			out = append(out, spec)
		}
	}
	return out
}

// Validate enforces declared wire types for the known fields of msg.
// Unknown fields are ignored so newer peers can add fields.
func Validate(msg Message, fields []wire.Field) error {
	if _, ok := definitions[msg]; !ok {
		return ValidationError{Message: msg, Reason: "unknown message"}
	}
	for _, f := range fields {
		spec, found := Lookup(msg, f.Num)
		if !found {
			continue
		}
		if !spec.Kind.Accepts(f.Type) {
			return ValidationError{
				Message: msg,
				FieldID: f.Num,
				Reason:  fmt.Sprintf("wire type %d does not carry %s %s", f.Type, spec.Kind, spec.Name),
			}
		}
	}
	return nil
}

// Parse splits data into fields and validates them against msg.
func Parse(msg Message, data []byte) ([]wire.Field, error) {
	fields, err := wire.DecodeFields(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(msg, fields); err != nil {
		return nil, err
	}
	return fields, nil
}
