package protocol

import (
	"fmt"

	"github.com/danmuck/spsproto/internal/protocol/schema"
	"github.com/danmuck/spsproto/internal/protocol/wire"
)

// UploadMethod selects the device uplink.
type UploadMethod int32

const (
	UploadLoRa UploadMethod = 0
	UploadWiFi UploadMethod = 1
)

func (u UploadMethod) String() string {
	switch u {
	case UploadLoRa:
		return "LoRa"
	case UploadWiFi:
		return "WiFi"
	default:
		return fmt.Sprintf("UploadMethod(%d)", int32(u))
	}
}

func (u UploadMethod) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

var uploadMethods = map[string]UploadMethod{
	"lora": UploadLoRa,
	"wifi": UploadWiFi,
}

func ParseUploadMethod(s string) (UploadMethod, error) {
	return Lookup(uploadMethods, "upload method", s)
}

// EnabledSensor tags one sensor the logger should sample.
type EnabledSensor int32

const (
	SensorVoltage EnabledSensor = 0
	SensorCurrent EnabledSensor = 1
	SensorTeros12 EnabledSensor = 2
	SensorTeros21 EnabledSensor = 3
	SensorBME280  EnabledSensor = 4
)

var sensorNames = [...]string{"Voltage", "Current", "Teros12", "Teros21", "BME280"}

func (s EnabledSensor) String() string {
	if s >= 0 && int(s) < len(sensorNames) {
		return sensorNames[s]
	}
	return fmt.Sprintf("EnabledSensor(%d)", int32(s))
}

func (s EnabledSensor) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var enabledSensors = map[string]EnabledSensor{
	"voltage": SensorVoltage,
	"current": SensorCurrent,
	"teros12": SensorTeros12,
	"teros21": SensorTeros21,
	"bme280":  SensorBME280,
}

func ParseEnabledSensor(s string) (EnabledSensor, error) {
	return Lookup(enabledSensors, "enabled sensor", s)
}

// UserConfiguration is the record produced by the configuration GUI and
// stored by the logger.
type UserConfiguration struct {
	LoggerID        uint32
	CellID          uint32
	UploadMethod    UploadMethod
	UploadInterval  uint32
	EnabledSensors  []EnabledSensor
	VoltageSlope    float64
	VoltageOffset   float64
	CurrentSlope    float64
	CurrentOffset   float64
	WiFiSSID        string
	WiFiPassword    string
	APIEndpointURL  string
	APIEndpointPort uint32
}

func EncodeUserConfiguration(c UserConfiguration) []byte {
	b := wire.NewBuilder(64 + len(c.WiFiSSID) + len(c.WiFiPassword) + len(c.APIEndpointURL))
	b.Uint32(schema.ConfigLoggerID, c.LoggerID)
	b.Uint32(schema.ConfigCellID, c.CellID)
	b.Int32(schema.ConfigUploadMethod, int32(c.UploadMethod))
	b.Uint32(schema.ConfigUploadInterval, c.UploadInterval)
	sensors := make([]int32, len(c.EnabledSensors))
	for i, s := range c.EnabledSensors {
		sensors[i] = int32(s)
	}
	b.PackedInt32(schema.ConfigEnabledSensors, sensors)
	b.Double(schema.ConfigVoltageSlope, c.VoltageSlope)
	b.Double(schema.ConfigVoltageOffset, c.VoltageOffset)
	b.Double(schema.ConfigCurrentSlope, c.CurrentSlope)
	b.Double(schema.ConfigCurrentOffset, c.CurrentOffset)
	b.Text(schema.ConfigWiFiSSID, c.WiFiSSID)
	b.Text(schema.ConfigWiFiPassword, c.WiFiPassword)
	b.Text(schema.ConfigAPIEndpointURL, c.APIEndpointURL)
	b.Uint32(schema.ConfigAPIEndpointPort, c.APIEndpointPort)
	return b.Bytes()
}

func DecodeUserConfiguration(data []byte) (UserConfiguration, error) {
	fields, err := schema.Parse(schema.MsgUserConfiguration, data)
	if err != nil {
		return UserConfiguration{}, malformed("UserConfiguration", err)
	}
	var c UserConfiguration
	for _, f := range fields {
		if err := c.apply(f); err != nil {
			return UserConfiguration{}, malformed("UserConfiguration", err)
		}
	}
	return c, nil
}

func (c *UserConfiguration) apply(f wire.Field) error {
	var err error
	switch f.Num {
	case schema.ConfigLoggerID:
		c.LoggerID, err = f.Uint32()
	case schema.ConfigCellID:
		c.CellID, err = f.Uint32()
	case schema.ConfigUploadMethod:
		var v int32
		if v, err = f.Int32(); err == nil {
			if v != int32(UploadLoRa) && v != int32(UploadWiFi) {
				return &EnumError{Enum: "Uploadmethod", Value: v}
			}
			c.UploadMethod = UploadMethod(v)
		}
	case schema.ConfigUploadInterval:
		c.UploadInterval, err = f.Uint32()
	case schema.ConfigEnabledSensors:
		var vs []uint64
		if vs, err = f.Varints(); err == nil {
			for _, v := range vs {
				if v >= uint64(len(sensorNames)) {
					return &EnumError{Enum: "EnabledSensor", Value: int32(v)}
				}
				c.EnabledSensors = append(c.EnabledSensors, EnabledSensor(v))
			}
		}
	case schema.ConfigVoltageSlope:
		c.VoltageSlope, err = f.Double()
	case schema.ConfigVoltageOffset:
		c.VoltageOffset, err = f.Double()
	case schema.ConfigCurrentSlope:
		c.CurrentSlope, err = f.Double()
	case schema.ConfigCurrentOffset:
		c.CurrentOffset, err = f.Double()
	case schema.ConfigWiFiSSID:
		c.WiFiSSID, err = f.Text()
	case schema.ConfigWiFiPassword:
		c.WiFiPassword, err = f.Text()
	case schema.ConfigAPIEndpointURL:
		c.APIEndpointURL, err = f.Text()
	case schema.ConfigAPIEndpointPort:
		c.APIEndpointPort, err = f.Uint32()
	}
	return err
}

// Fields projects c into a mapping keyed by proto field name.
func (c UserConfiguration) Fields() map[string]any {
	sensors := make([]EnabledSensor, len(c.EnabledSensors))
	copy(sensors, c.EnabledSensors)
	return map[string]any{
		"logger_id":         c.LoggerID,
		"cell_id":           c.CellID,
		"Upload_method":     c.UploadMethod,
		"Upload_interval":   c.UploadInterval,
		"enabled_sensors":   sensors,
		"Voltage_Slope":     c.VoltageSlope,
		"Voltage_Offset":    c.VoltageOffset,
		"Current_Slope":     c.CurrentSlope,
		"Current_Offset":    c.CurrentOffset,
		"WiFi_SSID":         c.WiFiSSID,
		"WiFi_Password":     c.WiFiPassword,
		"API_Endpoint_URL":  c.APIEndpointURL,
		"API_Endpoint_Port": c.APIEndpointPort,
	}
}
