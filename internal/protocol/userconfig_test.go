package protocol

import (
	"encoding/hex"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/spsproto/internal/testutil/testlog"
)

const goldenUserConfig = "08071004180120d8042a0300010231000000000000f83f39000000000000d0bf41000000000000004049000000000000c03f52036c61625a0768756e746572326218687474703a2f2f6469727476697a2e6c6f63616c2f61706968903f"

func labUserConfig() UserConfiguration {
	return UserConfiguration{
		LoggerID:        7,
		CellID:          4,
		UploadMethod:    UploadWiFi,
		UploadInterval:  600,
		EnabledSensors:  []EnabledSensor{SensorVoltage, SensorCurrent, SensorTeros12},
		VoltageSlope:    1.5,
		VoltageOffset:   -0.25,
		CurrentSlope:    2.0,
		CurrentOffset:   0.125,
		WiFiSSID:        "lab",
		WiFiPassword:    "hunter2",
		APIEndpointURL:  "http://dirtviz.local/api",
		APIEndpointPort: 8080,
	}
}

func TestUserConfigurationGolden(t *testing.T) {
	testlog.Start(t)
	data := EncodeUserConfiguration(labUserConfig())
	if got := hex.EncodeToString(data); got != goldenUserConfig {
		t.Fatalf("unexpected bytes:\n got %s\nwant %s", got, goldenUserConfig)
	}
	got, err := DecodeUserConfiguration(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, labUserConfig()) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestUserConfigurationAcceptsUnpackedSensors(t *testing.T) {
	// enabled_sensors written one tag per value
	data := []byte{0x28, 0x03, 0x28, 0x04}
	got, err := DecodeUserConfiguration(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []EnabledSensor{SensorTeros21, SensorBME280}
	if !reflect.DeepEqual(got.EnabledSensors, want) {
		t.Fatalf("unexpected sensors: %v", got.EnabledSensors)
	}
	mixed := append([]byte{0x2a, 0x01, 0x00}, data...)
	got, err = DecodeUserConfiguration(mixed)
	if err != nil {
		t.Fatalf("decode mixed: %v", err)
	}
	if len(got.EnabledSensors) != 3 || got.EnabledSensors[0] != SensorVoltage {
		t.Fatalf("unexpected mixed sensors: %v", got.EnabledSensors)
	}
}

func TestUserConfigurationRejectsUnknownEnums(t *testing.T) {
	if _, err := DecodeUserConfiguration([]byte{0x18, 0x02}); !errors.Is(err, ErrUnknownEnum) || !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected unknown upload method, got %v", err)
	}
	if _, err := DecodeUserConfiguration([]byte{0x2a, 0x01, 0x05}); !errors.Is(err, ErrUnknownEnum) {
		t.Fatalf("expected unknown sensor, got %v", err)
	}
}

func TestUserConfigurationRejectsInvalidUTF8(t *testing.T) {
	if _, err := DecodeUserConfiguration([]byte{0x52, 0x02, 0xff, 0xfe}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestUserConfigurationEmptyDecodesToZero(t *testing.T) {
	got, err := DecodeUserConfiguration(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UploadMethod != UploadLoRa || got.EnabledSensors != nil {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestUserConfigurationFieldsUseProtoNames(t *testing.T) {
	f := labUserConfig().Fields()
	if f["Upload_method"] != UploadWiFi || f["API_Endpoint_Port"] != uint32(8080) || f["WiFi_SSID"] != "lab" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f) != 13 {
		t.Fatalf("expected 13 fields, got %d", len(f))
	}
}

func TestParseUserConfigurationNames(t *testing.T) {
	if m, err := ParseUploadMethod("wifi"); err != nil || m != UploadWiFi {
		t.Fatalf("upload method: %v %v", m, err)
	}
	if s, err := ParseEnabledSensor("BME280"); err != nil || s != SensorBME280 {
		t.Fatalf("sensor: %v %v", s, err)
	}
	if _, err := ParseEnabledSensor("lidar"); !errors.Is(err, ErrUnsupportedVariant) {
		t.Fatalf("expected ErrUnsupportedVariant, got %v", err)
	}
}
