// Package config loads logger user configurations from TOML files. A file
// holds the record the configuration GUI sends to a logger; it converts to
// protocol.UserConfiguration for encoding.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/spsproto/internal/logging"
	"github.com/danmuck/spsproto/internal/protocol"
)

const maxPort = 65535

type File struct {
	LoggerID       uint32      `toml:"logger_id"`
	CellID         uint32      `toml:"cell_id"`
	UploadMethod   string      `toml:"upload_method"`
	UploadInterval uint32      `toml:"upload_interval"`
	EnabledSensors []string    `toml:"enabled_sensors"`
	Calibration    Calibration `toml:"calibration"`
	WiFi           WiFi        `toml:"wifi"`
	API            API         `toml:"api"`
}

// Calibration holds the linear corrections applied on the logger to raw
// voltage and current readings.
type Calibration struct {
	VoltageSlope  float64 `toml:"voltage_slope"`
	VoltageOffset float64 `toml:"voltage_offset"`
	CurrentSlope  float64 `toml:"current_slope"`
	CurrentOffset float64 `toml:"current_offset"`
}

type WiFi struct {
	SSID     string `toml:"ssid"`
	Password string `toml:"password"`
}

type API struct {
	URL  string `toml:"url"`
	Port uint32 `toml:"port"`
}

// Default returns the values used for keys a file leaves out.
func Default() File {
	return File{
		UploadMethod:   protocol.UploadLoRa.String(),
		UploadInterval: 60,
		EnabledSensors: []string{},
		Calibration: Calibration{
			VoltageSlope: 1,
			CurrentSlope: 1,
		},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (File, error) {
	var raw File
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return File{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := resolve(meta, raw)
	if err != nil {
		return File{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	log := logging.For("config")
	log.Debug().
		Str("path", path).
		Uint32("logger_id", cfg.LoggerID).
		Uint32("cell_id", cfg.CellID).
		Msg("loaded user configuration")
	return cfg, nil
}

// Parse decodes and validates configuration text.
func Parse(data []byte) (File, error) {
	var raw File
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return File{}, fmt.Errorf("config parse failed: %w", err)
	}
	return resolve(meta, raw)
}

func resolve(meta toml.MetaData, raw File) (File, error) {
	cfg := Default()
	if meta.IsDefined("logger_id") {
		cfg.LoggerID = raw.LoggerID
	}
	if meta.IsDefined("cell_id") {
		cfg.CellID = raw.CellID
	}
	if meta.IsDefined("upload_method") {
		cfg.UploadMethod = strings.TrimSpace(raw.UploadMethod)
	}
	if meta.IsDefined("upload_interval") {
		cfg.UploadInterval = raw.UploadInterval
	}
	if meta.IsDefined("enabled_sensors") {
		cfg.EnabledSensors = normalizeSensors(raw.EnabledSensors)
	}
	if meta.IsDefined("calibration", "voltage_slope") {
		cfg.Calibration.VoltageSlope = raw.Calibration.VoltageSlope
	}
	if meta.IsDefined("calibration", "voltage_offset") {
		cfg.Calibration.VoltageOffset = raw.Calibration.VoltageOffset
	}
	if meta.IsDefined("calibration", "current_slope") {
		cfg.Calibration.CurrentSlope = raw.Calibration.CurrentSlope
	}
	if meta.IsDefined("calibration", "current_offset") {
		cfg.Calibration.CurrentOffset = raw.Calibration.CurrentOffset
	}
	if meta.IsDefined("wifi", "ssid") {
		cfg.WiFi.SSID = raw.WiFi.SSID
	}
	if meta.IsDefined("wifi", "password") {
		cfg.WiFi.Password = raw.WiFi.Password
	}
	if meta.IsDefined("api", "url") {
		cfg.API.URL = strings.TrimSpace(raw.API.URL)
	}
	if meta.IsDefined("api", "port") {
		cfg.API.Port = raw.API.Port
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log := logging.For("config")
		log.Warn().Strs("keys", keys).Msg("ignoring unknown config keys")
	}

	if err := Validate(cfg); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Validate checks enum names and ranges the wire format cannot carry.
func Validate(cfg File) error {
	method, err := protocol.ParseUploadMethod(cfg.UploadMethod)
	if err != nil {
		return fmt.Errorf("upload_method: %w", err)
	}
	for i, name := range cfg.EnabledSensors {
		if _, err := protocol.ParseEnabledSensor(name); err != nil {
			return fmt.Errorf("enabled_sensors[%d]: %w", i, err)
		}
	}
	if cfg.UploadInterval == 0 {
		return fmt.Errorf("upload_interval must be positive")
	}
	if cfg.API.Port > maxPort {
		return fmt.Errorf("api.port %d out of range", cfg.API.Port)
	}
	if method == protocol.UploadWiFi && strings.TrimSpace(cfg.WiFi.SSID) == "" {
		return fmt.Errorf("wifi.ssid required when upload_method is WiFi")
	}
	return nil
}

func normalizeSensors(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		v := strings.TrimSpace(s)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
