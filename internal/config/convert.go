package config

import (
	"github.com/danmuck/spsproto/internal/protocol"
)

// ToUserConfiguration converts a validated file into the wire record.
func ToUserConfiguration(cfg File) (protocol.UserConfiguration, error) {
	if err := Validate(cfg); err != nil {
		return protocol.UserConfiguration{}, err
	}
	method, _ := protocol.ParseUploadMethod(cfg.UploadMethod)
	sensors := make([]protocol.EnabledSensor, 0, len(cfg.EnabledSensors))
	for _, name := range cfg.EnabledSensors {
		s, _ := protocol.ParseEnabledSensor(name)
		sensors = append(sensors, s)
	}
	return protocol.UserConfiguration{
		LoggerID:        cfg.LoggerID,
		CellID:          cfg.CellID,
		UploadMethod:    method,
		UploadInterval:  cfg.UploadInterval,
		EnabledSensors:  sensors,
		VoltageSlope:    cfg.Calibration.VoltageSlope,
		VoltageOffset:   cfg.Calibration.VoltageOffset,
		CurrentSlope:    cfg.Calibration.CurrentSlope,
		CurrentOffset:   cfg.Calibration.CurrentOffset,
		WiFiSSID:        cfg.WiFi.SSID,
		WiFiPassword:    cfg.WiFi.Password,
		APIEndpointURL:  cfg.API.URL,
		APIEndpointPort: cfg.API.Port,
	}, nil
}

// FromUserConfiguration converts a decoded wire record back into file form.
func FromUserConfiguration(c protocol.UserConfiguration) File {
	sensors := make([]string, len(c.EnabledSensors))
	for i, s := range c.EnabledSensors {
		sensors[i] = s.String()
	}
	return File{
		LoggerID:       c.LoggerID,
		CellID:         c.CellID,
		UploadMethod:   c.UploadMethod.String(),
		UploadInterval: c.UploadInterval,
		EnabledSensors: sensors,
		Calibration: Calibration{
			VoltageSlope:  c.VoltageSlope,
			VoltageOffset: c.VoltageOffset,
			CurrentSlope:  c.CurrentSlope,
			CurrentOffset: c.CurrentOffset,
		},
		WiFi: WiFi{SSID: c.WiFiSSID, Password: c.WiFiPassword},
		API:  API{URL: c.APIEndpointURL, Port: c.APIEndpointPort},
	}
}
