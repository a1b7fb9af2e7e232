package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `logger_id = 1
cell_id = 1
upload_method = "LoRa"
upload_interval = 60
enabled_sensors = ["Voltage", "Current", "Teros12"]

[calibration]
voltage_slope = 1.0
voltage_offset = 0.0
current_slope = 1.0
current_offset = 0.0

[wifi]
ssid = ""
password = ""

[api]
url = "http://localhost:8000/api"
port = 8000
`
