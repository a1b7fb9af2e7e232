package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Render writes cfg back out as TOML in the layout Load reads.
func Render(cfg File) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config render failed: %w", err)
	}
	return data, nil
}
