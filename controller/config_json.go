package controller

import (
	"encoding/json"
)

const defaultSpeed = 200.0

// LoadConfig parses a JSON config over DefaultConfig, so anything not mentioned stays unwired
func LoadConfig(jsonData []byte) (Config, error) {
	config := DefaultConfig()

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return Config{}, err
	}

	applyDefaults(&config)

	return config, config.Validate()
}

// applyDefaults fills in values that an explicit zero in the file would otherwise break
func applyDefaults(config *Config) {
	if config.Pair.Speed == 0 {
		config.Pair.Speed = defaultSpeed
	}
	// homing runs at the run speed unless told otherwise
	if config.Pair.InitSpeed == 0 {
		config.Pair.InitSpeed = config.Pair.Speed
	}
	if config.Tray.Speed == 0 {
		config.Tray.Speed = defaultSpeed
	}
}
