package config

import (
	"github.com/BurntSushi/toml"
)

type Config struct {
	RouteAPI      string `toml:"RouteAPI"`      // campus routing backend base url
	RouteProvider string `toml:"RouteProvider"` // campus (default) or google
	GoogleMapsKey string `toml:"GoogleMapsKey"`
	MapboxToken   string `toml:"MapboxToken"`
	BridgePort    string `toml:"BridgePort"` // embedded http bridge for the browser map
	LogFile       string `toml:"LogFile"`
	DBPATH        string `toml:"DBPATH"`
	// map defaults
	MapCenterLat float64 `toml:"MapCenterLat"`
	MapCenterLon float64 `toml:"MapCenterLon"`
	MapZoom      float64 `toml:"MapZoom"`
	// TTS
	TTS_ENABLED     bool     `toml:"TTS_ENABLED"`
	TTS_SPEED       float32  `toml:"TTS_SPEED"`
	TTS_PITCH       float32  `toml:"TTS_PITCH"`
	TTS_LANGUAGE    string   `toml:"TTS_LANGUAGE"`
	TTS_VOICE_PREFS []string `toml:"TTS_VOICE_PREFS"` // ranked language prefixes
	TTS_LOCAL_BIN   string   `toml:"TTS_LOCAL_BIN"`   // override for local speech binary
}

func LoadConfig(fn string) (*Config, error) {
	if fn == "" {
		fn = "config.toml"
	}
	config := &Config{}
	_, err := toml.DecodeFile(fn, &config)
	if err != nil {
		return nil, err
	}
	config.setDefaults()
	return config, nil
}

// LoadConfigOrDefault never fails; a missing file means campus defaults.
func LoadConfigOrDefault(fn string) *Config {
	config, err := LoadConfig(fn)
	if err != nil {
		config = &Config{}
		config.setDefaults()
	}
	return config
}

func (c *Config) setDefaults() {
	if c.RouteAPI == "" {
		c.RouteAPI = "http://localhost:5000"
	}
	if c.RouteProvider == "" {
		c.RouteProvider = "campus"
	}
	if c.BridgePort == "" {
		c.BridgePort = "8765"
	}
	if c.LogFile == "" {
		c.LogFile = "campusnav.log"
	}
	if c.DBPATH == "" {
		c.DBPATH = "campusnav.db"
	}
	if c.MapCenterLat == 0 && c.MapCenterLon == 0 {
		// NASRDA campus, Abuja
		c.MapCenterLat = 8.9899
		c.MapCenterLon = 7.3862
	}
	if c.MapZoom == 0 {
		c.MapZoom = 15.5
	}
	if c.TTS_SPEED == 0 {
		c.TTS_SPEED = 1.0
	}
	if c.TTS_PITCH == 0 {
		c.TTS_PITCH = 1.0
	}
	if c.TTS_LANGUAGE == "" {
		c.TTS_LANGUAGE = "en"
	}
	if len(c.TTS_VOICE_PREFS) == 0 {
		c.TTS_VOICE_PREFS = []string{"en-GB", "en-US", "en"}
	}
}
