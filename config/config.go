// Package config defines the engine-wide tunables a Frame Graph's
// passes read from at frame time, and loads/saves them as TOML.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const errPrefix = "config: "

// Config holds the toggles and parameters the representative pass
// set reads when deciding what to render and how to tone-map the
// result, mirroring engine.get_config()'s role in the original
// design: a single place passes consult instead of hardcoding
// feature flags.
type Config struct {
	SSAO struct {
		Enabled bool    `toml:"enabled"`
		Radius  float32 `toml:"radius"`
		Power   float32 `toml:"power"`
	} `toml:"ssao"`

	Volumetric struct {
		Enabled bool    `toml:"enabled"`
		Density float32 `toml:"density"`
	} `toml:"volumetric"`

	Skybox struct {
		Enabled bool   `toml:"enabled"`
		File    string `toml:"file"`
	} `toml:"skybox"`

	Luminance struct {
		MinLog2 float32 `toml:"min_log2"`
		MaxLog2 float32 `toml:"max_log2"`
		Speed   float32 `toml:"speed"`
	} `toml:"luminance"`

	HDR struct {
		Exposure float32 `toml:"exposure"`
		Gamma    float32 `toml:"gamma"`
	} `toml:"hdr"`
}

// Default returns the configuration new engines start from.
func Default() Config {
	var c Config
	c.SSAO.Enabled = true
	c.SSAO.Radius = 0.5
	c.SSAO.Power = 1.5
	c.Volumetric.Enabled = false
	c.Volumetric.Density = 0.02
	c.Skybox.Enabled = true
	c.Luminance.MinLog2 = -8
	c.Luminance.MaxLog2 = 4
	c.Luminance.Speed = 1.1
	c.HDR.Exposure = 1
	c.HDR.Gamma = 2.2
	return c
}

// Load reads and decodes a Config from a TOML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf(errPrefix+"Load: %w", err)
	}
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf(errPrefix+"Load: %w", err)
	}
	return c, nil
}

// Save encodes c as TOML and writes it to path.
func Save(path string, c Config) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf(errPrefix+"Save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf(errPrefix+"Save: %w", err)
	}
	return nil
}
