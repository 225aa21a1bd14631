package config

import "sort"

// Preset is a named overlay on the default configuration.
type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"inner": {
		Description: "rocky planets, close camera",
		apply: func(c *Config) {
			c.Planets = []string{"mercury", "venus", "earth", "mars"}
			c.CameraDistance = 35
			c.AnimationSpeed = 500
		},
	},
	"outer": {
		Description: "gas and ice giants, wide camera",
		apply: func(c *Config) {
			c.Planets = []string{"jupiter", "saturn", "uranus", "neptune"}
			c.CameraDistance = 300
			c.CameraMaxDistance = 600
			c.AnimationSpeed = 1000
		},
	},
	"fast": {
		Description: "all planets at maximum speed",
		apply: func(c *Config) {
			c.AnimationSpeed = 1000
			c.UpdateInterval = 100
		},
	},
	"overview": {
		Description: "all planets, labels off, wall-clock dates",
		apply: func(c *Config) {
			c.ShowLabels = false
			c.CameraDistance = 200
			c.DateSource = "current"
		},
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

// Apply overlays the named preset onto c. It reports whether the preset exists.
func (c *Config) Apply(name string) bool {
	p, ok := Presets[name]
	if !ok {
		return false
	}
	p.apply(c)
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
