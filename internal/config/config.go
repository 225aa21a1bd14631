package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle          = "Solar System"
	DefaultUpdateInterval = 1000
	DefaultSpeed          = 1.0
	DefaultDateSource     = "simulated"
	DefaultOrbitSamples   = 100
	DefaultFrameRate      = 30
	MaxFrameRate          = 240
	DefaultLogLevel       = "info"

	EnvPrefix = "ORRERY"
)

type Config struct {
	Title             string   `yaml:"title" mapstructure:"title"`
	UpdateInterval    int      `yaml:"update_interval" mapstructure:"update_interval"`
	AnimationSpeed    float64  `yaml:"animation_speed" mapstructure:"animation_speed"`
	ShowOrbits        bool     `yaml:"show_orbits" mapstructure:"show_orbits"`
	ShowLabels        bool     `yaml:"show_labels" mapstructure:"show_labels"`
	CameraDistance    float64  `yaml:"camera_distance" mapstructure:"camera_distance"`
	CameraMinDistance float64  `yaml:"camera_min_distance" mapstructure:"camera_min_distance"`
	CameraMaxDistance float64  `yaml:"camera_max_distance" mapstructure:"camera_max_distance"`
	DateSource        string   `yaml:"date_source" mapstructure:"date_source"`
	Planets           []string `yaml:"planets" mapstructure:"planets"`
	OrbitSamples      int      `yaml:"orbit_samples" mapstructure:"orbit_samples"`
	FrameRate         int      `yaml:"frame_rate" mapstructure:"frame_rate"`
	LogLevel          string   `yaml:"log_level" mapstructure:"log_level"`
}

func DefaultPlanets() []string {
	ids := catalog.All()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return names
}

func DefaultConfig() *Config {
	return &Config{
		Title:             DefaultTitle,
		UpdateInterval:    DefaultUpdateInterval,
		AnimationSpeed:    DefaultSpeed,
		ShowOrbits:        true,
		ShowLabels:        true,
		CameraDistance:    camera.DefaultDistance,
		CameraMinDistance: camera.DefaultMinDistance,
		CameraMaxDistance: camera.DefaultMaxDistance,
		DateSource:        DefaultDateSource,
		Planets:           DefaultPlanets(),
		OrbitSamples:      DefaultOrbitSamples,
		FrameRate:         DefaultFrameRate,
		LogLevel:          DefaultLogLevel,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("title", d.Title)
	v.SetDefault("update_interval", d.UpdateInterval)
	v.SetDefault("animation_speed", d.AnimationSpeed)
	v.SetDefault("show_orbits", d.ShowOrbits)
	v.SetDefault("show_labels", d.ShowLabels)
	v.SetDefault("camera_distance", d.CameraDistance)
	v.SetDefault("camera_min_distance", d.CameraMinDistance)
	v.SetDefault("camera_max_distance", d.CameraMaxDistance)
	v.SetDefault("date_source", d.DateSource)
	v.SetDefault("planets", d.Planets)
	v.SetDefault("orbit_samples", d.OrbitSamples)
	v.SetDefault("frame_rate", d.FrameRate)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads path (any format viper understands) over the defaults, then
// applies ORRERY_* environment overrides. An empty path yields the defaults
// plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Normalize replaces missing or out-of-range values, logging a warning for
// each value it had to change.
func (c *Config) Normalize(log zerolog.Logger) {
	warn := func(key string, from, to any) {
		log.Warn().Str("key", key).Interface("value", from).Interface("using", to).Msg("invalid config value")
	}

	if strings.TrimSpace(c.Title) == "" {
		c.Title = DefaultTitle
	}
	if c.UpdateInterval <= 0 {
		warn("update_interval", c.UpdateInterval, DefaultUpdateInterval)
		c.UpdateInterval = DefaultUpdateInterval
	}
	if c.AnimationSpeed == 0 {
		c.AnimationSpeed = DefaultSpeed
	} else if s := playback.ClampSpeed(c.AnimationSpeed); s != c.AnimationSpeed {
		warn("animation_speed", c.AnimationSpeed, s)
		c.AnimationSpeed = s
	}

	lim := camera.Limits{Min: c.CameraMinDistance, Max: c.CameraMaxDistance}
	if !lim.Valid() {
		def := camera.DefaultLimits()
		warn("camera_min_distance", lim.Min, def.Min)
		warn("camera_max_distance", lim.Max, def.Max)
		lim = def
		c.CameraMinDistance, c.CameraMaxDistance = lim.Min, lim.Max
	}
	if d := lim.Clamp(c.CameraDistance); d != c.CameraDistance {
		warn("camera_distance", c.CameraDistance, d)
		c.CameraDistance = d
	}

	if src, ok := playback.ParseDateSource(c.DateSource); !ok {
		warn("date_source", c.DateSource, src.String())
		c.DateSource = src.String()
	} else {
		c.DateSource = src.String()
	}

	if c.OrbitSamples <= 0 {
		warn("orbit_samples", c.OrbitSamples, DefaultOrbitSamples)
		c.OrbitSamples = DefaultOrbitSamples
	}
	if c.FrameRate <= 0 || c.FrameRate > MaxFrameRate {
		warn("frame_rate", c.FrameRate, DefaultFrameRate)
		c.FrameRate = DefaultFrameRate
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		if c.LogLevel != "" {
			warn("log_level", c.LogLevel, DefaultLogLevel)
		}
		c.LogLevel = DefaultLogLevel
	}
	if len(c.Planets) == 0 {
		c.Planets = DefaultPlanets()
	}
}

// Bodies resolves the planets list to catalog IDs in the configured order.
// Unknown names are skipped with a warning and duplicates are dropped; an
// empty result falls back to every catalog body.
func (c *Config) Bodies(log zerolog.Logger) []catalog.ID {
	seen := make(map[catalog.ID]bool)
	ids := make([]catalog.ID, 0, len(c.Planets))
	for _, name := range c.Planets {
		id, ok := catalog.Parse(name)
		if !ok {
			log.Warn().Str("body", name).Msg("unknown planet in config, skipped")
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return catalog.All()
	}
	return ids
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.UpdateInterval) * time.Millisecond
}

func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

func (c *Config) CameraLimits() camera.Limits {
	return camera.Limits{Min: c.CameraMinDistance, Max: c.CameraMaxDistance}
}

func (c *Config) Source() playback.DateSource {
	src, _ := playback.ParseDateSource(c.DateSource)
	return src
}

func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
