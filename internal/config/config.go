// Package config loads server and match settings with viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/elementarclash/clash-server-go/internal/game"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CLASH_LOGGING_LEVEL.
const EnvPrefix = "CLASH"

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Match   MatchConfig   `mapstructure:"match"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// ServerConfig holds transport settings.
type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig configures the renderer endpoint.
type WebSocketConfig struct {
	Address         string        `mapstructure:"address"`
	Path            string        `mapstructure:"path"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MatchConfig mirrors game.Settings.
type MatchConfig struct {
	GridSize            int               `mapstructure:"grid_size"`
	Seed                int64             `mapstructure:"seed"`
	MaxActions          int               `mapstructure:"max_actions"`
	RandomEffects       RandomEffectsConf `mapstructure:"random_effects"`
	Events              EventsConf        `mapstructure:"events"`
	TerrainDistribution map[string]int    `mapstructure:"terrain_distribution"`
	ReplayLimit         int               `mapstructure:"replay_limit"`
}

type RandomEffectsConf struct {
	BaseChance float64 `mapstructure:"base_chance"`
	PerRound   float64 `mapstructure:"per_round"`
	MaxChance  float64 `mapstructure:"max_chance"`
}

type EventsConf struct {
	RegionSize          int `mapstructure:"region_size"`
	ForestFireDamage    int `mapstructure:"forest_fire_damage"`
	GeyserDamage        int `mapstructure:"geyser_damage"`
	EarthquakeStunTurns int `mapstructure:"earthquake_stun_turns"`
}

// CatalogConfig points at an optional unit roster file. Empty uses the
// built-in roster.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := game.DefaultSettings()

	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.websocket.allowed_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("match.grid_size", def.GridSize)
	v.SetDefault("match.seed", 0)
	v.SetDefault("match.max_actions", def.MaxActions)
	v.SetDefault("match.replay_limit", def.ReplayLimit)
	v.SetDefault("match.random_effects.base_chance", def.RandomEffects.BaseChance)
	v.SetDefault("match.random_effects.per_round", def.RandomEffects.PerRound)
	v.SetDefault("match.random_effects.max_chance", def.RandomEffects.MaxChance)
	v.SetDefault("match.events.region_size", def.Events.RegionSize)
	v.SetDefault("match.events.forest_fire_damage", def.Events.ForestFireDamage)
	v.SetDefault("match.events.geyser_damage", def.Events.GeyserDamage)
	v.SetDefault("match.events.earthquake_stun_turns", def.Events.EarthquakeStunTurns)

	v.SetDefault("catalog.path", "")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.WebSocket.Address == "" {
		return errors.New("server.websocket.address must not be empty")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	m := c.Match
	if m.GridSize < 5 {
		return fmt.Errorf("match.grid_size must be at least 5, got %d", m.GridSize)
	}
	if m.MaxActions < 1 {
		return fmt.Errorf("match.max_actions must be positive, got %d", m.MaxActions)
	}
	if m.ReplayLimit < 1 {
		return fmt.Errorf("match.replay_limit must be positive, got %d", m.ReplayLimit)
	}
	r := m.RandomEffects
	if r.BaseChance < 0 || r.PerRound < 0 || r.MaxChance < 0 || r.MaxChance > 1 {
		return fmt.Errorf("match.random_effects chances must lie in [0, 1]")
	}
	if m.Events.RegionSize < 1 || m.Events.RegionSize > m.GridSize {
		return fmt.Errorf("match.events.region_size must be between 1 and %d, got %d", m.GridSize, m.Events.RegionSize)
	}
	if _, err := m.distribution(); err != nil {
		return err
	}
	return nil
}

func (m MatchConfig) distribution() (map[grid.Terrain]int, error) {
	if len(m.TerrainDistribution) == 0 {
		return nil, nil
	}
	out := make(map[grid.Terrain]int, len(m.TerrainDistribution))
	total := 0
	for name, weight := range m.TerrainDistribution {
		t, err := grid.ParseTerrain(name)
		if err != nil {
			return nil, fmt.Errorf("match.terrain_distribution: %w", err)
		}
		if weight < 0 {
			return nil, fmt.Errorf("match.terrain_distribution.%s must not be negative", name)
		}
		out[t] = weight
		total += weight
	}
	if total != 100 {
		return nil, fmt.Errorf("match.terrain_distribution sums to %d, want 100", total)
	}
	return out, nil
}

// Settings converts the match section into engine settings.
func (m MatchConfig) Settings() game.Settings {
	dist, _ := m.distribution()
	return game.Settings{
		GridSize:   m.GridSize,
		Seed:       m.Seed,
		MaxActions: m.MaxActions,
		RandomEffects: game.RandomEffects{
			BaseChance: m.RandomEffects.BaseChance,
			PerRound:   m.RandomEffects.PerRound,
			MaxChance:  m.RandomEffects.MaxChance,
		},
		Events: game.EventSettings{
			RegionSize:          m.Events.RegionSize,
			ForestFireDamage:    m.Events.ForestFireDamage,
			GeyserDamage:        m.Events.GeyserDamage,
			EarthquakeStunTurns: m.Events.EarthquakeStunTurns,
		},
		TerrainDistribution: dist,
		ReplayLimit:         m.ReplayLimit,
	}
}
