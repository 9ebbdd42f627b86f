package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration, loaded from YAML with
// CUTTLE_-prefixed environment overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxSessions     int           `mapstructure:"max_sessions"`

	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `mapstructure:"ping_interval"`
	PongTimeout  time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects the session store backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory, postgres or redis
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type GameConfig struct {
	// Seed pins the deck shuffle for reproducible games; 0 shuffles
	// randomly.
	Seed int64 `mapstructure:"seed"`
	// AutoOpponent plays the non-creator seat with the configured
	// chooser after every human action.
	AutoOpponent     bool   `mapstructure:"auto_opponent"`
	OpponentStrategy string `mapstructure:"opponent_strategy"` // random or greedy
	// RecordReplays snapshots every applied action; finished games are
	// written to ReplayDir.
	RecordReplays bool   `mapstructure:"record_replays"`
	ReplayDir     string `mapstructure:"replay_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.websocket.pong_timeout", 60*time.Second)
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.backend", "memory")

	v.SetDefault("database.url", "postgres://localhost:5432/cuttle")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("game.seed", 0)
	v.SetDefault("game.auto_opponent", true)
	v.SetDefault("game.opponent_strategy", "random")
	v.SetDefault("game.record_replays", false)
	v.SetDefault("game.replay_dir", "replays")
}

// Load reads configuration from the given YAML file, applying defaults
// and CUTTLE_* environment overrides. A missing file is not an error;
// defaults and environment carry the full configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CUTTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Game.OpponentStrategy {
	case "random", "greedy":
	default:
		return fmt.Errorf("unknown opponent strategy %q", c.Game.OpponentStrategy)
	}
	return nil
}
