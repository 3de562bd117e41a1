package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalidConfig marks every failure that should abort the run before processing.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	Main    MainConfig    `mapstructure:"main"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

type MainConfig struct {
	Input        string   `mapstructure:"input"`
	Output       string   `mapstructure:"output"`
	FilenameMask []string `mapstructure:"filename_mask"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`    // debug, info, warn, error
	Encoding string `mapstructure:"encoding"` // json, console
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	Channel  string        `mapstructure:"channel"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	CreateTopic bool     `mapstructure:"create_topic"`
}

// LoadConfig reads configuration from .env file, the TOML file at path,
// environment variables, and defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults
	v.SetDefault("main.output", defaultOutputDir())
	v.SetDefault("main.filename_mask", []string{})

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "median:latest")
	v.SetDefault("redis.channel", "medians")
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "price_medians")
	v.SetDefault("kafka.create_topic", true)

	// 3. Read the TOML file
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: unable to read %s: %v", ErrInvalidConfig, path, err)
	}

	// 4. Environment overrides, e.g. "main.input" -> "MEDIAN_MAIN_INPUT"
	v.SetEnvPrefix("MEDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "main.input", "main.output", "main.filename_mask")
	bindEnv(v, "logger.level", "logger.encoding", "metrics.textfile")
	bindEnv(v, "redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.key", "redis.channel", "redis.ttl")
	bindEnv(v, "kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.create_topic")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config into struct: %v", ErrInvalidConfig, err)
	}

	// 6. Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Main.Input) == "" {
		return fmt.Errorf("%w: main.input is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Main.Output) == "" {
		return fmt.Errorf("%w: main.output cannot be empty", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr cannot be empty when redis is enabled", ErrInvalidConfig)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("%w: kafka brokers cannot be empty when kafka is enabled", ErrInvalidConfig)
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("%w: kafka.topic cannot be empty when kafka is enabled", ErrInvalidConfig)
		}
	}
	return nil
}

func defaultOutputDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "output"
	}
	return filepath.Join(wd, "output")
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
