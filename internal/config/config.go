package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"trivia-quiz/internal/opentdb"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env     string  `mapstructure:"env"`      // local, development or production
	LogFile string  `mapstructure:"log_file"` // log destination for the live terminal UI
	UI      UI      `mapstructure:"ui"`
	OpenTDB OpenTDB `mapstructure:"opentdb"`
	Server  Server  `mapstructure:"server"`
	Session Session `mapstructure:"session"`
	Remote  Remote  `mapstructure:"remote"`
}

type UI struct {
	Mode    string `mapstructure:"mode"` // auto, live or plain
	NoColor bool   `mapstructure:"no_color"`
}

// OpenTDB configures where questions come from.
type OpenTDB struct {
	BaseURL       string        `mapstructure:"base_url"`
	Amount        int           `mapstructure:"amount"`
	Timeout       time.Duration `mapstructure:"timeout"` // zero disables the client timeout
	QuestionsFile string        `mapstructure:"questions_file"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Session configures where HTTP view sessions are kept.
type Session struct {
	Backend         string        `mapstructure:"backend"` // memory, sqlite or redis
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	RedisPrefix     string        `mapstructure:"redis_prefix"`
}

type Remote struct {
	ServerURL string        `mapstructure:"server_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from an optional YAML file, a .env file and
// QUIZ_* environment variables. An empty path searches ./config/config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ADDR is honoured for existing deployments.
	_ = v.BindEnv("server.addr", "QUIZ_SERVER_ADDR", "ADDR")
	_ = v.BindEnv("env", "QUIZ_ENV", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_file", filepath.Join(os.TempDir(), "trivia-quiz.log"))
	v.SetDefault("ui.mode", "auto")
	v.SetDefault("ui.no_color", false)
	v.SetDefault("opentdb.base_url", opentdb.DefaultBaseURL)
	v.SetDefault("opentdb.amount", opentdb.DefaultAmount)
	v.SetDefault("opentdb.timeout", "15s")
	v.SetDefault("opentdb.questions_file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.cleanup_interval", "1m")
	v.SetDefault("session.sqlite_path", "trivia-quiz.db")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.redis_prefix", "trivia-quiz:session:")
	v.SetDefault("remote.server_url", "http://localhost:8080")
	v.SetDefault("remote.timeout", "5s")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.OpenTDB.Amount < 1 || c.OpenTDB.Amount > opentdb.MaxAmount {
		return fmt.Errorf("%w: opentdb.amount must be between 1 and %d, got %d", ErrInvalidConfig, opentdb.MaxAmount, c.OpenTDB.Amount)
	}
	if c.OpenTDB.Timeout < 0 {
		return fmt.Errorf("%w: opentdb.timeout must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(strings.TrimSpace(c.UI.Mode)) {
	case "", "auto", "live", "plain":
	default:
		return fmt.Errorf("%w: ui.mode %q (expected auto|live|plain)", ErrInvalidConfig, c.UI.Mode)
	}

	switch c.Session.Backend {
	case "memory":
	case "sqlite":
		if c.Session.SQLitePath == "" {
			return fmt.Errorf("%w: session.sqlite_path is required for the sqlite backend", ErrInvalidConfig)
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("%w: session.redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: session.backend %q (expected memory|sqlite|redis)", ErrInvalidConfig, c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("%w: session.ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
