package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	Auth     AuthConfig     `yaml:"auth"`
	Engine   EngineConfig   `yaml:"engine"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// EngineConfig holds the matching-engine thresholds. Durations accept the Go
// duration syntax ("48h", "30m").
type EngineConfig struct {
	FuzzRadiusMiles  float64       `yaml:"fuzz_radius_miles"`
	NudgeAfter       time.Duration `yaml:"nudge_after"`
	BlockAfter       time.Duration `yaml:"block_after"`
	SnoozeFor        time.Duration `yaml:"snooze_for"`
	PhotoURLTTL      time.Duration `yaml:"photo_url_ttl"`
	RateMaxRequests  int           `yaml:"rate_max_requests"`
	RateWindow       time.Duration `yaml:"rate_window"`
	ReminderCleanup  time.Duration `yaml:"reminder_cleanup_interval"`
	DiscoveryMaxSize int           `yaml:"discovery_max_size"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		S3: S3Config{
			Bucket: "photos",
		},
		Engine: EngineConfig{
			FuzzRadiusMiles:  1.0,
			NudgeAfter:       48 * time.Hour,
			BlockAfter:       72 * time.Hour,
			SnoozeFor:        24 * time.Hour,
			PhotoURLTTL:      time.Hour,
			RateMaxRequests:  60,
			RateWindow:       time.Minute,
			ReminderCleanup:  time.Hour,
			DiscoveryMaxSize: 50,
		},
	}
}

// Load reads the YAML file over the defaults and then applies environment
// overrides. A missing file is not an error; defaults plus environment are a
// valid configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Engine.BlockAfter <= cfg.Engine.NudgeAfter {
		return Config{}, fmt.Errorf("engine.block_after must exceed engine.nudge_after")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.HTTP.Addr, "APP_HTTP_ADDR")
	setString(&cfg.Log.Level, "APP_LOG_LEVEL")
	setString(&cfg.Postgres.DSN, "APP_POSTGRES_DSN")
	setString(&cfg.Redis.Addr, "APP_REDIS_ADDR")
	setString(&cfg.Redis.Password, "APP_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "APP_REDIS_DB")
	setString(&cfg.S3.Endpoint, "APP_S3_ENDPOINT")
	setString(&cfg.S3.AccessKey, "APP_S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "APP_S3_SECRET_KEY")
	setString(&cfg.S3.Bucket, "APP_S3_BUCKET")
	setString(&cfg.Auth.JWTSecret, "APP_JWT_SECRET")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
