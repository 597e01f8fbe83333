package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Trending TrendingConfig `mapstructure:"trending"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Caption  CaptionConfig  `mapstructure:"caption"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int        `mapstructure:"port"`
	Mode          string     `mapstructure:"mode"`
	SessionSecret string     `mapstructure:"session_secret"`
	CORS          CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// DatabaseConfig selects the key-value substrate.
// Driver is one of "memory", "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type TrendingConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	MaxLikes   int           `mapstructure:"max_likes"`
}

type SourcesConfig struct {
	Staging StagingConfig `mapstructure:"staging"`
}

type StagingConfig struct {
	BasePath string `mapstructure:"base_path"`
}

type UploadConfig struct {
	MaxBytes      int64 `mapstructure:"max_bytes"`
	DefaultWidth  int   `mapstructure:"default_width"`
	DefaultHeight int   `mapstructure:"default_height"`
}

type CaptionConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("server.session_secret", "SESSION_SECRET")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.public_url", "S3_PUBLIC_URL")
	v.BindEnv("trending.base_url", "TRENDING_BASE_URL")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.ResolveEnvVars()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.session_secret", "memeverse-dev-secret")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/memeverse.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.bucket", "memes")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("trending.base_url", "https://api.imgflip.com")
	v.SetDefault("trending.timeout", 15*time.Second)
	v.SetDefault("trending.retry_count", 2)
	v.SetDefault("trending.max_likes", 1000)
	v.SetDefault("sources.staging.base_path", "./data/staging")
	v.SetDefault("upload.max_bytes", 5*1024*1024)
	v.SetDefault("upload.default_width", 500)
	v.SetDefault("upload.default_height", 500)
	v.SetDefault("caption.delay", time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
