package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Client ClientConfig `mapstructure:"client"`
	// AppURL is the public front-end address share links point to.
	AppURL string `mapstructure:"app_url"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig selects PostgreSQL when Source is set; otherwise lists live in
// memory.
type DBConfig struct {
	Source string `mapstructure:"source"`
}

type StoreConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClientConfig drives the lista command line client. An empty ServerURL
// keeps the client fully local.
type ClientConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	DataDir   string        `mapstructure:"data_dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("db.source", "")
	v.SetDefault("store.ttl", 90*24*time.Hour)
	v.SetDefault("store.max_entries", 10000)
	v.SetDefault("store.purge_interval", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("app_url", "http://localhost:5173")
	v.SetDefault("client.server_url", "")
	v.SetDefault("client.data_dir", "./data")
	v.SetDefault("client.timeout", 10*time.Second)
}

// Load reads ./configs/settings.yml when present, then the environment
// (SERVER_PORT, DB_SOURCE, ...). A .env file is loaded first if it exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath("./configs")
	v.AddConfigPath("/configs")
	v.SetConfigName("settings")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
