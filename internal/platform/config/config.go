package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config es la configuración del backend SAM.
// Archivo YAML opcional + overrides por env (SAM_*).
type Config struct {
	// Addr es la dirección de escucha HTTP (":8080").
	Addr string `mapstructure:"addr"`

	// DatabaseDSN, si viene, activa el adapter Postgres.
	DatabaseDSN string `mapstructure:"database_dsn"`

	// SQLitePath, si viene (y no hay DSN), activa el adapter SQLite local.
	SQLitePath string `mapstructure:"sqlite_path"`

	// ExpoPushURL es la base del transporte push (override para tests/staging).
	ExpoPushURL string `mapstructure:"expo_push_url"`

	// LogLevel / LogFormat alimentan el logger de platform.
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// SeedDemoData carga servicios/usuarios demo en modo memoria.
	SeedDemoData bool `mapstructure:"seed_demo_data"`
}

func defaults() *Config {
	return &Config{
		Addr:        ":8080",
		ExpoPushURL: "https://exp.host",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load lee configuración desde path (YAML) usando Viper.
// Si el archivo no existe, devuelve defaults + env overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	}

	v.SetDefault("addr", ":8080")
	v.SetDefault("expo_push_url", "https://exp.host")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Overrides por env: SAM_DATABASE_DSN, SAM_ADDR, etc.
	v.SetEnvPrefix("SAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv solo resuelve claves que viper ya conoce; las que no
	// tienen default necesitan bind explícito para funcionar sin YAML.
	for _, key := range []string{"database_dsn", "sqlite_path", "seed_demo_data"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", key, err)
		}
	}

	if strings.TrimSpace(path) != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(*os.PathError); ok {
				return fromViper(v)
			}
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				return fromViper(v)
			}
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Compat: respeta PORT y DB_DSN sueltos (modo handoff, igual que antes).
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = os.Getenv("DB_DSN")
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Addr = ":" + p
	}

	return cfg, nil
}
