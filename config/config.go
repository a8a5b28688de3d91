package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Geonames GeonamesConfig `mapstructure:"geonames"`
	Cities   struct {
		// SanitizeOnCreate applies the update path's HTML escaping to created names too.
		SanitizeOnCreate bool `mapstructure:"sanitizeOnCreate"`
	} `mapstructure:"cities"`
	Cors struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// GeonamesConfig configures the city verification lookup.
type GeonamesConfig struct {
	BaseURL  string `mapstructure:"baseURL"`
	Username string `mapstructure:"username"`
	// Timeout of zero keeps the transport default.
	Timeout time.Duration `mapstructure:"timeout"`
	// Strict reports transport failures as errors instead of "not verified".
	Strict bool `mapstructure:"strict"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// GEONAMES_USERNAME overrides geonames.username, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Geonames.BaseURL == "" {
		return errors.New("geonames.baseURL is required")
	}
	if c.Geonames.Username == "" {
		return errors.New("geonames.username is required (set GEONAMES_USERNAME)")
	}
	if c.Server.HTTPPort == "" {
		return errors.New("server.HTTPPort is required")
	}
	return nil
}
