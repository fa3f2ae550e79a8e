package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	WialonBase  string `mapstructure:"WIALON_BASE"`
	WialonToken string `mapstructure:"WIALON_TOKEN"`
	DBUrl       string `mapstructure:"DB_URL"`
	RedisUrl    string `mapstructure:"REDIS_URL"`

	// GeofenceWhitelist is the comma-separated list of base site codes that
	// participate in reconciliation.
	GeofenceWhitelist string `mapstructure:"GEOFENCE_WHITELIST"`
}

func LoadConfig() (c Config, err error) {
	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Set default values
	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("WIALON_BASE", "https://hst-api.wialon.com/wialon/ajax.html")

	// Load environment file
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(".") // Look in the project root directory

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		// Continue even if file is not found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// Map the values to the Config struct
	err = viper.Unmarshal(&c)
	return
}

// WhitelistCodes splits the configured whitelist into individual base codes.
func (c Config) WhitelistCodes() []string {
	if c.GeofenceWhitelist == "" {
		return nil
	}
	parts := strings.Split(c.GeofenceWhitelist, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}
