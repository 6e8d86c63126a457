package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 int
	DBDSN                string
	JWTSecret            string
	JWTTTL               time.Duration
	WSInsecureSkipVerify bool
}

// Load resolves configuration from the environment with sane defaults.
// Nothing outside this package reads the environment.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", 5000)
	v.SetDefault("JWT_TTL_HOURS", 30*24)
	v.SetDefault("WS_INSECURE_SKIP_VERIFY", false)

	return Config{
		Port:                 v.GetInt("APP_PORT"),
		DBDSN:                v.GetString("DB_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
		WSInsecureSkipVerify: v.GetBool("WS_INSECURE_SKIP_VERIFY"),
	}
}
