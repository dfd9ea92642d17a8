package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Local persistence for draft sessions and submission records.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis cache configuration.
	RedisURL string `mapstructure:"REDIS_URL"`

	// GHogar core API.
	BackendBaseURL string `mapstructure:"BACKEND_BASE_URL"`
	BackendAPIKey  string `mapstructure:"BACKEND_API_KEY"`

	// Firebase service account for operator auth.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`

	// Quota catalog cache TTL in seconds.
	CatalogCacheTTL int `mapstructure:"CATALOG_CACHE_TTL"`

	// Draft sessions idle longer than this many minutes are deactivated
	// by the sweeper.
	DraftTTLMinutes int `mapstructure:"DRAFT_TTL_MINUTES"`
}

var AppConfig Config

// Load reads configuration from config.yaml and the environment.
func Load() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json")
	viper.SetDefault("CATALOG_CACHE_TTL", 60)
	viper.SetDefault("DRAFT_TTL_MINUTES", 120)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
