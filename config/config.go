package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Business timezone used for slot windows and daily caps.
	BusinessTimezone string `mapstructure:"BUSINESS_TIMEZONE"`

	// Booking engine knobs.
	PendingBookingTTLHours int `mapstructure:"PENDING_BOOKING_TTL_HOURS"`
	SweepIntervalMinutes   int `mapstructure:"SWEEP_INTERVAL_MINUTES"`
	SweepBatchSize         int `mapstructure:"SWEEP_BATCH_SIZE"`

	// Checkout knobs.
	CheckoutTimeoutSeconds int     `mapstructure:"CHECKOUT_TIMEOUT_SECONDS"`
	PlatformFeeRate        float64 `mapstructure:"PLATFORM_FEE_RATE"`

	// Stripe secret key for payment reference verification.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Firebase credentials file for push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "vendora")
	viper.SetDefault("BUSINESS_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("PENDING_BOOKING_TTL_HOURS", 24)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 60)
	viper.SetDefault("SWEEP_BATCH_SIZE", 500)
	viper.SetDefault("CHECKOUT_TIMEOUT_SECONDS", 8)
	viper.SetDefault("PLATFORM_FEE_RATE", 0.0)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

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
