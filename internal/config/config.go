package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Pricing   PricingConfig
	Flow      FlowConfig
	Analytics AnalyticsConfig
	ETL       ETLConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	// Recipient of the daily insight digest produced by the ETL.
	DigestRecipient string
}

type PricingConfig struct {
	// All amounts are integer cents.
	DefaultMonthlyPrice int
	DownsellDiscount    int
}

type FlowConfig struct {
	// How long an open modal session survives without activity.
	SessionTTLMinutes int
}

type AnalyticsConfig struct {
	Enabled bool
	// In-memory ring of recently tracked events, oldest evicted first.
	BufferSize int
	EventTopic string
}

// ETLConfig carries the rollup thresholds and retention placeholders.
// The retention rates are NOT measured values; they mirror the constants the
// marketing dashboard has always assumed and live here so they can be tuned
// without a deploy.
type ETLConfig struct {
	RetentionMonth1 float64
	RetentionMonth2 float64
	RetentionMonth3 float64

	ConversionDeltaAlertPts float64
	RevenueSavedAlertFactor float64
	VariantDeltaAlertPts    float64
	VariantMinUsersPerArm   int
	EventRetentionDays      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getEnvAsInt("SMTP_PORT", 587),
			Email:           getEnv("SMTP_EMAIL", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			SenderName:      getEnv("SMTP_SENDER_NAME", "MigrateMate"),
			DigestRecipient: getEnv("ETL_DIGEST_RECIPIENT", ""),
		},
		Pricing: PricingConfig{
			DefaultMonthlyPrice: getEnvAsInt("DEFAULT_MONTHLY_PRICE", 2500),
			DownsellDiscount:    getEnvAsInt("DOWNSELL_DISCOUNT_AMOUNT", 1000),
		},
		Flow: FlowConfig{
			SessionTTLMinutes: getEnvAsInt("FLOW_SESSION_TTL_MINUTES", 60),
		},
		Analytics: AnalyticsConfig{
			Enabled:    getEnvAsBool("ENABLE_ANALYTICS", true),
			BufferSize: getEnvAsInt("ANALYTICS_BUFFER_SIZE", 100),
			EventTopic: getEnv("ANALYTICS_EVENT_TOPIC", "ANALYTICS_EVENTS"),
		},
		ETL: ETLConfig{
			RetentionMonth1:         getEnvAsFloat("ETL_RETENTION_MONTH_1", 0.85),
			RetentionMonth2:         getEnvAsFloat("ETL_RETENTION_MONTH_2", 0.75),
			RetentionMonth3:         getEnvAsFloat("ETL_RETENTION_MONTH_3", 0.70),
			ConversionDeltaAlertPts: getEnvAsFloat("ETL_CONVERSION_DELTA_PTS", 10),
			RevenueSavedAlertFactor: getEnvAsFloat("ETL_REVENUE_SAVED_FACTOR", 1.5),
			VariantDeltaAlertPts:    getEnvAsFloat("ETL_VARIANT_DELTA_PTS", 5),
			VariantMinUsersPerArm:   getEnvAsInt("ETL_VARIANT_MIN_USERS", 30),
			EventRetentionDays:      getEnvAsInt("ETL_EVENT_RETENTION_DAYS", 90),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
