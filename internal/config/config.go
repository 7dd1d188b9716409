package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisURL string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	InviteExpiry     time.Duration

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOURLExpiry time.Duration

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string
	Domain       string
	Locale       string

	StreamTickInterval      time.Duration
	StreamHeartbeatInterval time.Duration
	StreamSnapshotSize      int
	NotificationListLimit   int
}

// Load reads configuration from the environment. A .env file, if any, must
// already be loaded into the process environment.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_EXPIRY", 15*time.Minute)
	v.SetDefault("JWT_REFRESH_EXPIRY", 7*24*time.Hour)
	v.SetDefault("INVITE_EXPIRY", 72*time.Hour)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "lunch-menus")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_URL_EXPIRY", time.Hour)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("FROM_EMAIL", "noreply@example.com")
	v.SetDefault("DOMAIN", "localhost:5173")
	v.SetDefault("LOCALE", "en")
	v.SetDefault("STREAM_TICK_INTERVAL", 5*time.Second)
	v.SetDefault("STREAM_HEARTBEAT_INTERVAL", 25*time.Second)
	v.SetDefault("STREAM_SNAPSHOT_SIZE", 10)
	v.SetDefault("NOTIFICATION_LIST_LIMIT", 50)

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),

		RedisURL: v.GetString("REDIS_URL"),

		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTAccessExpiry:  v.GetDuration("JWT_ACCESS_EXPIRY"),
		JWTRefreshExpiry: v.GetDuration("JWT_REFRESH_EXPIRY"),
		InviteExpiry:     v.GetDuration("INVITE_EXPIRY"),

		MinIOEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinIOAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinIOSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinIOBucket:    v.GetString("MINIO_BUCKET"),
		MinIOUseSSL:    v.GetBool("MINIO_USE_SSL"),
		MinIOURLExpiry: v.GetDuration("MINIO_URL_EXPIRY"),

		CORSOrigins: v.GetString("CORS_ORIGINS"),

		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		FromEmail:    v.GetString("FROM_EMAIL"),
		Domain:       v.GetString("DOMAIN"),
		Locale:       v.GetString("LOCALE"),

		StreamTickInterval:      v.GetDuration("STREAM_TICK_INTERVAL"),
		StreamHeartbeatInterval: v.GetDuration("STREAM_HEARTBEAT_INTERVAL"),
		StreamSnapshotSize:      v.GetInt("STREAM_SNAPSHOT_SIZE"),
		NotificationListLimit:   v.GetInt("NOTIFICATION_LIST_LIMIT"),
	}
}
