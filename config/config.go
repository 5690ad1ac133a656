package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Auth         Auth
	Redis        Redis
	RabbitMQ     RabbitMQ
	Exam         Exam
	Entitlement  Entitlement
	GeminiApiKey string
	GeminiModel  string
	LogLevel     string
}

type Server struct {
	Port    string
	GinMode string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Auth struct {
	JWTSecret string
	Issuer    string
}

// Redis is optional; an empty Addr disables the answer-key cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
	KeyTTL   time.Duration
}

// RabbitMQ is optional; an empty URL disables event publishing.
type RabbitMQ struct {
	URL      string
	Exchange string
}

type Exam struct {
	DefaultPassScore int
	StreakTimezone   string
}

// Entitlement holds the free-tier limits applied to users without a plan.
type Entitlement struct {
	FreeExamLimit    int
	FreeReviewAccess bool
}

// Location resolves StreakTimezone, falling back to UTC.
func (e Exam) Location() *time.Location {
	if e.StreakTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.StreakTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", e.StreakTimezone).Msg("Unknown streak timezone, using UTC")
		return time.UTC
	}
	return loc
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.Issuer = viper.GetString("JWT_ISSUER")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.KeyTTL = viper.GetDuration("REDIS_KEY_TTL")

	config.RabbitMQ.URL = viper.GetString("RABBITMQ_URL")
	config.RabbitMQ.Exchange = viper.GetString("RABBITMQ_EXCHANGE")

	config.Exam.DefaultPassScore = viper.GetInt("EXAM_DEFAULT_PASS_SCORE")
	config.Exam.StreakTimezone = viper.GetString("EXAM_STREAK_TIMEZONE")

	config.Entitlement.FreeExamLimit = viper.GetInt("FREE_EXAM_LIMIT")
	config.Entitlement.FreeReviewAccess = viper.GetBool("FREE_REVIEW_ACCESS")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.GeminiModel = viper.GetString("GEMINI_MODEL")
	config.LogLevel = viper.GetString("LOG_LEVEL")

	log.Info().
		Str("port", config.Server.Port).
		Str("db_host", config.Database.Host).
		Str("db_name", config.Database.Name).
		Bool("redis", config.Redis.Addr != "").
		Bool("rabbitmq", config.RabbitMQ.URL != "").
		Bool("gemini", config.GeminiApiKey != "").
		Msg("Config loaded")
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_NAME", "eps_topik")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("JWT_ISSUER", "eps-topik")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_KEY_TTL", "30m")
	viper.SetDefault("RABBITMQ_EXCHANGE", "eps_topik.events")
	viper.SetDefault("EXAM_DEFAULT_PASS_SCORE", 60)
	viper.SetDefault("EXAM_STREAK_TIMEZONE", "UTC")
	viper.SetDefault("FREE_EXAM_LIMIT", 2)
	viper.SetDefault("FREE_REVIEW_ACCESS", false)
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("LOG_LEVEL", "info")
}
