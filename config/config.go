package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisEmbedDB  int    `mapstructure:"REDIS_EMBED_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe billing.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Gemini (generation + embeddings).
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel    string `mapstructure:"GEMINI_MODEL"`
	EmbeddingModel string `mapstructure:"EMBEDDING_MODEL"`

	// File storage.
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`

	// Firebase (push notifications).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// OCR pipeline.
	OCRLanguages    string  `mapstructure:"OCR_LANGUAGES"`
	OCRQualityGate  float64 `mapstructure:"OCR_QUALITY_GATE"`
	MaxUploadBytes  int64   `mapstructure:"MAX_UPLOAD_BYTES"`
	UploadTempDir   string  `mapstructure:"UPLOAD_TEMP_DIR"`
	PipelineWorkers int     `mapstructure:"PIPELINE_WORKERS"`

	// Legal retrieval.
	ChunkSize         int     `mapstructure:"CHUNK_SIZE"`
	ChunkOverlap      int     `mapstructure:"CHUNK_OVERLAP"`
	RetrievalTopK     int     `mapstructure:"RETRIEVAL_TOP_K"`
	RetrievalMinScore float64 `mapstructure:"RETRIEVAL_MIN_SCORE"`
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
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_EMBED_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("EMBEDDING_MODEL", "models/text-embedding-004")
	viper.SetDefault("OCR_LANGUAGES", "por+eng")
	viper.SetDefault("OCR_QUALITY_GATE", 0.55)
	viper.SetDefault("MAX_UPLOAD_BYTES", 15<<20)
	viper.SetDefault("UPLOAD_TEMP_DIR", "")
	viper.SetDefault("PIPELINE_WORKERS", 4)
	viper.SetDefault("CHUNK_SIZE", 900)
	viper.SetDefault("CHUNK_OVERLAP", 120)
	viper.SetDefault("RETRIEVAL_TOP_K", 6)
	viper.SetDefault("RETRIEVAL_MIN_SCORE", 0.35)

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
