package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment       string
	HTTPPort          string
	HTTPSPort         string
	Domains           []string
	CertCacheDir      string
	DatabaseURL       string
	OpenAIAPIKey      string
	OpenAIModel       string
	AnthropicAPIKey   string
	AnthropicModel    string
	EmbeddingAPIURL   string
	EmbeddingModel    string
	EmbeddingTimeout  time.Duration
	LLMTimeout        time.Duration
	DefaultModel      string
	TopK              int
	ChunkSize         int
	ChunkOverlap      int
	EmbedConcurrency  int
	ReconcileInterval time.Duration
	PendingTTL        time.Duration
	LogDir            string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "8086"),
		HTTPSPort:         getEnv("HTTPS_PORT", "443"),
		Domains:           []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:      getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		EmbeddingAPIURL:   getEnv("EMBEDDING_API_URL", "https://api.openai.com/v1/embeddings"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		EmbeddingTimeout:  getEnvAsDuration("EMBEDDING_TIMEOUT_SECONDS", 30),
		LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT_SECONDS", 120),
		DefaultModel:      getEnv("DEFAULT_MODEL", "openai"),
		TopK:              getEnvAsInt("RETRIEVAL_TOP_K", 2),
		ChunkSize:         getEnvAsInt("CHUNK_SIZE_WORDS", 200),
		ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP_WORDS", 40),
		EmbedConcurrency:  getEnvAsInt("EMBED_CONCURRENCY", 4),
		ReconcileInterval: getEnvAsDuration("RECONCILE_INTERVAL_SECONDS", 600),
		PendingTTL:        getEnvAsDuration("PENDING_TTL_SECONDS", 1800),
		LogDir:            getEnv("LOG_DIR", "logs"),
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

func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallbackSeconds)) * time.Second
}
