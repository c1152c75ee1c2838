package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// OpenRouterBaseURL is the OpenAI-compatible gateway the production
// deployment runs against.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Config holds all configuration for the application.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Knowledge store configuration
	Store StoreConfig `mapstructure:"store"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Security filter configuration
	Security SecurityConfig `mapstructure:"security"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StoreConfig holds knowledge store configuration.
type StoreConfig struct {
	Backend     string `mapstructure:"backend"` // chromem, mongo, memory
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	Collection  string `mapstructure:"collection"`
	VectorIndex string `mapstructure:"vector_index"`
	PersistPath string `mapstructure:"persist_path"`
}

// LLMConfig holds LLM configuration.
type LLMConfig struct {
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	// Circuit breaker settings for the shared model client.
	BreakerFailures uint32 `mapstructure:"breaker_failures"`
	BreakerCooldown string `mapstructure:"breaker_cooldown"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// RetrievalConfig holds retrieval configuration.
type RetrievalConfig struct {
	TopK     int     `mapstructure:"top_k"`
	MinScore float32 `mapstructure:"min_score"`
	// IntentTags maps an intent label to the chunk metadata "type" its
	// retrieval is biased toward. Intents without an entry search
	// unfiltered.
	IntentTags map[string]string `mapstructure:"intent_tags"`
}

// SecurityConfig holds security filter configuration. An empty denylist
// falls back to the built-in terms.
type SecurityConfig struct {
	Denylist []string `mapstructure:"denylist"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Store defaults
	viper.SetDefault("store.backend", "chromem")
	viper.SetDefault("store.database", "RAG-assistant")
	viper.SetDefault("store.collection", "hotel_knowledge")
	viper.SetDefault("store.vector_index", "vector_index")
	viper.SetDefault("store.persist_path", "./data")

	// LLM defaults
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 500)
	viper.SetDefault("llm.breaker_failures", 5)
	viper.SetDefault("llm.breaker_cooldown", "30s")

	// Embedding defaults
	viper.SetDefault("embedding.model", "text-embedding-3-small")

	// Retrieval defaults
	viper.SetDefault("retrieval.top_k", 4)
	viper.SetDefault("retrieval.min_score", 0.0)
	viper.SetDefault("retrieval.intent_tags", map[string]string{
		"check_availability": "room",
		"make_reservation":   "room",
		"cancel_reservation": "policy",
		"talk_to_human":      "contact",
	})
}

// overrideWithEnv overrides config with environment variables.
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
		config.Embedding.APIKey = apiKey
	}
	// An OpenRouter key implies the OpenRouter gateway unless a base URL
	// is set explicitly.
	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
		config.Embedding.APIKey = apiKey
		if config.LLM.BaseURL == "" {
			config.LLM.BaseURL = OpenRouterBaseURL
		}
		if config.Embedding.BaseURL == "" {
			config.Embedding.BaseURL = OpenRouterBaseURL
		}
	}

	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		config.Store.URI = uri
	}
	if db := os.Getenv("DATABASE_NAME"); db != "" {
		config.Store.Database = db
	}
	if coll := os.Getenv("COLLECTION_NAME"); coll != "" {
		config.Store.Collection = coll
	}
	if index := os.Getenv("VECTOR_INDEX_NAME"); index != "" {
		config.Store.VectorIndex = index
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
		config.Server.Port = viper.GetInt("server.port")
	}
}
