package configs

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Advisor  AdvisorConfig
	Agent    AgentConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration. An empty URL disables the
// snapshot read cache; all reads then go straight to the database.
type RedisConfig struct {
	URL string
}

// LLMConfig holds configuration for the language-model endpoint
type LLMConfig struct {
	URL            string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// AdvisorConfig holds every financial threshold the advisory engine
// uses. These are configuration, not protocol: the rules reference them
// by name and never hardcode the numbers.
type AdvisorConfig struct {
	MinReserveMonths       float64
	IdealReserveMonths     float64
	SafetyReserveMonths    float64 // below this the allocation profile is forced conservative
	MinSavingsRate         float64
	MonthlyExpenseFallback float64
	DefaultAge             int
	AggressiveAgeBelow     int
	ModerateAgeUpTo        int
	DebtCategory           string
	Currency               string
	RiskLimits             map[string]RiskLimit
}

// RiskLimit holds per-profile hard ceilings on portfolio exposure,
// expressed as fractions of total portfolio value.
type RiskLimit struct {
	Crypto float64
	Global float64
}

// AgentConfig holds reasoning-loop configuration
type AgentConfig struct {
	MaxIterations   int
	HistoryLimit    int
	CacheTTLSeconds int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		LLM: LLMConfig{
			URL:            getEnv("LLM_URL", "http://localhost:11434/v1"),
			APIKey:         getEnv("LLM_API_KEY", ""),
			Model:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
			TimeoutSeconds: getEnvInt("LLM_TIMEOUT_SECONDS", 60),
		},
		Advisor: AdvisorConfig{
			MinReserveMonths:       getEnvFloat("MIN_RESERVE_MONTHS", 6),
			IdealReserveMonths:     getEnvFloat("IDEAL_RESERVE_MONTHS", 12),
			SafetyReserveMonths:    getEnvFloat("SAFETY_RESERVE_MONTHS", 3),
			MinSavingsRate:         getEnvFloat("MIN_SAVINGS_RATE", 0.10),
			MonthlyExpenseFallback: getEnvFloat("MONTHLY_EXPENSE_FALLBACK", 1500),
			DefaultAge:             getEnvInt("DEFAULT_AGE", 30),
			AggressiveAgeBelow:     getEnvInt("AGGRESSIVE_AGE_BELOW", 30),
			ModerateAgeUpTo:        getEnvInt("MODERATE_AGE_UP_TO", 45),
			DebtCategory:           getEnv("DEBT_CATEGORY", "debt"),
			Currency:               getEnv("CURRENCY", "CVE"),
			RiskLimits: map[string]RiskLimit{
				"conservative": {Crypto: 0.02, Global: 0.10},
				"moderate":     {Crypto: 0.10, Global: 0.30},
				"aggressive":   {Crypto: 0.25, Global: 0.50},
			},
		},
		Agent: AgentConfig{
			MaxIterations:   getEnvInt("AGENT_MAX_ITERATIONS", 5),
			HistoryLimit:    getEnvInt("AGENT_HISTORY_LIMIT", 15),
			CacheTTLSeconds: getEnvInt("SNAPSHOT_CACHE_TTL_SECONDS", 30),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
