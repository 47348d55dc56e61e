package config

import "os"

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Security   SecurityConfig
	Blockchain BlockchainConfig
	Webhook    WebhookConfig
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

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// SecurityConfig holds the session secret used both for the address
// envelope key derivation and for the address HMAC.
type SecurityConfig struct {
	SessionSecret string
}

// BlockchainConfig holds chain API access and process-level receivers
type BlockchainConfig struct {
	AlchemyAPIKey      string
	TronGridAPIKey     string
	TronBaseURL        string
	PaymentAddressEVM  string
	PaymentAddressTron string
}

// WebhookConfig holds the default tenant webhook target
type WebhookConfig struct {
	URL    string
	Secret string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Security: SecurityConfig{
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
		Blockchain: BlockchainConfig{
			AlchemyAPIKey:      os.Getenv("ALCHEMY_API_KEY"),
			TronGridAPIKey:     os.Getenv("TRONGRID_API_KEY"),
			TronBaseURL:        getEnv("RPC_TRON", "https://api.trongrid.io"),
			PaymentAddressEVM:  os.Getenv("PAYMENT_ADDRESS_EVM"),
			PaymentAddressTron: os.Getenv("PAYMENT_ADDRESS_TRON"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("WEBHOOK_URL"),
			Secret: os.Getenv("WEBHOOK_SECRET"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
