// Package config provides configuration loading and validation for the checker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvRPCURL         = "RPC_URL"
	EnvAPIKey         = "ETHERSCAN_API_KEY"
	EnvWalletAddress  = "WALLET_ADDRESS_TO_CHECK"
	EnvIndexerURL     = "INDEXER_URL"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
)

// Defaults for optional settings.
const (
	DefaultIndexerURL = "https://api.etherscan.io/api"
	DefaultTimeout    = 30 * time.Second
)

// ErrMissingConfig is returned when a required setting is absent or empty.
var ErrMissingConfig = errors.New("missing required environment variables")

// Config holds all settings for a single run. It is built once at startup
// and passed by value; nothing mutates it afterwards.
type Config struct {
	// JSON-RPC endpoint of an Ethereum node
	RPCURL string

	// Etherscan-compatible indexer base URL and its API key
	IndexerURL string
	APIKey     string

	// Wallet under evaluation
	WalletAddress string

	// Per-request timeout applied to the shared HTTP client, 0 disables it
	RequestTimeout time.Duration

	// OpenTelemetry endpoint for observability (host:port), empty disables tracing
	OtelEndpoint string

	// Prometheus Pushgateway base URL, empty disables the push
	PushgatewayURL string
}

// LoadEnvFile reads a dotenv file into the process environment. Variables
// already set are left alone, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logrus.Debugf("No env file at %s, relying on process environment", path)
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load creates a new Config from environment variables
func Load() Config {
	return Config{
		RPCURL:         strings.TrimSpace(os.Getenv(EnvRPCURL)),
		IndexerURL:     GetEnvOrDefault(EnvIndexerURL, DefaultIndexerURL),
		APIKey:         strings.TrimSpace(os.Getenv(EnvAPIKey)),
		WalletAddress:  strings.TrimSpace(os.Getenv(EnvWalletAddress)),
		RequestTimeout: GetEnvAsDuration(EnvRequestTimeout, DefaultTimeout),
		OtelEndpoint:   GetEnvOrDefault(EnvOtelEndpoint, ""),
		PushgatewayURL: GetEnvOrDefault(EnvPushgatewayURL, ""),
	}
}

// Validate reports every required setting that is missing. The address is
// only checked for presence; a non-hex value is logged and left for the
// remote APIs to reject.
func (c Config) Validate() error {
	var missing []string
	if c.RPCURL == "" {
		missing = append(missing, EnvRPCURL)
	}
	if c.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if c.WalletAddress == "" {
		missing = append(missing, EnvWalletAddress)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	if !common.IsHexAddress(c.WalletAddress) {
		logrus.WithField("address", c.WalletAddress).Warn("Wallet address is not a 20-byte hex address")
	}
	return nil
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.Warnf("Invalid duration in %s, using default: %v", key, defaultValue)
	}
	return defaultValue
}
