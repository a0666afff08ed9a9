package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Identity  IdentityConfig
	Plaid     PlaidConfig
	Dwolla    DwollaConfig
	Link      LinkConfig
	Redis     RedisConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

// StorageConfig selects where directory and bank-link records live.
// "appwrite" keeps them as documents on the identity backend, "postgres"
// uses the local database.
type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// IdentityConfig holds credentials for the Appwrite identity/document backend.
type IdentityConfig struct {
	Endpoint         string
	Project          string
	APIKey           string
	DatabaseID       string
	UserCollectionID string
	BankCollectionID string
}

type PlaidConfig struct {
	BaseURL  string
	ClientID string
	Secret   string
}

type DwollaConfig struct {
	BaseURL string
	Key     string
	Secret  string
}

// LinkConfig controls the bank-link handshake.
// AccountSelection decides what happens when the aggregator returns more than
// one account for a freshly linked item: "first" or "reject-if-multiple".
type LinkConfig struct {
	AccountSelection string
	EncryptionKey    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

const (
	StorageDriverAppwrite = "appwrite"
	StorageDriverPostgres = "postgres"

	AccountSelectionFirst            = "first"
	AccountSelectionRejectIfMultiple = "reject-if-multiple"
)

func Load() (*Config, error) {

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Parse TLS configuration
	tlsEnabled := getBoolEnv("TLS_ENABLED", false)
	tlsCertPath := getEnv("TLS_CERT_PATH", "")
	tlsKeyPath := getEnv("TLS_KEY_PATH", "")
	tlsRedirectHTTP := getBoolEnv("TLS_REDIRECT_HTTP", false)

	// Parse allowed hosts (comma-separated list)
	allowedHostsStr := getEnv("ALLOWED_HOSTS", "")
	var allowedHosts []string
	if allowedHostsStr != "" {
		for _, host := range strings.Split(allowedHostsStr, ",") {
			host = strings.TrimSpace(host)
			if host != "" {
				allowedHosts = append(allowedHosts, host)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageDriverAppwrite),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "horizon"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "horizon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Identity: IdentityConfig{
			Endpoint:         getEnv("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1"),
			Project:          getEnv("APPWRITE_PROJECT", ""),
			APIKey:           getEnv("APPWRITE_KEY", ""),
			DatabaseID:       getEnv("APPWRITE_DATABASE_ID", ""),
			UserCollectionID: getEnv("APPWRITE_USER_COLLECTION_ID", ""),
			BankCollectionID: getEnv("APPWRITE_BANK_COLLECTION_ID", ""),
		},
		Plaid: PlaidConfig{
			BaseURL:  getEnv("PLAID_BASE_URL", "https://sandbox.plaid.com"),
			ClientID: getEnv("PLAID_CLIENT_ID", ""),
			Secret:   getEnv("PLAID_SECRET", ""),
		},
		Dwolla: DwollaConfig{
			BaseURL: getEnv("DWOLLA_BASE_URL", "https://api-sandbox.dwolla.com"),
			Key:     getEnv("DWOLLA_KEY", ""),
			Secret:  getEnv("DWOLLA_SECRET", ""),
		},
		Link: LinkConfig{
			AccountSelection: getEnv("LINK_ACCOUNT_SELECTION", AccountSelectionFirst),
			EncryptionKey:    getEnv("ENCRYPTION_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		TLS: TLSConfig{
			Enabled:      tlsEnabled,
			CertPath:     tlsCertPath,
			KeyPath:      tlsKeyPath,
			RedirectHTTP: tlsRedirectHTTP,
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "horizon-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
	}

	// Validate required fields
	if cfg.Identity.Project == "" {
		return nil, fmt.Errorf("APPWRITE_PROJECT is required")
	}
	if cfg.Identity.APIKey == "" {
		return nil, fmt.Errorf("APPWRITE_KEY is required")
	}
	if cfg.Identity.DatabaseID == "" {
		return nil, fmt.Errorf("APPWRITE_DATABASE_ID is required")
	}
	if cfg.Identity.UserCollectionID == "" {
		return nil, fmt.Errorf("APPWRITE_USER_COLLECTION_ID is required")
	}
	if cfg.Identity.BankCollectionID == "" {
		return nil, fmt.Errorf("APPWRITE_BANK_COLLECTION_ID is required")
	}
	if cfg.Plaid.ClientID == "" || cfg.Plaid.Secret == "" {
		return nil, fmt.Errorf("PLAID_CLIENT_ID and PLAID_SECRET are required")
	}
	if cfg.Dwolla.Key == "" || cfg.Dwolla.Secret == "" {
		return nil, fmt.Errorf("DWOLLA_KEY and DWOLLA_SECRET are required")
	}
	if cfg.Link.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(cfg.Link.EncryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	switch cfg.Storage.Driver {
	case StorageDriverAppwrite, StorageDriverPostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (want %q or %q)", cfg.Storage.Driver, StorageDriverAppwrite, StorageDriverPostgres)
	}

	switch cfg.Link.AccountSelection {
	case AccountSelectionFirst, AccountSelectionRejectIfMultiple:
	default:
		return nil, fmt.Errorf("invalid LINK_ACCOUNT_SELECTION %q (want %q or %q)", cfg.Link.AccountSelection, AccountSelectionFirst, AccountSelectionRejectIfMultiple)
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
