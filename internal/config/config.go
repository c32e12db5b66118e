package config

import (
	"fmt"
	"os"

	"lodgetix/internal/logger"
)

type Config struct {
	// Record store (Postgres). Optional: the generate command can run from
	// JSON files without a database.
	DatabaseURL string

	// Invoice numbering
	InvoicePrefix         string
	SupplierInvoicePrefix string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		InvoicePrefix:         getEnv("INVOICE_PREFIX", "LTIV-"),
		SupplierInvoicePrefix: getEnv("SUPPLIER_INVOICE_PREFIX", "LTSP-"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.InvoicePrefix == "" {
		return fmt.Errorf("INVOICE_PREFIX must not be empty")
	}
	if c.SupplierInvoicePrefix == "" {
		return fmt.Errorf("SUPPLIER_INVOICE_PREFIX must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
