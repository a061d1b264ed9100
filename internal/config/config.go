package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// Redis (asynq transport + mock email capture)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort        string
	ServiceApiPort string

	// Clinic defaults (initial ClinicConfig record; editable at runtime via API)
	ClinicName     string
	ClinicAddress  string
	ClinicPhone    string
	ClinicEmail    string
	ClinicTaxID    string
	ClinicWebsite  string
	InvoicePrefix  string
	DefaultVATRate float64
	ReminderDays   []int

	// Billing
	InvoiceDueDays       int
	OverdueCheckInterval time.Duration

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Load basic string values
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.ClinicName = getEnv("CLINIC_NAME", "Clínica Salud Alicante")
	cfg.ClinicAddress = getEnv("CLINIC_ADDRESS", "Avenida de la Constitución, 45, 03001 Alicante")
	cfg.ClinicPhone = getEnv("CLINIC_PHONE", "+34 965 123 456")
	cfg.ClinicEmail = getEnv("CLINIC_EMAIL", "info@clinicasaludalicante.es")
	cfg.ClinicTaxID = getEnv("CLINIC_TAX_ID", "B-12345678")
	cfg.ClinicWebsite = getEnv("CLINIC_WEBSITE", "")
	cfg.InvoicePrefix = getEnv("INVOICE_PREFIX", "FAC")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "facturas@clinica.example.com")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.DefaultVATRate, err = strconv.ParseFloat(getEnv("DEFAULT_VAT_RATE", "21"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_VAT_RATE: %w", err)
	}

	cfg.ReminderDays, err = parseIntList(getEnv("REMINDER_DAYS", "7,15,30"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_DAYS: %w", err)
	}

	cfg.InvoiceDueDays, err = strconv.Atoi(getEnv("INVOICE_DUE_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_DUE_DAYS: %w", err)
	}

	overdueCheckMinutes, err := strconv.ParseInt(getEnv("OVERDUE_CHECK_INTERVAL_MINUTES", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OVERDUE_CHECK_INTERVAL_MINUTES: %w", err)
	}
	cfg.OverdueCheckInterval = time.Duration(overdueCheckMinutes) * time.Minute

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

// parseIntList parses a comma-separated list of integers (e.g. "7,15,30").
func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
