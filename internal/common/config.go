package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Parser   ParserConfig
	Watch    WatchConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	HealthAddr     string
	UploadDir      string
	MaxReceipts    int
	MaxUploadBytes int64
}

// OCRConfig holds text-extraction configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
}

// ParserConfig holds field-extraction thresholds
type ParserConfig struct {
	MinTextLength int
	MinAmount     float64
	MaxAmount     float64
	MinItemTotal  float64
}

// WatchConfig holds inbox-watcher configuration
type WatchConfig struct {
	Roots    []string
	Debounce time.Duration
	Workers  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", "receipts.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
			HealthAddr:     getEnv("HEALTH_ADDR", ":8081"),
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxReceipts:    getEnvAsInt("MAX_RECEIPTS", 10),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 32<<20)),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 20),
		},
		Parser: ParserConfig{
			MinTextLength: getEnvAsInt("PARSE_MIN_TEXT_LENGTH", 10),
			MinAmount:     getEnvAsFloat64("PARSE_MIN_AMOUNT", 0.50),
			MaxAmount:     getEnvAsFloat64("PARSE_MAX_AMOUNT", 1_000_000),
			MinItemTotal:  getEnvAsFloat64("PARSE_MIN_ITEM_TOTAL", 10),
		},
		Watch: WatchConfig{
			Roots:    getEnvAsList("WATCH_DIRS"),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			Workers:  getEnvAsInt("WATCH_WORKERS", 4),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.UploadDir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOAD_DIR is required", ErrInvalidInput)
	}
	if c.Server.MaxReceipts <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_RECEIPTS must be positive", ErrInvalidInput)
	}
	return nil
}
