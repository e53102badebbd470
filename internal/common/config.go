package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Inbox   InboxConfig
	Archive ArchiveConfig
	Catalog CatalogConfig
	Resolve ResolveConfig
	Extract ExtractConfig
	LLM     LLMConfig
}

// InboxConfig holds inbox watching configuration
type InboxConfig struct {
	Dir         string
	Debounce    time.Duration
	InitialScan bool
}

// ArchiveConfig holds placement configuration
type ArchiveConfig struct {
	Root           string
	Mode           string // "move" | "copy"
	ConflictPolicy string // "ask" | "autoSuffix" | "overwrite"
	DeleteOriginal bool
	Workers        int
	UndoPath       string // last-move record, shared between daemon and CLI
}

// CatalogConfig holds catalog persistence configuration
type CatalogConfig struct {
	Backend string // "file" | "sqlite" | "postgres"
	Path    string // file or sqlite path

	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ResolveConfig holds the entity matching thresholds
type ResolveConfig struct {
	SimilarityThreshold    float64
	KeySimilarityThreshold float64
	MinInputLength         int
}

// ExtractConfig holds text extraction configuration
type ExtractConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// LLMConfig holds metadata suggestion configuration
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := &Config{
		Inbox: InboxConfig{
			Dir:         getEnv("INBOX_DIR", ""),
			Debounce:    getEnvAsDuration("INBOX_DEBOUNCE", 2*time.Second),
			InitialScan: getEnvAsBool("INBOX_INITIAL_SCAN", true),
		},
		Archive: ArchiveConfig{
			Root:           getEnv("ARCHIVE_DIR", ""),
			Mode:           getEnv("ARCHIVE_MODE", "move"),
			ConflictPolicy: getEnv("ARCHIVE_CONFLICT_POLICY", "autoSuffix"),
			DeleteOriginal: getEnvAsBool("ARCHIVE_DELETE_ORIGINAL", false),
			Workers:        getEnvAsInt("ARCHIVE_WORKERS", 2),
			UndoPath:       getEnv("ARCHIVE_UNDO_PATH", ""),
		},
		Catalog: CatalogConfig{
			Backend:         getEnv("CATALOG_BACKEND", "file"),
			Path:            getEnv("CATALOG_PATH", ""),
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Resolve: ResolveConfig{
			SimilarityThreshold:    getEnvAsFloat64("RESOLVE_SIMILARITY_THRESHOLD", 0.82),
			KeySimilarityThreshold: getEnvAsFloat64("RESOLVE_KEY_SIMILARITY_THRESHOLD", 0.90),
			MinInputLength:         getEnvAsInt("RESOLVE_MIN_INPUT_LENGTH", 3),
		},
		Extract: ExtractConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Lang:      getEnv("TESSERACT_LANG", "deu+eng"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3.1"),
			Timeout: getEnvAsDuration("OLLAMA_TIMEOUT", 60*time.Second),
		},
	}
	if cfg.Archive.UndoPath == "" && cfg.Archive.Root != "" {
		cfg.Archive.UndoPath = filepath.Join(cfg.Archive.Root, ".dokusort-undo.json")
	}
	return cfg
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Inbox.Dir == "" {
		return NewAppError("CONFIG_ERROR", "INBOX_DIR is required", ErrInvalidInput)
	}
	if c.Archive.Root == "" {
		return NewAppError("CONFIG_ERROR", "ARCHIVE_DIR is required", ErrInvalidInput)
	}
	switch c.Archive.Mode {
	case "move", "copy":
	default:
		return NewAppError("CONFIG_ERROR", "ARCHIVE_MODE must be move or copy", ErrInvalidInput)
	}
	switch c.Archive.ConflictPolicy {
	case "ask", "autoSuffix", "overwrite":
	default:
		return NewAppError("CONFIG_ERROR", "ARCHIVE_CONFLICT_POLICY must be ask, autoSuffix or overwrite", ErrInvalidInput)
	}
	if c.Catalog.Backend == "postgres" && c.Catalog.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres catalog backend", ErrInvalidInput)
	}
	return nil
}
