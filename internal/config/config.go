// Package config provides centralized configuration management for langtool.
// It loads configuration from environment variables with sensible defaults and
// validates all settings up front so that a run never starts half-configured.
package config

import (
	"strconv"
	"time"
)

// Source modes.
const (
	SourceSheets = "sheets"
	SourceFile   = "file"
)

// Asset host providers.
const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Source   SourceConfig
	Sheets   SheetsConfig
	CDN      CDNConfig
	S3       S3Config
	Output   OutputConfig
	Run      RunConfig
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// SourceConfig selects where translation rows come from.
type SourceConfig struct {
	// Mode is either "sheets" (Google Sheets API) or "file" (local xlsx/csv)
	Mode string `env:"SOURCE_MODE" default:"sheets"`

	// File is the local spreadsheet read in file mode
	File string `env:"SOURCE_FILE" default:"data/sample/locales.csv" requiredFor:"file"`
}

// SheetsConfig holds Google Sheets access settings.
type SheetsConfig struct {
	// SpreadsheetID is the opaque id from the sheet URL
	SpreadsheetID string `env:"GOOGLE_SHEET_ID" envAlt:"SPREADSHEET_ID" requiredFor:"sheets"`

	// APIKey is a Google API key with the Sheets API enabled
	APIKey string `env:"GOOGLE_API_KEY" requiredFor:"sheets" secret:"true"`

	// Range is the A1 range fetched from the sheet
	Range string `env:"SHEET_RANGE" default:"Sheet1!A1:Z1000"`
}

// CDNConfig holds asset host selection and Cloudinary credentials.
type CDNConfig struct {
	// Provider is "cloudinary" or "s3"
	Provider string `env:"CDN_PROVIDER" default:"cloudinary"`

	// Folder is the namespace every locale resource is stored under
	Folder string `env:"CDN_FOLDER" default:"i18n"`

	// PublishIndex also uploads <folder>/index.json listing every locale URL
	PublishIndex bool `env:"CDN_PUBLISH_INDEX" default:"false"`

	CloudName string `env:"CLOUDINARY_CLOUD_NAME" requiredFor:"cloudinary"`
	APIKey    string `env:"CLOUDINARY_API_KEY" requiredFor:"cloudinary" secret:"true"`
	APISecret string `env:"CLOUDINARY_API_SECRET" requiredFor:"cloudinary" secret:"true"`
}

// S3Config holds settings for an S3-compatible asset host (MinIO, R2, S3).
type S3Config struct {
	Endpoint  string `env:"S3_ENDPOINT" requiredFor:"s3"`
	AccessKey string `env:"S3_ACCESS_KEY" requiredFor:"s3"`
	SecretKey string `env:"S3_SECRET_KEY" requiredFor:"s3" secret:"true"`
	Bucket    string `env:"S3_BUCKET" requiredFor:"s3"`
	Region    string `env:"S3_REGION"`

	// PublicURL is the base URL objects are served from (default: endpoint)
	PublicURL string `env:"S3_PUBLIC_URL"`

	UseSSL bool `env:"S3_USE_SSL" default:"true"`
}

// OutputConfig holds local artifact locations.
type OutputConfig struct {
	// Dir receives one <locale>.json per locale (default: public/locales)
	Dir string `env:"OUTPUT_DIR" default:"public/locales"`

	// ManifestPath is where the locale -> URL manifest is written (default: cdn-urls.json)
	ManifestPath string `env:"MANIFEST_PATH" default:"cdn-urls.json"`
}

// RunConfig holds pipeline run settings.
type RunConfig struct {
	// Timeout bounds a whole run; zero means no deadline
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"0s"`
}

// DatabaseConfig holds the optional run history database.
type DatabaseConfig struct {
	// URL is a PostgreSQL connection string; history is disabled when empty
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" secret:"true"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// SyncPerMinute caps how often POST /api/sync may start a run (default: 6)
	SyncPerMinute int `env:"SYNC_RATE_PER_MINUTE" default:"6"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key authentication on the HTTP API
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS" secret:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// HistoryEnabled reports whether run history should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.Database.URL != ""
}
