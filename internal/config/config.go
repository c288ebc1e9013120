package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Figma       FigmaConfig       `mapstructure:"figma"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Application ApplicationConfig `mapstructure:"application"`
	Extraction  ExtractionConfig  `mapstructure:"extraction"`
	S3          S3Config          `mapstructure:"s3"`
}

type FigmaConfig struct {
	Token     string `mapstructure:"token"`
	FileID    string `mapstructure:"file_id"`
	CacheSize int    `mapstructure:"cache_size"`
}

type ApplicationConfig struct {
	Name       string        `mapstructure:"name"`
	Version    string        `mapstructure:"version"`
	Storage    StorageConfig `mapstructure:"storage"`
	TablesFile string        `mapstructure:"tables_file"`
	SaveDB     bool          `mapstructure:"save_db"`
	Publish    bool          `mapstructure:"publish"`
}

type StorageConfig struct {
	Stage     string `mapstructure:"stage"`     // incoming Figma JSON exports
	Output    string `mapstructure:"output"`    // extracted layout documents
	Processed string `mapstructure:"processed"` // exports already extracted
}

// ExtractionConfig seeds the filter configuration and overrides the
// canvas size of the extraction tables when set.
type ExtractionConfig struct {
	Mode             string  `mapstructure:"mode"`
	TargetWidth      float64 `mapstructure:"target_width"`
	TargetHeight     float64 `mapstructure:"target_height"`
	ReadyToDevMarker string  `mapstructure:"ready_to_dev_marker"`
	RequireZIndex    bool    `mapstructure:"require_z_index"`
	ExcludeHidden    bool    `mapstructure:"exclude_hidden"`
	MinArea          float64 `mapstructure:"min_area"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether enough is configured to publish artifacts.
func (c *S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Options  string `mapstructure:"options"`
}

// Configured reports whether a database connection can be attempted.
func (c *DatabaseConfig) Configured() bool {
	return c.URL != "" || c.Host != ""
}

func (c *DatabaseConfig) GetConnectStr() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, sslmode)

	if c.Options != "" {
		// space -> %20 is the only encoding libpq options need here
		encodedOptions := strings.ReplaceAll(c.Options, " ", "%20")
		connStr += fmt.Sprintf("&options=%s", encodedOptions)
	}

	return connStr
}

// LoadConfig reads .env, an optional config.yaml in the working directory
// and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not found, using system environment variables")
	}
	return Load("config.yaml")
}

// Load reads configuration from the given YAML file, which may be missing,
// with environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	// Environment variable mappings
	mappings := []struct {
		key, env string
	}{
		{"figma.token", "FIGMA_TOKEN"},
		{"figma.file_id", "FIGMA_FILE_ID"},
		{"figma.cache_size", "FIGMA_CACHE_SIZE"},

		{"database.url", "DB_URL"},
		{"database.host", "PG_HOST"},
		{"database.port", "PG_PORT"},
		{"database.user", "PG_USER"},
		{"database.password", "PG_PASSWORD"},
		{"database.dbname", "PG_DB"},
		{"database.sslmode", "PG_SSLMODE"},
		{"database.options", "PG_OPTIONS"},

		// Storage
		{"application.storage.stage", "STORAGE_STAGE"},
		{"application.storage.output", "STORAGE_OUTPUT"},
		{"application.storage.processed", "STORAGE_PROCESSED"},
		{"application.tables_file", "TABLES_FILE"},
		{"application.save_db", "SAVE_DB"},
		{"application.publish", "PUBLISH"},

		// Extraction
		{"extraction.mode", "EXTRACTION_MODE"},
		{"extraction.target_width", "TARGET_WIDTH"},
		{"extraction.target_height", "TARGET_HEIGHT"},
		{"extraction.ready_to_dev_marker", "READY_TO_DEV_MARKER"},
		{"extraction.require_z_index", "REQUIRE_Z_INDEX"},
		{"extraction.exclude_hidden", "EXCLUDE_HIDDEN"},
		{"extraction.min_area", "MIN_AREA"},

		// Artifact store
		{"s3.endpoint", "S3_ENDPOINT"},
		{"s3.region", "S3_REGION"},
		{"s3.access_key", "S3_ACCESS_KEY"},
		{"s3.secret_key", "S3_SECRET_KEY"},
		{"s3.bucket", "S3_BUCKET"},
		{"s3.use_ssl", "S3_USE_SSL"},
	}

	for _, m := range mappings {
		if err := v.BindEnv(m.key, m.env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", m.env, err)
		}
	}

	// Defaults
	v.SetDefault("application.name", "LayoutForge")
	v.SetDefault("application.storage.stage", "stage")
	v.SetDefault("application.storage.output", "output")
	v.SetDefault("application.storage.processed", "processed")
	v.SetDefault("figma.cache_size", 16)
	v.SetDefault("extraction.mode", "ALL")
	v.SetDefault("extraction.require_z_index", true)
	v.SetDefault("extraction.exclude_hidden", true)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "layoutforge")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Extraction.Mode = strings.ToUpper(strings.TrimSpace(cfg.Extraction.Mode))

	return &cfg, nil
}
