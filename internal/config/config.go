package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	WorkDir      string `yaml:"work_dir"`
	SQLiteDriver string `yaml:"sqlite_driver"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	Output       string `yaml:"output"`
	MetricsFile  string `yaml:"metrics_file"`

	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"`
	S3PathStyle       bool   `yaml:"s3_path_style"`
	S3AccessKeyID     string `yaml:"-"`
	S3SecretAccessKey string `yaml:"-"`
}

// DefaultWorkDir is where source archives are unpacked.
const DefaultWorkDir = "data/.dataset-import"

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/datasetprep/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		WorkDir:      DefaultWorkDir,
		SQLiteDriver: "sqlite3",
		LogLevel:     "info",
		LogFormat:    "console",
		Output:       "json",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional; a present but broken file is an error.
	if err := loadYAMLConfig(cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	// Override with environment variables
	if workDir := os.Getenv("DATASETPREP_WORK_DIR"); workDir != "" {
		cfg.WorkDir = workDir
	}
	if driver := os.Getenv("DATASETPREP_SQLITE_DRIVER"); driver != "" {
		cfg.SQLiteDriver = driver
	}
	if logLevel := os.Getenv("DATASETPREP_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat := os.Getenv("DATASETPREP_LOG_FORMAT"); logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if output := os.Getenv("DATASETPREP_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if metricsFile := os.Getenv("DATASETPREP_METRICS_FILE"); metricsFile != "" {
		cfg.MetricsFile = metricsFile
	}
	if region := os.Getenv("DATASETPREP_S3_REGION"); region != "" {
		cfg.S3Region = region
	}
	if endpoint := os.Getenv("DATASETPREP_S3_ENDPOINT"); endpoint != "" {
		cfg.S3Endpoint = endpoint
	}
	if pathStyle := os.Getenv("DATASETPREP_S3_PATH_STYLE"); pathStyle != "" {
		v, err := strconv.ParseBool(pathStyle)
		if err != nil {
			return nil, fmt.Errorf("invalid DATASETPREP_S3_PATH_STYLE %q: %w", pathStyle, err)
		}
		cfg.S3PathStyle = v
	}
	cfg.S3AccessKeyID = getEnvOrFile("DATASETPREP_S3_ACCESS_KEY_ID", "DATASETPREP_S3_ACCESS_KEY_ID_FILE")
	cfg.S3SecretAccessKey = getEnvOrFile("DATASETPREP_S3_SECRET_ACCESS_KEY", "DATASETPREP_S3_SECRET_ACCESS_KEY_FILE")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q: must be json or yaml", c.Output)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be console or json", c.LogFormat)
	}
	return nil
}

// Path returns the location of the YAML config file.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "datasetprep", "config.yaml"), nil
}

// loadYAMLConfig loads configuration from ~/.config/datasetprep/config.yaml
func loadYAMLConfig(cfg *Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return nil
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
