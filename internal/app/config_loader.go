package app

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// envKeys are bound explicitly so env overrides work without a config file
var envKeys = []string{
	"dump.index_url",
	"dump.language",
	"dump.type",
	"dump.namespace",
	"dump.strict_match",
	"download.dir",
	"download.timeout",
	"extract.mode",
	"extract.temp_dir",
	"catalog.enabled",
	"catalog.database_path",
	"server.host",
	"server.port",
	"logging.level",
	"logging.format",
	"logging.output_path",
	"logging.events_dir",
}

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.wikidump")
		v.AddConfigPath("/etc/wikidump")
	}

	// Read environment variables
	v.SetEnvPrefix("WIKIDUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.Dir = expandPath(config.Download.Dir)
	config.Extract.TempDir = expandPath(config.Extract.TempDir)
	config.Catalog.DatabasePath = expandPath(config.Catalog.DatabasePath)
	config.Logging.EventsDir = expandPath(config.Logging.EventsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// Replace $HOME before ExpandEnv so an unset HOME still resolves
	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	dumpType, err := domain.ParseDumpType(config.Dump.Type)
	if err != nil {
		return err
	}
	config.Dump.Type = string(dumpType)

	if err := config.Dump.Descriptor().Validate(); err != nil {
		return fmt.Errorf("invalid dump selection: %w", err)
	}

	u, err := url.Parse(config.Dump.IndexURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid index url: %q", config.Dump.IndexURL)
	}
	if !strings.HasSuffix(config.Dump.IndexURL, "/") {
		config.Dump.IndexURL += "/"
	}

	if config.Download.Dir == "" {
		return fmt.Errorf("download directory not configured")
	}

	if config.Download.Timeout < 0 {
		return fmt.Errorf("download timeout cannot be negative")
	}

	if !domain.ValidateExtractMode(domain.ExtractMode(config.Extract.Mode)) {
		return fmt.Errorf("invalid extract mode: %q", config.Extract.Mode)
	}

	if config.Catalog.Enabled && config.Catalog.DatabasePath == "" {
		return fmt.Errorf("catalog database path not configured")
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("dump", config.Dump)
	v.Set("download", config.Download)
	v.Set("http", config.HTTP)
	v.Set("extract", config.Extract)
	v.Set("catalog", config.Catalog)
	v.Set("server", config.Server)
	v.Set("notification", config.Notification)
	v.Set("logging", config.Logging)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
