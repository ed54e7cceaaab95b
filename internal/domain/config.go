package domain

import "time"

// DefaultIndexURL is the run index of the enterprise HTML dumps
const DefaultIndexURL = "https://dumps.wikimedia.org/other/enterprise_html/runs/"

// Config represents the application configuration
type Config struct {
	Dump         DumpConfig         `mapstructure:"dump" yaml:"dump"`
	Download     DownloadConfig     `mapstructure:"download" yaml:"download"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Extract      ExtractConfig      `mapstructure:"extract" yaml:"extract"`
	Catalog      CatalogConfig      `mapstructure:"catalog" yaml:"catalog"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// DumpConfig selects which dump to look for
type DumpConfig struct {
	IndexURL    string `mapstructure:"index_url" yaml:"index_url"`
	Language    string `mapstructure:"language" yaml:"language"`
	Type        string `mapstructure:"type" yaml:"type"`
	Namespace   int    `mapstructure:"namespace" yaml:"namespace"`
	StrictMatch bool   `mapstructure:"strict_match" yaml:"strict_match"`
}

// Descriptor builds the dump descriptor described by the config
func (c DumpConfig) Descriptor() DumpDescriptor {
	return DumpDescriptor{
		Language:  c.Language,
		Type:      DumpType(c.Type),
		Namespace: c.Namespace,
	}
}

// Policy returns the filename match policy
func (c DumpConfig) Policy() MatchPolicy {
	if c.StrictMatch {
		return MatchStrict
	}
	return MatchLoose
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir              string        `mapstructure:"dir" yaml:"dir"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`                     // 0 disables the overall transfer deadline
	ProgressInterval int64         `mapstructure:"progress_interval" yaml:"progress_interval"` // bytes between progress log lines
}

// HTTPConfig contains settings shared by listing fetches and transfers
type HTTPConfig struct {
	Timeout               time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout" yaml:"response_header_timeout"`
	UserAgent             string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxListingBytes       int64         `mapstructure:"max_listing_bytes" yaml:"max_listing_bytes"`
}

// ExtractConfig contains extraction settings
type ExtractConfig struct {
	Mode    string `mapstructure:"mode" yaml:"mode"` // lines, bytes
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
}

// CatalogConfig contains the download history database settings
type CatalogConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Method  string `mapstructure:"method" yaml:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"`           // json, console
	OutputPath string `mapstructure:"output_path" yaml:"output_path"` // stdout, stderr, or file path
	EventsDir  string `mapstructure:"events_dir" yaml:"events_dir"`   // empty disables event logs
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Dump: DumpConfig{
			IndexURL:  DefaultIndexURL,
			Language:  "en",
			Type:      string(TypeWiktionary),
			Namespace: 0,
		},
		Download: DownloadConfig{
			Dir:              "$HOME/wikidump",
			Timeout:          0,
			ProgressInterval: 256 << 20,
		},
		HTTP: HTTPConfig{
			Timeout:               30 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			UserAgent:             "wikidump-go/1.0 (https://github.com/yourusername/wikidump-go)",
			MaxListingBytes:       32 << 20,
		},
		Extract: ExtractConfig{
			Mode:    string(ModeLines),
			TempDir: "",
		},
		Catalog: CatalogConfig{
			Enabled:      false,
			DatabasePath: "$HOME/.wikidump/catalog.db",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			EventsDir:  "",
		},
	}
}
