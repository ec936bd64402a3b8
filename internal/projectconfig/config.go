// Package projectconfig provides the ProjectConfig struct and loader for
// .essayeval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project configuration file looked up by Load.
const ConfigFileName = ".essayeval.yaml"

// EnvPrefix prefixes every environment override, e.g. ESSAYEVAL_SCORING_URL.
// Keys come from field names (split_words); a bare PORT is never read.
const EnvPrefix = "ESSAYEVAL"

// Default values for project configuration. These are the single source of
// truth; New() references them and no other code should duplicate them.
const (
	DefaultScoringURL     = "http://127.0.0.1:8001"
	DefaultScoringTimeout = 120 * time.Second

	DefaultOutputDir = "reports/"
	DefaultDelimiter = ","

	DefaultServerPort = 3000
	DefaultRateLimit  = 1.0
	DefaultRateBurst  = 3
)

// ScoringConfig describes the remote scoring service.
type ScoringConfig struct {
	URL     string        `yaml:"url,omitempty" split_words:"true"`
	Timeout time.Duration `yaml:"timeout,omitempty" split_words:"true"`
	// Models is the default model selection; empty means every known model.
	Models []string `yaml:"models,omitempty" split_words:"true"`
	// ReplayFile, when set, answers every request from a recorded response
	// instead of calling the service.
	ReplayFile string `yaml:"replay_file,omitempty" split_words:"true"`
	// CacheDir stores fully scored responses; empty disables the cache.
	CacheDir string `yaml:"cache_dir,omitempty" split_words:"true"`
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	OutputDir string   `yaml:"output_dir,omitempty" split_words:"true"`
	Delimiter string   `yaml:"delimiter,omitempty" split_words:"true"`
	Formats   []string `yaml:"formats,omitempty" split_words:"true"`
}

// ServerConfig holds dashboard server settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty" split_words:"true"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" split_words:"true"`
	// RateLimit is the sustained number of benchmark runs per second allowed
	// per client address; RateBurst the bucket size.
	RateLimit float64 `yaml:"rate_limit,omitempty" split_words:"true"`
	RateBurst int     `yaml:"rate_burst,omitempty" split_words:"true"`
	// TrustedProxies are peer addresses whose X-Forwarded-For and X-Real-IP
	// headers name the client. Other peers are keyed on their own address.
	TrustedProxies []string `yaml:"trusted_proxies,omitempty" split_words:"true"`
}

// UploadConfig points at an Azure storage container for uploaded reports.
type UploadConfig struct {
	AccountURL string `yaml:"account_url,omitempty" split_words:"true"`
	Container  string `yaml:"container,omitempty" split_words:"true"`
	Prefix     string `yaml:"prefix,omitempty" split_words:"true"`
}

// Enabled reports whether an upload target is configured.
func (u UploadConfig) Enabled() bool {
	return u.AccountURL != "" && u.Container != ""
}

// ProjectConfig is the top-level configuration loaded from .essayeval.yaml.
type ProjectConfig struct {
	Scoring ScoringConfig `yaml:"scoring,omitempty" split_words:"true"`
	Export  ExportConfig  `yaml:"export,omitempty" split_words:"true"`
	Server  ServerConfig  `yaml:"server,omitempty" split_words:"true"`
	Upload  UploadConfig  `yaml:"upload,omitempty" split_words:"true"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Scoring: ScoringConfig{
			URL:     DefaultScoringURL,
			Timeout: DefaultScoringTimeout,
		},
		Export: ExportConfig{
			OutputDir: DefaultOutputDir,
			Delimiter: DefaultDelimiter,
			Formats:   []string{"xlsx", "csv"},
		},
		Server: ServerConfig{
			Port:      DefaultServerPort,
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		},
	}
}

// Load finds .essayeval.yaml by walking up from startDir (max 10 levels),
// unmarshals it and fills in missing fields with defaults. A .env file in
// startDir is loaded next, then ESSAYEVAL_* environment variables override
// both. If no config file is found, defaults plus environment are returned.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	switch {
	case err == nil:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
		}
		// Merge file values onto defaults.
		mergeConfig(cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
	}

	if err := loadDotEnv(startDir); err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("processing environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the merged configuration.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Scoring.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("scoring.url %q is not an absolute URL", c.Scoring.URL))
	}
	if c.Scoring.Timeout < 0 {
		errs = append(errs, fmt.Errorf("scoring.timeout must not be negative"))
	}
	if c.Export.Delimiter == "" || strings.ContainsAny(c.Export.Delimiter, "\r\n") {
		errs = append(errs, fmt.Errorf("export.delimiter %q must be non-empty and single-line", c.Export.Delimiter))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit and server.rate_burst must not be negative"))
	}
	if (c.Upload.AccountURL == "") != (c.Upload.Container == "") {
		errs = append(errs, fmt.Errorf("upload.account_url and upload.container must be set together"))
	}
	return errors.Join(errs...)
}

// loadDotEnv loads startDir/.env without overriding variables already set.
func loadDotEnv(startDir string) error {
	p := filepath.Join(startDir, ".env")
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %q: %w", p, err)
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("loading %q: %w", p, err)
	}
	return nil
}

// findConfigFile walks up from dir looking for .essayeval.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Scoring
	if src.Scoring.URL != "" {
		dst.Scoring.URL = src.Scoring.URL
	}
	if src.Scoring.Timeout != 0 {
		dst.Scoring.Timeout = src.Scoring.Timeout
	}
	if len(src.Scoring.Models) > 0 {
		dst.Scoring.Models = src.Scoring.Models
	}
	if src.Scoring.ReplayFile != "" {
		dst.Scoring.ReplayFile = src.Scoring.ReplayFile
	}
	if src.Scoring.CacheDir != "" {
		dst.Scoring.CacheDir = src.Scoring.CacheDir
	}

	// Export
	if src.Export.OutputDir != "" {
		dst.Export.OutputDir = src.Export.OutputDir
	}
	if src.Export.Delimiter != "" {
		dst.Export.Delimiter = src.Export.Delimiter
	}
	if len(src.Export.Formats) > 0 {
		dst.Export.Formats = src.Export.Formats
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Server.RateLimit != 0 {
		dst.Server.RateLimit = src.Server.RateLimit
	}
	if src.Server.RateBurst != 0 {
		dst.Server.RateBurst = src.Server.RateBurst
	}
	if len(src.Server.TrustedProxies) > 0 {
		dst.Server.TrustedProxies = src.Server.TrustedProxies
	}

	// Upload
	if src.Upload.AccountURL != "" {
		dst.Upload.AccountURL = src.Upload.AccountURL
	}
	if src.Upload.Container != "" {
		dst.Upload.Container = src.Upload.Container
	}
	if src.Upload.Prefix != "" {
		dst.Upload.Prefix = src.Upload.Prefix
	}
}
