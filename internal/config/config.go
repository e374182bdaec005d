package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider names used as configuration keys.
const (
	TMDB = "tmdb"
	TVDB = "tvdb"
	OMDB = "omdb"
)

// ProviderConfig holds the settings for one metadata provider.
type ProviderConfig struct {
	APIKey            string `mapstructure:"api_key" json:"api_key"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" json:"requests_per_minute"`
	Language          string `mapstructure:"language" json:"language,omitempty"`
}

// Enabled reports whether the provider has credentials.
func (p ProviderConfig) Enabled() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

// Providers groups the per-provider settings.
type Providers struct {
	TMDB ProviderConfig `mapstructure:"tmdb" json:"tmdb"`
	TVDB ProviderConfig `mapstructure:"tvdb" json:"tvdb"`
	OMDB ProviderConfig `mapstructure:"omdb" json:"omdb"`
}

// JournalConfig controls the operation journal used by undo.
type JournalConfig struct {
	Enabled       bool `mapstructure:"enabled" json:"enabled"`
	RetentionDays int  `mapstructure:"retention_days" json:"retention_days"`
}

// Config is the effective configuration for one run. It is built once by
// Load and passed by value; nothing mutates it afterwards.
type Config struct {
	MoviePattern  string        `mapstructure:"movie_pattern"`
	TVPattern     string        `mapstructure:"tv_pattern"`
	DryRun        bool          `mapstructure:"dry_run"`
	Verbose       bool          `mapstructure:"verbose"`
	Extensions    []string      `mapstructure:"extensions"`
	Providers     Providers     `mapstructure:"providers"`
	Workers       int           `mapstructure:"workers"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	LocalFallback bool          `mapstructure:"local_fallback"`
	Probe         bool          `mapstructure:"probe"`
	Journal       JournalConfig `mapstructure:"journal"`
	LogLevel      string        `mapstructure:"log_level"`
}

// DefaultExtensions are the media file extensions processed by default.
var DefaultExtensions = []string{".mkv", ".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MoviePattern: "{title} ({year})",
		TVPattern:    "{title} - S{season:02d}E{episode:02d} - {episode_title}",
		Extensions:   append([]string(nil), DefaultExtensions...),
		Providers: Providers{
			TMDB: ProviderConfig{RequestsPerMinute: 40, Language: "en-US"},
			TVDB: ProviderConfig{RequestsPerMinute: 60},
			OMDB: ProviderConfig{RequestsPerMinute: 20},
		},
		Workers:       4,
		LookupTimeout: 10 * time.Second,
		MaxRetries:    3,
		Probe:         true,
		Journal:       JournalConfig{Enabled: true, RetentionDays: 30},
		LogLevel:      "info",
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".media-renamer", "config.json"), nil
}

// LoadOptions tells Load where to look beyond the defaults.
type LoadOptions struct {
	// ConfigFile overrides ConfigPath. An explicit file must exist.
	ConfigFile string
	// Flags, when set, are bound over every other source. Only flags the
	// user actually set take effect.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"dry-run":        "dry_run",
	"verbose":        "verbose",
	"movie-pattern":  "movie_pattern",
	"tv-pattern":     "tv_pattern",
	"extensions":     "extensions",
	"tmdb-key":       "providers.tmdb.api_key",
	"tvdb-key":       "providers.tvdb.api_key",
	"omdb-key":       "providers.omdb.api_key",
	"workers":        "workers",
	"timeout":        "lookup_timeout",
	"max-retries":    "max_retries",
	"local-fallback": "local_fallback",
	"log-level":      "log_level",
}

// envAliases lists the short environment names accepted besides the
// MEDIA_RENAMER_ prefixed ones.
var envAliases = map[string]string{
	"providers.tmdb.api_key": "TMDB_API_KEY",
	"providers.tvdb.api_key": "TVDB_API_KEY",
	"providers.omdb.api_key": "OMDB_API_KEY",
	"dry_run":                "DRY_RUN",
	"verbose":                "VERBOSE",
}

// Load builds the configuration from defaults, the JSON config file,
// environment variables and flags, in increasing precedence.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	path := opts.ConfigFile
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("media_renamer")
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := "MEDIA_RENAMER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", alias, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		// --no-probe is the inverse of the probe setting.
		if f := opts.Flags.Lookup("no-probe"); f != nil && f.Changed {
			v.Set("probe", f.Value.String() != "true")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Extensions = normalizeExtensions(cfg.Extensions)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("movie_pattern", d.MoviePattern)
	v.SetDefault("tv_pattern", d.TVPattern)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("lookup_timeout", d.LookupTimeout)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("local_fallback", d.LocalFallback)
	v.SetDefault("probe", d.Probe)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.retention_days", d.Journal.RetentionDays)
	for name, p := range map[string]ProviderConfig{TMDB: d.Providers.TMDB, TVDB: d.Providers.TVDB, OMDB: d.Providers.OMDB} {
		v.SetDefault("providers."+name+".api_key", p.APIKey)
		v.SetDefault("providers."+name+".requests_per_minute", p.RequestsPerMinute)
		v.SetDefault("providers."+name+".language", p.Language)
	}
}

// normalizeExtensions lower-cases extensions, adds the leading dot and
// drops blanks and duplicates.
func normalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		for _, part := range strings.Split(e, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if !strings.HasPrefix(part, ".") {
				part = "." + part
			}
			if !seen[part] {
				seen[part] = true
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	if _, err := ParseTemplate(c.MoviePattern); err != nil {
		return fmt.Errorf("invalid movie pattern: %w", err)
	}
	if _, err := ParseTemplate(c.TVPattern); err != nil {
		return fmt.Errorf("invalid tv pattern: %w", err)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one media extension is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup timeout must be positive, got %s", c.LookupTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	for name, p := range c.ProviderMap() {
		if p.RequestsPerMinute < 0 {
			return fmt.Errorf("%s requests per minute must not be negative, got %d", name, p.RequestsPerMinute)
		}
	}
	if c.Journal.RetentionDays < 0 {
		return fmt.Errorf("journal retention days must not be negative, got %d", c.Journal.RetentionDays)
	}
	return nil
}

// ProviderMap returns the provider settings keyed by provider name.
func (c Config) ProviderMap() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		TMDB: c.Providers.TMDB,
		TVDB: c.Providers.TVDB,
		OMDB: c.Providers.OMDB,
	}
}

// IsMediaFile reports whether name has one of the configured extensions.
func (c Config) IsMediaFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// fileConfig is the on-disk JSON layout.
type fileConfig struct {
	MoviePattern  string        `json:"movie_pattern"`
	TVPattern     string        `json:"tv_pattern"`
	DryRun        bool          `json:"dry_run"`
	Verbose       bool          `json:"verbose"`
	Extensions    []string      `json:"extensions"`
	Providers     Providers     `json:"providers"`
	Workers       int           `json:"workers"`
	LookupTimeout string        `json:"lookup_timeout"`
	MaxRetries    int           `json:"max_retries"`
	LocalFallback bool          `json:"local_fallback"`
	Probe         bool          `json:"probe"`
	Journal       JournalConfig `json:"journal"`
	LogLevel      string        `json:"log_level"`
}

func (c Config) toFile() fileConfig {
	return fileConfig{
		MoviePattern:  c.MoviePattern,
		TVPattern:     c.TVPattern,
		DryRun:        c.DryRun,
		Verbose:       c.Verbose,
		Extensions:    c.Extensions,
		Providers:     c.Providers,
		Workers:       c.Workers,
		LookupTimeout: c.LookupTimeout.String(),
		MaxRetries:    c.MaxRetries,
		LocalFallback: c.LocalFallback,
		Probe:         c.Probe,
		Journal:       c.Journal,
		LogLevel:      c.LogLevel,
	}
}

// Save writes the configuration to path as JSON. It refuses to replace
// an existing file unless overwrite is set.
func (c Config) Save(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c.toFile(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Masked returns the configuration as indented JSON with API keys hidden.
func (c Config) Masked() (string, error) {
	f := c.toFile()
	f.Providers.TMDB.APIKey = maskKey(f.Providers.TMDB.APIKey)
	f.Providers.TVDB.APIKey = maskKey(f.Providers.TVDB.APIKey)
	f.Providers.OMDB.APIKey = maskKey(f.Providers.OMDB.APIKey)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

func maskKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 4:
		return "****"
	default:
		return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
	}
}
