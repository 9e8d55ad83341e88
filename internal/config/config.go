package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/teemow/gcalevents/internal/google"
)

// Environment variables overriding file settings.
const (
	EnvCalendarID    = "GOOGLE_CALENDAR_ID"
	EnvCredentials   = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvTokenFile     = "GOOGLE_TOKEN_FILE"
	EnvClientID      = "GOOGLE_CLIENT_ID"
	EnvClientSecret  = "GOOGLE_CLIENT_SECRET"
	EnvLogLevel      = "LOG_LEVEL"
	LocalFileName    = ".gcalevents.toml"
	defaultLogLevel  = "info"
	configDirName    = "gcalevents"
	userFileName     = "config.toml"
	defaultTokenFile = "token.json"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Config holds the settings shared by the CLI and the MCP server.
type Config struct {
	CalendarID                    string `toml:"calendar_id"`
	ServiceAccountCredentialsJSON string `toml:"service_account_credentials_json"`
	TokenFile                     string `toml:"token_file"`
	ClientID                      string `toml:"client_id"`
	ClientSecret                  string `toml:"client_secret"`
	LogLevel                      string `toml:"log_level"`

	// Path is the file the settings were read from, empty when none was found.
	Path string `toml:"-"`
	// Unknown lists keys in the file that no setting matched.
	Unknown []string `toml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TokenFile: DefaultTokenFile(),
		LogLevel:  defaultLogLevel,
	}
}

// Dir returns $HOME/.config/gcalevents, or "" when the home directory is
// unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", configDirName)
}

// DefaultTokenFile returns the token path used when none is configured.
func DefaultTokenFile() string {
	dir := Dir()
	if dir == "" {
		return defaultTokenFile
	}
	return filepath.Join(dir, defaultTokenFile)
}

// LoadDotEnv reads KEY=value pairs from the given files, or ./.env when none
// are named, into the process environment. Variables already set win.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load resolves the settings. explicitPath must exist when set; the default
// locations are optional.
func Load(explicitPath string) (*Config, error) {
	cfg := Default()

	path, err := findFile(explicitPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Path = path
		for _, key := range meta.Undecoded() {
			cfg.Unknown = append(cfg.Unknown, key.String())
		}
	}

	cfg.applyEnv()
	cfg.TokenFile = expandHome(cfg.TokenFile)
	cfg.ServiceAccountCredentialsJSON = expandHome(cfg.ServiceAccountCredentialsJSON)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", c.LogLevel)
	}
	return nil
}

// Credentials returns the Google credentials described by the settings.
func (c *Config) Credentials() google.Credentials {
	return google.Credentials{
		ServiceAccountFile: c.ServiceAccountCredentialsJSON,
		TokenFile:          c.TokenFile,
		ClientID:           c.ClientID,
		ClientSecret:       c.ClientSecret,
	}
}

func (c *Config) applyEnv() {
	c.CalendarID = getEnvOrDefault(EnvCalendarID, c.CalendarID)
	c.ServiceAccountCredentialsJSON = getEnvOrDefault(EnvCredentials, c.ServiceAccountCredentialsJSON)
	c.TokenFile = getEnvOrDefault(EnvTokenFile, c.TokenFile)
	c.ClientID = getEnvOrDefault(EnvClientID, c.ClientID)
	c.ClientSecret = getEnvOrDefault(EnvClientSecret, c.ClientSecret)
	c.LogLevel = getEnvOrDefault(EnvLogLevel, c.LogLevel)
}

func findFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	candidates := []string{LocalFileName}
	if dir := Dir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, userFileName))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
