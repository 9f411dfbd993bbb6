package app

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/dnmerge/pkg/errors"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "DNMERGE"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Input configuration
	SchemaFile   string
	Sheet        string
	Comma        string
	LazyQuotes   bool
	Provenance   bool
	Placeholders []string

	// Logging configuration. LogLevel is set by --log-level only;
	// EnvLogLevel comes from LOG_LEVEL and ranks below -v and -q.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (DNMERGE_*)
//  3. .env files
//  4. Config file (path, or .dnmerge.yaml in $HOME or the working directory)
//  5. Defaults
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("format", "")
	v.SetDefault("comma", ",")
	v.SetDefault("provenance", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+path, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".dnmerge")
		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		SchemaFile:   v.GetString("schema_file"),
		Sheet:        v.GetString("sheet"),
		Comma:        v.GetString("comma"),
		LazyQuotes:   v.GetBool("lazy_quotes"),
		Provenance:   v.GetBool("provenance"),
		Placeholders: v.GetStringSlice("placeholders"),

		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be checked by the loaders themselves.
func (c *Config) Validate() error {
	if c.Comma != "" && utf8.RuneCountInString(c.Comma) != 1 {
		return errors.NewValidationError("comma", c.Comma, "must be a single character")
	}
	return nil
}

// CommaRune returns the configured CSV delimiter, or zero when unset.
func (c *Config) CommaRune() rune {
	if c.Comma == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.Comma)
	return r
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files. godotenv never
// overrides a variable that is already set, so .env.local is loaded first
// to take precedence over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
