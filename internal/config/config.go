// Package config provides configuration management for Kuvia using Viper
// for loading from files, environment variables, and command-line flags.
//
// Settings are read from a YAML file (.kuvia.yml by default), overridden by
// KUVIA_ prefixed environment variables, and finally by flags bound to the
// same keys. The configuration covers image scanning, the image list source,
// page customization, the preview server, and logging.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// KUVIA_SERVER_PORT.
const EnvPrefix = "KUVIA"

// DefaultConfigFile is looked up in the working directory when no
// configuration file is given.
const DefaultConfigFile = ".kuvia.yml"

// Keys of every setting.
const (
	KeyOutput          = "output"
	KeyScanDirs        = "scan.dirs"
	KeyScanRecursive   = "scan.recursive"
	KeyScanTypes       = "scan.types"
	KeyScanPatterns    = "scan.patterns"
	KeyScanPrefix      = "scan.prefix"
	KeySourceJSON      = "source.json"
	KeyPageTitle       = "page.title"
	KeyPageTemplate    = "page.template"
	KeyPageScripts     = "page.scripts"
	KeyPageStylesheets = "page.stylesheets"
	KeyPageNoMinify    = "page.no_minify"
	KeyServerHost      = "server.host"
	KeyServerPort      = "server.port"
	KeyServerRoot      = "server.root"
	KeyServerWatch     = "server.watch"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

type Config struct {
	Output string       `mapstructure:"output" yaml:"output"`
	Scan   ScanConfig   `mapstructure:"scan" yaml:"scan"`
	Source SourceConfig `mapstructure:"source" yaml:"source"`
	Page   PageConfig   `mapstructure:"page" yaml:"page"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Files  []string     `mapstructure:"-" yaml:"-"` // CLI arguments, not from config file
}

type ScanConfig struct {
	Dirs      []string `mapstructure:"dirs" yaml:"dirs"`
	Recursive bool     `mapstructure:"recursive" yaml:"recursive"`
	Types     []string `mapstructure:"types" yaml:"types"`
	Patterns  []string `mapstructure:"patterns" yaml:"patterns"`
	Prefix    string   `mapstructure:"prefix" yaml:"prefix"`
}

type SourceConfig struct {
	// JSON is the URL of a remote JSON image list. It replaces scanning.
	JSON string `mapstructure:"json" yaml:"json"`
}

type PageConfig struct {
	Title       string   `mapstructure:"title" yaml:"title"`
	Template    string   `mapstructure:"template" yaml:"template"`
	Scripts     []string `mapstructure:"scripts" yaml:"scripts"`
	Stylesheets []string `mapstructure:"stylesheets" yaml:"stylesheets"`
	NoMinify    bool     `mapstructure:"no_minify" yaml:"no_minify"`
}

type ServerConfig struct {
	Host  string `mapstructure:"host" yaml:"host"`
	Port  int    `mapstructure:"port" yaml:"port"`
	Root  string `mapstructure:"root" yaml:"root"`
	Watch bool   `mapstructure:"watch" yaml:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// HasScanInputs reports whether any directory or pattern is configured.
func (c *Config) HasScanInputs() bool {
	return len(c.Scan.Dirs) > 0 || len(c.Scan.Patterns) > 0
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault(KeyScanTypes, []string{"jpg", "jpeg", "png", "gif", "webp"})
	viper.SetDefault(KeyPageTitle, "Kuvia")
	viper.SetDefault(KeyServerHost, "localhost")
	viper.SetDefault(KeyServerPort, 8080)
	viper.SetDefault(KeyServerRoot, ".")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "text")
}

// Load reads the effective configuration from the global viper instance and
// validates it. Warnings do not fail loading; use Validate to inspect them.
func Load() (*Config, error) {
	config, err := Decode()
	if err != nil {
		return nil, err
	}
	if result := Validate(config); result.HasErrors() {
		return nil, result.Err()
	}
	return config, nil
}

// Decode reads the effective configuration and fills in defaults without
// validating it.
func Decode() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// List settings may arrive as comma separated strings from the
	// environment or from flags such as --types jpg,png. Patterns are kept
	// whole since braces like *.{jpg,png} contain commas.
	config.Scan.Dirs = splitList(viper.GetStringSlice(KeyScanDirs))
	config.Scan.Types = splitList(viper.GetStringSlice(KeyScanTypes))
	config.Scan.Patterns = nonEmpty(viper.GetStringSlice(KeyScanPatterns))
	config.Page.Scripts = splitList(viper.GetStringSlice(KeyPageScripts))
	config.Page.Stylesheets = splitList(viper.GetStringSlice(KeyPageStylesheets))

	// Apply default values if not set
	if len(config.Scan.Types) == 0 {
		config.Scan.Types = []string{"jpg", "jpeg", "png", "gif", "webp"}
	}
	if config.Page.Title == "" {
		config.Page.Title = "Kuvia"
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if !viper.IsSet(KeyServerPort) {
		config.Server.Port = 8080
	}
	if config.Server.Root == "" {
		config.Server.Root = "."
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	return &config, nil
}

// splitList flattens comma separated entries and drops empty ones.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
