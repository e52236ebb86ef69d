// Package config loads skillhub settings from flags, SKILLHUB_* environment
// variables, an optional .env file and config.yaml, in that order of
// precedence.
package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillhub/pkg/installer"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
	"github.com/jingkaihe/skillhub/pkg/telemetry"
)

// EnvPrefix is the prefix of environment variables read by skillhub
const EnvPrefix = "SKILLHUB"

// CompanionConfig controls the companion skills CLI
type CompanionConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Command string `mapstructure:"command" json:"command" yaml:"command"`
	Package string `mapstructure:"package" json:"package" yaml:"package"`
}

// TracingConfig controls OpenTelemetry tracing
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Sampler string  `mapstructure:"sampler" json:"sampler" yaml:"sampler"`
	Ratio   float64 `mapstructure:"ratio" json:"ratio" yaml:"ratio"`
}

// Config is the full skillhub configuration
type Config struct {
	LogLevel    string          `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFormat   string          `mapstructure:"log_format" json:"log_format" yaml:"log_format"`
	RepoBaseURL string          `mapstructure:"repo_base_url" json:"repo_base_url" yaml:"repo_base_url"`
	GitBinary   string          `mapstructure:"git_binary" json:"git_binary" yaml:"git_binary"`
	Companion   CompanionConfig `mapstructure:"companion" json:"companion" yaml:"companion"`
	ToolTimeout time.Duration   `mapstructure:"tool_timeout" json:"tool_timeout" yaml:"tool_timeout"`
	LockTimeout time.Duration   `mapstructure:"lock_timeout" json:"lock_timeout" yaml:"lock_timeout"`
	TempDir     string          `mapstructure:"temp_dir" json:"temp_dir" yaml:"temp_dir"`
	Tracing     TracingConfig   `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("repo_base_url", installer.DefaultRepoBaseURL)
	v.SetDefault("git_binary", "git")
	v.SetDefault("companion.enabled", true)
	v.SetDefault("companion.command", "npx")
	v.SetDefault("companion.package", "skills")
	v.SetDefault("tool_timeout", "10m")
	v.SetDefault("lock_timeout", "30s")
	v.SetDefault("temp_dir", os.TempDir())
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampler", "always")
	v.SetDefault("tracing.ratio", 1.0)
}

// Setup points v at the SKILLHUB_* environment and the config.yaml search
// path, then reads the config file if one exists.
func Setup(v *viper.Viper, searchPaths ...string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return skillerr.Configuration("failed to read config file", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return skillerr.Configuration("failed to load "+f, err)
		}
	}
	return nil
}

// Load unmarshals v into a Config and validates it
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, skillerr.Configuration("failed to unmarshal configuration", err)
	}
	if cfg.ToolTimeout < 0 {
		return cfg, skillerr.Configuration("tool_timeout must not be negative", nil)
	}
	if cfg.LockTimeout < 0 {
		return cfg, skillerr.Configuration("lock_timeout must not be negative", nil)
	}
	if cfg.Tracing.Ratio < 0 || cfg.Tracing.Ratio > 1 {
		return cfg, skillerr.Configuration("tracing.ratio must be between 0 and 1", nil)
	}
	if _, err := telemetry.NewSampler(cfg.Tracing.Sampler, cfg.Tracing.Ratio); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// InstallerOptions translates the configuration into installer options
func (c Config) InstallerOptions() []installer.Option {
	return []installer.Option{
		installer.WithGitBinary(c.GitBinary),
		installer.WithRepoBaseURL(c.RepoBaseURL),
		installer.WithCompanion(installer.CompanionConfig{
			Enabled: c.Companion.Enabled,
			Command: c.Companion.Command,
			Package: c.Companion.Package,
		}),
		installer.WithToolTimeout(c.ToolTimeout),
		installer.WithLockTimeout(c.LockTimeout),
		installer.WithTempDir(c.TempDir),
	}
}
