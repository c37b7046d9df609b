// Package config holds the settings of the settle tool: where data lives,
// which storage backend holds it, logging, and the engine tolerance.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tierledger/settle/commission"
)

// Storage backends.
const (
	BackendBolt      = "bolt"
	BackendFirestore = "firestore"
	BackendFile      = "file"
)

// EnvPrefix prefixes environment variables that override file settings,
// e.g. SETTLE_LOGLEVEL or SETTLE_FIRESTORE_PROJECT.
const EnvPrefix = "SETTLE"

// Config is the tool configuration.
type Config struct {
	DataDir          string  `mapstructure:"datadir" yaml:"datadir"`
	Backend          string  `mapstructure:"backend" yaml:"backend"`
	FirestoreProject string  `mapstructure:"firestore-project" yaml:"firestore-project,omitempty"`
	LogLevel         string  `mapstructure:"loglevel" yaml:"loglevel"`
	LogFile          string  `mapstructure:"logfile" yaml:"logfile,omitempty"`
	Tolerance        float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

// DefaultDataDir returns ~/.settle, or .settle when the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".settle"
	}
	return filepath.Join(home, ".settle")
}

// ConfigPath returns the configuration file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DataDir:   DefaultDataDir(),
		Backend:   BackendBolt,
		LogLevel:  "info",
		Tolerance: commission.DefaultTolerance,
	}
}

// NewViper returns a viper instance preloaded with the defaults and bound
// to SETTLE_* environment variables. Callers may bind flags to it before
// reading a file.
func NewViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("datadir", def.DataDir)
	v.SetDefault("backend", def.Backend)
	v.SetDefault("firestore-project", def.FirestoreProject)
	v.SetDefault("loglevel", def.LogLevel)
	v.SetDefault("logfile", def.LogFile)
	v.SetDefault("tolerance", def.Tolerance)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the configuration file at path into v. Files without an
// extension are read as YAML.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// FromViper decodes the settings held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadConfig reads the file at path on top of the defaults. Environment
// variables override file values.
func LoadConfig(path string) (Config, error) {
	v := NewViper()
	if err := ReadFile(v, path); err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	header := []byte("# settle configuration\n")
	return os.WriteFile(path, append(header, data...), 0600)
}
