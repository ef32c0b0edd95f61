// Package config loads the optional gn.yml project file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the gn project configuration.
type Config struct {
	// BuildDir is the default build directory, relative to the source
	// root unless absolute.
	BuildDir string       `mapstructure:"build_dir"`
	Export   ExportConfig `mapstructure:"export"`
}

// ExportConfig configures metadata export.
type ExportConfig struct {
	// RustProject is the descriptor file name, relative to the build
	// directory.
	RustProject string `mapstructure:"rust_project"`
	// SysrootDeps optionally points at a TOML file overriding the
	// built-in sysroot crate table.
	SysrootDeps string `mapstructure:"sysroot_deps"`
}

// Load loads the configuration from gn.yml or gn.yaml in the current
// directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("build_dir", "out")
	v.SetDefault("export.rust_project", "rust-project.json")
	v.SetDefault("export.sysroot_deps", "")

	v.SetConfigName("gn")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
