// Package config loads es6link's run configuration the way the teacher's
// domain siblings do: a viper-backed layered config (an optional
// es6link.yaml/.json in the working directory) with CLI flags taking
// precedence over file values.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config is the resolved configuration for one CLI invocation.
type Config struct {
	// Root is the directory Run walks for *.mod.json module fixtures.
	Root string `mapstructure:"root"`

	// Output is where `link` writes its concatenated result; empty means stdout.
	Output string `mapstructure:"output"`
}

// Load reads es6link.yaml (or the file named by cfgFile) and overlays any
// non-empty flag overrides on top of it. A missing config file is not an
// error - every field has a usable default.
func Load(cfgFile, rootFlag, outputFlag string) (*Config, error) {
	v := viper.New()
	v.SetDefault("root", ".")
	v.SetDefault("output", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("es6link")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if rootFlag != "" {
		v.Set("root", rootFlag)
	}
	if outputFlag != "" {
		v.Set("output", outputFlag)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
