package main

import (
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the defaults the commands fall back to when flags are not
// given.
type Config struct {
	OutputFormat string `toml:"output_format"`
	Definitions  string `toml:"definitions"`
	Workers      int    `toml:"workers"`
}

func defaultConfig() *Config {
	return &Config{
		OutputFormat: "json",
		Workers:      runtime.NumCPU(),
	}
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, err
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "json"
	}
	return config, nil
}
