package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

// BufferPoolConfig is the YAML-loadable configuration for the demo
// binary: pool sizing, the on-disk page size, where data files live,
// and logging verbosity.
type BufferPoolConfig struct {
	Pool struct {
		NumBufs  int `mapstructure:"num_bufs"`
		PageSize int `mapstructure:"page_size"`
	} `mapstructure:"pool"`
	Storage struct {
		WorkDir string `mapstructure:"workdir"`
	} `mapstructure:"storage"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig reads a YAML config file at path via viper and
// unmarshals it into a BufferPoolConfig.
func LoadConfig(path string) (*BufferPoolConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("pool.num_bufs", 100)
	v.SetDefault("pool.page_size", 4096)
	v.SetDefault("storage.workdir", ".")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg BufferPoolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
