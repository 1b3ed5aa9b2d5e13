// Package config 从 YAML 文件加载配置，并支持环境变量覆盖。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 汇总所有配置项。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig 配置 HTTP 上传服务。
type ServerConfig struct {
	HTTPAddr       string `yaml:"http_addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// ArchiveConfig 配置归档提取。
type ArchiveConfig struct {
	MaxEntryBytes int64 `yaml:"max_entry_bytes"`
}

// AnalysisConfig 是调用方未指定时使用的报告默认值。
type AnalysisConfig struct {
	DefaultFormat string `yaml:"default_format"` // text, markdown, json
	DefaultLimit  int    `yaml:"default_limit"`  // 0 表示不限
}

// StoreConfig 配置标记的持久化，路径为空时只保存在内存中。
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig 配置 zap logger。
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// ValidFormats 列出支持的报告格式。
var ValidFormats = []string{"text", "markdown", "json"}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       ":8080",
			MaxUploadBytes: 512 << 20,
		},
		Archive: ArchiveConfig{
			MaxEntryBytes: 256 << 20,
		},
		Analysis: AnalysisConfig{
			DefaultFormat: "text",
			DefaultLimit:  50,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ig-follower-analyzer", "flags")
}

// Load 从 YAML 文件加载配置，文件不存在时使用默认值。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 将配置写入 YAML 文件。
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides 应用环境变量覆盖。
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("IGA_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("IGA_STORE_PATH"); ok {
		c.Store.Path = v
	}
	if v := os.Getenv("IGA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IGA_MAX_ARCHIVE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid IGA_MAX_ARCHIVE_BYTES %q: %w", v, err)
		}
		c.Server.MaxUploadBytes = n
	}
	return nil
}

// Validate 校验配置。
func (c *Config) Validate() error {
	if !IsValidFormat(c.Analysis.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s (valid: %v)", c.Analysis.DefaultFormat, ValidFormats)
	}
	if c.Analysis.DefaultLimit < 0 {
		return fmt.Errorf("default limit must be >= 0, got %d", c.Analysis.DefaultLimit)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Archive.MaxEntryBytes <= 0 {
		return fmt.Errorf("max entry bytes must be positive, got %d", c.Archive.MaxEntryBytes)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// IsValidFormat 判断 f 是否为支持的报告格式。
func IsValidFormat(f string) bool {
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}
