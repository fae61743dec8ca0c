// Package config loads application configuration from file and environment
// and bootstraps the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Labels     LabelsConfig     `yaml:"labels" mapstructure:"labels"`
	Decision   DecisionConfig   `yaml:"decision" mapstructure:"decision"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the result store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`                 // sqlite database file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres conn string
}

// LabelsConfig configures the external defect label vocabulary. The
// classifier's internal labels map onto these by normalized name.
type LabelsConfig struct {
	External []string `yaml:"external" mapstructure:"external"`
}

// DecisionConfig configures the decision engine.
type DecisionConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ClassifierConfig configures the ONNX classifier session.
type ClassifierConfig struct {
	ModelPath   string `yaml:"model_path" mapstructure:"model_path"`
	LibraryPath string `yaml:"library_path" mapstructure:"library_path"` // onnxruntime shared library
}

// ScanConfig configures batch folder ingestion.
type ScanConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
}

// ServerConfig configures the read-only query server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VISIONQC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "image_log.db")
	v.SetDefault("labels.external", []string{
		"no_defect", "dent", "scratch", "crack", "glass_shatter", "lamp_broken", "tire_flat",
	})
	v.SetDefault("decision.threshold", 0.25)
	v.SetDefault("classifier.model_path", "models/visionqc_multitask.onnx")
	v.SetDefault("scan.extensions", []string{".png", ".jpg", ".jpeg", ".webp"})
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
