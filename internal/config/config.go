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
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	OCR        OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	Vision     VisionConfig     `yaml:"vision" mapstructure:"vision"`
	Format     FormatConfig     `yaml:"format" mapstructure:"format"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"`
	FormatModel string `yaml:"format_model" mapstructure:"format_model"`
}

// ExtractionConfig configures the per-page extraction cascade and the
// corruption scorer thresholds. Values are passed into component
// constructors; nothing reads them ambiently.
type ExtractionConfig struct {
	CorruptionThreshold   float64 `yaml:"corruption_threshold" mapstructure:"corruption_threshold"`
	MaxVisionCalls        int     `yaml:"max_vision_calls" mapstructure:"max_vision_calls"`
	DPI                   int     `yaml:"dpi" mapstructure:"dpi"`
	MinAnalyzableLength   int     `yaml:"min_analyzable_length" mapstructure:"min_analyzable_length"`
	MinNativeLength       int     `yaml:"min_native_length" mapstructure:"min_native_length"`
	MinVisionLength       int     `yaml:"min_vision_length" mapstructure:"min_vision_length"`
	MinContentLength      int     `yaml:"min_content_length" mapstructure:"min_content_length"`
	MinSubstantialLines   int     `yaml:"min_substantial_lines" mapstructure:"min_substantial_lines"`
	SubstantialLineLength int     `yaml:"substantial_line_length" mapstructure:"substantial_line_length"`
}

// OCRConfig configures the traditional OCR fallback engine.
type OCRConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Language string `yaml:"language" mapstructure:"language"`
	PSM      int    `yaml:"psm" mapstructure:"psm"`
}

// VisionConfig configures the vision extractor call behavior.
type VisionConfig struct {
	MaxTokens     int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
}

// FormatConfig configures the markdown formatter.
type FormatConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxTokens int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temp      float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ClassifyConfig configures the document-type classifier.
type ClassifyConfig struct {
	CategoriesFile string `yaml:"categories_file" mapstructure:"categories_file"`
}

// StoreConfig configures the local SQLite store. An empty path disables
// persistence (runs and the page cache stay in memory only).
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures where converted markdown is written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentDocuments int `yaml:"max_concurrent_documents" mapstructure:"max_concurrent_documents"`
}

// ServerConfig configures the HTTP conversion server.
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
	v.SetEnvPrefix("DOCMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one, even if empty: AutomaticEnv only
	// overrides keys viper already knows about. The corruption thresholds are
	// empirically tuned against the document corpus; treat them as constants
	// unless retuning deliberately.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("classify.categories_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_documents", 4)
	v.SetDefault("anthropic.vision_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.format_model", "claude-haiku-4-5-20251001")
	v.SetDefault("extraction.corruption_threshold", 0.10)
	v.SetDefault("extraction.max_vision_calls", 100)
	v.SetDefault("extraction.dpi", 300)
	v.SetDefault("extraction.min_analyzable_length", 10)
	v.SetDefault("extraction.min_native_length", 30)
	v.SetDefault("extraction.min_vision_length", 30)
	v.SetDefault("extraction.min_content_length", 100)
	v.SetDefault("extraction.min_substantial_lines", 2)
	v.SetDefault("extraction.substantial_line_length", 20)
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.psm", 3)
	v.SetDefault("vision.max_tokens", 8000)
	v.SetDefault("vision.rate_per_second", 0.5)
	v.SetDefault("vision.burst", 1)
	v.SetDefault("format.enabled", true)
	v.SetDefault("format.max_tokens", 8000)
	v.SetDefault("format.temperature", 0.1)
	v.SetDefault("store.path", "docmark.db")
	v.SetDefault("output.dir", "")

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
