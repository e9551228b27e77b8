// Package config loads settings for the refgraph command-line tools.
//
// Values are layered, later layers winning:
//   - built-in defaults
//   - a YAML file given with --config
//   - REFGRAPH_* environment variables (REFGRAPH_CODEC_STRICT, ...)
//   - command-line flags
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Neumenon/refgraph/refgraph"
	"github.com/Neumenon/refgraph/stream"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REFGRAPH"

// Config holds the settings shared by the refgraph commands.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Codec  CodecConfig  `mapstructure:"codec"`
	Stream StreamConfig `mapstructure:"stream"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// CodecConfig configures the graph codec.
type CodecConfig struct {
	Trace    bool   `mapstructure:"trace"`
	Strict   bool   `mapstructure:"strict"`
	MaxDepth int    `mapstructure:"max_depth"`
	TagName  string `mapstructure:"tag_name"`
}

// StreamConfig configures snapshot framing.
type StreamConfig struct {
	CRC      bool `mapstructure:"crc"`
	Sum      bool `mapstructure:"sum"`
	Compress bool `mapstructure:"compress"`
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"trace":     "codec.trace",
	"strict":    "codec.strict",
	"max-depth": "codec.max_depth",
	"crc":       "stream.crc",
	"sum":       "stream.sum",
	"compress":  "stream.compress",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("trace", false, "log every field and span the codec visits")
	fs.Bool("strict", false, "fail when a decoded field cannot be written")
	fs.Int("max-depth", refgraph.DefaultMaxDepth, "maximum record nesting depth")
	fs.Bool("crc", true, "add CRC-32 to written frames")
	fs.Bool("sum", true, "add BLAKE3 content sums to written frames")
	fs.Bool("compress", false, "zstd-compress written frames")
}

// Load builds a Config from defaults, the optional config file, the
// environment and the flags in fs, which must have been parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("codec.trace", false)
	v.SetDefault("codec.strict", false)
	v.SetDefault("codec.max_depth", refgraph.DefaultMaxDepth)
	v.SetDefault("codec.tag_name", refgraph.DefaultTagName)
	v.SetDefault("stream.crc", true)
	v.SetDefault("stream.sum", true)
	v.SetDefault("stream.compress", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if path, err := fs.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the tools cannot use.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Codec.MaxDepth <= 0 {
		return fmt.Errorf("codec.max_depth must be positive, got %d", c.Codec.MaxDepth)
	}
	if c.Codec.TagName == "" {
		return fmt.Errorf("codec.tag_name must not be empty")
	}
	return nil
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// CodecOptions translates the codec settings into refgraph options.
// logger receives traces when tracing is on.
func (c *Config) CodecOptions(logger *slog.Logger) []refgraph.Option {
	opts := []refgraph.Option{
		refgraph.WithMaxDepth(c.Codec.MaxDepth),
		refgraph.WithTagName(c.Codec.TagName),
	}
	if c.Codec.Strict {
		opts = append(opts, refgraph.WithStrictAccess())
	}
	if c.Codec.Trace {
		opts = append(opts, refgraph.WithLogger(logger))
	}
	return opts
}

// WriterOptions translates the stream settings into writer options.
func (c *Config) WriterOptions() []stream.WriterOption {
	var opts []stream.WriterOption
	if c.Stream.CRC {
		opts = append(opts, stream.WithCRC())
	}
	if c.Stream.Sum {
		opts = append(opts, stream.WithSum())
	}
	if c.Stream.Compress {
		opts = append(opts, stream.WithCompression())
	}
	return opts
}
