// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Layered configuration for the message pool: defaults, optional YAML file,
// MESHBUF_ environment variables and command-line flags, in rising precedence.

package control

import (
	"fmt"
	"strings"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/message"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MESHBUF_POOL_NUM_BUFFERS.
const EnvPrefix = "MESHBUF"

// PoolConfig is the file representation of message.Config.
type PoolConfig struct {
	NumBuffers      int    `mapstructure:"num_buffers"`
	BufferSize      int    `mapstructure:"buffer_size"`
	BufferOverhead  int    `mapstructure:"buffer_overhead"`
	HeadOverhead    int    `mapstructure:"head_overhead"`
	ChildMaskBits   int    `mapstructure:"child_mask_bits"`
	DefaultPriority string `mapstructure:"default_priority"`
	LinkSecurity    bool   `mapstructure:"link_security"`
}

// Config is the full process configuration.
type Config struct {
	Pool        PoolConfig `mapstructure:"pool"`
	MetricsAddr string     `mapstructure:"metrics_addr"`
}

// flag name -> viper key
var flagKeys = map[string]string{
	"num-buffers":      "pool.num_buffers",
	"buffer-size":      "pool.buffer_size",
	"default-priority": "pool.default_priority",
	"link-security":    "pool.link_security",
	"metrics-addr":     "metrics_addr",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := message.DefaultConfig()
	fs.Int("num-buffers", d.NumBuffers, "number of buffers in the pool")
	fs.Int("buffer-size", d.BufferSize, "bytes per buffer including bookkeeping")
	fs.String("default-priority", d.DefaultPriority.String(), "priority for messages created without one (low, normal, high, net)")
	fs.Bool("link-security", d.DefaultLinkSecurity, "enable link security on new messages")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
}

func setDefaults(v *viper.Viper) {
	d := message.DefaultConfig()
	v.SetDefault("pool.num_buffers", d.NumBuffers)
	v.SetDefault("pool.buffer_size", d.BufferSize)
	v.SetDefault("pool.buffer_overhead", d.BufferOverhead)
	v.SetDefault("pool.head_overhead", d.HeadOverhead)
	v.SetDefault("pool.child_mask_bits", d.ChildMaskBits)
	v.SetDefault("pool.default_priority", d.DefaultPriority.String())
	v.SetDefault("pool.link_security", d.DefaultLinkSecurity)
	v.SetDefault("metrics_addr", "")
}

// LoadConfig resolves the configuration. path may be empty; flags may be nil.
// The result is validated before it is returned.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.MessageConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MessageConfig converts and validates the pool section.
func (c *Config) MessageConfig() (message.Config, error) {
	prio, err := api.ParsePriority(c.Pool.DefaultPriority)
	if err != nil {
		return message.Config{}, err
	}
	mc := message.Config{
		NumBuffers:          c.Pool.NumBuffers,
		BufferSize:          c.Pool.BufferSize,
		BufferOverhead:      c.Pool.BufferOverhead,
		HeadOverhead:        c.Pool.HeadOverhead,
		ChildMaskBits:       c.Pool.ChildMaskBits,
		DefaultPriority:     prio,
		DefaultLinkSecurity: c.Pool.LinkSecurity,
	}
	if err := mc.Validate(); err != nil {
		return message.Config{}, err
	}
	return mc, nil
}
