package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrInvalidPort = errors.New("port must be between 1 and 65535")

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	JoinLimit    int           `mapstructure:"join_limit"`
	JoinInterval time.Duration `mapstructure:"join_interval"`
	Secret       string        `mapstructure:"secret"`
	ICEServers   []ICEServer   `mapstructure:"ice_servers"`
	OTLPEndpoint string        `mapstructure:"otlp_endpoint"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"mode":          "mode",
	"port":          "port",
	"ping-period":   "ping_period",
	"otlp-endpoint": "otlp_endpoint",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("mode", "release", "gin mode: debug or release")
	fs.IntP("port", "p", 8080, "listen port")
	fs.Duration("ping-period", 30*time.Second, "liveness probe interval")
	fs.String("otlp-endpoint", "", "OTLP/gRPC metrics endpoint, empty disables export")
}

// Load reads defaults, config/config.<CONFIG_ENV>.yaml, RELAY_* env, PORT
// and finally any flag set explicitly in fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "30s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("join_limit", 10)
	v.SetDefault("join_interval", "1m")
	v.SetDefault("secret", "relay-dev-secret")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("otlp_endpoint", "")

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "PORT", "RELAY_PORT"); err != nil {
		return nil, fmt.Errorf("bind PORT: %w", err)
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}

	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Dur("ping_period", cfg.PingPeriod).Msg("config ready")
	return &cfg, nil
}
