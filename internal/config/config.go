package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode              string        `mapstructure:"mode"`
	GatewayURL        string        `mapstructure:"gateway_url"`
	StatusPort        int           `mapstructure:"status_port"`
	Secret            string        `mapstructure:"secret"`
	UserID            string        `mapstructure:"user_id"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestRetries    int           `mapstructure:"request_retries"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `mapstructure:"heartbeat_timeout"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	ReconnectDelayMax time.Duration `mapstructure:"reconnect_delay_max"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("gateway_url", "ws://localhost:4500/ws")
	v.SetDefault("status_port", 4580)
	v.SetDefault("secret", "dev-secret")
	v.SetDefault("request_timeout", "5s")
	v.SetDefault("request_retries", 10)
	v.SetDefault("heartbeat_interval", "30s")
	v.SetDefault("heartbeat_timeout", "5s")
	v.SetDefault("reconnect_delay", "1s")
	v.SetDefault("reconnect_delay_max", "20s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
