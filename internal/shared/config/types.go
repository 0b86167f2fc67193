package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig configures the remote ledger gateway used for on-chain
// payment submission.
type LedgerConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	APIKey          string `mapstructure:"api_key"`
	SubmitTimeout   int    `mapstructure:"submit_timeout_seconds"`
	ConfirmTimeout  int    `mapstructure:"confirm_timeout_seconds"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	BackoffStepMS   int    `mapstructure:"backoff_step_ms"`
	PollIntervalMS  int    `mapstructure:"poll_interval_ms"`
	AllowedEnv      string `mapstructure:"allowed_env"`
}

type PaymentsConfig struct {
	PendingWindowMinutes int `mapstructure:"pending_window_minutes"`
}

type StoreConfig struct {
	// Driver selects the location state store backend: "memory" or "redis".
	Driver string `mapstructure:"driver"`
}
