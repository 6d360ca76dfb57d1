package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	StaticPath    string        `mapstructure:"static_path"`
	TemplatesPath string        `mapstructure:"templates_path"`
	Secret        string        `mapstructure:"secret"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	Store         string        `mapstructure:"store"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	SMTPHost      string        `mapstructure:"smtp_host"`
	SMTPPort      int           `mapstructure:"smtp_port"`
	SMTPUser      string        `mapstructure:"smtp_user"`
	SMTPPass      string        `mapstructure:"smtp_pass"`
	MailFrom      string        `mapstructure:"mail_from"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
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
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web/static")
	v.SetDefault("templates_path", "./web/templates")
	v.SetDefault("secret", "change-me")
	v.SetDefault("jwt_secret", "change-me-too")
	v.SetDefault("store", "memory")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("mail_from", "Mediochat <no-reply@mediochat.local>")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("store", cfg.Store).Msg("configuration")
	return &cfg, nil
}
