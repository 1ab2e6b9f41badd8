package main

import (
	"fmt"
	"strings"
	"time"

	"SJ_storefront_backend/internal/rates"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Auth     AuthConfig             `yaml:"auth"`
	Referral ReferralConfig         `yaml:"referral"`
	Notifier service.NotifierConfig `yaml:"notifier"`
	Feed     rates.FeedConfig       `yaml:"ratesFeed"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type ReferralConfig struct {
	AttributionShape string `yaml:"attributionShape"`
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret is required")
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	return &cfg, nil
}
