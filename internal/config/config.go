package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Stripe   *StripeConfig   `mapstructure:"stripe"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	BaseURL            string `mapstructure:"base_url"`
	Port               string `mapstructure:"port"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
	SessionCookieName  string `mapstructure:"session_cookie_name"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
}

type StripeConfig struct {
	SecretKey          string `mapstructure:"secret_key"`
	WebhookSecret      string `mapstructure:"webhook_secret"`
	MembershipFeeCents int64  `mapstructure:"membership_fee_cents"`
	Currency           string `mapstructure:"currency"`
}

func Load(path string) (*AppConfig, error) {
	viper.SetConfigFile(path)

	viper.SetEnvPrefix("PORTAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	// Heroku style deployments inject the port to bind to.
	if port := os.Getenv("PORT"); port != "" {
		conf.API.Port = port
	}
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		conf.Stripe.SecretKey = key
	}
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		conf.Stripe.WebhookSecret = secret
	}
	if key := os.Getenv("JWT_SIGNING_KEY"); key != "" {
		conf.API.JWTSigningKey = key
	}

	return conf, nil
}
