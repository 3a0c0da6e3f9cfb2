package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Turso     TursoConfig
	Paystack  PaystackConfig
	Auth      AuthConfig
	Slack     SlackConfig
	Inngest   InngestConfig
	ProjectID string
	RedisURL  string
	// CORSAllowedOrigins is the list of origins allowed to call the API from a browser.
	CORSAllowedOrigins []string
	Processor          ProcessorConfig
	// MinWithdrawal is the smallest withdrawal amount accepted, in kobo.
	MinWithdrawal int64
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}
type AuthConfig struct {
	JWTSecret string
}
type SlackConfig struct {
	Token     string
	ChannelID string
	// SigningSecret verifies operator slash commands. Commands are disabled when empty.
	SigningSecret string
}
type InngestConfig struct {
	AppID      string
	SigningKey string
	EventKey   string
}

// Enabled reports whether Inngest durable workflows are configured.
func (c InngestConfig) Enabled() bool {
	return c.AppID != ""
}

type ProcessorConfig struct {
	Interval time.Duration
	// StaleWithdrawalAfter is how long a withdrawal may stay pending before operators are alerted.
	StaleWithdrawalAfter time.Duration
}
