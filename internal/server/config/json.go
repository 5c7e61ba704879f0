package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/flagx"
	"github.com/dmitrijs2005/addressbook/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, non-empty fields are copied into the runtime
// Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP                  string         `json:"endpoint_addr_http"`
	EndpointAddrHealth                string         `json:"endpoint_addr_health"`
	DatabaseDSN                       string         `json:"database_dsn"`
	SecretKey                         string         `json:"secret_key"`
	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration timex.Duration `json:"verification_token_validity_duration"`
	ResetTokenValidityDuration        timex.Duration `json:"reset_token_validity_duration"`
	PublicURL                         string         `json:"public_url"`
	SendGridAPIKey                    string         `json:"sendgrid_api_key"`
	MailFromAddress                   string         `json:"mail_from_address"`
	MailFromName                      string         `json:"mail_from_name"`
	S3RootUser                        string         `json:"s3_root_user"`
	S3RootPassword                    string         `json:"s3_root_password"`
	S3Bucket                          string         `json:"s3_bucket"`
	S3Region                          string         `json:"s3_region"`
	S3BaseEndpoint                    string         `json:"s3_base_endpoint"`
	S3PublicURL                       string         `json:"s3_public_url"`
	RedisURL                          string         `json:"redis_url"`
	RateLimitRequests                 int            `json:"rate_limit_requests"`
	AuthRateLimitRequests             int            `json:"auth_rate_limit_requests"`
	RateLimitWindow                   timex.Duration `json:"rate_limit_window"`
	UserCacheTTL                      timex.Duration `json:"user_cache_ttl"`
	CORSAllowedOrigins                []string       `json:"cors_allowed_origins"`
	LogLevel                          string         `json:"log_level"`
	LogFormat                         string         `json:"log_format"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither is
// set, no JSON file is loaded. Keys absent from the file keep their current
// values. If the file cannot be read or contains invalid JSON, the function
// panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrHealth, c.EndpointAddrHealth)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.VerificationTokenValidityDuration, c.VerificationTokenValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setString(&config.PublicURL, c.PublicURL)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setString(&config.MailFromAddress, c.MailFromAddress)
	setString(&config.MailFromName, c.MailFromName)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.RedisURL, c.RedisURL)
	if c.RateLimitRequests > 0 {
		config.RateLimitRequests = c.RateLimitRequests
	}
	if c.AuthRateLimitRequests > 0 {
		config.AuthRateLimitRequests = c.AuthRateLimitRequests
	}
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)
	setDuration(&config.UserCacheTTL, c.UserCacheTTL)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
