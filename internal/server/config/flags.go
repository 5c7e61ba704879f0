package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/flagx"
)

// serverFlags lists every flag parseFlags understands.
var serverFlags = []string{
	"-a", "-health-addr", "-d", "-s", "-t", "-r",
	"-u", "-p", "-b", "-g", "-e", "-s3-public-url",
	"-public-url", "-sendgrid-key", "-mail-from",
	"-redis", "-rate-limit", "-auth-rate-limit", "-rate-window",
	"-cors", "-log-level",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string               REST bind address (e.g., ":8000")
//	-health-addr string     gRPC health bind address (empty disables)
//	-d string               PostgreSQL DSN
//	-s string               JWT HMAC secret key
//	-t int                  access token validity, minutes
//	-r int                  refresh token validity, minutes
//	-u string               S3 root user
//	-p string               S3 root password
//	-b string               S3 bucket name
//	-g string               S3 region
//	-e string               S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-s3-public-url string   public base URL of uploaded avatars
//	-public-url string      public base URL of this API (email links)
//	-sendgrid-key string    SendGrid API key
//	-mail-from string       sender address for outgoing mail
//	-redis string           Redis URL (e.g., "redis://localhost:6379/0")
//	-rate-limit int         requests per window per route and client
//	-auth-rate-limit int    requests per window on auth routes
//	-rate-window duration   rate-limit window (e.g., "1m")
//	-cors string            comma-separated allowed origins
//	-log-level string       debug|info|warn|error
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.EndpointAddrHealth, "health-addr", config.EndpointAddrHealth, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicURL, "s3-public-url", config.S3PublicURL, "public URL of the avatar bucket")

	fs.StringVar(&config.PublicURL, "public-url", config.PublicURL, "public URL of the API")
	fs.StringVar(&config.SendGridAPIKey, "sendgrid-key", config.SendGridAPIKey, "SendGrid API key")
	fs.StringVar(&config.MailFromAddress, "mail-from", config.MailFromAddress, "sender email address")

	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "Redis URL")
	fs.IntVar(&config.RateLimitRequests, "rate-limit", config.RateLimitRequests, "requests per window")
	fs.IntVar(&config.AuthRateLimitRequests, "auth-rate-limit", config.AuthRateLimitRequests, "requests per window on auth routes")
	fs.DurationVar(&config.RateLimitWindow, "rate-window", config.RateLimitWindow, "rate limit window")

	cors := fs.String("cors", strings.Join(config.CORSAllowedOrigins, ","), "comma-separated CORS origins")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.CORSAllowedOrigins = splitList(*cors)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
