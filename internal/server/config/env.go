package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is the dotenv file read before the process environment. Variables
// already set in the environment win over the file.
var envFile = ".env"

// parseEnv overlays config with environment variables. A missing .env file
// is not an error. Malformed numeric or duration values are ignored so the
// previous layer's value stays in effect.
//
// Durations (JWT_EXPIRES_IN, VERIFICATION_TOKEN_EXPIRES_IN) accept Go
// duration strings ("168h") and the "<n>d" day form ("7d").
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		config.EndpointAddrHTTP = v
	} else if v, ok := os.LookupEnv("PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}

	lookupString("DATABASE_DSN", &config.DatabaseDSN)
	lookupString("JWT_SECRET", &config.SecretKey)
	lookupDuration("JWT_EXPIRES_IN", &config.TokenValidityDuration)
	lookupDuration("VERIFICATION_TOKEN_EXPIRES_IN", &config.VerificationTokenValidityDuration)
	lookupString("FRONTEND_URL", &config.FrontendURL)
	lookupString("BACKEND_URL", &config.BackendURL)
	lookupBool("PRODUCTION", &config.Production)
	lookupString("LOG_LEVEL", &config.LogLevel)
	lookupString("EMAIL_PROVIDER", &config.EmailProvider)
	lookupString("EMAIL_FROM", &config.EmailFrom)
	lookupString("MAILBOX_PATH", &config.MailboxPath)
	lookupString("SES_REGION", &config.SESRegion)
	lookupString("SES_ACCESS_KEY", &config.SESAccessKey)
	lookupString("SES_SECRET_KEY", &config.SESSecretKey)
	lookupString("SES_ENDPOINT", &config.SESEndpoint)
	lookupInt("AUTH_RATE_LIMIT_RPS", &config.AuthRateLimitRPS)
	lookupInt("AUTH_RATE_LIMIT_BURST", &config.AuthRateLimitBurst)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func lookupInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func lookupDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := parseDuration(v); err == nil {
			*dst = d
		}
	}
}

func parseDuration(s string) (time.Duration, error) {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		days, err := strconv.Atoi(s[:n-1])
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
