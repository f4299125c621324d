package config

import (
	"encoding/json"
	"os"

	"github.com/StormRens/Fake-Twitter/internal/flagx"
	"github.com/StormRens/Fake-Twitter/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// strings like "168h" as well as integer nanoseconds. Fields left out of
// the file keep their current value.
type JsonConfig struct {
	EndpointAddrHTTP                  *string         `json:"endpoint_addr_http"`
	DatabaseDSN                       *string         `json:"database_dsn"`
	SecretKey                         *string         `json:"secret_key"`
	TokenValidityDuration             *timex.Duration `json:"token_validity_duration"`
	VerificationTokenValidityDuration *timex.Duration `json:"verification_token_validity_duration"`
	FrontendURL                       *string         `json:"frontend_url"`
	BackendURL                        *string         `json:"backend_url"`
	Production                        *bool           `json:"production"`
	LogLevel                          *string         `json:"log_level"`
	EmailProvider                     *string         `json:"email_provider"`
	EmailFrom                         *string         `json:"email_from"`
	MailboxPath                       *string         `json:"mailbox_path"`
	SESRegion                         *string         `json:"ses_region"`
	SESAccessKey                      *string         `json:"ses_access_key"`
	SESSecretKey                      *string         `json:"ses_secret_key"`
	SESEndpoint                       *string         `json:"ses_endpoint"`
	AuthRateLimitRPS                  *int            `json:"auth_rate_limit_rps"`
	AuthRateLimitBurst                *int            `json:"auth_rate_limit_burst"`
}

// parseJson loads the file named by -c/-config into config. Without the
// flag nothing happens. An unreadable file or invalid JSON panics: a
// misconfigured server should not start.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.VerificationTokenValidityDuration != nil {
		config.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	}
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.BackendURL, c.BackendURL)
	if c.Production != nil {
		config.Production = *c.Production
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.EmailProvider, c.EmailProvider)
	setString(&config.EmailFrom, c.EmailFrom)
	setString(&config.MailboxPath, c.MailboxPath)
	setString(&config.SESRegion, c.SESRegion)
	setString(&config.SESAccessKey, c.SESAccessKey)
	setString(&config.SESSecretKey, c.SESSecretKey)
	setString(&config.SESEndpoint, c.SESEndpoint)
	if c.AuthRateLimitRPS != nil {
		config.AuthRateLimitRPS = *c.AuthRateLimitRPS
	}
	if c.AuthRateLimitBurst != nil {
		config.AuthRateLimitBurst = *c.AuthRateLimitBurst
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
