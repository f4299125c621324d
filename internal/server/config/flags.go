package config

import (
	"flag"
	"os"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      auth token validity, minutes
//	-v int      verification link validity, minutes
//	-f string   frontend URL
//	-b string   backend URL
//	-m string   sender address for verification mails
//	-e string   email provider (log|ses)
//	-l string   log level
//	-prod       production mode (Secure cookies)
//
// Durations are given in whole minutes and replace the current value only
// when the flag is present.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-d", "-s", "-t", "-v", "-f", "-b", "-m", "-e", "-l"},
		"-prod")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	verificationValidity := fs.Int("v", int(config.VerificationTokenValidityDuration.Minutes()), "verification_token_validity_duration (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend URL")
	fs.StringVar(&config.BackendURL, "b", config.BackendURL, "backend URL")
	fs.StringVar(&config.EmailFrom, "m", config.EmailFrom, "verification mail sender")
	fs.StringVar(&config.EmailProvider, "e", config.EmailProvider, "email provider (log|ses)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.Production, "prod", config.Production, "production mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicit flags override; earlier layers may carry sub-minute values
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		case "v":
			config.VerificationTokenValidityDuration = time.Duration(*verificationValidity) * time.Minute
		}
	})
}
