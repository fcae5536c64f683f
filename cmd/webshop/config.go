package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mkovardin/webshop/internal/logger"
)

const (
	defaultListenAddr      = "localhost:8080"
	defaultLoggingLevel    = logger.LevelInfo
	defaultEnvironment     = logger.EnvProduction
	defaultAccessTTLSecs   = 900     // 15 minutes
	defaultRefreshTTLSecs  = 2592000 // 30 days
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the webshop service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key to sign access tokens (HMAC, symmetric)
	SecretKey string

	// Environment
	Environment string

	// Token lifetimes in seconds
	AccessTTLSeconds  int
	RefreshTTLSeconds int

	// Drop the Secure attribute on the refresh cookie, non-TLS dev only
	CookieInsecure bool

	// Seed admin account and sample catalog on start
	Seed bool
}

func NewConfig() *Config {
	return &Config{
		LogLevel:          defaultLoggingLevel,
		ListenAddr:        defaultListenAddr,
		Environment:       defaultEnvironment,
		AccessTTLSeconds:  defaultAccessTTLSecs,
		RefreshTTLSeconds: defaultRefreshTTLSecs,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	// Set option if value parses as integer, skip silently otherwise
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if parsed, err := strconv.ParseBool(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"SECRET_KEY":        setString(&c.SecretKey),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
		"ACCESS_TOKEN_TTL":  setInt(&c.AccessTTLSeconds),
		"REFRESH_TOKEN_TTL": setInt(&c.RefreshTTLSeconds),
		"COOKIE_INSECURE":   setBool(&c.CookieInsecure),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("webshop", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign access tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.IntVar(&c.AccessTTLSeconds, "access-ttl", c.AccessTTLSeconds, "Access token lifetime in seconds")
	fs.IntVar(&c.RefreshTTLSeconds, "refresh-ttl", c.RefreshTTLSeconds, "Refresh token lifetime in seconds")
	fs.BoolVar(&c.CookieInsecure, "cookie-insecure", c.CookieInsecure, "Drop Secure attribute on refresh cookie (dev only)")
	fs.BoolVar(&c.Seed, "seed", c.Seed, "Seed admin account and sample catalog on start")

	return fs.Parse(args)
}
