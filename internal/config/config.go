// Package config loads the server configuration from flags, environment
// (GJ_ prefix) and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/and161185/gratitude-journal/internal/token"
)

// EnvPrefix is prepended to every environment key, e.g. GJ_JWT_SECRET.
const EnvPrefix = "GJ"

// Keys understood by Load.
const (
	KeyAddr            = "addr"
	KeyDSN             = "dsn"
	KeyJWTSecret       = "jwt_secret"
	KeyAccessTTL       = "access_ttl"
	KeyRefreshTTL      = "refresh_ttl"
	KeyCookieSameSite  = "cookie_same_site"
	KeyCookieSecure    = "cookie_secure"
	KeyCORSOrigins     = "cors_origins"
	KeyBcryptCost      = "bcrypt_cost"
	KeyEnv             = "env"
	KeyLogLevel        = "log_level"
	KeyMigrateOnStart  = "migrate_on_start"
	KeyShutdownTimeout = "shutdown_timeout"
)

// Config holds the server configuration.
type Config struct {
	Addr            string
	DSN             string
	JWTSecret       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	CookieSameSite  string // strict | lax | none
	CookieSecure    bool
	CORSOrigins     []string
	BcryptCost      int
	Env             string // dev | prod
	LogLevel        string
	MigrateOnStart  bool
	ShutdownTimeout time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyDSN, "postgres://gj:gj@localhost:5432/gratitude?sslmode=disable")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyAccessTTL, token.DefaultAccessTTL)
	v.SetDefault(KeyRefreshTTL, token.DefaultRefreshTTL)
	v.SetDefault(KeyCookieSameSite, "strict")
	v.SetDefault(KeyCookieSecure, true)
	v.SetDefault(KeyCORSOrigins, []string{"http://localhost:3000"})
	v.SetDefault(KeyBcryptCost, 12)
	v.SetDefault(KeyEnv, "prod")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMigrateOnStart, true)
	v.SetDefault(KeyShutdownTimeout, 5*time.Second)
}

// NewViper returns a viper instance with defaults and GJ_ env binding.
// A non-empty file is read as the config file.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:            v.GetString(KeyAddr),
		DSN:             v.GetString(KeyDSN),
		JWTSecret:       v.GetString(KeyJWTSecret),
		AccessTTL:       v.GetDuration(KeyAccessTTL),
		RefreshTTL:      v.GetDuration(KeyRefreshTTL),
		CookieSameSite:  strings.ToLower(v.GetString(KeyCookieSameSite)),
		CookieSecure:    v.GetBool(KeyCookieSecure),
		CORSOrigins:     stringList(v.Get(KeyCORSOrigins)),
		BcryptCost:      v.GetInt(KeyBcryptCost),
		Env:             v.GetString(KeyEnv),
		LogLevel:        v.GetString(KeyLogLevel),
		MigrateOnStart:  v.GetBool(KeyMigrateOnStart),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem found in c.
func (c Config) Validate() error {
	var problems []error
	if c.Addr == "" {
		problems = append(problems, errors.New("addr is required"))
	}
	if c.DSN == "" {
		problems = append(problems, errors.New("dsn is required"))
	}
	if len(c.JWTSecret) < token.MinSecretLen {
		problems = append(problems, fmt.Errorf("jwt_secret must be at least %d bytes", token.MinSecretLen))
	}
	if c.AccessTTL <= 0 {
		problems = append(problems, errors.New("access_ttl must be positive"))
	}
	if c.RefreshTTL <= 0 {
		problems = append(problems, errors.New("refresh_ttl must be positive"))
	}
	if _, err := ParseSameSite(c.CookieSameSite); err != nil {
		problems = append(problems, err)
	}
	if c.CookieSameSite == "none" && !c.CookieSecure {
		problems = append(problems, errors.New("cookie_same_site=none requires cookie_secure"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Errorf("bcrypt_cost must be in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(problems...)
}

// SameSite returns the parsed cookie SameSite mode.
func (c Config) SameSite() http.SameSite {
	m, _ := ParseSameSite(c.CookieSameSite)
	return m
}

// ParseSameSite maps strict, lax or none to the http.SameSite mode.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("cookie_same_site: unknown mode %q", s)
	}
}

// stringList accepts a slice or a comma-separated string (env form).
func stringList(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
