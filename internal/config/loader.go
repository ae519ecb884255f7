package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load builds a Config from the environment, filling unset fields from their
// default tags, and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := populate(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// populate walks the section structs and decodes every field carrying an
// env tag. The envAlt tag names a fallback variable, e.g. PORT.
func populate(v reflect.Value) error {
	t := v.Type()
	for i := range t.NumField() {
		f, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			if err := populate(fv); err != nil {
				return err
			}
			continue
		}

		name := f.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := lookup(name, f.Tag.Get("envAlt"))
		if !ok {
			if f.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			raw = f.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := decode(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}
	return nil
}

// lookup returns the first non-empty variable among names.
func lookup(names ...string) (string, bool) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v := os.Getenv(n); v != "" {
			return v, true
		}
	}
	return "", false
}

func decode(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", fv.Type().Elem().Kind())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var p problems
	c.Server.validate(&p)
	c.Upload.validate(&p)
	c.Session.validate(&p)
	c.Cleaning.validate(&p)
	c.Rate.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)
	c.Metrics.validate(&p)
	return p.err()
}

type problems []error

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Errorf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed: %w", errors.Join(p...))
}

func (s *ServerConfig) validate(p *problems) {
	if s.Port <= 0 || s.Port > 65535 {
		p.addf("SERVER_PORT (%d) must be 1-65535", s.Port)
	}
	if s.ReadTimeout < 0 {
		p.addf("SERVER_READ_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		p.addf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
}

func (u *UploadConfig) validate(p *problems) {
	if u.MaxFileSize <= 0 {
		p.addf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if u.MaxFiles <= 0 {
		p.addf("UPLOAD_MAX_FILES must be positive")
	}
	if u.MaxConcurrent <= 0 {
		p.addf("UPLOAD_MAX_CONCURRENT must be positive")
	}
	if u.MaxWaitTime <= 0 {
		p.addf("UPLOAD_MAX_WAIT_TIME must be positive")
	}
}

func (s *SessionConfig) validate(p *problems) {
	if s.CookieName == "" {
		p.addf("SESSION_COOKIE_NAME is required")
	}
	if s.TTL <= 0 {
		p.addf("SESSION_TTL must be positive")
	}
	if s.JanitorInterval <= 0 {
		p.addf("SESSION_JANITOR_INTERVAL must be positive")
	}
	if s.MaxSessions <= 0 {
		p.addf("SESSION_MAX must be positive")
	}
}

func (c *CleaningConfig) validate(p *problems) {
	if c.MissingThreshold < 0 || c.MissingThreshold > 100 {
		p.addf("CLEANING_MISSING_THRESHOLD (%g) must be 0-100", c.MissingThreshold)
	}
	if c.PreviewRows < 0 {
		p.addf("CLEANING_PREVIEW_ROWS must be non-negative")
	}
}

func (r *RateLimitConfig) validate(p *problems) {
	if !r.Enabled {
		return
	}
	if r.RequestsPerMinute <= 0 {
		p.addf("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if r.Burst <= 0 {
		p.addf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
}

func (s *SecurityConfig) validate(p *problems) {
	if s.RequireAPIKey && len(s.APIKeys) == 0 {
		p.addf("REQUIRE_API_KEY is set but API_KEYS is empty")
	}
}

func (l *LoggingConfig) validate(p *problems) {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p.addf("LOG_FORMAT (%q) must be one of: text, json", l.Format)
	}
}

func (m *MetricsConfig) validate(p *problems) {
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		p.addf("METRICS_PATH (%q) must start with /", m.Path)
	}
}

// String renders the config for logs with API keys masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Host: %q, Port: %d}, "+
		"Upload: {MaxFileSize: %d, MaxFiles: %d, MaxConcurrent: %d}, "+
		"Session: {TTL: %s, MaxSessions: %d}, "+
		"Cleaning: {MissingThreshold: %g, PreviewRows: %d}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d, Burst: %d}, "+
		"Security: {RequireAPIKey: %v, APIKeys: [MASKED x%d]}, "+
		"Logging: {Level: %q, Format: %q}}",
		c.Server.Host, c.Server.Port,
		c.Upload.MaxFileSize, c.Upload.MaxFiles, c.Upload.MaxConcurrent,
		c.Session.TTL, c.Session.MaxSessions,
		c.Cleaning.MissingThreshold, c.Cleaning.PreviewRows,
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.Burst,
		c.Security.RequireAPIKey, len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format,
	)
}
