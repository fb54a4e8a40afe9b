// Package config loads the listing wizard settings from a YAML file, .env
// files and WIZARD_ prefixed environment variables, in that order of
// precedence from lowest to highest.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WIZARD_"

const (
	ErrCodeConfigRead    = "CONFIG_READ_FAILED"
	ErrCodeConfigParse   = "CONFIG_PARSE_FAILED"
	ErrCodeConfigInvalid = "CONFIG_INVALID"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Submit    SubmitConfig    `yaml:"submit"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
	// StepsFile overrides the embedded step definitions when set.
	StepsFile string `yaml:"steps_file"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent"`
	// MediaRoot resolves relative media paths on upload.
	MediaRoot string `yaml:"media_root"`
}

type SubmitConfig struct {
	Retries     int           `yaml:"retries" validate:"gte=0,lte=10"`
	BackoffBase time.Duration `yaml:"backoff_base" validate:"gte=0"`
	BackoffMax  time.Duration `yaml:"backoff_max" validate:"gte=0"`
}

type ReconcileConfig struct {
	LedgerPath  string `yaml:"ledger_path"`
	Schedule    string `yaml:"schedule" validate:"omitempty,cronspec"`
	MaxAttempts int    `yaml:"max_attempts" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error fatal"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:3000/api",
			Timeout:   30 * time.Second,
			UserAgent: "listing-wizard",
		},
		Submit: SubmitConfig{
			BackoffBase: 500 * time.Millisecond,
			BackoffMax:  10 * time.Second,
		},
		Reconcile: ReconcileConfig{
			LedgerPath:  "partial-submissions.yaml",
			Schedule:    "*/15 * * * *",
			MaxAttempts: 5,
		},
		Log: LogConfig{Level: "info"},
	}
}

type Option func(*loader)

type loader struct {
	envFiles []string
	lookup   func(string) (string, bool)
}

// WithEnvFiles reads additional variables from .env files. Missing files
// are skipped. Process variables win over file values.
func WithEnvFiles(files ...string) Option {
	return func(l *loader) {
		l.envFiles = append(l.envFiles, files...)
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(l *loader) {
		if fn != nil {
			l.lookup = fn
		}
	}
}

// Load builds a Config from defaults, the YAML file at path (optional),
// env files and environment overrides, then validates it.
func Load(path string, opts ...Option) (Config, error) {
	l := loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		if opt != nil {
			opt(&l)
		}
	}

	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, errors.CategoryBadInput, "read config file").
				WithTextCode(ErrCodeConfigRead).
				WithMetadata(map[string]any{"path": path})
		}
		if err := Parse(raw, &cfg); err != nil {
			return cfg, err
		}
	}

	lookup, err := l.envLookup()
	if err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

// Parse decodes YAML onto cfg, keeping values the document leaves out.
func Parse(raw []byte, cfg *Config) error {
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "parse config").
			WithTextCode(ErrCodeConfigParse)
	}
	return nil
}

func (l loader) envLookup() (func(string) (string, bool), error) {
	fileEnv := map[string]string{}
	for _, file := range l.envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "read env file").
				WithTextCode(ErrCodeConfigRead).
				WithMetadata(map[string]any{"path": file})
		}
		for k, v := range values {
			if _, seen := fileEnv[k]; !seen {
				fileEnv[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}, nil
}

type envBinding struct {
	key   string
	apply func(*Config, string) error
}

var envBindings = []envBinding{
	{"API_BASE_URL", func(c *Config, v string) error { c.API.BaseURL = v; return nil }},
	{"API_TOKEN", func(c *Config, v string) error { c.API.Token = v; return nil }},
	{"API_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.API.Timeout, v) }},
	{"API_USER_AGENT", func(c *Config, v string) error { c.API.UserAgent = v; return nil }},
	{"API_MEDIA_ROOT", func(c *Config, v string) error { c.API.MediaRoot = v; return nil }},
	{"SUBMIT_RETRIES", func(c *Config, v string) error { return setInt(&c.Submit.Retries, v) }},
	{"SUBMIT_BACKOFF_BASE", func(c *Config, v string) error { return setDuration(&c.Submit.BackoffBase, v) }},
	{"SUBMIT_BACKOFF_MAX", func(c *Config, v string) error { return setDuration(&c.Submit.BackoffMax, v) }},
	{"RECONCILE_LEDGER_PATH", func(c *Config, v string) error { c.Reconcile.LedgerPath = v; return nil }},
	{"RECONCILE_SCHEDULE", func(c *Config, v string) error { c.Reconcile.Schedule = v; return nil }},
	{"RECONCILE_MAX_ATTEMPTS", func(c *Config, v string) error { return setInt(&c.Reconcile.MaxAttempts, v) }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
	{"STEPS_FILE", func(c *Config, v string) error { c.StepsFile = v; return nil }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.apply(cfg, strings.TrimSpace(v)); err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "invalid environment override").
				WithTextCode(ErrCodeConfigParse).
				WithMetadata(map[string]any{"variable": EnvPrefix + b.key})
		}
	}
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks cfg and reports every failing field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, errors.CategoryInternal, "validate config").
			WithTextCode(ErrCodeConfigInvalid)
	}
	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Message: "failed on " + fe.Tag(),
			Value:   fe.Value(),
		})
	}
	return errors.NewValidation("invalid configuration", fields...).
		WithTextCode(ErrCodeConfigInvalid)
}
