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

// ErrMissing is matched by every *MissingError via errors.Is.
var ErrMissing = errors.New("missing configuration")

// MissingError lists every environment variable an operation needs but did not get.
type MissingError struct {
	Groups []string
	Names  []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing configuration for %s: %s",
		strings.Join(e.Groups, ", "), strings.Join(e.Names, ", "))
}

// Is lets callers test for ErrMissing without a type assertion.
func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Credentials are not checked here; commands call Require for the
// groups they actually use.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := os.Getenv(envName)
		if value == "" {
			if alt := field.Tag.Get("envAlt"); alt != "" {
				value = os.Getenv(alt)
			}
		}
		if value == "" {
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	switch c.Source.Mode {
	case SourceSheets, SourceFile:
	default:
		errs = append(errs, fmt.Sprintf("SOURCE_MODE (%q) must be one of: sheets, file", c.Source.Mode))
	}

	switch c.CDN.Provider {
	case ProviderCloudinary, ProviderS3:
	default:
		errs = append(errs, fmt.Sprintf("CDN_PROVIDER (%q) must be one of: cloudinary, s3", c.CDN.Provider))
	}

	if strings.Trim(c.CDN.Folder, "/") == "" {
		errs = append(errs, "CDN_FOLDER must not be empty")
	}
	if c.Output.Dir == "" {
		errs = append(errs, "OUTPUT_DIR must not be empty")
	}
	if c.Output.ManifestPath == "" {
		errs = append(errs, "MANIFEST_PATH must not be empty")
	}
	if c.Run.Timeout < 0 {
		errs = append(errs, "RUN_TIMEOUT must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.SyncPerMinute <= 0 {
		errs = append(errs, "SYNC_RATE_PER_MINUTE must be positive")
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Require checks that every field tagged requiredFor one of groups is set.
// The returned *MissingError names all absent variables, not just the first.
func (c *Config) Require(groups ...string) error {
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}

	var missing []string
	collectMissing(reflect.ValueOf(c).Elem(), want, &missing)

	if len(missing) == 0 {
		return nil
	}
	return &MissingError{Groups: groups, Names: missing}
}

// RequireSource checks the credentials of the configured row source.
func (c *Config) RequireSource() error {
	return c.Require(c.Source.Mode)
}

// RequireHost checks the credentials of the configured asset host.
func (c *Config) RequireHost() error {
	return c.Require(c.CDN.Provider)
}

// RequirePipeline checks source and host credentials together so a sync
// reports everything that is missing in one go.
func (c *Config) RequirePipeline() error {
	return c.Require(c.Source.Mode, c.CDN.Provider)
}

func collectMissing(v reflect.Value, groups map[string]bool, missing *[]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			collectMissing(fieldVal, groups, missing)
			continue
		}

		group := field.Tag.Get("requiredFor")
		if group == "" || !groups[group] {
			continue
		}
		if fieldVal.IsZero() {
			*missing = append(*missing, field.Tag.Get("env"))
		}
	}
}

// String returns a safe string representation of the config for logging.
// Fields tagged secret are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	writeStruct(&b, reflect.ValueOf(c).Elem())
	b.WriteString("}")
	return b.String()
}

func writeStruct(b *strings.Builder, v reflect.Value) {
	t := v.Type()
	first := true
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !first {
			b.WriteString(", ")
		}
		first = false

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			b.WriteString(field.Name + ": {")
			writeStruct(b, fieldVal)
			b.WriteString("}")
			continue
		}

		if field.Tag.Get("secret") == "true" && !fieldVal.IsZero() {
			b.WriteString(field.Name + ": [MASKED]")
			continue
		}
		fmt.Fprintf(b, "%s: %v", field.Name, fieldVal.Interface())
	}
}
