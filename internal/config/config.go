// Package config loads the server configuration file.
//
// The file is YAML (JSON works too). ${VAR} and ${VAR:-default} references
// are replaced from the environment before parsing, and relative schema
// and fixture paths are resolved against the directory of the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	ErrFileNotFound  = errors.New("configuration file not found")
	ErrEmptyFile     = errors.New("configuration file is empty")
	ErrInvalidYAML   = errors.New("invalid YAML syntax")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the configuration of the serve command.
type Config struct {
	Listen          string        `yaml:"listen" validate:"required,hostname_port"`
	Schema          []string      `yaml:"schema" validate:"required,min=1,dive,required"`
	Fixture         string        `yaml:"fixture"`
	Timeout         time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes" validate:"gte=0"`
	MaxDepth        int           `yaml:"maxDepth" validate:"gte=0"`
	FailFast        bool          `yaml:"failFast"`
	Pretty          bool          `yaml:"pretty"`
	GraphiQL        bool          `yaml:"graphiql"`
	CORS            []string      `yaml:"cors" validate:"dive,required"`
	MetadataHeaders []string      `yaml:"metadataHeaders" validate:"dive,required"`
	Log             Log           `yaml:"log"`
	Tracing         Tracing       `yaml:"tracing"`
}

type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Tracing exports spans over OTLP/gRPC when Endpoint is set.
type Tracing struct {
	Endpoint    string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	ServiceName string `yaml:"serviceName" validate:"required_with=Endpoint"`
}

// Default returns the configuration used for keys absent from a file.
func Default() *Config {
	return &Config{
		Listen:   "localhost:8080",
		Timeout:  10 * time.Second,
		GraphiQL: true,
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load reads, expands and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(ExpandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. All violations are reported.
func (c *Config) Validate() error {
	err := validate().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", field, fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func (c *Config) resolvePaths(dir string) {
	for i, p := range c.Schema {
		c.Schema[i] = resolvePath(dir, p)
	}
	if c.Fixture != "" {
		c.Fixture = resolvePath(dir, c.Fixture)
	}
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} in input. Unset or
// empty variables take the default, or the empty string.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if val := os.Getenv(sub[1]); val != "" {
			return val
		}
		return sub[2]
	})
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validate() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}
