// Package config provides the environment-driven settings for the Ollama
// MCP server: daemon endpoint, timeouts, connection pooling, model
// allow/deny policy, and feature flags. An optional YAML file may seed the
// settings; environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Default values applied when neither the file nor the environment
// specifies a setting.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 11434
	DefaultTimeout         = 30 * time.Second
	DefaultServerName      = "ollama-mcp-server"
	DefaultPoolSize        = 20
	DefaultMaxConcurrent   = 10
	DefaultDownloadTimeout = 30 * time.Minute
	DefaultLogLevel        = "INFO"
)

// Settings is the full configuration surface.
type Settings struct {
	OllamaHost string        `json:"ollama_host" yaml:"ollama_host" validate:"required"`
	OllamaPort int           `json:"ollama_port" yaml:"ollama_port" validate:"min=1,max=65535"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`

	ServerName string `json:"server_name" yaml:"server_name" validate:"required"`

	MaxConcurrentRequests int           `json:"max_concurrent_requests" yaml:"max_concurrent_requests" validate:"gt=0,lte=100"`
	ConnectionPoolSize    int           `json:"connection_pool_size" yaml:"connection_pool_size" validate:"gt=0"`
	DownloadTimeout       time.Duration `json:"download_timeout" yaml:"download_timeout" validate:"gt=0"`

	DefaultChatModel string `json:"default_chat_model,omitempty" yaml:"default_chat_model,omitempty"`

	// AllowedModels and BlockedModels are exact-match model name sets.
	// A model on the blocked list is always denied; when the allowed list
	// is non-empty, only its members may be used.
	AllowedModels []string `json:"allowed_models,omitempty" yaml:"allowed_models,omitempty"`
	BlockedModels []string `json:"blocked_models,omitempty" yaml:"blocked_models,omitempty"`

	EnableGPUDetection    bool `json:"enable_gpu_detection" yaml:"enable_gpu_detection"`
	EnableAutoServerStart bool `json:"enable_auto_server_start" yaml:"enable_auto_server_start"`

	LogLevel  string `json:"log_level" yaml:"log_level" validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`

	allowed map[string]struct{}
	blocked map[string]struct{}
}

var validate = validator.New()

// Load builds settings from defaults and environment variables.
func Load() (*Settings, error) {
	return LoadFile("")
}

// LoadFile builds settings from defaults, an optional YAML file, then
// environment variable overrides.
func LoadFile(file string) (*Settings, error) {
	cfg := &Settings{
		OllamaHost:            DefaultHost,
		OllamaPort:            DefaultPort,
		Timeout:               DefaultTimeout,
		ServerName:            DefaultServerName,
		MaxConcurrentRequests: DefaultMaxConcurrent,
		ConnectionPoolSize:    DefaultPoolSize,
		DownloadTimeout:       DefaultDownloadTimeout,
		EnableGPUDetection:    true,
		LogLevel:              DefaultLogLevel,
	}

	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, errors.WithMessagef(err, "failed to load config file %q", file)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.WithMessage(err, "invalid configuration")
	}

	cfg.allowed = toSet(cfg.AllowedModels)
	cfg.blocked = toSet(cfg.BlockedModels)
	return cfg, nil
}

func (c *Settings) applyEnv() error {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		// OLLAMA_HOST may carry an embedded port, as in "myhost:11435".
		host, port, found := strings.Cut(v, ":")
		c.OllamaHost = host
		if found {
			p, err := strconv.Atoi(port)
			if err != nil {
				return errors.Wrapf(err, "invalid OLLAMA_HOST port %q", port)
			}
			c.OllamaPort = p
		}
	}
	if err := envInt("OLLAMA_PORT", &c.OllamaPort); err != nil {
		return err
	}
	if err := envSeconds("OLLAMA_TIMEOUT", &c.Timeout); err != nil {
		return err
	}
	if v := os.Getenv("MCP_SERVER_NAME"); v != "" {
		c.ServerName = v
	}
	if err := envInt("MAX_CONCURRENT_REQUESTS", &c.MaxConcurrentRequests); err != nil {
		return err
	}
	if err := envInt("CONNECTION_POOL_SIZE", &c.ConnectionPoolSize); err != nil {
		return err
	}
	if err := envSeconds("MODEL_DOWNLOAD_TIMEOUT", &c.DownloadTimeout); err != nil {
		return err
	}
	if v := os.Getenv("DEFAULT_CHAT_MODEL"); v != "" {
		c.DefaultChatModel = v
	}
	if v := os.Getenv("ALLOWED_MODELS"); v != "" {
		c.AllowedModels = splitList(v)
	}
	if v := os.Getenv("BLOCKED_MODELS"); v != "" {
		c.BlockedModels = splitList(v)
	}
	if err := envBool("ENABLE_GPU_DETECTION", &c.EnableGPUDetection); err != nil {
		return err
	}
	if err := envBool("ENABLE_AUTO_SERVER_START", &c.EnableAutoServerStart); err != nil {
		return err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// URL returns the complete daemon base URL.
func (c *Settings) URL() string {
	return fmt.Sprintf("http://%s:%d", c.OllamaHost, c.OllamaPort)
}

// IsModelAllowed applies the allow/deny policy with exact-match semantics.
func (c *Settings) IsModelAllowed(name string) bool {
	if _, denied := c.blocked[name]; denied {
		return false
	}
	if len(c.allowed) > 0 {
		_, ok := c.allowed[name]
		return ok
	}
	return true
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s value %q", name, v)
	}
	*dst = n
	return nil
}

func envSeconds(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid %s value %q", name, v)
	}
	*dst = time.Duration(secs * float64(time.Second))
	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s value %q", name, v)
	}
	*dst = b
	return nil
}
