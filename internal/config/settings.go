package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Extractor backends.
const (
	BackendHTTP   = "http"
	BackendGemini = "gemini"
)

// Settings is the content of config.yaml.
type Settings struct {
	Extractor ExtractorSettings `yaml:"extractor"`
}

// ExtractorSettings selects and configures the AI extraction backend.
type ExtractorSettings struct {
	// Backend is "http" (hosted service) or "gemini" (direct API).
	Backend string `yaml:"backend"`

	// Endpoint is the hosted service base URL.
	Endpoint string `yaml:"endpoint"`

	// Model is the Gemini model name.
	Model string `yaml:"model"`

	// APIKey is the Gemini API key. Prefer GEMINI_API_KEY.
	APIKey string `yaml:"api_key,omitempty"`

	// Timeout bounds one extraction call, e.g. "45s".
	Timeout string `yaml:"timeout"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Extractor: ExtractorSettings{
			Backend:  BackendHTTP,
			Endpoint: "https://viraflow.onrender.com",
			Model:    "gemini-2.5-flash",
			Timeout:  "60s",
		},
	}
}

// TimeoutDuration parses Timeout. Zero means "use the client default".
func (e ExtractorSettings) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(e.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid extractor timeout %q: %w", e.Timeout, err)
	}
	return d, nil
}

// LoadSettings reads config.yaml over the defaults and applies
// environment overrides. A missing file is not an error.
func (c *Config) LoadSettings() (Settings, error) {
	s, err := c.ReadSettingsFile()
	if err != nil {
		return Settings{}, err
	}
	s.applyEnv()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ReadSettingsFile reads config.yaml over the defaults without
// environment overrides, so the result can be saved back as is.
func (c *Config) ReadSettingsFile() (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(c.SettingsPath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", SettingsFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Settings{}, fmt.Errorf("read %s: %w", SettingsFile, err)
	}
	if s.Extractor.Backend == "" {
		s.Extractor.Backend = BackendHTTP
	}
	return s, nil
}

// Validate checks the backend name and the timeout.
func (s Settings) Validate() error {
	switch s.Extractor.Backend {
	case BackendHTTP, BackendGemini:
	default:
		return fmt.Errorf("unknown extractor backend: %s", s.Extractor.Backend)
	}
	_, err := s.Extractor.TimeoutDuration()
	return err
}

// SettingKeys lists the keys accepted by Set.
var SettingKeys = []string{"backend", "endpoint", "model", "api_key", "timeout"}

// Set changes one extractor setting by its config.yaml key.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend":
		s.Extractor.Backend = value
	case "endpoint":
		s.Extractor.Endpoint = value
	case "model":
		s.Extractor.Model = value
	case "api_key":
		s.Extractor.APIKey = value
	case "timeout":
		s.Extractor.Timeout = value
	default:
		return fmt.Errorf("unknown setting: %s (one of %s)", key, strings.Join(SettingKeys, ", "))
	}
	return nil
}

// SaveSettings writes s to config.yaml with mode 0600.
func (c *Config) SaveSettings(s Settings) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(c.SettingsPath(), data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", SettingsFile, err)
	}
	return nil
}

func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("VIRAFLOW_API_URL")); v != "" {
		s.Extractor.Endpoint = v
	}
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			s.Extractor.APIKey = v
			break
		}
	}
}
