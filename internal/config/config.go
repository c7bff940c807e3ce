// Package config loads subextract settings from defaults, a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/subextract/internal/types"
)

const (
	EngineOpenAI = "openai"
	EngineDummy  = "dummy"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Profile is a named recognizer setup. Keys are never stored in the file;
// APIKeyEnv names the variable holding it.
type Profile struct {
	Name         string `yaml:"name"`
	Endpoint     string `yaml:"endpoint"`
	APIPath      string `yaml:"api_path"`
	Model        string `yaml:"model"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	Prompt       string `yaml:"prompt"`
	SystemPrompt string `yaml:"system_prompt"`
	APIKeyEnv    string `yaml:"api_key_env"`
	Group        string `yaml:"group"`
	Note         string `yaml:"note"`
}

type Config struct {
	Engine       string   `yaml:"engine"`
	Endpoint     string   `yaml:"endpoint"`
	APIPath      string   `yaml:"api_path"`
	APIKey       string   `yaml:"-"`
	Model        string   `yaml:"model"`
	Prompt       string   `yaml:"prompt"`
	SystemPrompt string   `yaml:"system_prompt"`
	PromptPreset string   `yaml:"prompt_preset"`
	TimeoutSec   int      `yaml:"timeout_sec"`
	AllowedHosts []string `yaml:"allowed_hosts"`

	SampleIntervalMs int `yaml:"sample_interval_ms"`
	MinDurationMs    int `yaml:"min_duration_ms"`
	MaxImageWidth    int `yaml:"max_image_width"`
	// Region is "x,y,w,h" in source pixels; empty means the full frame.
	Region string `yaml:"region"`

	Output      string `yaml:"output"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
	DatabaseURL string `yaml:"database_url"`

	Profiles        []Profile `yaml:"profiles"`
	SelectedProfile string    `yaml:"selected_profile"`
}

func Defaults() Config {
	return Config{
		Engine:           EngineOpenAI,
		Endpoint:         "http://localhost:1234",
		APIPath:          "/v1/chat/completions",
		Model:            "qwen/qwen3-vl-8b",
		Prompt:           PresetDefault,
		TimeoutSec:       30,
		SampleIntervalMs: 800,
		MinDurationMs:    1200,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		LogLevel:         "info",
		LogFormat:        LogFormatConsole,
	}
}

// envOverrides mirrors the scalar settings that may come from the
// environment. Unset variables leave the current value untouched.
type envOverrides struct {
	Engine       string   `env:"SUBEXTRACT_ENGINE"`
	Endpoint     string   `env:"OCR_API_ENDPOINT"`
	APIPath      string   `env:"OCR_API_PATH"`
	APIKey       string   `env:"OCR_API_KEY"`
	Model        string   `env:"OCR_API_MODEL"`
	Prompt       string   `env:"OCR_PROMPT"`
	SystemPrompt string   `env:"OCR_SYSTEM_PROMPT"`
	PromptPreset string   `env:"SUBEXTRACT_PROMPT_PRESET"`
	TimeoutSec   int      `env:"OCR_TIMEOUT"`
	AllowedHosts []string `env:"OCR_ALLOWED_HOSTS" envSeparator:","`

	SampleIntervalMs int    `env:"SUBEXTRACT_SAMPLE_MS"`
	MinDurationMs    int    `env:"SUBEXTRACT_MIN_DURATION_MS"`
	MaxImageWidth    int    `env:"SUBEXTRACT_MAX_IMAGE_WIDTH"`
	Region           string `env:"SUBEXTRACT_REGION"`

	Output      string `env:"SUBEXTRACT_OUTPUT"`
	FFmpegPath  string `env:"SUBEXTRACT_FFMPEG"`
	FFprobePath string `env:"SUBEXTRACT_FFPROBE"`

	LogLevel        string `env:"SUBEXTRACT_LOG_LEVEL"`
	LogFormat       string `env:"SUBEXTRACT_LOG_FORMAT"`
	MetricsAddr     string `env:"SUBEXTRACT_METRICS_ADDR"`
	DatabaseURL     string `env:"SUBEXTRACT_DATABASE_URL"`
	SelectedProfile string `env:"SUBEXTRACT_PROFILE"`
}

// Load builds a config from defaults, the optional YAML file at path and the
// environment, then applies the selected profile and prompt preset.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) ApplyEnv() error {
	o := envOverrides{
		Engine:           c.Engine,
		Endpoint:         c.Endpoint,
		APIPath:          c.APIPath,
		APIKey:           c.APIKey,
		Model:            c.Model,
		Prompt:           c.Prompt,
		SystemPrompt:     c.SystemPrompt,
		PromptPreset:     c.PromptPreset,
		TimeoutSec:       c.TimeoutSec,
		AllowedHosts:     c.AllowedHosts,
		SampleIntervalMs: c.SampleIntervalMs,
		MinDurationMs:    c.MinDurationMs,
		MaxImageWidth:    c.MaxImageWidth,
		Region:           c.Region,
		Output:           c.Output,
		FFmpegPath:       c.FFmpegPath,
		FFprobePath:      c.FFprobePath,
		LogLevel:         c.LogLevel,
		LogFormat:        c.LogFormat,
		MetricsAddr:      c.MetricsAddr,
		DatabaseURL:      c.DatabaseURL,
		SelectedProfile:  c.SelectedProfile,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	c.Engine = o.Engine
	c.Endpoint = o.Endpoint
	c.APIPath = o.APIPath
	c.APIKey = o.APIKey
	c.Model = o.Model
	c.Prompt = o.Prompt
	c.SystemPrompt = o.SystemPrompt
	c.PromptPreset = o.PromptPreset
	c.TimeoutSec = o.TimeoutSec
	c.AllowedHosts = o.AllowedHosts
	c.SampleIntervalMs = o.SampleIntervalMs
	c.MinDurationMs = o.MinDurationMs
	c.MaxImageWidth = o.MaxImageWidth
	c.Region = o.Region
	c.Output = o.Output
	c.FFmpegPath = o.FFmpegPath
	c.FFprobePath = o.FFprobePath
	c.LogLevel = o.LogLevel
	c.LogFormat = o.LogFormat
	c.MetricsAddr = o.MetricsAddr
	c.DatabaseURL = o.DatabaseURL
	c.SelectedProfile = o.SelectedProfile
	return nil
}

func (c Config) Profile(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// ApplyProfile copies the non-empty fields of the named profile over the
// recognizer settings. An empty name selects SelectedProfile, if any.
func (c *Config) ApplyProfile(name string) error {
	if name == "" {
		name = c.SelectedProfile
	}
	if name == "" {
		return nil
	}
	p, ok := c.Profile(name)
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	c.SelectedProfile = p.Name
	setIf(&c.Endpoint, p.Endpoint)
	setIf(&c.APIPath, p.APIPath)
	setIf(&c.Model, p.Model)
	setIf(&c.Prompt, p.Prompt)
	setIf(&c.SystemPrompt, p.SystemPrompt)
	if p.TimeoutSec > 0 {
		c.TimeoutSec = p.TimeoutSec
	}
	if p.APIKeyEnv != "" {
		if key := os.Getenv(p.APIKeyEnv); key != "" {
			c.APIKey = key
		}
	}
	return nil
}

// ApplyPreset replaces Prompt with the text of PromptPreset, when set.
func (c *Config) ApplyPreset() error {
	if c.PromptPreset == "" {
		return nil
	}
	text, ok := Preset(c.PromptPreset)
	if !ok {
		return fmt.Errorf("unknown prompt preset %q (known: %s)", c.PromptPreset, strings.Join(PresetNames(), ", "))
	}
	c.Prompt = text
	return nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Validate returns the first problem found.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineOpenAI, EngineDummy:
	default:
		return fmt.Errorf("engine must be %q or %q, got %q", EngineOpenAI, EngineDummy, c.Engine)
	}
	if c.Engine == EngineOpenAI {
		if strings.TrimSpace(c.Endpoint) == "" {
			return errors.New("endpoint is required")
		}
		if strings.TrimSpace(c.Model) == "" {
			return errors.New("model is required")
		}
	}
	if c.TimeoutSec < 0 {
		return errors.New("timeout_sec must be >= 0")
	}
	if c.SampleIntervalMs <= 0 {
		return errors.New("sample_interval_ms must be > 0")
	}
	if c.MinDurationMs < 0 {
		return errors.New("min_duration_ms must be >= 0")
	}
	if c.MaxImageWidth < 0 {
		return errors.New("max_image_width must be >= 0")
	}
	if _, err := ParseRegion(c.Region); err != nil {
		return err
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log_format must be %q or %q", LogFormatConsole, LogFormatJSON)
	}
	if c.PromptPreset != "" {
		if _, ok := Preset(c.PromptPreset); !ok {
			return fmt.Errorf("unknown prompt preset %q", c.PromptPreset)
		}
	}
	return nil
}

// ParseRegion parses "x,y,w,h". An empty string yields nil.
func ParseRegion(s string) (*types.Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	// Out-of-frame values are clamped against the video size at extraction time.
	return &types.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
