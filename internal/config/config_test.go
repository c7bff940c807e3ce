package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/subextract/internal/types"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "subextract.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, "http://localhost:1234", c.Endpoint)
	assert.Equal(t, "/v1/chat/completions", c.APIPath)
	assert.Equal(t, "qwen/qwen3-vl-8b", c.Model)
	assert.Equal(t, PresetDefault, c.Prompt)
	assert.Equal(t, 30*time.Second, c.Timeout())
	assert.Equal(t, 800, c.SampleIntervalMs)
	assert.Equal(t, 1200, c.MinDurationMs)
}

func TestLoad_Layering(t *testing.T) {
	path := writeFile(t, `
model: file-model
sample_interval_ms: 500
region: "0,600,1280,120"
allowed_hosts: [ocr.internal]
`)
	t.Setenv("OCR_API_MODEL", "env-model")
	t.Setenv("OCR_TIMEOUT", "12")
	t.Setenv("OCR_ALLOWED_HOSTS", "a.example,b.example")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-model", c.Model)
	assert.Equal(t, 12, c.TimeoutSec)
	assert.Equal(t, 500, c.SampleIntervalMs)
	assert.Equal(t, "0,600,1280,120", c.Region)
	assert.Equal(t, []string{"a.example", "b.example"}, c.AllowedHosts)
	assert.Equal(t, 1200, c.MinDurationMs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("SUBEXTRACT_SAMPLE_MS", "fast")
	_, err := Load("")
	require.Error(t, err)
}

func TestApplyProfile(t *testing.T) {
	path := writeFile(t, `
selected_profile: local
profiles:
  - name: local
    endpoint: http://127.0.0.1:8080
    model: local-vl
    timeout_sec: 10
  - name: cloud
    endpoint: https://api.example.com
    api_path: /openai/v1/chat/completions
    model: cloud-vl
    api_key_env: CLOUD_OCR_KEY
    group: remote
`)
	t.Setenv("CLOUD_OCR_KEY", "sk-cloud")

	c, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, c.ApplyProfile(""))
	assert.Equal(t, "http://127.0.0.1:8080", c.Endpoint)
	assert.Equal(t, "/v1/chat/completions", c.APIPath)
	assert.Equal(t, "local-vl", c.Model)
	assert.Equal(t, 10, c.TimeoutSec)
	assert.Empty(t, c.APIKey)

	require.NoError(t, c.ApplyProfile("CLOUD"))
	assert.Equal(t, "cloud", c.SelectedProfile)
	assert.Equal(t, "https://api.example.com", c.Endpoint)
	assert.Equal(t, "/openai/v1/chat/completions", c.APIPath)
	assert.Equal(t, "sk-cloud", c.APIKey)

	assert.Error(t, c.ApplyProfile("missing"))
}

func TestApplyPreset(t *testing.T) {
	c := Defaults()
	c.PromptPreset = "strict"
	require.NoError(t, c.ApplyPreset())
	assert.Equal(t, PresetStrict, c.Prompt)

	c.PromptPreset = "bogus"
	assert.Error(t, c.ApplyPreset())
	assert.Equal(t, []string{"default", "json_format", "strict"}, PresetNames())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"engine", func(c *Config) { c.Engine = "tesseract" }},
		{"endpoint", func(c *Config) { c.Endpoint = " " }},
		{"model", func(c *Config) { c.Model = "" }},
		{"timeout", func(c *Config) { c.TimeoutSec = -1 }},
		{"sample interval", func(c *Config) { c.SampleIntervalMs = 0 }},
		{"min duration", func(c *Config) { c.MinDurationMs = -1 }},
		{"max width", func(c *Config) { c.MaxImageWidth = -5 }},
		{"region", func(c *Config) { c.Region = "1,2,3" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"preset", func(c *Config) { c.PromptPreset = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := Defaults()
	c.Engine = EngineDummy
	c.Model = ""
	assert.NoError(t, c.Validate())
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = ParseRegion(" 10, 20 ,300,40")
	require.NoError(t, err)
	assert.Equal(t, &types.Region{X: 10, Y: 20, Width: 300, Height: 40}, r)

	r, err = ParseRegion("-5,-1,0,10")
	require.NoError(t, err)
	assert.Equal(t, &types.Region{X: -5, Y: -1, Width: 0, Height: 10}, r)

	for _, bad := range []string{"a,b,c,d", "1,2,3", "1,2,3,4,5", "1.5,0,10,10"} {
		_, err := ParseRegion(bad)
		assert.Error(t, err, bad)
	}
}
