// Package config handles loading and validating the server configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the polyvox server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Capability CapabilityConfig `mapstructure:"capability"`
	STT        STTConfig        `mapstructure:"stt"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Resemble   ResembleConfig   `mapstructure:"resemble"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	TempDir string `mapstructure:"temp_dir"`
}

// CapabilityConfig governs lazy capability initialization.
type CapabilityConfig struct {
	// Warmup triggers background initialization of all capabilities at boot.
	Warmup bool `mapstructure:"warmup"`
	// RetryMode is "always" (re-attempt setup on every call after a failure)
	// or "cooldown" (cache the failure for RetryCooldown between attempts).
	RetryMode     string        `mapstructure:"retry_mode"`
	RetryCooldown time.Duration `mapstructure:"retry_cooldown"`
}

// STTConfig configures the speech-to-text collaborator.
type STTConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	// Language is the primary recognition language; AltLanguages enable
	// per-result language detection.
	Language     string   `mapstructure:"language"`
	AltLanguages []string `mapstructure:"alt_languages"`
}

// GeminiConfig configures the dialogue collaborator.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ResembleConfig configures the speech-synthesis collaborator. ProjectUUID
// and VoiceUUID are optional; unset values are discovered from the account.
type ResembleConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	ProjectUUID string `mapstructure:"project_uuid"`
	VoiceUUID   string `mapstructure:"voice_uuid"`
}

// Load reads configuration from defaults, an optional polyvox.yaml, and the
// environment. The credential variables keep their canonical names
// (GEMINI_API_KEY, RESEMBLE_API_KEY, ...) so existing deployments work as is.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.temp_dir", "temp_audio")
	v.SetDefault("capability.warmup", true)
	v.SetDefault("capability.retry_mode", "always")
	v.SetDefault("capability.retry_cooldown", 30*time.Second)
	v.SetDefault("stt.sample_rate", 16000)
	v.SetDefault("stt.language", "en-US")
	v.SetDefault("stt.alt_languages", []string{"es-ES", "fr-FR", "de-DE", "hi-IN"})
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout_seconds", 30)
	v.SetDefault("resemble.base_url", "https://app.resemble.ai/api/v2")

	v.SetConfigName("polyvox")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("POLYVOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Canonical variable names used by existing deployments.
	_ = v.BindEnv("server.port", "POLYVOX_SERVER_PORT", "PORT")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("resemble.api_key", "RESEMBLE_API_KEY")
	_ = v.BindEnv("resemble.project_uuid", "RESEMBLE_PROJECT_UUID")
	_ = v.BindEnv("resemble.voice_uuid", "RESEMBLE_VOICE_UUID")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Capability.RetryMode != "always" && cfg.Capability.RetryMode != "cooldown" {
		return nil, fmt.Errorf("invalid capability.retry_mode %q", cfg.Capability.RetryMode)
	}

	return &cfg, nil
}
