// Package config loads scene-nav settings from an optional file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
)

// EnvPrefix prefixes every environment override, e.g. SCENENAV_WEB_ADDR.
const EnvPrefix = "SCENENAV"

// Config is the full service configuration.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	LogFile  string `mapstructure:"logFile"`

	Web   WebConfig   `mapstructure:"web"`
	Path  PathConfig  `mapstructure:"path"`
	TTS   TTSConfig   `mapstructure:"tts"`
	Guide GuideConfig `mapstructure:"guide"`
}

// WebConfig holds the HTTP server settings.
type WebConfig struct {
	Addr           string        `mapstructure:"addr"`
	StatusInterval time.Duration `mapstructure:"statusInterval"`
}

// PathConfig points at the navigation agent's path service.
type PathConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TTSConfig holds speech synthesis credentials.
type TTSConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AppID     string `mapstructure:"appId"`
	APIKey    string `mapstructure:"apiKey"`
	APISecret string `mapstructure:"apiSecret"`
	BaseURL   string `mapstructure:"baseUrl"`
	Voice     string `mapstructure:"voice"`

	// FallbackVoice is tried when the primary voice fails.
	FallbackVoice string        `mapstructure:"fallbackVoice"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// GuideConfig mirrors navigation.Config.
type GuideConfig struct {
	StepLength            float64       `mapstructure:"stepLength"`
	StraightMaxDeg        float64       `mapstructure:"straightMaxDeg"`
	DirectionThresholdDeg float64       `mapstructure:"directionThresholdDeg"`
	ReachDistance         float64       `mapstructure:"reachDistance"`
	MaxDeviation          float64       `mapstructure:"maxDeviation"`
	CheckInterval         time.Duration `mapstructure:"checkInterval"`
	GracePeriod           time.Duration `mapstructure:"gracePeriod"`
	Cooldown              time.Duration `mapstructure:"cooldown"`
	TargetStandoff        float64       `mapstructure:"targetStandoff"`
	QueryTimeout          time.Duration `mapstructure:"queryTimeout"`
	TickInterval          time.Duration `mapstructure:"tickInterval"`
}

func setDefaults(v *viper.Viper) {
	nav := navigation.DefaultConfig()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")

	v.SetDefault("web.addr", ":8080")
	v.SetDefault("web.statusInterval", time.Second)

	v.SetDefault("path.url", "http://localhost:5005")
	v.SetDefault("path.timeout", nav.QueryTimeout)

	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.appId", "")
	v.SetDefault("tts.apiKey", "")
	v.SetDefault("tts.apiSecret", "")
	v.SetDefault("tts.baseUrl", "wss://tts-api.xfyun.cn/v2/tts")
	v.SetDefault("tts.voice", "xiaoyan")
	v.SetDefault("tts.fallbackVoice", "")
	v.SetDefault("tts.timeout", 10*time.Second)

	v.SetDefault("guide.stepLength", nav.StepLength)
	v.SetDefault("guide.straightMaxDeg", nav.StraightMaxDeg)
	v.SetDefault("guide.directionThresholdDeg", nav.DirectionThresholdDeg)
	v.SetDefault("guide.reachDistance", nav.ReachDistance)
	v.SetDefault("guide.maxDeviation", nav.MaxDeviation)
	v.SetDefault("guide.checkInterval", nav.CheckInterval)
	v.SetDefault("guide.gracePeriod", nav.GracePeriod)
	v.SetDefault("guide.cooldown", nav.Cooldown)
	v.SetDefault("guide.targetStandoff", nav.TargetStandoff)
	v.SetDefault("guide.queryTimeout", nav.QueryTimeout)
	v.SetDefault("guide.tickInterval", nav.TickInterval)
}

// Load reads configuration from path (JSON, YAML or TOML by extension) over
// the defaults, then applies SCENENAV_* environment overrides. An empty path
// uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	g := c.Guide
	var errs []error
	if g.StepLength <= 0 {
		errs = append(errs, errors.New("guide.stepLength must be positive"))
	}
	if g.ReachDistance <= 0 {
		errs = append(errs, errors.New("guide.reachDistance must be positive"))
	}
	if g.MaxDeviation <= 0 {
		errs = append(errs, errors.New("guide.maxDeviation must be positive"))
	}
	if g.TickInterval <= 0 {
		errs = append(errs, errors.New("guide.tickInterval must be positive"))
	}
	if g.QueryTimeout <= 0 {
		errs = append(errs, errors.New("guide.queryTimeout must be positive"))
	}
	if g.GracePeriod < 0 || g.Cooldown < 0 || g.CheckInterval < 0 {
		errs = append(errs, errors.New("guide durations must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Navigation converts the guide section into the engine configuration.
func (c *Config) Navigation() navigation.Config {
	g := c.Guide
	return navigation.Config{
		StepLength:            g.StepLength,
		StraightMaxDeg:        g.StraightMaxDeg,
		DirectionThresholdDeg: g.DirectionThresholdDeg,
		ReachDistance:         g.ReachDistance,
		MaxDeviation:          g.MaxDeviation,
		CheckInterval:         g.CheckInterval,
		GracePeriod:           g.GracePeriod,
		Cooldown:              g.Cooldown,
		TargetStandoff:        g.TargetStandoff,
		QueryTimeout:          g.QueryTimeout,
		TickInterval:          g.TickInterval,
	}
}

// HasTTSCredentials reports whether speech synthesis can be configured.
func (c *Config) HasTTSCredentials() bool {
	return c.TTS.Enabled && c.TTS.AppID != "" && c.TTS.APIKey != "" && c.TTS.APISecret != ""
}
