package voicevox

import "time"

// Config holds VOICEVOX engine client configuration.
type Config struct {
	// BaseURL is the engine's HTTP endpoint.
	BaseURL string `env:"VOICEVOX_URL" envDefault:"http://voicevox_engine:50021"`

	// Disabled makes the client return stub audio instead of calling the
	// engine, for environments without the engine container.
	Disabled bool `env:"DISABLE_VOICEVOX" envDefault:"false"`

	// RequestTimeout bounds each engine request. Synthesis of a long
	// sentence can take several seconds.
	RequestTimeout time.Duration `env:"VOICEVOX_TIMEOUT" envDefault:"30s"`

	// SettingsPath is the location of the persisted synthesis settings.
	SettingsPath string `env:"VOICEVOX_SETTINGS_FILE" envDefault:"settings.json"`

	DefaultSpeakerID  int     `env:"DEFAULT_VOICEVOX_SPEAKER_ID" envDefault:"3"`
	DefaultPitch      float64 `env:"DEFAULT_VOICEVOX_PITCH" envDefault:"0.0"`
	DefaultSpeedScale float64 `env:"DEFAULT_VOICEVOX_SPEED" envDefault:"1.0"`
}
