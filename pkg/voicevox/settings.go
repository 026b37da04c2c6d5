package voicevox

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/dmitrymomot/callbell/pkg/logger"
)

// Settings are the engine-wide synthesis defaults, adjustable at runtime
// through the voice settings endpoints and persisted to a small JSON file.
type Settings struct {
	SpeakerID  int     `json:"speakerId"`
	Pitch      float64 `json:"pitch"`
	SpeedScale float64 `json:"speedScale"`
}

// SpeedScale bounds accepted by UpdateSettings.
const (
	MinSpeedScale = 0.5
	MaxSpeedScale = 2.0
)

// SettingsManager holds the current synthesis settings and persists changes.
// A missing settings file starts from the configured defaults and writes
// the file; a corrupt file is logged and ignored.
type SettingsManager struct {
	mu       sync.RWMutex
	path     string
	settings Settings
	log      *slog.Logger
}

// NewSettingsManager loads settings from cfg.SettingsPath, seeding from the
// config defaults when the file does not exist yet.
func NewSettingsManager(cfg Config, log *slog.Logger) *SettingsManager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	m := &SettingsManager{
		path: cfg.SettingsPath,
		settings: Settings{
			SpeakerID:  cfg.DefaultSpeakerID,
			Pitch:      cfg.DefaultPitch,
			SpeedScale: cfg.DefaultSpeedScale,
		},
		log: log,
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := m.persist(); err != nil {
				log.Error("failed to create settings file", logger.Error(err))
			}
		} else {
			log.Error("failed to read settings file", logger.Error(err))
		}
		return m
	}

	var saved Settings
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Error("corrupt settings file, using defaults", logger.Error(err))
		return m
	}

	if saved.SpeedScale == 0 {
		saved.SpeedScale = cfg.DefaultSpeedScale
	}
	m.settings = saved
	log.Info("voice settings loaded",
		slog.Int("speaker_id", saved.SpeakerID),
		slog.Float64("pitch", saved.Pitch),
		slog.Float64("speed_scale", saved.SpeedScale),
	)
	return m
}

// Current returns a copy of the active settings.
func (m *SettingsManager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Update validates, applies, and persists new settings.
func (m *SettingsManager) Update(s Settings) error {
	if s.SpeedScale < MinSpeedScale || s.SpeedScale > MaxSpeedScale {
		return ErrInvalidSettings
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = s
	if err := m.persist(); err != nil {
		return err
	}

	m.log.Info("voice settings updated",
		slog.Int("speaker_id", s.SpeakerID),
		slog.Float64("pitch", s.Pitch),
		slog.Float64("speed_scale", s.SpeedScale),
	)
	return nil
}

// persist writes the settings file. Callers hold the write lock (or are
// still single-threaded during construction).
func (m *SettingsManager) persist() error {
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}
