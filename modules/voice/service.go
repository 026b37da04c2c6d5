package voice

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/pkg/logger"
	"github.com/dmitrymomot/callbell/pkg/voicevox"
)

// SettingsView is the payload of GET /settings: the active synthesis
// parameters plus the engine's selectable voices.
type SettingsView struct {
	CurrentSpeakerID  int                `json:"currentSpeakerId"`
	CurrentPitch      float64            `json:"currentPitch"`
	CurrentSpeedScale float64            `json:"currentSpeedScale"`
	AvailableSpeakers []voicevox.Speaker `json:"availableSpeakers"`
}

// Service exposes the speech engine settings and on-demand synthesis.
type Service struct {
	client   *voicevox.Client
	settings *voicevox.SettingsManager
	log      *slog.Logger
}

// NewService wires the voice service.
func NewService(client *voicevox.Client, settings *voicevox.SettingsManager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, settings: settings, log: log}
}

// Settings returns the active parameters and the available speakers. An
// unreachable engine degrades to an empty speaker list rather than an
// error: the settings themselves are served locally.
func (s *Service) Settings(ctx context.Context) SettingsView {
	speakers, err := s.client.Speakers(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "speaker list unavailable", logger.Error(err))
		speakers = nil
	}

	current := s.settings.Current()
	return SettingsView{
		CurrentSpeakerID:  current.SpeakerID,
		CurrentPitch:      current.Pitch,
		CurrentSpeedScale: current.SpeedScale,
		AvailableSpeakers: speakers,
	}
}

// UpdateSettings validates and persists new synthesis parameters. The
// speaker must appear in the engine's style list, unless the list cannot
// be fetched at all, in which case the ID is taken on trust.
func (s *Service) UpdateSettings(ctx context.Context, next voicevox.Settings) error {
	speakers, err := s.client.Speakers(ctx)
	if err == nil && len(speakers) > 0 && !speakerKnown(speakers, next.SpeakerID) {
		return core.ErrBadRequest
	}

	if err := s.settings.Update(next); err != nil {
		return core.ErrBadRequest
	}
	return nil
}

// Synthesize produces WAV audio for the text using the active settings.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, core.ErrBadRequest
	}

	current := s.settings.Current()
	audio, err := s.client.Synthesize(ctx, text, current.SpeakerID, current.Pitch, current.SpeedScale)
	if err != nil {
		s.log.ErrorContext(ctx, "synthesis failed", logger.Error(err))
		return nil, core.ErrBadGateway
	}
	return audio, nil
}

func speakerKnown(speakers []voicevox.Speaker, id int) bool {
	for _, sp := range speakers {
		for _, st := range sp.Styles {
			if st.ID == id {
				return true
			}
		}
	}
	return false
}
