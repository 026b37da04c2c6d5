package voice

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/pkg/voicevox"
)

// Handle returns the /api/voicevox sub-router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/settings", s.getSettings)
	r.Post("/settings", s.postSettings)
	r.Get("/audio", s.getAudio)

	return r
}

func (s *Service) getSettings(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, "", s.Settings(r.Context()))
}

func (s *Service) postSettings(w http.ResponseWriter, r *http.Request) {
	var req voicevox.Settings
	if err := core.DecodeJSON(r, &req); err != nil {
		core.Error(w, err, "invalid speakerId, pitch, or speedScale")
		return
	}

	if err := s.UpdateSettings(r.Context(), req); err != nil {
		core.Error(w, err, "invalid speakerId, pitch, or speedScale")
		return
	}

	core.JSON(w, http.StatusOK, "settings updated", s.settings.Current())
}

func (s *Service) getAudio(w http.ResponseWriter, r *http.Request) {
	audio, err := s.Synthesize(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		core.Error(w, err, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
