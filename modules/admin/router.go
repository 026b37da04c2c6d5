package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/pkg/channelstore"
	"github.com/dmitrymomot/callbell/pkg/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Handle returns the /admin sub-router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", s.login)
	r.Route("/api", func(api chi.Router) {
		api.Get("/auth-status", s.authStatus)

		api.Group(func(gated chi.Router) {
			gated.Use(s.requireAdmin)
			gated.Put("/channels", s.replaceChannels)
			gated.Delete("/channels/{index}", s.deleteChannel)
		})
	})

	return r
}

// requireAdmin rejects requests whose session has not passed Login.
func (s *Service) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok || !s.Authenticated(sess) {
			core.Error(w, core.ErrUnauthorized, "admin authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.Error(w, err)
		return
	}

	sess := session.MustFromContext(r.Context())
	if err := s.Login(r.Context(), sess, req.Username, req.Password); err != nil {
		core.Error(w, err, "invalid credentials")
		return
	}

	core.JSON(w, http.StatusOK, "login successful", nil)
}

func (s *Service) authStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	core.JSON(w, http.StatusOK, "", authStatusResponse{Authenticated: s.Authenticated(sess)})
}

func (s *Service) replaceChannels(w http.ResponseWriter, r *http.Request) {
	var channels []channelstore.Channel
	if err := core.DecodeJSON(r, &channels); err != nil {
		core.Error(w, err)
		return
	}

	if err := s.ReplaceChannels(r.Context(), channels); err != nil {
		core.Error(w, err, "invalid channel list")
		return
	}

	core.JSON(w, http.StatusOK, "channel list saved", nil)
}

func (s *Service) deleteChannel(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		core.Error(w, core.ErrBadRequest, "index must be a number")
		return
	}

	if err := s.DeleteChannel(r.Context(), index); err != nil {
		core.Error(w, err, "channel not found")
		return
	}

	core.JSON(w, http.StatusOK, "channel deleted", nil)
}
