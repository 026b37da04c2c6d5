package intercom

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/pkg/session"
)

type createChannelRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type subscribeRequest struct {
	ChannelName string `json:"channelName"`
	Password    string `json:"password"`
}

type announceRequest struct {
	ChannelName  string `json:"channelName"`
	Password     string `json:"password"`
	TicketNumber string `json:"ticketNumber"`
	RoomNumber   string `json:"roomNumber"`
	Language     string `json:"language,omitempty"`
}

// Handle returns the /api sub-router. The SSE endpoint lives outside it,
// mounted directly at /events via Events.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/channels", s.listChannels)
	r.Post("/channels", s.createChannel)
	r.Post("/subscribe", s.subscribe)
	r.Post("/unsubscribe", s.unsubscribe)
	r.Post("/announce", s.announce)

	return r
}

func (s *Service) listChannels(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, "", s.Channels())
}

func (s *Service) createChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.Error(w, err, "channel name and password are required")
		return
	}

	if err := s.CreateChannel(r.Context(), req.Name, req.Password); err != nil {
		core.Error(w, err, createChannelErrorMessage(err, req.Name))
		return
	}

	core.JSON(w, http.StatusCreated, "channel "+req.Name+" created", nil)
}

func createChannelErrorMessage(err error, name string) string {
	switch err {
	case core.ErrConflict:
		return "channel name " + name + " is already taken"
	case core.ErrBadRequest:
		return "channel name and password are required"
	default:
		return ""
	}
}

func (s *Service) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.Error(w, err)
		return
	}

	sess := session.MustFromContext(r.Context())
	if err := s.Subscribe(r.Context(), sess, req.ChannelName, req.Password); err != nil {
		core.Error(w, err, subscribeErrorMessage(err, req.ChannelName))
		return
	}

	core.JSON(w, http.StatusOK, "subscribed to channel "+req.ChannelName, nil)
}

func subscribeErrorMessage(err error, name string) string {
	switch err {
	case core.ErrNotFound:
		return "channel " + name + " not found"
	case core.ErrUnauthorized:
		return "password incorrect"
	default:
		return ""
	}
}

func (s *Service) unsubscribe(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	if err := s.Unsubscribe(r.Context(), sess); err != nil {
		core.Error(w, err, "no active channel subscription")
		return
	}

	core.JSON(w, http.StatusOK, "unsubscribed", nil)
}

func (s *Service) announce(w http.ResponseWriter, r *http.Request) {
	var req announceRequest
	// Malformed bodies fall through with empty fields: channel lookup and
	// password check still run first, so a bad password is reported as 401
	// even when the body was not valid JSON.
	_ = core.DecodeJSON(r, &req)

	_, err := s.Announce(r.Context(), AnnounceInput{
		Channel:      req.ChannelName,
		Password:     req.Password,
		TicketNumber: req.TicketNumber,
		RoomNumber:   req.RoomNumber,
		Language:     req.Language,
	})
	if err != nil {
		core.Error(w, err, announceErrorMessage(err, req.ChannelName))
		return
	}

	core.JSON(w, http.StatusOK, "announcement sent", nil)
}

func announceErrorMessage(err error, name string) string {
	switch err {
	case core.ErrNotFound:
		return "channel " + name + " not found"
	case core.ErrUnauthorized:
		return "password incorrect"
	case core.ErrBadRequest:
		return "ticket and room numbers are required"
	default:
		return ""
	}
}
