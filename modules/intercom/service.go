package intercom

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/pkg/broadcast"
	"github.com/dmitrymomot/callbell/pkg/channelstore"
	"github.com/dmitrymomot/callbell/pkg/logger"
	"github.com/dmitrymomot/callbell/pkg/session"
)

// Announcement is the payload delivered to every subscriber of a channel
// when an operator calls a ticket. Voice carries the synthesis profile the
// receiver should use to read the announcement aloud.
type Announcement struct {
	TicketNumber string                    `json:"ticketNumber"`
	RoomNumber   string                    `json:"roomNumber"`
	Language     string                    `json:"language"`
	Voice        channelstore.VoiceProfile `json:"voice"`
}

// AnnounceInput carries one announce request through validation.
type AnnounceInput struct {
	Channel      string
	Password     string
	TicketNumber string
	RoomNumber   string
	Language     string
}

// Service implements channel subscription and announcement dispatch. All
// validation errors come back as core.HTTPError values so handlers can
// hand them straight to the response helpers.
type Service struct {
	cfg      Config
	channels *channelstore.Store
	sessions *session.Manager
	registry *broadcast.Registry
	log      *slog.Logger
}

// NewService wires the intercom service.
func NewService(
	cfg Config,
	channels *channelstore.Store,
	sessions *session.Manager,
	registry *broadcast.Registry,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		cfg:      cfg,
		channels: channels,
		sessions: sessions,
		registry: registry,
		log:      log,
	}
}

// Channels lists the names of all registered channels.
func (s *Service) Channels() []string {
	return s.channels.Names()
}

// CreateChannel registers a new channel with defaults for everything but
// name and password.
func (s *Service) CreateChannel(ctx context.Context, name, password string) error {
	if name == "" || password == "" {
		return core.ErrBadRequest
	}

	err := s.channels.Create(ctx, channelstore.Channel{Name: name, Password: password})
	switch {
	case errors.Is(err, channelstore.ErrChannelExists):
		return core.ErrConflict
	case errors.Is(err, channelstore.ErrInvalidChannel):
		return core.ErrBadRequest
	case err != nil:
		return err
	}

	s.log.InfoContext(ctx, "channel created", logger.Channel(name))
	return nil
}

// Subscribe validates the channel credentials and binds the session to the
// channel. A failed password check clears any existing binding before
// returning, so a client cannot keep an old subscription alive by
// re-subscribing with bad credentials.
func (s *Service) Subscribe(ctx context.Context, sess *session.Session, name, password string) error {
	channel, err := s.channels.FindByName(name)
	if errors.Is(err, channelstore.ErrChannelNotFound) {
		return core.ErrNotFound
	}

	if password != channel.Password {
		sess.Unbind()
		if err := s.sessions.Update(ctx, sess); err != nil {
			s.log.ErrorContext(ctx, "failed to clear session binding", logger.Error(err))
		}
		s.log.WarnContext(ctx, "subscribe rejected, password mismatch",
			logger.Channel(name),
			logger.SessionID(sess.ID.String()),
		)
		return core.ErrUnauthorized
	}

	sess.Bind(name)
	if err := s.sessions.Update(ctx, sess); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "session subscribed",
		logger.Channel(name),
		logger.SessionID(sess.ID.String()),
	)
	return nil
}

// Unsubscribe clears the session's channel binding. Open push connections
// are left alone: they hold their channel from connection-open time and
// drain naturally when the client disconnects.
func (s *Service) Unsubscribe(ctx context.Context, sess *session.Session) error {
	if !sess.Subscribed() {
		return core.ErrBadRequest
	}

	channel := sess.Channel
	sess.Unbind()
	if err := s.sessions.Update(ctx, sess); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "session unsubscribed",
		logger.Channel(channel),
		logger.SessionID(sess.ID.String()),
	)
	return nil
}

// Announce validates the request and broadcasts a play-announcement event
// to every subscriber of the channel. Checks run in a fixed order: channel
// existence, then password, then field presence, so a wrong password on an
// otherwise incomplete request still reads as unauthorized. Zero delivered
// subscribers is a success.
func (s *Service) Announce(ctx context.Context, in AnnounceInput) (int, error) {
	channel, err := s.channels.FindByName(in.Channel)
	if errors.Is(err, channelstore.ErrChannelNotFound) {
		return 0, core.ErrNotFound
	}

	if in.Password != channel.Password {
		s.log.WarnContext(ctx, "announce rejected, password mismatch", logger.Channel(in.Channel))
		return 0, core.ErrUnauthorized
	}

	if in.TicketNumber == "" || in.RoomNumber == "" {
		return 0, core.ErrBadRequest
	}

	language := in.Language
	if language == "" {
		language = channelstore.DefaultLanguage
	}

	event := Announcement{
		TicketNumber: in.TicketNumber,
		RoomNumber:   in.RoomNumber,
		Language:     language,
		Voice:        channel.Voice(language),
	}

	delivered := s.registry.Broadcast(ctx, in.Channel, "play-announcement", event)

	s.log.InfoContext(ctx, "announcement dispatched",
		logger.Channel(in.Channel),
		logger.TicketNumber(in.TicketNumber),
		logger.RoomNumber(in.RoomNumber),
		logger.Language(language),
		logger.Subscribers(delivered),
	)
	return delivered, nil
}
