package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/pkg/channelstore"
	"github.com/dmitrymomot/callbell/pkg/logger"
	"github.com/dmitrymomot/callbell/pkg/session"
)

// Service gates channel management behind an authenticated admin session.
type Service struct {
	username     string
	passwordHash []byte
	channels     *channelstore.Store
	sessions     *session.Manager
	log          *slog.Logger
}

// NewService wires the admin service, hashing the configured password when
// no pre-computed hash was provided.
func NewService(
	cfg Config,
	channels *channelstore.Store,
	sessions *session.Manager,
	log *slog.Logger,
) (*Service, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		username:     cfg.Username,
		passwordHash: hash,
		channels:     channels,
		sessions:     sessions,
		log:          log,
	}, nil
}

// Login verifies the credentials and marks the session as admin.
func (s *Service) Login(ctx context.Context, sess *session.Session, username, password string) error {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))

	if !usernameOK || passwordErr != nil {
		s.log.WarnContext(ctx, "admin login rejected",
			slog.String("username", username),
			logger.SessionID(sess.ID.String()),
		)
		return core.ErrUnauthorized
	}

	sess.Admin = true
	if err := s.sessions.Update(ctx, sess); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "admin logged in", logger.SessionID(sess.ID.String()))
	return nil
}

// Authenticated reports whether the session holds admin rights.
func (s *Service) Authenticated(sess *session.Session) bool {
	return sess != nil && sess.Admin
}

// ReplaceChannels swaps the whole channel list atomically.
func (s *Service) ReplaceChannels(ctx context.Context, channels []channelstore.Channel) error {
	err := s.channels.ReplaceAll(ctx, channels)
	switch {
	case errors.Is(err, channelstore.ErrChannelExists),
		errors.Is(err, channelstore.ErrInvalidChannel):
		return core.ErrBadRequest
	case err != nil:
		return err
	}
	return nil
}

// DeleteChannel removes the channel at the given list position.
func (s *Service) DeleteChannel(ctx context.Context, index int) error {
	if _, err := s.channels.DeleteAt(ctx, index); err != nil {
		if errors.Is(err, channelstore.ErrChannelNotFound) {
			return core.ErrNotFound
		}
		return err
	}
	return nil
}
