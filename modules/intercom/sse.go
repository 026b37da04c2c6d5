package intercom

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/callbell/pkg/logger"
	"github.com/dmitrymomot/callbell/pkg/session"
)

// sseSink writes SSE frames to one client connection. Broadcast deliveries
// and heartbeat frames arrive from different goroutines, so every write
// goes through the mutex.
type sseSink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// Send writes one named event frame and flushes it to the client.
func (s *sseSink) Send(event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an inert comment frame. EventSource clients ignore it;
// intermediaries see traffic and keep the connection open.
func (s *sseSink) Comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Events is the push connection endpoint. The session's channel binding is
// read once, here; changing or clearing the binding later does not affect
// a stream that is already open.
func (s *Service) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	sess := session.MustFromContext(ctx)
	sink := &sseSink{w: w, flusher: flusher}

	if !sess.Subscribed() {
		// One-shot terminal rejection: the client must subscribe first and
		// then reconnect. The stream is never registered.
		_ = sink.Send("error", []byte(`{"message":"not subscribed to a channel, reconnect required"}`))
		s.log.WarnContext(ctx, "push connection rejected, no channel binding",
			logger.SessionID(sess.ID.String()),
		)
		return
	}

	channel := sess.Channel
	handle := s.registry.Register(channel, sess.ID.String(), sink)
	defer func() {
		s.registry.Deregister(channel, handle)
		s.log.InfoContext(ctx, "push connection closed",
			logger.Channel(channel),
			logger.ConnectionID(handle),
			logger.Subscribers(s.registry.SubscriberCount(channel)),
		)
	}()

	s.log.InfoContext(ctx, "push connection open",
		logger.Channel(channel),
		logger.SessionID(sess.ID.String()),
		logger.ConnectionID(handle),
		logger.Subscribers(s.registry.SubscriberCount(channel)),
	)

	greeting, _ := json.Marshal(map[string]string{"message": "connected to channel " + channel})
	if err := sink.Send("connected", greeting); err != nil {
		return
	}

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sink.Comment("keep-alive"); err != nil {
				return
			}
		}
	}
}
