package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/callbell/pkg/logger"
)

// Sink is a send-capable handle to one receiver's open push connection.
// The connection handler owns the sink; the registry holds a non-owning
// reference for fan-out only. Implementations must be safe for concurrent
// use: broadcasts and the connection's own keep-alive writes race on the
// same underlying stream.
type Sink interface {
	// Send delivers one named event with a pre-serialized JSON payload.
	Send(event string, data []byte) error
}

// subscriber pairs a registered sink with its identifiers. The handle is
// unique per physical connection; the session ID is not, since one session
// may open several connections.
type subscriber struct {
	handle    uuid.UUID
	sessionID string
	sink      Sink
}

// Registry is the in-memory fan-out table mapping channel name to the
// ordered list of currently open push connections. Entries exist iff the
// corresponding connection is open and registered; a channel key with no
// subscribers is removed entirely, so presence of a key implies a non-empty
// list.
type Registry struct {
	mu       sync.RWMutex
	channels map[string][]*subscriber
	log      *slog.Logger
}

// NewRegistry creates an empty registry. The logger may be nil.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		channels: make(map[string][]*subscriber),
		log:      log,
	}
}

// Register appends the sink to the channel's subscriber list, creating the
// list on first registration, and returns the connection handle used for
// deregistration. Duplicate session IDs are allowed; each registration is a
// distinct connection and each receives broadcasts independently.
func (r *Registry) Register(channel, sessionID string, sink Sink) uuid.UUID {
	sub := &subscriber{
		handle:    uuid.New(),
		sessionID: sessionID,
		sink:      sink,
	}

	r.mu.Lock()
	r.channels[channel] = append(r.channels[channel], sub)
	count := len(r.channels[channel])
	r.mu.Unlock()

	r.log.Info("subscriber registered",
		logger.Channel(channel),
		logger.SessionID(sessionID),
		logger.ConnectionID(sub.handle),
		logger.Subscribers(count),
	)
	return sub.handle
}

// Deregister removes every entry in the channel with the given connection
// handle and drops the channel key when the list empties. Unknown channels
// or handles are a no-op: disconnect detection can race with a registration
// that never completed.
func (r *Registry) Deregister(channel string, handle uuid.UUID) {
	r.remove(channel, func(s *subscriber) bool { return s.handle == handle })
}

// DeregisterSession removes every entry in the channel owned by the given
// session, regardless of the connection it arrived on.
func (r *Registry) DeregisterSession(channel, sessionID string) {
	r.remove(channel, func(s *subscriber) bool { return s.sessionID == sessionID })
}

func (r *Registry) remove(channel string, match func(*subscriber) bool) {
	r.mu.Lock()
	subs, ok := r.channels[channel]
	if !ok {
		r.mu.Unlock()
		return
	}

	kept := subs[:0]
	for _, s := range subs {
		if !match(s) {
			kept = append(kept, s)
		}
	}

	removed := len(subs) - len(kept)
	if len(kept) == 0 {
		delete(r.channels, channel)
	} else {
		r.channels[channel] = kept
	}
	count := len(kept)
	r.mu.Unlock()

	if removed > 0 {
		r.log.Info("subscriber deregistered",
			logger.Channel(channel),
			logger.Subscribers(count),
		)
	}
}

// Broadcast serializes the payload once and writes the named event to every
// subscriber currently registered in the channel, in registration order.
// The subscriber list is snapshotted up front, so connections registering
// mid-broadcast do not receive this event. A failed sink write is logged
// and skipped; one dead connection never blocks delivery to the rest.
// Broadcasting to a channel with no subscribers is a normal no-op.
// Returns the number of successful deliveries.
func (r *Registry) Broadcast(ctx context.Context, channel, event string, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.ErrorContext(ctx, "broadcast payload not serializable",
			logger.Channel(channel),
			logger.Event(event),
			logger.Error(err),
		)
		return 0
	}

	r.mu.RLock()
	subs, ok := r.channels[channel]
	snapshot := make([]*subscriber, len(subs))
	copy(snapshot, subs)
	r.mu.RUnlock()

	if !ok {
		r.log.InfoContext(ctx, "broadcast to channel with no subscribers",
			logger.Channel(channel),
			logger.Event(event),
		)
		return 0
	}

	delivered := 0
	for _, sub := range snapshot {
		if err := sub.sink.Send(event, data); err != nil {
			r.log.WarnContext(ctx, "event delivery failed",
				logger.Channel(channel),
				logger.Event(event),
				logger.ConnectionID(sub.handle),
				logger.Error(err),
			)
			continue
		}
		delivered++
	}

	r.log.InfoContext(ctx, "event broadcast",
		logger.Channel(channel),
		logger.Event(event),
		logger.Subscribers(delivered),
	)
	return delivered
}

// SubscriberCount returns the number of open connections registered in the
// channel.
func (r *Registry) SubscriberCount(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}

// Channels returns the names of channels with at least one subscriber.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}
