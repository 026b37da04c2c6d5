package intercom_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/callbell/core"
	"github.com/dmitrymomot/callbell/modules/intercom"
	"github.com/dmitrymomot/callbell/pkg/broadcast"
	"github.com/dmitrymomot/callbell/pkg/channelstore"
	"github.com/dmitrymomot/callbell/pkg/session"
)

type capturedEvent struct {
	Name string
	Data []byte
}

// captureSink records everything broadcast to it.
type captureSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (c *captureSink) Send(event string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, capturedEvent{Name: event, Data: data})
	return nil
}

func (c *captureSink) all() []capturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capturedEvent(nil), c.events...)
}

type testEnv struct {
	svc      *intercom.Service
	store    *channelstore.Store
	registry *broadcast.Registry
	sessions *session.Manager
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	store := channelstore.New(filepath.Join(t.TempDir(), "channels.json"), log)
	registry := broadcast.NewRegistry(log)
	sessions := session.New()

	require.NoError(t, store.Create(context.Background(), channelstore.Channel{
		Name:      "ClinicA",
		Password:  "secret",
		RoomCount: 3,
	}))

	return testEnv{
		svc:      intercom.NewService(intercom.Config{}, store, sessions, registry, log),
		store:    store,
		registry: registry,
		sessions: sessions,
	}
}

func (e testEnv) newSession(t *testing.T) *session.Session {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := e.sessions.Ensure(context.Background(), rec, req)
	require.NoError(t, err)
	return sess
}

func TestServiceSubscribe(t *testing.T) {
	t.Parallel()

	t.Run("binds session on success", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sess := env.newSession(t)

		require.NoError(t, env.svc.Subscribe(context.Background(), sess, "ClinicA", "secret"))
		assert.Equal(t, "ClinicA", sess.Channel)
		assert.True(t, sess.Subscribed())
	})

	t.Run("unknown channel", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sess := env.newSession(t)

		err := env.svc.Subscribe(context.Background(), sess, "Nowhere", "secret")
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.False(t, sess.Subscribed())
	})

	t.Run("wrong password clears existing binding", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sess := env.newSession(t)
		require.NoError(t, env.svc.Subscribe(context.Background(), sess, "ClinicA", "secret"))

		err := env.svc.Subscribe(context.Background(), sess, "ClinicA", "wrong")
		assert.ErrorIs(t, err, core.ErrUnauthorized)
		assert.False(t, sess.Subscribed())
	})

	t.Run("switching channels replaces the binding", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		require.NoError(t, env.store.Create(context.Background(), channelstore.Channel{
			Name: "ClinicB", Password: "hunter2",
		}))
		sess := env.newSession(t)

		require.NoError(t, env.svc.Subscribe(context.Background(), sess, "ClinicA", "secret"))
		require.NoError(t, env.svc.Subscribe(context.Background(), sess, "ClinicB", "hunter2"))
		assert.Equal(t, "ClinicB", sess.Channel)
	})
}

func TestServiceUnsubscribe(t *testing.T) {
	t.Parallel()

	t.Run("clears the binding", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sess := env.newSession(t)
		require.NoError(t, env.svc.Subscribe(context.Background(), sess, "ClinicA", "secret"))

		require.NoError(t, env.svc.Unsubscribe(context.Background(), sess))
		assert.False(t, sess.Subscribed())
	})

	t.Run("nothing to unsubscribe", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sess := env.newSession(t)

		err := env.svc.Unsubscribe(context.Background(), sess)
		assert.ErrorIs(t, err, core.ErrBadRequest)
	})

	t.Run("leaves registry entries alone", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sess := env.newSession(t)
		require.NoError(t, env.svc.Subscribe(context.Background(), sess, "ClinicA", "secret"))

		sink := &captureSink{}
		env.registry.Register("ClinicA", sess.ID.String(), sink)

		require.NoError(t, env.svc.Unsubscribe(context.Background(), sess))
		assert.Equal(t, 1, env.registry.SubscriberCount("ClinicA"))

		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "secret", TicketNumber: "7", RoomNumber: "1",
		})
		require.NoError(t, err)
		assert.Len(t, sink.all(), 1)
	})
}

func TestServiceAnnounce(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every subscriber", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		first, second := &captureSink{}, &captureSink{}
		env.registry.Register("ClinicA", "s1", first)
		env.registry.Register("ClinicA", "s2", second)

		delivered, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "secret", TicketNumber: "42", RoomNumber: "2",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, delivered)

		for _, sink := range []*captureSink{first, second} {
			events := sink.all()
			require.Len(t, events, 1)
			assert.Equal(t, "play-announcement", events[0].Name)

			var payload intercom.Announcement
			require.NoError(t, json.Unmarshal(events[0].Data, &payload))
			assert.Equal(t, "42", payload.TicketNumber)
			assert.Equal(t, "2", payload.RoomNumber)
			assert.Equal(t, channelstore.DefaultLanguage, payload.Language)
			assert.Equal(t, channelstore.DefaultVoice, payload.Voice)
		}
	})

	t.Run("zero subscribers is still success", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		delivered, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "secret", TicketNumber: "1", RoomNumber: "1",
		})
		require.NoError(t, err)
		assert.Zero(t, delivered)
	})

	t.Run("unknown channel", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "Nowhere", Password: "secret", TicketNumber: "1", RoomNumber: "1",
		})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("password checked before field validation", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "wrong",
		})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "secret", TicketNumber: "42",
		})
		assert.ErrorIs(t, err, core.ErrBadRequest)
	})

	t.Run("failed announce reaches nobody", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		sink := &captureSink{}
		env.registry.Register("ClinicA", "s1", sink)

		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "wrong", TicketNumber: "42", RoomNumber: "2",
		})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
		assert.Empty(t, sink.all())
	})

	t.Run("resolves per-language voice config", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		english := channelstore.VoiceProfile{SpeakerID: 8, Pitch: 0.2, SpeedScale: 1.1}
		require.NoError(t, env.store.Create(context.Background(), channelstore.Channel{
			Name:        "ClinicB",
			Password:    "hunter2",
			VoiceConfig: map[string]channelstore.VoiceProfile{"english": english},
		}))

		sink := &captureSink{}
		env.registry.Register("ClinicB", "s1", sink)

		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicB", Password: "hunter2",
			TicketNumber: "5", RoomNumber: "3", Language: "english",
		})
		require.NoError(t, err)

		events := sink.all()
		require.Len(t, events, 1)

		var payload intercom.Announcement
		require.NoError(t, json.Unmarshal(events[0].Data, &payload))
		assert.Equal(t, "english", payload.Language)
		assert.Equal(t, english, payload.Voice)
	})

	t.Run("does not leak across channels", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		require.NoError(t, env.store.Create(context.Background(), channelstore.Channel{
			Name: "ClinicB", Password: "hunter2",
		}))

		a, b := &captureSink{}, &captureSink{}
		env.registry.Register("ClinicA", "s1", a)
		env.registry.Register("ClinicB", "s2", b)

		_, err := env.svc.Announce(context.Background(), intercom.AnnounceInput{
			Channel: "ClinicA", Password: "secret", TicketNumber: "1", RoomNumber: "1",
		})
		require.NoError(t, err)
		assert.Len(t, a.all(), 1)
		assert.Empty(t, b.all())
	})
}

func TestServiceCreateChannel(t *testing.T) {
	t.Parallel()

	t.Run("creates with defaults", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		require.NoError(t, env.svc.CreateChannel(context.Background(), "ClinicB", "hunter2"))

		ch, err := env.store.FindByName("ClinicB")
		require.NoError(t, err)
		assert.Equal(t, channelstore.DefaultRoomCount, ch.RoomCount)
		assert.True(t, ch.UseReception)
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		err := env.svc.CreateChannel(context.Background(), "ClinicA", "whatever")
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		assert.ErrorIs(t, env.svc.CreateChannel(context.Background(), "", "pw"), core.ErrBadRequest)
		assert.ErrorIs(t, env.svc.CreateChannel(context.Background(), "ClinicB", ""), core.ErrBadRequest)
	})
}
