package broadcast_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/callbell/pkg/broadcast"
)

// recordSink captures delivered events in order.
type recordSink struct {
	mu     sync.Mutex
	events []recorded
	fail   bool
}

type recorded struct {
	event string
	data  string
}

func (s *recordSink) Send(event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection gone")
	}
	s.events = append(s.events, recorded{event: event, data: string(data)})
	return nil
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *recordSink) last() recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates channel on first registration", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		assert.Equal(t, 0, reg.SubscriberCount("ClinicA"))

		reg.Register("ClinicA", "s1", &recordSink{})
		assert.Equal(t, 1, reg.SubscriberCount("ClinicA"))
		assert.Equal(t, []string{"ClinicA"}, reg.Channels())
	})

	t.Run("same session may register twice", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		h1 := reg.Register("ClinicA", "s1", &recordSink{})
		h2 := reg.Register("ClinicA", "s1", &recordSink{})

		assert.NotEqual(t, h1, h2)
		assert.Equal(t, 2, reg.SubscriberCount("ClinicA"))
	})
}

func TestRegistryDeregister(t *testing.T) {
	t.Parallel()

	t.Run("removes by handle and drops empty channel key", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		h := reg.Register("ClinicA", "s1", &recordSink{})

		reg.Deregister("ClinicA", h)
		assert.Equal(t, 0, reg.SubscriberCount("ClinicA"))
		assert.Empty(t, reg.Channels(), "empty channels must not linger")
	})

	t.Run("unknown channel or handle is a no-op", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		h := reg.Register("ClinicA", "s1", &recordSink{})

		assert.NotPanics(t, func() {
			reg.Deregister("NoSuchChannel", h)
			reg.Deregister("ClinicA", h)
			reg.Deregister("ClinicA", h) // idempotent repeat
		})
	})

	t.Run("keeps other subscribers", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		h1 := reg.Register("ClinicA", "s1", &recordSink{})
		reg.Register("ClinicA", "s2", &recordSink{})

		reg.Deregister("ClinicA", h1)
		assert.Equal(t, 1, reg.SubscriberCount("ClinicA"))
	})

	t.Run("by session removes all of that session's connections", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		reg.Register("ClinicA", "s1", &recordSink{})
		reg.Register("ClinicA", "s1", &recordSink{})
		reg.Register("ClinicA", "s2", &recordSink{})

		reg.DeregisterSession("ClinicA", "s1")
		assert.Equal(t, 1, reg.SubscriberCount("ClinicA"))
	})
}

func TestRegistryBroadcast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("delivers once per subscriber in registration order", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		first := &recordSink{}
		second := &recordSink{}
		reg.Register("ClinicA", "s1", first)
		reg.Register("ClinicA", "s2", second)

		n := reg.Broadcast(ctx, "ClinicA", "play-announcement", map[string]string{
			"ticketNumber": "42",
			"roomNumber":   "2",
		})

		assert.Equal(t, 2, n)
		require.Equal(t, 1, first.count())
		require.Equal(t, 1, second.count())
		assert.Equal(t, "play-announcement", first.last().event)

		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(first.last().data), &payload))
		assert.Equal(t, "42", payload["ticketNumber"])
		assert.Equal(t, "2", payload["roomNumber"])

		// Same serialized bytes for every subscriber.
		assert.Equal(t, first.last().data, second.last().data)
	})

	t.Run("zero subscribers is a no-op, not an error", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		n := reg.Broadcast(ctx, "Nobody", "play-announcement", map[string]string{"ticketNumber": "1"})
		assert.Equal(t, 0, n)
	})

	t.Run("does not leak across channels", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		a := &recordSink{}
		b := &recordSink{}
		reg.Register("ClinicA", "s1", a)
		reg.Register("ClinicB", "s2", b)

		reg.Broadcast(ctx, "ClinicA", "play-announcement", map[string]string{"ticketNumber": "7"})

		assert.Equal(t, 1, a.count())
		assert.Equal(t, 0, b.count())
	})

	t.Run("one dead sink does not block the rest", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		dead := &recordSink{fail: true}
		alive := &recordSink{}
		reg.Register("ClinicA", "s1", dead)
		reg.Register("ClinicA", "s2", alive)

		n := reg.Broadcast(ctx, "ClinicA", "play-announcement", map[string]string{"ticketNumber": "9"})

		assert.Equal(t, 1, n)
		assert.Equal(t, 1, alive.count())
	})

	t.Run("unserializable payload delivers nothing", func(t *testing.T) {
		t.Parallel()

		reg := broadcast.NewRegistry(nil)
		sink := &recordSink{}
		reg.Register("ClinicA", "s1", sink)

		n := reg.Broadcast(ctx, "ClinicA", "play-announcement", make(chan int))
		assert.Equal(t, 0, n)
		assert.Equal(t, 0, sink.count())
	})
}

func TestRegistryConcurrency(t *testing.T) {
	t.Parallel()

	reg := broadcast.NewRegistry(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h := reg.Register("ClinicA", "s", &recordSink{})
				reg.Broadcast(ctx, "ClinicA", "play-announcement", map[string]string{"ticketNumber": "1"})
				reg.Deregister("ClinicA", h)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, reg.SubscriberCount("ClinicA"))
	assert.Empty(t, reg.Channels())
}
