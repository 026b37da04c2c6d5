package channelstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/dmitrymomot/callbell/pkg/logger"
)

// Store owns the channel list. The whole file is read at construction and
// rewritten wholesale on every mutation; concurrent administrative writes
// are last-writer-wins by design. The fan-out core only ever reads through
// FindByName and All.
type Store struct {
	mu       sync.RWMutex
	path     string
	channels []Channel
	log      *slog.Logger
}

// New loads the channel list from the file at path. A missing file starts
// an empty store and creates the file best effort; an unreadable or corrupt
// file is logged and falls back to an empty list rather than failing
// startup, so a damaged channels file never takes the announcer down.
func New(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		path: path,
		log:  log,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Info("channel file not found, starting with empty list", slog.String("path", s.path))
			s.channels = []Channel{}
			if err := s.persist(); err != nil {
				s.log.Error("failed to create channel file", logger.Error(err))
			}
			return
		}
		s.log.Error("failed to read channel file", slog.String("path", s.path), logger.Error(err))
		s.channels = []Channel{}
		return
	}

	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		s.log.Error("corrupt channel file, starting with empty list", slog.String("path", s.path), logger.Error(err))
		s.channels = []Channel{}
		return
	}

	s.channels = channels
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = c.Name
	}
	s.log.Info("channel list loaded", slog.Int("count", len(channels)), slog.Any("names", names))
}

// persist writes the whole list as indented JSON. Callers hold the write lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.channels, "", "  ")
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

// All returns a copy of every channel record.
func (s *Store) All() []Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Names returns channel names in file order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.channels))
	for i, c := range s.channels {
		names[i] = c.Name
	}
	return names
}

// FindByName returns the channel with the exact (case-sensitive) name.
func (s *Store) FindByName(name string) (Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.channels {
		if c.Name == name {
			return c, nil
		}
	}
	return Channel{}, ErrChannelNotFound
}

// ResolveVoice returns the synthesis profile the named channel uses for a
// language. ErrChannelNotFound when the channel does not exist.
func (s *Store) ResolveVoice(name, language string) (VoiceProfile, error) {
	ch, err := s.FindByName(name)
	if err != nil {
		return VoiceProfile{}, err
	}
	return ch.Voice(language), nil
}

// Create appends a new channel and rewrites the file. Fails with
// ErrChannelExists when the name is already taken. Only name and password
// are required; a reception desk is assumed unless the record was loaded
// from a file that says otherwise.
func (s *Store) Create(ctx context.Context, ch Channel) error {
	if ch.Name == "" || ch.Password == "" {
		return ErrInvalidChannel
	}
	if ch.RoomCount < 1 {
		ch.RoomCount = DefaultRoomCount
	}
	ch.UseReception = true

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.channels {
		if existing.Name == ch.Name {
			return ErrChannelExists
		}
	}

	s.channels = append(s.channels, ch)
	if err := s.persist(); err != nil {
		s.log.ErrorContext(ctx, "failed to persist channel list", logger.Error(err))
		return err
	}

	s.log.InfoContext(ctx, "channel created", logger.Channel(ch.Name))
	return nil
}

// ReplaceAll swaps the entire channel list and rewrites the file. This is
// the administrative bulk update; no merging is attempted.
func (s *Store) ReplaceAll(ctx context.Context, channels []Channel) error {
	seen := make(map[string]struct{}, len(channels))
	for i := range channels {
		if channels[i].Name == "" || channels[i].Password == "" {
			return ErrInvalidChannel
		}
		if _, dup := seen[channels[i].Name]; dup {
			return ErrChannelExists
		}
		seen[channels[i].Name] = struct{}{}
		if channels[i].RoomCount < 1 {
			channels[i].RoomCount = DefaultRoomCount
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels = channels
	if err := s.persist(); err != nil {
		s.log.ErrorContext(ctx, "failed to persist channel list", logger.Error(err))
		return err
	}

	s.log.InfoContext(ctx, "channel list replaced", slog.Int("count", len(channels)))
	return nil
}

// DeleteAt removes the channel at the given file-order index.
func (s *Store) DeleteAt(ctx context.Context, index int) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.channels) {
		return Channel{}, ErrChannelNotFound
	}

	removed := s.channels[index]
	s.channels = append(s.channels[:index], s.channels[index+1:]...)
	if err := s.persist(); err != nil {
		s.log.ErrorContext(ctx, "failed to persist channel list", logger.Error(err))
		return Channel{}, err
	}

	s.log.InfoContext(ctx, "channel deleted", logger.Channel(removed.Name))
	return removed, nil
}

// Reload re-reads the file, replacing the in-memory list. Used by the file
// watcher when the channel file is edited outside the process.
func (s *Store) Reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Error("failed to reload channel file", logger.Error(err))
		return
	}

	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		s.log.Error("ignoring corrupt channel file on reload", logger.Error(err))
		return
	}

	s.mu.Lock()
	s.channels = channels
	s.mu.Unlock()

	s.log.Info("channel list reloaded", slog.Int("count", len(channels)))
}

// Healthy reports whether the backing file is accessible. Used by the
// readiness probe.
func (s *Store) Healthy(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}
