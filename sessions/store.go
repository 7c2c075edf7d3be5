package sessions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/aquamind/internal/config"
	"github.com/jrsteele09/aquamind/storage"
)

// Releaser frees hardware tied to the session before it is cleared. An expiry logout
// calls it under the store's write lock, so it must not write the session itself.
type Releaser interface {
	ReleaseAll(ctx context.Context)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Store) {
		if maxAge > 0 {
			s.maxAge = maxAge
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithReleaser(r Releaser) Option {
	return func(s *Store) { s.releaser = r }
}

// Store is the sole owner of the persisted session record.
type Store struct {
	storage  storage.Storage
	releaser Releaser
	now      func() time.Time
	maxAge   time.Duration
	logger   zerolog.Logger

	// writeLock orders writes and the notifications that follow them.
	writeLock sync.Mutex

	listenersLock sync.RWMutex
	listeners     map[uint64]Listener
	nextListener  uint64
}

func NewStore(s storage.Storage, opts ...Option) *Store {
	store := &Store{
		storage:   s,
		now:       time.Now,
		maxAge:    config.DefaultMaxSessionAge,
		logger:    zerolog.Nop(),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// MaxAge is the configured session lifetime.
func (s *Store) MaxAge() time.Duration {
	return s.maxAge
}

// Save writes a new session issued now, replacing any previous one, and notifies
// subscribers.
func (s *Store) Save(ctx context.Context, token, subjectID string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	session := Session{Token: token, SubjectID: subjectID, IssuedAt: s.now().UTC()}
	raw, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, storage.KeyAuthData, raw); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist session")
		return fmt.Errorf("sessions.Save: %w", err)
	}

	s.logger.Info().Str("user_id", subjectID).Msg("session saved")
	s.notify(Event{Kind: EventSaved, Session: session, At: session.IssuedAt})
	return nil
}

// Read returns the stored session. Missing, unreadable or malformed records all read as
// absent.
func (s *Store) Read(ctx context.Context) (Session, bool) {
	raw, err := s.storage.Get(ctx, storage.KeyAuthData)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("session storage unreadable, treating as logged out")
		}
		return Session{}, false
	}

	session, err := decodeSession(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed session record")
		return Session{}, false
	}
	return session, true
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	session, ok := s.Read(ctx)
	return ok && !session.Expired(s.now(), s.maxAge)
}

// IsExpired reports whether there is no session or it is older than the configured max age.
func (s *Store) IsExpired(ctx context.Context) bool {
	return s.IsExpiredAfter(ctx, s.maxAge)
}

func (s *Store) IsExpiredAfter(ctx context.Context, maxAge time.Duration) bool {
	session, ok := s.Read(ctx)
	if !ok {
		return true
	}
	return session.Expired(s.now(), maxAge)
}

// Clear removes the session and notifies subscribers.
func (s *Store) Clear(ctx context.Context) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	return s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	if err := s.storage.Remove(ctx, storage.KeyAuthData); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear session")
		return fmt.Errorf("sessions.Clear: %w", err)
	}

	s.notify(Event{Kind: EventCleared, At: s.now().UTC()})
	return nil
}

// Logout releases the camera first and only then clears the session, so a storage
// failure never leaves the camera running.
func (s *Store) Logout(ctx context.Context) error {
	if s.releaser != nil {
		s.releaser.ReleaseAll(ctx)
	}
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("sessions.Logout: %w", err)
	}
	s.logger.Info().Msg("session closed and camera released")
	return nil
}

// Validate logs out when the session is missing or expired and reports whether a live
// session remains.
func (s *Store) Validate(ctx context.Context) bool {
	if !s.IsExpired(ctx) {
		return true
	}
	if err := s.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("logout after expiry failed")
	}
	return false
}

// Resolve returns the live session. An absent session has no side effects; a present but
// expired one is logged out on detection, once, however many callers detect it together.
func (s *Store) Resolve(ctx context.Context) (Session, bool) {
	session, ok := s.Read(ctx)
	if !ok {
		return Session{}, false
	}
	if session.Expired(s.now(), s.maxAge) {
		if err := s.expire(ctx, session); err != nil {
			s.logger.Warn().Err(err).Msg("logout after expiry failed")
		}
		return Session{}, false
	}
	return session, true
}

// expire logs out the session seen expired by a caller. Concurrent callers race to the
// write lock; only the first still finds the same record and releases the camera.
func (s *Store) expire(ctx context.Context, seen Session) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	current, ok := s.Read(ctx)
	if !ok || !current.IssuedAt.Equal(seen.IssuedAt) || !current.Expired(s.now(), s.maxAge) {
		return nil
	}
	s.logger.Info().
		Str("user_id", current.SubjectID).
		Time("issued_at", current.IssuedAt).
		Msg("session expired")
	if s.releaser != nil {
		s.releaser.ReleaseAll(ctx)
	}
	if err := s.clearLocked(ctx); err != nil {
		return fmt.Errorf("sessions.expire: %w", err)
	}
	s.logger.Info().Msg("session closed and camera released")
	return nil
}

// Subscribe registers l for session-changed events. The returned func removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersLock.Lock()
	defer s.listenersLock.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersLock.Lock()
			defer s.listenersLock.Unlock()
			delete(s.listeners, id)
		})
	}
}

func (s *Store) notify(e Event) {
	s.listenersLock.RLock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.listenersLock.RUnlock()

	// Deliver in subscription order.
	slices.Sort(ids)
	for _, id := range ids {
		s.listenersLock.RLock()
		l, ok := s.listeners[id]
		s.listenersLock.RUnlock()
		if ok {
			l(e)
		}
	}
}
