// Package session implements the per-identity session store: the auth
// provider's session handle plus the linked domain profile, resolved
// asynchronously. One generic store serves both identity kinds; the profile
// resolver is what differs between the employee and client instances.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/api/metrics"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// DefaultProfileTimeout bounds a single profile lookup so a cold backend can
// never hold the UI in the loading state forever.
const DefaultProfileTimeout = 30 * time.Second

// Resolver fetches the domain profile linked to an auth user id.
// It returns (nil, nil) when no profile row exists.
type Resolver[P any] func(ctx context.Context, authUserID string) (*P, error)

// Linker attempts to attach a pre-existing profile row to a new auth
// identity by matching on email. It reports whether a row was linked.
type Linker func(ctx context.Context, email, authUserID string) (bool, error)

// Snapshot is the store's externally visible state at one instant.
// Invariant: Profile != nil implies Token != "".
type Snapshot[P any] struct {
	Token   string
	UserID  string
	Profile *P
	// Loading is true from construction until the first terminal
	// resolution: no-session, or session with the profile lookup finished
	// (found, absent, failed or timed out).
	Loading bool
	// LoadingSince is when resolution started, for the wake-up advisory.
	LoadingSince time.Time
}

// Authenticated reports whether a session token is present.
func (s Snapshot[P]) Authenticated() bool { return s.Token != "" }

// SignUpResult reports the outcome of a sign-up, including whether the
// best-effort profile link by email succeeded.
type SignUpResult struct {
	Session *domain.Session
	Linked  bool
}

// Config assembles a Store.
type Config[P any] struct {
	Kind     domain.IdentityKind
	Provider ports.AuthProvider
	Resolve  Resolver[P]
	// Link enables SignUp; stores without a linker reject sign-up.
	Link Linker
	// ProfileTimeout bounds each profile lookup; defaults to
	// DefaultProfileTimeout when zero.
	ProfileTimeout time.Duration
	Log            zerolog.Logger
}

// Store owns one identity's session state. All mutation happens on a single
// goroutine fed by a task channel: provider callbacks only enqueue, so the
// store never calls back into the provider from inside its own event
// delivery (the provider forbids synchronous re-entry).
type Store[P any] struct {
	kind     domain.IdentityKind
	provider ports.AuthProvider
	resolve  Resolver[P]
	link     Linker
	timeout  time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	snap Snapshot[P]

	tasks       chan ports.AuthEvent
	quit        chan struct{}
	done        chan struct{}
	baseCtx     context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closeOnce   sync.Once
}

// New builds the store, subscribes to the provider's auth-event stream, and
// only then performs the initial session pull — in that order, so a change
// firing between the two is never missed.
func New[P any](cfg Config[P]) *Store[P] {
	timeout := cfg.ProfileTimeout
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store[P]{
		kind:     cfg.Kind,
		provider: cfg.Provider,
		resolve:  cfg.Resolve,
		link:     cfg.Link,
		timeout:  timeout,
		log:      cfg.Log,
		snap:     Snapshot[P]{Loading: true, LoadingSince: time.Now().UTC()},
		tasks:    make(chan ports.AuthEvent, 16),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		baseCtx:  ctx,
		cancel:   cancel,
	}

	go s.run()

	// Subscribe first, then pull: the stream must be live before the
	// initial check so no transition is missed in between.
	s.unsubscribe = cfg.Provider.Subscribe(s.enqueue)

	go func() {
		sess, err := cfg.Provider.CurrentSession(s.baseCtx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Error().Err(err).Str("identity", string(s.kind)).Msg("initial session check failed")
			}
			s.enqueue(ports.AuthEvent{Type: ports.AuthSignedOut})
			return
		}
		if sess == nil {
			s.enqueue(ports.AuthEvent{Type: ports.AuthSignedOut})
			return
		}
		s.enqueue(ports.AuthEvent{Type: ports.AuthSignedIn, Session: sess})
	}()

	return s
}

// enqueue hands an event to the owner goroutine without doing any work in
// the caller's frame.
func (s *Store[P]) enqueue(ev ports.AuthEvent) {
	select {
	case s.tasks <- ev:
	case <-s.quit:
	}
}

func (s *Store[P]) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case ev := <-s.tasks:
			s.handle(ev)
		}
	}
}

func (s *Store[P]) handle(ev ports.AuthEvent) {
	if ev.Session == nil || ev.Type == ports.AuthSignedOut {
		s.mu.Lock()
		s.snap.Token = ""
		s.snap.UserID = ""
		s.snap.Profile = nil
		s.snap.Loading = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.snap.Token = ev.Session.Token
	s.snap.UserID = ev.Session.UserID
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	profile, err := s.resolve(ctx, ev.Session.UserID)
	cancel()

	// The store may have been closed while the lookup was in flight;
	// a stale result must not be written back.
	select {
	case <-s.quit:
		return
	default:
	}

	switch {
	case err != nil:
		// Lookup failures never leave the store hanging: the profile is
		// simply absent and loading clears.
		s.log.Error().Err(err).
			Str("identity", string(s.kind)).
			Str("auth_user_id", ev.Session.UserID).
			Msg("profile lookup failed")
		profile = nil
		metrics.SessionResolutionsTotal.WithLabelValues(string(s.kind), "error").Inc()
	case profile == nil:
		metrics.SessionResolutionsTotal.WithLabelValues(string(s.kind), "absent").Inc()
	default:
		metrics.SessionResolutionsTotal.WithLabelValues(string(s.kind), "found").Inc()
	}

	s.mu.Lock()
	s.snap.Profile = profile
	s.snap.Loading = false
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store[P]) Snapshot() Snapshot[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Kind returns the identity kind this store serves.
func (s *Store[P]) Kind() domain.IdentityKind { return s.kind }

// SignIn delegates to the provider; the resulting auth event flows back
// through the subscription and updates the store asynchronously.
func (s *Store[P]) SignIn(ctx context.Context, email, password string) error {
	_, err := s.provider.SignIn(ctx, email, password)
	return err
}

// SignUp creates an auth identity and then attempts, best-effort, to link a
// pre-existing profile row by email. Link failures are reported in the
// result rather than failing the sign-up.
func (s *Store[P]) SignUp(ctx context.Context, email, password, name string) (SignUpResult, error) {
	if s.link == nil {
		return SignUpResult{}, domain.ErrSignUpUnsupported
	}

	sess, err := s.provider.SignUp(ctx, email, password, name)
	if err != nil {
		return SignUpResult{}, err
	}

	linked, err := s.link(ctx, email, sess.UserID)
	if err != nil {
		s.log.Warn().Err(err).
			Str("identity", string(s.kind)).
			Str("email", email).
			Msg("could not link profile record")
		linked = false
	}
	return SignUpResult{Session: sess, Linked: linked}, nil
}

// SignOut delegates to the provider; the store resets via the event stream.
func (s *Store[P]) SignOut(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

// Close unsubscribes from the provider and cancels any in-flight profile
// lookup. It is safe to call more than once.
func (s *Store[P]) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.cancel()
		close(s.quit)
		<-s.done
	})
}
