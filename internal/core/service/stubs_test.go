package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

var testLog = zerolog.Nop()

// --- identity store ---

type stubIdentityStore struct {
	mu         sync.Mutex
	identities map[string]*domain.Identity
	findErr    error
	lookups    int
	nextID     int
	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func()
}

func newStubIdentityStore(seed ...*domain.Identity) *stubIdentityStore {
	s := &stubIdentityStore{identities: make(map[string]*domain.Identity)}
	for _, id := range seed {
		s.put(id)
	}
	return s
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func (s *stubIdentityStore) put(i *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[i.Email] = cloneIdentity(i)
}

func (s *stubIdentityStore) get(email string) *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdentity(s.identities[email])
}

func (s *stubIdentityStore) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.findErr != nil {
		return nil, s.findErr
	}
	i, ok := s.identities[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneIdentity(i), nil
}

func (s *stubIdentityStore) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if s.beforeCreate != nil {
		s.beforeCreate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[identity.Email]; exists {
		return nil, domain.ErrUserExists
	}
	c := cloneIdentity(identity)
	if c.ID == "" {
		s.nextID++
		c.ID = fmt.Sprintf("id-%d", s.nextID)
	}
	s.identities[c.Email] = cloneIdentity(c)
	return c, nil
}

func (s *stubIdentityStore) UpdateProfile(_ context.Context, email string, u ports.ProfileUpdate) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.identities[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Name != "" {
		i.Name = u.Name
	}
	if u.Image != "" {
		i.Image = u.Image
	}
	return cloneIdentity(i), nil
}

func (s *stubIdentityStore) SetPasswordHash(_ context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.identities[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	i.PasswordHash = hash
	return nil
}

func (s *stubIdentityStore) MarkEmailVerified(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.identities[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	i.EmailVerified = true
	return nil
}

// --- hasher ---

// plainHasher stores "hashed:"+password so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(hash, password string) bool { return hash == "hashed:"+password }

// --- counter store ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type counterEntry struct {
	value   int64
	expires time.Time
}

// fakeCounterStore mimics the Redis semantics of the real CounterStore.
type fakeCounterStore struct {
	mu      sync.Mutex
	clock   *fakeClock
	entries map[string]counterEntry
	incrs   int
	err     error
}

func newFakeCounterStore(clock *fakeClock) *fakeCounterStore {
	return &fakeCounterStore{clock: clock, entries: make(map[string]counterEntry)}
}

func (f *fakeCounterStore) live(key string) (counterEntry, bool) {
	e, ok := f.entries[key]
	if !ok {
		return counterEntry{}, false
	}
	if !f.clock.Now().Before(e.expires) {
		delete(f.entries, key)
		return counterEntry{}, false
	}
	return e, true
}

func (f *fakeCounterStore) value(key string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.live(key)
	return e.value, ok
}

func (f *fakeCounterStore) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, false, f.err
	}
	e, ok := f.live(key)
	if !ok {
		return 0, false, nil
	}
	return e.expires.Sub(f.clock.Now()), true, nil
}

func (f *fakeCounterStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.incrs++
	e, _ := f.live(key)
	e.value++
	e.expires = f.clock.Now().Add(ttl)
	f.entries[key] = e
	return e.value, nil
}

func (f *fakeCounterStore) Decr(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.live(key)
	if !ok {
		return nil
	}
	e.value--
	if e.value <= 0 {
		delete(f.entries, key)
		return nil
	}
	f.entries[key] = e
	return nil
}

func (f *fakeCounterStore) SetFlag(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = counterEntry{value: 1, expires: f.clock.Now().Add(ttl)}
	return nil
}

func (f *fakeCounterStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

// --- token store ---

type stubTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{values: make(map[string]string)}
}

func (s *stubTokenStore) Put(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *stubTokenStore) Take(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	delete(s.values, key)
	return v, ok, nil
}

// --- mailer ---

var errAllChannelsFailed = errors.New("api: down; smtp: down")

type stubMailer struct {
	sent []ports.EmailMessage
	fail bool
}

func (m *stubMailer) Dispatch(_ context.Context, msg ports.EmailMessage) (string, error) {
	if m.fail {
		return "", errAllChannelsFailed
	}
	m.sent = append(m.sent, msg)
	return "api", nil
}

// --- oauth ---

type stubProvider struct {
	name    domain.Provider
	profile *domain.OAuthProfile
	err     error
}

func (p *stubProvider) Name() domain.Provider { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://idp.example/" + string(p.name) + "?state=" + state
}

func (p *stubProvider) Exchange(_ context.Context, _ string) (*domain.OAuthProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.profile, nil
}
