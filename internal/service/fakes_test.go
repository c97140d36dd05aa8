package service

import (
	"context"
	"sync"
	"time"

	"github.com/njprem/fitcity-account-service/internal/domain"
	"github.com/njprem/fitcity-account-service/internal/repository/ports"
)

// memStore is an in-memory AccountStore. Transactions run one at a time on a
// copy of the state that replaces the original only on commit.
type memStore struct {
	mu    sync.Mutex
	state *memState
	calls int

	readErr           error
	txErr             error
	createUserErr     error
	updatePasswordErr error
	createResetErrs   []error
	// consumeAfterLock marks the token used right after LockValid returns it,
	// as a competing transaction would if the row were not locked.
	consumeAfterLock bool
}

type memState struct {
	users       map[int64]domain.User
	resets      map[string]domain.ResetToken
	nextUserID  int64
	nextResetID int64
}

var _ ports.AccountStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{state: &memState{
		users:  map[int64]domain.User{},
		resets: map[string]domain.ResetToken{},
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		users:       make(map[int64]domain.User, len(s.users)),
		resets:      make(map[string]domain.ResetToken, len(s.resets)),
		nextUserID:  s.nextUserID,
		nextResetID: s.nextResetID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.resets {
		c.resets[k] = v
	}
	return c
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return (&memUsers{store: m, state: m.state}).FindByUsername(ctx, username)
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return (&memUsers{store: m, state: m.state}).FindByEmail(ctx, email)
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return (&memUsers{store: m, state: m.state}).FindByID(ctx, id)
}

func (m *memStore) FindValidResetToken(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return (&memResets{store: m, state: m.state}).FindValid(ctx, token, now)
}

func (m *memStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return (&memUsers{store: m, state: m.state}).UpdatePassword(ctx, id, passwordHash)
}

func (m *memStore) CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) (*domain.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return (&memResets{store: m, state: m.state}).Create(ctx, userID, token, expiresAt)
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.AccountTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.txErr != nil {
		return m.txErr
	}
	working := m.state.clone()
	if err := fn(ctx, &memTx{store: m, state: working}); err != nil {
		return err
	}
	m.state = working
	return nil
}

func (m *memStore) resetToken(token string) (domain.ResetToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.resets[token]
	return r, ok
}

func (m *memStore) resetTokens() []domain.ResetToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ResetToken, 0, len(m.state.resets))
	for _, r := range m.state.resets {
		out = append(out, r)
	}
	return out
}

func (m *memStore) user(id int64) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.state.users[id]
	return u, ok
}

func (m *memStore) addUser(u domain.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextUserID++
	u.ID = m.state.nextUserID
	m.state.users[u.ID] = u
	return u.ID
}

type memTx struct {
	store *memStore
	state *memState
}

func (t *memTx) Users() ports.UserRepository {
	return &memUsers{store: t.store, state: t.state}
}

func (t *memTx) ResetTokens() ports.ResetTokenRepository {
	return &memResets{store: t.store, state: t.state}
}

// memUsers and memResets assume the caller holds store.mu.
type memUsers struct {
	store *memStore
	state *memState
}

func (r *memUsers) find(match func(domain.User) bool) *domain.User {
	for _, u := range r.state.users {
		if match(u) {
			found := u
			return &found
		}
	}
	return nil
}

func (r *memUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username }), nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email }), nil
}

func (r *memUsers) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id }), nil
}

func (r *memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, _ := r.FindByUsername(ctx, username)
	return u != nil, nil
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	u, _ := r.FindByEmail(ctx, email)
	return u != nil, nil
}

func (r *memUsers) Create(ctx context.Context, nu domain.NewUser) (int64, error) {
	if r.store.createUserErr != nil {
		return 0, r.store.createUserErr
	}
	r.state.nextUserID++
	now := time.Now()
	u := domain.User{
		ID:           r.state.nextUserID,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		City:         nu.City,
		State:        nu.State,
		CountryCode:  nu.CountryCode,
		Latitude:     nu.Latitude,
		Longitude:    nu.Longitude,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.state.users[u.ID] = u
	return u.ID, nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if r.store.updatePasswordErr != nil {
		return r.store.updatePasswordErr
	}
	u, ok := r.state.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	r.state.users[id] = u
	return nil
}

type memResets struct {
	store *memStore
	state *memState
}

func (r *memResets) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*domain.ResetToken, error) {
	if len(r.store.createResetErrs) > 0 {
		err := r.store.createResetErrs[0]
		r.store.createResetErrs = r.store.createResetErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	r.state.nextResetID++
	reset := domain.ResetToken{
		ID:        r.state.nextResetID,
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.state.resets[token] = reset
	return &reset, nil
}

func (r *memResets) FindValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error) {
	reset, ok := r.state.resets[token]
	if !ok || reset.Used || !reset.ExpiresAt.After(now) {
		return nil, nil
	}
	return &reset, nil
}

func (r *memResets) LockValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error) {
	reset, err := r.FindValid(ctx, token, now)
	if reset != nil && r.store.consumeAfterLock {
		stale := r.state.resets[token]
		stale.Used = true
		r.state.resets[token] = stale
	}
	return reset, err
}

func (r *memResets) MarkUsed(ctx context.Context, token string) (bool, error) {
	reset, ok := r.state.resets[token]
	if !ok || reset.Used {
		return false, nil
	}
	reset.Used = true
	r.state.resets[token] = reset
	return true, nil
}

type sentReset struct {
	email    string
	token    string
	username string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, email, token, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReset{email: email, token: token, username: username})
	return f.err
}
