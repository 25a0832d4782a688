package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/application"
	"github.com/tripveo/account-security-service/internal/domain"
	"github.com/tripveo/account-security-service/internal/ports"
)

type fixture struct {
	service     *application.Service
	accounts    *fakeAccounts
	attempts    *fakeAttempts
	sessions    *fakeSessions
	settings    *fakeSettings
	revocations *fakeRevocations
	signer      *fakeSigner

	mu  sync.Mutex
	now time.Time
}

func newFixture() *fixture {
	f := &fixture{
		accounts:    &fakeAccounts{byID: map[uuid.UUID]domain.Account{}},
		attempts:    &fakeAttempts{},
		sessions:    &fakeSessions{byID: map[uuid.UUID]domain.Session{}},
		settings:    &fakeSettings{snap: ports.DefaultSettings()},
		revocations: &fakeRevocations{revoked: map[uuid.UUID]bool{}},
		signer:      &fakeSigner{tokens: map[string]ports.SessionClaims{}},
		now:         time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.service = application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceID: "account-security-service-test",
			TokenTTL:  12 * time.Hour,
		},
		Accounts:    f.accounts,
		Attempts:    f.attempts,
		Sessions:    f.sessions,
		Settings:    f.settings,
		Tx:          &fakeTx{accounts: f.accounts, attempts: f.attempts, locks: map[string]*sync.Mutex{}},
		Revocations: f.revocations,
		Hasher:      &fakeHasher{},
		TokenSigner: f.signer,
		Now:         f.clock,
	})
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) seedAccount(username, password string, role domain.AccountRole, status domain.AccountStatus, lastLogin *time.Time) domain.Account {
	now := f.clock()
	account := domain.Account{
		AccountID:    uuid.New(),
		Username:     username,
		PasswordHash: "hashed:" + password,
		Role:         role,
		Status:       status,
		LastLoginAt:  lastLogin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.accounts.put(account)
	return account
}

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Account
}

func (f *fakeAccounts) put(a domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.AccountID] = a
}

func (f *fakeAccounts) get(id uuid.UUID) (domain.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	return a, ok
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Username == username {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, accountID uuid.UUID) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) RecordLogin(_ context.Context, accountID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	loginAt := at
	a.Status = domain.StatusActive
	a.LastLoginAt = &loginAt
	a.UpdatedAt = at
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) SetStatus(_ context.Context, accountID uuid.UUID, status domain.AccountStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = at
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) ActivateByUsername(_ context.Context, username string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for id, a := range f.byID {
		if a.Username == username && a.Status != domain.StatusActive {
			a.Status = domain.StatusActive
			a.UpdatedAt = at
			f.byID[id] = a
			affected++
		}
	}
	return affected, nil
}

func (f *fakeAccounts) BlockActiveByUsernames(_ context.Context, usernames []string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := map[string]bool{}
	for _, u := range usernames {
		names[u] = true
	}
	var affected int64
	for id, a := range f.byID {
		if names[a.Username] && a.Status == domain.StatusActive {
			a.Status = domain.StatusBlocked
			a.UpdatedAt = at
			f.byID[id] = a
			affected++
		}
	}
	return affected, nil
}

func (f *fakeAccounts) MarkInactiveBatch(_ context.Context, cutoff, passBegan, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for id, a := range f.byID {
		if a.Role != domain.RoleCustomer || a.Status != domain.StatusActive {
			continue
		}
		if a.LastLoginAt == nil || !a.LastLoginAt.Before(cutoff) {
			continue
		}
		if a.UpdatedAt.After(passBegan) {
			continue
		}
		a.Status = domain.StatusInactive
		a.UpdatedAt = at
		f.byID[id] = a
		affected++
	}
	return affected, nil
}

func (f *fakeAccounts) RepairNeverLoggedIn(_ context.Context, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for id, a := range f.byID {
		if a.Status != domain.StatusInactive || a.LastLoginAt != nil {
			continue
		}
		loginAt := at
		a.Status = domain.StatusActive
		a.LastLoginAt = &loginAt
		a.UpdatedAt = at
		f.byID[id] = a
		affected++
	}
	return affected, nil
}

func (f *fakeAccounts) ListByStatuses(_ context.Context, statuses []domain.AccountStatus) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[domain.AccountStatus]bool{}
	for _, s := range statuses {
		wanted[s] = true
	}
	var out []domain.Account
	for _, a := range f.byID {
		if wanted[a.Status] {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	rows     []domain.LoginAttempt
	countErr error
}

func (f *fakeAttempts) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, attempt)
	return nil
}

func (f *fakeAttempts) CountRecentFailures(_ context.Context, username string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, row := range f.rows {
		if row.Username == username && !row.Succeeded && !row.OccurredAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttempts) PurgeByUsername(_ context.Context, username string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.LoginAttempt
	var purged int64
	for _, row := range f.rows {
		if row.Username == username {
			purged++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return purged, nil
}

func (f *fakeAttempts) ListLockedUsernames(_ context.Context, since time.Time, threshold int) ([]domain.LockedUsername, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg := map[string]*domain.LockedUsername{}
	for _, row := range f.rows {
		if row.Succeeded || row.OccurredAt.Before(since) {
			continue
		}
		entry, ok := agg[row.Username]
		if !ok {
			entry = &domain.LockedUsername{Username: row.Username}
			agg[row.Username] = entry
		}
		entry.FailedAttempts++
		if row.OccurredAt.After(entry.LastAttemptAt) {
			entry.LastAttemptAt = row.OccurredAt
		}
	}
	var out []domain.LockedUsername
	for _, entry := range agg {
		if entry.FailedAttempts >= threshold {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeAttempts) ListByUsername(_ context.Context, username string, limit int) ([]domain.LoginAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LoginAttempt
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].Username == username {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeAttempts) countForUser(username string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, row := range f.rows {
		if row.Username == username {
			count++
		}
	}
	return count
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Session
}

func (f *fakeSessions) Create(_ context.Context, params ports.SessionCreateParams) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := domain.Session{
		SessionID:      uuid.New(),
		AccountID:      params.AccountID,
		SourceAddress:  params.SourceAddress,
		UserAgent:      params.UserAgent,
		IssuedAt:       params.IssuedAt,
		LastActivityAt: params.IssuedAt,
	}
	f.byID[session.SessionID] = session
	return session, nil
}

func (f *fakeSessions) GetByID(_ context.Context, sessionID uuid.UUID) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byID[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessions) TouchActivity(_ context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byID[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	session.LastActivityAt = touchedAt
	f.byID[sessionID] = session
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, sessionID)
	return nil
}

func (f *fakeSessions) DeleteAllByAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, session := range f.byID {
		if session.AccountID == accountID {
			delete(f.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSessions) exists(sessionID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[sessionID]
	return ok
}

type fakeSettings struct {
	mu   sync.Mutex
	snap ports.Settings
	err  error
}

func (f *fakeSettings) Snapshot(_ context.Context) (ports.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return ports.Settings{}, f.err
	}
	return f.snap, nil
}

func (f *fakeSettings) Update(_ context.Context, key ports.SettingKey, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch key {
	case ports.SettingMaxLoginAttempts:
		f.snap.MaxLoginAttempts = value
	case ports.SettingSessionTimeout:
		f.snap.SessionTimeout = time.Duration(value) * time.Minute
	case ports.SettingInactivityDays:
		f.snap.InactivityDays = value
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

func (f *fakeSettings) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
}

func (f *fakeRevocations) MarkRevoked(_ context.Context, sessionID uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[sessionID] = true
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, sessionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[sessionID], nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return errors.New("hash mismatch")
}

type fakeSigner struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]ports.SessionClaims
}

func (f *fakeSigner) Sign(claims ports.SessionClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("token-%d", f.seq)
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.SessionClaims{}, errors.New("unknown token")
	}
	return claims, nil
}

// fakeTx mirrors the advisory-lock behavior: serialized per username,
// shared repositories underneath.
type fakeTx struct {
	accounts *fakeAccounts
	attempts *fakeAttempts

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	txMu  sync.Mutex
}

func (f *fakeTx) WithUsernameLock(_ context.Context, username string, fn func(ports.LoginTxRepositories) error) error {
	f.mu.Lock()
	lock, ok := f.locks[username]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[username] = lock
	}
	f.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ports.LoginTxRepositories{Accounts: f.accounts, Attempts: f.attempts})
}

func (f *fakeTx) WithTx(_ context.Context, fn func(ports.LoginTxRepositories) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(ports.LoginTxRepositories{Accounts: f.accounts, Attempts: f.attempts})
}
