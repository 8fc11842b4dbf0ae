package handler

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/glossline/glossline/internal/config"
	"github.com/glossline/glossline/internal/queue"
	"github.com/glossline/glossline/internal/repository"
	"github.com/glossline/glossline/internal/utils"
)

// testBcryptCost keeps hashing fast in tests.
const testBcryptCost = 4

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		AccessSecret:   "test-access-secret",
		RefreshSecret:  "test-refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     testBcryptCost,
	}
}

// fakeUserStore is an in-memory UserStore that mirrors the repository's
// error contract, including the unique email and single-superadmin rules.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]*repository.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[uint64]*repository.User{}}
}

func (s *fakeUserStore) byEmailLocked(email string) *repository.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *fakeUserStore) superadminLocked() *repository.User {
	for _, u := range s.users {
		if u.Role == repository.RoleSuperadmin {
			return u
		}
	}
	return nil
}

func (s *fakeUserStore) insertLocked(name, email, password, role string, cost int) (repository.User, error) {
	if s.byEmailLocked(email) != nil {
		return repository.User{}, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return repository.User{}, err
	}
	now := time.Now().UTC()
	u := &repository.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.nextID++
	return *u, nil
}

func (s *fakeUserStore) Create(_ context.Context, name, email, password, role string, cost int) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case repository.RoleUser, repository.RoleAdmin:
	case repository.RoleSuperadmin:
		return repository.User{}, repository.ErrRoleNotAllowed
	default:
		return repository.User{}, repository.ErrInvalidRole
	}
	return s.insertLocked(name, email, password, role, cost)
}

func (s *fakeUserStore) CreateSuperadmin(_ context.Context, name, email, password string, cost int) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.superadminLocked() != nil {
		return repository.User{}, repository.ErrSuperadminExists
	}
	return s.insertLocked(name, email, password, repository.RoleSuperadmin, cost)
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byEmailLocked(email); u != nil {
		return *u, nil
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) List(_ context.Context) ([]repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.User, 0, len(s.users))
	for id := uint64(1); id < s.nextID; id++ {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, id uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if token == "" {
		u.RefreshToken = sql.NullString{}
	} else {
		u.RefreshToken = sql.NullString{String: token, Valid: true}
	}
	return nil
}

func (s *fakeUserStore) ChangeRole(_ context.Context, id uint64, role string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case repository.RoleUser, repository.RoleAdmin, repository.RoleSuperadmin:
	default:
		return repository.User{}, repository.ErrInvalidRole
	}
	u, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	if u.Role == repository.RoleSuperadmin {
		return repository.User{}, repository.ErrProtectedRole
	}
	if role == repository.RoleSuperadmin && s.superadminLocked() != nil {
		return repository.User{}, repository.ErrSuperadminExists
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (s *fakeUserStore) SetActive(_ context.Context, id uint64, active bool) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *fakeUserStore) DeleteSuperadmin(_ context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byEmailLocked(email)
	if u == nil || u.Role != repository.RoleSuperadmin {
		return repository.ErrUserNotFound
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return repository.ErrInvalidPassword
	}
	delete(s.users, u.ID)
	return nil
}

// fakeSettingsStore holds the settings singleton in memory.
type fakeSettingsStore struct {
	mu sync.Mutex
	s  repository.Settings
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{s: repository.Settings{
		APIKey:         "test-api-key",
		SignupsEnabled: true,
		UpdatedAt:      time.Now().UTC(),
	}}
}

func (f *fakeSettingsStore) Get(context.Context) (repository.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s, nil
}

func (f *fakeSettingsStore) Update(_ context.Context, email string, signupsEnabled, maintenanceMode bool) (repository.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s.NotificationEmail = email
	f.s.SignupsEnabled = signupsEnabled
	f.s.MaintenanceMode = maintenanceMode
	f.s.UpdatedAt = time.Now().UTC()
	return f.s, nil
}

func (f *fakeSettingsStore) RotateAPIKey(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s.APIKey = "rotated-" + f.s.APIKey
	return f.s.APIKey, nil
}

func (f *fakeSettingsStore) StampBackup(context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := time.Now().UTC()
	f.s.LastBackupAt = sql.NullTime{Time: at, Valid: true}
	return at, nil
}

// fakeResetStore issues deterministic single-use tokens.
type fakeResetStore struct {
	mu     sync.Mutex
	n      int
	tokens map[string]string // token -> email
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{tokens: map[string]string{}}
}

func (f *fakeResetStore) Issue(_ context.Context, email string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	token := "reset-token-" + strconv.Itoa(f.n)
	f.tokens[token] = email
	return token, nil
}

func (f *fakeResetStore) Consume(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[token]
	if !ok {
		return "", repository.ErrResetTokenInvalid
	}
	delete(f.tokens, token)
	return email, nil
}

// fakeAuditSink records published events for assertions.
type fakeAuditSink struct {
	mu     sync.Mutex
	events []queue.AuditEvent
}

func (f *fakeAuditSink) Publish(_ context.Context, ev queue.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAuditSink) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Action
	}
	return out
}

type fakeStatsStore struct {
	stats repository.Stats
}

func (f *fakeStatsStore) Counts(context.Context) (repository.Stats, error) {
	return f.stats, nil
}
