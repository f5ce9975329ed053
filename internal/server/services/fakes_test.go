package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/users"
)

// fixedClock always reports the same instant.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

// seqSecrets hands out predetermined secrets in order.
type seqSecrets struct {
	secrets []string
	next    int
	err     error
}

func (s *seqSecrets) Generate() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.next >= len(s.secrets) {
		return "", fmt.Errorf("secret source exhausted after %d draws", s.next)
	}
	v := s.secrets[s.next]
	s.next++
	return v, nil
}

// fakeHasher mimics bcrypt's length bounds without its cost.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password: minimum length is 8 characters")
	}
	if len(password) > 72 {
		return "", fmt.Errorf("password: maximum length is 72 characters (bcrypt limit)")
	}
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password: invalid password")
	}
	return nil
}

// nopLogger discards everything.
type nopLogger struct{}

func (l nopLogger) Debug(context.Context, string, ...any) {}
func (l nopLogger) Info(context.Context, string, ...any)  {}
func (l nopLogger) Warn(context.Context, string, ...any)  {}
func (l nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger            { return l }

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
	seq       int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (r *memUsers) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.byID[u.ID] = u
	return u
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.add(u), nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type memRoles struct {
	mu      sync.Mutex
	byName  map[string]*models.Role
	held    map[string]map[string]bool // userID -> roleID -> held
	seq     int
	ensErr  error
	findErr error
}

func newMemRoles(names ...string) *memRoles {
	r := &memRoles{byName: map[string]*models.Role{}, held: map[string]map[string]bool{}}
	for _, n := range names {
		r.seq++
		r.byName[n] = &models.Role{ID: fmt.Sprintf("r%d", r.seq), Name: n}
	}
	return r
}

func (r *memRoles) Ensure(_ context.Context, name string) (*models.Role, error) {
	if r.ensErr != nil {
		return nil, r.ensErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.byName[name]; ok {
		return role, nil
	}
	r.seq++
	role := &models.Role{ID: fmt.Sprintf("r%d", r.seq), Name: name}
	r.byName[name] = role
	return role, nil
}

func (r *memRoles) Find(_ context.Context, name string) (*models.Role, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.byName[name]; ok {
		return role, nil
	}
	return nil, common.ErrNotFound
}

func (r *memRoles) Assign(_ context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[userID] == nil {
		r.held[userID] = map[string]bool{}
	}
	r.held[userID][roleID] = true
	return nil
}

func (r *memRoles) Remove(_ context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held[userID], roleID)
	return nil
}

func (r *memRoles) ListForUser(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name, role := range r.byName {
		if r.held[userID][role.ID] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *memRoles) HasRole(_ context.Context, userID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byName[name]
	if !ok {
		return false, nil
	}
	return r.held[userID][role.ID], nil
}

// memRefresh is an in-memory token store honoring the same guard semantics
// as the SQL repository: terminal rows refuse further transitions.
type memRefresh struct {
	mu           sync.Mutex
	byHash       map[string]*models.RefreshToken
	byID         map[string]*models.RefreshToken
	createErr    error
	findErr      error
	beforeRotate func()
}

func newMemRefresh() *memRefresh {
	return &memRefresh{
		byHash: map[string]*models.RefreshToken{},
		byID:   map[string]*models.RefreshToken{},
	}
}

func (r *memRefresh) add(t *models.RefreshToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[t.TokenHash] = t
	r.byID[t.ID] = t
}

func (r *memRefresh) Create(_ context.Context, t *models.RefreshToken) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byHash[t.TokenHash]; dup {
		return fmt.Errorf("db error: duplicate token hash")
	}
	r.byHash[t.TokenHash] = t
	r.byID[t.ID] = t
	return nil
}

// FindByHash returns a snapshot so that callers cannot mutate the store
// without going through the guarded transitions.
func (r *memRefresh) FindByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byHash[hash]
	if !ok {
		return nil, common.ErrNotFound
	}
	return models.RestoreRefreshToken(t.ID, t.TokenHash, t.UserID,
		t.CreatedAt, t.ExpiresAt, t.CreatedByIP, t.State()), nil
}

func (r *memRefresh) Revoke(_ context.Context, id string, at time.Time, ip string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if err := t.Revoke(at, ip); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memRefresh) Rotate(_ context.Context, id string, at time.Time, ip string, successorHash string) (bool, error) {
	if r.beforeRotate != nil {
		r.beforeRotate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if err := t.RotateTo(successorHash, at, ip); err != nil {
		return false, nil
	}
	return true, nil
}

// fakeRepoManager vends the in-memory repositories regardless of the handle
// it is given; transactionality is exercised separately through sqlmock.
type fakeRepoManager struct {
	users   *memUsers
	roles   *memRoles
	refresh *memRefresh
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *fakeRepoManager) Roles(dbx.DBTX) roles.Repository { return m.roles }

func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
