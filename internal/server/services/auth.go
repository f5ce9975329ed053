package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
)

// unknownIP replaces a missing caller address in audit columns.
const unknownIP = "unknown"

// minRefreshTokenLifetime is the floor applied to the configured refresh
// lifetime.
const minRefreshTokenLifetime = 24 * time.Hour

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique-constraint errors.
const pgUniqueViolation = "23505"

// AuthResult is the outcome of Login and Refresh. On failure only Errors is
// populated; the messages are deliberately generic.
type AuthResult struct {
	Succeeded             bool
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Roles                 []string
	Errors                []string
}

// RegisterRequest carries the fields of a signup attempt.
type RegisterRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// RegisterResult reports a signup outcome. Validation failures land in
// Errors; infrastructure failures surface as ordinary errors instead.
type RegisterResult struct {
	Succeeded bool
	UserID    string
	Errors    []string
}

// AuthService implements the authentication operations on top of the
// repositories. It owns no state beyond its collaborators; every request is
// a fresh pass over the store.
type AuthService struct {
	db              *sql.DB
	rm              repomanager.RepositoryManager
	minter          *auth.Minter
	hasher          auth.PasswordHasher
	clock           Clock
	secrets         SecretSource
	logger          logging.Logger
	refreshLifetime time.Duration
}

func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, minter *auth.Minter,
	hasher auth.PasswordHasher, clock Clock, secrets SecretSource,
	logger logging.Logger, refreshLifetime time.Duration) *AuthService {

	if refreshLifetime < minRefreshTokenLifetime {
		refreshLifetime = minRefreshTokenLifetime
	}
	return &AuthService{
		db:              db,
		rm:              rm,
		minter:          minter,
		hasher:          hasher,
		clock:           clock,
		secrets:         secrets,
		logger:          logger,
		refreshLifetime: refreshLifetime,
	}
}

func normalizeIP(ip string) string {
	if strings.TrimSpace(ip) == "" {
		return unknownIP
	}
	return ip
}

func failedAuth(msg string) *AuthResult {
	return &AuthResult{Errors: []string{msg}}
}

// Register creates a user account and grants the default role when it
// exists. Input problems come back inside the result; a duplicate email is
// reported the same way so the handler does not need to inspect errors.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	var problems []string
	if !strings.Contains(req.Email, "@") {
		problems = append(problems, "a valid email address is required")
	}
	if req.FirstName == "" {
		problems = append(problems, "first name is required")
	}
	if req.Password != req.ConfirmPassword {
		problems = append(problems, "passwords do not match")
	}
	if len(problems) > 0 {
		return &RegisterResult{Errors: problems}, nil
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		// length bounds; reported as a validation problem, not a failure
		return &RegisterResult{Errors: []string{err.Error()}}, nil
	}

	user, err := s.rm.Users(s.db).Create(ctx, &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return &RegisterResult{Errors: []string{"email is already registered"}}, nil
		}
		return nil, err
	}

	role, err := s.rm.Roles(s.db).Find(ctx, models.RoleUser)
	switch {
	case errors.Is(err, common.ErrNotFound):
		s.logger.Warn(ctx, "default role missing, user created without it",
			"role", models.RoleUser, "user_id", user.ID)
	case err != nil:
		return nil, err
	default:
		if err := s.rm.Roles(s.db).Assign(ctx, user.ID, role.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return &RegisterResult{Succeeded: true, UserID: user.ID}, nil
}

// Login verifies the credentials and, on success, issues an access token and
// a fresh refresh token. Unknown email and wrong password produce the same
// result.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	ip = normalizeIP(ip)

	user, err := s.rm.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return failedAuth(common.ErrInvalidCredentials.Error()), nil
		}
		return nil, err
	}

	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		s.logger.Warn(ctx, "failed login attempt", "user_id", user.ID, "ip", ip)
		return failedAuth(common.ErrInvalidCredentials.Error()), nil
	}

	roles, err := s.rm.Roles(s.db).ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accessToken, accessExpires, err := s.minter.Mint(user, roles)
	if err != nil {
		return nil, err
	}

	plaintext, record, err := s.issueRefreshToken(ctx, s.db, user.ID, ip)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID, "ip", ip)
	return &AuthResult{
		Succeeded:             true,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshToken:          plaintext,
		RefreshTokenExpiresAt: record.ExpiresAt,
		Roles:                 roles,
	}, nil
}

// Refresh exchanges an active refresh token for a new access/refresh pair.
// The presented token is spent in the same transaction that records its
// successor, so each secret can be exchanged at most once.
func (s *AuthService) Refresh(ctx context.Context, plaintext, ip string) (*AuthResult, error) {
	ip = normalizeIP(ip)
	hash := auth.HashToken(plaintext)

	token, err := s.rm.RefreshTokens(s.db).FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return failedAuth(common.ErrInvalidOrExpiredToken.Error()), nil
		}
		return nil, err
	}

	now := s.clock.Now()
	if !token.IsActive(now) {
		s.logger.Warn(ctx, "refresh attempt on a spent or expired token",
			"user_id", token.UserID, "ip", ip)
		return failedAuth(common.ErrInvalidOrExpiredToken.Error()), nil
	}

	user, err := s.rm.Users(s.db).FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return failedAuth(common.ErrInvalidOrExpiredToken.Error()), nil
		}
		return nil, err
	}

	newPlaintext, err := s.secrets.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating refresh secret: %w", err)
	}
	successor := models.NewRefreshToken(uuid.NewString(), auth.HashToken(newPlaintext),
		token.UserID, now, now.Add(s.refreshLifetime), ip)

	rotated := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.RefreshTokens(tx)
		ok, err := repo.Rotate(ctx, token.ID, now, ip, successor.TokenHash)
		if err != nil {
			return err
		}
		if !ok {
			// a concurrent request spent this token between our read and now
			return nil
		}
		if err := repo.Create(ctx, successor); err != nil {
			return err
		}
		rotated = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rotated {
		s.logger.Warn(ctx, "refresh token lost a rotation race",
			"user_id", token.UserID, "ip", ip)
		return failedAuth(common.ErrInvalidOrExpiredToken.Error()), nil
	}

	roles, err := s.rm.Roles(s.db).ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	accessToken, accessExpires, err := s.minter.Mint(user, roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", user.ID, "ip", ip)
	return &AuthResult{
		Succeeded:             true,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshToken:          newPlaintext,
		RefreshTokenExpiresAt: successor.ExpiresAt,
		Roles:                 roles,
	}, nil
}

// Revoke invalidates the presented refresh token. It reports whether a row
// actually changed; revoking an unknown, spent, or expired token is a no-op.
func (s *AuthService) Revoke(ctx context.Context, plaintext, ip string) (bool, error) {
	if plaintext == "" {
		return false, nil
	}
	ip = normalizeIP(ip)

	token, err := s.rm.RefreshTokens(s.db).FindByHash(ctx, auth.HashToken(plaintext))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	now := s.clock.Now()
	if !token.IsActive(now) {
		return false, nil
	}

	ok, err := s.rm.RefreshTokens(s.db).Revoke(ctx, token.ID, now, ip)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Info(ctx, "refresh token revoked", "user_id", token.UserID, "ip", ip)
	}
	return ok, nil
}

// Promote grants the admin role to the user, creating the role on first use.
// Promoting an admin again is a no-op.
func (s *AuthService) Promote(ctx context.Context, userID string) error {
	user, err := s.rm.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	role, err := s.rm.Roles(s.db).Ensure(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("ensuring role %q: %w", models.RoleAdmin, err)
	}

	has, err := s.rm.Roles(s.db).HasRole(ctx, user.ID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	if err := s.rm.Roles(s.db).Assign(ctx, user.ID, role.ID); err != nil {
		return err
	}
	s.logger.Info(ctx, "user promoted to admin", "user_id", user.ID)
	return nil
}

// Demote removes the admin role from the user. If the role has never been
// created there is nothing to remove.
func (s *AuthService) Demote(ctx context.Context, userID string) error {
	user, err := s.rm.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	role, err := s.rm.Roles(s.db).Find(ctx, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.rm.Roles(s.db).Remove(ctx, user.ID, role.ID); err != nil {
		return err
	}
	s.logger.Info(ctx, "user demoted from admin", "user_id", user.ID)
	return nil
}

func (s *AuthService) issueRefreshToken(ctx context.Context, db dbx.DBTX, userID, ip string) (string, *models.RefreshToken, error) {
	plaintext, err := s.secrets.Generate()
	if err != nil {
		return "", nil, fmt.Errorf("generating refresh secret: %w", err)
	}

	now := s.clock.Now()
	record := models.NewRefreshToken(uuid.NewString(), auth.HashToken(plaintext),
		userID, now, now.Add(s.refreshLifetime), ip)

	if err := s.rm.RefreshTokens(db).Create(ctx, record); err != nil {
		return "", nil, err
	}
	return plaintext, record, nil
}
