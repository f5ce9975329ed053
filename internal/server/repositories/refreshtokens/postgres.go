package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx). Rotation runs it against a transaction handle.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, token_hash, user_id, created_at, expires_at, created_by_ip)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.TokenHash, token.UserID, token.CreatedAt, token.ExpiresAt, token.CreatedByIP)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, token_hash, user_id, created_at, expires_at, created_by_ip,
		       revoked_at, revoked_by_ip, replaced_by_token_hash
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	var (
		id, tokenHash, userID, createdByIP string
		createdAt, expiresAt               time.Time
		revokedAt                          sql.NullTime
		revokedByIP, replacedByHash        sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&id, &tokenHash, &userID, &createdAt, &expiresAt, &createdByIP,
		&revokedAt, &revokedByIP, &replacedByHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var state models.State = models.Active{}
	if revokedAt.Valid {
		if replacedByHash.Valid {
			state = models.Rotated{
				At:            revokedAt.Time,
				ByIP:          revokedByIP.String,
				SuccessorHash: replacedByHash.String,
			}
		} else {
			state = models.Revoked{
				At:   revokedAt.Time,
				ByIP: revokedByIP.String,
			}
		}
	}

	return models.RestoreRefreshToken(id, tokenHash, userID, createdAt, expiresAt, createdByIP, state), nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time, ip string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2, revoked_by_ip = $3
		WHERE id = $1 AND revoked_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, at, ip)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) Rotate(ctx context.Context, id string, at time.Time, ip string, successorHash string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2, revoked_by_ip = $3, replaced_by_token_hash = $4
		WHERE id = $1 AND revoked_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, at, ip, successorHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
