package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SirapobM/Api-test/internal/auth/domain"
	autherror "github.com/SirapobM/Api-test/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// too, which keeps the tests off a live database.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, refresh_token, refresh_token_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user         domain.User
		refreshToken *string
	)

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&refreshToken, &user.RefreshTokenExpiry, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	if refreshToken != nil {
		user.RefreshToken = *refreshToken
	}

	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return autherror.ErrEmailAlreadyInUse
		}

		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, updated_at = $4
		WHERE id = $5
	`, user.Name, user.Email, user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return autherror.ErrEmailAlreadyInUse
		}

		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	var inUse bool

	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check email usage: %w", err)
	}

	return inUse, nil
}

func (r *PostgresRepository) StoreAccessToken(ctx context.Context, at *domain.AccessToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO access_tokens (id, user_id, token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, at.ID, at.UserID, at.Token, at.IssuedAt, at.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	return nil
}

// GetByAccessToken does not filter on expiry: expired rows stay queryable so
// the service layer can reject them while the record is retained.
func (r *PostgresRepository) GetByAccessToken(ctx context.Context, token string) (*domain.User, *domain.AccessToken, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at,
		       a.id, a.user_id, a.token, a.issued_at, a.expires_at
		FROM access_tokens a
		JOIN users u ON u.id = a.user_id
		WHERE a.token = $1
		LIMIT 1
	`

	var (
		user domain.User
		at   domain.AccessToken
	)

	err := r.db.QueryRow(ctx, query, token).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
		&at.ID, &at.UserID, &at.Token, &at.IssuedAt, &at.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}

		return nil, nil, fmt.Errorf("failed to get user by access token: %w", err)
	}

	return &user, &at, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry = $2
		WHERE id = $3
	`, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}

	return nil
}

func (r *PostgresRepository) RevokeAccessTokens(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke access tokens: %w", err)
	}

	return nil
}

// RotateAccessTokens runs the whole refresh exchange in one transaction. The
// owner row is locked FOR UPDATE so concurrent presentations of the same
// refresh token serialize instead of both issuing tokens.
func (r *PostgresRepository) RotateAccessTokens(ctx context.Context, refreshToken string, now time.Time, replacement *domain.AccessToken) (*domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE refresh_token = $1 AND refresh_token_expiry > $2
		FOR UPDATE
	`

	user, err := scanUser(tx.QueryRow(ctx, query, refreshToken, now))
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, user.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke access tokens: %w", err)
	}

	replacement.UserID = user.ID

	_, err = tx.Exec(ctx, `
		INSERT INTO access_tokens (id, user_id, token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, replacement.ID, replacement.UserID, replacement.Token, replacement.IssuedAt, replacement.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store replacement access token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rotation: %w", err)
	}

	return user, nil
}
