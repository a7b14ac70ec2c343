package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/session-bridge/internal/domain"
)

// ErrDuplicateEmail is returned when a create races another bridge call for
// the same email and loses to the unique index. Callers retry the lookup.
var ErrDuplicateEmail = errors.New("identity email already exists")

// IdentityRepository defines persistence access for platform identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	UpdateMetadata(ctx context.Context, id, name, avatarURL string) error
	List(ctx context.Context, limit, offset int) ([]domain.Identity, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (email, name, avatar_url, provider, email_confirmed)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		identity.Email,
		identity.Name,
		identity.AvatarURL,
		identity.Provider,
		identity.EmailConfirmed,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	const query = `
        SELECT id, email, name, avatar_url, provider, email_confirmed, created_at, updated_at
        FROM identities WHERE id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail matches case-insensitively; one record exists per unique email.
func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const query = `
        SELECT id, email, name, avatar_url, provider, email_confirmed, created_at, updated_at
        FROM identities WHERE LOWER(email)=LOWER($1)`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *identityRepository) UpdateMetadata(ctx context.Context, id, name, avatarURL string) error {
	const query = `
        UPDATE identities SET name=$1, avatar_url=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, name, avatarURL, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) List(ctx context.Context, limit, offset int) ([]domain.Identity, error) {
	const query = `
        SELECT id, email, name, avatar_url, provider, email_confirmed, created_at, updated_at
        FROM identities ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	identities := make([]domain.Identity, 0, limit)
	for rows.Next() {
		var identity domain.Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.Email,
			&identity.Name,
			&identity.AvatarURL,
			&identity.Provider,
			&identity.EmailConfirmed,
			&identity.CreatedAt,
			&identity.UpdatedAt,
		); err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func (r *identityRepository) scanOne(row pgx.Row) (*domain.Identity, error) {
	var identity domain.Identity
	if err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.Name,
		&identity.AvatarURL,
		&identity.Provider,
		&identity.EmailConfirmed,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}
