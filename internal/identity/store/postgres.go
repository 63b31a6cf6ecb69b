package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karigari/internal/identity/models"
	id "karigari/pkg/domain"
)

// PostgresStore persists the user directory in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed user directory.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, role, name, email, phone, address, shop_name, location, profile_complete, created_at
		FROM users WHERE id = $1`, userID.String())

	var u models.User
	err := row.Scan(&u.ID, &u.Role, &u.Name, &u.Email, &u.Phone, &u.Address,
		&u.ShopName, &u.Location, &u.ProfileComplete, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) Put(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, role, name, email, phone, address, shop_name, location, profile_complete, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			role = EXCLUDED.role,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			shop_name = EXCLUDED.shop_name,
			location = EXCLUDED.location,
			profile_complete = EXCLUDED.profile_complete`,
		user.ID.String(), string(user.Role), user.Name, user.Email, user.Phone,
		user.Address, user.ShopName, user.Location, user.ProfileComplete, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}
