package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karigari/internal/catalog/models"
	id "karigari/pkg/domain"
)

// PostgresStore persists catalog records in PostgreSQL. Unrecognized upstream
// fields live in the extra JSONB column so nothing is lost on round trips.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed catalog store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const productColumns = `id, title, description, price, category, status, images,
	seller_id, user_id, created_by, uid, seller, artisan_id, extra, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p      models.Product
		images []byte
		extra  []byte
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Status, &images,
		&p.Identity.SellerID, &p.Identity.UserID, &p.Identity.CreatedBy, &p.Identity.UID,
		&p.Identity.Seller, &p.Identity.ArtisanID, &extra, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if len(extra) > 0 && string(extra) != "{}" {
		if err := json.Unmarshal(extra, &p.Extra); err != nil {
			return nil, fmt.Errorf("decode extra: %w", err)
		}
	}
	return &p, nil
}

func (s *PostgresStore) Get(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID.String())
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx,
		`SELECT `+productColumns+` FROM products WHERE status = $1 OR status = '' ORDER BY created_at DESC`,
		string(models.StatusActive))
}

func (s *PostgresStore) Put(ctx context.Context, product *models.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	extra := []byte("{}")
	if len(product.Extra) > 0 {
		if extra, err = json.Marshal(product.Extra); err != nil {
			return fmt.Errorf("encode extra: %w", err)
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			images = EXCLUDED.images,
			seller_id = EXCLUDED.seller_id,
			user_id = EXCLUDED.user_id,
			created_by = EXCLUDED.created_by,
			uid = EXCLUDED.uid,
			seller = EXCLUDED.seller,
			artisan_id = EXCLUDED.artisan_id,
			extra = EXCLUDED.extra,
			updated_at = EXCLUDED.updated_at`,
		product.ID.String(), product.Title, product.Description, product.Price,
		product.Category, string(product.Status), images,
		product.Identity.SellerID, product.Identity.UserID, product.Identity.CreatedBy,
		product.Identity.UID, product.Identity.Seller, product.Identity.ArtisanID,
		extra, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

// SetSellerID backfills the canonical seller_id column without touching any
// other identity field.
func (s *PostgresStore) SetSellerID(ctx context.Context, productID id.ProductID, sellerID id.UserID, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE products SET seller_id = $2, updated_at = $3 WHERE id = $1`,
		productID.String(), sellerID.String(), now)
	if err != nil {
		return fmt.Errorf("set seller id: %w", err)
	}
	return nil
}
