package sellerorders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karigari/internal/orders/models"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// PostgresStore persists child orders. The full order lives in a JSONB
// document; the columns exist for lookups and filters, and status is kept
// in both places so document and column never disagree after an update.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed seller order store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, order *models.SellerOrder) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode seller order: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO seller_orders (child_id, parent_order_id, seller_id, buyer_id, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (child_id) DO UPDATE SET
			status = EXCLUDED.status,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`,
		order.ChildID.String(), order.ParentOrderID.String(), order.SellerID.String(),
		order.BuyerID.String(), string(order.Status), doc, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert seller order: %w", err)
	}
	return nil
}

func scanSellerOrder(row pgx.Row) (*models.SellerOrder, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return nil, err
	}
	var order models.SellerOrder
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("decode seller order: %w", err)
	}
	return &order, nil
}

func (s *PostgresStore) Get(ctx context.Context, childID id.SellerOrderID) (*models.SellerOrder, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT document FROM seller_orders WHERE child_id = $1`, childID.String())
	order, err := scanSellerOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get seller order: %w", err)
	}
	return order, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.SellerOrder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	defer rows.Close()

	var out []*models.SellerOrder
	for rows.Next() {
		order, err := scanSellerOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seller order: %w", err)
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

// ListBySeller returns the seller's child orders, newest first.
func (s *PostgresStore) ListBySeller(ctx context.Context, sellerID id.UserID) ([]*models.SellerOrder, error) {
	return s.list(ctx,
		`SELECT document FROM seller_orders WHERE seller_id = $1 ORDER BY created_at DESC`,
		sellerID.String())
}

// ListByParent returns every child spawned by one checkout.
func (s *PostgresStore) ListByParent(ctx context.Context, parentID id.OrderID) ([]*models.SellerOrder, error) {
	return s.list(ctx,
		`SELECT document FROM seller_orders WHERE parent_order_id = $1 ORDER BY seller_id`,
		parentID.String())
}

// UpdateStatus rewrites the status column and patches the same field inside
// the document in one statement.
func (s *PostgresStore) UpdateStatus(ctx context.Context, childID id.SellerOrderID, status models.Status, updatedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE seller_orders SET
			status = $2,
			document = jsonb_set(jsonb_set(document, '{status}', to_jsonb($2::text)), '{updated_at}', to_jsonb($3::timestamptz)),
			updated_at = $3
		WHERE child_id = $1`,
		childID.String(), string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update seller order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "seller order not found")
	}
	return nil
}
