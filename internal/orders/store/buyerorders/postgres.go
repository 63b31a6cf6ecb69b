package buyerorders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karigari/internal/orders/models"
	id "karigari/pkg/domain"
)

// PostgresStore persists parent orders as JSONB documents with lookup
// columns. Parents are immutable after checkout, so Put only needs to
// converge on retries.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed buyer order store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Put(ctx context.Context, order *models.BuyerOrder) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode buyer order: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO buyer_orders (order_id, buyer_id, document, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id) DO UPDATE SET document = EXCLUDED.document`,
		order.OrderID.String(), order.BuyerID.String(), doc, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("put buyer order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, orderID id.OrderID) (*models.BuyerOrder, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM buyer_orders WHERE order_id = $1`, orderID.String()).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get buyer order: %w", err)
	}
	var order models.BuyerOrder
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("decode buyer order: %w", err)
	}
	return &order, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (s *PostgresStore) ListByBuyer(ctx context.Context, buyerID id.UserID) ([]*models.BuyerOrder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT document FROM buyer_orders WHERE buyer_id = $1 ORDER BY created_at DESC`,
		buyerID.String())
	if err != nil {
		return nil, fmt.Errorf("list buyer orders: %w", err)
	}
	defer rows.Close()

	var out []*models.BuyerOrder
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan buyer order: %w", err)
		}
		var order models.BuyerOrder
		if err := json.Unmarshal(doc, &order); err != nil {
			return nil, fmt.Errorf("decode buyer order: %w", err)
		}
		out = append(out, &order)
	}
	return out, rows.Err()
}
