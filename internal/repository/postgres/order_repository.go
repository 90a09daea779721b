// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

type orderLineRow struct {
	OrderID     string  `db:"order_id"`
	ProductID   string  `db:"product_id"`
	ProductName string  `db:"product_name"`
	Quantity    int     `db:"quantity"`
	UnitPrice   float64 `db:"unit_price"`
	Position    int     `db:"position"`
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	query := `
		SELECT id, business_id, total, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var order domain.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	lines, err := r.GetPreviousLines(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines
	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO orders (id, business_id, total, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
		`
		if _, err := tx.ExecContext(ctx, insert,
			order.ID, order.BusinessID, order.Total, order.Status); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return insertLines(ctx, tx, order.ID, order.Lines)
	})
}

func (r *orderRepository) GetPreviousLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	query := `
		SELECT order_id, product_id, product_name, quantity, unit_price, position
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position
	`
	rows := []orderLineRow{}
	if err := r.db.SelectContext(ctx, &rows, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	lines := make([]domain.OrderLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.OrderLine{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
		})
	}
	return lines, nil
}

// ReplaceLines swaps the order's line snapshot after an edit reconciled.
func (r *orderRepository) ReplaceLines(ctx context.Context, orderID string, lines []domain.OrderLine, total float64) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		update := `UPDATE orders SET total = $2, updated_at = NOW() WHERE id = $1`
		res, err := tx.ExecContext(ctx, update, orderID, total)
		if err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return domain.ErrOrderNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
			return fmt.Errorf("failed to clear order lines: %w", err)
		}
		return insertLines(ctx, tx, orderID, lines)
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ListCompleted(ctx context.Context, businessID string, window domain.ReportWindow) ([]domain.Order, error) {
	query := `
		SELECT id, business_id, total, status, created_at, updated_at
		FROM orders
		WHERE business_id = $1
		  AND status IN ('dispatched', 'delivered')
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at
	`
	var from, to interface{}
	if !window.From.IsZero() {
		from = window.From
	}
	if !window.To.IsZero() {
		to = window.To
	}

	orders := []domain.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, businessID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list completed orders: %w", err)
	}
	for i := range orders {
		lines, err := r.GetPreviousLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func insertLines(ctx context.Context, tx *sqlx.Tx, orderID string, lines []domain.OrderLine) error {
	insert := `
		INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, line := range lines {
		if _, err := tx.ExecContext(ctx, insert,
			orderID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice, i); err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}
	return nil
}
