// backend-go/internal/repository/postgres/anomaly_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

type anomalyRepository struct {
	db *DB
}

func NewAnomalyRepository(db *DB) *anomalyRepository {
	return &anomalyRepository{db: db}
}

func (r *anomalyRepository) Record(ctx context.Context, anomalies []domain.ReconciliationAnomaly) error {
	if len(anomalies) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO reconciliation_anomalies (id, business_id, entity_id, attempted, available, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, a := range anomalies {
			if _, err := tx.ExecContext(ctx, insert,
				a.ID, a.BusinessID, a.EntityID, a.Attempted, a.Available, a.OccurredAt); err != nil {
				return fmt.Errorf("failed to insert anomaly: %w", err)
			}
		}
		return nil
	})
}

func (r *anomalyRepository) List(ctx context.Context, businessID string, since time.Time) ([]domain.ReconciliationAnomaly, error) {
	query := `
		SELECT id, business_id, entity_id, attempted, available, occurred_at
		FROM reconciliation_anomalies
		WHERE business_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC
	`
	anomalies := []domain.ReconciliationAnomaly{}
	if err := r.db.SelectContext(ctx, &anomalies, query, businessID, since); err != nil {
		return nil, fmt.Errorf("failed to list anomalies: %w", err)
	}
	return anomalies, nil
}
