package storage

import (
	"context"

	"github.com/clinicbook/clinicbook/libs/db"
)

// Delivery is one terminal delivery outcome, kept for audit and debugging.
type Delivery struct {
	Recipient string
	Action    string
	Subject   string
	Status    string
	Attempts  int
	Error     string
}

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

type DeliveryRepository struct {
	pool *db.Pool
}

func NewDeliveryRepository(pool *db.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_deliveries (recipient, action, subject, status, attempts, error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.Recipient, d.Action, d.Subject, d.Status, d.Attempts, nullIfEmpty(d.Error))
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
