package store

import (
	"context"
	"database/sql"

	"etuitions-server/internal/models"
)

// InsertOrder materializes an order if no order with the same transaction_id
// exists yet. The unique index on transaction_id arbitrates concurrent
// confirmations; an application-level existence check cannot. Returns false
// when the order was already present.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) (bool, error) {
	query := `
		INSERT INTO orders (tutor_id, transaction_id, student_email, status, quantity, price, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, order, query,
		order.TutorID, order.TransactionID, order.StudentEmail,
		order.Status, order.Quantity, order.Price, order.Image)
	if err == sql.ErrNoRows {
		// Conflict: another confirmation already inserted this transaction.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetOrderByTransactionID retrieves an order by the provider's payment-intent id
func (s *Store) GetOrderByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE transaction_id = $1", transactionID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByStudent retrieves a student's orders, newest first
func (s *Store) ListOrdersByStudent(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE student_email = $1 ORDER BY created_at DESC", email)
	return orders, err
}
