package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clubelocal-backend/internal/domains/subscription"
	"clubelocal-backend/internal/infrastructure/database"
)

type PostgresRepository struct {
	db *database.PostgresDB
}

func NewPostgresRepository(db *database.PostgresDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ subscription.Repository = (*PostgresRepository)(nil)

// FindLatestActiveByUser returns (nil, nil) when the user holds no active
// subscription.
func (r *PostgresRepository) FindLatestActiveByUser(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	query := `
		SELECT id, user_id, plan_type, status, price, start_date, end_date, created_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE'
		ORDER BY created_at DESC
		LIMIT 1`

	var s subscription.Subscription
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.PlanType, &s.Status, &s.Price,
		&s.StartDate, &s.EndDate, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active subscription: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = 'ACTIVE'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count active subscriptions: %w", err)
	}
	return total, nil
}
