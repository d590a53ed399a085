package repository

import (
	"context"
	"fmt"

	"clubelocal-backend/internal/domains/category"
	"clubelocal-backend/internal/infrastructure/database"
)

type PostgresRepository struct {
	db *database.PostgresDB
}

func NewPostgresRepository(db *database.PostgresDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ category.Repository = (*PostgresRepository)(nil)

// ListWithLiveCounts counts only coupons a customer could redeem right now.
func (r *PostgresRepository) ListWithLiveCounts(ctx context.Context) ([]*category.WithCount, error) {
	query := `
		SELECT cat.id, cat.name, cat.icon, cat.created_at,
			COUNT(c.id) FILTER (
				WHERE c.status = 'APPROVED'
				AND c.is_active = true
				AND c.valid_from <= NOW()
				AND c.valid_until >= NOW()
			)
		FROM categories cat
		LEFT JOIN coupons c ON c.category_id = cat.id
		GROUP BY cat.id, cat.name, cat.icon, cat.created_at
		ORDER BY cat.name ASC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*category.WithCount, 0)
	for rows.Next() {
		var wc category.WithCount
		if err := rows.Scan(&wc.ID, &wc.Name, &wc.Icon, &wc.CreatedAt, &wc.CouponCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}
