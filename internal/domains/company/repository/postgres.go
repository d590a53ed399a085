package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clubelocal-backend/internal/domains/company"
	"clubelocal-backend/internal/infrastructure/database"
	"clubelocal-backend/internal/shared/utils"
)

type PostgresRepository struct {
	db *database.PostgresDB
}

func NewPostgresRepository(db *database.PostgresDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ company.Repository = (*PostgresRepository)(nil)

const companyColumns = `id, user_id, name, description, category_id, address, city,
	phone, instagram, website, logo_url, status, is_active, created_at, updated_at`

func scanCompany(row pgx.Row) (*company.Company, error) {
	var c company.Company
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.CategoryID, &c.Address,
		&c.City, &c.Phone, &c.Instagram, &c.Website, &c.LogoURL, &c.Status,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1`, companyColumns)

	c, err := scanCompany(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrNotFound
		}
		return nil, fmt.Errorf("find company by id: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*company.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE user_id = $1`, companyColumns)

	c, err := scanCompany(r.db.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrNotFound
		}
		return nil, fmt.Errorf("find company by user id: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, req *company.ListCompaniesRequest) ([]*company.Company, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argPos := 1

	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, req.Status)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR city ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+strings.TrimSpace(req.Search)+"%")
		argPos++
	}

	where := utils.JoinWithAnd(conditions)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM companies WHERE %s`, where)
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM companies
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, companyColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, utils.Offset(req.Page, req.Limit))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]*company.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, total, nil
}

// UpdateStatus keeps is_active in lockstep with the new status so listings
// never show a suspended company as active.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status company.Status) (*company.Company, error) {
	query := fmt.Sprintf(`
		UPDATE companies
		SET status = $2, is_active = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, companyColumns)

	c, err := scanCompany(r.db.Pool.QueryRow(ctx, query, id, status, status == company.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrNotFound
		}
		return nil, fmt.Errorf("update company status: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Counts(ctx context.Context) (total, active, pending int, err error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'ACTIVE'),
			COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM companies`

	if err = r.db.Pool.QueryRow(ctx, query).Scan(&total, &active, &pending); err != nil {
		return 0, 0, 0, fmt.Errorf("company counts: %w", err)
	}
	return total, active, pending, nil
}
