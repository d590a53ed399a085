package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clubelocal-backend/internal/domains/user"
	"clubelocal-backend/internal/infrastructure/database"
	"clubelocal-backend/internal/shared/utils"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *database.PostgresDB
}

func NewPostgresRepository(db *database.PostgresDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ user.Repository = (*PostgresRepository)(nil)

const userColumns = `id, email, password_hash, full_name, phone, avatar_url, role, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.Pool.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET full_name = $2, phone = $3, avatar_url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.Pool.QueryRow(ctx, query, u.ID, u.FullName, u.Phone, u.AvatarURL).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, req *user.ListUsersRequest) ([]*user.User, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argPos := 1

	if req.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argPos))
		args = append(args, req.Role)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+strings.TrimSpace(req.Search)+"%")
		argPos++
	}

	where := utils.JoinWithAnd(conditions)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, where)
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, userColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, utils.Offset(req.Page, req.Limit))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func (r *PostgresRepository) CountByRole(ctx context.Context, role user.Role) (int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) CompanySummaryByUserID(ctx context.Context, userID uuid.UUID) (*user.CompanySummary, error) {
	query := `
		SELECT id, name, logo_url, city, status
		FROM companies
		WHERE user_id = $1`

	var cs user.CompanySummary
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&cs.ID, &cs.Name, &cs.LogoURL, &cs.City, &cs.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("company summary: %w", err)
	}
	return &cs, nil
}

func (r *PostgresRepository) LatestActiveSubscription(ctx context.Context, userID uuid.UUID) (*user.SubscriptionSummary, error) {
	query := `
		SELECT id, plan_type, status, price, start_date, end_date
		FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE'
		ORDER BY created_at DESC
		LIMIT 1`

	var ss user.SubscriptionSummary
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&ss.ID, &ss.PlanType, &ss.Status, &ss.Price, &ss.StartDate, &ss.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest subscription: %w", err)
	}
	return &ss, nil
}

// ValidatedSavings returns the discount terms of every validated redemption,
// one row per usage, so the service can sum an estimate.
func (r *PostgresRepository) ValidatedSavings(ctx context.Context, userID uuid.UUID) ([]user.SavingsRow, error) {
	query := `
		SELECT c.discount_type, c.discount_value
		FROM coupon_usages cu
		JOIN coupons c ON c.id = cu.coupon_id
		WHERE cu.user_id = $1 AND cu.is_used = true`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("validated savings: %w", err)
	}
	defer rows.Close()

	result := make([]user.SavingsRow, 0)
	for rows.Next() {
		var row user.SavingsRow
		if err := rows.Scan(&row.DiscountType, &row.DiscountValue); err != nil {
			return nil, fmt.Errorf("scan savings row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings rows: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) FavoritesCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return total, nil
}
