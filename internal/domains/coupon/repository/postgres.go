package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clubelocal-backend/internal/domains/coupon"
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

var _ coupon.Repository = (*PostgresRepository)(nil)

const couponColumns = `c.id, c.company_id, c.category_id, c.title, c.description,
	c.discount_type, c.discount_value, c.image_url, c.terms_conditions,
	c.valid_from, c.valid_until, c.max_uses_per_user, c.total_uses_limit,
	c.status, c.is_active, c.created_at, c.updated_at`

// couponProjection adds the company and category summaries plus the usage
// count to the base columns. Every read goes through it so list items and
// single fetches carry the same shape.
const couponProjection = couponColumns + `,
	comp.name, comp.logo_url, comp.city,
	cat.id, cat.name, cat.icon,
	(SELECT COUNT(*) FROM coupon_usages cu WHERE cu.coupon_id = c.id)`

const couponJoins = `
	FROM coupons c
	JOIN companies comp ON comp.id = c.company_id
	LEFT JOIN categories cat ON cat.id = c.category_id`

func scanCouponProjection(row pgx.Row) (*coupon.Coupon, error) {
	var (
		c        coupon.Coupon
		compName string
		compLogo *string
		compCity *string
		catID    *uuid.UUID
		catName  *string
		catIcon  *string
	)
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.CategoryID, &c.Title, &c.Description,
		&c.DiscountType, &c.DiscountValue, &c.ImageURL, &c.TermsConditions,
		&c.ValidFrom, &c.ValidUntil, &c.MaxUsesPerUser, &c.TotalUsesLimit,
		&c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&compName, &compLogo, &compCity,
		&catID, &catName, &catIcon,
		&c.UsageCount,
	)
	if err != nil {
		return nil, err
	}

	c.Company = &coupon.CompanySummary{
		ID:      c.CompanyID,
		Name:    compName,
		LogoURL: compLogo,
		City:    compCity,
	}
	if catID != nil {
		c.Category = &coupon.CategorySummary{ID: *catID, Name: *catName, Icon: *catIcon}
	}
	return &c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	query := `
		INSERT INTO coupons (
			company_id, category_id, title, description, discount_type,
			discount_value, image_url, terms_conditions, valid_from,
			valid_until, max_uses_per_user, total_uses_limit, status, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err := r.db.Pool.QueryRow(ctx, query,
		c.CompanyID, c.CategoryID, c.Title, c.Description, c.DiscountType,
		c.DiscountValue, c.ImageURL, c.TermsConditions, c.ValidFrom,
		c.ValidUntil, c.MaxUsesPerUser, c.TotalUsesLimit, c.Status, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE c.id = $1`, couponProjection, couponJoins)

	c, err := scanCouponProjection(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("find coupon by id: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	query := `
		UPDATE coupons
		SET category_id = $2, title = $3, description = $4, discount_type = $5,
			discount_value = $6, image_url = $7, terms_conditions = $8,
			valid_from = $9, valid_until = $10, max_uses_per_user = $11,
			total_uses_limit = $12, status = $13, is_active = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.Pool.QueryRow(ctx, query,
		c.ID, c.CategoryID, c.Title, c.Description, c.DiscountType,
		c.DiscountValue, c.ImageURL, c.TermsConditions, c.ValidFrom,
		c.ValidUntil, c.MaxUsesPerUser, c.TotalUsesLimit, c.Status, c.IsActive,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coupon.ErrNotFound
		}
		return fmt.Errorf("update coupon: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, filter *coupon.QueryFilter) ([]*coupon.Coupon, int, error) {
	where, args := filter.Where(1)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, couponJoins, where)
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	limitPos := len(args) + 1
	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		couponProjection, couponJoins, where, filter.OrderBy(), limitPos, limitPos+1)
	args = append(args, filter.Limit, utils.Offset(filter.Page, filter.Limit))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]*coupon.Coupon, 0)
	for rows.Next() {
		c, err := scanCouponProjection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate coupons: %w", err)
	}
	return coupons, total, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status coupon.CouponStatus, isActive bool) (*coupon.Coupon, error) {
	query := `
		UPDATE coupons
		SET status = $2, is_active = $3, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, isActive)
	if err != nil {
		return nil, fmt.Errorf("set coupon status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, coupon.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*coupon.Coupon, error) {
	query := `
		UPDATE coupons
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, active)
	if err != nil {
		return nil, fmt.Errorf("set coupon active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, coupon.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *PostgresRepository) Counts(ctx context.Context) (total, approved, pending int, err error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'APPROVED' AND is_active = true),
			COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM coupons`

	if err = r.db.Pool.QueryRow(ctx, query).Scan(&total, &approved, &pending); err != nil {
		return 0, 0, 0, fmt.Errorf("coupon counts: %w", err)
	}
	return total, approved, pending, nil
}

func (r *PostgresRepository) CategoryIDByName(ctx context.Context, name string) (*uuid.UUID, error) {
	query := `
		SELECT id FROM categories
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT 1`

	var id uuid.UUID
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve category name: %w", err)
	}
	return &id, nil
}

func (r *PostgresRepository) InsertUsage(ctx context.Context, u *coupon.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (coupon_id, user_id, code, is_used)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at`

	err := r.db.Pool.QueryRow(ctx, query, u.CouponID, u.UserID, u.Code).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return coupon.ErrDuplicateCode
		}
		return fmt.Errorf("insert coupon usage: %w", err)
	}
	u.IsUsed = false
	return nil
}

// FindUsageByCode loads a usage with its coupon and the redeeming customer,
// everything the merchant-side validation needs in one read.
func (r *PostgresRepository) FindUsageByCode(ctx context.Context, code string) (*coupon.CouponUsage, error) {
	query := fmt.Sprintf(`
		SELECT cu.id, cu.coupon_id, cu.user_id, cu.code, cu.is_used, cu.used_at, cu.created_at,
			%s,
			u.id, u.full_name, u.email
		FROM coupon_usages cu
		JOIN coupons c ON c.id = cu.coupon_id
		JOIN users u ON u.id = cu.user_id
		WHERE cu.code = $1`, couponColumns)

	var (
		usage coupon.CouponUsage
		c     coupon.Coupon
		us    coupon.UserSummary
	)
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&usage.ID, &usage.CouponID, &usage.UserID, &usage.Code, &usage.IsUsed,
		&usage.UsedAt, &usage.CreatedAt,
		&c.ID, &c.CompanyID, &c.CategoryID, &c.Title, &c.Description,
		&c.DiscountType, &c.DiscountValue, &c.ImageURL, &c.TermsConditions,
		&c.ValidFrom, &c.ValidUntil, &c.MaxUsesPerUser, &c.TotalUsesLimit,
		&c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&us.ID, &us.FullName, &us.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrCodeNotFound
		}
		return nil, fmt.Errorf("find usage by code: %w", err)
	}
	usage.Coupon = &c
	usage.User = &us
	return &usage, nil
}

// FinalizeUsage flips is_used in a single conditional UPDATE so two
// merchants scanning the same code cannot both win.
func (r *PostgresRepository) FinalizeUsage(ctx context.Context, usageID uuid.UUID) (*coupon.CouponUsage, error) {
	query := `
		UPDATE coupon_usages
		SET is_used = true, used_at = NOW()
		WHERE id = $1 AND is_used = false
		RETURNING id, coupon_id, user_id, code, is_used, used_at, created_at`

	var usage coupon.CouponUsage
	err := r.db.Pool.QueryRow(ctx, query, usageID).Scan(
		&usage.ID, &usage.CouponID, &usage.UserID, &usage.Code,
		&usage.IsUsed, &usage.UsedAt, &usage.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("finalize usage: %w", err)
	}
	return &usage, nil
}

func (r *PostgresRepository) CountUserValidatedUsages(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2 AND is_used = true`,
		couponID, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count user usages: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) CountValidatedUsages(ctx context.Context, couponID uuid.UUID) (int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND is_used = true`,
		couponID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count coupon usages: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) CountAllValidatedUsages(ctx context.Context) (int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE is_used = true`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count validated usages: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) listUsages(ctx context.Context, userID uuid.UUID, onlyPending bool) ([]*coupon.CouponUsage, error) {
	cond := "cu.is_used = true"
	order := "cu.used_at DESC"
	if onlyPending {
		cond = "cu.is_used = false AND c.valid_until >= NOW()"
		order = "cu.created_at DESC"
	}

	query := fmt.Sprintf(`
		SELECT cu.id, cu.coupon_id, cu.user_id, cu.code, cu.is_used, cu.used_at, cu.created_at,
			%s,
			comp.name, comp.logo_url, comp.city
		FROM coupon_usages cu
		JOIN coupons c ON c.id = cu.coupon_id
		JOIN companies comp ON comp.id = c.company_id
		WHERE cu.user_id = $1 AND %s
		ORDER BY %s`, couponColumns, cond, order)

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list usages: %w", err)
	}
	defer rows.Close()

	usages := make([]*coupon.CouponUsage, 0)
	for rows.Next() {
		var (
			usage    coupon.CouponUsage
			c        coupon.Coupon
			compName string
			compLogo *string
			compCity *string
		)
		err := rows.Scan(
			&usage.ID, &usage.CouponID, &usage.UserID, &usage.Code,
			&usage.IsUsed, &usage.UsedAt, &usage.CreatedAt,
			&c.ID, &c.CompanyID, &c.CategoryID, &c.Title, &c.Description,
			&c.DiscountType, &c.DiscountValue, &c.ImageURL, &c.TermsConditions,
			&c.ValidFrom, &c.ValidUntil, &c.MaxUsesPerUser, &c.TotalUsesLimit,
			&c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&compName, &compLogo, &compCity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		c.Company = &coupon.CompanySummary{
			ID:      c.CompanyID,
			Name:    compName,
			LogoURL: compLogo,
			City:    compCity,
		}
		usage.Coupon = &c
		usages = append(usages, &usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usages: %w", err)
	}
	return usages, nil
}

func (r *PostgresRepository) ListPendingUsages(ctx context.Context, userID uuid.UUID) ([]*coupon.CouponUsage, error) {
	return r.listUsages(ctx, userID, true)
}

func (r *PostgresRepository) ListValidatedUsages(ctx context.Context, userID uuid.UUID) ([]*coupon.CouponUsage, error) {
	return r.listUsages(ctx, userID, false)
}

func (r *PostgresRepository) AddFavorite(ctx context.Context, userID, couponID uuid.UUID) (*coupon.Favorite, error) {
	query := `
		INSERT INTO favorites (user_id, coupon_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	fav := &coupon.Favorite{UserID: userID, CouponID: couponID}
	err := r.db.Pool.QueryRow(ctx, query, userID, couponID).Scan(&fav.ID, &fav.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, coupon.ErrFavoriteExists
		}
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	return fav, nil
}

func (r *PostgresRepository) RemoveFavorite(ctx context.Context, userID, couponID uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND coupon_id = $2`,
		userID, couponID,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrFavoriteNotFound
	}
	return nil
}

func (r *PostgresRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*coupon.Favorite, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.user_id, f.coupon_id, f.created_at,
			%s,
			comp.name, comp.logo_url, comp.city,
			cat.id, cat.name, cat.icon
		FROM favorites f
		JOIN coupons c ON c.id = f.coupon_id
		JOIN companies comp ON comp.id = c.company_id
		LEFT JOIN categories cat ON cat.id = c.category_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, couponColumns)

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*coupon.Favorite, 0)
	for rows.Next() {
		var (
			fav      coupon.Favorite
			c        coupon.Coupon
			compName string
			compLogo *string
			compCity *string
			catID    *uuid.UUID
			catName  *string
			catIcon  *string
		)
		err := rows.Scan(
			&fav.ID, &fav.UserID, &fav.CouponID, &fav.CreatedAt,
			&c.ID, &c.CompanyID, &c.CategoryID, &c.Title, &c.Description,
			&c.DiscountType, &c.DiscountValue, &c.ImageURL, &c.TermsConditions,
			&c.ValidFrom, &c.ValidUntil, &c.MaxUsesPerUser, &c.TotalUsesLimit,
			&c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&compName, &compLogo, &compCity,
			&catID, &catName, &catIcon,
		)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		c.Company = &coupon.CompanySummary{
			ID:      c.CompanyID,
			Name:    compName,
			LogoURL: compLogo,
			City:    compCity,
		}
		if catID != nil {
			c.Category = &coupon.CategorySummary{ID: *catID, Name: *catName, Icon: *catIcon}
		}
		fav.Coupon = &c
		favorites = append(favorites, &fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}
