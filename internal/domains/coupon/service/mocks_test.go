package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"clubelocal-backend/internal/domains/coupon"
)

// memRepo is an in-memory coupon.Repository used by the service tests.
type memRepo struct {
	mu sync.Mutex

	coupons    map[uuid.UUID]*coupon.Coupon
	usages     map[uuid.UUID]*coupon.CouponUsage
	favorites  map[uuid.UUID]*coupon.Favorite
	categories map[string]uuid.UUID

	// duplicateInserts forces that many ErrDuplicateCode results before an
	// insert succeeds, simulating code collisions.
	duplicateInserts int

	lastFilter *coupon.QueryFilter
}

func newMemRepo() *memRepo {
	return &memRepo{
		coupons:    make(map[uuid.UUID]*coupon.Coupon),
		usages:     make(map[uuid.UUID]*coupon.CouponUsage),
		favorites:  make(map[uuid.UUID]*coupon.Favorite),
		categories: make(map[string]uuid.UUID),
	}
}

var _ coupon.Repository = (*memRepo)(nil)

func (r *memRepo) Create(_ context.Context, c *coupon.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.coupons[c.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, c *coupon.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[c.ID]; !ok {
		return coupon.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.coupons[c.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[id]; !ok {
		return coupon.ErrNotFound
	}
	delete(r.coupons, id)
	return nil
}

func (r *memRepo) List(_ context.Context, filter *coupon.QueryFilter) ([]*coupon.Coupon, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	out := make([]*coupon.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memRepo) SetStatus(ctx context.Context, id uuid.UUID, status coupon.CouponStatus, isActive bool) (*coupon.Coupon, error) {
	r.mu.Lock()
	c, ok := r.coupons[id]
	if !ok {
		r.mu.Unlock()
		return nil, coupon.ErrNotFound
	}
	c.Status = status
	c.IsActive = isActive
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *memRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*coupon.Coupon, error) {
	r.mu.Lock()
	c, ok := r.coupons[id]
	if !ok {
		r.mu.Unlock()
		return nil, coupon.ErrNotFound
	}
	c.IsActive = active
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *memRepo) Counts(_ context.Context) (int, int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, approved, pending int
	for _, c := range r.coupons {
		total++
		if c.Status == coupon.StatusApproved && c.IsActive {
			approved++
		}
		if c.Status == coupon.StatusPending {
			pending++
		}
	}
	return total, approved, pending, nil
}

func (r *memRepo) CategoryIDByName(_ context.Context, name string) (*uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.categories[name]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (r *memRepo) InsertUsage(_ context.Context, u *coupon.CouponUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.duplicateInserts > 0 {
		r.duplicateInserts--
		return coupon.ErrDuplicateCode
	}
	for _, existing := range r.usages {
		if existing.Code == u.Code {
			return coupon.ErrDuplicateCode
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.IsUsed = false
	cp := *u
	r.usages[u.ID] = &cp
	return nil
}

func (r *memRepo) FindUsageByCode(_ context.Context, code string) (*coupon.CouponUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usages {
		if u.Code == code {
			cp := *u
			if c, ok := r.coupons[u.CouponID]; ok {
				ccp := *c
				cp.Coupon = &ccp
			}
			return &cp, nil
		}
	}
	return nil, coupon.ErrCodeNotFound
}

func (r *memRepo) FinalizeUsage(_ context.Context, usageID uuid.UUID) (*coupon.CouponUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usages[usageID]
	if !ok || u.IsUsed {
		return nil, coupon.ErrAlreadyUsed
	}
	now := time.Now()
	u.IsUsed = true
	u.UsedAt = &now
	cp := *u
	return &cp, nil
}

func (r *memRepo) CountUserValidatedUsages(_ context.Context, couponID, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, u := range r.usages {
		if u.CouponID == couponID && u.UserID == userID && u.IsUsed {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountValidatedUsages(_ context.Context, couponID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, u := range r.usages {
		if u.CouponID == couponID && u.IsUsed {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountAllValidatedUsages(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, u := range r.usages {
		if u.IsUsed {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListPendingUsages(_ context.Context, userID uuid.UUID) ([]*coupon.CouponUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*coupon.CouponUsage, 0)
	for _, u := range r.usages {
		if u.UserID != userID || u.IsUsed {
			continue
		}
		c, ok := r.coupons[u.CouponID]
		if !ok || time.Now().After(c.ValidUntil) {
			continue
		}
		cp := *u
		ccp := *c
		cp.Coupon = &ccp
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepo) ListValidatedUsages(_ context.Context, userID uuid.UUID) ([]*coupon.CouponUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*coupon.CouponUsage, 0)
	for _, u := range r.usages {
		if u.UserID != userID || !u.IsUsed {
			continue
		}
		cp := *u
		if c, ok := r.coupons[u.CouponID]; ok {
			ccp := *c
			cp.Coupon = &ccp
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepo) AddFavorite(_ context.Context, userID, couponID uuid.UUID) (*coupon.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == userID && f.CouponID == couponID {
			return nil, coupon.ErrFavoriteExists
		}
	}
	fav := &coupon.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		CouponID:  couponID,
		CreatedAt: time.Now(),
	}
	r.favorites[fav.ID] = fav
	cp := *fav
	return &cp, nil
}

func (r *memRepo) RemoveFavorite(_ context.Context, userID, couponID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.favorites {
		if f.UserID == userID && f.CouponID == couponID {
			delete(r.favorites, id)
			return nil
		}
	}
	return coupon.ErrFavoriteNotFound
}

func (r *memRepo) ListFavorites(_ context.Context, userID uuid.UUID) ([]*coupon.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*coupon.Favorite, 0)
	for _, f := range r.favorites {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memDirectory maps users to their company.
type memDirectory struct {
	byUser map[uuid.UUID]uuid.UUID
}

func (d *memDirectory) CompanyIDByUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := d.byUser[userID]
	if !ok {
		return uuid.Nil, coupon.ErrCompanyMissing
	}
	return id, nil
}
