package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"clubelocal-backend/internal/config"
	"clubelocal-backend/internal/domains/admin"
	"clubelocal-backend/internal/domains/user"
	"clubelocal-backend/pkg/cache"
	"clubelocal-backend/pkg/logger"
)

const statsCacheTTL = 30 * time.Second

// The stats endpoint only counts; these narrow interfaces are what the
// domain repositories already satisfy.
type (
	UserCounter interface {
		CountByRole(ctx context.Context, role user.Role) (int, error)
	}
	CompanyCounter interface {
		Counts(ctx context.Context) (total, active, pending int, err error)
	}
	CouponCounter interface {
		Counts(ctx context.Context) (total, approved, pending int, err error)
		CountAllValidatedUsages(ctx context.Context) (int, error)
	}
	SubscriptionCounter interface {
		CountActive(ctx context.Context) (int, error)
	}
)

// AdminService aggregates counters from every domain for the dashboard.
type AdminService struct {
	users         UserCounter
	companies     CompanyCounter
	coupons       CouponCounter
	subscriptions SubscriptionCounter
	billing       *config.BillingConfig
	cache         cache.Cache
}

func NewAdminService(
	users UserCounter,
	companies CompanyCounter,
	coupons CouponCounter,
	subscriptions SubscriptionCounter,
	billing *config.BillingConfig,
	c cache.Cache,
) *AdminService {
	return &AdminService{
		users:         users,
		companies:     companies,
		coupons:       coupons,
		subscriptions: subscriptions,
		billing:       billing,
		cache:         c,
	}
}

// Stats runs the dashboard counts, short-cached in Redis since the admin
// panel polls it. The revenue line multiplies active subscriptions by the
// flat plan price; it is a labelled estimate.
func (s *AdminService) Stats(ctx context.Context) (*admin.Stats, error) {
	if s.cache != nil {
		var cached admin.Stats
		hit, err := s.cache.Get(ctx, cache.KeyAdminStats, &cached)
		if err != nil {
			logger.Warn("stats cache read failed", map[string]interface{}{"error": err.Error()})
		} else if hit {
			return &cached, nil
		}
	}

	customers, err := s.users.CountByRole(ctx, user.RoleCustomer)
	if err != nil {
		return nil, err
	}
	activeSubs, err := s.subscriptions.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	compTotal, compActive, compPending, err := s.companies.Counts(ctx)
	if err != nil {
		return nil, err
	}
	coupTotal, coupApproved, coupPending, err := s.coupons.Counts(ctx)
	if err != nil {
		return nil, err
	}
	usages, err := s.coupons.CountAllValidatedUsages(ctx)
	if err != nil {
		return nil, err
	}

	monthly := s.billing.MonthlyPrice.Mul(decimal.NewFromInt(int64(activeSubs)))

	stats := &admin.Stats{
		Users: admin.UserStats{
			Total:               customers,
			ActiveSubscriptions: activeSubs,
		},
		Companies: admin.CompanyStats{
			Total:   compTotal,
			Active:  compActive,
			Pending: compPending,
		},
		Coupons: admin.CouponStats{
			Total:       coupTotal,
			Approved:    coupApproved,
			Pending:     coupPending,
			TotalUsages: usages,
		},
		Revenue: admin.RevenueStats{
			Monthly:             monthly.StringFixed(2),
			ActiveSubscriptions: activeSubs,
		},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.KeyAdminStats, stats, statsCacheTTL); err != nil {
			logger.Warn("stats cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return stats, nil
}
