package coupon

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCustomerCouponFilterDefaults(t *testing.T) {
	t.Parallel()

	req := &ListCouponsRequest{Page: 1, Limit: 20}
	req.Normalize()
	where, args := CustomerCouponFilter(req).Where(1)

	require.Contains(t, where, "c.status = 'APPROVED'")
	require.Contains(t, where, "c.is_active = true")
	require.Contains(t, where, "c.valid_until >= NOW()")
	require.Empty(t, args)
}

func TestCustomerCouponFilterSearchNumbering(t *testing.T) {
	t.Parallel()

	req := &ListCouponsRequest{Search: "pizza", Page: 1, Limit: 20}
	req.Normalize()
	f := CustomerCouponFilter(req).WithCompany(uuid.New())
	where, args := f.Where(1)

	// One placeholder per argument; the search term is reused inside a
	// single condition.
	require.Len(t, args, 2)
	require.Equal(t, "%pizza%", args[0])
	require.Contains(t, where, "c.title ILIKE $1")
	require.Contains(t, where, "c.description ILIKE $1")
	require.Contains(t, where, "comp.name ILIKE $1")
	require.Contains(t, where, "c.company_id = $2")
}

func TestCompanyCouponFilterShowsEveryStatus(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	req := &ListCouponsRequest{Page: 1, Limit: 20}
	req.Normalize()
	where, args := CompanyCouponFilter(companyID, req).Where(1)

	require.NotContains(t, where, "c.status")
	require.NotContains(t, where, "c.is_active")
	require.NotContains(t, where, "valid_until")
	require.Contains(t, where, "c.company_id = $1")
	require.Equal(t, []any{companyID}, args)
}

func TestAdminCouponFilterStatusOverride(t *testing.T) {
	t.Parallel()

	req := &ListCouponsRequest{Status: "PENDING", Page: 1, Limit: 20}
	req.Normalize()
	where, args := AdminCouponFilter(req).Where(1)

	require.Contains(t, where, "c.status = $1")
	require.Equal(t, []any{"PENDING"}, args)
	require.NotContains(t, where, "c.is_active")
}

func TestAdminCouponFilterDefaultsToCustomerView(t *testing.T) {
	t.Parallel()

	req := &ListCouponsRequest{Page: 1, Limit: 20}
	req.Normalize()
	where, _ := AdminCouponFilter(req).Where(1)

	require.Contains(t, where, "c.status = 'APPROVED'")
	require.Contains(t, where, "c.is_active = true")
}

func TestModerationCouponFilter(t *testing.T) {
	t.Parallel()

	where, args := ModerationCouponFilter("", 1, 20).Where(1)
	require.Equal(t, "1=1", where)
	require.Empty(t, args)

	where, args = ModerationCouponFilter("all", 1, 20).Where(1)
	require.Equal(t, "1=1", where)
	require.Empty(t, args)

	where, args = ModerationCouponFilter("REJECTED", 1, 20).Where(1)
	require.Contains(t, where, "c.status = $1")
	require.Equal(t, []any{"REJECTED"}, args)
}

func TestQueryFilterWhereStartPosition(t *testing.T) {
	t.Parallel()

	f := &QueryFilter{}
	f.addArg(`c.company_id = %[1]s`, "x")
	f.addArg(`c.category_id = %[1]s`, "y")
	where, args := f.Where(3)

	require.Contains(t, where, "c.company_id = $3")
	require.Contains(t, where, "c.category_id = $4")
	require.Equal(t, []any{"x", "y"}, args)
}

func TestQueryFilterOrderByWhitelist(t *testing.T) {
	t.Parallel()

	req := &ListCouponsRequest{SortBy: "validUntil", SortOrder: "asc", Page: 1, Limit: 20}
	req.Normalize()
	f := CustomerCouponFilter(req)
	require.Equal(t, "c.valid_until ASC", f.OrderBy())

	req = &ListCouponsRequest{SortBy: "evil; DROP TABLE coupons", Page: 1, Limit: 20}
	req.Normalize()
	f = CustomerCouponFilter(req)
	require.Equal(t, "c.created_at DESC", f.OrderBy())
	require.False(t, strings.Contains(f.OrderBy(), "DROP"))
}
