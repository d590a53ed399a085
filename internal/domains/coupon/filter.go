package coupon

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QueryFilter is a fully-resolved listing filter, built before any SQL
// runs. Each role has its own named constructor so the visibility rules
// live in one reviewable place instead of being spliced together inside
// the repository.
type QueryFilter struct {
	conds []filterCond

	SortColumn string
	SortDesc   bool
	Page       int
	Limit      int
}

type filterCond struct {
	// expr uses %[1]s for the positional placeholder when hasArg is set.
	expr   string
	arg    any
	hasArg bool
}

func (f *QueryFilter) add(expr string) {
	f.conds = append(f.conds, filterCond{expr: expr})
}

func (f *QueryFilter) addArg(expr string, arg any) {
	f.conds = append(f.conds, filterCond{expr: expr, arg: arg, hasArg: true})
}

// Where renders the WHERE clause with placeholders numbered from startPos
// and returns the matching argument slice.
func (f *QueryFilter) Where(startPos int) (string, []any) {
	if len(f.conds) == 0 {
		return "1=1", nil
	}
	parts := make([]string, 0, len(f.conds))
	args := make([]any, 0, len(f.conds))
	pos := startPos
	for _, c := range f.conds {
		if c.hasArg {
			parts = append(parts, fmt.Sprintf(c.expr, fmt.Sprintf("$%d", pos)))
			args = append(args, c.arg)
			pos++
		} else {
			parts = append(parts, c.expr)
		}
	}
	return strings.Join(parts, " AND "), args
}

// OrderBy renders the validated ORDER BY expression.
func (f *QueryFilter) OrderBy() string {
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return f.SortColumn + " " + dir
}

func newBaseFilter(req *ListCouponsRequest) *QueryFilter {
	f := &QueryFilter{Page: req.Page, Limit: req.Limit}

	// Sort fields are whitelisted; anything unknown falls back to creation
	// order.
	switch req.SortBy {
	case "validUntil":
		f.SortColumn = "c.valid_until"
	default:
		f.SortColumn = "c.created_at"
	}
	f.SortDesc = !strings.EqualFold(req.SortOrder, "asc")

	if req.Search != "" {
		f.addArg(`(c.title ILIKE %[1]s OR c.description ILIKE %[1]s OR comp.name ILIKE %[1]s)`,
			"%"+strings.TrimSpace(req.Search)+"%")
	}
	return f
}

// WithCategory narrows the filter to a category already resolved by name.
func (f *QueryFilter) WithCategory(categoryID uuid.UUID) *QueryFilter {
	f.addArg(`c.category_id = %[1]s`, categoryID)
	return f
}

// WithCompany narrows the filter to one company.
func (f *QueryFilter) WithCompany(companyID uuid.UUID) *QueryFilter {
	f.addArg(`c.company_id = %[1]s`, companyID)
	return f
}

// CustomerCouponFilter shows only what a customer may redeem: approved,
// active and not yet expired. Expired coupons drop out of listings but a
// future valid_from does not hide them.
func CustomerCouponFilter(req *ListCouponsRequest) *QueryFilter {
	f := newBaseFilter(req)
	f.add(`c.status = 'APPROVED'`)
	f.add(`c.is_active = true`)
	f.add(`c.valid_until >= NOW()`)
	return f
}

// CompanyCouponFilter shows a merchant the full state of its own inventory:
// every status, inactive and expired included.
func CompanyCouponFilter(companyID uuid.UUID, req *ListCouponsRequest) *QueryFilter {
	f := newBaseFilter(req)
	f.addArg(`c.company_id = %[1]s`, companyID)
	return f
}

// ModerationCouponFilter backs the admin review queue: every company,
// every window, optionally narrowed to one status ("all" or empty means
// no narrowing), newest first.
func ModerationCouponFilter(status string, page, limit int) *QueryFilter {
	f := &QueryFilter{
		SortColumn: "c.created_at",
		SortDesc:   true,
		Page:       page,
		Limit:      limit,
	}
	if status != "" && status != "all" {
		f.addArg(`c.status = %[1]s`, status)
	}
	return f
}

// AdminCouponFilter defaults to the customer view; an explicit status
// widens it to that status regardless of the active flag.
func AdminCouponFilter(req *ListCouponsRequest) *QueryFilter {
	f := newBaseFilter(req)
	if req.Status != "" {
		f.addArg(`c.status = %[1]s`, req.Status)
		f.add(`c.valid_until >= NOW()`)
		return f
	}
	f.add(`c.status = 'APPROVED'`)
	f.add(`c.is_active = true`)
	f.add(`c.valid_until >= NOW()`)
	return f
}
