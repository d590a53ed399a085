package admin

// Stats is the admin dashboard aggregate.
type Stats struct {
	Users     UserStats    `json:"users"`
	Companies CompanyStats `json:"companies"`
	Coupons   CouponStats  `json:"coupons"`
	Revenue   RevenueStats `json:"revenue"`
}

type UserStats struct {
	Total               int `json:"total"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
}

type CompanyStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Pending int `json:"pending"`
}

type CouponStats struct {
	Total       int `json:"total"`
	Approved    int `json:"approved"`
	Pending     int `json:"pending"`
	TotalUsages int `json:"totalUsages"`
}

// RevenueStats carries the estimated monthly figure: active subscriptions
// times the flat plan price. It is a projection, not billing data.
type RevenueStats struct {
	Monthly             string `json:"monthly"`
	ActiveSubscriptions int    `json:"activeSubscriptions"`
}
