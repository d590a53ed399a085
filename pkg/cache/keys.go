package cache

// Cache keys shared between the services that write them and the ones
// that invalidate them.
const (
	KeyCategoriesLive = "categories:live"
	KeyAdminStats     = "admin:stats"
)
