package category

import "context"

type Repository interface {
	ListWithLiveCounts(ctx context.Context) ([]*WithCount, error)
}

type Service interface {
	List(ctx context.Context) ([]*WithCount, error)
}
