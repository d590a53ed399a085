package subscription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	FindLatestActiveByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	CountActive(ctx context.Context) (int, error)
}
