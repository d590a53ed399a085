package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, req *ListUsersRequest) ([]*User, int, error)
	CountByRole(ctx context.Context, role Role) (int, error)

	// Profile aggregation. The summary lookups return (nil, nil) when the
	// user has no matching row.
	CompanySummaryByUserID(ctx context.Context, userID uuid.UUID) (*CompanySummary, error)
	LatestActiveSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionSummary, error)
	ValidatedSavings(ctx context.Context, userID uuid.UUID) ([]SavingsRow, error)
	FavoritesCount(ctx context.Context, userID uuid.UUID) (int, error)
}
