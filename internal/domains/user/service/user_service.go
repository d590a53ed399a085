package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"clubelocal-backend/internal/domains/coupon"
	"clubelocal-backend/internal/domains/user"
	"clubelocal-backend/pkg/jwt"
	"clubelocal-backend/pkg/logger"
)

const bcryptCost = 10

type UserService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager) *UserService {
	return &UserService{repo: repo, jwtManager: jwtManager}
}

var _ user.Service = (*UserService)(nil)

// Signup registers a new account. Self-service registration always produces
// a CUSTOMER; the role field is not accepted from the caller.
func (s *UserService) Signup(ctx context.Context, req *user.SignupRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Role:         user.RoleCustomer,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(u.ID.String(), u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id": u.ID.String(),
	})

	u.Sanitize()
	return &user.AuthResponse{Token: token, User: u}, nil
}

// Login authenticates any role. Unknown email and wrong password collapse
// into the same error so the endpoint does not leak account existence.
func (s *UserService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(u.ID.String(), u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	u.Sanitize()
	return &user.AuthResponse{Token: token, User: u}, nil
}

// GetProfile assembles the profile view: the account itself, an optional
// company summary, the latest active subscription and redemption stats.
// The savings figure is an estimate built from the redeemed coupons' terms.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.ProfileResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Sanitize()

	companySummary, err := s.repo.CompanySummaryByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.LatestActiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ValidatedSavings(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.repo.FavoritesCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(coupon.SavingsEstimate(coupon.DiscountType(row.DiscountType), row.DiscountValue))
	}

	return &user.ProfileResponse{
		User:         u,
		Company:      companySummary,
		Subscription: sub,
		Stats: user.ProfileStats{
			CouponsUsed:    len(rows),
			FavoritesCount: favorites,
			TotalSavings:   total,
		},
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.AvatarURL != nil {
		u.AvatarURL = req.AvatarURL
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	u.Sanitize()
	return u, nil
}

func (s *UserService) List(ctx context.Context, req *user.ListUsersRequest) ([]*user.User, int, error) {
	req.Normalize()

	if req.Role != "" && !user.Role(req.Role).IsValid() {
		return nil, 0, user.ErrInvalidRole
	}

	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	for _, u := range users {
		u.Sanitize()
	}
	return users, total, nil
}
