package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"clubelocal-backend/internal/config"
	"clubelocal-backend/internal/domains/coupon"
)

func testCouponConfig() *config.CouponConfig {
	return &config.CouponConfig{
		QRNamespace:     "CLUBELOCAL",
		CodeLength:      8,
		CodeAlphabet:    "ABCDEFGHJKLMNPQRSTUVWXYZ23456789",
		MaxCodeAttempts: 10,
	}
}

type fixture struct {
	svc  *CouponService
	repo *memRepo
	dir  *memDirectory
}

func newFixture() *fixture {
	repo := newMemRepo()
	dir := &memDirectory{byUser: make(map[uuid.UUID]uuid.UUID)}
	return &fixture{
		svc:  NewCouponService(repo, dir, testCouponConfig(), nil),
		repo: repo,
		dir:  dir,
	}
}

func (f *fixture) addCompany(userID uuid.UUID) uuid.UUID {
	companyID := uuid.New()
	f.dir.byUser[userID] = companyID
	return companyID
}

func (f *fixture) seedCoupon(t *testing.T, companyID uuid.UUID, mutate func(*coupon.Coupon)) *coupon.Coupon {
	t.Helper()
	value := decimal.NewFromInt(20)
	c := &coupon.Coupon{
		CompanyID:      companyID,
		Title:          "Pizza em dobro",
		Description:    "Duas pizzas pelo preço de uma",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  &value,
		ValidFrom:      time.Now().Add(-24 * time.Hour),
		ValidUntil:     time.Now().Add(24 * time.Hour),
		MaxUsesPerUser: 1,
		Status:         coupon.StatusApproved,
		IsActive:       true,
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, f.repo.Create(context.Background(), c))
	return c
}

func TestCreateCouponStartsPendingAndInactive(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)

	value := decimal.NewFromInt(10)
	created, err := f.svc.Create(context.Background(), ownerID, &coupon.CreateCouponRequest{
		Title:         "Café grátis",
		Description:   "Um café expresso por visita",
		DiscountType:  coupon.DiscountFixed.String(),
		DiscountValue: &value,
		ValidFrom:     time.Now(),
		ValidUntil:    time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, coupon.StatusPending, created.Status)
	require.False(t, created.IsActive)
	require.Equal(t, companyID, created.CompanyID)
	require.Equal(t, 1, created.MaxUsesPerUser)
}

func TestCreateCouponRequiresDiscountValueUnlessFreebie(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	f.addCompany(ownerID)

	req := &coupon.CreateCouponRequest{
		Title:        "Sem valor",
		Description:  "desc",
		DiscountType: coupon.DiscountPercentage.String(),
		ValidFrom:    time.Now(),
		ValidUntil:   time.Now().Add(time.Hour),
	}
	_, err := f.svc.Create(context.Background(), ownerID, req)
	require.Error(t, err)

	req.DiscountType = coupon.DiscountFreebie.String()
	_, err = f.svc.Create(context.Background(), ownerID, req)
	require.NoError(t, err)
}

func TestCreateCouponRejectsInvertedDates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	f.addCompany(ownerID)

	value := decimal.NewFromInt(10)
	_, err := f.svc.Create(context.Background(), ownerID, &coupon.CreateCouponRequest{
		Title:         "Datas invertidas",
		Description:   "desc",
		DiscountType:  coupon.DiscountFixed.String(),
		DiscountValue: &value,
		ValidFrom:     time.Now().Add(48 * time.Hour),
		ValidUntil:    time.Now(),
	})
	require.ErrorIs(t, err, coupon.ErrInvalidDates)
}

func TestUpdateDemotesApprovedToPending(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)
	c := f.seedCoupon(t, companyID, nil)

	title := "Novo título"
	updated, err := f.svc.Update(context.Background(), ownerID, c.ID, &coupon.UpdateCouponRequest{
		Title: &title,
	})
	require.NoError(t, err)
	require.Equal(t, coupon.StatusPending, updated.Status)
	require.False(t, updated.IsActive)
	require.Equal(t, "Novo título", updated.Title)
	// Untouched fields keep their values.
	require.Equal(t, c.Description, updated.Description)
}

func TestUpdateKeepsRejectedStatusButDeactivates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)
	c := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.Status = coupon.StatusRejected
		c.IsActive = false
	})

	title := "Tentativa de novo"
	updated, err := f.svc.Update(context.Background(), ownerID, c.ID, &coupon.UpdateCouponRequest{
		Title: &title,
	})
	require.NoError(t, err)
	require.Equal(t, coupon.StatusRejected, updated.Status)
	require.False(t, updated.IsActive)
}

func TestUpdateByForeignCompanyForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)
	c := f.seedCoupon(t, companyID, nil)

	otherID := uuid.New()
	f.addCompany(otherID)

	title := "Invasão"
	_, err := f.svc.Update(context.Background(), otherID, c.ID, &coupon.UpdateCouponRequest{
		Title: &title,
	})
	require.ErrorIs(t, err, coupon.ErrNotOwner)
}

func TestDeleteOwnershipRules(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)

	otherID := uuid.New()
	f.addCompany(otherID)

	c := f.seedCoupon(t, companyID, nil)

	foreign := coupon.Viewer{UserID: otherID, Role: "COMPANY", Authenticated: true}
	err := f.svc.Delete(context.Background(), foreign, c.ID)
	require.ErrorIs(t, err, coupon.ErrDeleteDenied)

	admin := coupon.Viewer{UserID: uuid.New(), Role: "ADMIN", Authenticated: true}
	require.NoError(t, f.svc.Delete(context.Background(), admin, c.ID))
}

func TestGetHidesUnapprovedFromCustomers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)
	c := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.Status = coupon.StatusPending
		c.IsActive = false
	})

	_, err := f.svc.Get(context.Background(), coupon.Viewer{}, c.ID)
	require.ErrorIs(t, err, coupon.ErrNotFound)

	admin := coupon.Viewer{UserID: uuid.New(), Role: "ADMIN", Authenticated: true}
	got, err := f.svc.Get(context.Background(), admin, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	owner := coupon.Viewer{UserID: ownerID, Role: "COMPANY", Authenticated: true}
	got, err = f.svc.Get(context.Background(), owner, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)
}

func TestActivateHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, nil)
	customerID := uuid.New()

	resp, err := f.svc.Activate(context.Background(), customerID, c.ID)
	require.NoError(t, err)
	require.Len(t, resp.Code, 8)
	require.Equal(t, "CLUBELOCAL:"+c.ID.String()+":"+resp.Code, resp.QRCode)
	require.False(t, resp.CouponUsage.IsUsed)
	require.Equal(t, customerID, resp.CouponUsage.UserID)
}

func TestActivateRejectsUnapprovedOrInactive(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())

	pending := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.Status = coupon.StatusPending
		c.IsActive = false
	})
	_, err := f.svc.Activate(context.Background(), uuid.New(), pending.ID)
	require.ErrorIs(t, err, coupon.ErrNotAvailable)

	paused := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.IsActive = false
	})
	_, err = f.svc.Activate(context.Background(), uuid.New(), paused.ID)
	require.ErrorIs(t, err, coupon.ErrNotAvailable)
}

func TestActivateRejectsOutsideWindow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())

	expired := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.ValidFrom = time.Now().Add(-48 * time.Hour)
		c.ValidUntil = time.Now().Add(-24 * time.Hour)
	})
	_, err := f.svc.Activate(context.Background(), uuid.New(), expired.ID)
	require.ErrorIs(t, err, coupon.ErrExpired)

	future := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.ValidFrom = time.Now().Add(24 * time.Hour)
		c.ValidUntil = time.Now().Add(48 * time.Hour)
	})
	_, err = f.svc.Activate(context.Background(), uuid.New(), future.ID)
	require.ErrorIs(t, err, coupon.ErrNotYetValid)
}

func TestActivateCapsCountOnlyValidatedUsages(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, nil) // MaxUsesPerUser = 1
	customerID := uuid.New()

	// A pending activation does not consume quota; a second activation
	// before validation is allowed.
	first, err := f.svc.Activate(context.Background(), customerID, c.ID)
	require.NoError(t, err)
	_, err = f.svc.Activate(context.Background(), customerID, c.ID)
	require.NoError(t, err)

	// Validate the first one; now the per-user cap is reached.
	_, err = f.repo.FinalizeUsage(context.Background(), first.CouponUsage.ID)
	require.NoError(t, err)

	_, err = f.svc.Activate(context.Background(), customerID, c.ID)
	var limitErr *coupon.UserLimitError
	require.ErrorAs(t, err, &limitErr)
	require.Equal(t, 1, limitErr.Max)
}

func TestActivateTotalLimit(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	limit := 1
	c := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.TotalUsesLimit = &limit
		c.MaxUsesPerUser = 5
	})

	first, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.NoError(t, err)
	_, err = f.repo.FinalizeUsage(context.Background(), first.CouponUsage.ID)
	require.NoError(t, err)

	_, err = f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.ErrorIs(t, err, coupon.ErrTotalLimitReached)
}

func TestActivateRetriesOnCodeCollision(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, nil)

	f.repo.duplicateInserts = 3
	resp, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.NoError(t, err)
	require.Len(t, resp.Code, 8)
}

func TestActivateGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, nil)

	f.repo.duplicateInserts = 10
	_, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.ErrorIs(t, err, coupon.ErrCodeGeneration)
}

func TestValidateCodeHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture()
	merchantID := uuid.New()
	companyID := f.addCompany(merchantID)
	c := f.seedCoupon(t, companyID, nil)
	customerID := uuid.New()

	activated, err := f.svc.Activate(context.Background(), customerID, c.ID)
	require.NoError(t, err)

	resp, err := f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{
		Code: activated.Code,
	})
	require.NoError(t, err)
	require.Equal(t, activated.Code, resp.CouponUsage.Code)
	require.True(t, resp.CouponUsage.Savings.Equal(decimal.NewFromInt(20)))
}

func TestValidateCodeAcceptsQRPayload(t *testing.T) {
	t.Parallel()

	f := newFixture()
	merchantID := uuid.New()
	companyID := f.addCompany(merchantID)
	c := f.seedCoupon(t, companyID, nil)

	activated, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.NoError(t, err)

	resp, err := f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{
		QRCode: activated.QRCode,
	})
	require.NoError(t, err)
	require.Equal(t, activated.Code, resp.CouponUsage.Code)
}

func TestValidateCodeExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	merchantID := uuid.New()
	companyID := f.addCompany(merchantID)
	c := f.seedCoupon(t, companyID, nil)

	activated, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.NoError(t, err)

	req := &coupon.ValidateCodeRequest{Code: activated.Code}
	_, err = f.svc.ValidateCode(context.Background(), merchantID, req)
	require.NoError(t, err)

	_, err = f.svc.ValidateCode(context.Background(), merchantID, req)
	require.ErrorIs(t, err, coupon.ErrAlreadyUsed)
}

func TestValidateCodeForeignCompanyForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ownerID := uuid.New()
	companyID := f.addCompany(ownerID)
	c := f.seedCoupon(t, companyID, nil)

	otherMerchant := uuid.New()
	f.addCompany(otherMerchant)

	activated, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.NoError(t, err)

	_, err = f.svc.ValidateCode(context.Background(), otherMerchant, &coupon.ValidateCodeRequest{
		Code: activated.Code,
	})
	require.ErrorIs(t, err, coupon.ErrWrongCompany)

	// The losing merchant must not have consumed the code.
	_, err = f.svc.ValidateCode(context.Background(), ownerID, &coupon.ValidateCodeRequest{
		Code: activated.Code,
	})
	require.NoError(t, err)
}

func TestValidateCodeRequiresInput(t *testing.T) {
	t.Parallel()

	f := newFixture()
	merchantID := uuid.New()
	f.addCompany(merchantID)

	_, err := f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{})
	require.ErrorIs(t, err, coupon.ErrCodeRequired)

	_, err = f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{
		QRCode: "OUTRA:coisa",
	})
	require.ErrorIs(t, err, coupon.ErrInvalidQRCode)

	_, err = f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{
		Code: "NAOEXISTE",
	})
	require.ErrorIs(t, err, coupon.ErrCodeNotFound)
}

func TestValidateFreebieSavingsEstimate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	merchantID := uuid.New()
	companyID := f.addCompany(merchantID)
	c := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.DiscountType = coupon.DiscountFreebie
		c.DiscountValue = nil
	})

	activated, err := f.svc.Activate(context.Background(), uuid.New(), c.ID)
	require.NoError(t, err)

	resp, err := f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{
		Code: activated.Code,
	})
	require.NoError(t, err)
	require.True(t, resp.CouponUsage.Savings.Equal(decimal.NewFromInt(10)))
}

func TestSetStatusApproveActivates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.Status = coupon.StatusPending
		c.IsActive = false
	})

	updated, err := f.svc.SetStatus(context.Background(), c.ID, "APPROVED")
	require.NoError(t, err)
	require.Equal(t, coupon.StatusApproved, updated.Status)
	require.True(t, updated.IsActive)

	updated, err = f.svc.SetStatus(context.Background(), c.ID, "REJECTED")
	require.NoError(t, err)
	require.Equal(t, coupon.StatusRejected, updated.Status)
	require.False(t, updated.IsActive)

	_, err = f.svc.SetStatus(context.Background(), c.ID, "PENDING")
	require.ErrorIs(t, err, coupon.ErrInvalidStatus)
}

func TestToggleActiveOnlyWhenApproved(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())

	approved := f.seedCoupon(t, companyID, nil)
	toggled, err := f.svc.ToggleActive(context.Background(), approved.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	toggled, err = f.svc.ToggleActive(context.Background(), approved.ID)
	require.NoError(t, err)
	require.True(t, toggled.IsActive)

	pending := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.Status = coupon.StatusPending
		c.IsActive = false
	})
	_, err = f.svc.ToggleActive(context.Background(), pending.ID)
	require.ErrorIs(t, err, coupon.ErrToggleDenied)
}

func TestListUnknownCategoryReturnsEmptyPage(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	f.seedCoupon(t, companyID, nil)

	coupons, total, err := f.svc.List(context.Background(), coupon.Viewer{}, &coupon.ListCouponsRequest{
		Category: "inexistente",
	})
	require.NoError(t, err)
	require.Empty(t, coupons)
	require.Zero(t, total)
	// The repository was never queried for coupons.
	require.Nil(t, f.repo.lastFilter)
}

func TestListCompanyIDCurrentRequiresCompanyRole(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, _, err := f.svc.List(context.Background(), coupon.Viewer{}, &coupon.ListCouponsRequest{
		CompanyID: "current",
	})
	require.ErrorIs(t, err, coupon.ErrCurrentForbidden)

	merchantID := uuid.New()
	viewer := coupon.Viewer{UserID: merchantID, Role: "COMPANY", Authenticated: true}
	_, _, err = f.svc.List(context.Background(), viewer, &coupon.ListCouponsRequest{
		CompanyID: "current",
	})
	require.ErrorIs(t, err, coupon.ErrCompanyMissing)

	f.addCompany(merchantID)
	_, _, err = f.svc.List(context.Background(), viewer, &coupon.ListCouponsRequest{
		CompanyID: "current",
	})
	require.NoError(t, err)
}

func TestFavoritesLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, nil)
	customerID := uuid.New()

	_, err := f.svc.AddFavorite(context.Background(), customerID, c.ID)
	require.NoError(t, err)

	_, err = f.svc.AddFavorite(context.Background(), customerID, c.ID)
	require.ErrorIs(t, err, coupon.ErrFavoriteExists)

	_, err = f.svc.AddFavorite(context.Background(), customerID, uuid.New())
	require.ErrorIs(t, err, coupon.ErrNotFound)

	require.NoError(t, f.svc.RemoveFavorite(context.Background(), customerID, c.ID))
	err = f.svc.RemoveFavorite(context.Background(), customerID, c.ID)
	require.ErrorIs(t, err, coupon.ErrFavoriteNotFound)
}

func TestHistoryTotalsSavings(t *testing.T) {
	t.Parallel()

	f := newFixture()
	merchantID := uuid.New()
	companyID := f.addCompany(merchantID)
	fixed := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		v := decimal.NewFromInt(15)
		c.DiscountType = coupon.DiscountFixed
		c.DiscountValue = &v
		c.MaxUsesPerUser = 5
	})
	freebie := f.seedCoupon(t, companyID, func(c *coupon.Coupon) {
		c.DiscountType = coupon.DiscountFreebie
		c.DiscountValue = nil
	})

	customerID := uuid.New()
	for _, cp := range []uuid.UUID{fixed.ID, freebie.ID} {
		activated, err := f.svc.Activate(context.Background(), customerID, cp)
		require.NoError(t, err)
		_, err = f.svc.ValidateCode(context.Background(), merchantID, &coupon.ValidateCodeRequest{
			Code: activated.Code,
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.History(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, resp.History, 2)
	require.True(t, resp.TotalSavings.Equal(decimal.NewFromInt(25)))
}

func TestActiveCouponsRebuildQRPayload(t *testing.T) {
	t.Parallel()

	f := newFixture()
	companyID := f.addCompany(uuid.New())
	c := f.seedCoupon(t, companyID, nil)
	customerID := uuid.New()

	activated, err := f.svc.Activate(context.Background(), customerID, c.ID)
	require.NoError(t, err)

	items, err := f.svc.ActiveCoupons(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, activated.QRCode, items[0].QRCode)
	require.Equal(t, c.ID, items[0].Coupon.ID)
}
