package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clubelocal-backend/internal/config"
	adminHandler "clubelocal-backend/internal/domains/admin/handler"
	adminService "clubelocal-backend/internal/domains/admin/service"
	"clubelocal-backend/internal/domains/category"
	categoryHandler "clubelocal-backend/internal/domains/category/handler"
	categoryRepo "clubelocal-backend/internal/domains/category/repository"
	categoryService "clubelocal-backend/internal/domains/category/service"
	"clubelocal-backend/internal/domains/company"
	companyHandler "clubelocal-backend/internal/domains/company/handler"
	companyRepo "clubelocal-backend/internal/domains/company/repository"
	companyService "clubelocal-backend/internal/domains/company/service"
	"clubelocal-backend/internal/domains/coupon"
	couponHandler "clubelocal-backend/internal/domains/coupon/handler"
	couponRepo "clubelocal-backend/internal/domains/coupon/repository"
	couponService "clubelocal-backend/internal/domains/coupon/service"
	"clubelocal-backend/internal/domains/subscription"
	subscriptionRepo "clubelocal-backend/internal/domains/subscription/repository"
	"clubelocal-backend/internal/domains/user"
	userHandler "clubelocal-backend/internal/domains/user/handler"
	userRepo "clubelocal-backend/internal/domains/user/repository"
	userService "clubelocal-backend/internal/domains/user/service"
	infraCache "clubelocal-backend/internal/infrastructure/cache"
	"clubelocal-backend/internal/infrastructure/database"
	"clubelocal-backend/pkg/cache"
	"clubelocal-backend/pkg/jwt"
	"clubelocal-backend/pkg/logger"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton living for the whole process.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager

	UserRepo         user.Repository
	CompanyRepo      company.Repository
	CategoryRepo     category.Repository
	CouponRepo       coupon.Repository
	SubscriptionRepo subscription.Repository

	UserService     user.Service
	CompanyService  company.Service
	CategoryService category.Service
	CouponService   coupon.Service
	AdminService    *adminService.AdminService

	UserHandler     *userHandler.UserHandler
	CompanyHandler  *companyHandler.CompanyHandler
	CouponHandler   *couponHandler.CouponHandler
	AdminHandler    *adminHandler.AdminHandler
	CategoryHandler *categoryHandler.CategoryHandler
}

// NewContainer wires the whole application: config, then infrastructure,
// then repositories, services and handlers. Order matters.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	db := database.NewPostgresDB(cfg.DatabaseDBConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		// Redis is an accelerator here, not a dependency the API cannot
		// live without.
		logger.Warn("redis connection failed, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
		c.Cache = nil
	} else {
		c.Cache = redisCache
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = userRepo.NewPostgresRepository(c.DB)
	c.CompanyRepo = companyRepo.NewPostgresRepository(c.DB)
	c.CategoryRepo = categoryRepo.NewPostgresRepository(c.DB)
	c.CouponRepo = couponRepo.NewPostgresRepository(c.DB)
	c.SubscriptionRepo = subscriptionRepo.NewPostgresRepository(c.DB)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.CompanyService = companyService.NewCompanyService(c.CompanyRepo)
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo, c.Cache)
	c.CouponService = couponService.NewCouponService(
		c.CouponRepo,
		&companyDirectory{repo: c.CompanyRepo},
		&c.Config.Coupon,
		c.Cache,
	)
	c.AdminService = adminService.NewAdminService(
		c.UserRepo,
		c.CompanyRepo,
		c.CouponRepo,
		c.SubscriptionRepo,
		&c.Config.Billing,
		c.Cache,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.CompanyHandler = companyHandler.NewCompanyHandler(c.CompanyService)
	c.CouponHandler = couponHandler.NewCouponHandler(c.CouponService)
	c.AdminHandler = adminHandler.NewAdminHandler(c.AdminService)
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok && rc != nil {
		if err := rc.Close(); err != nil {
			logger.Error("redis close failed", err)
		}
	}
}

// companyDirectory adapts the company repository to the narrow lookup the
// coupon domain declares for itself.
type companyDirectory struct {
	repo company.Repository
}

func (d *companyDirectory) CompanyIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	comp, err := d.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, company.ErrNotFound) {
			return uuid.Nil, coupon.ErrCompanyMissing
		}
		return uuid.Nil, err
	}
	return comp.ID, nil
}
