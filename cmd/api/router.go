package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clubelocal-backend/internal/domains/user"
	"clubelocal-backend/internal/shared/middleware"
	"clubelocal-backend/pkg/container"
)

// SetupRouter mounts the full route table under /api.
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(api, c)
		setupCouponRoutes(api, c)
		setupUserRoutes(api, c)
		setupAdminRoutes(api, c)
	}

	return router
}

func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", c.UserHandler.Signup)
		auth.POST("/login", c.UserHandler.Login)
	}
}

func setupCouponRoutes(api *gin.RouterGroup, c *container.Container) {
	coupons := api.Group("/coupons")
	{
		// Listing and detail work anonymously; a token widens what the
		// caller sees.
		coupons.GET("", middleware.OptionalAuthMiddleware(c.JWTManager), c.CouponHandler.List)
		coupons.GET("/categories", c.CategoryHandler.List)
		coupons.GET("/:id", middleware.OptionalAuthMiddleware(c.JWTManager), c.CouponHandler.Get)

		authed := coupons.Group("")
		authed.Use(middleware.AuthMiddleware(c.JWTManager))
		{
			authed.POST("",
				middleware.RequireRoles(user.RoleCompany.String()),
				c.CouponHandler.Create)
			authed.PUT("/:id",
				middleware.RequireRoles(user.RoleCompany.String()),
				c.CouponHandler.Update)
			authed.DELETE("/:id",
				middleware.RequireRoles(user.RoleCompany.String(), user.RoleAdmin.String()),
				c.CouponHandler.Delete)
			authed.POST("/:id/use",
				middleware.RequireRoles(user.RoleCustomer.String()),
				c.CouponHandler.Activate)
			authed.POST("/validate",
				middleware.RequireRoles(user.RoleCompany.String()),
				c.CouponHandler.ValidateCode)
		}
	}
}

func setupUserRoutes(api *gin.RouterGroup, c *container.Container) {
	users := api.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/profile", c.UserHandler.GetProfile)
		users.PUT("/profile", c.UserHandler.UpdateProfile)

		users.GET("/favorites", c.CouponHandler.ListFavorites)
		users.POST("/favorites", c.CouponHandler.AddFavorite)
		users.DELETE("/favorites/:couponId", c.CouponHandler.RemoveFavorite)

		users.GET("/active-coupons",
			middleware.RequireRoles(user.RoleCustomer.String()),
			c.CouponHandler.ActiveCoupons)
		users.GET("/history",
			middleware.RequireRoles(user.RoleCustomer.String()),
			c.CouponHandler.History)
	}
}

func setupAdminRoutes(api *gin.RouterGroup, c *container.Container) {
	admin := api.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequireRoles(user.RoleAdmin.String()),
	)
	{
		admin.GET("/stats", c.AdminHandler.GetStats)

		admin.GET("/companies", c.CompanyHandler.List)
		admin.PUT("/companies/:id/status", c.CompanyHandler.UpdateStatus)

		admin.GET("/coupons/pending", c.CouponHandler.ListForModeration)
		admin.PUT("/coupons/:id/status", c.CouponHandler.SetStatus)
		admin.PUT("/coupons/:id/toggle-active", c.CouponHandler.ToggleActive)

		admin.GET("/users", c.UserHandler.List)
	}
}

// healthCheckHandler reports liveness of the API and its backing services.
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		overall := "ok"
		status := http.StatusOK

		dbStatus := "ok"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "unavailable"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}

		cacheStatus := "ok"
		if c.Cache == nil {
			cacheStatus = "disabled"
		} else if err := c.Cache.Ping(checkCtx); err != nil {
			cacheStatus = "unavailable"
		}

		ctx.JSON(status, gin.H{
			"status":   overall,
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"cache":    cacheStatus,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
