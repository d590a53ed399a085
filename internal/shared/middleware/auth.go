package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clubelocal-backend/internal/shared/response"
	"clubelocal-backend/pkg/jwt"
)

// Context keys set by the authentication middlewares.
const (
	CtxUserID = "userID"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// AuthMiddleware requires a valid bearer token and stores the caller's
// identity in the gin context.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, manager)
		if !ok {
			response.Unauthorized(c, "Token inválido ou expirado")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "Token inválido ou expirado")
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware parses the token when present but never rejects the
// request. A missing or invalid token simply leaves the request anonymous.
func OptionalAuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, manager); ok {
			if userID, err := uuid.Parse(claims.UserID); err == nil {
				c.Set(CtxUserID, userID)
				c.Set(CtxEmail, claims.Email)
				c.Set(CtxRole, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRoles gates a handler by role. Unauthenticated requests get 401,
// authenticated requests with a role outside the allowed set get 403.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := Role(c)
		if !ok {
			response.Unauthorized(c, "Usuário não autenticado")
			c.Abort()
			return
		}

		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "Acesso negado. Permissão insuficiente.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// UserID returns the authenticated caller's ID, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Role returns the authenticated caller's role, if any.
func Role(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

func parseBearer(c *gin.Context, manager *jwt.Manager) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := manager.Validate(parts[1])
	if err != nil {
		return nil, false
	}

	return claims, true
}
