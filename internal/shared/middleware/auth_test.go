package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"clubelocal-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager() *jwt.Manager {
	return jwt.NewManager("test-secret", time.Hour)
}

func signedToken(t *testing.T, manager *jwt.Manager, userID, role string) string {
	t.Helper()
	token, err := manager.Generate(userID, "alice@example.com", role)
	require.NoError(t, err)
	return token
}

// identityEcho reports what the middlewares stored in the context.
func identityEcho(c *gin.Context) {
	id, hasID := UserID(c)
	role, hasRole := Role(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": hasID && hasRole,
		"userId":        id.String(),
		"role":          role,
	})
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	manager := newManager()
	userID := uuid.New()

	r := gin.New()
	r.GET("/private", AuthMiddleware(manager), identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, manager, userID.String(), "CUSTOMER"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), userID.String())
	require.Contains(t, w.Body.String(), `"role":"CUSTOMER"`)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	manager := newManager()

	r := gin.New()
	r.GET("/private", AuthMiddleware(manager), identityEcho)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + func() string {
			token, err := jwt.NewManager("other-secret", time.Hour).Generate(uuid.NewString(), "a@b.c", "CUSTOMER")
			require.NoError(t, err)
			return token
		}()},
		{"non-uuid subject", "Bearer " + signedToken(t, manager, "not-a-uuid", "CUSTOMER")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.JSONEq(t, `{"error":"Token inválido ou expirado"}`, w.Body.String())
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	expired := jwt.NewManager("test-secret", -time.Minute)

	r := gin.New()
	r.GET("/private", AuthMiddleware(newManager()), identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, expired, uuid.NewString(), "CUSTOMER"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	manager := newManager()
	userID := uuid.New()

	r := gin.New()
	r.GET("/public", OptionalAuthMiddleware(manager), identityEcho)

	// Anonymous request passes through.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"authenticated":false`)

	// Invalid token is treated as anonymous.
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"authenticated":false`)

	// Valid token attaches identity.
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, manager, userID.String(), "COMPANY"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), userID.String())
}

func TestRequireRoles(t *testing.T) {
	manager := newManager()

	r := gin.New()
	r.GET("/admin", AuthMiddleware(manager), RequireRoles("ADMIN"), identityEcho)
	r.GET("/mixed", AuthMiddleware(manager), RequireRoles("COMPANY", "ADMIN"), identityEcho)
	r.GET("/bare", RequireRoles("ADMIN"), identityEcho)

	do := func(path, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if role != "" {
			req.Header.Set("Authorization", "Bearer "+signedToken(t, manager, uuid.NewString(), role))
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/admin", "ADMIN")
	require.Equal(t, http.StatusOK, w.Code)

	w = do("/admin", "CUSTOMER")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Acesso negado. Permissão insuficiente."}`, w.Body.String())

	w = do("/mixed", "COMPANY")
	require.Equal(t, http.StatusOK, w.Code)

	// Role gate without authentication in front answers 401, not 403.
	w = do("/bare", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Usuário não autenticado"}`, w.Body.String())
}
