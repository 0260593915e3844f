package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newAuthRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/whoami", func(c *gin.Context) {
		caller, _ := entity.CallerFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": caller.UserID, "role": caller.Role})
	})
	return r
}

func claims(sub string, role entity.Role, expires time.Time) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "college-events",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
}

func TestAuth(t *testing.T) {
	cfg := AuthConfig{Enabled: true, Secret: testSecret, Issuer: "college-events"}
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, `"code":"unauthenticated"`},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
		{"admin", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims("42", entity.RoleAdmin, future)), http.StatusOK, `"role":"ADMIN"`},
		{"default role", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims("7", "", future)), http.StatusOK, `"role":"USER"`},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), claims("42", entity.RoleAdmin, future)), http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims("42", entity.RoleAdmin, time.Now().Add(-time.Minute))), http.StatusUnauthorized, "invalid token"},
		{"wrong algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), claims("42", entity.RoleAdmin, future)), http.StatusUnauthorized, "invalid token"},
		{"unknown role", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims("42", "ROOT", future)), http.StatusUnauthorized, "unknown role"},
		{"no subject", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims("", entity.RoleAdmin, future)), http.StatusUnauthorized, "no subject"},
	}

	router := newAuthRouter(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAuthDisabledUsesSystemCaller(t *testing.T) {
	router := newAuthRouter(AuthConfig{Enabled: false})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"system","role":"ADMIN"}`, w.Body.String())
}
