package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims of the bearer token: sub is the user id, role is USER or ADMIN.
type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// CallerResolver checks a token caller against stored accounts.
type CallerResolver func(ctx context.Context, caller entity.Caller) (entity.Caller, error)

type AuthConfig struct {
	Enabled bool
	Secret  string
	Issuer  string
	// Resolve, when set, runs after the token is verified.
	Resolve CallerResolver
}

// Auth resolves the caller and stores it in the request context.
// With auth disabled every request runs as the system admin.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			setCaller(c, entity.SystemCaller)
			c.Next()
			return
		}

		caller, err := parseCaller(parser, []byte(cfg.Secret), c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "unauthenticated"})
			return
		}

		if cfg.Resolve != nil {
			caller, err = cfg.Resolve(c.Request.Context(), caller)
			if err != nil {
				abortResolve(c, err)
				return
			}
		}

		setCaller(c, caller)
		c.Next()
	}
}

func abortResolve(c *gin.Context, err error) {
	switch entity.KindOf(err) {
	case entity.KindForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": entity.KindForbidden.String()})
	case entity.KindUnavailable:
		logrus.WithError(err).Warn("Caller lookup failed")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable", "code": entity.KindUnavailable.String()})
	default:
		logrus.WithError(err).Error("Caller lookup failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": entity.KindInternal.String()})
	}
}

func parseCaller(parser *jwt.Parser, secret []byte, header string) (entity.Caller, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return entity.Caller{}, errors.New("missing bearer token")
	}

	var claims Claims
	_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return entity.Caller{}, errors.New("invalid token")
	}

	if claims.Subject == "" {
		return entity.Caller{}, errors.New("token has no subject")
	}
	if claims.Role == "" {
		claims.Role = entity.RoleUser
	}
	if !claims.Role.Valid() {
		return entity.Caller{}, errors.New("token has an unknown role")
	}

	return entity.Caller{UserID: claims.Subject, Role: claims.Role}, nil
}

func setCaller(c *gin.Context, caller entity.Caller) {
	c.Request = c.Request.WithContext(entity.WithCaller(c.Request.Context(), caller))
}
