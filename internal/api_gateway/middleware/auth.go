package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// Claims is the bearer token payload. Subject is the user who holds staging
// locks; TenantID scopes data and defaults to the subject.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the HS256 bearer token and stores the shared.Caller on the
// request context
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header format must be Bearer {token}")
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", msg)
			return
		}

		caller, err := callerFromClaims(claims)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims")
			return
		}

		c.Request = c.Request.WithContext(shared.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func callerFromClaims(claims *Claims) (shared.Caller, error) {
	if claims.Subject == "" {
		return shared.Caller{}, errors.New("subject missing")
	}
	tenant := claims.TenantID
	if tenant == "" {
		tenant = claims.Subject
	}
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return shared.Caller{}, err
	}
	return shared.Caller{TenantID: tenantID, UserID: claims.Subject}, nil
}
