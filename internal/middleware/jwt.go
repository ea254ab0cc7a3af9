package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ContextKeyClaims is the Gin context key for JWT claims.
const ContextKeyClaims = "claims"

var errNoToken = errors.New("missing bearer token")

// RequireStudentJWT admits requests carrying a valid student token.
func RequireStudentJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireRole(authService, model.RoleStudent, response.ErrStudentOnly, bearerToken)
}

// RequireAdminJWT admits requests carrying a valid admin token.
func RequireAdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireRole(authService, model.RoleAdmin, response.ErrAdminOnly, bearerToken)
}

// RequireAdminWSAuth is the admin check for WebSocket upgrades, which cannot
// set an Authorization header; the token rides in ?token=.
func RequireAdminWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return requireRole(authService, model.RoleAdmin, response.ErrAdminOnly, queryToken)
}

func requireRole(authService *service.AuthService, role model.UserRole, roleErr response.ErrCode, extract func(*gin.Context) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extract(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if claims.Role != role {
			response.AbortFail(c, http.StatusForbidden, roleErr)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errNoToken
	}
	return parts[1], nil
}

func queryToken(c *gin.Context) (string, error) {
	token := c.Query("token")
	if token == "" {
		return "", errNoToken
	}
	return token, nil
}

// GetClaims pulls the validated claims set by one of the Require middlewares.
func GetClaims(c *gin.Context) *service.Claims {
	val, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}
