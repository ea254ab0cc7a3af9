package middleware

import (
	"net/http"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CheckSingleDeviceLogin validates the JWT's JTI against the registered login
// session in Redis. A mismatch means the login was superseded or reset and
// the request is rejected.
func CheckSingleDeviceLogin(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforced for student tokens.
		if claims.Role != model.RoleStudent {
			c.Next()
			return
		}

		if err := authService.ValidateLoginSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrLoginInvalidated)
			return
		}

		c.Next()
	}
}
