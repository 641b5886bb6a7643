package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/utils"
)

const sessionKey = "session"

// Session is the authenticated caller of one request.
type Session struct {
	UserID string
}

// AuthMiddleware verifies the bearer token and stores the caller's Session.
// Requests without a valid token stop here with 401.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		claims, err := utils.VerifyToken(token)
		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(sessionKey, Session{UserID: claims.Subject()})
		c.Next()
	}
}

// CurrentSession returns the Session stored by AuthMiddleware.
func CurrentSession(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	if !ok || s.UserID == "" {
		return Session{}, false
	}
	return s, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	// iOS clients send the token here
	if header == "" {
		header = c.GetHeader("X-Auth-Token")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
