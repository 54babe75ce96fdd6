package middleware

import (
	"ctchen222/reversi/internal/api/response"
	"ctchen222/reversi/internal/api/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUserID = "userID"

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id in the context.
func RequireAuth(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abort(c, "missing bearer token")
			return
		}

		claims, err := users.ParseToken(token)
		if err != nil {
			abort(c, err.Error())
			return
		}
		id, _ := claims.UserID()
		c.Set(contextUserID, id)
		c.Next()
	}
}

// UserID returns the id stored by RequireAuth.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(contextUserID)
}

func abort(c *gin.Context, message string) {
	response.AbortWithError(c, http.StatusUnauthorized, message)
}
