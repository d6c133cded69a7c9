package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"giveaway-settlement/internal/common/errors"
)

// Identity is resolved by the gateway in front of this service and forwarded as headers.
const (
	UserIDHeader    = "X-User-ID"
	UserEmailHeader = "X-User-Email"

	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// UserIdentity copies the forwarded identity headers into the context. Requests without them
// pass through anonymously.
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := strings.TrimSpace(c.GetHeader(UserIDHeader)); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set(UserIDKey, id)
			}
		}
		if email := strings.TrimSpace(c.GetHeader(UserEmailHeader)); email != "" {
			c.Set(UserEmailKey, email)
		}
		c.Next()
	}
}

// RequireUser rejects requests without a forwarded user id.
func RequireUser(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			sendErrorResponse(c, errors.NewUnauthorizedError("user identity required"), logger)
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) (int64, bool) {
	id := getUserID(c)
	return id, id != 0
}

func UserEmail(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}
