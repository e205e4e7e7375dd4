// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

// UserIDKey is the context key for the requesting owner's ID.
const UserIDKey ContextKey = "user_id"

// userIDHeader carries the already-authenticated owner identity. The
// authenticating gateway in front of this service sets it; this service does
// not verify credentials itself.
const userIDHeader = "X-User-ID"

// OwnerMiddleware resolves the owner identity for every request.
type OwnerMiddleware struct{}

// NewOwnerMiddleware creates a new owner middleware instance.
func NewOwnerMiddleware() *OwnerMiddleware {
	return &OwnerMiddleware{}
}

// Identify returns a Gin middleware handler that requires a valid owner ID
// header on the request.
func (m *OwnerMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(userIDHeader)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Missing " + userIDHeader + " header",
			})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid " + userIDHeader + " header",
			})
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), userID)
		c.Next()
	}
}

// GetUserIDFromContext extracts the owner ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}
