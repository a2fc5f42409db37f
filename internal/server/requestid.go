package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/task-ledger/internal/apperror"
)

// RequestIDHeader はリクエストIDを運ぶヘッダーです。
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLength = 128

// RequestID は受け取った ID か新しい UUID をリクエストに割り当てます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(apperror.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
