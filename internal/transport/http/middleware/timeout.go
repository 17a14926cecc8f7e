package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "massage-booking-api/internal/transport/http/response"
)

// Timeout 给请求上下文加超时，下游 DB/Redis/SMTP 调用随之取消
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Abort(c, http.StatusGatewayTimeout, "timeout")
		}
	}
}
