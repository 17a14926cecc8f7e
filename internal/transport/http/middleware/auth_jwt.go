package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"massage-booking-api/internal/core/auth"
	"massage-booking-api/internal/domain"
	resp "massage-booking-api/internal/transport/http/response"
)

const KeyPrincipal = "principal"

// AuthJWT 校验 Bearer token，把调用方写入上下文；角色由各 Action 自己声明
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if len(ah) < 7 || !strings.EqualFold(ah[:7], "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(ah[7:]))
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(KeyPrincipal, claims.Principal())
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok && p.UserID != ""
}
