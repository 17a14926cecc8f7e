package ez

import (
	"errors"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"massage-booking-api/internal/domain"
	mdw "massage-booking-api/internal/transport/http/middleware"
	resp "massage-booking-api/internal/transport/http/response"
)

const (
	msgInternal = "internal error"
	msgDelivery = "the message could not be sent, please try again later"
)

// StatusOf 领域错误 → HTTP 状态；未知错误一律 500
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// message 只回显 domain.Error 里的提示，内部错误不外泄
func message(err error, status int) string {
	if errors.Is(err, domain.ErrDelivery) {
		return msgDelivery
	}
	if status == http.StatusInternalServerError {
		return msgInternal
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return resp.CodeMsgMap[status]
}

func (e EZ) Fail(c *gin.Context, err error) {
	status := StatusOf(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	resp.Abort(c, status, message(err, status))
}
