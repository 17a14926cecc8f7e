// Package portfolio 作品集站点的联系表单
package portfolio

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"massage-booking-api/internal/core/mailer"
	"massage-booking-api/internal/core/validate"
	"massage-booking-api/internal/domain"
)

type ContactForm struct {
	Name    string `json:"name" validate:"required,max=128"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Service struct {
	Mail  mailer.Sender
	Owner string // 收件人
	Log   *zap.Logger
}

// Send 投递失败返回 ErrDelivery，不向调用方暴露底层原因
func (s *Service) Send(ctx context.Context, f ContactForm) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Message = strings.TrimSpace(f.Message)
	if err := validate.Struct(f); err != nil {
		return err
	}
	if s.Owner == "" {
		return domain.Delivery(fmt.Errorf("owner email is not configured"))
	}

	subject := "New message from your portfolio from " + f.Name
	body := fmt.Sprintf("<p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>Message:</strong></p><p>%s</p>",
		html.EscapeString(f.Name),
		html.EscapeString(f.Email),
		strings.ReplaceAll(html.EscapeString(f.Message), "\n", "<br>"))

	if err := s.Mail.Send(ctx, s.Owner, subject, body); err != nil {
		if s.Log != nil {
			s.Log.Error("send contact form", zap.Error(err))
		}
		return domain.Delivery(err)
	}
	return nil
}
