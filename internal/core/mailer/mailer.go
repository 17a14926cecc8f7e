package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"massage-booking-api/internal/core/config"
	"massage-booking-api/internal/domain"
)

// Sender 邮件发送（同步、尽力而为）
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	tls      bool
	timeout  time.Duration
	log      *zap.Logger
}

// New smtp.host 为空时退化为只打日志的 Noop
func New(c config.SMTP, l *zap.Logger) Sender {
	if c.Host == "" {
		return Noop{Log: l}
	}
	from := c.From
	if from == "" {
		from = c.Username
	}
	timeout := time.Duration(c.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTP{
		host: c.Host, port: c.Port, username: c.Username, password: c.Password,
		from: from, fromName: c.FromName, tls: c.TLS, timeout: timeout, log: l,
	}
}

func (s *SMTP) message(to, subject, htmlBody string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)
	return m, nil
}

func (s *SMTP) Send(ctx context.Context, to, subject, htmlBody string) error {
	m, err := s.message(to, subject, htmlBody)
	if err != nil {
		return domain.Delivery(err)
	}
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(s.timeout),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}
	if s.tls {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return domain.Delivery(fmt.Errorf("smtp client: %w", err))
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.log.Warn("smtp send failed", zap.String("host", s.host), zap.String("to", to), zap.Error(err))
		return domain.Delivery(err)
	}
	s.log.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Noop 未配置 SMTP 时使用
type Noop struct{ Log *zap.Logger }

func (n Noop) Send(_ context.Context, to, subject, _ string) error {
	n.Log.Warn("smtp not configured, mail dropped", zap.String("to", to), zap.String("subject", subject))
	return nil
}
