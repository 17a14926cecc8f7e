package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInvalidToken        = errors.New("invalid token")
	ErrDelivery            = errors.New("delivery error")
)

// Error 带可直接返回给调用方的提示信息，Unwrap 到对应的哨兵错误
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error   { return newErr(ErrValidation, format, args...) }
func Unauthorized(format string, args ...any) error { return newErr(ErrUnauthorized, format, args...) }
func Forbidden(format string, args ...any) error    { return newErr(ErrForbidden, format, args...) }
func NotFound(format string, args ...any) error     { return newErr(ErrNotFound, format, args...) }
func InvalidToken(format string, args ...any) error { return newErr(ErrInvalidToken, format, args...) }
func Conflict(format string, args ...any) error {
	return newErr(ErrConcurrencyConflict, format, args...)
}

// Delivery 投递失败，保留底层错误用于日志
func Delivery(err error) error { return fmt.Errorf("%w: %w", ErrDelivery, err) }
