// Package validate 服务层入参校验，错误统一转成 domain.ErrValidation
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"massage-booking-api/internal/domain"
)

var v = newValidator()

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	// 提示里用 json 字段名
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return vv
}

func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, message(fe))
	}
	return domain.Validation("%s", strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}
