// Package validator 注册自定义校验规则，并将校验错误转换为字段级提示
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dumeirei/foodstay-backend/internal/common/response"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
)

// enumRules 枚举类校验规则
var enumRules = map[string][]string{
	"food_category":  models.FoodCategories,
	"spice_level":    models.SpiceLevels,
	"room_type":      models.RoomTypes,
	"bed_type":       models.BedTypes,
	"room_view":      models.RoomViews,
	"booking_status": models.BookingStatuses,
	"order_status":   models.OrderStatuses,
	"payment_method": models.PaymentMethods,
	"id_type":        models.IDTypes,
}

// Setup 在 gin 的默认校验引擎上注册自定义规则
func Setup() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register 注册字段名函数和自定义规则
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonTagName)

	for tag, values := range enumRules {
		if err := v.RegisterValidation(tag, oneOf(values)); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return v.RegisterValidation("alphanum_username", func(fl validator.FieldLevel) bool {
		return utils.ValidateUsername(fl.Field().String())
	})
}

// oneOf 空值放行，必填由 required 负责
func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.IsOneOf(s, values)
	}
}

func jsonTagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Translate 将 validator.ValidationErrors 转换为字段错误列表
func Translate(err error) ([]response.FieldError, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	fields := make([]response.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, response.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return fields, true
}

// fieldPath 去掉结构体名前缀，如 CreateBookingRequest.guests.adults -> guests.adults
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please provide a valid email"
	case "alphanum_username":
		return label + " can only contain letters and numbers"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "dive":
		return label + " is invalid"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}

	if values, ok := enumRules[fe.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(values, ", "))
	}
	return label + " is invalid"
}

// humanize 字段名首字母大写
func humanize(field string) string {
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
