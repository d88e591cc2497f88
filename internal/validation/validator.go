package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"mlm-network/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// Validator проверяет входные запросы по тегам validate
type Validator struct {
	validate *validator.Validate
}

// New создает валидатор с поддержкой decimal.Decimal и тега notblank
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Используем json-имена полей в сообщениях об ошибках
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Знак decimal сохраняется при переводе во float64, этого достаточно для gt/gte
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{validate: v}
}

// Struct проверяет структуру и возвращает ошибку, оборачивающую models.ErrValidation
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describe(fe))
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("поле %s обязательно", fe.Field())
	case "gt":
		return fmt.Sprintf("поле %s должно быть больше %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("поле %s не прошло проверку %s", fe.Field(), fe.Tag())
	}
}
