package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"example.com/layali/planner-gateway/internal/eligibility"
)

const tagNotPast = "notpast"

type CustomValidator struct {
	validator *validator.Validate
	now       func() time.Time
}

// New создает валидатор на базе go-playground/validator.
func New() *CustomValidator {
	return NewWithClock(time.Now)
}

// NewWithClock создает валидатор с заданными часами для проверки дат.
func NewWithClock(now func() time.Time) *CustomValidator {
	cv := &CustomValidator{validator: validator.New(), now: now}

	cv.validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	_ = cv.validator.RegisterValidation(tagNotPast, cv.notPast)

	return cv
}

// Validate запускает проверку структуры по тегам.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// notPast принимает календарную дату не раньше сегодняшней.
func (cv *CustomValidator) notPast(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	now := cv.now()

	day, ok := eligibility.ParseDay(value, now.Location())
	if !ok {
		return false
	}

	return !day.Before(eligibility.Midnight(now))
}

func decimalValue(field reflect.Value) interface{} {
	switch value := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := value.Float64()
		return f
	case decimal.NullDecimal:
		if !value.Valid {
			return nil
		}
		f, _ := value.Decimal.Float64()
		return f
	default:
		return nil
	}
}
