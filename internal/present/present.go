package present

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder выводится вместо отсутствующего значения.
const Placeholder = "-"

const dateLayout = "Jan 2, 2006"

type Formatter struct {
	Currency string
	Places   int32
}

// NewFormatter создает форматтер сумм для валюты с заданным числом знаков после запятой.
func NewFormatter(currency string, places int32) Formatter {
	if places < 0 {
		places = 0
	}
	return Formatter{Currency: strings.ToUpper(strings.TrimSpace(currency)), Places: places}
}

// Money форматирует сумму; отсутствующая сумма выводится как Placeholder, а не 0.
func (f Formatter) Money(value decimal.NullDecimal) string {
	if !value.Valid {
		return Placeholder
	}
	return f.Amount(value.Decimal)
}

func (f Formatter) Amount(value decimal.Decimal) string {
	formatted := groupThousands(value.StringFixed(f.Places))
	if f.Currency == "" {
		return formatted
	}
	return f.Currency + " " + formatted
}

// Date форматирует календарную дату мероприятия.
func (f Formatter) Date(day time.Time) string {
	if day.IsZero() {
		return Placeholder
	}
	return day.Format(dateLayout)
}

// Text возвращает строку или Placeholder для пустой строки.
func Text(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return Placeholder
}

func groupThousands(value string) string {
	sign := ""
	if strings.HasPrefix(value, "-") {
		sign = "-"
		value = value[1:]
	}

	whole, fraction, hasFraction := strings.Cut(value, ".")
	if len(whole) > 3 {
		var builder strings.Builder
		head := len(whole) % 3
		if head > 0 {
			builder.WriteString(whole[:head])
		}
		for i := head; i < len(whole); i += 3 {
			if builder.Len() > 0 {
				builder.WriteByte(',')
			}
			builder.WriteString(whole[i : i+3])
		}
		whole = builder.String()
	}

	if hasFraction {
		return sign + whole + "." + fraction
	}
	return sign + whole
}
