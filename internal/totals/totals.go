package totals

import (
	"github.com/shopspring/decimal"

	"example.com/layali/planner-gateway/internal/suggestions"
)

// Figures содержит итоговые суммы подбора. Каждое значение может отсутствовать,
// и отсутствие не равно нулю.
type Figures struct {
	Total     decimal.NullDecimal
	Budget    decimal.NullDecimal
	Remaining decimal.NullDecimal
}

// TotalPrice возвращает сумму сервера, а для fallback-ответа сумму цен позиций.
func TotalPrice(response suggestions.Response) decimal.Decimal {
	switch response.Kind() {
	case suggestions.KindPrimary:
		total, _ := response.Authoritative()
		return total
	case suggestions.KindFallback:
		return SumItems(response.Items())
	default:
		return SumItems(response.Items())
	}
}

// SumItems складывает цены позиций, отсутствующая цена считается нулем.
func SumItems(items []suggestions.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.PriceOrZero())
	}
	return sum
}

// Remaining возвращает max(budget-total, 0). Без бюджета остаток не определен.
func Remaining(budget decimal.NullDecimal, total decimal.Decimal) decimal.NullDecimal {
	if !budget.Valid {
		return decimal.NullDecimal{}
	}

	remaining := budget.Decimal.Sub(total)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return decimal.NewNullDecimal(remaining)
}

// Reconcile считает суммы для ответа и бюджета выбранного мероприятия.
// Без ответа известен только бюджет.
func Reconcile(response *suggestions.Response, budget decimal.NullDecimal) Figures {
	figures := Figures{Budget: budget}
	if response == nil {
		return figures
	}

	total := TotalPrice(*response)
	figures.Total = decimal.NewNullDecimal(total)
	figures.Remaining = Remaining(budget, total)
	return figures
}
