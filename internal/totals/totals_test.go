package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/layali/planner-gateway/internal/suggestions"
)

func price(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func sampleItems() []suggestions.Item {
	return []suggestions.Item{
		{ID: "a", Price: price("10.5")},
		{ID: "b"},
		{ID: "c", Price: price("5")},
	}
}

// TestTotalPriceFallbackSumsItems проверяет суммирование при отсутствии суммы сервера.
func TestTotalPriceFallbackSumsItems(t *testing.T) {
	total := TotalPrice(suggestions.NewFallback(sampleItems()))
	assert.True(t, total.Equal(amount("15.5")), "got %s", total)
}

// TestTotalPricePrimaryWins проверяет, что сумма сервера важнее позиций.
func TestTotalPricePrimaryWins(t *testing.T) {
	total := TotalPrice(suggestions.NewPrimary(decimal.NewFromInt(42), sampleItems()))
	assert.True(t, total.Equal(decimal.NewFromInt(42)), "got %s", total)
}

// TestTotalPricePrimaryZero проверяет, что нулевая сумма сервера не подменяется суммой позиций.
func TestTotalPricePrimaryZero(t *testing.T) {
	total := TotalPrice(suggestions.NewPrimary(decimal.Zero, sampleItems()))
	assert.True(t, total.IsZero(), "got %s", total)
}

// TestRemainingFloor проверяет, что остаток не бывает отрицательным.
func TestRemainingFloor(t *testing.T) {
	remaining := Remaining(price("50"), amount("80"))
	require.True(t, remaining.Valid)
	assert.True(t, remaining.Decimal.IsZero())

	remaining = Remaining(price("50"), amount("20"))
	require.True(t, remaining.Valid)
	assert.True(t, remaining.Decimal.Equal(amount("30")))

	remaining = Remaining(decimal.NullDecimal{}, amount("20"))
	assert.False(t, remaining.Valid)
}

// TestReconcileScenario проверяет сценарий: бюджет 200, fallback-ответ 60 + 90.
func TestReconcileScenario(t *testing.T) {
	response := suggestions.NewFallback([]suggestions.Item{
		{ID: "catering", Price: price("60")},
		{ID: "photography", Price: price("90")},
	})

	figures := Reconcile(&response, price("200"))

	require.True(t, figures.Total.Valid)
	require.True(t, figures.Remaining.Valid)
	assert.True(t, figures.Total.Decimal.Equal(amount("150")))
	assert.True(t, figures.Remaining.Decimal.Equal(amount("50")))
	assert.True(t, figures.Budget.Decimal.Equal(amount("200")))
}

// TestReconcileWithoutResponse проверяет, что без ответа сумма и остаток отсутствуют, а не равны нулю.
func TestReconcileWithoutResponse(t *testing.T) {
	figures := Reconcile(nil, price("200"))

	assert.False(t, figures.Total.Valid)
	assert.False(t, figures.Remaining.Valid)
	assert.True(t, figures.Budget.Valid)
}

// TestReconcileEmptyFallback проверяет, что пустой ответ дает сумму 0, отличимую от отсутствия суммы.
func TestReconcileEmptyFallback(t *testing.T) {
	response := suggestions.NewFallback(nil)

	figures := Reconcile(&response, decimal.NullDecimal{})

	require.True(t, figures.Total.Valid)
	assert.True(t, figures.Total.Decimal.IsZero())
	assert.False(t, figures.Budget.Valid)
	assert.False(t, figures.Remaining.Valid)
}
