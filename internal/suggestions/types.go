package suggestions

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	// KindPrimary несет итоговую сумму, посчитанную сервером.
	KindPrimary Kind = "primary"
	// KindFallback приходит без итоговой суммы, сумма считается по позициям.
	KindFallback Kind = "fallback"

	UnnamedService = "Unnamed service"
	UnknownVendor  = "Unknown vendor"
)

// Response содержит результат подбора услуг. Создается только через NewPrimary или NewFallback.
type Response struct {
	kind  Kind
	total decimal.Decimal
	items []Item
}

type Item struct {
	ID          string
	Name        string
	Price       decimal.NullDecimal
	Reason      string
	Image       string
	CategoryIDs []string
	Vendor      *Vendor
}

type Vendor struct {
	ID           string
	BusinessName string
	Logo         string
}

// NewPrimary создает ответ с авторитетной суммой от сервера.
func NewPrimary(total decimal.Decimal, items []Item) Response {
	return Response{kind: KindPrimary, total: total, items: items}
}

// NewFallback создает ответ без итоговой суммы.
func NewFallback(items []Item) Response {
	return Response{kind: KindFallback, items: items}
}

func (r Response) Kind() Kind {
	return r.kind
}

// Authoritative возвращает сумму сервера; ok=false для fallback-ответа.
func (r Response) Authoritative() (decimal.Decimal, bool) {
	if r.kind == KindPrimary {
		return r.total, true
	}
	return decimal.Decimal{}, false
}

func (r Response) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

func (r Response) Len() int {
	return len(r.items)
}

// DisplayName возвращает название услуги или заглушку.
func (i Item) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return UnnamedService
}

// PriceOrZero возвращает цену, отсутствующая цена считается нулем.
func (i Item) PriceOrZero() decimal.Decimal {
	if i.Price.Valid {
		return i.Price.Decimal
	}
	return decimal.Zero
}

// VendorName возвращает название компании-исполнителя или заглушку.
func (i Item) VendorName() string {
	if i.Vendor == nil {
		return UnknownVendor
	}
	if name := strings.TrimSpace(i.Vendor.BusinessName); name != "" {
		return name
	}
	return UnknownVendor
}
