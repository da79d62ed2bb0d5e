package marketplace

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"example.com/layali/planner-gateway/internal/models"
	"example.com/layali/planner-gateway/internal/suggestions"
)

// amount разбирает денежное значение, пришедшее числом или строкой.
// null и пустая строка означают отсутствие значения, неразборчивое значение считается нулем.
type amount struct {
	value decimal.NullDecimal
}

func (a *amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		a.value = decimal.NullDecimal{}
		return nil
	}

	raw := string(trimmed)
	if trimmed[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			a.value = decimal.NewNullDecimal(decimal.Zero)
			return nil
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			a.value = decimal.NullDecimal{}
			return nil
		}
	}

	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		parsed = decimal.Zero
	}
	a.value = decimal.NewNullDecimal(parsed)
	return nil
}

type eventWire struct {
	ID       string  `json:"id"`
	MongoID  string  `json:"_id"`
	OwnerID  string  `json:"user"`
	Title    string  `json:"title"`
	Budget   *amount `json:"budget"`
	Date     *string `json:"date"`
	Location string  `json:"location"`
}

func (w eventWire) toModel() models.Event {
	event := models.Event{
		ID:       firstNonEmpty(w.ID, w.MongoID),
		OwnerID:  w.OwnerID,
		Title:    w.Title,
		Location: w.Location,
	}
	if w.Budget != nil {
		event.Budget = w.Budget.value
	}
	if w.Date != nil {
		event.Date = *w.Date
	}
	return event
}

type categoryWire struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
	Name    string `json:"name"`
}

func (w categoryWire) toModel() models.Category {
	return models.Category{
		ID:   firstNonEmpty(w.ID, w.MongoID),
		Name: w.Name,
	}
}

type suggestionsRequest struct {
	EventID    string   `json:"eventId"`
	Categories []string `json:"categories"`
}

type suggestionsWire struct {
	TotalPrice  *amount    `json:"totalPrice"`
	Items       []itemWire `json:"items"`
	Suggestions []itemWire `json:"suggestions"`
}

type itemWire struct {
	ID         string      `json:"id"`
	MongoID    string      `json:"_id"`
	Name       *string     `json:"name"`
	Price      *amount     `json:"price"`
	Reason     *string     `json:"reason"`
	Image      *string     `json:"image"`
	Categories []string    `json:"categories"`
	Vendor     *vendorWire `json:"vendor"`
}

type vendorWire struct {
	ID           string  `json:"id"`
	MongoID      string  `json:"_id"`
	BusinessName *string `json:"businessName"`
	Logo         *string `json:"logo"`
}

// toResponse выбирает форму ответа: сумма сервера есть и не null -> primary, иначе fallback.
func (w suggestionsWire) toResponse() suggestions.Response {
	source := w.Items
	if len(source) == 0 {
		source = w.Suggestions
	}

	items := make([]suggestions.Item, 0, len(source))
	for _, item := range source {
		items = append(items, item.toItem())
	}

	if w.TotalPrice != nil && w.TotalPrice.value.Valid {
		return suggestions.NewPrimary(w.TotalPrice.value.Decimal, items)
	}
	return suggestions.NewFallback(items)
}

func (w itemWire) toItem() suggestions.Item {
	item := suggestions.Item{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		Name:        deref(w.Name),
		Reason:      deref(w.Reason),
		Image:       deref(w.Image),
		CategoryIDs: append([]string(nil), w.Categories...),
	}
	if w.Price != nil {
		item.Price = w.Price.value
	}
	if w.Vendor != nil {
		item.Vendor = &suggestions.Vendor{
			ID:           firstNonEmpty(w.Vendor.ID, w.Vendor.MongoID),
			BusinessName: deref(w.Vendor.BusinessName),
			Logo:         deref(w.Vendor.Logo),
		}
	}
	return item
}

type errorWire struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
