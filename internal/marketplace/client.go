package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"example.com/layali/planner-gateway/internal/models"
	"example.com/layali/planner-gateway/internal/suggestions"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxResponseBytes = 4 << 20

// Client вызывает REST API маркетплейса от имени пользователя.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// CreateEventInput описывает новое мероприятие.
type CreateEventInput struct {
	Title    string          `json:"title,omitempty" validate:"max=200"`
	Budget   decimal.Decimal `json:"budget" validate:"gte=100"`
	Date     string          `json:"date" validate:"required,notpast"`
	Location string          `json:"location" validate:"required,max=500"`
}

// UpdateEventInput задает частичное обновление мероприятия. Прошедшая дата не допускается.
type UpdateEventInput struct {
	Budget   *decimal.Decimal `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Date     *string          `json:"date,omitempty" validate:"omitempty,notpast"`
	Location *string          `json:"location,omitempty" validate:"omitempty,min=1,max=500"`
}

// NewClient создает клиент маркетплейса с заданными параметрами.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken возвращает копию клиента, подписывающую запросы токеном пользователя.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// ListMyEvents возвращает мероприятия текущего пользователя.
func (c *Client) ListMyEvents(ctx context.Context) ([]models.Event, error) {
	var wire []eventWire
	if err := c.do(ctx, "list events", http.MethodGet, "/events/my", nil, &wire); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(wire))
	for _, event := range wire {
		events = append(events, event.toModel())
	}
	return events, nil
}

// ListCategories возвращает справочник категорий услуг.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var wire []categoryWire
	if err := c.do(ctx, "list categories", http.MethodGet, "/categories", nil, &wire); err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(wire))
	for _, category := range wire {
		categories = append(categories, category.toModel())
	}
	return categories, nil
}

// FetchSuggestions запрашивает подбор услуг под бюджет мероприятия.
func (c *Client) FetchSuggestions(ctx context.Context, query suggestions.Query) (suggestions.Response, error) {
	body := suggestionsRequest{EventID: query.EventID, Categories: query.CategoryIDs}

	var wire suggestionsWire
	if err := c.do(ctx, "suggestions", http.MethodPost, "/suggestions", body, &wire); err != nil {
		return suggestions.Response{}, err
	}

	return wire.toResponse(), nil
}

// CreateEvent создает мероприятие.
func (c *Client) CreateEvent(ctx context.Context, input CreateEventInput) (models.Event, error) {
	var wire eventWire
	if err := c.do(ctx, "create event", http.MethodPost, "/events", input, &wire); err != nil {
		return models.Event{}, err
	}
	return wire.toModel(), nil
}

// UpdateEvent обновляет бюджет, дату или место мероприятия.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, input UpdateEventInput) (models.Event, error) {
	var wire eventWire
	if err := c.do(ctx, "update event", http.MethodPut, "/events/"+url.PathEscape(eventID), input, &wire); err != nil {
		return models.Event{}, err
	}
	return wire.toModel(), nil
}

// DeleteEvent удаляет мероприятие.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, "delete event", http.MethodDelete, "/events/"+url.PathEscape(eventID), nil, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marketplace %s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("marketplace %s: %w", operation, err)
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("marketplace %s: %w", operation, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("marketplace %s: read response: %w", operation, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return newAPIError(operation, response.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("marketplace %s: decode response: %w", operation, err)
	}

	return nil
}
