package session

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"example.com/layali/planner-gateway/internal/present"
	"example.com/layali/planner-gateway/internal/suggestions"
	"example.com/layali/planner-gateway/internal/totals"
)

const dayLayout = "2006-01-02"

type View struct {
	ID              string             `json:"id"`
	Status          suggestions.Status `json:"status"`
	Generation      uint64             `json:"generation"`
	CanFire         bool               `json:"can_fire"`
	Loading         LoadingView        `json:"loading"`
	EventsError     string             `json:"events_error,omitempty"`
	CategoriesError string             `json:"categories_error,omitempty"`
	SelectedEventID string             `json:"selected_event_id,omitempty"`
	Events          []EventView        `json:"events"`
	Categories      []CategoryView     `json:"categories"`
	ResponseKind    suggestions.Kind   `json:"response_kind,omitempty"`
	Items           []ItemView         `json:"items"`
	Figures         FiguresView        `json:"figures"`
	Error           string             `json:"error,omitempty"`
}

type LoadingView struct {
	Events     bool `json:"events"`
	Categories bool `json:"categories"`
}

type EventView struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Date        string              `json:"date"`
	DateLabel   string              `json:"date_label"`
	Budget      decimal.NullDecimal `json:"budget"`
	BudgetLabel string              `json:"budget_label"`
	Location    string              `json:"location"`
	Selected    bool                `json:"selected"`
}

type CategoryView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type ItemView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Price       decimal.NullDecimal `json:"price"`
	PriceLabel  string              `json:"price_label"`
	Reason      string              `json:"reason,omitempty"`
	Image       string              `json:"image,omitempty"`
	CategoryIDs []string            `json:"category_ids"`
	VendorID    string              `json:"vendor_id,omitempty"`
	VendorName  string              `json:"vendor_name"`
	VendorLogo  string              `json:"vendor_logo,omitempty"`
}

type FiguresView struct {
	Total          decimal.NullDecimal `json:"total"`
	TotalLabel     string              `json:"total_label"`
	Budget         decimal.NullDecimal `json:"budget"`
	BudgetLabel    string              `json:"budget_label"`
	Remaining      decimal.NullDecimal `json:"remaining"`
	RemainingLabel string              `json:"remaining_label"`
}

// View собирает представление экрана: списки, статус запроса и итоговые суммы.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.lifecycle.State()
	view := View{
		ID:              s.ID.String(),
		Status:          state.Status,
		Generation:      state.Generation,
		CanFire:         s.canFire(),
		Loading:         LoadingView{Events: s.loadingEvents, Categories: s.loadingCategories},
		SelectedEventID: s.selectedEventID,
		Events:          make([]EventView, 0, len(s.events)),
		Categories:      make([]CategoryView, 0, len(s.categories)),
		Items:           []ItemView{},
		Error:           state.Message,
	}

	if s.eventsErr != nil {
		view.EventsError = loadMessage(s.eventsErr, "failed to load events")
	}
	if s.categoriesErr != nil {
		view.CategoriesError = loadMessage(s.categoriesErr, "failed to load categories")
	}

	budget := decimal.NullDecimal{}
	for _, candidate := range s.events {
		selected := candidate.Event.ID == s.selectedEventID
		if selected {
			budget = candidate.Event.Budget
		}
		view.Events = append(view.Events, EventView{
			ID:          candidate.Event.ID,
			Title:       candidate.Event.Title,
			Date:        candidate.Day.Format(dayLayout),
			DateLabel:   s.formatter.Date(candidate.Day),
			Budget:      candidate.Event.Budget,
			BudgetLabel: s.formatter.Money(candidate.Event.Budget),
			Location:    present.Text(candidate.Event.Location),
			Selected:    selected,
		})
	}

	for _, category := range s.categories {
		view.Categories = append(view.Categories, CategoryView{
			ID:       category.ID,
			Name:     category.Name,
			Selected: s.selection.IsSelected(category.ID),
		})
	}

	var response *suggestions.Response
	if state.Status == suggestions.StatusSucceeded {
		response = state.Response
	}

	if response != nil {
		view.ResponseKind = response.Kind()
		for _, item := range response.Items() {
			view.Items = append(view.Items, s.itemView(item))
		}
	}

	figures := totals.Reconcile(response, budget)
	view.Figures = FiguresView{
		Total:          figures.Total,
		TotalLabel:     s.formatter.Money(figures.Total),
		Budget:         figures.Budget,
		BudgetLabel:    s.formatter.Money(figures.Budget),
		Remaining:      figures.Remaining,
		RemainingLabel: s.formatter.Money(figures.Remaining),
	}

	return view
}

func (s *Session) itemView(item suggestions.Item) ItemView {
	view := ItemView{
		ID:          item.ID,
		Name:        item.DisplayName(),
		Price:       item.Price,
		PriceLabel:  s.formatter.Money(item.Price),
		Reason:      item.Reason,
		Image:       item.Image,
		CategoryIDs: append([]string{}, item.CategoryIDs...),
		VendorName:  item.VendorName(),
	}
	if item.Vendor != nil {
		view.VendorID = item.Vendor.ID
		view.VendorLogo = item.Vendor.Logo
	}
	return view
}

type userMessager interface {
	UserMessage() string
}

func loadMessage(err error, fallback string) string {
	var messager userMessager
	if errors.As(err, &messager) {
		if message := strings.TrimSpace(messager.UserMessage()); message != "" {
			return message
		}
	}
	return fallback
}
