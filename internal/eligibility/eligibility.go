package eligibility

import (
	"sort"
	"strings"
	"time"

	"example.com/layali/planner-gateway/internal/models"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	dateLayout,
}

// Candidate хранит мероприятие, прошедшее фильтр, вместе с разобранной календарной датой.
type Candidate struct {
	Event models.Event
	Day   time.Time
}

// Upcoming возвращает мероприятия с датой не раньше сегодняшней полуночи, по возрастанию даты.
// Мероприятия без даты или с неразборчивой датой отбрасываются.
func Upcoming(events []models.Event, now time.Time) []Candidate {
	today := Midnight(now)
	out := make([]Candidate, 0, len(events))

	for _, event := range events {
		day, ok := ParseDay(event.Date, now.Location())
		if !ok {
			continue
		}
		if day.Before(today) {
			continue
		}
		out = append(out, Candidate{Event: event, Day: day})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})

	return out
}

// ParseDay разбирает дату мероприятия и возвращает полночь того же календарного дня в loc.
func ParseDay(value string, loc *time.Location) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		var (
			parsed time.Time
			err    error
		)
		if layout == dateLayout || layout == "2006-01-02T15:04:05" {
			parsed, err = time.ParseInLocation(layout, trimmed, loc)
		} else {
			parsed, err = time.Parse(layout, trimmed)
		}
		if err != nil {
			continue
		}
		// Календарный день берется в поясе самой метки, полночь ставится в loc.
		year, month, dayOfMonth := parsed.Date()
		return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, loc), true
	}

	return time.Time{}, false
}

// Midnight усекает момент времени до начала суток в его часовом поясе.
func Midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
