package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/layali/planner-gateway/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
}

// TestUpcomingKeepsTodayAndLater проверяет, что вчерашние и неразборчивые даты отбрасываются.
func TestUpcomingKeepsTodayAndLater(t *testing.T) {
	events := []models.Event{
		{ID: "tomorrow", Date: "2026-03-11"},
		{ID: "yesterday", Date: "2026-03-09"},
		{ID: "invalid", Date: "invalid-date"},
		{ID: "today", Date: "2026-03-10"},
		{ID: "missing"},
	}

	got := Upcoming(events, fixedNow())

	require.Len(t, got, 2)
	assert.Equal(t, "today", got[0].Event.ID)
	assert.Equal(t, "tomorrow", got[1].Event.ID)
	assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), got[0].Day)
}

// TestUpcomingSortsAscending проверяет сортировку по дате независимо от входного порядка.
func TestUpcomingSortsAscending(t *testing.T) {
	events := []models.Event{
		{ID: "c", Date: "2026-06-01"},
		{ID: "a", Date: "2026-03-10T08:00:00Z"},
		{ID: "b", Date: "2026-04-01T00:00:00.000Z"},
	}

	got := Upcoming(events, fixedNow())

	ids := make([]string, 0, len(got))
	for _, candidate := range got {
		ids = append(ids, candidate.Event.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

// TestUpcomingEmptyInput проверяет, что пустой и nil вход дают пустой список.
func TestUpcomingEmptyInput(t *testing.T) {
	got := Upcoming(nil, fixedNow())
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Upcoming([]models.Event{}, fixedNow())
	assert.Empty(t, got)
}

// TestUpcomingTodayEarlierHour проверяет, что событие сегодня с уже прошедшим временем остается в списке.
func TestUpcomingTodayEarlierHour(t *testing.T) {
	events := []models.Event{{ID: "morning", Date: "2026-03-10T06:00:00Z"}}

	got := Upcoming(events, fixedNow())

	require.Len(t, got, 1)
	assert.Equal(t, "morning", got[0].Event.ID)
}

func TestParseDay(t *testing.T) {
	day, ok := ParseDay(" 2026-12-31 ", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), day)

	_, ok = ParseDay("31/12/2026", time.UTC)
	assert.False(t, ok)

	_, ok = ParseDay("", time.UTC)
	assert.False(t, ok)
}

// TestParseDayKeepsTimestampDate проверяет, что календарный день метки не сдвигается поясом сервера.
func TestParseDayKeepsTimestampDate(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)

	day, ok := ParseDay("2026-03-12T00:00:00Z", west)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.March, 12, 0, 0, 0, 0, west), day)

	day, ok = ParseDay("2026-03-12T23:30:00-05:00", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC), day)
}

// TestUpcomingMidnightUTCWestOfServer проверяет, что мероприятие сегодня в полночь UTC остается в списке.
func TestUpcomingMidnightUTCWestOfServer(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, west)

	got := Upcoming([]models.Event{{ID: "today", Date: "2026-03-10T00:00:00Z"}}, now)

	require.Len(t, got, 1)
	assert.Equal(t, "today", got[0].Event.ID)
}
