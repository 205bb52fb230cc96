package aggregator

import (
	"context"
	"fmt"
	"slices"

	"github.com/omarshaarawi/f1bot/internal/models"
)

type CalendarOrder string

const (
	Chronological        CalendarOrder = "chronological"
	ReverseChronological CalendarOrder = "reverse-chronological"
)

func ParseCalendarOrder(s string) (CalendarOrder, error) {
	switch CalendarOrder(s) {
	case Chronological, ReverseChronological:
		return CalendarOrder(s), nil
	case "asc":
		return Chronological, nil
	case "desc":
		return ReverseChronological, nil
	}
	return "", fmt.Errorf("unknown calendar order: %s", s)
}

func (a *Aggregator) DefaultCalendarOrder() CalendarOrder {
	return a.opts.CalendarOrder
}

// Calendar returns every race of the season in the requested order. Failures
// follow the calendar's error visibility.
func (a *Aggregator) Calendar(ctx context.Context, key models.SeasonKey, order CalendarOrder) ([]models.Race, error) {
	items, err := a.source.GetRaces(ctx, key)
	if err != nil {
		return []models.Race{}, a.fail(models.ViewCalendar, "Failed to fetch race calendar", err)
	}

	races := make([]models.Race, len(items))
	for i, item := range items {
		races[i] = toRace(item)
	}

	if order == ReverseChronological {
		slices.Reverse(races)
	}

	return races, nil
}

// NextRace returns nil when the current season has no races left.
func (a *Aggregator) NextRace(ctx context.Context) (*models.Race, error) {
	item, err := a.source.GetNextRace(ctx)
	if err != nil {
		return nil, a.fail(models.ViewHome, "Error fetching race data", err)
	}
	if item == nil {
		return nil, nil
	}

	race := toRace(*item)
	return &race, nil
}
