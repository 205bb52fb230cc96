// Package aggregator composes Ergast requests into the view models shown by
// the bot: calendar, rosters, standings, results, lap charts and trends.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/f1bot/internal/media"
	"github.com/omarshaarawi/f1bot/internal/models"
)

type Source interface {
	GetRaces(ctx context.Context, key models.SeasonKey) ([]models.RaceItem, error)
	GetNextRace(ctx context.Context) (*models.RaceItem, error)
	GetDrivers(ctx context.Context, key models.SeasonKey) ([]models.DriverItem, error)
	GetConstructors(ctx context.Context, key models.SeasonKey) ([]models.ConstructorItem, error)
	GetConstructorDrivers(ctx context.Context, key models.SeasonKey, constructorID string) ([]models.DriverItem, error)
	GetStandings(ctx context.Context, key models.SeasonKey, kind models.StandingsKind) (*models.StandingsList, error)
	GetRaceResults(ctx context.Context, key models.SeasonKey) (*models.RaceItem, error)
	GetDriverResults(ctx context.Context, key models.SeasonKey, driverID string) ([]models.RaceItem, error)
	GetConstructorResults(ctx context.Context, key models.SeasonKey, constructorID string) ([]models.RaceItem, error)
	GetLapTimings(ctx context.Context, key models.SeasonKey, lap int) ([]models.TimingItem, error)
}

type ErrorVisibility string

const (
	Silent   ErrorVisibility = "silent"
	Surfaced ErrorVisibility = "surfaced"
)

// DefaultVisibility mirrors how each screen has always reported failures:
// listings degrade quietly, standings/results/lap charts show a message.
var DefaultVisibility = map[models.View]ErrorVisibility{
	models.ViewHome:         Silent,
	models.ViewCalendar:     Silent,
	models.ViewDrivers:      Silent,
	models.ViewConstructors: Silent,
	models.ViewTrend:        Silent,
	models.ViewStandings:    Surfaced,
	models.ViewResults:      Surfaced,
	models.ViewLapChart:     Surfaced,
}

var (
	ErrNoStandings = errors.New("no standings")
	ErrNoRaces     = errors.New("no races")
)

// UserError is a failure meant to be shown to the user as Message.
type UserError struct {
	View    models.View
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

type Options struct {
	CalendarOrder     CalendarOrder
	LapChartTotalLaps int
	DeriveLapCount    bool
	Visibility        map[models.View]ErrorVisibility
	Clock             clockwork.Clock
}

type Aggregator struct {
	source Source
	opts   Options
	clock  clockwork.Clock
}

func New(source Source, opts Options) *Aggregator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Visibility == nil {
		opts.Visibility = DefaultVisibility
	}
	if opts.CalendarOrder == "" {
		opts.CalendarOrder = ReverseChronological
	}
	return &Aggregator{source: source, opts: opts, clock: opts.Clock}
}

func (a *Aggregator) visibility(view models.View) ErrorVisibility {
	if v, ok := a.opts.Visibility[view]; ok {
		return v
	}
	return Surfaced
}

// fail applies the view's error visibility. Silent views log and return nil so
// the caller hands back an empty collection. Cancellation is always returned
// as is so stale work can be told apart from real failures.
func (a *Aggregator) fail(view models.View, message string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if a.visibility(view) == Silent {
		slog.Error(message, "view", view, "error", err)
		return nil
	}
	slog.Warn(message, "view", view, "error", err)
	return &UserError{View: view, Message: message, Err: err}
}

func (a *Aggregator) Now() time.Time {
	return a.clock.Now()
}

// year resolves the season year used in derived URLs.
func (a *Aggregator) year(key models.SeasonKey) int {
	if key.Year == 0 {
		return a.clock.Now().Year()
	}
	return key.Year
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseRaceDate(date, clock string) (time.Time, bool) {
	if clock != "" {
		if t, err := time.Parse(time.RFC3339, fmt.Sprintf("%sT%s", date, clock)); err == nil {
			return t, true
		}
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, false
}

func toRace(item models.RaceItem) models.Race {
	date, hasTime := parseRaceDate(item.Date, item.Time)
	return models.Race{
		Name:        item.RaceName,
		Round:       atoi(item.Round),
		Date:        date,
		HasTime:     hasTime,
		CircuitName: item.Circuit.CircuitName,
		Locality:    item.Circuit.Location.Locality,
		Country:     item.Circuit.Location.Country,
	}
}

func toDriver(item models.DriverItem, year int) models.Driver {
	return models.Driver{
		ID:              item.DriverID,
		GivenName:       item.GivenName,
		FamilyName:      item.FamilyName,
		Nationality:     item.Nationality,
		DateOfBirth:     item.DateOfBirth,
		Code:            item.Code,
		PermanentNumber: item.PermanentNumber,
		Points:          models.PointsUnavailable,
		PhotoURL:        media.DriverPhotoURL(item.FamilyName, year),
	}
}

func toConstructor(item models.ConstructorItem, year int) models.Constructor {
	return models.Constructor{
		ID:          item.ConstructorID,
		Name:        item.Name,
		Nationality: item.Nationality,
		Points:      models.PointsUnavailable,
		LogoURL:     media.ConstructorLogoURL(item.ConstructorID, item.Name),
		CarImageURL: media.ConstructorCarURL(item.ConstructorID, item.Name, year),
	}
}

func toResult(item models.ResultItem, year int) models.ResultEntry {
	entry := models.ResultEntry{
		Position:    atoi(item.Position),
		Laps:        atoi(item.Laps),
		Grid:        atoi(item.Grid),
		Status:      item.Status,
		Points:      atof(item.Points),
		Driver:      toDriver(item.Driver, year),
		Constructor: toConstructor(item.Constructor, year),
	}
	entry.Driver.TeamName = item.Constructor.Name
	entry.Driver.Points = item.Points
	if item.Time != nil && item.Time.Time != "" {
		t := item.Time.Time
		entry.Time = &t
	}
	return entry
}
