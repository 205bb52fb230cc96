package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/omarshaarawi/f1bot/internal/aggregator"
	"github.com/omarshaarawi/f1bot/internal/countdown"
	"github.com/omarshaarawi/f1bot/internal/media"
	"github.com/omarshaarawi/f1bot/internal/models"
	"github.com/omarshaarawi/f1bot/internal/repository/memory"
	"golang.org/x/sync/errgroup"
)

// ErrStale reports a fetch cycle superseded by a newer request for the same
// chat and view. Its result has been dropped.
var ErrStale = errors.New("superseded by a newer request")

type F1Service struct {
	agg  *aggregator.Aggregator
	repo *memory.Repository
}

func NewF1Service(agg *aggregator.Aggregator, repo *memory.Repository) *F1Service {
	return &F1Service{agg: agg, repo: repo}
}

func (s *F1Service) DefaultCalendarOrder() aggregator.CalendarOrder {
	return s.agg.DefaultCalendarOrder()
}

// settle turns a finished fetch cycle into the service result: cancelled work
// and lost commits become ErrStale.
func (s *F1Service) settle(ticket memory.Ticket, value any, err error) error {
	if errors.Is(err, context.Canceled) {
		s.repo.Abandon(ticket)
		return ErrStale
	}
	if err != nil {
		s.repo.Abandon(ticket)
		return err
	}
	if !s.repo.Commit(ticket, value) {
		slog.Debug("Dropping stale result", "chat", ticket.ChatID, "view", ticket.View, "key", ticket.Key.String())
		return ErrStale
	}
	return nil
}

type home struct {
	next *models.Race
	last models.RaceResults
}

// Home loads the next race and the last race's podium concurrently.
func (s *F1Service) Home(ctx context.Context, chatID int64) (string, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewHome, models.SeasonKey{})

	var h home
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		next, err := s.agg.NextRace(gctx)
		h.next = next
		return err
	})
	g.Go(func() error {
		last, err := s.agg.LastResults(gctx)
		h.last = last
		return err
	})
	err := g.Wait()
	if err := s.settle(ticket, h, err); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("🏁 *Welcome to F1natics*\nThe pitstop for all F1 fans!\n\n")

	if h.next != nil {
		sb.WriteString(fmt.Sprintf("*Next:* %s\n", h.next.Name))
		sb.WriteString(fmt.Sprintf("%s, %s\n", h.next.CircuitName, h.next.Location()))
		sb.WriteString(formatRaceDate(*h.next) + "\n")
		if cd, ok := countdown.Remaining(h.next.Date, s.agg.Now()); ok {
			sb.WriteString(formatCountdown(cd) + "\n")
		}
		sb.WriteString(fmt.Sprintf("[Track](%s) · [Circuit map](%s)\n",
			media.TrackIconURL(h.next.Locality, h.next.Country),
			media.TrackImageURL(h.next.Locality, h.next.Country, false)))
	} else {
		sb.WriteString("No upcoming races this season.\n")
	}

	if len(h.last.Entries) > 0 {
		sb.WriteString(fmt.Sprintf("\n*Last race:* %s\n", h.last.RaceName))
		for _, entry := range h.last.Entries[:min(3, len(h.last.Entries))] {
			sb.WriteString(fmt.Sprintf("%s P%d %s (%s)\n", podium(entry.Position), entry.Position, entry.Driver.FullName(), entry.Constructor.Name))
		}
	}

	return sb.String(), nil
}

// NextRace is the countdown target: the next race of the current season.
func (s *F1Service) NextRace(ctx context.Context) (*models.Race, error) {
	next, err := s.agg.NextRace(ctx)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("no upcoming races this season")
	}
	return next, nil
}

func (s *F1Service) Calendar(ctx context.Context, chatID int64, key models.SeasonKey, order aggregator.CalendarOrder) (string, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewCalendar, key)

	races, err := s.agg.Calendar(ctx, key, order)
	if err := s.settle(ticket, races, err); err != nil {
		return "", err
	}

	return renderCalendar(key, races, s.agg.Now()), nil
}

// calendarRaces reuses the chat's displayed calendar for key when there is
// one. Its order does not matter to lookups.
func (s *F1Service) calendarRaces(ctx context.Context, chatID int64, key models.SeasonKey) ([]models.Race, error) {
	if value, stored, ok := s.repo.Get(chatID, models.ViewCalendar); ok && stored == key {
		if races, ok := value.([]models.Race); ok && len(races) > 0 {
			return races, nil
		}
	}

	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewCalendar, key)
	races, err := s.agg.Calendar(ctx, key, aggregator.Chronological)
	if err := s.settle(ticket, races, err); err != nil {
		return nil, err
	}
	return races, nil
}

// Race shows one calendar entry, picked by round number or by name, with its
// circuit map.
func (s *F1Service) Race(ctx context.Context, chatID int64, key models.SeasonKey, query string) (string, error) {
	races, err := s.calendarRaces(ctx, chatID, key)
	if err != nil {
		return "", err
	}

	if round, err := strconv.Atoi(strings.TrimSpace(query)); err == nil {
		for _, race := range races {
			if race.Round == round {
				return renderRace(race, s.agg.Now()), nil
			}
		}
		return "", fmt.Errorf("no round %d in the %s", round, strings.ToLower(seasonLabel(key)))
	}

	names := make([]string, len(races))
	for i, race := range races {
		names[i] = race.Name
	}
	i := bestMatch(query, names)
	if i == -1 {
		return "", fmt.Errorf("race not found: %s", query)
	}
	return renderRace(races[i], s.agg.Now()), nil
}

func (s *F1Service) Drivers(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	drivers, err := s.loadDrivers(ctx, chatID, key)
	if err != nil {
		return "", err
	}
	return renderDrivers(key, drivers), nil
}

func (s *F1Service) loadDrivers(ctx context.Context, chatID int64, key models.SeasonKey) ([]models.Driver, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewDrivers, key)

	drivers, err := s.agg.Drivers(ctx, key)
	if err := s.settle(ticket, drivers, err); err != nil {
		return nil, err
	}
	return drivers, nil
}

// driverRoster reuses the chat's displayed driver roster for key when there is one,
// so detail lookups do not refetch or replace it.
func (s *F1Service) driverRoster(ctx context.Context, chatID int64, key models.SeasonKey) ([]models.Driver, error) {
	if value, stored, ok := s.repo.Get(chatID, models.ViewDrivers); ok && stored == key {
		if drivers, ok := value.([]models.Driver); ok {
			return drivers, nil
		}
	}
	return s.loadDrivers(ctx, chatID, key)
}

func (s *F1Service) findDriver(ctx context.Context, chatID int64, key models.SeasonKey, name string) (models.Driver, error) {
	drivers, err := s.driverRoster(ctx, chatID, key)
	if err != nil {
		return models.Driver{}, err
	}

	names := make([]string, len(drivers))
	for i, d := range drivers {
		names[i] = d.FullName()
	}
	i := bestMatch(name, names)
	if i == -1 {
		return models.Driver{}, fmt.Errorf("driver not found: %s", name)
	}
	return drivers[i], nil
}

// Driver shows one driver's profile and season results. The results fetch is
// independent of the roster: if it fails the profile is still shown.
func (s *F1Service) Driver(ctx context.Context, chatID int64, key models.SeasonKey, name string) (string, error) {
	driver, err := s.findDriver(ctx, chatID, key, name)
	if err != nil {
		return "", err
	}

	results, err := s.agg.DriverResults(ctx, key, driver.ID)
	if errors.Is(err, context.Canceled) {
		return "", ErrStale
	}
	if err != nil {
		slog.Error("Failed to fetch driver results", "driver", driver.ID, "error", err)
	}

	return renderDriver(driver, results), nil
}

func (s *F1Service) Constructors(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	constructors, err := s.loadConstructors(ctx, chatID, key)
	if err != nil {
		return "", err
	}
	return renderConstructors(key, constructors), nil
}

func (s *F1Service) loadConstructors(ctx context.Context, chatID int64, key models.SeasonKey) ([]models.Constructor, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewConstructors, key)
	constructors, err := s.agg.Constructors(ctx, key)
	if err := s.settle(ticket, constructors, err); err != nil {
		return nil, err
	}
	return constructors, nil
}

func (s *F1Service) constructorRoster(ctx context.Context, chatID int64, key models.SeasonKey) ([]models.Constructor, error) {
	if value, stored, ok := s.repo.Get(chatID, models.ViewConstructors); ok && stored == key {
		if constructors, ok := value.([]models.Constructor); ok {
			return constructors, nil
		}
	}
	return s.loadConstructors(ctx, chatID, key)
}

func (s *F1Service) findConstructor(ctx context.Context, chatID int64, key models.SeasonKey, name string) (models.Constructor, error) {
	constructors, err := s.constructorRoster(ctx, chatID, key)
	if err != nil {
		return models.Constructor{}, err
	}

	names := make([]string, len(constructors))
	for i, c := range constructors {
		names[i] = c.Name
	}
	i := bestMatch(name, names)
	if i == -1 {
		return models.Constructor{}, fmt.Errorf("constructor not found: %s", name)
	}
	return constructors[i], nil
}

func (s *F1Service) Constructor(ctx context.Context, chatID int64, key models.SeasonKey, name string) (string, error) {
	constructor, err := s.findConstructor(ctx, chatID, key, name)
	if err != nil {
		return "", err
	}

	drivers, err := s.agg.ConstructorDrivers(ctx, key, constructor.ID)
	if errors.Is(err, context.Canceled) {
		return "", ErrStale
	}
	if err != nil {
		slog.Error("Failed to fetch drivers for constructor", "constructor", constructor.ID, "error", err)
	}
	constructor.Drivers = drivers

	return renderConstructor(constructor), nil
}

func (s *F1Service) Standings(ctx context.Context, chatID int64, key models.SeasonKey, kind models.StandingsKind) (string, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewStandings, key)

	view, err := s.agg.Standings(ctx, key, kind)
	if err := s.settle(ticket, view, err); err != nil {
		return "", err
	}

	return renderStandings(view), nil
}

func (s *F1Service) Rounds(ctx context.Context, key models.SeasonKey) (string, error) {
	races, latest, err := s.agg.Rounds(ctx, key)
	if err != nil {
		return "", err
	}
	return renderRounds(key, races, latest), nil
}

// resolveRound fills in the latest completed round when key has none.
func (s *F1Service) resolveRound(ctx context.Context, key models.SeasonKey) (models.SeasonKey, error) {
	if key.Round != 0 {
		return key, nil
	}
	if key.Year == 0 {
		key.Year = s.agg.Now().Year()
	}
	_, latest, err := s.agg.Rounds(ctx, key)
	if err != nil {
		return key, err
	}
	key.Round = latest.Round
	return key, nil
}

func (s *F1Service) loadResults(ctx context.Context, chatID int64, key models.SeasonKey) (models.SeasonKey, models.RaceResults, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewResults, key)

	resolved, err := s.resolveRound(ctx, key)
	if err != nil {
		return key, models.RaceResults{}, s.settle(ticket, nil, err)
	}
	ticket.Key = resolved

	results, err := s.agg.Results(ctx, resolved)
	if err := s.settle(ticket, results, err); err != nil {
		return resolved, models.RaceResults{}, err
	}
	return resolved, results, nil
}

func (s *F1Service) Results(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	resolved, results, err := s.loadResults(ctx, chatID, key)
	if err != nil {
		return "", err
	}
	return renderResults(resolved, results), nil
}

// LapChart resolves the round, loads its results and then walks every lap.
// Starting a new chart for the chat abandons one still in progress. The
// results are fetched under the chart's own ticket, so /results and /laps in
// the same chat never supersede each other.
func (s *F1Service) LapChart(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewLapChart, key)

	resolved, err := s.resolveRound(ctx, key)
	if err != nil {
		return "", s.settle(ticket, nil, err)
	}
	ticket.Key = resolved

	results, err := s.agg.Results(ctx, resolved)
	if err != nil {
		return "", s.settle(ticket, nil, err)
	}

	chart, err := s.agg.LapChart(ctx, resolved, results)
	if err := s.settle(ticket, chart, err); err != nil {
		return "", err
	}

	return renderLapChart(results, chart), nil
}

type TrendSubject string

const (
	TrendDriver      TrendSubject = "driver"
	TrendConstructor TrendSubject = "constructor"
)

func (s *F1Service) Trend(ctx context.Context, chatID int64, key models.SeasonKey, subject TrendSubject, name string) (string, error) {
	var (
		label  string
		points []models.TrendPoint
		err    error
	)

	switch subject {
	case TrendConstructor:
		constructor, ferr := s.findConstructor(ctx, chatID, key, name)
		if ferr != nil {
			return "", ferr
		}
		label = constructor.Name
		ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewTrend, key)
		points, err = s.agg.ConstructorTrend(ctx, key, constructor.ID)
		err = s.settle(ticket, points, err)
	default:
		driver, ferr := s.findDriver(ctx, chatID, key, name)
		if ferr != nil {
			return "", ferr
		}
		label = driver.FullName()
		ctx, ticket := s.repo.Begin(ctx, chatID, models.ViewTrend, key)
		points, err = s.agg.DriverTrend(ctx, key, driver.ID)
		err = s.settle(ticket, points, err)
	}
	if err != nil {
		return "", err
	}

	return renderTrend(label, key, points), nil
}

// Forget drops everything held for a chat.
func (s *F1Service) Forget(chatID int64) {
	s.repo.Clear(chatID)
}
