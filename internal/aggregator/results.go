package aggregator

import (
	"context"
	"time"

	"github.com/omarshaarawi/f1bot/internal/models"
)

const (
	msgNoRaces          = "No races available for the selected year."
	msgNoCompletedRaces = "No completed races for the selected year yet."
	msgRacesFailed      = "Failed to fetch races. Please try again."
	msgResultsFailed    = "Failed to fetch results. Please try again."
)

// Rounds returns the season's completed races in date order together with the
// default selection, which is the last completed race.
func (a *Aggregator) Rounds(ctx context.Context, key models.SeasonKey) ([]models.Race, models.Race, error) {
	items, err := a.source.GetRaces(ctx, key)
	if err != nil {
		return nil, models.Race{}, a.fail(models.ViewResults, msgRacesFailed, err)
	}
	if len(items) == 0 {
		return nil, models.Race{}, a.fail(models.ViewResults, msgNoRaces, ErrNoRaces)
	}

	now := a.clock.Now()
	var completed []models.Race
	for _, item := range items {
		race := toRace(item)
		if race.Date.IsZero() {
			continue
		}
		day := time.Date(race.Date.Year(), race.Date.Month(), race.Date.Day(), 0, 0, 0, 0, time.UTC)
		if !day.After(now) {
			completed = append(completed, race)
		}
	}

	if len(completed) == 0 {
		return nil, models.Race{}, a.fail(models.ViewResults, msgNoCompletedRaces, ErrNoRaces)
	}

	return completed, completed[len(completed)-1], nil
}

// Results returns the classification of one round in API order.
func (a *Aggregator) Results(ctx context.Context, key models.SeasonKey) (models.RaceResults, error) {
	year := a.year(key)

	race, err := a.source.GetRaceResults(ctx, key)
	if err != nil {
		return models.RaceResults{Entries: []models.ResultEntry{}}, a.fail(models.ViewResults, msgResultsFailed, err)
	}
	if race == nil {
		return models.RaceResults{RaceName: "Race", Round: key.Round, Entries: []models.ResultEntry{}}, nil
	}

	results := models.RaceResults{
		RaceName: race.RaceName,
		Round:    atoi(race.Round),
		Entries:  make([]models.ResultEntry, len(race.Results)),
	}
	for i, item := range race.Results {
		results.Entries[i] = toResult(item, year)
	}

	return results, nil
}

// LastResults is the home screen's "last race" panel. It is independent of
// the next race lookup and may run alongside it.
func (a *Aggregator) LastResults(ctx context.Context) (models.RaceResults, error) {
	race, err := a.source.GetRaceResults(ctx, models.SeasonKey{})
	if err != nil {
		return models.RaceResults{}, a.fail(models.ViewHome, "Error fetching last results", err)
	}
	if race == nil {
		return models.RaceResults{}, nil
	}

	year := a.year(models.SeasonKey{})
	results := models.RaceResults{RaceName: race.RaceName, Round: atoi(race.Round)}
	for _, item := range race.Results {
		results.Entries = append(results.Entries, toResult(item, year))
	}
	return results, nil
}
