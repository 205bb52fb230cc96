package aggregator

import (
	"context"
	"log/slog"

	"github.com/omarshaarawi/f1bot/internal/models"
)

// Drivers fetches the season's driver roster, then joins standings points and
// team name onto it. A standings failure keeps the roster with "N/A" points.
func (a *Aggregator) Drivers(ctx context.Context, key models.SeasonKey) ([]models.Driver, error) {
	year := a.year(key)

	items, err := a.source.GetDrivers(ctx, key)
	if err != nil {
		return []models.Driver{}, a.fail(models.ViewDrivers, "Failed to fetch drivers", err)
	}

	drivers := make([]models.Driver, len(items))
	for i, item := range items {
		drivers[i] = toDriver(item, year)
	}

	list, err := a.source.GetStandings(ctx, key, models.DriverStandings)
	if err != nil {
		if err := a.fail(models.ViewDrivers, "Failed to fetch driver standings", err); err != nil {
			return drivers, err
		}
		return drivers, nil
	}
	if list == nil {
		return drivers, nil
	}

	byID := make(map[string]models.DriverStandingItem, len(list.DriverStandings))
	for _, standing := range list.DriverStandings {
		byID[standing.Driver.DriverID] = standing
	}

	for i := range drivers {
		standing, ok := byID[drivers[i].ID]
		if !ok {
			continue
		}
		drivers[i].Points = standing.Points
		if n := len(standing.Constructors); n > 0 {
			drivers[i].TeamName = standing.Constructors[n-1].Name
		}
	}

	return drivers, nil
}

// Constructors fetches the season's constructors, attaches logo and car
// images, then joins standings points by constructor id.
func (a *Aggregator) Constructors(ctx context.Context, key models.SeasonKey) ([]models.Constructor, error) {
	year := a.year(key)

	items, err := a.source.GetConstructors(ctx, key)
	if err != nil {
		return []models.Constructor{}, a.fail(models.ViewConstructors, "Failed to fetch constructors", err)
	}

	constructors := make([]models.Constructor, len(items))
	for i, item := range items {
		constructors[i] = toConstructor(item, year)
	}

	list, err := a.source.GetStandings(ctx, key, models.ConstructorStandings)
	if err != nil {
		if err := a.fail(models.ViewConstructors, "Failed to fetch constructor standings", err); err != nil {
			return constructors, err
		}
		return constructors, nil
	}
	if list == nil {
		return constructors, nil
	}

	points := make(map[string]string, len(list.ConstructorStandings))
	for _, standing := range list.ConstructorStandings {
		points[standing.Constructor.ConstructorID] = standing.Points
	}

	for i := range constructors {
		if p, ok := points[constructors[i].ID]; ok {
			constructors[i].Points = p
		}
	}

	return constructors, nil
}

// ConstructorDrivers loads the drivers who raced for a constructor in the
// season. It only feeds the detail view; the roster is never touched.
func (a *Aggregator) ConstructorDrivers(ctx context.Context, key models.SeasonKey, constructorID string) ([]models.Driver, error) {
	year := a.year(key)

	items, err := a.source.GetConstructorDrivers(ctx, key, constructorID)
	if err != nil {
		return []models.Driver{}, a.fail(models.ViewConstructors, "Failed to fetch drivers for constructor", err)
	}

	drivers := make([]models.Driver, len(items))
	for i, item := range items {
		drivers[i] = toDriver(item, year)
	}
	return drivers, nil
}

// DriverResults lists the driver's classified result in every race of the
// season, one entry per race.
func (a *Aggregator) DriverResults(ctx context.Context, key models.SeasonKey, driverID string) ([]models.RaceResults, error) {
	year := a.year(key)

	races, err := a.source.GetDriverResults(ctx, key, driverID)
	if err != nil {
		return []models.RaceResults{}, a.fail(models.ViewDrivers, "Failed to fetch driver results", err)
	}

	results := make([]models.RaceResults, 0, len(races))
	for _, race := range races {
		rr := models.RaceResults{RaceName: race.RaceName, Round: atoi(race.Round)}
		for _, item := range race.Results {
			rr.Entries = append(rr.Entries, toResult(item, year))
		}
		results = append(results, rr)
	}
	return results, nil
}

func (a *Aggregator) DriverTrend(ctx context.Context, key models.SeasonKey, driverID string) ([]models.TrendPoint, error) {
	races, err := a.source.GetDriverResults(ctx, key, driverID)
	if err != nil {
		return []models.TrendPoint{}, a.fail(models.ViewTrend, "Failed to fetch driver results", err)
	}
	return trendPoints(races), nil
}

// ConstructorTrend uses the constructor's best placed car in each race.
func (a *Aggregator) ConstructorTrend(ctx context.Context, key models.SeasonKey, constructorID string) ([]models.TrendPoint, error) {
	races, err := a.source.GetConstructorResults(ctx, key, constructorID)
	if err != nil {
		return []models.TrendPoint{}, a.fail(models.ViewTrend, "Failed to fetch constructor results", err)
	}
	return trendPoints(races), nil
}

func trendPoints(races []models.RaceItem) []models.TrendPoint {
	points := make([]models.TrendPoint, 0, len(races))
	for _, race := range races {
		best := 0
		for _, result := range race.Results {
			pos := atoi(result.Position)
			if pos > 0 && (best == 0 || pos < best) {
				best = pos
			}
		}
		if best == 0 {
			slog.Debug("No classified result", "race", race.RaceName)
			continue
		}
		points = append(points, models.TrendPoint{
			Round:    atoi(race.Round),
			RaceName: race.RaceName,
			Position: best,
		})
	}
	return points
}
