package aggregator

import (
	"context"

	"github.com/omarshaarawi/f1bot/internal/media"
	"github.com/omarshaarawi/f1bot/internal/models"
)

const (
	msgNoStandings     = "No standings data available for the selected year and type."
	msgStandingsFailed = "Failed to fetch standings. Please try again."
)

// Standings fetches one standings list. Unlike the roster views it reports an
// empty list as an error so the user sees why nothing is shown.
func (a *Aggregator) Standings(ctx context.Context, key models.SeasonKey, kind models.StandingsKind) (models.StandingsView, error) {
	view := models.StandingsView{Kind: kind, Year: a.year(key), Entries: []models.StandingEntry{}}

	list, err := a.source.GetStandings(ctx, key, kind)
	if err != nil {
		return view, a.fail(models.ViewStandings, msgStandingsFailed, err)
	}

	if list == nil || (kind == models.DriverStandings && len(list.DriverStandings) == 0) ||
		(kind == models.ConstructorStandings && len(list.ConstructorStandings) == 0) {
		return view, a.fail(models.ViewStandings, msgNoStandings, ErrNoStandings)
	}

	switch kind {
	case models.DriverStandings:
		for i, item := range list.DriverStandings {
			driver := toDriver(item.Driver, view.Year)
			driver.Points = item.Points
			color := media.TeamColor("")
			if n := len(item.Constructors); n > 0 {
				team := item.Constructors[n-1]
				driver.TeamName = team.Name
				color = media.TeamColor(team.ConstructorID)
			}
			entry := models.StandingEntry{
				Rank:   i + 1,
				Points: atof(item.Points),
				Wins:   atoi(item.Wins),
				Driver: &driver,
			}
			view.Entries = append(view.Entries, entry)
			// early seasons have no three letter codes
			label := driver.Code
			if label == "" {
				label = driver.FamilyName
			}
			view.Bars = append(view.Bars, models.PointsBar{Label: label, Points: entry.Points, Color: color})
		}
	case models.ConstructorStandings:
		for i, item := range list.ConstructorStandings {
			constructor := toConstructor(item.Constructor, view.Year)
			constructor.Points = item.Points
			entry := models.StandingEntry{
				Rank:        i + 1,
				Points:      atof(item.Points),
				Wins:        atoi(item.Wins),
				Constructor: &constructor,
			}
			view.Entries = append(view.Entries, entry)
			view.Bars = append(view.Bars, models.PointsBar{
				Label:  constructor.Name,
				Points: entry.Points,
				Color:  media.TeamColor(constructor.ID),
			})
		}
	}

	return view, nil
}
