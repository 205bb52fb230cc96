package aggregator

import (
	"context"
	"log/slog"

	"github.com/omarshaarawi/f1bot/internal/media"
	"github.com/omarshaarawi/f1bot/internal/models"
)

const msgLapChartFailed = "Failed to fetch lap positions. Please try again."

// TotalLaps is the number of laps LapChart will request for results.
func (a *Aggregator) TotalLaps(results models.RaceResults) int {
	total := a.opts.LapChartTotalLaps
	if !a.opts.DeriveLapCount {
		return total
	}
	derived := 0
	for _, entry := range results.Entries {
		derived = max(derived, entry.Laps)
	}
	if derived == 0 {
		return total
	}
	return derived
}

// LapChart builds every driver's position per lap. Laps are requested one at
// a time, each after the previous has returned. Any failed lap discards the
// whole chart. Only drivers in results are charted, coloured by their team.
func (a *Aggregator) LapChart(ctx context.Context, key models.SeasonKey, results models.RaceResults) (models.LapChart, error) {
	total := a.TotalLaps(results)

	index := make(map[string]int, len(results.Entries))
	for i, entry := range results.Entries {
		index[entry.Driver.ID] = i
	}
	positions := make([][]models.LapPosition, len(results.Entries))

	laps := 0
	for lap := 1; lap <= total; lap++ {
		if err := ctx.Err(); err != nil {
			return models.LapChart{}, err
		}

		timings, err := a.source.GetLapTimings(ctx, key, lap)
		if err != nil {
			return models.LapChart{}, a.fail(models.ViewLapChart, msgLapChartFailed, err)
		}
		if len(timings) == 0 {
			slog.Debug("No timings for lap, stopping", "key", key.String(), "lap", lap)
			break
		}

		for _, timing := range timings {
			i, ok := index[timing.DriverID]
			if !ok {
				continue
			}
			positions[i] = append(positions[i], models.LapPosition{Lap: lap, Position: atoi(timing.Position)})
		}
		laps = lap
	}

	chart := models.LapChart{Key: key, Laps: laps}
	for i, entry := range results.Entries {
		if len(positions[i]) == 0 {
			continue
		}
		chart.Series = append(chart.Series, models.LapSeries{
			DriverID:  entry.Driver.ID,
			Code:      entry.Driver.Code,
			Color:     media.TeamColor(entry.Constructor.ID),
			Positions: positions[i],
		})
	}

	return chart, nil
}
