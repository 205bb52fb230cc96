package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/omarshaarawi/f1bot/internal/media"
	"github.com/omarshaarawi/f1bot/internal/models"
)

const (
	barWidth = 20
	// lap chart rows are sampled so the table fits one message
	maxChartRows = 12
	maxChartCols = 10
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// block wraps a rendered table in a Markdown code block.
func block(t table.Writer) string {
	return "```\n" + t.Render() + "\n```\n"
}

func seasonLabel(key models.SeasonKey) string {
	if key.Year == 0 {
		return "Current season"
	}
	return fmt.Sprintf("%d season", key.Year)
}

func formatRaceDate(race models.Race) string {
	if race.Date.IsZero() {
		return "Date TBC"
	}
	if race.HasTime {
		return race.Date.UTC().Format("Mon 2 Jan 2006, 15:04 MST")
	}
	return race.Date.Format("Mon 2 Jan 2006")
}

func formatCountdown(cd models.Countdown) string {
	return fmt.Sprintf("⏱ %dd %dh %dm", cd.Days, cd.Hours, cd.Minutes)
}

// FormatCountdown is the text a countdown message is edited to on each tick.
func FormatCountdown(race models.Race, cd models.Countdown, expired bool) string {
	if expired {
		return fmt.Sprintf("🚦 *%s* is underway!", race.Name)
	}
	return fmt.Sprintf("*%s*\n%s\n%s", race.Name, formatRaceDate(race), formatCountdown(cd))
}

func podium(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return "▫️"
}

func renderCalendar(key models.SeasonKey, races []models.Race, now time.Time) string {
	if len(races) == 0 {
		return fmt.Sprintf("🗓 No races found for the %s.", strings.ToLower(seasonLabel(key)))
	}

	t := newTable()
	t.AppendHeader(table.Row{"Rd", "Grand Prix", "Location", "Date", ""})
	for _, race := range races {
		status := "✓"
		if race.IsUpcoming(now) {
			status = ""
		}
		t.AppendRow(table.Row{race.Round, race.Name, race.Location(), race.Date.Format("02 Jan"), status})
	}

	return fmt.Sprintf("🗓 *%s Calendar*\n\n", seasonLabel(key)) + block(t)
}

func renderRace(race models.Race, now time.Time) string {
	status := "Completed"
	if race.IsUpcoming(now) {
		status = "Upcoming"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 *%s* (round %d)\n━━━━━━━━━━━━━━━━\n", race.Name, race.Round))
	sb.WriteString(fmt.Sprintf("Circuit: %s\n", race.CircuitName))
	sb.WriteString(fmt.Sprintf("Location: %s\n", race.Location()))
	sb.WriteString(fmt.Sprintf("Date: %s\n", formatRaceDate(race)))
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))
	// some circuit maps are only published under the country name
	sb.WriteString(fmt.Sprintf("\n[Circuit map](%s) · [Alternative map](%s)\n",
		media.TrackImageURL(race.Locality, race.Country, false),
		media.TrackImageURL(race.Locality, race.Country, true)))
	return sb.String()
}

func renderDrivers(key models.SeasonKey, drivers []models.Driver) string {
	if len(drivers) == 0 {
		return "No drivers found."
	}

	t := newTable()
	t.AppendHeader(table.Row{"#", "Code", "Driver", "Team", "Pts"})
	for _, d := range drivers {
		t.AppendRow(table.Row{d.PermanentNumber, d.Code, d.FullName(), d.TeamName, d.Points})
	}

	return fmt.Sprintf("🏎 *%s Drivers*\n\n", seasonLabel(key)) + block(t)
}

func renderDriver(driver models.Driver, results []models.RaceResults) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*", driver.FullName()))
	if driver.PermanentNumber != "" {
		sb.WriteString(fmt.Sprintf(" #%s", driver.PermanentNumber))
	}
	sb.WriteString("\n━━━━━━━━━━━━━━━━\n")
	if driver.TeamName != "" {
		sb.WriteString(fmt.Sprintf("Team: %s\n", driver.TeamName))
	}
	sb.WriteString(fmt.Sprintf("Nationality: %s\n", driver.Nationality))
	if driver.DateOfBirth != "" {
		sb.WriteString(fmt.Sprintf("Born: %s\n", driver.DateOfBirth))
	}
	sb.WriteString(fmt.Sprintf("Points: %s\n", driver.Points))
	sb.WriteString(fmt.Sprintf("[Photo](%s)\n", driver.PhotoURL))

	if len(results) == 0 {
		return sb.String()
	}

	t := newTable()
	t.AppendHeader(table.Row{"Rd", "Race", "Grid", "Pos", "Pts"})
	for _, race := range results {
		for _, entry := range race.Entries {
			t.AppendRow(table.Row{race.Round, race.RaceName, entry.Grid, entry.Position, entry.Points})
		}
	}
	sb.WriteString("\n")
	sb.WriteString(block(t))
	return sb.String()
}

func renderConstructors(key models.SeasonKey, constructors []models.Constructor) string {
	if len(constructors) == 0 {
		return "No constructors found."
	}

	t := newTable()
	t.AppendHeader(table.Row{"Constructor", "Nationality", "Pts"})
	for _, c := range constructors {
		t.AppendRow(table.Row{c.Name, c.Nationality, c.Points})
	}

	return fmt.Sprintf("🛠 *%s Constructors*\n\n", seasonLabel(key)) + block(t)
}

func renderConstructor(c models.Constructor) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n━━━━━━━━━━━━━━━━\n", c.Name))
	sb.WriteString(fmt.Sprintf("Nationality: %s\n", c.Nationality))
	sb.WriteString(fmt.Sprintf("Points: %s\n", c.Points))
	if len(c.Drivers) > 0 {
		sb.WriteString("\nDrivers:\n")
		for _, d := range c.Drivers {
			sb.WriteString(fmt.Sprintf("• %s", d.FullName()))
			if d.Code != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", d.Code))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\n[Logo](%s) · [Car](%s)\n", c.LogoURL, c.CarImageURL))
	return sb.String()
}

// bar draws points relative to the leader.
func bar(points, top float64) string {
	if top <= 0 {
		return ""
	}
	n := int(math.Round(points / top * barWidth))
	return strings.Repeat("█", n)
}

func renderStandings(view models.StandingsView) string {
	title := "Drivers' Championship"
	if view.Kind == models.ConstructorStandings {
		title = "Constructors' Championship"
	}

	t := newTable()
	t.AppendHeader(table.Row{"Pos", "Name", "Wins", "Pts"})
	for _, entry := range view.Entries {
		t.AppendRow(table.Row{entry.Rank, entry.Name(), entry.Wins, entry.Points})
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%d %s*\n\n", view.Year, title))
	sb.WriteString(block(t))

	if len(view.Bars) > 0 {
		top := view.Bars[0].Points
		sb.WriteString("```\n")
		for _, b := range view.Bars {
			sb.WriteString(fmt.Sprintf("%-14.14s %s %g\n", b.Label, bar(b.Points, top), b.Points))
		}
		sb.WriteString("```\n")
	}

	return sb.String()
}

func renderRounds(key models.SeasonKey, races []models.Race, latest models.Race) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 *%s completed rounds*\n\n", seasonLabel(key)))
	for _, race := range races {
		marker := "  "
		if race.Round == latest.Round {
			marker = "▶ "
		}
		sb.WriteString(fmt.Sprintf("%s%d. %s\n", marker, race.Round, race.Name))
	}
	return sb.String()
}

func renderResults(key models.SeasonKey, results models.RaceResults) string {
	header := fmt.Sprintf("🏁 *%s* (%s, round %d)\n\n", results.RaceName, key.YearPath(), key.Round)
	if len(results.Entries) == 0 {
		return header + "No results available yet."
	}

	t := newTable()
	t.AppendHeader(table.Row{"Pos", "Driver", "Team", "Laps", "Time/Status", "Pts"})
	for _, entry := range results.Entries {
		status := entry.Status
		if entry.Time != nil {
			status = *entry.Time
		}
		t.AppendRow(table.Row{entry.Position, entry.Driver.Code, entry.Constructor.Name, entry.Laps, status, entry.Points})
	}

	return header + block(t)
}

// sampleLaps picks at most n evenly spaced laps, always including the last.
func sampleLaps(total, n int) []int {
	if total <= 0 {
		return nil
	}
	if total <= n {
		laps := make([]int, total)
		for i := range laps {
			laps[i] = i + 1
		}
		return laps
	}

	step := float64(total-1) / float64(n-1)
	laps := make([]int, n)
	for i := range laps {
		laps[i] = 1 + int(math.Round(float64(i)*step))
	}
	return laps
}

func renderLapChart(results models.RaceResults, chart models.LapChart) string {
	header := fmt.Sprintf("📈 *%s lap positions*\n\n", results.RaceName)
	if len(chart.Series) == 0 {
		return header + "No lap data available."
	}

	series := chart.Series[:min(maxChartCols, len(chart.Series))]

	t := newTable()
	row := table.Row{"Lap"}
	for _, s := range series {
		row = append(row, s.Code)
	}
	t.AppendHeader(row)

	for _, lap := range sampleLaps(chart.Laps, maxChartRows) {
		row := table.Row{lap}
		for _, s := range series {
			row = append(row, positionAt(s, lap))
		}
		t.AppendRow(row)
	}

	footer := ""
	if len(chart.Series) > len(series) {
		footer = fmt.Sprintf("_Top %d finishers of %d shown._\n", len(series), len(chart.Series))
	}
	return header + block(t) + footer
}

func positionAt(s models.LapSeries, lap int) string {
	for _, p := range s.Positions {
		if p.Lap == lap {
			return fmt.Sprintf("%d", p.Position)
		}
	}
	return "-"
}

func renderTrend(label string, key models.SeasonKey, points []models.TrendPoint) string {
	header := fmt.Sprintf("📊 *%s* %s finishing positions\n\n", label, strings.ToLower(seasonLabel(key)))
	if len(points) == 0 {
		return header + "No classified finishes yet."
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("```\n")
	for _, p := range points {
		// fewer blocks for a worse finish
		sb.WriteString(fmt.Sprintf("R%-2d P%-2d %s\n", p.Round, p.Position, strings.Repeat("▇", max(1, 21-p.Position))))
	}
	sb.WriteString("```\n")
	return sb.String()
}
