package models

import (
	"strconv"
	"time"
)

// PointsUnavailable marks a roster entry with no matching standings row.
const PointsUnavailable = "N/A"

// SeasonKey identifies the slice of the data source a view is built from.
// Year 0 means the current season and Round 0 means the latest round.
type SeasonKey struct {
	Year  int
	Round int
}

func (k SeasonKey) YearPath() string {
	if k.Year == 0 {
		return "current"
	}
	return strconv.Itoa(k.Year)
}

func (k SeasonKey) RoundPath() string {
	if k.Round == 0 {
		return "last"
	}
	return strconv.Itoa(k.Round)
}

func (k SeasonKey) String() string {
	return k.YearPath() + "/" + k.RoundPath()
}

type Race struct {
	Name        string
	Round       int
	Date        time.Time
	HasTime     bool
	CircuitName string
	Locality    string
	Country     string
}

func (r Race) IsUpcoming(now time.Time) bool {
	return !r.Date.IsZero() && r.Date.After(now)
}

func (r Race) Location() string {
	return r.Locality + ", " + r.Country
}

type Driver struct {
	ID              string
	GivenName       string
	FamilyName      string
	Nationality     string
	DateOfBirth     string
	Code            string
	PermanentNumber string
	TeamName        string
	Points          string
	PhotoURL        string
}

func (d Driver) FullName() string {
	return d.GivenName + " " + d.FamilyName
}

type Constructor struct {
	ID          string
	Name        string
	Nationality string
	Points      string
	LogoURL     string
	CarImageURL string
	Drivers     []Driver
}

type StandingsKind string

const (
	DriverStandings      StandingsKind = "driverStandings"
	ConstructorStandings StandingsKind = "constructorStandings"
)

type StandingEntry struct {
	Rank        int
	Points      float64
	Wins        int
	Driver      *Driver
	Constructor *Constructor
}

func (e StandingEntry) Name() string {
	if e.Driver != nil {
		return e.Driver.FullName()
	}
	if e.Constructor != nil {
		return e.Constructor.Name
	}
	return "Unknown"
}

type PointsBar struct {
	Label  string
	Points float64
	Color  string
}

type StandingsView struct {
	Kind    StandingsKind
	Year    int
	Entries []StandingEntry
	Bars    []PointsBar
}

type ResultEntry struct {
	Position    int
	Laps        int
	Grid        int
	Time        *string
	Status      string
	Points      float64
	Driver      Driver
	Constructor Constructor
}

type RaceResults struct {
	RaceName string
	Round    int
	Entries  []ResultEntry
}

type LapPosition struct {
	Lap      int
	Position int
}

type LapSeries struct {
	DriverID  string
	Code      string
	Color     string
	Positions []LapPosition
}

type LapChart struct {
	Key    SeasonKey
	Laps   int
	Series []LapSeries
}

type TrendPoint struct {
	Round    int
	RaceName string
	Position int
}

type Countdown struct {
	Days    int
	Hours   int
	Minutes int
}

// View names one aggregated screen; per-chat state and error visibility are
// keyed by it.
type View string

const (
	ViewHome         View = "home"
	ViewCalendar     View = "calendar"
	ViewDrivers      View = "drivers"
	ViewConstructors View = "constructors"
	ViewStandings    View = "standings"
	ViewResults      View = "results"
	ViewLapChart     View = "lapchart"
	ViewTrend        View = "trend"
)
