package models

type MRDataResponse struct {
	MRData MRData `json:"MRData"`
}

type MRData struct {
	Series           string           `json:"series"`
	Limit            string           `json:"limit"`
	Offset           string           `json:"offset"`
	Total            string           `json:"total"`
	RaceTable        RaceTable        `json:"RaceTable"`
	DriverTable      DriverTable      `json:"DriverTable"`
	ConstructorTable ConstructorTable `json:"ConstructorTable"`
	StandingsTable   StandingsTable   `json:"StandingsTable"`
}

type RaceTable struct {
	Season string     `json:"season"`
	Round  string     `json:"round"`
	Races  []RaceItem `json:"Races"`
}

type RaceItem struct {
	Season   string       `json:"season"`
	Round    string       `json:"round"`
	RaceName string       `json:"raceName"`
	Circuit  Circuit      `json:"Circuit"`
	Date     string       `json:"date"`
	Time     string       `json:"time"`
	Results  []ResultItem `json:"Results"`
	Laps     []LapItem    `json:"Laps"`
}

type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type DriverTable struct {
	Season  string       `json:"season"`
	Drivers []DriverItem `json:"Drivers"`
}

type DriverItem struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

type ConstructorTable struct {
	Season       string            `json:"season"`
	Constructors []ConstructorItem `json:"Constructors"`
}

type ConstructorItem struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

type StandingsTable struct {
	Season         string          `json:"season"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

type StandingsList struct {
	Season               string                    `json:"season"`
	Round                string                    `json:"round"`
	DriverStandings      []DriverStandingItem      `json:"DriverStandings"`
	ConstructorStandings []ConstructorStandingItem `json:"ConstructorStandings"`
}

type DriverStandingItem struct {
	Position     string            `json:"position"`
	Points       string            `json:"points"`
	Wins         string            `json:"wins"`
	Driver       DriverItem        `json:"Driver"`
	Constructors []ConstructorItem `json:"Constructors"`
}

type ConstructorStandingItem struct {
	Position    string          `json:"position"`
	Points      string          `json:"points"`
	Wins        string          `json:"wins"`
	Constructor ConstructorItem `json:"Constructor"`
}

type ResultItem struct {
	Number      string          `json:"number"`
	Position    string          `json:"position"`
	Points      string          `json:"points"`
	Driver      DriverItem      `json:"Driver"`
	Constructor ConstructorItem `json:"Constructor"`
	Grid        string          `json:"grid"`
	Laps        string          `json:"laps"`
	Status      string          `json:"status"`
	Time        *ResultTime     `json:"Time"`
}

type ResultTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

type LapItem struct {
	Number  string       `json:"number"`
	Timings []TimingItem `json:"Timings"`
}

type TimingItem struct {
	DriverID string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}
