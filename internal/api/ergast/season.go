package ergast

import (
	"context"
	"fmt"

	"github.com/omarshaarawi/f1bot/internal/models"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) GetRaces(ctx context.Context, key models.SeasonKey) ([]models.RaceItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s.json", key.YearPath())

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching races: %w", err)
	}

	return resp.MRData.RaceTable.Races, nil
}

// GetNextRace returns nil without error when the season has no races left.
func (a *API) GetNextRace(ctx context.Context) (*models.RaceItem, error) {
	var resp models.MRDataResponse

	if err := a.client.Get(ctx, "/current/next.json", &resp); err != nil {
		return nil, fmt.Errorf("fetching next race: %w", err)
	}

	races := resp.MRData.RaceTable.Races
	if len(races) == 0 {
		return nil, nil
	}
	return &races[0], nil
}

func (a *API) GetDrivers(ctx context.Context, key models.SeasonKey) ([]models.DriverItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/drivers.json", key.YearPath())

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching drivers: %w", err)
	}

	return resp.MRData.DriverTable.Drivers, nil
}

func (a *API) GetConstructors(ctx context.Context, key models.SeasonKey) ([]models.ConstructorItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/constructors.json", key.YearPath())

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching constructors: %w", err)
	}

	return resp.MRData.ConstructorTable.Constructors, nil
}

func (a *API) GetConstructorDrivers(ctx context.Context, key models.SeasonKey, constructorID string) ([]models.DriverItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/constructors/%s/drivers.json", key.YearPath(), constructorID)

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching drivers for constructor %s: %w", constructorID, err)
	}

	return resp.MRData.DriverTable.Drivers, nil
}

// GetStandings returns the first standings list for the season, or nil when
// the API has none for the requested kind.
func (a *API) GetStandings(ctx context.Context, key models.SeasonKey, kind models.StandingsKind) (*models.StandingsList, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/%s.json", key.YearPath(), kind)

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", kind, err)
	}

	lists := resp.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 {
		return nil, nil
	}
	return &lists[0], nil
}

// GetRaceResults returns the race for key.Round with its results attached.
func (a *API) GetRaceResults(ctx context.Context, key models.SeasonKey) (*models.RaceItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/%s/results.json", key.YearPath(), key.RoundPath())

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}

	races := resp.MRData.RaceTable.Races
	if len(races) == 0 {
		return nil, nil
	}
	return &races[0], nil
}

func (a *API) GetDriverResults(ctx context.Context, key models.SeasonKey, driverID string) ([]models.RaceItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/drivers/%s/results.json", key.YearPath(), driverID)

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching results for driver %s: %w", driverID, err)
	}

	return resp.MRData.RaceTable.Races, nil
}

func (a *API) GetConstructorResults(ctx context.Context, key models.SeasonKey, constructorID string) ([]models.RaceItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/constructors/%s/results.json", key.YearPath(), constructorID)

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching results for constructor %s: %w", constructorID, err)
	}

	return resp.MRData.RaceTable.Races, nil
}

// GetLapTimings returns the timing snapshot for one lap. An empty slice means
// the race did not run that many laps.
func (a *API) GetLapTimings(ctx context.Context, key models.SeasonKey, lap int) ([]models.TimingItem, error) {
	var resp models.MRDataResponse
	endpoint := fmt.Sprintf("/%s/%s/laps/%d.json", key.YearPath(), key.RoundPath(), lap)

	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching lap %d: %w", lap, err)
	}

	races := resp.MRData.RaceTable.Races
	if len(races) == 0 || len(races[0].Laps) == 0 {
		return nil, nil
	}
	return races[0].Laps[0].Timings, nil
}
