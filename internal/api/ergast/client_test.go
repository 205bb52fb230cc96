package ergast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/omarshaarawi/f1bot/internal/config"
	"github.com/omarshaarawi/f1bot/internal/models"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPI(NewClient(config.ErgastAPI{BaseURL: srv.URL + "/", Limit: 100}))
}

func TestClientGet(t *testing.T) {
	t.Run("Decodes", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/2023.json" {
				t.Errorf("unexpected path '%s'", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "100" {
				t.Errorf("expected limit %s but found '%s'", "100", r.URL.Query().Get("limit"))
			}
			w.Write([]byte(`{"MRData":{"RaceTable":{"Races":[{"round":"1","raceName":"Bahrain Grand Prix","date":"2023-03-05"}]}}}`))
		})

		races, err := api.GetRaces(context.Background(), models.SeasonKey{Year: 2023})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(races) != 1 || races[0].RaceName != "Bahrain Grand Prix" {
			t.Errorf("unexpected races %+v", races)
		}
	})

	t.Run("Status", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := api.GetDrivers(context.Background(), models.SeasonKey{Year: 2023})
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected FetchError but found %v", err)
		}
		if fetchErr.Kind != KindStatus || fetchErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("unexpected fetch error %+v", fetchErr)
		}
		if fetchErr.URL == "" {
			t.Error("expected failed url to be recorded")
		}
	})

	t.Run("Decode", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"MRData":`))
		})

		_, err := api.GetConstructors(context.Background(), models.SeasonKey{Year: 2023})
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || fetchErr.Kind != KindDecode {
			t.Fatalf("expected decode error but found %v", err)
		}
	})

	t.Run("Transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		api := NewAPI(NewClient(config.ErgastAPI{BaseURL: srv.URL}))

		_, err := api.GetRaces(context.Background(), models.SeasonKey{})
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || fetchErr.Kind != KindTransport {
			t.Fatalf("expected transport error but found %v", err)
		}
	})
}

func TestGetLapTimings(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2023/5/laps/1.json":
			w.Write([]byte(`{"MRData":{"RaceTable":{"Races":[{"Laps":[{"number":"1","Timings":[{"driverId":"max_verstappen","position":"1"},{"driverId":"leclerc","position":"2"}]}]}]}}}`))
		default:
			w.Write([]byte(`{"MRData":{"RaceTable":{"Races":[]}}}`))
		}
	})

	key := models.SeasonKey{Year: 2023, Round: 5}
	timings, err := api.GetLapTimings(context.Background(), key, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(timings) != 2 || timings[1].DriverID != "leclerc" {
		t.Errorf("unexpected timings %+v", timings)
	}

	timings, err = api.GetLapTimings(context.Background(), key, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(timings) != 0 {
		t.Errorf("expected no timings past race distance but found %d", len(timings))
	}
}

func TestGetStandingsEmpty(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1900/constructorStandings.json" {
			t.Errorf("unexpected path '%s'", r.URL.Path)
		}
		w.Write([]byte(`{"MRData":{"StandingsTable":{"StandingsLists":[]}}}`))
	})

	list, err := api.GetStandings(context.Background(), models.SeasonKey{Year: 1900}, models.ConstructorStandings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list != nil {
		t.Errorf("expected nil list but found %+v", list)
	}
}
