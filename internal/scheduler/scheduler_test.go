package scheduler

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/omarshaarawi/f1bot/internal/models"
	"github.com/omarshaarawi/f1bot/internal/service"
)

type fakeDigests struct {
	owners    []int64
	err       error
	resultKey models.SeasonKey
	kind      models.StandingsKind
}

func (f *fakeDigests) Home(ctx context.Context, chatID int64) (string, error) {
	f.owners = append(f.owners, chatID)
	return "home", f.err
}

func (f *fakeDigests) Results(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	f.owners = append(f.owners, chatID)
	f.resultKey = key
	return "results", f.err
}

func (f *fakeDigests) Standings(ctx context.Context, chatID int64, key models.SeasonKey, kind models.StandingsKind) (string, error) {
	f.owners = append(f.owners, chatID)
	f.kind = kind
	return "standings", f.err
}

func TestNewSchedulerBadTimezone(t *testing.T) {
	if _, err := NewScheduler(&fakeDigests{}, "Not/AZone", nil); err == nil {
		t.Error("expected an unknown timezone to fail")
	}
}

func TestRegister(t *testing.T) {
	s, err := NewScheduler(&fakeDigests{}, "Europe/London", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if err := s.register(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, job := range s.Cron().Jobs() {
		names = append(names, job.Name())
	}
	slices.Sort(names)
	want := []string{"next-race", "results", "standings"}
	if !slices.Equal(names, want) {
		t.Errorf("expected jobs %v but found %v", want, names)
	}
}

func TestDigestsAreSent(t *testing.T) {
	digests := &fakeDigests{}
	var sent []string
	s, err := NewScheduler(digests, "UTC", func(text string) error {
		sent = append(sent, text)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	s.sendNextRace()
	s.sendResults()
	s.sendStandings()

	if !slices.Equal(sent, []string{"home", "results", "standings"}) {
		t.Errorf("unexpected messages %v", sent)
	}
	if digests.resultKey != (models.SeasonKey{}) {
		t.Errorf("expected latest results of the current season but found %+v", digests.resultKey)
	}
	if len(digests.owners) != 3 {
		t.Fatalf("expected 3 digest calls but found %d", len(digests.owners))
	}
	for _, owner := range digests.owners {
		if owner != digestOwner {
			t.Errorf("expected digests to hold their own view state but found owner %d", owner)
		}
	}
	if digests.kind != models.DriverStandings {
		t.Errorf("expected driver standings but found %s", digests.kind)
	}
}

func TestDigestFailuresAreNotSent(t *testing.T) {
	for _, err := range []error{errors.New("boom"), service.ErrStale} {
		var sent int
		s, nerr := NewScheduler(&fakeDigests{err: err}, "UTC", func(string) error {
			sent++
			return nil
		})
		if nerr != nil {
			t.Fatalf("unexpected error: %v", nerr)
		}

		s.sendStandings()
		_ = s.Stop()

		if sent != 0 {
			t.Errorf("expected nothing sent for %v but found %d messages", err, sent)
		}
	}
}
