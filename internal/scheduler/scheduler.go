package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/f1bot/internal/models"
	"github.com/omarshaarawi/f1bot/internal/service"
)

// Digests is the part of the F1 service the weekly posts are built from.
type Digests interface {
	Home(ctx context.Context, chatID int64) (string, error)
	Results(ctx context.Context, chatID int64, key models.SeasonKey) (string, error)
	Standings(ctx context.Context, chatID int64, key models.SeasonKey, kind models.StandingsKind) (string, error)
}

// digestOwner keys the digests' view state apart from every real chat, so a
// digest and a user command never supersede each other. Telegram group ids
// are negative, hence the minimum rather than -1.
const digestOwner int64 = math.MinInt64

type Scheduler struct {
	s           gocron.Scheduler
	digests     Digests
	sendMessage func(string) error
}

func NewScheduler(digests Digests, timezone string, sendMessage func(string) error) (*Scheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", timezone, err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		digests:     digests,
		sendMessage: sendMessage,
	}, nil
}

// Cron exposes the underlying scheduler so countdown timers share it.
func (s *Scheduler) Cron() gocron.Scheduler {
	return s.s
}

func (s *Scheduler) register() error {
	var err error

	// Next race preview - Thursday 18:00
	_, err = s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Thursday), gocron.NewAtTimes(gocron.NewAtTime(18, 0, 0))),
		gocron.NewTask(s.sendNextRace),
		gocron.WithName("next-race"),
	)
	if err != nil {
		return fmt.Errorf("failed to create next race job: %w", err)
	}

	// Race results - Monday 8:00
	_, err = s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday), gocron.NewAtTimes(gocron.NewAtTime(8, 0, 0))),
		gocron.NewTask(s.sendResults),
		gocron.WithName("results"),
	)
	if err != nil {
		return fmt.Errorf("failed to create results job: %w", err)
	}

	// Championship standings - Tuesday 8:00
	_, err = s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Tuesday), gocron.NewAtTimes(gocron.NewAtTime(8, 0, 0))),
		gocron.NewTask(s.sendStandings),
		gocron.WithName("standings"),
	)
	if err != nil {
		return fmt.Errorf("failed to create standings job: %w", err)
	}

	return nil
}

func (s *Scheduler) Start() error {
	if err := s.register(); err != nil {
		return err
	}
	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) post(name string, text string, err error) {
	if errors.Is(err, service.ErrStale) {
		return
	}
	if err != nil {
		slog.Error("Failed to build digest", "digest", name, "error", err)
		return
	}
	if err := s.sendMessage(text); err != nil {
		slog.Error("Failed to send digest", "digest", name, "error", err)
	}
}

func (s *Scheduler) sendNextRace() {
	text, err := s.digests.Home(context.Background(), digestOwner)
	s.post("next-race", text, err)
}

func (s *Scheduler) sendResults() {
	text, err := s.digests.Results(context.Background(), digestOwner, models.SeasonKey{})
	s.post("results", text, err)
}

func (s *Scheduler) sendStandings() {
	text, err := s.digests.Standings(context.Background(), digestOwner, models.SeasonKey{}, models.DriverStandings)
	s.post("standings", text, err)
}
