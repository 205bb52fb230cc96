package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/f1bot/internal/aggregator"
	"github.com/omarshaarawi/f1bot/internal/models"
	"github.com/omarshaarawi/f1bot/internal/service"
)

type call struct {
	method string
	key    models.SeasonKey
	arg    string
}

type fakeF1 struct {
	calls  []call
	err    error
	next   *models.Race
	forgot int64
}

func (f *fakeF1) record(method string, key models.SeasonKey, arg string) (string, error) {
	f.calls = append(f.calls, call{method: method, key: key, arg: arg})
	if f.err != nil {
		return "", f.err
	}
	return method + " ok", nil
}

func (f *fakeF1) Home(ctx context.Context, chatID int64) (string, error) {
	return f.record("home", models.SeasonKey{}, "")
}

func (f *fakeF1) NextRace(ctx context.Context) (*models.Race, error) {
	if f.next == nil {
		return nil, errors.New("no upcoming races this season")
	}
	return f.next, nil
}

func (f *fakeF1) DefaultCalendarOrder() aggregator.CalendarOrder {
	return aggregator.ReverseChronological
}

func (f *fakeF1) Calendar(ctx context.Context, chatID int64, key models.SeasonKey, order aggregator.CalendarOrder) (string, error) {
	return f.record("calendar", key, string(order))
}

func (f *fakeF1) Race(ctx context.Context, chatID int64, key models.SeasonKey, query string) (string, error) {
	return f.record("race", key, query)
}

func (f *fakeF1) Drivers(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	return f.record("drivers", key, "")
}

func (f *fakeF1) Driver(ctx context.Context, chatID int64, key models.SeasonKey, name string) (string, error) {
	return f.record("driver", key, name)
}

func (f *fakeF1) Constructors(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	return f.record("constructors", key, "")
}

func (f *fakeF1) Constructor(ctx context.Context, chatID int64, key models.SeasonKey, name string) (string, error) {
	return f.record("constructor", key, name)
}

func (f *fakeF1) Standings(ctx context.Context, chatID int64, key models.SeasonKey, kind models.StandingsKind) (string, error) {
	return f.record("standings", key, string(kind))
}

func (f *fakeF1) Rounds(ctx context.Context, key models.SeasonKey) (string, error) {
	return f.record("rounds", key, "")
}

func (f *fakeF1) Results(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	return f.record("results", key, "")
}

func (f *fakeF1) LapChart(ctx context.Context, chatID int64, key models.SeasonKey) (string, error) {
	return f.record("laps", key, "")
}

func (f *fakeF1) Trend(ctx context.Context, chatID int64, key models.SeasonKey, subject service.TrendSubject, name string) (string, error) {
	return f.record("trend", key, string(subject)+":"+name)
}

func (f *fakeF1) Forget(chatID int64) {
	f.forgot = chatID
}

type fakeTimers struct {
	started []models.Race
	running bool
}

func (f *fakeTimers) Start(chatID int64, race models.Race) error {
	f.started = append(f.started, race)
	f.running = true
	return nil
}

func (f *fakeTimers) Stop(chatID int64) bool {
	was := f.running
	f.running = false
	return was
}

func commandUpdate(text string) tgbotapi.Update {
	command := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 99},
			Text: text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	}
}

func TestHandleCommandRouting(t *testing.T) {
	tests := []struct {
		text string
		want call
	}{
		{"/next", call{method: "home"}},
		{"/calendar", call{method: "calendar", arg: string(aggregator.ReverseChronological)}},
		{"/calendar 2021 asc", call{method: "calendar", key: models.SeasonKey{Year: 2021}, arg: string(aggregator.Chronological)}},
		{"/race 5", call{method: "race", arg: "5"}},
		{"/race monaco 2023", call{method: "race", key: models.SeasonKey{Year: 2023}, arg: "monaco"}},
		{"/race 2023", call{method: "race", arg: "2023"}},
		{"/drivers 2022", call{method: "drivers", key: models.SeasonKey{Year: 2022}}},
		{"/driver max verstappen 2021", call{method: "driver", key: models.SeasonKey{Year: 2021}, arg: "max verstappen"}},
		{"/constructor red bull", call{method: "constructor", arg: "red bull"}},
		{"/standings", call{method: "standings", arg: string(models.DriverStandings)}},
		{"/standings 2023 constructors", call{method: "standings", key: models.SeasonKey{Year: 2023}, arg: string(models.ConstructorStandings)}},
		{"/rounds 2020", call{method: "rounds", key: models.SeasonKey{Year: 2020}}},
		{"/results", call{method: "results"}},
		{"/results 2023 5", call{method: "results", key: models.SeasonKey{Year: 2023, Round: 5}}},
		{"/results 7", call{method: "results", key: models.SeasonKey{Round: 7}}},
		{"/laps 2023 1", call{method: "laps", key: models.SeasonKey{Year: 2023, Round: 1}}},
		{"/trend driver hamilton 2019", call{method: "trend", key: models.SeasonKey{Year: 2019}, arg: "driver:hamilton"}},
		{"/trend team ferrari", call{method: "trend", arg: "constructor:ferrari"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f1 := &fakeF1{}
			h := NewHandler(f1, &fakeTimers{})

			msg := h.HandleCommand(context.Background(), commandUpdate(tt.text))
			if len(f1.calls) != 1 {
				t.Fatalf("expected one service call but found %d", len(f1.calls))
			}
			if f1.calls[0] != tt.want {
				t.Errorf("expected %+v but found %+v", tt.want, f1.calls[0])
			}
			if msg.Text != tt.want.method+" ok" || msg.ChatID != 99 || msg.ParseMode != "Markdown" {
				t.Errorf("unexpected reply %+v", msg)
			}
		})
	}
}

func TestHandleCommandUsage(t *testing.T) {
	for _, text := range []string{"/race", "/driver", "/constructor 2023", "/standings 2023 teamz", "/calendar sideways", "/trend driver", "/trend car ferrari"} {
		t.Run(text, func(t *testing.T) {
			f1 := &fakeF1{}
			msg := NewHandler(f1, &fakeTimers{}).HandleCommand(context.Background(), commandUpdate(text))
			if len(f1.calls) != 0 {
				t.Errorf("expected no service call but found %+v", f1.calls)
			}
			if !strings.Contains(msg.Text, "Usage") {
				t.Errorf("expected usage text but found %q", msg.Text)
			}
		})
	}
}

func TestHandleCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"UserError", &aggregator.UserError{View: models.ViewStandings, Message: "Failed to fetch standings. Please try again."}, "Failed to fetch standings. Please try again."},
		{"Stale", service.ErrStale, ""},
		{"Other", errors.New("driver not found: bob"), "Error fetching standings: driver not found: bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeF1{err: tt.err}, &fakeTimers{})
			msg := h.HandleCommand(context.Background(), commandUpdate("/standings"))
			if msg.Text != tt.want {
				t.Errorf("expected %q but found %q", tt.want, msg.Text)
			}
		})
	}
}

func TestHandleCountdown(t *testing.T) {
	race := &models.Race{Name: "Monaco Grand Prix", Date: time.Date(2024, time.May, 26, 13, 0, 0, 0, time.UTC)}
	timers := &fakeTimers{}
	h := NewHandler(&fakeF1{next: race}, timers)

	msg := h.HandleCommand(context.Background(), commandUpdate("/countdown"))
	if msg.Text != "" {
		t.Errorf("expected the countdown to post its own message but found %q", msg.Text)
	}
	if len(timers.started) != 1 || timers.started[0].Name != race.Name {
		t.Errorf("expected countdown to %s but found %+v", race.Name, timers.started)
	}

	msg = h.HandleCommand(context.Background(), commandUpdate("/stopcountdown"))
	if msg.Text != "Countdown stopped." {
		t.Errorf("unexpected reply %q", msg.Text)
	}
	msg = h.HandleCommand(context.Background(), commandUpdate("/stopcountdown"))
	if msg.Text != "No countdown running." {
		t.Errorf("unexpected reply %q", msg.Text)
	}
}

func TestHandleCountdownNoRace(t *testing.T) {
	timers := &fakeTimers{}
	msg := NewHandler(&fakeF1{}, timers).HandleCommand(context.Background(), commandUpdate("/countdown"))
	if !strings.HasPrefix(msg.Text, "Error fetching next race") {
		t.Errorf("unexpected reply %q", msg.Text)
	}
	if len(timers.started) != 0 {
		t.Error("no countdown should start without a race")
	}
}

func TestHandleReset(t *testing.T) {
	f1 := &fakeF1{}
	msg := NewHandler(f1, &fakeTimers{}).HandleCommand(context.Background(), commandUpdate("/reset"))
	if f1.forgot != 99 || msg.Text != "Cleared." {
		t.Errorf("expected chat 99 to be forgotten, found %d %q", f1.forgot, msg.Text)
	}
}

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 42}, nil
}

func TestCountdownsEditMessage(t *testing.T) {
	s, err := gocron.NewScheduler()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })

	now := time.Date(2024, time.May, 24, 13, 0, 0, 0, time.UTC)
	sender := &fakeSender{}
	countdowns := NewCountdowns(s, clockwork.NewFakeClockAt(now), time.Minute, sender)

	race := models.Race{Name: "Monaco Grand Prix", Date: now.Add(48*time.Hour + 5*time.Minute), HasTime: true}
	if err := countdowns.Start(7, race); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected a post and an edit but found %d messages", len(sender.sent))
	}
	edit, ok := sender.sent[1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("expected an edit but found %T", sender.sent[1])
	}
	if edit.MessageID != 42 || edit.ChatID != 7 {
		t.Errorf("expected edit of message 42 in chat 7, found %d in %d", edit.MessageID, edit.ChatID)
	}
	if !strings.Contains(edit.Text, "2d 0h 5m") {
		t.Errorf("unexpected countdown text %q", edit.Text)
	}

	if !countdowns.Stop(7) {
		t.Error("expected a running countdown to stop")
	}
	if countdowns.Stop(7) {
		t.Error("expected nothing left to stop")
	}
	if len(s.Jobs()) != 0 {
		t.Errorf("expected no countdown jobs but found %d", len(s.Jobs()))
	}
}

func TestCountdownsStopDuringStartLeavesNoJob(t *testing.T) {
	s, err := gocron.NewScheduler()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })

	now := time.Date(2024, time.May, 24, 13, 0, 0, 0, time.UTC)
	countdowns := NewCountdowns(s, clockwork.NewFakeClockAt(now), time.Minute, &fakeSender{})
	race := models.Race{Name: "Monaco Grand Prix", Date: now.Add(48 * time.Hour)}

	for i := 0; i < 50; i++ {
		done := make(chan struct{})
		go func() {
			defer close(done)
			countdowns.Stop(7)
		}()
		if err := countdowns.Start(7, race); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		<-done
		countdowns.Stop(7)

		if n := len(s.Jobs()); n != 0 {
			t.Fatalf("iteration %d: expected no countdown jobs after stop but found %d", i, n)
		}
	}
}
