package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/f1bot/internal/aggregator"
	"github.com/omarshaarawi/f1bot/internal/models"
	"github.com/omarshaarawi/f1bot/internal/service"
)

const helpText = `Available commands:
/next - Next race and last podium
/countdown - Live countdown to the next race
/stopcountdown - Stop the countdown
/calendar [year] [asc|desc] - Race calendar
/race <round|name> [year] - Race details and circuit map
/drivers [year] - Driver roster with points
/driver <name> [year] - Driver profile and results
/constructors [year] - Constructors with points
/constructor <name> [year] - Constructor profile and drivers
/standings [year] [drivers|constructors] - Championship standings
/rounds [year] - Completed rounds
/results [year] [round] - Race classification
/laps [year] [round] - Lap by lap positions
/trend <driver|constructor> <name> [year] - Finishing positions over the season
/reset - Forget this chat's views`

// firstSeason guards year parsing so a round number is never read as a year.
const firstSeason = 1950

type F1 interface {
	Home(ctx context.Context, chatID int64) (string, error)
	NextRace(ctx context.Context) (*models.Race, error)
	DefaultCalendarOrder() aggregator.CalendarOrder
	Calendar(ctx context.Context, chatID int64, key models.SeasonKey, order aggregator.CalendarOrder) (string, error)
	Race(ctx context.Context, chatID int64, key models.SeasonKey, query string) (string, error)
	Drivers(ctx context.Context, chatID int64, key models.SeasonKey) (string, error)
	Driver(ctx context.Context, chatID int64, key models.SeasonKey, name string) (string, error)
	Constructors(ctx context.Context, chatID int64, key models.SeasonKey) (string, error)
	Constructor(ctx context.Context, chatID int64, key models.SeasonKey, name string) (string, error)
	Standings(ctx context.Context, chatID int64, key models.SeasonKey, kind models.StandingsKind) (string, error)
	Rounds(ctx context.Context, key models.SeasonKey) (string, error)
	Results(ctx context.Context, chatID int64, key models.SeasonKey) (string, error)
	LapChart(ctx context.Context, chatID int64, key models.SeasonKey) (string, error)
	Trend(ctx context.Context, chatID int64, key models.SeasonKey, subject service.TrendSubject, name string) (string, error)
	Forget(chatID int64)
}

type Timers interface {
	Start(chatID int64, race models.Race) error
	Stop(chatID int64) bool
}

type Handler struct {
	f1     F1
	timers Timers
}

func NewHandler(f1 F1, timers Timers) *Handler {
	return &Handler{f1: f1, timers: timers}
}

// HandleCommand answers one command. An empty Text means nothing should be
// sent, either because the reply was superseded or was already posted.
func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	chatID := update.Message.Chat.ID
	msg := tgbotapi.NewMessage(chatID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.Fields(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to F1natics, the pitstop for all F1 fans! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "next":
		h.reply(&msg, "next race", func() (string, error) { return h.f1.Home(ctx, chatID) })
	case "countdown":
		h.handleCountdown(ctx, &msg)
	case "stopcountdown":
		if h.timers.Stop(chatID) {
			msg.Text = "Countdown stopped."
		} else {
			msg.Text = "No countdown running."
		}
	case "calendar":
		h.handleCalendar(ctx, &msg, args)
	case "race":
		h.handleRace(ctx, &msg, args)
	case "drivers":
		key, _ := parseSeason(args)
		h.reply(&msg, "drivers", func() (string, error) { return h.f1.Drivers(ctx, chatID, key) })
	case "driver":
		h.handleDriver(ctx, &msg, args)
	case "constructors":
		key, _ := parseSeason(args)
		h.reply(&msg, "constructors", func() (string, error) { return h.f1.Constructors(ctx, chatID, key) })
	case "constructor":
		h.handleConstructor(ctx, &msg, args)
	case "standings":
		h.handleStandings(ctx, &msg, args)
	case "rounds":
		key, _ := parseSeason(args)
		h.reply(&msg, "rounds", func() (string, error) { return h.f1.Rounds(ctx, key) })
	case "results":
		key := parseRound(args)
		h.reply(&msg, "results", func() (string, error) { return h.f1.Results(ctx, chatID, key) })
	case "laps":
		key := parseRound(args)
		h.reply(&msg, "lap positions", func() (string, error) { return h.f1.LapChart(ctx, chatID, key) })
	case "trend":
		h.handleTrend(ctx, &msg, args)
	case "reset":
		h.timers.Stop(chatID)
		h.f1.Forget(chatID)
		msg.Text = "Cleared."
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

// reply fills msg from fetch. User-facing failures show their own message and
// superseded requests leave msg empty.
func (h *Handler) reply(msg *tgbotapi.MessageConfig, what string, fetch func() (string, error)) {
	text, err := fetch()
	var userErr *aggregator.UserError
	switch {
	case errors.Is(err, service.ErrStale):
		slog.Debug("Dropping superseded reply", "chat", msg.ChatID, "view", what)
		msg.Text = ""
	case errors.As(err, &userErr):
		msg.Text = userErr.Message
	case err != nil:
		msg.Text = fmt.Sprintf("Error fetching %s: %v", what, err)
	default:
		msg.Text = text
	}
}

func (h *Handler) handleCountdown(ctx context.Context, msg *tgbotapi.MessageConfig) {
	race, err := h.f1.NextRace(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching next race: %v", err)
		return
	}
	if err := h.timers.Start(msg.ChatID, *race); err != nil {
		msg.Text = fmt.Sprintf("Error starting countdown: %v", err)
	}
}

func (h *Handler) handleCalendar(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	key, rest := parseSeason(args)
	order := h.f1.DefaultCalendarOrder()
	if len(rest) > 0 {
		parsed, err := aggregator.ParseCalendarOrder(strings.ToLower(rest[0]))
		if err != nil {
			msg.Text = "Usage: /calendar [year] [asc|desc]"
			return
		}
		order = parsed
	}
	h.reply(msg, "calendar", func() (string, error) { return h.f1.Calendar(ctx, msg.ChatID, key, order) })
}

// handleRace reads "<round|name> [year]". A year is only taken from a
// trailing argument, so a lone number is always the round.
func (h *Handler) handleRace(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	var key models.SeasonKey
	rest := args
	if n := len(args); n > 1 {
		if year, ok := parseYear(args[n-1]); ok {
			key.Year = year
			rest = args[:n-1]
		}
	}
	if len(rest) == 0 {
		msg.Text = "Please provide a round or race name. Usage: /race <round|name> [year]"
		return
	}
	query := strings.Join(rest, " ")
	h.reply(msg, "race", func() (string, error) { return h.f1.Race(ctx, msg.ChatID, key, query) })
}

func (h *Handler) handleDriver(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	key, rest := parseSeason(args)
	if len(rest) == 0 {
		msg.Text = "Please provide a driver name. Usage: /driver <name> [year]"
		return
	}
	name := strings.Join(rest, " ")
	h.reply(msg, "driver", func() (string, error) { return h.f1.Driver(ctx, msg.ChatID, key, name) })
}

func (h *Handler) handleConstructor(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	key, rest := parseSeason(args)
	if len(rest) == 0 {
		msg.Text = "Please provide a constructor name. Usage: /constructor <name> [year]"
		return
	}
	name := strings.Join(rest, " ")
	h.reply(msg, "constructor", func() (string, error) { return h.f1.Constructor(ctx, msg.ChatID, key, name) })
}

func (h *Handler) handleStandings(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	key, rest := parseSeason(args)
	kind := models.DriverStandings
	if len(rest) > 0 {
		switch strings.ToLower(rest[0]) {
		case "drivers", "driver":
		case "constructors", "constructor", "teams":
			kind = models.ConstructorStandings
		default:
			msg.Text = "Usage: /standings [year] [drivers|constructors]"
			return
		}
	}
	h.reply(msg, "standings", func() (string, error) { return h.f1.Standings(ctx, msg.ChatID, key, kind) })
}

func (h *Handler) handleTrend(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	key, rest := parseSeason(args)
	if len(rest) < 2 {
		msg.Text = "Usage: /trend <driver|constructor> <name> [year]"
		return
	}

	var subject service.TrendSubject
	switch strings.ToLower(rest[0]) {
	case "driver":
		subject = service.TrendDriver
	case "constructor", "team":
		subject = service.TrendConstructor
	default:
		msg.Text = "Usage: /trend <driver|constructor> <name> [year]"
		return
	}
	name := strings.Join(rest[1:], " ")
	h.reply(msg, "trend", func() (string, error) { return h.f1.Trend(ctx, msg.ChatID, key, subject, name) })
}

func parseYear(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < firstSeason {
		return 0, false
	}
	return n, true
}

// parseSeason takes a year from the first or last argument and returns the
// remaining arguments.
func parseSeason(args []string) (models.SeasonKey, []string) {
	if len(args) == 0 {
		return models.SeasonKey{}, args
	}
	if year, ok := parseYear(args[len(args)-1]); ok {
		return models.SeasonKey{Year: year}, args[:len(args)-1]
	}
	if year, ok := parseYear(args[0]); ok {
		return models.SeasonKey{Year: year}, args[1:]
	}
	return models.SeasonKey{}, args
}

// parseRound reads "[year] [round]". A lone small number is a round of the
// current season.
func parseRound(args []string) models.SeasonKey {
	var key models.SeasonKey
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			continue
		}
		if n >= firstSeason && key.Year == 0 {
			key.Year = n
		} else if key.Round == 0 {
			key.Round = n
		}
	}
	return key
}
