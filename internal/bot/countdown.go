package bot

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/f1bot/internal/countdown"
	"github.com/omarshaarawi/f1bot/internal/models"
	"github.com/omarshaarawi/f1bot/internal/service"
)

// Sender is the part of the bot API used to post and edit messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Countdowns runs one live countdown message per chat. Each tick edits the
// message in place.
type Countdowns struct {
	scheduler gocron.Scheduler
	clock     clockwork.Clock
	interval  time.Duration
	sender    Sender

	mu     sync.Mutex
	timers map[int64]*countdown.Timer
}

func NewCountdowns(scheduler gocron.Scheduler, clock clockwork.Clock, interval time.Duration, sender Sender) *Countdowns {
	return &Countdowns{
		scheduler: scheduler,
		clock:     clock,
		interval:  interval,
		sender:    sender,
		timers:    make(map[int64]*countdown.Timer),
	}
}

// Start posts a countdown message for race and keeps it updated until the race
// starts. A countdown already running in the chat is replaced.
func (c *Countdowns) Start(chatID int64, race models.Race) error {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏱ Counting down to *%s*...", race.Name))
	msg.ParseMode = "Markdown"
	sent, err := c.sender.Send(msg)
	if err != nil {
		return fmt.Errorf("error sending countdown message: %w", err)
	}

	timer := countdown.New(c.scheduler, c.clock, c.interval, func(cd models.Countdown, state countdown.State) {
		edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, service.FormatCountdown(race, cd, state == countdown.Expired))
		edit.ParseMode = "Markdown"
		if _, err := c.sender.Send(edit); err != nil {
			slog.Warn("Error updating countdown", "chat", chatID, "error", err)
		}
	})

	// armed under the lock so a concurrent Stop always sees an armed timer
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.timers[chatID]; ok {
		old.Stop()
	}
	c.timers[chatID] = timer

	slog.Info("Countdown armed", "chat", chatID, "race", race.Name, "target", race.Date)
	if err := timer.Arm(race.Date); err != nil {
		delete(c.timers, chatID)
		timer.Stop()
		return err
	}
	return nil
}

// Stop reports whether a running countdown was stopped.
func (c *Countdowns) Stop(chatID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer, ok := c.timers[chatID]
	if !ok {
		return false
	}
	delete(c.timers, chatID)

	running := timer.State() == countdown.Armed
	timer.Stop()
	return running
}

// StopAll stops every countdown, on shutdown.
func (c *Countdowns) StopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for chatID, timer := range c.timers {
		timer.Stop()
		delete(c.timers, chatID)
	}
}
