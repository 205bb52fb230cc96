package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// API is the underlying client, used to post and edit countdown messages.
func (t *TelegramBot) API() *tgbotapi.BotAPI {
	return t.bot
}

func (t *TelegramBot) SetHandler(handler *Handler) {
	t.handler = handler
}

// Start polls for updates until ctx is done. Each command runs on its own
// goroutine so a slow lap chart does not hold up other chats, and a newer
// command for the same view supersedes an older one.
func (t *TelegramBot) Start(ctx context.Context) error {
	if t.handler == nil {
		return fmt.Errorf("no command handler set")
	}

	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				msg := t.handler.HandleCommand(ctx, update)
				if msg.Text == "" {
					return
				}
				if _, err := t.bot.Send(msg); err != nil {
					slog.Error("Error sending message", "error", err)
				}
			}()
		case <-ctx.Done():
			return nil
		}
	}
}

func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		slog.Error("Chat ID not set")
		return fmt.Errorf("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	_, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Error sending message", "error", err)
	}
	return err
}
