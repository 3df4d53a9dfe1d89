// Package telegram is the Telegram front-end and delivery transport.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wiyan17/Notifwallet-bot/internal/command"
	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
)

// Config holds bot settings.
type Config struct {
	Token       string
	ParseMode   string
	PollTimeout int
	// APIEndpoint overrides the Bot API URL format ("https://host/bot%s/%s").
	APIEndpoint string
}

// Router answers commands.
type Router interface {
	Handle(ctx context.Context, req command.Request) string
}

// Bot reads commands from long-polled updates and sends alerts to chats.
type Bot struct {
	api         *tgbotapi.BotAPI
	router      Router
	parseMode   string
	pollTimeout int
	log         *slog.Logger
}

// New authorizes against the Bot API. router may be set later with SetRouter.
func New(cfg Config, router Router) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false

	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60
	}
	b := &Bot{
		api:         api,
		router:      router,
		parseMode:   cfg.ParseMode,
		pollTimeout: cfg.PollTimeout,
		log:         slog.Default().With("component", "telegram"),
	}
	b.log.Info("Authorized on account", "username", api.Self.UserName)
	return b, nil
}

// SetRouter sets the command router. Call before Run.
func (b *Bot) SetRouter(router Router) {
	b.router = router
}

// Run long-polls updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	req := command.Request{
		Sender: ChatSubscriber(msg.Chat.ID),
		Text:   msg.Text,
	}
	if msg.From != nil {
		req.User = strconv.FormatInt(msg.From.ID, 10)
	}

	reply := b.router.Handle(ctx, req)
	if reply == "" {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.log.Warn("Failed to send reply", "chat", msg.Chat.ID, "error", err)
	}
}

// Name implements notify.Transport.
func (b *Bot) Name() string { return "telegram" }

// Send implements notify.Transport. A message rejected in the configured
// parse mode is resent as plain text.
func (b *Bot) Send(ctx context.Context, to domain.SubscriberID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(string(to), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", to, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseMode
	if _, err := b.api.Send(msg); err != nil {
		if b.parseMode == "" {
			return err
		}
		b.log.Debug("Send failed with parse mode, retrying as plain text", "chat", chatID, "error", err)
		msg.ParseMode = ""
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// ChatSubscriber renders a chat id as a subscriber id.
func ChatSubscriber(chatID int64) domain.SubscriberID {
	return domain.SubscriberID(strconv.FormatInt(chatID, 10))
}
