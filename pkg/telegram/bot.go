package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/pkg/errors"
)

// Bot represents a Telegram bot instance
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *logger.Logger
}

// CommandHandler is a function that handles a Telegram command
type CommandHandler func(message *tgbotapi.Message)

// New creates a new Telegram bot instance
func New(token string) (*Bot, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint)
}

// NewWithEndpoint creates a bot talking to a custom Bot API endpoint
func NewWithEndpoint(token, endpoint string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Telegram bot")
	}

	bot := &Bot{
		api:    api,
		logger: logger.New("telegram"),
	}

	bot.logger.Info("Telegram bot created: @%s", api.Self.UserName)
	return bot, nil
}

// Start listens for updates and dispatches commands until Stop is called
func (b *Bot) Start(commandHandlers map[string]CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		log := b.logger.With("chat", update.Message.Chat.ID)
		command := update.Message.Command()
		handler, ok := commandHandlers[command]
		if !ok {
			continue
		}

		var user string
		if update.Message.From != nil {
			user = update.Message.From.UserName
		}
		log.Info("Handling command: %s from user %s", command, user)
		handler(update.Message)
	}
}

// Stop stops receiving updates
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// SendMessage sends a text message to a chat
func (b *Bot) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	return b.api.Send(msg)
}

// SendMarkdown sends a message rendered with Telegram's Markdown mode
func (b *Bot) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.api.Send(msg)
}

// Notifier mirrors reminders into one Telegram chat
type Notifier struct {
	bot    *Bot
	chatID int64
}

// NewNotifier creates a notifier posting to chatID
func NewNotifier(bot *Bot, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// Notify posts the reminder text
func (n *Notifier) Notify(_ context.Context, _ prayer.Name, message string, _ bool) error {
	if _, err := n.bot.SendMessage(n.chatID, "🕌 "+message); err != nil {
		return errors.Wrapf(err, "telegram chat %d", n.chatID)
	}
	return nil
}
