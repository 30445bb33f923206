package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/korjavin/prayerbot/pkg/config"
	"github.com/korjavin/prayerbot/pkg/discord"
	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/messages"
	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/korjavin/prayerbot/pkg/scheduler"
	"github.com/korjavin/prayerbot/pkg/storage"
	"github.com/korjavin/prayerbot/pkg/telegram"
)

func main() {
	// Initialize logger
	log := logger.Global
	log.Info("Starting prayer reminder bot...")

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		log.Error("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()
	store.StartGCRoutine(ctx, 10*time.Minute)

	// Prayer times: Aladhan API behind a same-day cache
	client := prayer.NewClient(cfg.APIBase, cfg.City, cfg.Country, cfg.Method, cfg.APITimeout)
	source := prayer.NewCache(client, store, prayer.CacheKeyPrefix(cfg.City, cfg.Country, cfg.Method))

	// Initialize Discord bot
	discordBot, err := discord.New(cfg.DiscordToken, cfg.ReminderChannelID, cfg.SoundPath)
	if err != nil {
		log.Error("Failed to initialize Discord bot: %v", err)
		os.Exit(1)
	}
	notifiers := scheduler.Notifiers{discordBot}

	// Optional Telegram mirror
	var telegramBot *telegram.Bot
	if cfg.TelegramEnabled() {
		telegramBot, err = telegram.New(cfg.TelegramBotToken)
		if err != nil {
			log.Error("Telegram mirror disabled: %v", err)
		} else {
			notifiers = append(notifiers, telegram.NewNotifier(telegramBot, cfg.TelegramChatID))
		}
	}

	prayerScheduler := scheduler.New(source, notifiers, scheduler.Config{
		Location:    cfg.Location,
		RefreshSpec: cfg.RefreshCron,
	})

	cmds := &commands{
		ctx:       ctx,
		scheduler: prayerScheduler,
		messages:  messages.New(cfg.City, cfg.Country, cfg.Location),
		logger:    logger.New("commands"),
	}

	// Setup command handlers
	discordHandlers := make(map[string]discord.CommandHandler)
	for _, name := range commandNames {
		name := name
		discordHandlers[messages.Discord.CommandPrefix+name] = func(m *discordgo.MessageCreate) {
			if err := discordBot.SendMessage(m.ChannelID, cmds.reply(name, messages.Discord)); err != nil {
				log.Error("Error sending message: %v", err)
			}
		}
	}

	if err := discordBot.Start(discordHandlers); err != nil {
		log.Error("Error running Discord bot: %v", err)
		os.Exit(1)
	}

	if err := prayerScheduler.Start(ctx); err != nil {
		log.Error("Failed to start scheduler: %v", err)
		discordBot.Close()
		os.Exit(1)
	}

	if telegramBot != nil {
		telegramHandlers := make(map[string]telegram.CommandHandler)
		for _, name := range commandNames {
			name := name
			telegramHandlers[name] = func(message *tgbotapi.Message) {
				if _, err := telegramBot.SendMarkdown(message.Chat.ID, cmds.reply(name, messages.Telegram)); err != nil {
					log.Error("Error sending Telegram message: %v", err)
				}
			}
		}
		go telegramBot.Start(telegramHandlers)
	}

	log.Info("Bot is ready and prayer times are scheduled. Press CTRL-C to exit.")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")
	prayerScheduler.Stop()
	if telegramBot != nil {
		telegramBot.Stop()
	}
	if err := discordBot.Close(); err != nil {
		log.Error("Error closing Discord session: %v", err)
	}
}
