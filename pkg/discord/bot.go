package discord

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/pkg/errors"
)

// leaveDelay is how long the bot stays in a channel after the sound ends
const leaveDelay = time.Second

// CommandHandler handles one text command
type CommandHandler func(m *discordgo.MessageCreate)

// Bot represents a Discord bot instance
type Bot struct {
	session           *discordgo.Session
	logger            *logger.Logger
	reminderChannelID string
	soundPath         string

	mu      sync.Mutex
	playing map[string]bool // guild ID -> voice playback in progress
}

// New creates a new Discord bot instance
func New(token, reminderChannelID, soundPath string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Discord session")
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		session:           session,
		logger:            logger.New("discord"),
		reminderChannelID: reminderChannelID,
		soundPath:         soundPath,
		playing:           make(map[string]bool),
	}, nil
}

// Start registers the command handlers and opens the gateway connection
func (b *Bot) Start(commandHandlers map[string]CommandHandler) error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("Logged in as %s", r.User.String())
		if err := s.UpdateListeningStatus("Prayer Reminders"); err != nil {
			b.logger.Warn("Failed to set status: %v", err)
		}
	})

	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		b.logger.Debug("Received message %q from %s", m.Content, m.Author.Username)

		command := strings.TrimSpace(m.Content)
		if handler, ok := commandHandlers[command]; ok {
			b.logger.Info("Handling command: %s from user %s", command, m.Author.Username)
			handler(m)
		}
	})

	if err := b.session.Open(); err != nil {
		return errors.Wrap(err, "failed to open Discord connection")
	}
	return nil
}

// Close closes the gateway connection
func (b *Bot) Close() error {
	return b.session.Close()
}

// SendMessage sends a text message to a channel
func (b *Bot) SendMessage(channelID, text string) error {
	_, err := b.session.ChannelMessageSend(channelID, text)
	return err
}

// Notify posts the reminder and, at prayer time, plays the reminder sound in occupied voice channels
func (b *Bot) Notify(ctx context.Context, name prayer.Name, message string, atPrayerTime bool) error {
	text := "🕌 " + message
	var errs []error

	if b.reminderChannelID != "" {
		if err := b.SendMessage(b.reminderChannelID, text); err != nil {
			errs = append(errs, errors.Wrapf(err, "channel %s", b.reminderChannelID))
		}
	}

	botID := b.botID()
	for _, guild := range b.guilds() {
		if b.reminderChannelID == "" {
			channelID := reminderChannel(guild, b.canSend)
			if channelID == "" {
				b.logger.Warn("No channel to post %s reminder in guild %s", name, guild.name)
			} else if err := b.SendMessage(channelID, text); err != nil {
				errs = append(errs, errors.Wrapf(err, "guild %s", guild.id))
			}
		}

		if !atPrayerTime {
			continue
		}
		if channels := activeVoiceChannels(guild, botID); len(channels) > 0 {
			go b.playInChannels(ctx, guild.id, channels)
		}
	}

	return stderrors.Join(errs...)
}

// guilds snapshots the guilds from the session state
func (b *Bot) guilds() []guildSnapshot {
	state := b.session.State
	state.RLock()
	defer state.RUnlock()

	guilds := make([]guildSnapshot, 0, len(state.Guilds))
	for _, g := range state.Guilds {
		guilds = append(guilds, snapshotGuild(g))
	}
	return guilds
}

func (b *Bot) botID() string {
	state := b.session.State
	state.RLock()
	defer state.RUnlock()

	if state.User == nil {
		return ""
	}
	return state.User.ID
}

func (b *Bot) canSend(channelID string) bool {
	perms, err := b.session.State.UserChannelPermissions(b.botID(), channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionViewChannel != 0 && perms&discordgo.PermissionSendMessages != 0
}

// playInChannels visits the channels one at a time; a guild has a single voice connection
func (b *Bot) playInChannels(ctx context.Context, guildID string, channelIDs []string) {
	b.mu.Lock()
	if b.playing[guildID] {
		b.mu.Unlock()
		b.logger.Warn("Voice playback already running in guild %s", guildID)
		return
	}
	b.playing[guildID] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.playing, guildID)
		b.mu.Unlock()
	}()

	for _, channelID := range channelIDs {
		if ctx.Err() != nil {
			return
		}
		if err := b.playInChannel(ctx, guildID, channelID); err != nil {
			b.logger.Error("Failed to play reminder in channel %s: %v", channelID, err)
		}
	}
}

func (b *Bot) playInChannel(ctx context.Context, guildID, channelID string) error {
	vc, err := b.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		if vc != nil {
			_ = vc.Disconnect()
		}
		return errors.Wrap(err, "failed to join voice channel")
	}
	defer func() {
		time.Sleep(leaveDelay)
		if err := vc.Disconnect(); err != nil {
			b.logger.Warn("Failed to leave voice channel %s: %v", channelID, err)
		}
	}()

	frames, err := LoadDCA(b.soundPath)
	if err != nil {
		b.logger.Warn("Reminder sound unavailable, joined without sound: %v", err)
		return nil
	}

	if err := vc.Speaking(true); err != nil {
		b.logger.Warn("Failed to set speaking state: %v", err)
	}
	defer vc.Speaking(false)

	for _, frame := range frames {
		select {
		case vc.OpusSend <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
