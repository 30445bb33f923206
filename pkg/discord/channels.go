package discord

import (
	"sort"

	"github.com/bwmarrin/discordgo"
)

type voiceMember struct {
	userID    string
	channelID string
	bot       bool
}

type textChannel struct {
	id       string
	position int
}

// guildSnapshot holds the parts of a guild the reminder fan-out reads.
// It is copied under the state lock so gateway updates cannot race the scan.
type guildSnapshot struct {
	id              string
	name            string
	systemChannelID string
	voice           []voiceMember
	text            []textChannel
}

// snapshotGuild copies guild; the caller holds the state read lock
func snapshotGuild(guild *discordgo.Guild) guildSnapshot {
	g := guildSnapshot{
		id:              guild.ID,
		name:            guild.Name,
		systemChannelID: guild.SystemChannelID,
	}
	for _, vs := range guild.VoiceStates {
		m := voiceMember{userID: vs.UserID, channelID: vs.ChannelID}
		if vs.Member != nil && vs.Member.User != nil {
			m.bot = vs.Member.User.Bot
		}
		g.voice = append(g.voice, m)
	}
	for _, ch := range guild.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			g.text = append(g.text, textChannel{id: ch.ID, position: ch.Position})
		}
	}
	return g
}

// activeVoiceChannels returns the voice channels holding at least one member other than bots
func activeVoiceChannels(guild guildSnapshot, botID string) []string {
	seen := make(map[string]bool)
	var channels []string
	for _, vs := range guild.voice {
		if vs.channelID == "" || vs.userID == botID || vs.bot {
			continue
		}
		if !seen[vs.channelID] {
			seen[vs.channelID] = true
			channels = append(channels, vs.channelID)
		}
	}
	sort.Strings(channels)
	return channels
}

// reminderChannel picks the guild's system channel, or its first text channel the bot may post in
func reminderChannel(guild guildSnapshot, canSend func(channelID string) bool) string {
	if guild.systemChannelID != "" && canSend(guild.systemChannelID) {
		return guild.systemChannelID
	}

	text := append([]textChannel(nil), guild.text...)
	sort.SliceStable(text, func(i, j int) bool { return text[i].position < text[j].position })

	for _, ch := range text {
		if canSend(ch.id) {
			return ch.id
		}
	}
	return ""
}
