package discord

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/prayerbot/pkg/logger"
)

func encodeDCA(t *testing.T, frames ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, frame := range frames {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, int16(len(frame))))
		buf.Write(frame)
	}
	return buf.Bytes()
}

func TestReadDCA(t *testing.T) {
	data := encodeDCA(t, []byte{1, 2, 3}, []byte{4, 5})

	frames, err := ReadDCA(bytes.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2, 3}, {4, 5}}, frames)
}

func TestReadDCAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "truncated frame", data: encodeDCA(t, []byte{1, 2, 3})[:4]},
		{name: "truncated length", data: []byte{3}},
		{name: "negative length", data: []byte{0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDCA(bytes.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadDCA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prayer_reminder.dca")
	require.NoError(t, os.WriteFile(path, encodeDCA(t, []byte{9}), 0o600))

	frames, err := LoadDCA(path)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{9}}, frames)

	_, err = LoadDCA(filepath.Join(t.TempDir(), "missing.dca"))
	assert.Error(t, err)
}

func TestActiveVoiceChannels(t *testing.T) {
	guild := &discordgo.Guild{
		VoiceStates: []*discordgo.VoiceState{
			{UserID: "u1", ChannelID: "voice-b"},
			{UserID: "u2", ChannelID: "voice-b"},
			{UserID: "bot", ChannelID: "voice-c"},
			{UserID: "music", ChannelID: "voice-d", Member: &discordgo.Member{User: &discordgo.User{ID: "music", Bot: true}}},
			{UserID: "u3", ChannelID: "voice-a"},
			{UserID: "u4", ChannelID: ""},
		},
	}

	assert.Equal(t, []string{"voice-a", "voice-b"}, activeVoiceChannels(snapshotGuild(guild), "bot"))
}

func TestReminderChannel(t *testing.T) {
	guild := &discordgo.Guild{
		SystemChannelID: "system",
		Channels: []*discordgo.Channel{
			{ID: "voice", Type: discordgo.ChannelTypeGuildVoice, Position: 0},
			{ID: "rules", Type: discordgo.ChannelTypeGuildText, Position: 2},
			{ID: "general", Type: discordgo.ChannelTypeGuildText, Position: 1},
			{ID: "announcements", Type: discordgo.ChannelTypeGuildText, Position: 3},
		},
	}

	tests := []struct {
		name    string
		allowed map[string]bool
		want    string
	}{
		{name: "system channel", allowed: map[string]bool{"system": true, "general": true}, want: "system"},
		{name: "first writable by position", allowed: map[string]bool{"rules": true, "general": true}, want: "general"},
		{name: "skips read-only", allowed: map[string]bool{"announcements": true}, want: "announcements"},
		{name: "nothing writable", allowed: map[string]bool{"voice": true}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reminderChannel(snapshotGuild(guild), func(id string) bool { return tt.allowed[id] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuildScanDuringVoiceStateUpdates(t *testing.T) {
	session, err := discordgo.New("Bot test")
	require.NoError(t, err)
	require.NoError(t, session.State.GuildAdd(&discordgo.Guild{
		ID:       "g1",
		Name:     "Masjid",
		Channels: []*discordgo.Channel{{ID: "general", GuildID: "g1", Type: discordgo.ChannelTypeGuildText}},
	}))

	b := &Bot{session: session, logger: logger.New("discord-test"), playing: make(map[string]bool)}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			update := &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{
				GuildID:   "g1",
				UserID:    fmt.Sprintf("u%d", i%20),
				ChannelID: fmt.Sprintf("voice-%d", i%3),
			}}
			assert.NoError(t, session.State.OnInterface(session, update))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, g := range b.guilds() {
				activeVoiceChannels(g, b.botID())
				reminderChannel(g, func(string) bool { return false })
			}
		}
	}()
	wg.Wait()

	guilds := b.guilds()
	require.Len(t, guilds, 1)
	assert.Equal(t, []string{"voice-0", "voice-1", "voice-2"}, activeVoiceChannels(guilds[0], ""))
}
