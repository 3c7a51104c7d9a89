package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeGateway is an in-memory Gateway for pipeline tests.
type fakeGateway struct {
	mu       sync.Mutex
	bot      *discordgo.User
	guilds   map[string]*discordgo.Guild
	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member // guildID/userID
	perms    map[string]int64             // userID/channelID
	ownerID  string
	ownerErr error

	sent   []sentEmbed
	kicked []string
	banned []string
}

type sentEmbed struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		bot:      &discordgo.User{ID: "bot", Username: "vassal"},
		guilds:   map[string]*discordgo.Guild{},
		channels: map[string]*discordgo.Channel{},
		members:  map[string]*discordgo.Member{},
		perms:    map[string]int64{},
	}
}

func (f *fakeGateway) BotUser() *discordgo.User { return f.bot }

func (f *fakeGateway) Guild(guildID string) (*discordgo.Guild, error) {
	if g, ok := f.guilds[guildID]; ok {
		return g, nil
	}
	return nil, errors.New("guild not found")
}

func (f *fakeGateway) Channel(channelID string) (*discordgo.Channel, error) {
	if c, ok := f.channels[channelID]; ok {
		return c, nil
	}
	return nil, errors.New("channel not found")
}

func (f *fakeGateway) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, ok := f.members[guildID+"/"+userID]; ok {
		return m, nil
	}
	return nil, errors.New("member not found")
}

func (f *fakeGateway) UserChannelPermissions(userID, channelID string) (int64, error) {
	return f.perms[userID+"/"+channelID], nil
}

func (f *fakeGateway) Owner() (string, error) {
	if f.ownerErr != nil {
		return "", f.ownerErr
	}
	return f.ownerID, nil
}

func (f *fakeGateway) GuildCount() int { return len(f.guilds) }
func (f *fakeGateway) Latency() int64  { return 42 }

func (f *fakeGateway) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmbed{channelID: channelID, embed: embed})
	return nil
}

func (f *fakeGateway) KickMember(guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicked = append(f.kicked, userID)
	return nil
}

func (f *fakeGateway) BanMember(guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeGateway) sentTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		titles = append(titles, s.embed.Title)
	}
	return titles
}

func (f *fakeGateway) lastEmbed() *discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1].embed
}

func (f *fakeGateway) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// addMember registers a member with roles in a guild, creating the guild on
// first use.
func (f *fakeGateway) addMember(guildID, userID string, roleIDs ...string) *discordgo.Member {
	if _, ok := f.guilds[guildID]; !ok {
		f.guilds[guildID] = &discordgo.Guild{ID: guildID, Name: "guild-" + guildID}
	}
	m := &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Username: "user-" + userID},
		Roles:   roleIDs,
	}
	f.members[guildID+"/"+userID] = m
	return m
}

func (f *fakeGateway) addRole(guildID, roleID string, position int) {
	g := f.guilds[guildID]
	g.Roles = append(g.Roles, &discordgo.Role{ID: roleID, Position: position})
}

func message(userID, channelID, guildID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ID:        fmt.Sprintf("msg-%s-%s", userID, content),
			Author:    &discordgo.User{ID: userID, Username: "user-" + userID},
			ChannelID: channelID,
			GuildID:   guildID,
			Content:   content,
		},
	}
}
