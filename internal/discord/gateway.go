package discord

import (
	"context"
	"errors"
	"sync"

	"vassal/pkg/sendlimit"

	"github.com/bwmarrin/discordgo"
)

// gateway adapts a discordgo session to core.Gateway. Reads go through the
// session state cache first and fall back to the REST API, the same pattern
// the lookup helpers use everywhere else. Outbound sends run through the
// adaptive limiter.
type gateway struct {
	dg  *discordgo.Session
	lim *sendlimit.Limiter

	mu       sync.RWMutex
	ownerID  string
	ownerErr error
}

var errOwnerUnresolved = errors.New("owner identity not resolved")

func newGateway(dg *discordgo.Session) *gateway {
	return &gateway{
		dg:       dg,
		lim:      sendlimit.New(5, 1, 20, 1, 0.5),
		ownerErr: errOwnerUnresolved,
	}
}

// resolveOwner fetches the application owner. Only a bot token can resolve
// one; any other mode leaves the owner error in place so the bot-owner
// precondition fails closed.
func (g *gateway) resolveOwner() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dg.Identify.Token == "" || len(g.dg.Identify.Token) < 4 || g.dg.Identify.Token[:4] != "Bot " {
		g.ownerErr = errOwnerUnresolved
		return
	}
	app, err := g.dg.Application("@me")
	if err != nil {
		g.ownerErr = err
		return
	}
	if app.Owner == nil {
		g.ownerErr = errOwnerUnresolved
		return
	}
	g.ownerID = app.Owner.ID
	g.ownerErr = nil
}

func (g *gateway) Owner() (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ownerID, g.ownerErr
}

func (g *gateway) BotUser() *discordgo.User {
	return g.dg.State.User
}

func (g *gateway) Guild(guildID string) (*discordgo.Guild, error) {
	guild, err := g.dg.State.Guild(guildID)
	if err == nil && guild != nil {
		return guild, nil
	}
	return g.dg.Guild(guildID)
}

func (g *gateway) Channel(channelID string) (*discordgo.Channel, error) {
	channel, err := g.dg.State.Channel(channelID)
	if err == nil && channel != nil {
		return channel, nil
	}
	return g.dg.Channel(channelID)
}

func (g *gateway) Member(guildID, userID string) (*discordgo.Member, error) {
	member, err := g.dg.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member, nil
	}
	return g.dg.GuildMember(guildID, userID)
}

func (g *gateway) UserChannelPermissions(userID, channelID string) (int64, error) {
	return g.dg.UserChannelPermissions(userID, channelID)
}

func (g *gateway) GuildCount() int {
	return len(g.dg.State.Guilds)
}

func (g *gateway) Latency() int64 {
	return g.dg.HeartbeatLatency().Milliseconds()
}

func (g *gateway) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	return g.lim.Do(context.Background(), func() error {
		_, err := g.dg.ChannelMessageSendEmbed(channelID, embed)
		return err
	})
}

func (g *gateway) KickMember(guildID, userID, reason string) error {
	return g.dg.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (g *gateway) BanMember(guildID, userID, reason string) error {
	return g.dg.GuildBanCreateWithReason(guildID, userID, reason, 0)
}
