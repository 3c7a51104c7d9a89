package core

import "github.com/bwmarrin/discordgo"

// Gateway is the dispatcher's window into the chat gateway: read access to the
// connection's state snapshot plus the outbound messaging sink. The dispatch
// core never touches a session directly; the concrete implementation lives in
// internal/discord.
type Gateway interface {
	BotUser() *discordgo.User
	Guild(guildID string) (*discordgo.Guild, error)
	Channel(channelID string) (*discordgo.Channel, error)
	Member(guildID, userID string) (*discordgo.Member, error)
	UserChannelPermissions(userID, channelID string) (int64, error)

	// Owner returns the application owner's user ID. It fails when the
	// session's authentication mode cannot resolve an owner.
	Owner() (string, error)

	GuildCount() int
	Latency() int64 // heartbeat latency in milliseconds

	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error

	KickMember(guildID, userID, reason string) error
	BanMember(guildID, userID, reason string) error
}
