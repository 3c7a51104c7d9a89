package core

import (
	"math"

	"github.com/bwmarrin/discordgo"
)

// Hierarchy is a member's rank: the highest position among their roles, with
// the guild owner above everyone. Commands may only target strictly
// lower-ranked members.
func Hierarchy(guild *discordgo.Guild, m *discordgo.Member) int {
	if m == nil || m.User == nil {
		return 0
	}
	if guild.OwnerID == m.User.ID {
		return math.MaxInt
	}
	rank := 0
	for _, roleID := range m.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Position > rank {
				rank = role.Position
			}
		}
	}
	return rank
}

// RequireBotHierarchy fails unless the target member ranks strictly below the
// bot. Only valid on member-typed parameters; the registry enforces that.
type RequireBotHierarchy struct{}

func (RequireBotHierarchy) memberParam() {}

func (RequireBotHierarchy) CheckParam(ctx *Context, v Value) Result {
	target := v.Member
	if target == nil {
		return Success()
	}
	guild, err := ctx.Gateway.Guild(ctx.GuildID())
	if err != nil {
		return Failuref("failed to look up this server: %v", err)
	}
	bot := ctx.Gateway.BotUser()
	if bot == nil {
		return Failure("An internal error has occurred! :(")
	}
	me, err := ctx.Gateway.Member(ctx.GuildID(), bot.ID)
	if err != nil {
		return Failuref("failed to look up my own membership: %v", err)
	}
	if Hierarchy(guild, target) >= Hierarchy(guild, me) {
		return Failure("I have not enough permissions to do this")
	}
	return Success()
}

// RequireUserHierarchy fails unless the target member ranks strictly below
// the invoking user.
type RequireUserHierarchy struct{}

func (RequireUserHierarchy) memberParam() {}

func (RequireUserHierarchy) CheckParam(ctx *Context, v Value) Result {
	target := v.Member
	if target == nil {
		return Success()
	}
	guild, err := ctx.Gateway.Guild(ctx.GuildID())
	if err != nil {
		return Failuref("failed to look up this server: %v", err)
	}
	invoker, err := ctx.Gateway.Member(ctx.GuildID(), ctx.Author().ID)
	if err != nil {
		return Failuref("failed to look up your membership: %v", err)
	}
	if Hierarchy(guild, target) >= Hierarchy(guild, invoker) {
		return Failure("You have not enough permissions to do this")
	}
	return Success()
}
