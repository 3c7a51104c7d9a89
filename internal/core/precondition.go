package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Result is the outcome of a precondition: success, or failure with a
// human-readable reason. Checks never panic and never mutate state.
type Result struct {
	OK     bool
	Reason string
}

func Success() Result         { return Result{OK: true} }
func Failure(r string) Result { return Result{Reason: r} }
func Failuref(format string, a ...any) Result {
	return Result{Reason: fmt.Sprintf(format, a...)}
}

// Precondition is a class-level authorization check, evaluated before the
// handler runs.
type Precondition interface {
	Check(ctx *Context) Result
}

// ParamPrecondition is scoped to one bound parameter.
type ParamPrecondition interface {
	CheckParam(ctx *Context, v Value) Result
}

// memberParamCheck marks parameter checks that only make sense on
// member-typed parameters; the registry rejects other pairings.
type memberParamCheck interface {
	memberParam()
}

const serverOnlyReason = "This command can only be used in a `server` channel"

// RunChecks evaluates the chain: class-level checks in declaration order,
// short-circuiting on first failure, then per-parameter checks in parameter
// order, again short-circuiting.
func RunChecks(cmd *Command, ctx *Context) Result {
	if r := RunClassChecks(cmd, ctx); !r.OK {
		return r
	}
	for i, p := range cmd.Params {
		if i >= len(ctx.Args) || !ctx.Args[i].Set {
			continue
		}
		for _, chk := range p.Checks {
			if r := chk.CheckParam(ctx, ctx.Args[i]); !r.OK {
				return r
			}
		}
	}
	return Success()
}

// RunClassChecks evaluates only the command-level checks. The responder uses
// this to decide between a usage hint and a permission message.
func RunClassChecks(cmd *Command, ctx *Context) Result {
	for _, chk := range cmd.Checks {
		if r := chk.Check(ctx); !r.OK {
			return r
		}
	}
	return Success()
}

// PermissionNames maps permission bits to display names for failure reasons.
var PermissionNames = map[int64]string{
	discordgo.PermissionAdministrator:      "Administrator",
	discordgo.PermissionKickMembers:        "Kick Members",
	discordgo.PermissionBanMembers:         "Ban Members",
	discordgo.PermissionManageGuild:        "Manage Server",
	discordgo.PermissionManageChannels:     "Manage Channels",
	discordgo.PermissionManageMessages:     "Manage Messages",
	discordgo.PermissionManageRoles:        "Manage Roles",
	discordgo.PermissionManageNicknames:    "Manage Nicknames",
	discordgo.PermissionMentionEveryone:    "Mention Everyone",
	discordgo.PermissionModerateMembers:    "Moderate Members",
	discordgo.PermissionSendMessages:       "Send Messages",
	discordgo.PermissionEmbedLinks:         "Embed Links",
	discordgo.PermissionAttachFiles:        "Attach Files",
	discordgo.PermissionAddReactions:       "Add Reactions",
	discordgo.PermissionViewChannel:        "View Channel",
	discordgo.PermissionViewAuditLogs:      "View Audit Logs",
	discordgo.PermissionReadMessageHistory: "Read Message History",
}

func permissionName(p int64) string {
	if n, ok := PermissionNames[p]; ok {
		return n
	}
	return fmt.Sprintf("0x%x", p)
}

// RequireServer fails outside a guild.
type RequireServer struct{}

func (RequireServer) Check(ctx *Context) Result {
	if ctx.GuildID() == "" {
		return Failure(serverOnlyReason)
	}
	return Success()
}

// RequireUserPermission requires the invoking user to hold a guild- or
// channel-level permission. Exactly one of the two fields is set.
type RequireUserPermission struct {
	Guild   int64
	Channel int64
}

func (p RequireUserPermission) Check(ctx *Context) Result {
	if p.Guild != 0 && ctx.GuildID() == "" {
		return Failure(serverOnlyReason)
	}
	perms, err := ctx.Gateway.UserChannelPermissions(ctx.Author().ID, ctx.ChannelID())
	if err != nil {
		return Failuref("failed to check your permissions: %v", err)
	}
	if p.Guild != 0 && perms&p.Guild == 0 && perms&discordgo.PermissionAdministrator == 0 {
		return Failuref("You need the permission `%s` to do this", permissionName(p.Guild))
	}
	if p.Channel != 0 && perms&p.Channel == 0 && perms&discordgo.PermissionAdministrator == 0 {
		return Failuref("You need the channel permission `%s` to do this", permissionName(p.Channel))
	}
	return Success()
}

// RequireBotPermission requires the bot's own guild- or channel-level
// permission.
type RequireBotPermission struct {
	Guild   int64
	Channel int64
}

func (p RequireBotPermission) Check(ctx *Context) Result {
	if p.Guild != 0 && ctx.GuildID() == "" {
		return Failure(serverOnlyReason)
	}
	bot := ctx.Gateway.BotUser()
	if bot == nil {
		return Failure("An internal error has occurred! :(")
	}
	perms, err := ctx.Gateway.UserChannelPermissions(bot.ID, ctx.ChannelID())
	if err != nil {
		return Failuref("failed to check my permissions: %v", err)
	}
	if p.Guild != 0 && perms&p.Guild == 0 {
		return Failuref("I need the permission `%s` to do this", permissionName(p.Guild))
	}
	if p.Channel != 0 && perms&p.Channel == 0 {
		return Failuref("I need the channel permission `%s` to do this", permissionName(p.Channel))
	}
	return Success()
}

// RequireNSFWChannel fails unless the channel is flagged nsfw.
type RequireNSFWChannel struct{}

func (RequireNSFWChannel) Check(ctx *Context) Result {
	ch, err := ctx.Gateway.Channel(ctx.ChannelID())
	if err != nil || ch == nil || !ch.NSFW {
		return Failure("This command is only available in `nsfw` channels")
	}
	return Success()
}

// RequireBotOwner fails unless the invoking user is the application owner.
// If the authentication mode cannot resolve an owner it fails closed with a
// generic internal-error reason.
type RequireBotOwner struct{}

func (RequireBotOwner) Check(ctx *Context) Result {
	ownerID, err := ctx.Gateway.Owner()
	if err != nil {
		return Failure("An internal error has occurred! :(")
	}
	if ctx.Author().ID != ownerID {
		return Failure("You are not the owner of this bot!")
	}
	return Success()
}

// RequireServerOwner fails unless the invoking user owns the guild.
type RequireServerOwner struct{}

func (RequireServerOwner) Check(ctx *Context) Result {
	if ctx.GuildID() == "" {
		return Failure(serverOnlyReason)
	}
	guild, err := ctx.Gateway.Guild(ctx.GuildID())
	if err != nil {
		return Failuref("failed to look up this server: %v", err)
	}
	if guild.OwnerID != ctx.Author().ID {
		return Failure("You need to be the `owner` of this server to use this command")
	}
	return Success()
}
