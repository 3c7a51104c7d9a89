// Package mod holds the moderation commands. Both commands compare role
// hierarchy on their member parameter: only strictly lower-ranked members can
// be targeted, by the bot and by the invoker alike.
package mod

import (
	"fmt"

	"vassal/internal/core"

	"github.com/bwmarrin/discordgo"
)

// Commands returns the moderation command set in registration order.
func Commands() []*core.Command {
	return []*core.Command{
		kickCommand(),
		banCommand(),
	}
}

var hierarchyChecks = []core.ParamPrecondition{
	core.RequireBotHierarchy{},
	core.RequireUserHierarchy{},
}

func kickCommand() *core.Command {
	return &core.Command{
		Name:     "kick",
		Category: core.CategoryModeration,
		Summary:  "Kicks a member from the server",
		Checks: []core.Precondition{
			core.RequireUserPermission{Guild: discordgo.PermissionKickMembers},
			core.RequireBotPermission{Guild: discordgo.PermissionKickMembers},
		},
		Params: []core.Param{
			{Name: "member", Type: core.TypeMember, Checks: hierarchyChecks},
			{Name: "reason", Type: core.TypeString, Optional: true, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			target := ctx.MemberArg(0)
			if err := ctx.Gateway.KickMember(ctx.GuildID(), target.User.ID, ctx.Str(1)); err != nil {
				return fmt.Errorf("failed to kick %s: %w", target.User.ID, err)
			}
			return ctx.ReplyEmbed("Member Kicked",
				fmt.Sprintf("Kicked `%s`%s", target.User.Username, reasonSuffix(ctx.Str(1))))
		},
	}
}

func banCommand() *core.Command {
	return &core.Command{
		Name:     "ban",
		Category: core.CategoryModeration,
		Summary:  "Bans a member from the server",
		Checks: []core.Precondition{
			core.RequireUserPermission{Guild: discordgo.PermissionBanMembers},
			core.RequireBotPermission{Guild: discordgo.PermissionBanMembers},
		},
		Params: []core.Param{
			{Name: "member", Type: core.TypeMember, Checks: hierarchyChecks},
			{Name: "reason", Type: core.TypeString, Optional: true, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			target := ctx.MemberArg(0)
			if err := ctx.Gateway.BanMember(ctx.GuildID(), target.User.ID, ctx.Str(1)); err != nil {
				return fmt.Errorf("failed to ban %s: %w", target.User.ID, err)
			}
			return ctx.ReplyEmbed("Member Banned",
				fmt.Sprintf("Banned `%s`%s", target.User.Username, reasonSuffix(ctx.Str(1))))
		},
	}
}

func reasonSuffix(reason string) string {
	if reason == "" {
		return ""
	}
	return " ❯ " + reason
}
