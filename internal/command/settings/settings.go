// Package settings holds the per-server configuration commands: custom
// prefixes, the channel policy, and category toggles. All of them require
// Manage Server.
package settings

import (
	"fmt"
	"strings"

	"vassal/internal/core"
	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
)

var manageServer = []core.Precondition{
	core.RequireServer{},
	core.RequireUserPermission{Guild: discordgo.PermissionManageGuild},
}

// Commands returns the settings command set in registration order.
func Commands() []*core.Command {
	return []*core.Command{
		prefixAddCommand(),
		prefixRemoveCommand(),
		prefixListCommand(),
		channelsWhitelistCommand(),
		channelsBlacklistCommand(),
		channelsClearCommand(),
		categoryToggleCommand("category disable", true),
		categoryToggleCommand("category enable", false),
	}
}

func prefixAddCommand() *core.Command {
	return &core.Command{
		Name:     "prefix add",
		Group:    "prefix",
		Category: core.CategorySettings,
		Summary:  "Adds a custom prefix for this server",
		Checks:   manageServer,
		Params: []core.Param{
			{Name: "prefix", Type: core.TypeString},
		},
		Run: func(ctx *core.Context) error {
			p := ctx.Str(0)
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				for _, existing := range cfg.Prefixes {
					if strings.EqualFold(existing, p) {
						return nil
					}
				}
				cfg.Prefixes = append(cfg.Prefixes, p)
				return nil
			})
			if err != nil {
				return err
			}
			return ctx.ReplyEmbed("Prefix Added", fmt.Sprintf("Added the prefix `%s`", p))
		},
	}
}

func prefixRemoveCommand() *core.Command {
	return &core.Command{
		Name:     "prefix remove",
		Group:    "prefix",
		Category: core.CategorySettings,
		Summary:  "Removes a custom prefix from this server",
		Checks:   manageServer,
		Params: []core.Param{
			{Name: "prefix", Type: core.TypeString},
		},
		Run: func(ctx *core.Context) error {
			p := ctx.Str(0)
			found := false
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				kept := cfg.Prefixes[:0]
				for _, existing := range cfg.Prefixes {
					if strings.EqualFold(existing, p) {
						found = true
						continue
					}
					kept = append(kept, existing)
				}
				cfg.Prefixes = kept
				return nil
			})
			if err != nil {
				return err
			}
			if !found {
				return ctx.ReplyEmbed("Prefix Not Found", fmt.Sprintf("`%s` is not a prefix on this server", p))
			}
			return ctx.ReplyEmbed("Prefix Removed", fmt.Sprintf("Removed the prefix `%s`", p))
		},
	}
}

func prefixListCommand() *core.Command {
	return &core.Command{
		Name:     "prefix list",
		Aliases:  []string{"prefix"},
		Group:    "prefix",
		Category: core.CategorySettings,
		Summary:  "Lists this server's custom prefixes",
		Checks:   []core.Precondition{core.RequireServer{}},
		Run: func(ctx *core.Context) error {
			if ctx.Server == nil || len(ctx.Server.Prefixes) == 0 {
				return ctx.ReplyEmbed("Prefixes", "This server has no custom prefixes")
			}
			var quoted []string
			for _, p := range ctx.Server.Prefixes {
				quoted = append(quoted, "`"+p+"`")
			}
			return ctx.ReplyEmbed("Prefixes", strings.Join(quoted, ", "))
		},
	}
}

func channelsWhitelistCommand() *core.Command {
	return &core.Command{
		Name:     "channels whitelist",
		Group:    "channels",
		Category: core.CategorySettings,
		Summary:  "Only listen in the given channel (or this one)",
		Checks:   manageServer,
		Params: []core.Param{
			{Name: "channel", Type: core.TypeString, Optional: true},
		},
		Run: func(ctx *core.Context) error {
			id := channelIDArg(ctx)
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				// the policy is mutually exclusive: activating one list clears the other
				cfg.Policy = storage.PolicyWhitelist
				cfg.Blacklist = nil
				if !containsStr(cfg.Whitelist, id) {
					cfg.Whitelist = append(cfg.Whitelist, id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			return ctx.ReplyEmbed("Channel Whitelisted",
				fmt.Sprintf("Commands are now only answered in whitelisted channels, including <#%s>", id))
		},
	}
}

func channelsBlacklistCommand() *core.Command {
	return &core.Command{
		Name:     "channels blacklist",
		Group:    "channels",
		Category: core.CategorySettings,
		Summary:  "Stop listening in the given channel (or this one)",
		Checks:   manageServer,
		Params: []core.Param{
			{Name: "channel", Type: core.TypeString, Optional: true},
		},
		Run: func(ctx *core.Context) error {
			id := channelIDArg(ctx)
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				cfg.Policy = storage.PolicyBlacklist
				cfg.Whitelist = nil
				if !containsStr(cfg.Blacklist, id) {
					cfg.Blacklist = append(cfg.Blacklist, id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			return ctx.ReplyEmbed("Channel Blacklisted",
				fmt.Sprintf("Commands are no longer answered in <#%s>", id))
		},
	}
}

func channelsClearCommand() *core.Command {
	return &core.Command{
		Name:     "channels clear",
		Group:    "channels",
		Category: core.CategorySettings,
		Summary:  "Removes the channel policy",
		Checks:   manageServer,
		Run: func(ctx *core.Context) error {
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				cfg.Policy = storage.PolicyNone
				cfg.Whitelist = nil
				cfg.Blacklist = nil
				return nil
			})
			if err != nil {
				return err
			}
			return ctx.ReplyEmbed("Channel Policy Cleared", "Commands are answered in every channel again")
		},
	}
}

func categoryToggleCommand(name string, disable bool) *core.Command {
	summary := "Re-enables a command category on this server"
	if disable {
		summary = "Disables a command category on this server"
	}
	return &core.Command{
		Name:     name,
		Group:    "category",
		Category: core.CategorySettings,
		Summary:  summary,
		Checks:   manageServer,
		Params: []core.Param{
			{Name: "category", Type: core.TypeString},
		},
		Run: func(ctx *core.Context) error {
			category, ok := core.KnownCategory(ctx.Str(0))
			if !ok {
				return ctx.ReplyEmbed("Unknown Category",
					fmt.Sprintf("`%s` is not a command category", ctx.Str(0)))
			}
			if category == core.CategorySettings {
				return ctx.ReplyEmbed("Not Allowed", "The settings category cannot be disabled")
			}
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				kept := cfg.DisabledCategories[:0]
				for _, c := range cfg.DisabledCategories {
					if c != category {
						kept = append(kept, c)
					}
				}
				cfg.DisabledCategories = kept
				if disable {
					cfg.DisabledCategories = append(cfg.DisabledCategories, category)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if disable {
				return ctx.ReplyEmbed("Category Disabled", fmt.Sprintf("Disabled the category `%s`", category))
			}
			return ctx.ReplyEmbed("Category Enabled", fmt.Sprintf("Enabled the category `%s`", category))
		},
	}
}

// channelIDArg resolves the optional channel argument, accepting a <#id>
// mention or bare ID and defaulting to the current channel.
func channelIDArg(ctx *core.Context) string {
	raw := ctx.Str(0)
	if raw == "" {
		return ctx.ChannelID()
	}
	id := strings.TrimSuffix(strings.TrimPrefix(raw, "<#"), ">")
	return id
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
