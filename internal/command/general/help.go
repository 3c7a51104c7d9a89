package general

import (
	"fmt"
	"strings"

	"vassal/internal/core"

	"github.com/bwmarrin/discordgo"
)

// helpCommands returns the two help overloads: the full listing and the
// command/category detail view.
func helpCommands(reg *core.Registry) []*core.Command {
	all := &core.Command{
		Name:     "help",
		Category: core.CategoryGeneral,
		Summary:  "Displays all commands",
		Priority: -1,
		Run: func(ctx *core.Context) error {
			return ctx.Reply(helpOverview(reg, ctx))
		},
	}
	specific := &core.Command{
		Name:     "help",
		Category: core.CategoryGeneral,
		Summary:  "Displays information about a specific command or category",
		Priority: -1,
		Params: []core.Param{
			{Name: "command", Type: core.TypeString, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			return helpFor(reg, ctx, ctx.Str(0))
		},
	}
	return []*core.Command{all, specific}
}

func helpOverview(reg *core.Registry, ctx *core.Context) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Commands",
		Description: "Use `help <command/category>` to see more about a specific command or category\n\n" +
			"`< >` indicates a required parameter\n`( )` indicates an optional parameter",
	}
	for _, category := range core.Categories() {
		if ctx.Server != nil && ctx.Server.CategoryDisabled(category) {
			continue
		}
		var lines []string
		seen := map[string]bool{}
		for _, cmd := range reg.All() {
			if cmd.Category != category || seen[cmd.Name] {
				continue
			}
			seen[cmd.Name] = true
			lines = append(lines, fmt.Sprintf("`%s` — %s", core.Usage(ctx.Prefix, cmd), cmd.Summary))
		}
		if len(lines) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  core.TitleCase(category) + " Commands",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

func helpFor(reg *core.Registry, ctx *core.Context, token string) error {
	if cands := reg.Search(token); len(cands) > 0 {
		first := cands[0]
		if ctx.Server != nil && ctx.Server.CategoryDisabled(first.Category) {
			return unknownHelp(reg, ctx, token)
		}
		embed := &discordgo.MessageEmbed{
			Title:       core.TitleCase(token) + " Command Help",
			Description: first.Summary,
		}
		var usages []string
		for _, c := range cands {
			usages = append(usages, "`"+core.Usage(ctx.Prefix, c)+"`")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Usage",
			Value: strings.Join(usages, "\n"),
		})
		if len(first.Aliases) > 0 {
			var aliases []string
			for _, a := range first.Aliases {
				aliases = append(aliases, "`"+a+"`")
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Aliases",
				Value: strings.Join(aliases, ", "),
			})
		}
		return ctx.Reply(embed)
	}

	if category, ok := core.KnownCategory(token); ok {
		if ctx.Server != nil && ctx.Server.CategoryDisabled(category) {
			return unknownHelp(reg, ctx, token)
		}
		var lines []string
		seen := map[string]bool{}
		for _, cmd := range reg.All() {
			if cmd.Category != category || seen[cmd.Name] {
				continue
			}
			seen[cmd.Name] = true
			lines = append(lines, fmt.Sprintf("**%s**\n%s\n`%s`", core.TitleCase(cmd.Name), cmd.Summary, core.Usage(ctx.Prefix, cmd)))
		}
		return ctx.ReplyEmbed(core.TitleCase(category)+" Commands", strings.Join(lines, "\n"))
	}

	return unknownHelp(reg, ctx, token)
}

func unknownHelp(reg *core.Registry, ctx *core.Context, token string) error {
	desc := fmt.Sprintf("Couldn't find a command or category for `%s`", token)
	if suggestions := reg.FuzzySuggest(token, 3); len(suggestions) > 0 {
		for _, s := range suggestions {
			desc += fmt.Sprintf("\n- `%s`", s)
		}
	}
	return ctx.ReplyEmbed("Unknown command", desc)
}
