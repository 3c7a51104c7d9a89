package general

import (
	"fmt"
	"time"

	"vassal/internal/core"
	"vassal/internal/version"
)

func infoCommand() *core.Command {
	return &core.Command{
		Name:     "info",
		Aliases:  []string{"i"},
		Category: core.CategoryGeneral,
		Summary:  "Shows some basic information about the bot",
		Run: func(ctx *core.Context) error {
			buildDate := "unknown"
			if version.BuildDate != "" {
				if t, err := time.Parse(time.RFC3339, version.BuildDate); err == nil {
					buildDate = t.Format("2006-01-02")
				} else {
					buildDate = version.BuildDate
				}
			}
			name := version.AppName
			if bot := ctx.Gateway.BotUser(); bot != nil {
				name = bot.Username
			}
			return ctx.ReplyEmbed(name+" Information",
				fmt.Sprintf("Version ❯ %s\nBuilt ❯ %s\nGuilds ❯ %d\nLatency ❯ %dms",
					version.Version, buildDate, ctx.Gateway.GuildCount(), ctx.Gateway.Latency()))
		},
	}
}
