package general

import (
	"fmt"

	"vassal/internal/core"
)

func pingCommand() *core.Command {
	return &core.Command{
		Name:     "ping",
		Category: core.CategoryGeneral,
		Summary:  "Displays the bot's latency",
		Run: func(ctx *core.Context) error {
			return ctx.ReplyEmbed("Ping",
				fmt.Sprintf("Gateway Latency ❯ %dms", ctx.Gateway.Latency()))
		},
	}
}
