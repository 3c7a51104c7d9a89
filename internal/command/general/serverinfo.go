package general

import (
	"fmt"

	"vassal/internal/core"

	"github.com/bwmarrin/discordgo"
)

func serverInfoCommand() *core.Command {
	return &core.Command{
		Name:     "serverinfo",
		Aliases:  []string{"server"},
		Category: core.CategoryGeneral,
		Summary:  "Shows information about this server",
		Checks:   []core.Precondition{core.RequireServer{}},
		Run: func(ctx *core.Context) error {
			guild, err := ctx.Gateway.Guild(ctx.GuildID())
			if err != nil {
				return fmt.Errorf("failed to fetch guild: %w", err)
			}

			created := "unknown"
			if t, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
				created = t.Format("2006-01-02 15:04")
			}

			embed := &discordgo.MessageEmbed{
				Title: guild.Name,
				Fields: []*discordgo.MessageEmbedField{
					{
						Name: "General Information",
						Value: fmt.Sprintf("Id ❯ %s\nOwner ❯ <@%s>\nMembers ❯ %d\nCreated On ❯ %s",
							guild.ID, guild.OwnerID, guild.MemberCount, created),
						Inline: true,
					},
					{
						Name: "Structure",
						Value: fmt.Sprintf("Channels ❯ %d\nRoles ❯ %d\nEmojis ❯ %d",
							len(guild.Channels), len(guild.Roles), len(guild.Emojis)),
						Inline: true,
					},
				},
			}
			return ctx.Reply(embed)
		},
	}
}
