// Package tag implements the per-server tag system: named text snippets any
// member can look up, with ownership rules on editing and an interactive
// creation flow.
package tag

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"vassal/internal/core"
	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const group = "tag"

var serverOnly = []core.Precondition{core.RequireServer{}}

// Commands returns the tag command set in registration order.
func Commands() []*core.Command {
	return []*core.Command{
		showCommand(),
		addCommand(),
		makeCommand(),
		claimCommand(),
		editCommand(),
		editInteractiveCommand(),
		aliasCommand(),
		aliasInteractiveCommand(),
		allCommand(),
	}
}

func showCommand() *core.Command {
	return &core.Command{
		Name:     "tag",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Shows a tag",
		Priority: -1,
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "tag", Type: core.TypeString, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			name := ctx.Str(0)
			t, ok := lookupTag(ctx.Server, name)
			if !ok {
				desc := fmt.Sprintf("Couldn't find a tag for `%s`", name)
				for _, near := range closestTags(ctx.Server, name, 3) {
					desc += fmt.Sprintf("\n- `%s`", near)
				}
				return ctx.ReplyEmbed("Tag Not Found", desc)
			}
			author := "invalid-user"
			if m, err := ctx.Gateway.Member(ctx.GuildID(), t.AuthorID); err == nil && m.User != nil {
				author = m.User.Username
				if m.Nick != "" {
					author = m.Nick
				}
			}
			return ctx.Reply(&discordgo.MessageEmbed{
				Title:       core.TitleCase(t.Name),
				Description: t.Message,
				Footer:      &discordgo.MessageEmbedFooter{Text: "by " + author},
				Timestamp:   t.CreatedAt.Format(time.RFC3339),
			})
		},
	}
}

func addCommand() *core.Command {
	return &core.Command{
		Name:     "tag add",
		Aliases:  []string{"tag a"},
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Creates a tag or updates its message",
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "name", Type: core.TypeString},
			{Name: "message", Type: core.TypeString, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			return upsertTag(ctx, ctx.Str(0), ctx.Str(1))
		},
	}
}

func makeCommand() *core.Command {
	return &core.Command{
		Name:     "tag make",
		Aliases:  []string{"tag m"},
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Creates a tag interactively",
		Detached: true,
		Checks:   serverOnly,
		Run: func(ctx *core.Context) error {
			name, err := ask(ctx, "Make A New Tag", "What should be the name of the tag?")
			if err != nil {
				return cancelled(ctx, err, "Cancelled the tag creation")
			}
			message, err := ask(ctx, "Make A New Tag", "What should be the message of the tag?")
			if err != nil {
				return cancelled(ctx, err, "Cancelled the tag creation")
			}
			return upsertTag(ctx, name, message)
		},
	}
}

func claimCommand() *core.Command {
	return &core.Command{
		Name:     "tag claim",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Takes ownership of a tag",
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "tag", Type: core.TypeString, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			name := ctx.Str(0)
			var claimed string
			err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
				t, ok := lookupTag(cfg, name)
				if !ok {
					t = storage.Tag{Name: name, Message: "None set", CreatedAt: time.Now()}
				} else if !canModify(ctx, t) {
					return errNotYours
				}
				t.AuthorID = ctx.Author().ID
				cfg.Tags[t.Name] = t
				claimed = t.Name
				return nil
			})
			if errors.Is(err, errNotYours) {
				return ctx.ReplyEmbed("Missing Permissions", notYoursReason)
			}
			if err != nil {
				return err
			}
			return ctx.ReplyEmbed("Tag Claimed", fmt.Sprintf("Claimed the tag `%s`", claimed))
		},
	}
}

func editCommand() *core.Command {
	return &core.Command{
		Name:     "tag edit",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Changes the message of a tag",
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "name", Type: core.TypeString},
			{Name: "message", Type: core.TypeString, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			return editTag(ctx, ctx.Str(0), ctx.Str(1))
		},
	}
}

// editInteractiveCommand collects the missing pieces over the awaiter.
func editInteractiveCommand() *core.Command {
	return &core.Command{
		Name:     "tag edit",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Changes the message of a tag interactively",
		Priority: -1,
		Detached: true,
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "name", Type: core.TypeString, Optional: true, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			name := ctx.Str(0)
			if name == "" {
				var err error
				name, err = ask(ctx, "Edit Tag", "What is the name of the tag?")
				if err != nil {
					return cancelled(ctx, err, "Cancelled the tag editing")
				}
			}
			message, err := ask(ctx, "Edit Tag", "What should be the new message of the tag?")
			if err != nil {
				return cancelled(ctx, err, "Cancelled the tag editing")
			}
			return editTag(ctx, name, message)
		},
	}
}

func aliasCommand() *core.Command {
	return &core.Command{
		Name:     "tag alias",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Renames a tag",
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "name", Type: core.TypeString},
			{Name: "newname", Type: core.TypeString, Remainder: true},
		},
		Run: func(ctx *core.Context) error {
			return renameTag(ctx, ctx.Str(0), ctx.Str(1))
		},
	}
}

func aliasInteractiveCommand() *core.Command {
	return &core.Command{
		Name:     "tag alias",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Renames a tag interactively",
		Priority: -1,
		Detached: true,
		Checks:   serverOnly,
		Params: []core.Param{
			{Name: "name", Type: core.TypeString, Optional: true},
		},
		Run: func(ctx *core.Context) error {
			name := ctx.Str(0)
			if name == "" {
				var err error
				name, err = ask(ctx, "Edit Tag", "What is the name of the tag?")
				if err != nil {
					return cancelled(ctx, err, "Cancelled the tag editing")
				}
			}
			newName, err := ask(ctx, "Edit Tag", "What should be the new name of the tag?")
			if err != nil {
				return cancelled(ctx, err, "Cancelled the tag editing")
			}
			return renameTag(ctx, name, newName)
		},
	}
}

func allCommand() *core.Command {
	return &core.Command{
		Name:     "tag all",
		Group:    group,
		Category: core.CategoryGeneral,
		Summary:  "Lists all tags on this server",
		Checks:   serverOnly,
		Run: func(ctx *core.Context) error {
			if ctx.Server == nil || len(ctx.Server.Tags) == 0 {
				return ctx.ReplyEmbed("No Tags", "There are no tags on this server yet")
			}
			var lines []string
			for _, t := range sortedTags(ctx.Server) {
				lines = append(lines, fmt.Sprintf("❯ %s (%s ago)", t.Name, relativeAge(t.CreatedAt)))
			}
			return ctx.ReplyEmbed("Tags", strings.Join(lines, "\n"))
		},
	}
}
