package core

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Responder maps non-success outcomes to user-facing cards. UnknownCommand
// and AmbiguousMatch stay silent; handler faults are logged, never echoed.
type Responder struct {
	gw Gateway
}

func NewResponder(gw Gateway) *Responder {
	return &Responder{gw: gw}
}

// Send delivers an embed to a channel through the gateway sink.
func (r *Responder) Send(channelID string, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	return r.gw.SendEmbed(channelID, embed)
}

func (r *Responder) Respond(ctx *Context, out Outcome) {
	switch out.Kind {
	case OutcomeSuccess, OutcomeNoInvocation, OutcomeUnknownCommand, OutcomeAmbiguousMatch:
		return

	case OutcomeParseFailed, OutcomeMissingArgument:
		if out.Command == nil {
			return
		}
		// If the user would fail a precondition anyway, show that instead of
		// a usage hint, so command details aren't leaked to the unauthorized.
		if res := RunClassChecks(out.Command, ctx); !res.OK {
			r.send(ctx, "Missing Permissions", res.Reason)
			return
		}
		r.send(ctx, TitleCase(out.Command.Name)+" Command Usage", usageLines(ctx.Prefix, out.Candidates))

	case OutcomePreconditionFailed:
		r.send(ctx, "Unmet Precondition", out.Reason)

	case OutcomeHandlerFailed:
		name := "?"
		if out.Command != nil {
			name = out.Command.Name
		}
		log.Printf("[ERR] Command %s failed: %v", name, out.Err)
		r.send(ctx, "Internal Error", "An internal error has occurred! :(")
	}
}

func (r *Responder) send(ctx *Context, title, description string) {
	if err := r.Send(ctx.ChannelID(), &discordgo.MessageEmbed{Title: title, Description: description}); err != nil {
		log.Printf("[ERR] Failed to send %q response: %v", title, err)
	}
}

// Usage renders one overload's invocation line: `< >` marks a required
// parameter, `( )` an optional one.
func Usage(prefix string, c *Command) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(c.Name)
	for _, p := range c.Params {
		if p.Optional {
			b.WriteString(" (" + p.Name + ")")
		} else {
			b.WriteString(" <" + p.Name + ">")
		}
	}
	return b.String()
}

func usageLines(prefix string, cands []*Command) string {
	lines := make([]string, 0, len(cands))
	for _, c := range cands {
		lines = append(lines, "`"+Usage(prefix, c)+"`")
	}
	return strings.Join(lines, "\n")
}

// TitleCase uppercases the first letter of each space-separated word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
