package core

import (
	"fmt"
	"log"
	"strings"
	"time"

	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNoInvocation: no prefix matched, the channel is gated off, or
	// the message was claimed by an interactive wait. Not an error.
	OutcomeNoInvocation
	OutcomeUnknownCommand
	OutcomeAmbiguousMatch
	OutcomeParseFailed
	OutcomeMissingArgument
	OutcomePreconditionFailed
	OutcomeHandlerFailed
)

// Outcome is the terminal state of one dispatch.
type Outcome struct {
	Kind       OutcomeKind
	Command    *Command   // best-ranked candidate, when lookup succeeded
	Candidates []*Command // all overloads returned by Search
	Reason     string
	Err        error
}

// Dispatcher runs the per-message pipeline: prefix resolution, lookup,
// parameter binding, the precondition chain, handler invocation, and response
// classification. All collaborators are passed at construction.
type Dispatcher struct {
	gw        Gateway
	registry  *Registry
	store     *storage.Storage
	awaiter   *Awaiter
	responder *Responder

	prefixes     []string
	awaitTimeout time.Duration
}

func NewDispatcher(gw Gateway, reg *Registry, store *storage.Storage, prefixes []string, awaitTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		gw:           gw,
		registry:     reg,
		store:        store,
		awaiter:      NewAwaiter(),
		responder:    NewResponder(gw),
		prefixes:     prefixes,
		awaitTimeout: awaitTimeout,
	}
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch processes one inbound message. It is called synchronously from
// the gateway's message handler, which keeps messages from the same source in
// arrival order; only detached commands leave this call running in their own
// goroutine.
func (d *Dispatcher) Dispatch(m *discordgo.MessageCreate) Outcome {
	if m.Author == nil || m.Author.Bot {
		return Outcome{Kind: OutcomeNoInvocation}
	}
	if bot := d.gw.BotUser(); bot != nil && m.Author.ID == bot.ID {
		return Outcome{Kind: OutcomeNoInvocation}
	}

	// An in-progress interactive session awaiting this exact (user, channel)
	// pair consumes the message before it can be read as a new command.
	if d.awaiter.Offer(m) {
		return Outcome{Kind: OutcomeNoInvocation}
	}

	var server *storage.ServerConfig
	var serverPrefixes []string
	if m.GuildID != "" {
		cfg, err := d.store.Server(m.GuildID)
		if err != nil {
			log.Printf("[ERR] Failed to load config for guild %s: %v", m.GuildID, err)
		} else {
			server = cfg
			serverPrefixes = cfg.Prefixes
			if !cfg.ChannelAllowed(m.ChannelID) {
				return Outcome{Kind: OutcomeNoInvocation}
			}
		}
	}

	var mentions []string
	if bot := d.gw.BotUser(); bot != nil {
		mentions = MentionTokens(bot.ID)
	}
	offset := ResolvePrefix(m.Content, mentions, d.prefixes, serverPrefixes)
	if offset < 0 {
		return Outcome{Kind: OutcomeNoInvocation}
	}
	prefix := m.Content[:offset]

	text := strings.TrimLeft(m.Content[offset:], "\n ")
	tokens := SplitArgs(text)
	if len(tokens) == 0 {
		return Outcome{Kind: OutcomeUnknownCommand}
	}

	candidates, args := d.lookup(tokens)
	if len(candidates) == 0 {
		// Silent: most unresolved tokens are conversational noise.
		return Outcome{Kind: OutcomeUnknownCommand}
	}
	if server != nil {
		candidates = filterDisabled(candidates, server)
		if len(candidates) == 0 {
			return Outcome{Kind: OutcomeUnknownCommand}
		}
	}

	ctx := &Context{
		Gateway:      d.gw,
		Store:        d.store,
		Msg:          m,
		Server:       server,
		Prefix:       prefix,
		Send:         d.responder.Send,
		Awaiter:      d.awaiter,
		AwaitTimeout: d.awaitTimeout,
	}

	out := d.run(ctx, candidates, args)
	if out.Kind != OutcomeSuccess {
		d.responder.Respond(ctx, out)
	}
	return out
}

// lookup tries the two-token group name first ("tag add"), then the single
// token, and returns the matched overloads plus the remaining argument tokens.
func (d *Dispatcher) lookup(tokens []string) ([]*Command, []string) {
	if len(tokens) >= 2 {
		if cands := d.registry.Search(tokens[0] + " " + tokens[1]); len(cands) > 0 {
			return cands, tokens[2:]
		}
	}
	return d.registry.Search(tokens[0]), tokens[1:]
}

func filterDisabled(cands []*Command, server *storage.ServerConfig) []*Command {
	out := cands[:0:0]
	for _, c := range cands {
		if !server.CategoryDisabled(c.Category) {
			out = append(out, c)
		}
	}
	return out
}

// run binds, authorizes, and invokes against the ranked candidate list.
func (d *Dispatcher) run(ctx *Context, candidates []*Command, args []string) Outcome {
	var (
		chosen     *Command
		bound      []Value
		failures   []*bindFailure
		structural int
	)
	for _, cand := range candidates {
		values, fail := bind(ctx.Gateway, ctx.GuildID(), cand, args)
		if fail == nil {
			if chosen == nil {
				chosen, bound = cand, values
			}
			continue
		}
		if fail.structural {
			structural++
		}
		failures = append(failures, fail)
	}

	if chosen == nil {
		out := Outcome{Command: candidates[0], Candidates: candidates}
		switch {
		case structural > 1:
			// Several overloads fit the arity but none parsed; resolved
			// internally, never surfaced.
			out.Kind = OutcomeAmbiguousMatch
		case anyKind(failures, bindParseFailed):
			out.Kind = OutcomeParseFailed
			out.Reason = firstReason(failures, bindParseFailed)
		default:
			out.Kind = OutcomeMissingArgument
			out.Reason = firstReason(failures, bindMissingArgument)
		}
		return out
	}

	ctx.Command = chosen
	ctx.Args = bound

	if r := RunChecks(chosen, ctx); !r.OK {
		return Outcome{Kind: OutcomePreconditionFailed, Command: chosen, Candidates: candidates, Reason: r.Reason}
	}

	if chosen.Detached {
		go func() {
			if out := d.invoke(ctx, chosen); out.Kind != OutcomeSuccess {
				d.responder.Respond(ctx, out)
			}
		}()
		return Outcome{Kind: OutcomeSuccess, Command: chosen, Candidates: candidates}
	}
	out := d.invoke(ctx, chosen)
	out.Candidates = candidates
	return out
}

// invoke is the single place handler faults are caught; they never propagate
// past the dispatcher.
func (d *Dispatcher) invoke(ctx *Context, cmd *Command) (out Outcome) {
	out = Outcome{Kind: OutcomeSuccess, Command: cmd}
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: OutcomeHandlerFailed, Command: cmd, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := cmd.Run(ctx); err != nil {
		return Outcome{Kind: OutcomeHandlerFailed, Command: cmd, Err: err}
	}
	return out
}

func anyKind(fails []*bindFailure, kind bindFailKind) bool {
	for _, f := range fails {
		if f.kind == kind {
			return true
		}
	}
	return false
}

func firstReason(fails []*bindFailure, kind bindFailKind) string {
	for _, f := range fails {
		if f.kind == kind {
			return f.reason
		}
	}
	if len(fails) > 0 {
		return fails[0].reason
	}
	return ""
}
