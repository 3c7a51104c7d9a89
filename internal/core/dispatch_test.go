package core

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDispatcher(t *testing.T, gw Gateway, cmds ...*Command) (*Dispatcher, *storage.Storage) {
	t.Helper()
	reg := NewRegistry()
	for _, c := range cmds {
		require.NoError(t, reg.Register(c))
	}
	store := testStore(t)
	return NewDispatcher(gw, reg, store, []string{"v!"}, time.Second), store
}

func pingCommand() *Command {
	return &Command{
		Name:     "ping",
		Category: CategoryGeneral,
		Run: func(ctx *Context) error {
			return ctx.ReplyEmbed("Pong!", "")
		},
	}
}

func TestDispatchIgnoresBotsAndSelf(t *testing.T) {
	gw := newFakeGateway()
	d, _ := testDispatcher(t, gw, pingCommand())

	m := message("u1", "c1", "g1", "v!ping")
	m.Author.Bot = true
	assert.Equal(t, OutcomeNoInvocation, d.Dispatch(m).Kind)

	// the bot's own messages are dropped even without the Bot flag
	assert.Equal(t, OutcomeNoInvocation, d.Dispatch(message("bot", "c1", "g1", "v!ping")).Kind)
	assert.Equal(t, 0, gw.sentCount())
}

func TestDispatchNoPrefixIsSilent(t *testing.T) {
	gw := newFakeGateway()
	d, _ := testDispatcher(t, gw, pingCommand())

	assert.Equal(t, OutcomeNoInvocation, d.Dispatch(message("u1", "c1", "g1", "hello there")).Kind)
	assert.Equal(t, 0, gw.sentCount())
}

func TestDispatchUnknownCommandIsSilent(t *testing.T) {
	gw := newFakeGateway()
	d, _ := testDispatcher(t, gw, pingCommand())

	out := d.Dispatch(message("u1", "c1", "g1", "v!xyzzy"))
	assert.Equal(t, OutcomeUnknownCommand, out.Kind)
	assert.Equal(t, 0, gw.sentCount())
}

func TestDispatchRunsCommand(t *testing.T) {
	gw := newFakeGateway()
	d, _ := testDispatcher(t, gw, pingCommand())

	out := d.Dispatch(message("u1", "c1", "g1", "v!ping"))
	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, []string{"Pong!"}, gw.sentTitles())
}

func TestDispatchMentionPrefix(t *testing.T) {
	gw := newFakeGateway()
	d, _ := testDispatcher(t, gw, pingCommand())

	out := d.Dispatch(message("u1", "c1", "g1", "<@bot> ping"))
	assert.Equal(t, OutcomeSuccess, out.Kind)
}

func TestDispatchServerPrefix(t *testing.T) {
	gw := newFakeGateway()
	d, store := testDispatcher(t, gw, pingCommand())
	require.NoError(t, store.Update("g1", func(c *storage.ServerConfig) error {
		c.Prefixes = []string{"??"}
		return nil
	}))

	assert.Equal(t, OutcomeSuccess, d.Dispatch(message("u1", "c1", "g1", "??ping")).Kind)
	// the server prefix belongs to g1 only
	assert.Equal(t, OutcomeNoInvocation, d.Dispatch(message("u1", "c9", "g2", "??ping")).Kind)
}

func TestDispatchChannelWhitelist(t *testing.T) {
	gw := newFakeGateway()
	d, store := testDispatcher(t, gw, pingCommand())
	require.NoError(t, store.Update("g1", func(c *storage.ServerConfig) error {
		c.Policy = storage.PolicyWhitelist
		c.Whitelist = []string{"c1"}
		return nil
	}))

	assert.Equal(t, OutcomeSuccess, d.Dispatch(message("u1", "c1", "g1", "v!ping")).Kind)

	out := d.Dispatch(message("u1", "c2", "g1", "v!ping"))
	assert.Equal(t, OutcomeNoInvocation, out.Kind)
	assert.Equal(t, 1, gw.sentCount(), "gated channel gets no reply at all")
}

func TestDispatchDisabledCategory(t *testing.T) {
	gw := newFakeGateway()
	d, store := testDispatcher(t, gw, pingCommand())
	require.NoError(t, store.Update("g1", func(c *storage.ServerConfig) error {
		c.DisabledCategories = []string{CategoryGeneral}
		return nil
	}))

	out := d.Dispatch(message("u1", "c1", "g1", "v!ping"))
	assert.Equal(t, OutcomeUnknownCommand, out.Kind)
	assert.Equal(t, 0, gw.sentCount())
}

func TestDispatchPreconditionFailure(t *testing.T) {
	gw := newFakeGateway()
	cmd := pingCommand()
	cmd.Checks = []Precondition{RequireServer{}}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "dm1", "", "v!ping"))
	require.Equal(t, OutcomePreconditionFailed, out.Kind)
	last := gw.lastEmbed()
	require.NotNil(t, last)
	assert.Equal(t, "Unmet Precondition", last.Title)
	assert.Equal(t, serverOnlyReason, last.Description)
}

func TestDispatchManageGuildRequired(t *testing.T) {
	gw := newFakeGateway()
	cmd := &Command{
		Name:   "prefix add",
		Checks: []Precondition{RequireUserPermission{Guild: discordgo.PermissionManageGuild}},
		Params: []Param{{Name: "prefix", Type: TypeString}},
		Run:    func(ctx *Context) error { return nil },
	}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "c1", "g1", "v!prefix add ??"))
	require.Equal(t, OutcomePreconditionFailed, out.Kind)
	assert.Contains(t, out.Reason, "Manage Server")
	last := gw.lastEmbed()
	require.NotNil(t, last)
	assert.Equal(t, "Unmet Precondition", last.Title)
	assert.Contains(t, last.Description, "Manage Server")

	gw.perms["u1/c1"] = discordgo.PermissionManageGuild
	assert.Equal(t, OutcomeSuccess, d.Dispatch(message("u1", "c1", "g1", "v!prefix add ??")).Kind)
}

func TestDispatchHandlerError(t *testing.T) {
	gw := newFakeGateway()
	cmd := &Command{Name: "boom", Run: func(ctx *Context) error { return errors.New("kaput") }}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "c1", "g1", "v!boom"))
	require.Equal(t, OutcomeHandlerFailed, out.Kind)
	last := gw.lastEmbed()
	require.NotNil(t, last)
	assert.Equal(t, "Internal Error", last.Title)
	assert.Equal(t, "An internal error has occurred! :(", last.Description)
}

func TestDispatchHandlerPanicIsContained(t *testing.T) {
	gw := newFakeGateway()
	cmd := &Command{Name: "boom", Run: func(ctx *Context) error { panic("kaput") }}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "c1", "g1", "v!boom"))
	require.Equal(t, OutcomeHandlerFailed, out.Kind)
	assert.Equal(t, "Internal Error", gw.lastEmbed().Title)
}

func TestDispatchMissingArgumentShowsUsage(t *testing.T) {
	gw := newFakeGateway()
	cmd := &Command{
		Name:   "tag add",
		Params: []Param{{Name: "name", Type: TypeString}, {Name: "message", Type: TypeString, Remainder: true}},
		Run:    func(ctx *Context) error { return nil },
	}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "c1", "g1", "v!tag add"))
	require.Equal(t, OutcomeMissingArgument, out.Kind)
	last := gw.lastEmbed()
	require.NotNil(t, last)
	assert.Equal(t, "Tag Add Command Usage", last.Title)
	assert.Contains(t, last.Description, "`v!tag add <name> <message>`")
}

func TestDispatchUsageHiddenFromUnauthorized(t *testing.T) {
	gw := newFakeGateway()
	cmd := &Command{
		Name:   "kick",
		Checks: []Precondition{RequireUserPermission{Guild: discordgo.PermissionKickMembers}},
		Params: []Param{{Name: "member", Type: TypeMember}},
		Run:    func(ctx *Context) error { return nil },
	}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "c1", "g1", "v!kick"))
	require.Equal(t, OutcomeMissingArgument, out.Kind)
	last := gw.lastEmbed()
	require.NotNil(t, last)
	assert.Equal(t, "Missing Permissions", last.Title)
	assert.NotContains(t, last.Description, "kick <member>")
}

func TestDispatchOverloadSelection(t *testing.T) {
	gw := newFakeGateway()
	var hit string
	specific := &Command{
		Name:     "roll",
		Priority: 1,
		Params:   []Param{{Name: "sides", Type: TypeInt}},
		Run:      func(ctx *Context) error { hit = "int"; return nil },
	}
	fallback := &Command{
		Name:     "roll",
		Priority: -1,
		Params:   []Param{{Name: "what", Type: TypeString}},
		Run:      func(ctx *Context) error { hit = "string"; return nil },
	}
	d, _ := testDispatcher(t, gw, specific, fallback)

	require.Equal(t, OutcomeSuccess, d.Dispatch(message("u1", "c1", "g1", "v!roll 20")).Kind)
	assert.Equal(t, "int", hit)

	require.Equal(t, OutcomeSuccess, d.Dispatch(message("u1", "c1", "g1", "v!roll dice")).Kind)
	assert.Equal(t, "string", hit)
}

func TestDispatchAmbiguousOverloadsStaySilent(t *testing.T) {
	gw := newFakeGateway()
	a := &Command{
		Name:   "when",
		Params: []Param{{Name: "day", Type: TypeInt}},
		Run:    func(ctx *Context) error { return nil },
	}
	b := &Command{
		Name:     "when",
		Priority: -1,
		Params:   []Param{{Name: "hour", Type: TypeInt}},
		Run:      func(ctx *Context) error { return nil },
	}
	d, _ := testDispatcher(t, gw, a, b)

	out := d.Dispatch(message("u1", "c1", "g1", "v!when soon"))
	assert.Equal(t, OutcomeAmbiguousMatch, out.Kind)
	assert.Equal(t, 0, gw.sentCount())
}

func TestDispatchDetachedAwaitsFollowUp(t *testing.T) {
	gw := newFakeGateway()
	got := make(chan string, 1)
	cmd := &Command{
		Name:     "echo",
		Detached: true,
		Run: func(ctx *Context) error {
			m, err := ctx.NextMessage()
			if err != nil {
				got <- "error: " + err.Error()
				return err
			}
			got <- m.Content
			return nil
		},
	}
	d, _ := testDispatcher(t, gw, cmd)

	out := d.Dispatch(message("u1", "c1", "g1", "v!echo"))
	require.Equal(t, OutcomeSuccess, out.Kind, "detached commands report success immediately")

	// A follow-up that would otherwise be an unknown command is consumed by
	// the pending wait instead. Retry until the handler's Await registers.
	deadline := time.After(time.Second)
	for {
		follow := d.Dispatch(message("u1", "c1", "g1", "v!later"))
		if follow.Kind == OutcomeNoInvocation {
			select {
			case content := <-got:
				assert.Equal(t, "v!later", content)
			case <-time.After(time.Second):
				t.Fatal("handler never received the follow-up")
			}
			return
		}
		require.Equal(t, OutcomeUnknownCommand, follow.Kind)
		select {
		case <-deadline:
			t.Fatal("await never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestDispatchConcurrentUsers(t *testing.T) {
	gw := newFakeGateway()
	d, _ := testDispatcher(t, gw, pingCommand())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		user := []string{"u1", "u2"}[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				d.Dispatch(message(user, "c1", "g1", "v!ping"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, gw.sentCount())
}
