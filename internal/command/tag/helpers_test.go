package tag

import (
	"errors"
	"testing"
	"time"

	"vassal/internal/core"
	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway covers the lookups the ownership rule needs; everything else is
// inert.
type stubGateway struct {
	guild   *discordgo.Guild
	members map[string]*discordgo.Member
}

func (s *stubGateway) BotUser() *discordgo.User { return &discordgo.User{ID: "bot"} }
func (s *stubGateway) Guild(guildID string) (*discordgo.Guild, error) {
	if s.guild == nil {
		return nil, errors.New("guild not found")
	}
	return s.guild, nil
}
func (s *stubGateway) Channel(channelID string) (*discordgo.Channel, error) {
	return nil, errors.New("channel not found")
}
func (s *stubGateway) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, ok := s.members[userID]; ok {
		return m, nil
	}
	return nil, errors.New("member not found")
}
func (s *stubGateway) UserChannelPermissions(userID, channelID string) (int64, error) {
	return 0, nil
}
func (s *stubGateway) Owner() (string, error) { return "", errors.New("unresolved") }
func (s *stubGateway) GuildCount() int        { return 1 }
func (s *stubGateway) Latency() int64         { return 0 }
func (s *stubGateway) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	return nil
}
func (s *stubGateway) KickMember(guildID, userID, reason string) error { return nil }
func (s *stubGateway) BanMember(guildID, userID, reason string) error  { return nil }

func rankedGateway() *stubGateway {
	guild := &discordgo.Guild{
		ID: "g1",
		Roles: []*discordgo.Role{
			{ID: "high", Position: 20},
			{ID: "low", Position: 10},
		},
	}
	member := func(id string, roles ...string) *discordgo.Member {
		return &discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: id}, Roles: roles}
	}
	return &stubGateway{
		guild: guild,
		members: map[string]*discordgo.Member{
			"admin": member("admin", "high"),
			"mod":   member("mod", "low"),
			"pleb":  member("pleb"),
		},
	}
}

func tagContext(gw core.Gateway, userID string) *core.Context {
	return &core.Context{
		Gateway: gw,
		Msg: &discordgo.MessageCreate{
			Message: &discordgo.Message{
				Author:    &discordgo.User{ID: userID},
				ChannelID: "c1",
				GuildID:   "g1",
			},
		},
	}
}

func TestLookupTagCaseInsensitive(t *testing.T) {
	cfg := &storage.ServerConfig{Tags: map[string]storage.Tag{
		"Greet": {Name: "Greet", Message: "hello"},
	}}

	got, ok := lookupTag(cfg, "Greet")
	require.True(t, ok)
	assert.Equal(t, "hello", got.Message)

	got, ok = lookupTag(cfg, "greet")
	require.True(t, ok)
	assert.Equal(t, "hello", got.Message)

	_, ok = lookupTag(cfg, "nope")
	assert.False(t, ok)

	_, ok = lookupTag(nil, "greet")
	assert.False(t, ok)
}

func TestCanModify(t *testing.T) {
	gw := rankedGateway()
	owned := storage.Tag{Name: "x", AuthorID: "mod"}

	assert.True(t, canModify(tagContext(gw, "mod"), owned), "author edits their own tag")
	assert.True(t, canModify(tagContext(gw, "admin"), owned), "higher rank overrides")
	assert.False(t, canModify(tagContext(gw, "pleb"), owned), "lower rank may not")

	peer := storage.Tag{Name: "y", AuthorID: "admin"}
	assert.False(t, canModify(tagContext(gw, "mod"), peer), "equal-or-lower rank may not")

	orphan := storage.Tag{Name: "z", AuthorID: "gone"}
	assert.True(t, canModify(tagContext(gw, "pleb"), orphan), "departed author frees the tag")
}

func TestSortedTags(t *testing.T) {
	cfg := &storage.ServerConfig{Tags: map[string]storage.Tag{
		"zeta":  {Name: "zeta"},
		"alpha": {Name: "alpha"},
		"mid":   {Name: "mid"},
	}}
	tags := sortedTags(cfg)
	require.Len(t, tags, 3)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "mid", tags[1].Name)
	assert.Equal(t, "zeta", tags[2].Name)
}

func TestClosestTags(t *testing.T) {
	cfg := &storage.ServerConfig{Tags: map[string]storage.Tag{
		"greet":   {Name: "greet"},
		"rules":   {Name: "rules"},
		"welcome": {Name: "welcome"},
	}}

	got := closestTags(cfg, "gret", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "greet", got[0])

	assert.Len(t, closestTags(cfg, "x", 10), 3, "max is clamped to the tag count")
	assert.Nil(t, closestTags(nil, "x", 3))
}

func TestAskCancel(t *testing.T) {
	gw := rankedGateway()
	awaiter := core.NewAwaiter()
	var sent []*discordgo.MessageEmbed

	ctx := tagContext(gw, "mod")
	ctx.Awaiter = awaiter
	ctx.AwaitTimeout = time.Second
	ctx.Send = func(channelID string, embed *discordgo.MessageEmbed) error {
		sent = append(sent, embed)
		return nil
	}

	type reply struct {
		answer string
		err    error
	}
	got := make(chan reply, 1)
	go func() {
		answer, err := ask(ctx, "Make A New Tag", "What should be the name of the tag?")
		got <- reply{answer, err}
	}()

	// retry until ask's wait registers
	deadline := time.After(time.Second)
	for !awaiter.Offer(&discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{ID: "mod"}, ChannelID: "c1", Content: "cancel",
	}}) {
		select {
		case <-deadline:
			t.Fatal("wait never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	r := <-got
	require.ErrorIs(t, r.err, errAskCancelled)

	// the session ends with one "Cancelled" card and nothing else
	require.NoError(t, cancelled(ctx, r.err, "Cancelled the tag creation"))
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Description, "Type `cancel` to stop")
	assert.Equal(t, "Cancelled", sent[1].Title)
	assert.Equal(t, "Cancelled the tag creation", sent[1].Description)
}

func TestCancelledMapsTimeouts(t *testing.T) {
	gw := rankedGateway()
	var sent []*discordgo.MessageEmbed
	ctx := tagContext(gw, "mod")
	ctx.Send = func(channelID string, embed *discordgo.MessageEmbed) error {
		sent = append(sent, embed)
		return nil
	}

	require.NoError(t, cancelled(ctx, core.ErrAwaitTimeout, "Cancelled the tag editing"))
	require.Len(t, sent, 1)
	assert.Equal(t, "Cancelled", sent[0].Title)

	// unrelated errors pass through untouched
	err := errors.New("boom")
	assert.ErrorIs(t, cancelled(ctx, err, "x"), err)
	assert.Len(t, sent, 1)
}

func TestRelativeAge(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "moments", relativeAge(now.Add(-10*time.Second)))
	assert.Equal(t, "5 minutes", relativeAge(now.Add(-5*time.Minute)))
	assert.Equal(t, "3 hours", relativeAge(now.Add(-3*time.Hour)))
	assert.Equal(t, "2 days", relativeAge(now.Add(-49*time.Hour)))
}
