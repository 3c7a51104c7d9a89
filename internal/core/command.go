package core

import (
	"errors"
	"strconv"
	"time"

	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0x5a2ea6

type ParamType int

const (
	TypeString ParamType = iota
	TypeInt
	TypeMember
)

// Param describes one declared parameter of a command.
type Param struct {
	Name     string
	Type     ParamType
	Optional bool
	// Remainder consumes the rest of the input as a single value.
	Remainder bool
	Checks    []ParamPrecondition
}

// Command is a single registered command definition. Immutable after
// Registry.Register; overloads share a name and differ in parameters.
type Command struct {
	Name     string
	Aliases  []string
	Group    string
	Category string
	Summary  string
	Params   []Param
	Checks   []Precondition
	// Priority breaks ties among overloads sharing a name; higher wins.
	Priority int
	// Detached commands run without blocking the dispatcher; they may await
	// further input from the same user and channel.
	Detached bool
	Run      func(ctx *Context) error

	seq int // registration order, set by the registry
}

// Value is one bound argument.
type Value struct {
	Raw    string
	Type   ParamType
	Int    int64
	Member *discordgo.Member
	// Set reports whether the argument was supplied (optional params may not be).
	Set bool
}

// Context bundles everything one invocation needs. It lives for the duration
// of a single dispatch; detached commands may hold it longer while awaiting
// replies.
type Context struct {
	Gateway Gateway
	Store   *storage.Storage
	Msg     *discordgo.MessageCreate
	// Server is the guild's config snapshot, nil outside a guild.
	Server  *storage.ServerConfig
	Command *Command
	Args    []Value
	// Prefix is the matched invocation prefix, kept for usage rendering.
	Prefix string

	Send         func(channelID string, embed *discordgo.MessageEmbed) error
	Awaiter      *Awaiter
	AwaitTimeout time.Duration
}

func (c *Context) GuildID() string   { return c.Msg.GuildID }
func (c *Context) ChannelID() string { return c.Msg.ChannelID }
func (c *Context) Author() *discordgo.User {
	return c.Msg.Author
}

// Str returns the i-th argument as text; empty if absent.
func (c *Context) Str(i int) string {
	if i >= len(c.Args) || !c.Args[i].Set {
		return ""
	}
	return c.Args[i].Raw
}

func (c *Context) Int(i int) int64 {
	if i >= len(c.Args) || !c.Args[i].Set {
		return 0
	}
	return c.Args[i].Int
}

func (c *Context) MemberArg(i int) *discordgo.Member {
	if i >= len(c.Args) {
		return nil
	}
	return c.Args[i].Member
}

func (c *Context) Has(i int) bool {
	return i < len(c.Args) && c.Args[i].Set
}

// Reply sends an embed to the originating channel.
func (c *Context) Reply(embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	return c.Send(c.Msg.ChannelID, embed)
}

// ReplyEmbed sends a title/description card to the originating channel.
func (c *Context) ReplyEmbed(title, description string) error {
	return c.Reply(&discordgo.MessageEmbed{
		Title:       title,
		Description: description,
	})
}

var ErrNoAwaiter = errors.New("no awaiter attached to this context")

// NextMessage blocks until the invoking user sends another message in the
// originating channel, or the await timeout expires.
func (c *Context) NextMessage() (*discordgo.MessageCreate, error) {
	if c.Awaiter == nil {
		return nil, ErrNoAwaiter
	}
	timeout := c.AwaitTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return c.Awaiter.Await(c.Msg.Author.ID, c.Msg.ChannelID, timeout)
}

func (t ParamType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeMember:
		return "member"
	default:
		return "string"
	}
}

func parseInt(raw string) (int64, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	return n, err == nil
}
