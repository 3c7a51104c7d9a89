package tag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vassal/internal/core"
	"vassal/internal/storage"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var errNotYours = errors.New("tag owned by a higher-ranked member")

const notYoursReason = "You can only change tags owned by you or by lower-ranked members"

func lookupTag(cfg *storage.ServerConfig, name string) (storage.Tag, bool) {
	if cfg == nil {
		return storage.Tag{}, false
	}
	if t, ok := cfg.Tags[name]; ok {
		return t, true
	}
	// tags are stored under their exact name; fall back to a case-insensitive scan
	for k, t := range cfg.Tags {
		if strings.EqualFold(k, name) {
			return t, true
		}
	}
	return storage.Tag{}, false
}

// canModify applies the ownership rule: the author may always modify their
// tag, anyone else needs a strictly higher hierarchy than the author.
func canModify(ctx *core.Context, t storage.Tag) bool {
	if t.AuthorID == ctx.Author().ID {
		return true
	}
	author, err := ctx.Gateway.Member(ctx.GuildID(), t.AuthorID)
	if err != nil || author == nil {
		// author left the server; the tag is up for grabs
		return true
	}
	guild, err := ctx.Gateway.Guild(ctx.GuildID())
	if err != nil {
		return false
	}
	invoker, err := ctx.Gateway.Member(ctx.GuildID(), ctx.Author().ID)
	if err != nil {
		return false
	}
	return core.Hierarchy(guild, author) < core.Hierarchy(guild, invoker)
}

// upsertTag creates the tag or, permissions permitting, replaces its message.
func upsertTag(ctx *core.Context, name, message string) error {
	created := false
	err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
		t, ok := lookupTag(cfg, name)
		if ok {
			if !canModify(ctx, t) {
				return errNotYours
			}
			t.AuthorID = ctx.Author().ID
			t.Message = message
		} else {
			created = true
			t = storage.Tag{
				Name:      name,
				AuthorID:  ctx.Author().ID,
				Message:   message,
				CreatedAt: time.Now(),
			}
		}
		cfg.Tags[t.Name] = t
		return nil
	})
	if errors.Is(err, errNotYours) {
		return ctx.ReplyEmbed("Missing Permissions", notYoursReason)
	}
	if err != nil {
		return err
	}
	if created {
		return ctx.ReplyEmbed("Tag Added", fmt.Sprintf("Added the tag `%s`", name))
	}
	return ctx.ReplyEmbed("Tag Updated", fmt.Sprintf("Updated the message for the tag `%s`", name))
}

// editTag replaces an existing tag's message; unlike upsertTag it refuses to
// create one.
func editTag(ctx *core.Context, name, message string) error {
	err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
		t, ok := lookupTag(cfg, name)
		if !ok {
			return errNoTag
		}
		if !canModify(ctx, t) {
			return errNotYours
		}
		t.AuthorID = ctx.Author().ID
		t.Message = message
		cfg.Tags[t.Name] = t
		return nil
	})
	switch {
	case errors.Is(err, errNoTag):
		return ctx.ReplyEmbed("Tag Not Found", fmt.Sprintf("Couldn't find the tag `%s`", name))
	case errors.Is(err, errNotYours):
		return ctx.ReplyEmbed("Missing Permissions", notYoursReason)
	case err != nil:
		return err
	}
	return ctx.ReplyEmbed("Tag Updated", fmt.Sprintf("Updated the message for the tag `%s`", name))
}

var errNoTag = errors.New("tag not found")

// renameTag removes the old key and inserts the new one in a single
// serialized update, so a concurrent edit never sees a half-renamed map.
func renameTag(ctx *core.Context, name, newName string) error {
	err := ctx.Store.Update(ctx.GuildID(), func(cfg *storage.ServerConfig) error {
		t, ok := lookupTag(cfg, name)
		if !ok {
			return errNoTag
		}
		if !canModify(ctx, t) {
			return errNotYours
		}
		delete(cfg.Tags, t.Name)
		t.Name = newName
		t.AuthorID = ctx.Author().ID
		cfg.Tags[newName] = t
		return nil
	})
	switch {
	case errors.Is(err, errNoTag):
		return ctx.ReplyEmbed("Tag Not Found", fmt.Sprintf("Couldn't find the tag `%s`", name))
	case errors.Is(err, errNotYours):
		return ctx.ReplyEmbed("Missing Permissions", notYoursReason)
	case err != nil:
		return err
	}
	return ctx.ReplyEmbed("Tag Updated",
		fmt.Sprintf("Updated the name of the tag `%s` to `%s`", name, newName))
}

// ask prompts and waits for the invoking user's next message in this channel.
// Timeout and a literal "cancel" both abort.
func ask(ctx *core.Context, title, question string) (string, error) {
	if err := ctx.ReplyEmbed(title, question+" (Type `cancel` to stop)"); err != nil {
		return "", err
	}
	m, err := ctx.NextMessage()
	if err != nil {
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(m.Content), "cancel") {
		return "", errAskCancelled
	}
	return m.Content, nil
}

var errAskCancelled = errors.New("cancelled by user")

// cancelled reports the abort to the channel; timeouts and explicit cancels
// both end with a "Cancelled" card rather than an error.
func cancelled(ctx *core.Context, err error, text string) error {
	if errors.Is(err, errAskCancelled) || errors.Is(err, core.ErrAwaitTimeout) {
		return ctx.ReplyEmbed("Cancelled", text)
	}
	return err
}

func sortedTags(cfg *storage.ServerConfig) []storage.Tag {
	tags := make([]storage.Tag, 0, len(cfg.Tags))
	for _, t := range cfg.Tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// closestTags ranks existing tag names by edit distance for "did you mean"
// hints on a failed lookup.
func closestTags(cfg *storage.ServerConfig, name string, max int) []string {
	if cfg == nil || len(cfg.Tags) == 0 {
		return nil
	}
	dmp := diffmatchpatch.New()
	type ranked struct {
		name string
		dist int
	}
	list := make([]ranked, 0, len(cfg.Tags))
	for k := range cfg.Tags {
		diffs := dmp.DiffMain(strings.ToLower(name), strings.ToLower(k), false)
		list = append(list, ranked{name: k, dist: dmp.DiffLevenshtein(diffs)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].dist < list[j].dist })
	if max > len(list) {
		max = len(list)
	}
	out := make([]string, 0, max)
	for _, r := range list[:max] {
		out = append(out, r.name)
	}
	return out
}

func relativeAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "moments"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	}
}
