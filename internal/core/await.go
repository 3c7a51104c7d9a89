package core

import (
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrAwaitTimeout = errors.New("timed out waiting for a reply")
	ErrAwaitActive  = errors.New("already waiting for a reply from this user here")
)

// Awaiter lets a detached command claim the very next message a (user,
// channel) pair sends. The dispatcher offers every inbound message here
// before normal dispatch, so a claimed message never re-enters lookup.
type Awaiter struct {
	mu    sync.Mutex
	waits map[string]chan *discordgo.MessageCreate
}

func NewAwaiter() *Awaiter {
	return &Awaiter{waits: map[string]chan *discordgo.MessageCreate{}}
}

func awaitKey(userID, channelID string) string {
	return userID + "/" + channelID
}

// Offer routes m to a pending wait and reports whether it was consumed.
func (a *Awaiter) Offer(m *discordgo.MessageCreate) bool {
	if m.Author == nil {
		return false
	}
	k := awaitKey(m.Author.ID, m.ChannelID)
	a.mu.Lock()
	ch, ok := a.waits[k]
	if ok {
		delete(a.waits, k)
	}
	a.mu.Unlock()
	if !ok {
		return false
	}
	ch <- m // buffered; the wait was removed from the map, so this never blocks
	return true
}

// Await blocks until the pair's next message arrives or timeout expires. Only
// one wait per pair may be active.
func (a *Awaiter) Await(userID, channelID string, timeout time.Duration) (*discordgo.MessageCreate, error) {
	k := awaitKey(userID, channelID)
	ch := make(chan *discordgo.MessageCreate, 1)

	a.mu.Lock()
	if _, exists := a.waits[k]; exists {
		a.mu.Unlock()
		return nil, ErrAwaitActive
	}
	a.waits[k] = ch
	a.mu.Unlock()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case m := <-ch:
		return m, nil
	case <-t.C:
		if m := a.cancel(k, ch); m != nil {
			return m, nil
		}
		return nil, ErrAwaitTimeout
	}
}

// cancel withdraws a wait; a message that raced in wins over the timeout.
func (a *Awaiter) cancel(k string, ch chan *discordgo.MessageCreate) *discordgo.MessageCreate {
	a.mu.Lock()
	if cur, ok := a.waits[k]; ok && cur == ch {
		delete(a.waits, k)
	}
	a.mu.Unlock()
	select {
	case m := <-ch:
		return m
	default:
		return nil
	}
}
