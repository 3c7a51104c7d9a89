package discord

import (
	"context"
	"fmt"
	"log"

	"vassal/internal/config"
	"vassal/internal/core"
	"vassal/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// Bot wires the discord session, the gateway adapter, and the dispatch core.
type Bot struct {
	dg         *discordgo.Session
	gw         *gateway
	dispatcher *core.Dispatcher
	cfg        *config.Config
}

func NewBot(cfg *config.Config, store *storage.Storage, reg *core.Registry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	// discordgo runs each handler on its own goroutine unless SyncEvents is
	// set. Handlers must run on the event loop so messages from one source
	// keep arrival order; detached commands schedule their own work.
	dg.SyncEvents = true

	gw := newGateway(dg)
	b := &Bot{
		dg:         dg,
		gw:         gw,
		dispatcher: core.NewDispatcher(gw, reg, store, cfg.Prefixes, cfg.AwaitTimeout),
		cfg:        cfg,
	}
	return b, nil
}

// Run opens the session and blocks until the context is canceled. In-flight
// handlers are left to finish or fail naturally on shutdown.
func (b *Bot) Run(ctx context.Context) error {
	b.configureIntents()
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.gw.resolveOwner()
	log.Printf("[INFO] Logged in as %s, serving %d guilds", r.User.Username, len(r.Guilds))
}

// onMessageCreate feeds every inbound message through the dispatcher. The
// handler runs synchronously so messages from one source keep arrival order;
// detached commands are scheduled by the dispatcher itself.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	b.dispatcher.Dispatch(m)
}
