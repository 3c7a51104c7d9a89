// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

// ChannelPolicy controls which channels the bot listens in. At most one of
// whitelist/blacklist is active at a time.
type ChannelPolicy string

const (
	PolicyNone      ChannelPolicy = "none"
	PolicyWhitelist ChannelPolicy = "whitelist"
	PolicyBlacklist ChannelPolicy = "blacklist"
)

type Tag struct {
	Name      string    `json:"name"`
	AuthorID  string    `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ServerConfig is the per-guild record. Handlers mutate it through
// Storage.Update; a copy loaded via Storage.Server is valid for one dispatch.
type ServerConfig struct {
	Prefixes           []string       `json:"prefixes"`
	Policy             ChannelPolicy  `json:"channel_policy"`
	Whitelist          []string       `json:"whitelist"`
	Blacklist          []string       `json:"blacklist"`
	DisabledCategories []string       `json:"disabled_categories"`
	Tags               map[string]Tag `json:"tags"`
}

// ChannelAllowed reports whether messages from the given channel should be
// dispatched under the current policy.
func (c *ServerConfig) ChannelAllowed(channelID string) bool {
	switch c.Policy {
	case PolicyWhitelist:
		return contains(c.Whitelist, channelID)
	case PolicyBlacklist:
		return !contains(c.Blacklist, channelID)
	}
	return true
}

func (c *ServerConfig) CategoryDisabled(category string) bool {
	return contains(c.DisabledCategories, category)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type Storage struct {
	ds *datastore.DataStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-guild write locks
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds, locks: map[string]*sync.Mutex{}}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) guildLock(guildID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[guildID] = l
	}
	return l
}

// load materializes a guild record, creating a default one if none exists.
func (s *Storage) load(guildID string) (*ServerConfig, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		return defaultConfig(), nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var cfg ServerConfig
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *ServerConfig: %w", err)
	}

	if cfg.Tags == nil {
		cfg.Tags = map[string]Tag{}
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyNone
	}
	return &cfg, nil
}

func defaultConfig() *ServerConfig {
	return &ServerConfig{
		Policy: PolicyNone,
		Tags:   map[string]Tag{},
	}
}

// Server returns a snapshot of the guild's config. Missing records yield a
// default config without persisting it.
func (s *Storage) Server(guildID string) (*ServerConfig, error) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()
	return s.load(guildID)
}

// Update runs fn under the guild's write lock on a freshly loaded record and
// persists the result. Read-modify-write sequences (tag rename and friends)
// must go through here.
func (s *Storage) Update(guildID string, fn func(*ServerConfig) error) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.load(guildID)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	s.ds.Add(guildID, cfg)
	return nil
}
