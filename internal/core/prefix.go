package core

import "strings"

// ResolvePrefix decides whether content starts a command invocation and where
// the command text begins. Order: bot mention (exact, case-sensitive), then
// global prefixes, then server prefixes, each case-insensitive, first match
// wins. Returns -1 when nothing matches; most channel traffic is not a
// command and the pipeline halts silently.
func ResolvePrefix(content string, mentions, global, server []string) int {
	for _, m := range mentions {
		if m != "" && strings.HasPrefix(content, m) {
			return len(m)
		}
	}
	for _, p := range global {
		if n := matchPrefix(content, p); n > 0 {
			return n
		}
	}
	for _, p := range server {
		if n := matchPrefix(content, p); n > 0 {
			return n
		}
	}
	return -1
}

func matchPrefix(content, prefix string) int {
	if prefix == "" || len(content) < len(prefix) {
		return 0
	}
	if strings.EqualFold(content[:len(prefix)], prefix) {
		return len(prefix)
	}
	return 0
}

// MentionTokens returns the mention spellings for a user ID; Discord renders
// mentions either with or without the nickname bang.
func MentionTokens(userID string) []string {
	if userID == "" {
		return nil
	}
	return []string{"<@" + userID + ">", "<@!" + userID + ">"}
}
