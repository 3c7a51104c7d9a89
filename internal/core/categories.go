package core

import "strings"

// Command categories. Servers can disable whole categories; disabled ones are
// skipped during lookup and hidden from help.
const (
	CategoryGeneral    = "general"
	CategoryModeration = "moderation"
	CategorySettings   = "settings"
)

// Categories lists known categories in display order.
func Categories() []string {
	return []string{CategoryGeneral, CategoryModeration, CategorySettings}
}

// KnownCategory reports whether name is a registered category, ignoring case.
func KnownCategory(name string) (string, bool) {
	for _, c := range Categories() {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
