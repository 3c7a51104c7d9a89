// Package command assembles the command catalog. Registration order matters:
// it breaks disambiguation ties between overloads of equal priority.
package command

import (
	"vassal/internal/command/general"
	"vassal/internal/command/mod"
	"vassal/internal/command/settings"
	"vassal/internal/command/tag"
	"vassal/internal/core"
)

// RegisterAll builds the full catalog into reg. Any error here is a
// configuration error and fatal at startup.
func RegisterAll(reg *core.Registry) error {
	var all []*core.Command
	all = append(all, general.Commands(reg)...)
	all = append(all, tag.Commands()...)
	all = append(all, mod.Commands()...)
	all = append(all, settings.Commands()...)

	for _, c := range all {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
