// Package general holds the information commands: ping, info, serverinfo,
// and help.
package general

import "vassal/internal/core"

// Commands returns the general command set in registration order.
func Commands(reg *core.Registry) []*core.Command {
	cmds := []*core.Command{
		pingCommand(),
		infoCommand(),
		serverInfoCommand(),
	}
	return append(cmds, helpCommands(reg)...)
}
