// Package tools contains command line clients for a running node.
package tools

import "github.com/spf13/cobra"

// Cmds returns the client commands, all in the "tools" group.
func Cmds() []*cobra.Command {
	return []*cobra.Command{
		CmdPing(),
		CmdGet(),
		CmdSet(),
		CmdSetID(),
		CmdMsg(),
		CmdWatch(),
	}
}
