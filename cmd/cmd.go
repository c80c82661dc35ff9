package cmd

import (
	"github.com/spf13/cobra"
	node "github.com/viatext/vtnode/node/cmd"
	"github.com/viatext/vtnode/std/utils"
	"github.com/viatext/vtnode/tools"
)

const banner = `
 __   ___       _____        _
 \ \ / (_) __ _|_   _|____ _| |_
  \ V /| |/ _  | | |/ _ \ \/ / __|
   \_/ |_|\__,_| |_|\___/>  <\__|
                        /_/\_\

ViaText LoRa Node
`

var CmdVtnode = &cobra.Command{
	Use:     "vtnode",
	Short:   "ViaText LoRa Node",
	Long:    banner[1:],
	Version: utils.Version,
}

func init() {
	cobra.EnableCommandSorting = false
	CmdVtnode.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdVtnode.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdVtnode.PersistentFlags().Lookup("help").Hidden = true

	CmdVtnode.AddGroup(&cobra.Group{ID: "run", Title: "Node Daemon"})
	CmdVtnode.AddCommand(node.CmdNode)
	CmdVtnode.AddCommand(node.CmdShow)

	CmdVtnode.AddGroup(&cobra.Group{ID: "tools", Title: "Client Tools"})
	CmdVtnode.AddCommand(tools.Cmds()...)
}
