package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viatext/vtnode/node/core"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/std/log"
	"github.com/viatext/vtnode/std/utils"
	"github.com/viatext/vtnode/std/utils/toolutils"
)

var cpuProfile, memProfile string

var CmdNode = &cobra.Command{
	Use:     "run CONFIG-FILE",
	Short:   "Start the ViaText node",
	GroupID: "run",
	Version: utils.Version,
	Args:    cobra.ExactArgs(1),
	Run:     run,
}

var CmdShow = &cobra.Command{
	Use:     "show CONFIG-FILE",
	Short:   "Print the fields a node would start with",
	Long: `Print the fields a node would start with.
Persisted values are read from the configured store; the node must not be running
when the store is a badger directory.`,
	GroupID: "run",
	Args:    cobra.ExactArgs(1),
	Run:     show,
}

func init() {
	CmdNode.Flags().StringVar(&cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	CmdNode.Flags().StringVar(&memProfile, "mem-profile", "", "Write memory profile to file")
}

func loadConfig(file string) *core.Config {
	config, err := core.LoadConfig(file)
	if err != nil {
		log.Fatal(nil, "Unable to load configuration", "file", file, "err", err)
	}
	return config
}

func run(_ *cobra.Command, args []string) {
	config := loadConfig(args[0])
	config.Core.CpuProfile = cpuProfile
	config.Core.MemProfile = memProfile

	if err := core.OpenLogger(config); err != nil {
		log.Fatal(nil, "Unable to open logger", "err", err)
	}
	defer core.CloseLogger()

	node, err := NewNode(config)
	if err != nil {
		log.Fatal(nil, "Unable to create node", "err", err)
	}
	if err := node.Start(); err != nil {
		node.Stop()
		log.Fatal(node, "Unable to start node", "err", err)
	}

	// set up signal handler channel and wait for interrupt
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-sigChannel
	log.Info(node, "Received signal - exit", "signal", receivedSig)

	node.Stop()
}

func show(_ *cobra.Command, args []string) {
	config := loadConfig(args[0])

	registry, persister, err := newRegistry(config, newProbe(config))
	if err != nil {
		log.Fatal(nil, "Unable to build fields", "err", err)
	}
	opened := persister.Load()
	persister.Close()

	fmt.Printf("Node fields (store=%s, opened=%t):\n", config.Storage.Backend, opened)
	sp := toolutils.StatusPrinter{File: os.Stdout, Padding: 14}
	for _, tag := range append([]defn.Tag{defn.TagFwVersion}, defn.AllTags...) {
		f, _ := registry.Lookup(tag)
		v, _ := registry.Get(tag)
		sp.Print(tag.String(), f.Format(v))
	}
}
