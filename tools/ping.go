package tools

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/tlv"
	"github.com/viatext/vtnode/std/log"
)

type PingClient struct {
	transport string
	interval  int
	timeout   int
	count     int

	nSent int
	nRecv int
	rtts  []time.Duration
}

func CmdPing() *cobra.Command {
	pc := PingClient{}

	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "ping",
		Short:   "Send PING frames to a running node",
		Args:    cobra.NoArgs,
		Example: `  vtnode ping -c 5
  vtnode ping --transport tcp://127.0.0.1:9796`,
		Run: pc.run,
	}

	cmd.Flags().StringVar(&pc.transport, "transport", ClientTransport(), "node address")
	cmd.Flags().IntVarP(&pc.interval, "interval", "i", 1000, "ping interval, in milliseconds")
	cmd.Flags().IntVarP(&pc.timeout, "timeout", "t", 2000, "timeout for each ping, in milliseconds")
	cmd.Flags().IntVarP(&pc.count, "count", "c", 0, "number of pings to send")
	return cmd
}

func (pc *PingClient) String() string {
	return "ping"
}

func (pc *PingClient) run(_ *cobra.Command, _ []string) {
	client, err := Dial(pc.transport)
	if err != nil {
		log.Fatal(pc, "Unable to connect to node", "transport", pc.transport, "err", err)
		return
	}
	defer client.Close()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("PING %s\n", pc.transport)
	defer pc.stats()

	ticker := time.NewTicker(time.Duration(pc.interval) * time.Millisecond)
	defer ticker.Stop()

	for pc.count == 0 || pc.nSent < pc.count {
		pc.once(client)

		if pc.count != 0 && pc.nSent >= pc.count {
			return
		}
		select {
		case <-ticker.C:
		case <-sigchan:
			return
		}
	}
}

func (pc *PingClient) once(client *Client) {
	t1 := time.Now()
	pc.nSent++
	frame, err := client.Request(defn.VerbPing, nil, time.Duration(pc.timeout)*time.Millisecond)
	if err != nil {
		fmt.Printf("no reply seq=%d: %v\n", pc.nSent, err)
		return
	}
	rtt := time.Since(t1)

	hdr, _ := defn.ParseHeader(frame)
	if hdr.Verb != defn.VerbRespOK {
		fmt.Printf("%s seq=%d\n", hdr.Verb, hdr.Seq)
		return
	}

	id, _ := tlv.Find(defn.Body(frame), defn.TagID)
	pc.nRecv++
	pc.rtts = append(pc.rtts, rtt)
	fmt.Printf("reply from %s: seq=%d time=%s\n", id, hdr.Seq, rtt)
}

func (pc *PingClient) stats() {
	fmt.Printf("\n--- %s ping statistics ---\n", pc.transport)
	loss := 0.0
	if pc.nSent > 0 {
		loss = float64(pc.nSent-pc.nRecv) / float64(pc.nSent) * 100
	}
	fmt.Printf("%d frames transmitted, %d received, %.1f%% loss\n", pc.nSent, pc.nRecv, loss)

	if len(pc.rtts) == 0 {
		return
	}
	lo, hi, sum := pc.rtts[0], pc.rtts[0], time.Duration(0)
	for _, r := range pc.rtts {
		lo, hi, sum = min(lo, r), max(hi, r), sum+r
	}
	fmt.Printf("rtt min/avg/max = %s/%s/%s\n", lo, sum/time.Duration(len(pc.rtts)), hi)
}
