package tools

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/node/tlv"
	"github.com/viatext/vtnode/std/log"
	"github.com/viatext/vtnode/std/utils/toolutils"
)

// Query holds the flags shared by the request tools.
type Query struct {
	transport string
	timeout   int
	// decodes reply values; never written
	fields *table.Registry
}

func newQuery(cmd *cobra.Command) *Query {
	q := &Query{fields: table.NewDefaultRegistry(table.StubProbe{})}
	cmd.Flags().StringVar(&q.transport, "transport", ClientTransport(), "node address")
	cmd.Flags().IntVarP(&q.timeout, "timeout", "t", 2000, "reply timeout, in milliseconds")
	return q
}

func (q *Query) String() string {
	return "query"
}

func CmdGet() *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "get [TAG...]",
		Short:   "Read fields from a running node",
		Long: `Read fields from a running node.
Without arguments every field is read with GET_ALL.`,
		Example: `  vtnode get
  vtnode get sf bw_hz 0x30`,
	}
	q := newQuery(cmd)
	cmd.Run = q.get
	return cmd
}

func CmdSet() *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "set TAG=VALUE...",
		Short:   "Change settable fields in one atomic SET_PARAM",
		Args:    cobra.MinimumNArgs(1),
		Example: `  vtnode set sf=10 freq_hz=868000000 alias=base`,
	}
	q := newQuery(cmd)
	cmd.Run = q.set
	return cmd
}

func CmdSetID() *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "set-id ID",
		Short:   "Assign a new node identity",
		Args:    cobra.ExactArgs(1),
		Example: `  vtnode set-id N30`,
	}
	q := newQuery(cmd)
	cmd.Run = q.setID
	return cmd
}

func CmdMsg() *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "msg TEXT",
		Short:   "Show a text message on the node",
		Args:    cobra.ExactArgs(1),
		Example: `  vtnode msg "hello mesh"`,
	}
	q := newQuery(cmd)
	cmd.Run = q.msg
	return cmd
}

func CmdWatch() *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "watch",
		Short:   "Print unsolicited frames broadcast by the node",
		Args:    cobra.NoArgs,
	}
	q := newQuery(cmd)
	cmd.Run = q.watch
	return cmd
}

func (q *Query) get(_ *cobra.Command, args []string) {
	if len(args) == 0 {
		q.exchange(defn.VerbGetAll, nil)
		return
	}

	payload := make([]byte, 0, len(args))
	for _, arg := range args {
		tag, ok := defn.ParseTag(arg)
		if !ok {
			log.Fatal(q, "Unknown tag", "tag", arg)
			return
		}
		payload = append(payload, byte(tag))
	}
	q.exchange(defn.VerbGetParam, payload)
}

func (q *Query) set(_ *cobra.Command, args []string) {
	payload, err := q.encodeAssignments(args)
	if err != nil {
		log.Fatal(q, "Invalid assignment", "err", err)
		return
	}
	q.exchange(defn.VerbSetParam, payload)
}

func (q *Query) setID(_ *cobra.Command, args []string) {
	payload, err := tlv.Append(nil, defn.TagID, []byte(args[0]))
	if err != nil {
		log.Fatal(q, "Invalid id", "err", err)
		return
	}
	q.exchange(defn.VerbSetID, payload)
}

func (q *Query) msg(_ *cobra.Command, args []string) {
	q.exchange(defn.VerbMsg, []byte(args[0]))
}

func (q *Query) watch(_ *cobra.Command, _ []string) {
	client := q.dial()
	defer client.Close()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case frame, ok := <-client.Frames():
			if !ok {
				return
			}
			q.print(os.Stdout, frame)
		case <-sigchan:
			return
		}
	}
}

func (q *Query) dial() *Client {
	client, err := Dial(q.transport)
	if err != nil {
		log.Fatal(q, "Unable to connect to node", "transport", q.transport, "err", err)
	}
	return client
}

func (q *Query) exchange(verb defn.Verb, payload []byte) {
	client := q.dial()
	defer client.Close()

	frame, err := client.Request(verb, payload, time.Duration(q.timeout)*time.Millisecond)
	if err != nil {
		log.Fatal(q, "Request failed", "verb", verb, "err", err)
		return
	}
	q.print(os.Stdout, frame)

	if hdr, _ := defn.ParseHeader(frame); hdr.Verb == defn.VerbRespErr {
		os.Exit(1)
	}
}

// encodeAssignments turns TAG=VALUE arguments into a SET_PARAM body.
func (q *Query) encodeAssignments(args []string) ([]byte, error) {
	var payload []byte
	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%q is not TAG=VALUE", arg)
		}
		tag, ok := defn.ParseTag(name)
		if !ok {
			return nil, fmt.Errorf("unknown tag %q", name)
		}
		field, ok := q.fields.Lookup(tag)
		if !ok {
			return nil, fmt.Errorf("unknown tag %q", name)
		}
		v, err := field.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		if payload, err = tlv.Append(payload, tag, field.Encode(v)); err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
	}
	return payload, nil
}

// print writes a frame as a header line followed by one line per field.
func (q *Query) print(w io.Writer, frame []byte) {
	hdr, err := defn.ParseHeader(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "%s seq=%d len=%d\n", hdr.Verb, hdr.Seq, hdr.TlvLen)

	if hdr.Verb == defn.VerbMsg {
		fmt.Fprintf(w, "  %q\n", defn.Payload(frame))
		return
	}

	sp := toolutils.StatusPrinter{File: w, Padding: 14}
	for tag, raw := range tlv.All(defn.Body(frame)) {
		field, ok := q.fields.Lookup(tag)
		if !ok {
			sp.Print(tag.String(), fmt.Sprintf("% x", raw))
			continue
		}
		v, err := field.Decode(raw)
		if err != nil {
			sp.Print(tag.String(), fmt.Sprintf("% x (%v)", raw, err))
			continue
		}
		sp.Print(tag.String(), field.Format(v))
	}
}
