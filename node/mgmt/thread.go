// Package mgmt interprets inbound frames against the field registry and
// builds the replies.
package mgmt

import (
	"errors"
	"slices"
	"sync/atomic"

	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/display"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/node/tlv"
	"github.com/viatext/vtnode/std/log"
)

// MsgTitle heads every received text shown on the display.
const MsgTitle = "RX Msg:"

// Sender accepts complete outbound frames.
type Sender interface {
	Send(frame []byte)
}

// Saver makes the registry durable. Save reports whether it succeeded.
type Saver interface {
	Save() bool
}

// Counters are updated by the dispatch goroutine and safe to read anywhere.
type Counters struct {
	Frames  atomic.Uint64
	Dropped atomic.Uint64
	Errors  atomic.Uint64
}

type request struct {
	hdr   defn.Header
	frame []byte
	body  []byte
	out   Sender
}

type handler func(req *request)

// Dispatcher is stateless across frames. OnFrame must be called from a
// single goroutine.
type Dispatcher struct {
	reg       *table.Registry
	saver     Saver
	presenter display.Presenter
	broadcast Sender

	handlers map[defn.Verb]handler
	Counters Counters
}

func (d *Dispatcher) String() string {
	return "dispatch"
}

// NewDispatcher creates a dispatcher. saver and presenter may be nil.
// Unsolicited frames go to broadcast, or to the requesting sender if nil.
func NewDispatcher(reg *table.Registry, saver Saver, presenter display.Presenter, broadcast Sender) *Dispatcher {
	if presenter == nil {
		presenter = display.Null{}
	}

	d := &Dispatcher{
		reg:       reg,
		saver:     saver,
		presenter: presenter,
		broadcast: broadcast,
	}
	d.handlers = map[defn.Verb]handler{
		defn.VerbGetID:    d.onGetID,
		defn.VerbPing:     d.onGetID,
		defn.VerbSetID:    d.onSetID,
		defn.VerbGetParam: d.onGetParam,
		defn.VerbSetParam: d.onSetParam,
		defn.VerbGetAll:   d.onGetAll,
		defn.VerbMsg:      d.onMsg,
	}
	return d
}

// Registry returns the state the dispatcher operates on.
func (d *Dispatcher) Registry() *table.Registry {
	return d.reg
}

// OnFrame handles one deframed buffer and writes zero or more replies.
func (d *Dispatcher) OnFrame(frame []byte, out Sender) {
	hdr, err := defn.ParseHeader(frame)
	if err != nil {
		d.Counters.Dropped.Add(1)
		log.Debug(d, "Dropping short frame", "len", len(frame))
		return
	}
	d.Counters.Frames.Add(1)

	if log.HasTrace() {
		log.Trace(d, "Received frame", "verb", hdr.Verb, "seq", hdr.Seq, "tlv_len", hdr.TlvLen, "len", len(frame))
	}

	req := &request{
		hdr:   hdr,
		frame: frame,
		body:  defn.Body(frame),
		out:   out,
	}

	h, ok := d.handlers[hdr.Verb]
	if !ok {
		log.Debug(d, "Unknown verb", "verb", hdr.Verb, "seq", hdr.Seq)
		d.sendErr(req)
		return
	}
	h(req)
}

// SendHello broadcasts an unsolicited RESP_OK carrying the node id.
func (d *Dispatcher) SendHello() {
	d.sendHello(nil)
}

// SendText broadcasts an unsolicited MSG frame with a raw text payload.
// Text beyond the frame capacity is cut.
func (d *Dispatcher) SendText(text string) {
	payload := []byte(text)
	if len(payload) > defn.MaxBodyLen {
		payload = payload[:defn.MaxBodyLen]
	}
	b := Begin(defn.VerbMsg, defn.SeqUnsolicited)
	b.AppendRaw(payload)
	d.unsolicited(nil).Send(b.Finish())
}

func (d *Dispatcher) onGetID(req *request) {
	b := Begin(defn.VerbRespOK, req.hdr.Seq)
	b.AppendField(d.reg, defn.TagID)
	d.reply(req, b)
}

func (d *Dispatcher) onSetID(req *request) {
	value, ok := tlv.Find(req.body, defn.TagID)
	if !ok || len(value) == 0 {
		log.Debug(d, "SET_ID without id", "seq", req.hdr.Seq)
		d.sendErr(req)
		return
	}
	if err := d.reg.Write(defn.TagID, value); err != nil {
		log.Info(d, "Rejected node id", "err", err)
		d.sendErr(req)
		return
	}

	id := d.reg.ID()
	log.Info(d, "Node id changed", "id", id)
	d.save()
	d.presenter.IdentityChanged(id)

	d.onGetID(req)
	d.sendHello(req.out)
}

func (d *Dispatcher) onGetParam(req *request) {
	b := Begin(defn.VerbRespOK, req.hdr.Seq)
	for tag, value := range tlv.All(req.body) {
		if len(value) == 0 {
			b.AppendField(d.reg, tag)
		}
	}
	d.reply(req, b)
}

func (d *Dispatcher) onSetParam(req *request) {
	batch := d.reg.Begin()
	for tag, value := range tlv.All(req.body) {
		if !slices.Contains(defn.ParamTags, tag) {
			log.Trace(d, "SET_PARAM skipping tag", "tag", tag)
			continue
		}
		err := batch.Write(tag, value)
		if errors.Is(err, table.ErrUnknownTag) || errors.Is(err, table.ErrReadOnly) {
			continue
		}
		if err != nil {
			log.Info(d, "Rejected parameter batch", "err", err)
			d.sendErr(req)
			return
		}
	}
	if err := batch.Commit(); err != nil {
		d.sendErr(req)
		return
	}
	if staged := batch.Staged(); len(staged) > 0 {
		log.Info(d, "Parameters updated", "tags", staged)
	}
	d.save()

	b := Begin(defn.VerbRespOK, req.hdr.Seq)
	for _, tag := range defn.ParamTags {
		b.AppendField(d.reg, tag)
	}
	d.reply(req, b)
}

func (d *Dispatcher) onGetAll(req *request) {
	b := Begin(defn.VerbRespOK, req.hdr.Seq)
	for _, tag := range defn.AllTags {
		b.AppendField(d.reg, tag)
	}
	d.reply(req, b)
}

func (d *Dispatcher) onMsg(req *request) {
	if !defn.Complete(req.frame) {
		log.Debug(d, "MSG payload truncated", "tlv_len", req.hdr.TlvLen, "len", len(req.frame))
		d.sendErr(req)
		return
	}

	text := d.reg.SetLastText(defn.Payload(req.frame))
	log.Debug(d, "Received text", "text", text)
	d.presenter.Message(MsgTitle, text)

	d.onGetID(req)
}

func (d *Dispatcher) reply(req *request, b *Builder) {
	if err := b.Err(); err != nil {
		log.Warn(d, "Response does not fit in a frame", "verb", req.hdr.Verb, "err", err)
		d.sendErr(req)
		return
	}
	req.out.Send(b.Finish())
}

func (d *Dispatcher) sendErr(req *request) {
	d.Counters.Errors.Add(1)
	req.out.Send(Begin(defn.VerbRespErr, req.hdr.Seq).Finish())
}

func (d *Dispatcher) sendHello(fallback Sender) {
	b := Begin(defn.VerbRespOK, defn.SeqUnsolicited)
	b.AppendField(d.reg, defn.TagID)
	d.unsolicited(fallback).Send(b.Finish())
}

func (d *Dispatcher) unsolicited(fallback Sender) Sender {
	if d.broadcast != nil {
		return d.broadcast
	}
	if fallback != nil {
		return fallback
	}
	return discard{}
}

func (d *Dispatcher) save() {
	if d.saver == nil {
		return
	}
	if !d.saver.Save() {
		log.Warn(d, "State not persisted, keeping in-memory values")
	}
}

type discard struct{}

func (discard) Send([]byte) {}
