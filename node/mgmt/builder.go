package mgmt

import (
	"errors"

	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/node/tlv"
)

var ErrFrameFull = errors.New("frame body capacity exceeded")

// Builder assembles one outbound frame. The first append that would push
// the body past defn.MaxBodyLen fails and poisons the builder.
type Builder struct {
	buf      []byte
	err      error
	finished bool
}

// Begin starts a frame with the given verb and sequence number.
func Begin(verb defn.Verb, seq uint8) *Builder {
	buf := make([]byte, defn.HeaderLen, defn.MaxFrameLen)
	buf[0] = byte(verb)
	buf[2] = seq
	return &Builder{buf: buf}
}

// Append adds one TLV entry.
func (b *Builder) Append(tag defn.Tag, value []byte) error {
	if !b.fits(2 + len(value)) {
		return b.err
	}
	b.buf, _ = tlv.Append(b.buf, tag, value)
	return nil
}

// AppendField adds the current value of a registry field.
// Unknown tags add nothing.
func (b *Builder) AppendField(reg *table.Registry, tag defn.Tag) error {
	value, ok := reg.Encode(tag)
	if !ok {
		return b.err
	}
	return b.Append(tag, value)
}

// AppendRaw adds payload bytes that are not TLV encoded.
func (b *Builder) AppendRaw(p []byte) error {
	if !b.fits(len(p)) {
		return b.err
	}
	b.buf = append(b.buf, p...)
	return nil
}

// Err returns ErrFrameFull once any append overflowed.
func (b *Builder) Err() error {
	return b.err
}

// Len is the current body length.
func (b *Builder) Len() int {
	return len(b.buf) - defn.HeaderLen
}

// Finish writes the body length into the header and returns the frame.
func (b *Builder) Finish() []byte {
	if b.finished {
		panic("Finish() called twice")
	}
	b.finished = true
	b.buf[3] = byte(b.Len())
	return b.buf
}

func (b *Builder) fits(n int) bool {
	if b.finished {
		panic("append after Finish()")
	}
	if b.err != nil {
		return false
	}
	if b.Len()+n > defn.MaxBodyLen {
		b.err = ErrFrameFull
		return false
	}
	return true
}
