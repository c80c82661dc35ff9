// Package table holds the typed device state addressed by TLV tags.
package table

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/tlv"
)

// MaxTextLen is the capacity of the last-message buffer.
const MaxTextLen = 63

// Registry is the single source of truth for node state. It is owned by one
// dispatch goroutine and is not safe for concurrent mutation.
type Registry struct {
	fields map[defn.Tag]*Field
	order  []defn.Tag
	values map[defn.Tag]Value

	lastText string
}

// NewRegistry builds a registry with every slot at its default.
func NewRegistry(fields []Field) *Registry {
	r := &Registry{
		fields: make(map[defn.Tag]*Field, len(fields)),
		order:  make([]defn.Tag, 0, len(fields)),
		values: make(map[defn.Tag]Value, len(fields)),
	}
	for i := range fields {
		f := &fields[i]
		if _, dup := r.fields[f.Tag]; dup {
			panic(fmt.Sprintf("duplicate field %s", f.Tag))
		}
		r.fields[f.Tag] = f
		r.order = append(r.order, f.Tag)
		if f.Read == nil {
			r.values[f.Tag] = f.Default
		}
	}
	return r
}

func (r *Registry) String() string {
	return "registry"
}

// Lookup returns the field descriptor of a tag.
func (r *Registry) Lookup(tag defn.Tag) (*Field, bool) {
	f, ok := r.fields[tag]
	return f, ok
}

// Fields iterates the descriptors in registration order.
func (r *Registry) Fields() iter.Seq[*Field] {
	return func(yield func(*Field) bool) {
		for _, tag := range r.order {
			if !yield(r.fields[tag]) {
				return
			}
		}
	}
}

// Get returns the current value, evaluating computed fields.
func (r *Registry) Get(tag defn.Tag) (Value, bool) {
	f, ok := r.fields[tag]
	if !ok {
		return Value{}, false
	}
	if f.Read != nil {
		return f.Read(), true
	}
	return r.values[tag], true
}

// Encode returns the wire bytes of a field's current value.
func (r *Registry) Encode(tag defn.Tag) ([]byte, bool) {
	v, ok := r.Get(tag)
	if !ok {
		return nil, false
	}
	return r.fields[tag].Encode(v), true
}

// AppendTLV appends the field as one TLV entry. Unknown tags add nothing.
func (r *Registry) AppendTLV(buf []byte, tag defn.Tag) []byte {
	value, ok := r.Encode(tag)
	if !ok {
		return buf
	}
	out, err := tlv.Append(buf, tag, value)
	if err != nil {
		return buf
	}
	return out
}

// Set validates and commits a decoded value.
func (r *Registry) Set(tag defn.Tag, v Value) error {
	f, err := r.settable(tag)
	if err != nil {
		return err
	}
	if err := f.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	r.values[tag] = v
	return nil
}

// Write decodes, validates and commits one raw TLV value.
func (r *Registry) Write(tag defn.Tag, raw []byte) error {
	b := r.Begin()
	if err := b.Write(tag, raw); err != nil {
		return err
	}
	return b.Commit()
}

// ID is the current node identity.
func (r *Registry) ID() string {
	return r.values[defn.TagID].Str
}

// LastText is the most recent inbound free-text payload.
func (r *Registry) LastText() string {
	return r.lastText
}

// SetLastText stores raw text, cut at the first NUL and clamped to MaxTextLen.
func (r *Registry) SetLastText(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if len(raw) > MaxTextLen {
		raw = raw[:MaxTextLen]
	}
	r.lastText = string(raw)
	return r.lastText
}

func (r *Registry) settable(tag defn.Tag) (*Field, error) {
	f, ok := r.fields[tag]
	if !ok {
		return nil, fmt.Errorf("%s: %w", tag, ErrUnknownTag)
	}
	if !f.Settable() {
		return nil, fmt.Errorf("%s: %w", tag, ErrReadOnly)
	}
	return f, nil
}
