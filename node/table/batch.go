package table

import (
	"fmt"

	"github.com/viatext/vtnode/node/defn"
)

// Batch stages writes against a registry. Nothing is visible until Commit,
// and a batch that saw any decode or validation failure commits nothing.
type Batch struct {
	reg    *Registry
	staged map[defn.Tag]Value
	order  []defn.Tag
	err    error
}

// Begin starts a new staged write.
func (r *Registry) Begin() *Batch {
	return &Batch{
		reg:    r,
		staged: make(map[defn.Tag]Value),
	}
}

// Write stages one raw value. Unknown and read-only tags are reported but do
// not poison the batch; decode and validation failures do.
func (b *Batch) Write(tag defn.Tag, raw []byte) error {
	if b.err != nil {
		return b.err
	}

	f, err := b.reg.settable(tag)
	if err != nil {
		return err
	}

	v, err := f.Decode(raw)
	if err == nil {
		err = f.Validate(v)
	}
	if err != nil {
		b.err = fmt.Errorf("%s: %w", tag, err)
		return b.err
	}

	if _, seen := b.staged[tag]; !seen {
		b.order = append(b.order, tag)
	}
	b.staged[tag] = v
	return nil
}

// Err returns the failure that poisoned the batch, if any.
func (b *Batch) Err() error {
	return b.err
}

// Staged lists the tags written so far, in first-write order.
func (b *Batch) Staged() []defn.Tag {
	return b.order
}

// Commit applies every staged value, or none if the batch failed.
func (b *Batch) Commit() error {
	if b.err != nil {
		return b.err
	}
	for _, tag := range b.order {
		b.reg.values[tag] = b.staged[tag]
	}
	b.staged = nil
	b.order = nil
	return nil
}
