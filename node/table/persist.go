package table

import (
	"strings"

	"github.com/cespare/xxhash"
	"github.com/viatext/vtnode/std/log"
	"github.com/viatext/vtnode/std/storage"
)

// Persister mirrors the persisted subset of a registry into a store.
// Opening the store is deferred until first use and retried on every Save
// after a failure.
type Persister struct {
	reg  *Registry
	open func() (storage.Store, error)

	store storage.Store
	// digest of the last snapshot known to be in the store
	digest uint64
	synced bool
}

func NewPersister(reg *Registry, open func() (storage.Store, error)) *Persister {
	return &Persister{reg: reg, open: open}
}

func (p *Persister) String() string {
	return "persist"
}

// Load hydrates the registry. Missing or unusable entries keep their
// current value; a store that cannot be opened leaves all defaults in place.
func (p *Persister) Load() bool {
	if !p.ensureOpen() {
		return false
	}

	complete := true
	for f := range p.reg.Fields() {
		if !f.Persisted() {
			continue
		}

		text, ok, err := p.store.Get(f.Key)
		if err != nil {
			log.Warn(p, "Unable to read stored field", "key", f.Key, "err", err)
			complete = false
			continue
		}
		if !ok {
			complete = false
			continue
		}

		v, err := f.Parse(text)
		if err == nil {
			err = p.reg.Set(f.Tag, v)
		}
		if err != nil {
			log.Warn(p, "Ignoring stored field", "key", f.Key, "value", text, "err", err)
			complete = false
		}
	}

	if complete {
		p.digest, p.synced = p.snapshotDigest(), true
	}
	log.Info(p, "Loaded node state", "id", p.reg.ID(), "complete", complete)
	return true
}

// Save writes every persisted field in one transaction. It returns false if
// the state could not be made durable; the in-memory state stays authoritative.
func (p *Persister) Save() bool {
	digest := p.snapshotDigest()
	if p.synced && digest == p.digest {
		log.Trace(p, "State unchanged, skipping save")
		return true
	}

	if !p.ensureOpen() {
		return false
	}

	tx, err := p.store.Begin()
	if err != nil {
		log.Warn(p, "Unable to begin save", "err", err)
		return false
	}
	for f := range p.reg.Fields() {
		if !f.Persisted() {
			continue
		}
		v, _ := p.reg.Get(f.Tag)
		if err := tx.Put(f.Key, f.Format(v)); err != nil {
			log.Warn(p, "Unable to save field", "key", f.Key, "err", err)
			tx.Rollback()
			return false
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn(p, "Unable to commit save", "err", err)
		return false
	}

	p.digest, p.synced = digest, true
	log.Debug(p, "Saved node state", "id", p.reg.ID())
	return true
}

// Seed writes the current state when Load found the store incomplete, so
// values drawn at boot (a random factory id) survive the next restart.
func (p *Persister) Seed() bool {
	if p.synced {
		return true
	}
	log.Info(p, "Seeding store with boot state", "id", p.reg.ID())
	return p.Save()
}

// Close releases the store, if it was ever opened.
func (p *Persister) Close() error {
	if p.store == nil {
		return nil
	}
	err := p.store.Close()
	p.store = nil
	p.synced = false
	return err
}

func (p *Persister) ensureOpen() bool {
	if p.store != nil {
		return true
	}
	store, err := p.open()
	if err != nil {
		log.Warn(p, "Unable to open store, running on in-memory state", "err", err)
		return false
	}
	p.store = store
	return true
}

func (p *Persister) snapshotDigest() uint64 {
	var sb strings.Builder
	for f := range p.reg.Fields() {
		if !f.Persisted() {
			continue
		}
		v, _ := p.reg.Get(f.Tag)
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		sb.WriteString(f.Format(v))
		sb.WriteByte(0)
	}
	return xxhash.Sum64([]byte(sb.String()))
}
