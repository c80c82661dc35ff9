package display

import (
	"sync"
	"time"

	"github.com/viatext/vtnode/std/log"
)

// LedConfig selects the GPIO line of a status LED.
type LedConfig struct {
	Enabled bool   `json:"enabled"`
	Chip    string `json:"chip"`
	Line    int    `json:"line"`
	PulseMs int    `json:"pulse_ms"`
}

const defaultPulse = 150 * time.Millisecond

type outputLine interface {
	SetValue(value int) error
	Close() error
}

// LedPresenter lights an LED for a short pulse on every event.
// Calls never block on the pulse.
type LedPresenter struct {
	line  outputLine
	pulse time.Duration

	mutex sync.Mutex
	timer *time.Timer
	// bumped by every blink; an off from an older pulse is ignored
	gen   uint64
	close func() error
}

func newLedPresenter(line outputLine, pulse time.Duration, closeFn func() error) *LedPresenter {
	if pulse <= 0 {
		pulse = defaultPulse
	}
	return &LedPresenter{line: line, pulse: pulse, close: closeFn}
}

func (p *LedPresenter) String() string {
	return "led"
}

func (p *LedPresenter) IdentityChanged(string) {
	p.blink()
}

func (p *LedPresenter) Message(string, string) {
	p.blink()
}

// Close turns the LED off and releases the line.
func (p *LedPresenter) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.line.SetValue(0)
	err := p.line.Close()
	if p.close != nil {
		if cerr := p.close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (p *LedPresenter) blink() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.line.SetValue(1); err != nil {
		log.Debug(p, "Unable to drive LED", "err", err)
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(p.pulse, func() { p.off(gen) })
}

func (p *LedPresenter) off(gen uint64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.timer == nil || gen != p.gen {
		return
	}
	p.timer = nil
	if err := p.line.SetValue(0); err != nil {
		log.Debug(p, "Unable to drive LED", "err", err)
	}
}
