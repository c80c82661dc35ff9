//go:build linux

package display

import (
	"fmt"
	"time"

	"github.com/warthog618/gpiod"
)

// NewLedPresenter requests the configured line as an output, initially off.
func NewLedPresenter(cfg LedConfig) (*LedPresenter, error) {
	chip, err := gpiod.NewChip(cfg.Chip, gpiod.WithConsumer("vtnode"))
	if err != nil {
		return nil, fmt.Errorf("gpiod.NewChip(%s): %w", cfg.Chip, err)
	}
	line, err := chip.RequestLine(cfg.Line, gpiod.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request line %d on %s: %w", cfg.Line, cfg.Chip, err)
	}
	return newLedPresenter(line, time.Duration(cfg.PulseMs)*time.Millisecond, chip.Close), nil
}
