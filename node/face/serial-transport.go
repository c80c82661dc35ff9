package face

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// SerialConfig locates a UART.
type SerialConfig struct {
	Port string `json:"port"`
	Baud int    `json:"baud"`
}

const DefaultBaud = 115200

// serialReadTimeout lets a blocked read notice Close.
const serialReadTimeout = 500 * time.Millisecond

// NewSerialTransport opens a UART and frames it with SLIP.
func NewSerialTransport(cfg SerialConfig) (*StreamTransport, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial: no port configured")
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: serialReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial.OpenPort(%s): %w", cfg.Port, err)
	}

	t := NewStreamTransport("serial", fmt.Sprintf("%s@%d", cfg.Port, cfg.Baud), port)
	// a read timeout surfaces as a zero-length read
	t.ignoreError = func(err error) bool {
		return errors.Is(err, io.EOF) && t.running.Load()
	}
	return t, nil
}
