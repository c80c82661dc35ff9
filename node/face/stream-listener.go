package face

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/viatext/vtnode/std/log"
)

// StreamListenerConfig selects a tcp or unix socket.
type StreamListenerConfig struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// StreamListener accepts SLIP stream connections from local tools.
type StreamListener struct {
	cfg     StreamListenerConfig
	table   *Table
	conn    net.Listener
	running atomic.Bool
	stopped chan bool
}

// NewStreamListener binds the socket; Run accepts connections.
func NewStreamListener(cfg StreamListenerConfig, table *Table) (*StreamListener, error) {
	switch cfg.Network {
	case "tcp", "tcp4", "tcp6":
	case "unix":
		// Delete any existing socket
		os.Remove(cfg.Address)
		if err := os.MkdirAll(filepath.Dir(cfg.Address), 0o755); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("stream listener: unsupported network %q", cfg.Network)
	}

	conn, err := net.Listen(cfg.Network, cfg.Address)
	if err != nil {
		return nil, err
	}

	return &StreamListener{
		cfg:     cfg,
		table:   table,
		conn:    conn,
		stopped: make(chan bool, 1),
	}, nil
}

func (l *StreamListener) String() string {
	return fmt.Sprintf("stream-listener (%s://%s)", l.cfg.Network, l.Addr())
}

// Addr is the bound address.
func (l *StreamListener) Addr() net.Addr {
	return l.conn.Addr()
}

// Run accepts connections until Close.
func (l *StreamListener) Run() {
	l.running.Store(true)
	defer func() { l.stopped <- true }()
	log.Info(l, "Listening for connections")

	for {
		conn, err := l.conn.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Warn(l, "Unable to accept connection", "err", err)
			}
			return
		}

		t := NewStreamTransport(l.cfg.Network, conn.RemoteAddr().String(), conn)
		log.Info(l, "Accepting new stream face", "remote", t.Remote())
		l.table.Add(t)
	}
}

// Close stops accepting. Established faces stay up.
func (l *StreamListener) Close() {
	l.conn.Close()
	if l.running.Load() {
		<-l.stopped
	}
	if l.cfg.Network == "unix" {
		os.Remove(l.cfg.Address)
	}
}
