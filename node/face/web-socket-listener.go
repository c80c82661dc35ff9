package face

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/viatext/vtnode/std/log"
)

// WebSocketListenerConfig contains WebSocketListener configuration.
type WebSocketListenerConfig struct {
	Bind string `json:"bind"`
	Port uint16 `json:"port"`
}

func (cfg WebSocketListenerConfig) Addr() string {
	return net.JoinHostPort(cfg.Bind, strconv.FormatUint(uint64(cfg.Port), 10))
}

// WebSocketListener upgrades HTTP requests into faces.
type WebSocketListener struct {
	server   http.Server
	ln       net.Listener
	upgrader websocket.Upgrader
	table    *Table
}

// NewWebSocketListener binds the address; serving starts with Run.
func NewWebSocketListener(cfg WebSocketListenerConfig, table *Table) (*WebSocketListener, error) {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, err
	}

	l := &WebSocketListener{
		ln: ln,
		server: http.Server{
			ReadHeaderTimeout: 5 * time.Second,
		},
		upgrader: websocket.Upgrader{
			WriteBufferPool: &sync.Pool{},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		table: table,
	}
	l.server.Handler = l
	return l, nil
}

func (l *WebSocketListener) String() string {
	return "web-socket-listener (ws://" + l.ln.Addr().String() + ")"
}

// Addr is the bound address, useful when the configured port was 0.
func (l *WebSocketListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Run serves until Close.
func (l *WebSocketListener) Run() error {
	log.Info(l, "Listening for connections")
	err := l.server.Serve(l.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeHTTP upgrades the request and registers the connection as a face.
func (l *WebSocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	t := NewWebSocketTransport(c)
	log.Info(l, "Accepting new WebSocket face", "remote", t.Remote())
	l.table.Add(t)
}

func (l *WebSocketListener) Close() {
	log.Info(l, "Stopping listener")
	l.server.Shutdown(context.TODO())
	// not tracked by the server if Run never started
	l.ln.Close()
}
