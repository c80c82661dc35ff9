package tools

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/mgmt"
	"github.com/viatext/vtnode/std/log"
	sio "github.com/viatext/vtnode/std/utils/io"
)

// DefaultTransport is used when VTNODE_CLIENT_TRANSPORT is not set.
const DefaultTransport = "unix:///run/vtnode/vtnode.sock"

var ErrTimeout = errors.New("no reply before timeout")

// ClientTransport returns the node address tools connect to.
func ClientTransport() string {
	if uri := os.Getenv("VTNODE_CLIENT_TRANSPORT"); uri != "" {
		return uri
	}
	return DefaultTransport
}

type clientConn interface {
	send(frame []byte) error
	receive(onFrame func([]byte) bool) error
	Close() error
}

// Client issues requests to a running node and matches replies by seq.
// Frames that answer nothing are passed to OnUnsolicited.
type Client struct {
	conn   clientConn
	frames chan []byte
	seq    uint8
	mutex  sync.Mutex

	OnUnsolicited func(frame []byte)
}

// Dial connects to unix://path, tcp://host:port or ws://host:port.
func Dial(uri string) (*Client, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	var conn clientConn
	switch u.Scheme {
	case "unix":
		c, err := net.Dial("unix", u.Path)
		if err != nil {
			return nil, err
		}
		conn = &streamConn{c}
	case "tcp", "tcp4", "tcp6":
		c, err := net.Dial(u.Scheme, u.Host)
		if err != nil {
			return nil, err
		}
		conn = &streamConn{c}
	case "ws", "wss":
		c, _, err := websocket.DefaultDialer.Dial(uri, nil)
		if err != nil {
			return nil, err
		}
		conn = &wsConn{c}
	default:
		return nil, fmt.Errorf("unsupported transport %q", uri)
	}

	return newClient(conn), nil
}

func newClient(conn clientConn) *Client {
	c := &Client{
		conn:   conn,
		frames: make(chan []byte, 16),
	}
	go c.receive()
	return c
}

func (c *Client) String() string {
	return "client"
}

// Close disconnects from the node.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send writes a request and returns its sequence number.
func (c *Client) Send(verb defn.Verb, payload []byte) (uint8, error) {
	c.mutex.Lock()
	c.seq++
	if c.seq == defn.SeqUnsolicited {
		c.seq++
	}
	seq := c.seq
	c.mutex.Unlock()

	b := mgmt.Begin(verb, seq)
	if err := b.AppendRaw(payload); err != nil {
		return 0, err
	}
	return seq, c.conn.send(b.Finish())
}

// Request sends a frame and waits for the reply with the same seq.
func (c *Client) Request(verb defn.Verb, payload []byte, timeout time.Duration) ([]byte, error) {
	seq, err := c.Send(verb, payload)
	if err != nil {
		return nil, err
	}
	return c.Await(seq, timeout)
}

// Await waits for a reply carrying seq.
func (c *Client) Await(seq uint8, timeout time.Duration) ([]byte, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case frame, ok := <-c.frames:
			if !ok {
				return nil, net.ErrClosed
			}
			hdr, _ := defn.ParseHeader(frame)
			if hdr.Seq == seq {
				return frame, nil
			}
			c.unsolicited(frame)
		case <-deadline.C:
			return nil, ErrTimeout
		}
	}
}

// Frames delivers every frame not consumed by Await. Use it with
// OnUnsolicited unset to watch the node.
func (c *Client) Frames() <-chan []byte {
	return c.frames
}

func (c *Client) receive() {
	defer close(c.frames)
	err := c.conn.receive(func(frame []byte) bool {
		if _, err := defn.ParseHeader(frame); err != nil {
			log.Debug(c, "Ignoring short frame", "len", len(frame))
			return true
		}
		select {
		case c.frames <- slices.Clone(frame):
		default:
			log.Warn(c, "Dropping frame, nobody is reading", "len", len(frame))
		}
		return true
	})
	if err != nil && !errors.Is(err, net.ErrClosed) {
		log.Debug(c, "Connection closed", "err", err)
	}
}

func (c *Client) unsolicited(frame []byte) {
	if c.OnUnsolicited != nil {
		c.OnUnsolicited(frame)
		return
	}
	log.Debug(c, "Ignoring unmatched frame", "len", len(frame))
}

type streamConn struct {
	net.Conn
}

func (s *streamConn) send(frame []byte) error {
	_, err := s.Write(sio.EncodeSlip(frame))
	return err
}

func (s *streamConn) receive(onFrame func([]byte) bool) error {
	return sio.ReadSlipStream(s, onFrame, nil)
}

type wsConn struct {
	*websocket.Conn
}

func (w *wsConn) send(frame []byte) error {
	return w.WriteMessage(websocket.BinaryMessage, frame)
}

func (w *wsConn) receive(onFrame func([]byte) bool) error {
	for {
		mt, message, err := w.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		if mt == websocket.BinaryMessage && !onFrame(message) {
			return nil
		}
	}
}
