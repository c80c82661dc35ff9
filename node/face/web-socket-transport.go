package face

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/std/log"
	sio "github.com/viatext/vtnode/std/utils/io"
)

// WebSocketTransport carries one frame per binary message.
type WebSocketTransport struct {
	transportBase
	c   *websocket.Conn
	wmu sync.Mutex
}

func NewWebSocketTransport(c *websocket.Conn) *WebSocketTransport {
	t := &WebSocketTransport{c: c}
	t.makeTransportBase(c.RemoteAddr().String())
	return t
}

func (t *WebSocketTransport) String() string {
	return fmt.Sprintf("web-socket-transport (faceid=%d remote=%s)", t.faceID, t.remote)
}

func (t *WebSocketTransport) Send(frame []byte) {
	if !t.running.Load() {
		return
	}

	if len(frame) > defn.MaxFrameLen {
		log.Warn(t, "Attempted to send frame larger than MTU", "len", len(frame))
		return
	}

	t.wmu.Lock()
	err := t.c.WriteMessage(websocket.BinaryMessage, frame)
	t.wmu.Unlock()
	if err != nil {
		log.Warn(t, "Unable to send on socket - Face DOWN", "err", err)
		t.Close()
		return
	}

	t.nOutFrames.Add(1)
}

func (t *WebSocketTransport) runReceive(onFrame func([]byte)) {
	defer t.Close()

	for {
		mt, message, err := t.c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || !t.running.Load() {
				// gracefully closed
			} else if websocket.IsUnexpectedCloseError(err) {
				log.Info(t, "WebSocket closed unexpectedly - Face DOWN", "err", err)
			} else {
				log.Warn(t, "Unable to read from WebSocket - Face DOWN", "err", err)
			}
			return
		}

		if mt != websocket.BinaryMessage {
			log.Warn(t, "Ignored non-binary message")
			continue
		}

		if len(message) > sio.MaxSlipFrame {
			log.Warn(t, "Ignored oversized message", "len", len(message))
			continue
		}

		t.nInFrames.Add(1)
		onFrame(message)
	}
}

func (t *WebSocketTransport) Close() {
	if t.running.Swap(false) {
		t.c.Close()
	}
}
