package face

import (
	"fmt"
	"io"
	"sync"

	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/std/log"
	sio "github.com/viatext/vtnode/std/utils/io"
)

// StreamTransport exchanges SLIP-framed frames over a byte stream.
type StreamTransport struct {
	transportBase
	kind string
	conn io.ReadWriteCloser
	wmu  sync.Mutex

	// errors that should not end the receive loop
	ignoreError func(error) bool
}

// NewStreamTransport wraps an established byte stream.
func NewStreamTransport(kind string, remote string, conn io.ReadWriteCloser) *StreamTransport {
	t := &StreamTransport{kind: kind, conn: conn}
	t.makeTransportBase(remote)
	return t
}

func (t *StreamTransport) String() string {
	return fmt.Sprintf("%s-transport (faceid=%d remote=%s)", t.kind, t.faceID, t.remote)
}

func (t *StreamTransport) Send(frame []byte) {
	if !t.running.Load() {
		return
	}

	if len(frame) > defn.MaxFrameLen {
		log.Warn(t, "Attempted to send frame larger than MTU", "len", len(frame))
		return
	}

	t.wmu.Lock()
	_, err := t.conn.Write(sio.EncodeSlip(frame))
	t.wmu.Unlock()
	if err != nil {
		log.Warn(t, "Unable to send on stream - Face DOWN", "err", err)
		t.Close()
		return
	}

	t.nOutFrames.Add(1)
}

func (t *StreamTransport) runReceive(onFrame func([]byte)) {
	defer t.Close()

	err := sio.ReadSlipStream(t.conn, func(b []byte) bool {
		t.nInFrames.Add(1)
		onFrame(b)
		return true
	}, t.ignoreError)
	if err != nil && t.running.Load() {
		log.Warn(t, "Unable to read from stream - Face DOWN", "err", err)
	}
}

func (t *StreamTransport) Close() {
	if t.running.Swap(false) {
		t.conn.Close()
	}
}
