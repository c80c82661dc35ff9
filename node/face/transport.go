// Package face carries frames between the node and its peers.
package face

import (
	"sync/atomic"
)

// Face is one link to a peer. Send may be called from any goroutine.
type Face interface {
	String() string
	FaceID() uint64
	setFaceID(id uint64)

	// Send a complete, unframed frame to the peer.
	Send(frame []byte)
	// Receive frames until the face is closed.
	runReceive(onFrame func([]byte))
	// Face is currently running (up)
	IsRunning() bool
	// Close the face (runReceive should exit)
	Close()

	NInFrames() uint64
	NOutFrames() uint64
}

// transportBase provides logic common to all face types
type transportBase struct {
	faceID  uint64
	remote  string
	running atomic.Bool

	nInFrames  atomic.Uint64
	nOutFrames atomic.Uint64
}

func (t *transportBase) makeTransportBase(remote string) {
	t.remote = remote
	t.running.Store(true)
}

func (t *transportBase) setFaceID(id uint64) {
	t.faceID = id
}

func (t *transportBase) FaceID() uint64 {
	return t.faceID
}

// Remote describes the peer end of the face.
func (t *transportBase) Remote() string {
	return t.remote
}

func (t *transportBase) IsRunning() bool {
	return t.running.Load()
}

func (t *transportBase) NInFrames() uint64 {
	return t.nInFrames.Load()
}

func (t *transportBase) NOutFrames() uint64 {
	return t.nOutFrames.Load()
}
