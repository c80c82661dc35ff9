package face

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/viatext/vtnode/std/log"
)

// Inbound is one frame received on a face.
type Inbound struct {
	Face  Face
	Frame []byte
}

// Table holds all running faces and funnels their frames into one queue.
type Table struct {
	mutex      sync.RWMutex
	faces      map[uint64]Face
	nextFaceID atomic.Uint64

	inbound chan Inbound
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewTable creates a face table whose inbound queue holds up to queue frames.
func NewTable(queue int) *Table {
	t := &Table{
		faces:   make(map[uint64]Face),
		inbound: make(chan Inbound, max(queue, 1)),
	}
	t.nextFaceID.Store(1)
	return t
}

func (t *Table) String() string {
	return "face-table"
}

// Inbound is the queue of received frames, in arrival order.
func (t *Table) Inbound() <-chan Inbound {
	return t.inbound
}

// Add registers a face and starts receiving on it. The face is removed
// when its receive loop ends.
func (t *Table) Add(face Face) uint64 {
	faceID := t.nextFaceID.Add(1) - 1
	face.setFaceID(faceID)

	t.mutex.Lock()
	t.faces[faceID] = face
	t.mutex.Unlock()
	log.Info(t, "Registered face", "face", face)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		face.runReceive(func(frame []byte) { t.deliver(face, frame) })
		t.Remove(faceID)
	}()
	return faceID
}

// Get gets the face with the specified ID (if any).
func (t *Table) Get(id uint64) Face {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.faces[id]
}

// GetAll returns all faces, ordered by ID.
func (t *Table) GetAll() []Face {
	t.mutex.RLock()
	faces := make([]Face, 0, len(t.faces))
	for _, f := range t.faces {
		faces = append(faces, f)
	}
	t.mutex.RUnlock()

	slices.SortFunc(faces, func(a, b Face) int {
		return int(a.FaceID()) - int(b.FaceID())
	})
	return faces
}

// Remove removes a face from the table.
func (t *Table) Remove(id uint64) {
	t.mutex.Lock()
	face, ok := t.faces[id]
	delete(t.faces, id)
	t.mutex.Unlock()

	if ok {
		log.Info(t, "Unregistered face", "face", face)
	}
}

// Send broadcasts a frame to every running face.
func (t *Table) Send(frame []byte) {
	for _, face := range t.GetAll() {
		if face.IsRunning() {
			face.Send(frame)
		}
	}
}

// Dropped counts frames discarded because the inbound queue was full.
func (t *Table) Dropped() uint64 {
	return t.dropped.Load()
}

// CloseAll closes every face and waits for their receive loops to exit.
func (t *Table) CloseAll() {
	for _, face := range t.GetAll() {
		face.Close()
	}
	t.wg.Wait()
}

func (t *Table) deliver(face Face, frame []byte) {
	in := Inbound{Face: face, Frame: slices.Clone(frame)}
	select {
	case t.inbound <- in:
	default:
		t.dropped.Add(1)
		log.Warn(t, "Inbound queue full, DROP", "face", face)
	}
}
