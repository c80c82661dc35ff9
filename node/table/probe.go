package table

import (
	"math"
	"runtime"
	"time"

	"github.com/viatext/vtnode/std/utils"
)

// Probe supplies the read-only diagnostic fields.
type Probe interface {
	UptimeS() uint32
	BootTime() uint32
	RssiDbm() int16
	SnrDb() int8
	VbatMv() uint16
	TempC10() int16
	FreeMem() uint32
	FreeFlash() uint32
	LogCount() uint16
}

// StubProbe reports fixed placeholder readings for hosts without a radio.
type StubProbe struct {
	Start time.Time
	Now   func() time.Time
}

func (p StubProbe) UptimeS() uint32 {
	if p.Start.IsZero() {
		return 0
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return clampU32(int64(now().Sub(p.Start) / time.Second))
}

func (StubProbe) BootTime() uint32  { return 0 }
func (StubProbe) RssiDbm() int16    { return -42 }
func (StubProbe) SnrDb() int8       { return 7 }
func (StubProbe) VbatMv() uint16    { return 3700 }
func (StubProbe) TempC10() int16    { return 215 }
func (StubProbe) FreeMem() uint32   { return 123456 }
func (StubProbe) FreeFlash() uint32 { return 654321 }
func (StubProbe) LogCount() uint16  { return 0 }

// HostProbe reports what the host can measure and falls back to the stub
// readings for the radio and battery.
type HostProbe struct {
	StubProbe
	// Directory whose filesystem is reported as free flash.
	DataDir string
	// Source of the warning count.
	Warnings func() uint64
}

func (p HostProbe) BootTime() uint32 {
	return clampU32(p.Start.Unix())
}

func (p HostProbe) FreeMem() uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return clampU32(int64(min(ms.HeapIdle-ms.HeapReleased, math.MaxUint32)))
}

func (p HostProbe) FreeFlash() uint32 {
	free, ok := freeBytes(p.DataDir)
	if !ok {
		return p.StubProbe.FreeFlash()
	}
	return clampU32(int64(min(free, math.MaxUint32)))
}

func (p HostProbe) LogCount() uint16 {
	if p.Warnings == nil {
		return 0
	}
	return uint16(min(p.Warnings(), math.MaxUint16))
}

func clampU32(v int64) uint32 {
	return uint32(utils.Clamp(v, 0, math.MaxUint32))
}
