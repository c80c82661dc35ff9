package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/table"
)

func TestStubProbeUptime(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	p := table.StubProbe{
		Start: start,
		Now:   func() time.Time { return start.Add(90*time.Second + 500*time.Millisecond) },
	}
	assert.Equal(t, uint32(90), p.UptimeS())
	assert.Equal(t, uint32(0), p.BootTime())
	assert.Equal(t, uint32(0), table.StubProbe{}.UptimeS())

	r := table.NewDefaultRegistry(p)
	v, _ := r.Encode(defn.TagUptimeS)
	assert.Equal(t, []byte{90, 0, 0, 0}, v)
}

func TestHostProbe(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	warnings := uint64(70000)
	p := table.HostProbe{
		StubProbe: table.StubProbe{Start: start},
		DataDir:   t.TempDir(),
		Warnings:  func() uint64 { return warnings },
	}
	assert.Equal(t, uint32(1_700_000_000), p.BootTime())
	assert.Equal(t, uint16(65535), p.LogCount())

	warnings = 3
	assert.Equal(t, uint16(3), p.LogCount())
	assert.Equal(t, int16(-42), p.RssiDbm())
	assert.Greater(t, p.FreeFlash(), uint32(0))
}
