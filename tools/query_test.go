package tools

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/node/table"
	sio "github.com/viatext/vtnode/std/utils/io"
	tu "github.com/viatext/vtnode/std/utils/testutils"
)

func testQuery() *Query {
	return &Query{fields: table.NewDefaultRegistry(table.StubProbe{})}
}

func TestEncodeAssignments(t *testing.T) {
	tu.SetT(t)
	q := testQuery()

	payload := tu.NoErr(q.encodeAssignments([]string{"sf=10", "TX_PWR_DBM=-3", "alias=base"}))
	assert.Equal(t, []byte{
		0x11, 0x01, 0x0A,
		0x14, 0x01, 0xFD,
		0x02, 0x04, 'b', 'a', 's', 'e',
	}, payload)

	_, err := q.encodeAssignments([]string{"sf"})
	assert.Error(t, err)
	_, err = q.encodeAssignments([]string{"nope=1"})
	assert.Error(t, err)
	_, err = q.encodeAssignments([]string{"sf=300"})
	assert.Error(t, err)
}

func TestPrintFrame(t *testing.T) {
	q := testQuery()

	var out bytes.Buffer
	q.print(&out, []byte{0x90, 0x00, 0x07, 0x07, 0x11, 0x01, 0x09, 0x30, 0x02, 0xD6, 0xFF})
	assert.Equal(t, "RESP_OK seq=7 len=7\n"+
		"            SF=9\n"+
		"      RSSI_DBM=-42\n", out.String())

	out.Reset()
	q.print(&out, []byte{0x20, 0x00, 0x00, 0x02, 'h', 'i'})
	assert.Equal(t, "MSG seq=0 len=2\n  \"hi\"\n", out.String())

	out.Reset()
	q.print(&out, []byte{0x01})
	require.Empty(t, out.String())
}

func TestClientTransport(t *testing.T) {
	t.Setenv("VTNODE_CLIENT_TRANSPORT", "")
	assert.Equal(t, DefaultTransport, ClientTransport())

	t.Setenv("VTNODE_CLIENT_TRANSPORT", "tcp://127.0.0.1:9796")
	assert.Equal(t, "tcp://127.0.0.1:9796", ClientTransport())

	_, err := Dial("carrier-pigeon://home")
	assert.Error(t, err)
}

func TestClientDropsUnreadFrames(t *testing.T) {
	local, remote := net.Pipe()
	c := newClient(&streamConn{local})

	// net.Pipe writes return only once the client has read them
	for i := range 40 {
		_, err := remote.Write(sio.EncodeSlip([]byte{0x20, 0x00, 0x00, 0x01, byte(i)}))
		require.NoError(t, err)
	}
	require.NoError(t, c.Close())

	count := 0
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Frames():
			if !ok {
				assert.Equal(t, 16, count)
				return
			}
			count++
		case <-deadline:
			t.Fatal("receive loop did not stop")
		}
	}
}
