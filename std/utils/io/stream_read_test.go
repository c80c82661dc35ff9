package io_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sio "github.com/viatext/vtnode/std/utils/io"
)

func collect(t *testing.T, r io.Reader) [][]byte {
	var frames [][]byte
	err := sio.ReadSlipStream(r, func(b []byte) bool {
		frames = append(frames, append([]byte(nil), b...))
		return true
	}, nil)
	require.NoError(t, err)
	return frames
}

func TestEncodeSlip(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x02, 0xC0}, sio.EncodeSlip([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0xDB, 0xDC, 0x00, 0xDB, 0xDD, 0xC0}, sio.EncodeSlip([]byte{0xC0, 0x00, 0xDB}))
	assert.Equal(t, []byte{0xC0}, sio.EncodeSlip(nil))
}

func TestReadSlipStream(t *testing.T) {
	var wire []byte
	wire = append(wire, 0xC0) // leading END yields nothing
	wire = append(wire, sio.EncodeSlip([]byte{0x01, 0x00, 0x01, 0x00})...)
	wire = append(wire, sio.EncodeSlip([]byte{0x90, 0xC0, 0xDB, 0x00})...)
	wire = append(wire, 0x05, 0x06) // unterminated tail is dropped at EOF

	frames := collect(t, bytes.NewReader(wire))
	assert.Equal(t, [][]byte{
		{0x01, 0x00, 0x01, 0x00},
		{0x90, 0xC0, 0xDB, 0x00},
	}, frames)
}

func TestReadSlipStreamOneByteReads(t *testing.T) {
	wire := sio.EncodeSlip([]byte{0xDB, 0xC0, 0x12})
	frames := collect(t, iotestOneByte{bytes.NewReader(wire)})
	assert.Equal(t, [][]byte{{0xDB, 0xC0, 0x12}}, frames)
}

func TestReadSlipStreamOversized(t *testing.T) {
	big := bytes.Repeat([]byte{0x41}, sio.MaxSlipFrame+1)
	wire := append(sio.EncodeSlip(big), sio.EncodeSlip([]byte{0x03, 0x00, 0x01, 0x00})...)
	frames := collect(t, bytes.NewReader(wire))
	assert.Equal(t, [][]byte{{0x03, 0x00, 0x01, 0x00}}, frames)
}

func TestReadSlipStreamStop(t *testing.T) {
	wire := append(sio.EncodeSlip([]byte{1}), sio.EncodeSlip([]byte{2})...)
	n := 0
	err := sio.ReadSlipStream(bytes.NewReader(wire), func([]byte) bool {
		n++
		return false
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReadSlipStreamErrors(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(bytes.NewReader(sio.EncodeSlip([]byte{7})), errReader{boom})

	var got [][]byte
	err := sio.ReadSlipStream(r, func(b []byte) bool {
		got = append(got, append([]byte(nil), b...))
		return true
	}, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, [][]byte{{7}}, got)

	// ignored errors keep the reader going until EOF
	calls := 0
	r = io.MultiReader(errOnce(boom), bytes.NewReader(sio.EncodeSlip([]byte{8})))
	err = sio.ReadSlipStream(r, func([]byte) bool { calls++; return true },
		func(err error) bool { return errors.Is(err, boom) })
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type iotestOneByte struct{ r io.Reader }

func (o iotestOneByte) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

// errOnce fails the first read, then reports EOF so MultiReader moves on.
func errOnce(err error) io.Reader {
	return &onceReader{err: err}
}

type onceReader struct {
	err  error
	done bool
}

func (o *onceReader) Read([]byte) (int, error) {
	if o.done {
		return 0, io.EOF
	}
	o.done = true
	return 0, o.err
}
