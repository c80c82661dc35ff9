package io

import (
	"errors"
	"io"
)

// SLIP special bytes (RFC 1055).
const (
	SlipEnd    byte = 0xC0
	SlipEsc    byte = 0xDB
	SlipEscEnd byte = 0xDC
	SlipEscEsc byte = 0xDD
)

// MaxSlipFrame bounds a decoded frame. Longer frames are discarded up to
// the next END byte.
const MaxSlipFrame = 512

// ReadSlipStream reads SLIP-framed packets from reader and calls onFrame with
// each non-empty decoded frame. The slice is only valid during the call.
// Returning false from onFrame stops the reader.
func ReadSlipStream(
	reader io.Reader,
	onFrame func([]byte) bool,
	ignoreError func(error) bool,
) error {
	recvBuf := make([]byte, 256)
	frame := make([]byte, 0, MaxSlipFrame)
	escaped := false
	overflow := false

	for {
		readSize, err := reader.Read(recvBuf)
		for _, c := range recvBuf[:readSize] {
			switch {
			case c == SlipEnd:
				if len(frame) > 0 && !overflow {
					if !onFrame(frame) {
						return nil
					}
				}
				frame = frame[:0]
				escaped, overflow = false, false
				continue
			case escaped:
				escaped = false
				switch c {
				case SlipEscEnd:
					c = SlipEnd
				case SlipEscEsc:
					c = SlipEsc
				}
			case c == SlipEsc:
				escaped = true
				continue
			}

			if len(frame) >= MaxSlipFrame {
				overflow = true
				continue
			}
			frame = append(frame, c)
		}

		if err != nil {
			if ignoreError != nil && ignoreError(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// EncodeSlip escapes a frame and terminates it with END.
func EncodeSlip(frame []byte) []byte {
	out := make([]byte, 0, len(frame)+len(frame)/8+1)
	for _, c := range frame {
		switch c {
		case SlipEnd:
			out = append(out, SlipEsc, SlipEscEnd)
		case SlipEsc:
			out = append(out, SlipEsc, SlipEscEsc)
		default:
			out = append(out, c)
		}
	}
	return append(out, SlipEnd)
}
