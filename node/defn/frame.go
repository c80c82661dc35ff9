package defn

// HeaderLen is the size of the inner frame header: verb, flags, seq, tlv_len.
const HeaderLen = 4

// MaxBodyLen bounds the TLV region so a whole frame fits in 255 bytes.
const MaxBodyLen = 255 - HeaderLen

// MaxFrameLen is the largest inner frame the node emits.
const MaxFrameLen = HeaderLen + MaxBodyLen

// SeqUnsolicited marks frames sent without a preceding request.
const SeqUnsolicited uint8 = 0

// Header is the fixed 4-byte inner frame header.
type Header struct {
	Verb   Verb
	Flags  uint8
	Seq    uint8
	TlvLen uint8
}

// ParseHeader reads the header of an already deframed buffer.
func ParseHeader(frame []byte) (Header, error) {
	if len(frame) < HeaderLen {
		return Header{}, ErrShortFrame
	}
	return Header{
		Verb:   Verb(frame[0]),
		Flags:  frame[1],
		Seq:    frame[2],
		TlvLen: frame[3],
	}, nil
}

// Body returns every byte delivered after the header. TLV scans run over
// the delivered bytes, so a tlv_len shorter than the buffer does not hide
// entries that follow it; scans stop on their own at an overrun.
func Body(frame []byte) []byte {
	if len(frame) < HeaderLen {
		return nil
	}
	return frame[HeaderLen:]
}

// Payload returns the region declared by tlv_len, clamped to the buffer.
// Unstructured payloads such as MSG text use it instead of Body.
func Payload(frame []byte) []byte {
	if len(frame) < HeaderLen {
		return nil
	}
	end := min(HeaderLen+int(frame[3]), len(frame))
	return frame[HeaderLen:end]
}

// Complete reports whether the declared tlv_len fits in the buffer.
func Complete(frame []byte) bool {
	return len(frame) >= HeaderLen && HeaderLen+int(frame[3]) <= len(frame)
}
