package tlv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/tlv"
)

func TestEncodeNumeric(t *testing.T) {
	assert.Equal(t, []byte{0xC0, 0xCA, 0x89, 0x36}, tlv.EncodeNumeric(uint32(915000000)))
	assert.Equal(t, []byte{0x11}, tlv.EncodeNumeric(int8(17)))
	assert.Equal(t, []byte{0xD6, 0xFF}, tlv.EncodeNumeric(int16(-42)))
	assert.Equal(t, []byte{0x20, 0x00}, tlv.EncodeNumeric(uint16(32)))
	assert.Equal(t, []byte{0xF9}, tlv.EncodeNumeric(int8(-7)))
}

func TestDecodeNumeric(t *testing.T) {
	v32, err := tlv.DecodeNumeric[uint32]([]byte{0x48, 0xE8, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(125000), v32)

	i16, err := tlv.DecodeNumeric[int16]([]byte{0xD6, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, int16(-42), i16)

	i8, err := tlv.DecodeNumeric[int8]([]byte{0xFE})
	require.NoError(t, err)
	assert.Equal(t, int8(-2), i8)

	_, err = tlv.DecodeNumeric[uint32]([]byte{0x01, 0x02})
	require.ErrorIs(t, err, tlv.ErrWidth)
	_, err = tlv.DecodeNumeric[uint8](nil)
	require.ErrorIs(t, err, tlv.ErrWidth)
}

func TestRoundTripWidths(t *testing.T) {
	for _, v := range []int16{-32768, -1, 0, 1, 215, 32767} {
		got, err := tlv.DecodeNumeric[int16](tlv.EncodeNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []uint32{0, 1, 868000000, 0xFFFFFFFF} {
		got, err := tlv.DecodeNumeric[uint32](tlv.EncodeNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestAppend(t *testing.T) {
	buf, err := tlv.Append(nil, defn.TagID, []byte("HckrMn"))
	require.NoError(t, err)
	buf = tlv.AppendNumeric(buf, defn.TagSF, uint8(9))
	assert.Equal(t, []byte{0x01, 0x06, 'H', 'c', 'k', 'r', 'M', 'n', 0x11, 0x01, 0x09}, buf)

	buf, err = tlv.Append(nil, defn.TagAlias, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00}, buf)

	_, err = tlv.Append(nil, defn.TagAlias, make([]byte, 256))
	require.ErrorIs(t, err, tlv.ErrValueLong)
}

func TestFind(t *testing.T) {
	body := []byte{0x11, 0x01, 0x07, 0x11, 0x01, 0x09, 0x02, 0x00}
	v, ok := tlv.Find(body, defn.TagSF)
	require.True(t, ok)
	assert.Equal(t, []byte{0x07}, v)

	v, ok = tlv.Find(body, defn.TagAlias)
	require.True(t, ok)
	assert.Empty(t, v)

	_, ok = tlv.Find(body, defn.TagID)
	assert.False(t, ok)
}

func TestAllStopsOnMalformed(t *testing.T) {
	// second entry claims 5 bytes but only 1 remains
	body := []byte{0x11, 0x01, 0x09, 0x10, 0x05, 0x01}
	var tags []defn.Tag
	for tag := range tlv.All(body) {
		tags = append(tags, tag)
	}
	assert.Equal(t, []defn.Tag{defn.TagSF}, tags)

	// dangling tag byte with no length
	tags = nil
	for tag := range tlv.All([]byte{0x11, 0x01, 0x09, 0x13}) {
		tags = append(tags, tag)
	}
	assert.Equal(t, []defn.Tag{defn.TagSF}, tags)

	for range tlv.All(nil) {
		t.Fatal("empty body yields nothing")
	}
}
