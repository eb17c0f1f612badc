package dfufile

import (
	"encoding/binary"
	"testing"

	"github.com/dfutool/bose-dfu/internal/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDFU assembles a valid .dfu file: payload + 16-byte suffix with a
// correctly computed CRC, mirroring the layout §3/§4.A of the spec defines.
func buildDFU(payload []byte, vid, pid, bcdDevice, bcdDFU uint16) []byte {
	buf := make([]byte, 0, len(payload)+16)
	buf = append(buf, payload...)

	tail := make([]byte, 12)
	binary.LittleEndian.PutUint16(tail[0:2], bcdDevice)
	binary.LittleEndian.PutUint16(tail[2:4], pid)
	binary.LittleEndian.PutUint16(tail[4:6], vid)
	binary.LittleEndian.PutUint16(tail[6:8], bcdDFU)
	tail[8], tail[9], tail[10] = 'U', 'F', 'D'
	tail[11] = 16
	buf = append(buf, tail...)

	crc := crc32NoComplement(buf)
	crcBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(crcBytes, crc)
	buf = append(buf, crcBytes...)

	return buf
}

func TestParse_ValidRoundTrip(t *testing.T) {
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = 0xAA
	}

	raw := buildDFU(payload, 0x05A7, 0x1234, 0x0001, 0x0100)

	img, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x05A7), img.IDVendor)
	assert.Equal(t, uint16(0x1234), img.IDProduct)
	assert.Equal(t, uint16(0x0001), img.BcdDevice)
	assert.Equal(t, uint16(0x0100), img.BcdDFU)
	assert.Equal(t, payload, img.Payload)
}

func TestParse_PayloadMutationBreaksCRC(t *testing.T) {
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = 0xAA
	}
	raw := buildDFU(payload, 0x05A7, 0x1234, 0x0001, 0x0100)

	raw[len(payload)-1] ^= 0xFF

	_, err := Parse(raw)
	require.Error(t, err)
	var badCRC *xerrors.BadCRC
	require.ErrorAs(t, err, &badCRC)
}

func TestParse_BLengthOffByOneFails(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	raw := buildDFU(payload, 0x05A7, 0x1234, 0x0001, 0x0100)

	// bLength sits 5 bytes from the end; nudging it desyncs the suffix
	// layout, which must fail (either a short-suffix or bad-CRC error).
	shrunk := raw[len(raw)-5] - 1
	mutated := append([]byte{}, raw...)
	mutated[len(mutated)-5] = shrunk
	_, err := Parse(mutated)
	assert.Error(t, err)

	grown := append([]byte{}, raw...)
	grown[len(grown)-5] = raw[len(raw)-5] + 1
	_, err = Parse(grown)
	assert.Error(t, err)
}

func TestParse_TooShort(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	require.Error(t, err)
	var tooShort *xerrors.SuffixTooShort
	require.ErrorAs(t, err, &tooShort)
}

func TestParse_BadSignature(t *testing.T) {
	raw := buildDFU([]byte{1, 2, 3, 4}, 0x05A7, 0x1234, 1, 0x0100)
	raw[len(raw)-16+8] = 'X' // corrupt signature byte
	// Recompute nothing: corrupting the signature must fail before CRC is
	// even meaningful, since the signature bytes feed the CRC too.
	_, err := Parse(raw)
	require.Error(t, err)
	var badSig *xerrors.BadSignature
	require.ErrorAs(t, err, &badSig)
}

func TestParse_UnsupportedVersion(t *testing.T) {
	raw := buildDFU([]byte{1, 2, 3, 4}, 0x05A7, 0x1234, 1, 0x0200)
	_, err := Parse(raw)
	require.Error(t, err)
	var badVer *xerrors.UnsupportedDFUVersion
	require.ErrorAs(t, err, &badVer)
}

func TestMatches_Wildcards(t *testing.T) {
	img := &Image{IDVendor: 0xFFFF, IDProduct: 0x1234}
	assert.True(t, Matches(img, 0x05A7, 0x1234))
	assert.True(t, Matches(img, 0x1111, 0x1234))
	assert.False(t, Matches(img, 0x1111, 0x9999))

	img2 := &Image{IDVendor: 0x05A7, IDProduct: 0xFFFF}
	assert.True(t, Matches(img2, 0x05A7, 0x1111))
	assert.False(t, Matches(img2, 0x05A8, 0x1111))
}
