// Copyright (C) 2018 Rob Caelers <rob.caelers@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package dfufile parses and validates the ".dfu" suffix format: a payload
// followed by a fixed-layout trailing metadata block carrying the target
// vendor/product IDs and a CRC-32 over the whole file except the CRC itself.
package dfufile

import (
	"bytes"
	"encoding/binary"

	"github.com/dfutool/bose-dfu/internal/xerrors"
)

// MinSuffixLength is the minimum legal bLength for a DFU suffix.
const MinSuffixLength = 16

// dfuSignature is the canonical 3-byte marker DFU 1.1 requires immediately
// before the suffix length byte, read in file order.
var dfuSignature = [3]byte{'U', 'F', 'D'}

// wildcardID means "matches any vendor/product ID" per DFU 1.1.
const wildcardID = 0xFFFF

const expectedBcdDFU = 0x0100

// suffix mirrors the little-endian tail of a .dfu file, in file order.
type suffix struct {
	BcdDevice uint16
	IDProduct uint16
	IDVendor  uint16
	BcdDFU    uint16
	Signature [3]byte
	BLength   byte
	DwCRC     uint32
}

// Image is a fully parsed, validated firmware file: the payload plus the
// suffix fields a caller needs. It is immutable once returned by Parse.
type Image struct {
	Payload   []byte
	BcdDevice uint16
	IDProduct uint16
	IDVendor  uint16
	BcdDFU    uint16
	CRC       uint32
}

// Parse validates raw as a .dfu file and returns its parsed image.
//
// Validation order matches spec: length, bLength, signature, then CRC.
func Parse(raw []byte) (*Image, error) {
	if len(raw) < MinSuffixLength {
		return nil, &xerrors.SuffixTooShort{Length: len(raw)}
	}

	// bLength is the last byte of the fixed 16-byte tail that precedes it.
	bLength := raw[len(raw)-5]
	if int(bLength) < MinSuffixLength || len(raw) < int(bLength) {
		return nil, &xerrors.SuffixTooShort{Length: len(raw)}
	}

	tail := raw[len(raw)-16:]

	var s suffix
	r := bytes.NewReader(tail)
	if err := binary.Read(r, binary.LittleEndian, &s.BcdDevice); err != nil {
		return nil, &xerrors.SuffixTooShort{Length: len(raw)}
	}
	binary.Read(r, binary.LittleEndian, &s.IDProduct)
	binary.Read(r, binary.LittleEndian, &s.IDVendor)
	binary.Read(r, binary.LittleEndian, &s.BcdDFU)
	binary.Read(r, binary.LittleEndian, &s.Signature)
	binary.Read(r, binary.LittleEndian, &s.BLength)
	binary.Read(r, binary.LittleEndian, &s.DwCRC)

	if s.Signature != dfuSignature {
		return nil, &xerrors.BadSignature{Got: s.Signature}
	}

	computed := crc32NoComplement(raw[:len(raw)-4])
	if computed != s.DwCRC {
		return nil, &xerrors.BadCRC{Expected: s.DwCRC, Computed: computed}
	}

	if s.BcdDFU != expectedBcdDFU {
		return nil, &xerrors.UnsupportedDFUVersion{Got: s.BcdDFU}
	}

	payload := raw[:len(raw)-int(s.BLength)]

	return &Image{
		Payload:   payload,
		BcdDevice: s.BcdDevice,
		IDProduct: s.IDProduct,
		IDVendor:  s.IDVendor,
		BcdDFU:    s.BcdDFU,
		CRC:       s.DwCRC,
	}, nil
}

// Matches reports whether img targets the device identified by vid/pid,
// treating 0xFFFF as a wildcard on either side per DFU 1.1.
func Matches(img *Image, vid, pid uint16) bool {
	vendorOK := img.IDVendor == wildcardID || img.IDVendor == vid
	productOK := img.IDProduct == wildcardID || img.IDProduct == pid
	return vendorOK && productOK
}

// crc32NoComplement computes the IEEE 802.3 CRC-32 (reflected, initial
// 0xFFFFFFFF) over b WITHOUT the final one's-complement the standard
// algorithm (and the stdlib's crc32.ChecksumIEEE) applies. DFU 1.1's suffix
// CRC is defined over this un-complemented variant, so the running register
// value is returned directly. No library in the example corpus exposes this
// half-finished form of IEEE CRC-32 as a callable primitive, hence the
// hand-rolled bit-by-bit loop below instead of a one-line library call.
func crc32NoComplement(b []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, c := range b {
		crc ^= uint32(c)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
