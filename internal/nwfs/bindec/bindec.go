// Copyright (c) 2025 Stefano Scafiti
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

// Package bindec holds the little set of binary-decoding primitives shared by
// the NWFS286 and NWFS386 volume layers: integer readers of both endiannesses,
// fixed-length and length-prefixed name decoders, and the DOS-style packed
// timestamp. Object IDs are big-endian while almost everything else on an NWFS
// volume is little-endian; two explicit helpers exist instead of one generic
// reader so the two are never accidentally swapped.
package bindec

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Uint16LE reads a little-endian 16-bit integer at offset off in b.
func Uint16LE(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// Uint32LE reads a little-endian 32-bit integer at offset off in b.
func Uint32LE(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// Uint32BE reads a big-endian 32-bit integer at offset off in b.
// NWFS object IDs are stored this way; nothing else on the volume is.
func Uint32BE(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

// Uint16BE reads a big-endian 16-bit integer at offset off in b.
func Uint16BE(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off : off+2])
}

// FixedName decodes a fixed-width, NUL/space padded name field of length n
// starting at off. Trailing NUL and space padding is trimmed first, then the
// remaining bytes run through the DOS codepage 437 table so that high-bit
// bytes (accented characters occasionally used in volume and file names)
// render correctly instead of as raw Latin-1.
func FixedName(b []byte, off, n int) (string, error) {
	if off+n > len(b) {
		return "", fmt.Errorf("bindec: fixed name field out of range (off=%d n=%d len=%d)", off, n, len(b))
	}
	raw := b[off : off+n]
	end := n
	for end > 0 && (raw[end-1] == 0x00 || raw[end-1] == ' ') {
		end--
	}
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(raw[:end])
	if err != nil {
		// Not every byte sequence is valid under the codepage decoder;
		// fall back to the raw trimmed bytes rather than failing the mount.
		return string(raw[:end]), nil
	}
	return string(decoded), nil
}

// LengthPrefixedName decodes a length-prefixed name: a single length byte at
// off, followed by up to max bytes of name data. NWFS386 volume-entry names
// use this layout.
func LengthPrefixedName(b []byte, off, max int) (string, error) {
	if off+1+max > len(b) {
		return "", fmt.Errorf("bindec: length-prefixed name out of range (off=%d max=%d len=%d)", off, max, len(b))
	}
	n := int(b[off])
	if n > max {
		return "", fmt.Errorf("bindec: name length %d exceeds field width %d", n, max)
	}
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(b[off+1 : off+1+n])
	if err != nil {
		return string(b[off+1 : off+1+n]), nil
	}
	return string(decoded), nil
}

// Timestamp is a decoded 32-bit DOS-style date+time value: high 16 bits date,
// low 16 bits time. Out-of-range fields mark the value Invalid rather than
// raising an error; invalid timestamps are an internal marker that is only
// ever rendered, never propagated as an error.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Invalid              bool
}

// DecodeTimestamp decodes a little-endian packed 32-bit DOS timestamp.
func DecodeTimestamp(raw uint32) Timestamp {
	date := uint16(raw >> 16)
	tm := uint16(raw)

	year := int(date>>9) + 1980
	month := int((date >> 5) & 0x0F)
	day := int(date & 0x1F)

	hour := int(tm >> 11)
	minute := int((tm >> 5) & 0x3F)
	second := int(tm&0x1F) * 2

	ts := Timestamp{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 58 {
		ts.Invalid = true
	}
	return ts
}

// String renders the timestamp the way the CLI surface displays it:
// "<invalid>" for an out-of-range value, otherwise an ISO-like string.
func (t Timestamp) String() string {
	if t.Invalid {
		return "<invalid>"
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// ObjectIDString renders a bindery object ID the way owner/modifier fields are
// shown in a listing: the 0xFFFFFFFF/0xFFFF "no owner" sentinel renders as "?",
// everything else as lowercase hex.
func ObjectIDString(id uint32) string {
	if id == 0xFFFFFFFF || id == 0x0000FFFF || id == 0xFFFF {
		return "?"
	}
	return fmt.Sprintf("%08x", id)
}
