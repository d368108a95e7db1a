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
package bindec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint16LEUint32LE(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	assert.Equal(t, uint16(0x0201), Uint16LE(b, 0))
	assert.Equal(t, uint32(0x04030201), Uint32LE(b, 0))
}

func TestUint16BEUint32BE(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	assert.Equal(t, uint16(0x0102), Uint16BE(b, 0))
	assert.Equal(t, uint32(0x01020304), Uint32BE(b, 0))
}

func TestFixedNameTrimsPaddingAndDecodesCodepage(t *testing.T) {
	// "REPORT  " padded with spaces, then a separate NUL-padded field holding
	// a high-bit CP437 byte (0x81 = "ü").
	b := append([]byte("REPORT"), ' ', ' ')
	name, err := FixedName(b, 0, len(b))
	require.NoError(t, err)
	assert.Equal(t, "REPORT", name)

	b2 := []byte{0x81, 0x00, 0x00}
	name2, err := FixedName(b2, 0, len(b2))
	require.NoError(t, err)
	assert.Equal(t, "ü", name2)
}

func TestFixedNameOutOfRange(t *testing.T) {
	_, err := FixedName([]byte{1, 2}, 0, 4)
	require.Error(t, err)
}

func TestLengthPrefixedName(t *testing.T) {
	b := []byte{4, 'T', 'E', 'S', 'T', 0, 0, 0}
	name, err := LengthPrefixedName(b, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, "TEST", name)
}

func TestLengthPrefixedNameTooLong(t *testing.T) {
	b := []byte{9, 'T', 'E', 'S', 'T'}
	_, err := LengthPrefixedName(b, 0, 4)
	require.Error(t, err)
}

func TestDecodeTimestampValid(t *testing.T) {
	// 2001-02-03 04:05:06 packed DOS style.
	date := uint16((2001-1980)<<9 | 2<<5 | 3)
	tm := uint16(4<<11 | 5<<5 | 3)
	raw := uint32(date)<<16 | uint32(tm)

	ts := DecodeTimestamp(raw)
	require.False(t, ts.Invalid)
	assert.Equal(t, 2001, ts.Year)
	assert.Equal(t, 2, ts.Month)
	assert.Equal(t, 3, ts.Day)
	assert.Equal(t, 4, ts.Hour)
	assert.Equal(t, 5, ts.Minute)
	assert.Equal(t, 6, ts.Second)
	assert.Equal(t, "2001-02-03 04:05:06", ts.String())
}

func TestDecodeTimestampInvalid(t *testing.T) {
	// Month 0 is out of range.
	date := uint16(0<<5 | 1)
	raw := uint32(date) << 16
	ts := DecodeTimestamp(raw)
	assert.True(t, ts.Invalid)
	assert.Equal(t, "<invalid>", ts.String())
}

func TestObjectIDString(t *testing.T) {
	assert.Equal(t, "?", ObjectIDString(0xFFFFFFFF))
	assert.Equal(t, "?", ObjectIDString(0x0000FFFF))
	assert.Equal(t, "000012ab", ObjectIDString(0x000012ab))
}
