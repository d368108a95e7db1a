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
package nwfsimage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenAndReadAt(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 4*SectorSize)
	copy(data[SectorSize:], []byte("marker"))
	path := writeTempImage(t, data)

	im, err := Open(path)
	require.NoError(t, err)
	defer im.Close()

	assert.Equal(t, int64(len(data)), im.Size())

	got, err := im.ReadAt(SectorSize, 6)
	require.NoError(t, err)
	assert.Equal(t, "marker", string(got))
}

func TestReadAtOutOfRange(t *testing.T) {
	path := writeTempImage(t, make([]byte, SectorSize))
	im, err := Open(path)
	require.NoError(t, err)
	defer im.Close()

	_, err = im.ReadAt(SectorSize, 16)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReadSector(t *testing.T) {
	data := make([]byte, 2*SectorSize)
	copy(data[SectorSize:], bytes.Repeat([]byte{0x7E}, SectorSize))
	path := writeTempImage(t, data)

	im, err := Open(path)
	require.NoError(t, err)
	defer im.Close()

	sec, err := im.ReadSector(1)
	require.NoError(t, err)
	assert.Equal(t, data[SectorSize:2*SectorSize], sec)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}
