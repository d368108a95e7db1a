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
package partition

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostafen/nwfsarc/internal/nwfsimage"
)

// writeMBR builds a 512-byte sector 0 with up to four partition entries and
// opens it as an Image.
func writeMBR(t *testing.T, entries []struct {
	typeByte    byte
	firstLBA    uint32
	sectorCount uint32
}) *nwfsimage.Image {
	t.Helper()
	sector := make([]byte, mbrSize)
	for i, e := range entries {
		off := partitionTableOff + i*entrySize
		sector[off+4] = e.typeByte
		binary.LittleEndian.PutUint32(sector[off+8:], e.firstLBA)
		binary.LittleEndian.PutUint32(sector[off+12:], e.sectorCount)
	}

	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, sector, 0o644))
	im, err := nwfsimage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { im.Close() })
	return im
}

type partEntry = struct {
	typeByte    byte
	firstLBA    uint32
	sectorCount uint32
}

func TestLocateNWFS386(t *testing.T) {
	im := writeMBR(t, []partEntry{{TypeNWFS386, 63, 20000}})
	p, err := Locate(im)
	require.NoError(t, err)
	assert.Equal(t, NWFS386, p.Version)
	assert.Equal(t, "NWFS386", p.Version.String())
	assert.Equal(t, uint32(63), p.FirstLBA)
	assert.Equal(t, uint32(20000), p.SectorCount)
	assert.Equal(t, int64(63)*nwfsimage.SectorSize, p.ByteOffset())
	assert.Equal(t, int64(20000)*nwfsimage.SectorSize, p.ByteLength())
}

func TestLocateNWFS286(t *testing.T) {
	im := writeMBR(t, []partEntry{{TypeNWFS286, 32, 8000}})
	p, err := Locate(im)
	require.NoError(t, err)
	assert.Equal(t, NWFS286, p.Version)
	assert.Equal(t, "NWFS286", p.Version.String())
}

func TestLocateIgnoresForeignPartitionTypes(t *testing.T) {
	im := writeMBR(t, []partEntry{{0x06, 63, 1000}, {TypeNWFS386, 1063, 5000}})
	p, err := Locate(im)
	require.NoError(t, err)
	assert.Equal(t, NWFS386, p.Version)
	assert.Equal(t, uint32(1063), p.FirstLBA)
}

func TestLocateNoPartition(t *testing.T) {
	im := writeMBR(t, nil)
	_, err := Locate(im)
	assert.ErrorIs(t, err, ErrNoPartition)
}

func TestLocateMultiplePartitions(t *testing.T) {
	im := writeMBR(t, []partEntry{{TypeNWFS286, 32, 1000}, {TypeNWFS386, 1032, 1000}})
	_, err := Locate(im)
	assert.ErrorIs(t, err, ErrMultiplePartitions)
}
