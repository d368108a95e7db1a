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
package nwfs286

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
	"github.com/ostafen/nwfsarc/internal/nwfsimage"
)

func TestBlockNumToSector(t *testing.T) {
	assert.Equal(t, uint64(32), blockNumToSector(0))
	assert.Equal(t, uint64(40), blockNumToSector(1))
	assert.Equal(t, uint64((12+4)*8), blockNumToSector(12))
}

func TestFatNextPairedEntries(t *testing.T) {
	v := &Volume{fatIndex: map[uint16]uint16{20: 21, 21: 0xFFFF}}

	next, ok, err := v.FatNext(20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(21), next)

	_, ok, err = v.FatNext(21)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = v.FatNext(99)
	assert.ErrorIs(t, err, vfs.ErrFatOutOfRange)
}

// buildImage lays out a full NWFS286 image on one partition starting at LBA
// 0: a volume-information record at sector 16, a root directory block (10)
// holding a subdirectory, a plain file and a soft-deleted file, a second
// directory block (11) holding the subdirectory's one child, a FAT block
// (12), and three data blocks (20, 21 for the two-block file; 30 for the
// nested one-block file).
func buildImage(t *testing.T, schema215 bool) *nwfsimage.Image {
	t.Helper()
	const imageSize = 300 * 512
	img := make([]byte, imageSize)

	sector16 := img[16*nwfsimage.SectorSize : 17*nwfsimage.SectorSize]
	var nameOff, entryCountOff int
	if schema215 {
		binary.LittleEndian.PutUint16(sector16[0:], 0)
		binary.LittleEndian.PutUint16(sector16[2:], fadeMagic)
		nameOff, entryCountOff = 6, 24
	} else {
		binary.LittleEndian.PutUint16(sector16[0:], 1)
		nameOff, entryCountOff = 2, 22
	}
	copy(sector16[nameOff:nameOff+16], "SYS")
	binary.LittleEndian.PutUint16(sector16[entryCountOff:], 1)
	tableOff := entryCountOff + 2
	binary.LittleEndian.PutUint16(sector16[tableOff:], 10)   // dirBlocks1[0]
	binary.LittleEndian.PutUint16(sector16[tableOff+2:], 11) // dirBlocks2[0]
	binary.LittleEndian.PutUint16(sector16[tableOff+4:], 12) // fatBlocks[0]

	block := func(n uint32) []byte {
		off := blockNumToSector(n) * nwfsimage.SectorSize
		return img[off : off+BlockBytes]
	}

	root := block(10)
	// slot 0: SUBDIR directory.
	binary.LittleEndian.PutUint16(root[offParentID:], 0xFFFF)
	copy(root[offName:offName+nameFieldLen], "SUBDIR")
	binary.LittleEndian.PutUint16(root[offAttrs:], 0xFF00)
	// slot 1: FILE1.TXT, spanning two 4096-byte blocks.
	s1 := root[dirEntrySize:]
	binary.LittleEndian.PutUint16(s1[offParentID:], 0xFFFF)
	copy(s1[offName:offName+nameFieldLen], "FILE1.TXT")
	binary.LittleEndian.PutUint32(s1[offSize:], 4200)
	binary.LittleEndian.PutUint16(s1[offFirstBlk:], 20)
	// slot 2: OLD.TXT, soft-deleted via the 0xE5 marker.
	s2 := root[2*dirEntrySize:]
	binary.LittleEndian.PutUint16(s2[offParentID:], 0xFFFF)
	s2[offName] = deletedMarker
	copy(s2[offName+1:offName+nameFieldLen], "LD.TXT")
	binary.LittleEndian.PutUint32(s2[offSize:], 10)

	sub := block(11)
	binary.LittleEndian.PutUint16(sub[offParentID:], uint16(compositeID(10, 0)))
	copy(sub[offName:offName+nameFieldLen], "NESTED.TXT")
	binary.LittleEndian.PutUint32(sub[offSize:], 16)
	binary.LittleEndian.PutUint16(sub[offFirstBlk:], 30)

	fat := block(12)
	binary.LittleEndian.PutUint16(fat[0:], 20)
	binary.LittleEndian.PutUint16(fat[2:], 21)
	binary.LittleEndian.PutUint16(fat[4:], 21)
	binary.LittleEndian.PutUint16(fat[6:], 0xFFFF)
	binary.LittleEndian.PutUint16(fat[8:], 30)
	binary.LittleEndian.PutUint16(fat[10:], 0xFFFF)

	for i := range block(20) {
		block(20)[i] = 'A'
	}
	for i := range block(21) {
		block(21)[i] = 'B'
	}
	for i := range block(30) {
		block(30)[i] = 'C'
	}

	path := filepath.Join(t.TempDir(), "nwfs286.img")
	require.NoError(t, os.WriteFile(path, img, 0o644))
	im, err := nwfsimage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { im.Close() })
	return im
}

func TestMountPre215Schema(t *testing.T) {
	im := buildImage(t, false)
	v, err := Mount(im, 0)
	require.NoError(t, err)
	assert.Equal(t, "SYS", v.Name())
	assert.Equal(t, uint32(BlockBytes), v.BlockBytes())
}

func TestMountPost215Schema(t *testing.T) {
	im := buildImage(t, true)
	v, err := Mount(im, 0)
	require.NoError(t, err)
	assert.Equal(t, "SYS", v.Name())
}

func TestMountDirectoryBlocksAndFatChain(t *testing.T) {
	im := buildImage(t, false)
	v, err := Mount(im, 0)
	require.NoError(t, err)

	blocks, err := v.DirectoryBlocks()
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 11}, blocks)

	next, ok, err := v.FatNext(20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(21), next)

	_, ok, err = v.FatNext(21)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMountEndToEndThroughVFS(t *testing.T) {
	im := buildImage(t, false)
	v, err := Mount(im, 0)
	require.NoError(t, err)

	fsys, err := vfs.NewVFS([]vfs.Backend{v})
	require.NoError(t, err)

	dh, err := fsys.OpenDir("SYS:/")
	require.NoError(t, err)
	entries := dh.Entries()
	names := make(map[string]vfs.EntryMetadata)
	for _, e := range entries {
		names[e.Name] = e
	}
	require.Contains(t, names, "SUBDIR")
	require.Contains(t, names, "FILE1.TXT")
	assert.True(t, names["SUBDIR"].Kind == vfs.KindDirectory)
	assert.Equal(t, uint64(4200), names["FILE1.TXT"].Size)
	assert.Len(t, entries, 2, "the soft-deleted third entry is hidden by default")

	withDeleted := dh.WithDeleted().Entries()
	var sawDeleted bool
	for _, e := range withDeleted {
		if e.Deleted {
			sawDeleted = true
		}
	}
	assert.True(t, sawDeleted)

	fh, err := fsys.OpenFile("SYS:/FILE1.TXT")
	require.NoError(t, err)
	data, err := fh.ReadAll()
	require.NoError(t, err)
	require.Len(t, data, 4200)
	assert.Equal(t, byte('A'), data[0])
	assert.Equal(t, byte('B'), data[4096])

	nested, err := fsys.OpenFile("SYS:/SUBDIR/NESTED.TXT")
	require.NoError(t, err)
	nestedData, err := nested.ReadAll()
	require.NoError(t, err)
	require.Len(t, nestedData, 16)
	assert.Equal(t, byte('C'), nestedData[0])
}
