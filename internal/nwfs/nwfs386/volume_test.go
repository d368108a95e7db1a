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
package nwfs386

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

func TestBlockValueToBlockBytes(t *testing.T) {
	cases := []struct {
		value uint16
		bytes uint32
	}{
		{4, 64 * 1024},
		{8, 32 * 1024},
		{16, 16 * 1024},
		{32, 8 * 1024},
		{64, 4 * 1024},
		{128, 2 * 1024},
		{256, 1024},
	}
	for _, c := range cases {
		assert.True(t, validBlockValues[c.value])
		assert.Equal(t, c.bytes, (256/uint32(c.value))*1024)
	}
	assert.False(t, validBlockValues[3])
	assert.False(t, validBlockValues[100])
}

func TestResolveSectorOutOfSegment(t *testing.T) {
	v := &Volume{
		entry:      volumeEntry{FirstDataBlockSeg: 100, FirstSectorOnPart: 2000},
		blockBytes: 4096,
		segmentEnd: 150,
	}
	_, err := v.resolveSector(99)
	assert.ErrorIs(t, err, vfs.ErrBlockNotInSegment)
	_, err = v.resolveSector(150)
	assert.ErrorIs(t, err, vfs.ErrBlockNotInSegment)

	sector, err := v.resolveSector(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), sector)

	sector, err = v.resolveSector(101)
	require.NoError(t, err)
	assert.Equal(t, uint64(2008), sector) // one block (8 sectors) further
}

func TestReadBlockHonorsPartitionOffset(t *testing.T) {
	const partLBA = 100
	img := make([]byte, (partLBA+2100)*nwfsimage.SectorSize)
	copy(img[(partLBA+2000)*nwfsimage.SectorSize:], "marker")

	path := filepath.Join(t.TempDir(), "offset.img")
	require.NoError(t, os.WriteFile(path, img, 0o644))
	im, err := nwfsimage.Open(path)
	require.NoError(t, err)
	defer im.Close()

	v := &Volume{
		im:         im,
		partOffset: partLBA,
		entry:      volumeEntry{FirstSectorOnPart: 2000, TotalBlocks: 10},
		blockBytes: 4096,
		segmentEnd: 10,
	}
	data, err := v.ReadBlock(0)
	require.NoError(t, err)
	assert.Equal(t, "marker", string(data[:6]))
}

// The test image below uses a one-segment volume with FirstDataBlockSeg 0 so
// the flat FAT (always addressed as block 0) and the data blocks share the
// same segment, the common case for a volume that was never split.
const (
	testFirstSectorOnPart = 2000
	testSectorsPerBlock   = 8 // 4096-byte blocks over 512-byte sectors
)

func buildImage(t *testing.T) *nwfsimage.Image {
	t.Helper()
	const imageSize = 1_200_000
	img := make([]byte, imageSize)

	hotfix := img[32*nwfsimage.SectorSize:]
	copy(hotfix[0:8], hotfixTag)
	binary.LittleEndian.PutUint32(hotfix[8:], 1)   // ID
	binary.LittleEndian.PutUint32(hotfix[12:], 0)  // DataSectorCount
	binary.LittleEndian.PutUint32(hotfix[16:], 32) // RedirSectorCount -> volume area at sector 64

	mirror := img[33*nwfsimage.SectorSize:]
	copy(mirror[0:8], mirrorTag)

	volArea := img[64*nwfsimage.SectorSize:]
	copy(volArea[0:16], volumeTag)
	binary.LittleEndian.PutUint32(volArea[16:], 1) // one volume entry

	ve := volArea[20:]
	ve[0] = 3
	copy(ve[1:4], "SYS")
	binary.LittleEndian.PutUint32(ve[22:], testFirstSectorOnPart)
	binary.LittleEndian.PutUint32(ve[26:], 200) // TotalBlocks
	binary.LittleEndian.PutUint32(ve[30:], 0)   // FirstDataBlockSeg
	binary.LittleEndian.PutUint16(ve[34:], 64)  // BlockValue -> 4096-byte blocks
	binary.LittleEndian.PutUint32(ve[36:], 10)  // DirRootBlock

	block := func(n uint32) []byte {
		sector := uint64(testFirstSectorOnPart) + uint64(n)*testSectorsPerBlock
		off := sector * nwfsimage.SectorSize
		return img[off : off+4096]
	}

	fat := block(0)
	binary.LittleEndian.PutUint32(fat[10*4:], 11)         // dir block 10 -> 11
	binary.LittleEndian.PutUint32(fat[11*4:], 0xFFFFFFFF) // dir chain ends
	binary.LittleEndian.PutUint32(fat[20*4:], 21)         // file1 block 20 -> 21
	binary.LittleEndian.PutUint32(fat[21*4:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(fat[30*4:], 0xFFFFFFFF) // nested file, one block

	root := block(10)
	fillAvailable(root)
	// Slots 0-3 are written below; start them from zero so that name
	// padding, attributes and unused trustee entries don't keep the 0xFF fill.
	clear(root[:4*dirEntrySize])
	// slot 0: SUBDIR.
	s0 := root[0:dirEntrySize]
	binary.LittleEndian.PutUint32(s0[offParentID:], 0)
	binary.LittleEndian.PutUint16(s0[offAttrs:], attrDirectory)
	copy(s0[offName:offName+nameFieldLen], "SUBDIR")
	binary.LittleEndian.PutUint32(s0[offSelfID:], 500)
	// slot 1: FILE1.TXT, two blocks.
	s1 := root[dirEntrySize : 2*dirEntrySize]
	binary.LittleEndian.PutUint32(s1[offParentID:], 0)
	copy(s1[offName:offName+nameFieldLen], "FILE1.TXT")
	binary.LittleEndian.PutUint32(s1[offSize:], 4200)
	binary.LittleEndian.PutUint32(s1[offFirstBlock:], 20)
	binary.LittleEndian.PutUint32(s1[offDeletedTS:], 0)
	// slot 2: the trustee grant list for FILE1.TXT, immediately following it
	// in the pool per the on-disk convention.
	s2 := root[2*dirEntrySize : 3*dirEntrySize]
	binary.LittleEndian.PutUint32(s2[0:], sentinelGrantList)
	binary.BigEndian.PutUint32(s2[offTrustees:], 0x00000042)
	binary.LittleEndian.PutUint16(s2[offTrustees+4:], vfs.RightRead|vfs.RightFileScan)
	// slot 3: OLD.TXT, soft-deleted.
	s3 := root[3*dirEntrySize : 4*dirEntrySize]
	binary.LittleEndian.PutUint32(s3[offParentID:], 0)
	copy(s3[offName:offName+nameFieldLen], "OLD.TXT")
	binary.LittleEndian.PutUint32(s3[offSize:], 10)
	binary.LittleEndian.PutUint32(s3[offDeletedTS:], 0x12345678)

	sub := block(11)
	fillAvailable(sub)
	clear(sub[:dirEntrySize])
	n0 := sub[0:dirEntrySize]
	binary.LittleEndian.PutUint32(n0[offParentID:], 500)
	copy(n0[offName:offName+nameFieldLen], "NESTED.TXT")
	binary.LittleEndian.PutUint32(n0[offSize:], 16)
	binary.LittleEndian.PutUint32(n0[offFirstBlock:], 30)
	binary.LittleEndian.PutUint32(n0[offDeletedTS:], 0)

	for i := range block(20) {
		block(20)[i] = 'A'
	}
	for i := range block(21) {
		block(21)[i] = 'B'
	}
	for i := range block(30) {
		block(30)[i] = 'C'
	}

	path := filepath.Join(t.TempDir(), "nwfs386.img")
	require.NoError(t, os.WriteFile(path, img, 0o644))
	im, err := nwfsimage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { im.Close() })
	return im
}

func TestMountParsesVolumeArea(t *testing.T) {
	im := buildImage(t)
	volumes, err := Mount(im, 0)
	require.NoError(t, err)
	require.Len(t, volumes, 1)
	v := volumes[0]
	assert.Equal(t, "SYS", v.Name())
	assert.Equal(t, uint32(4096), v.BlockBytes())
	assert.Equal(t, uint32(0), v.RootID())
}

func TestMountRejectsBadHotfixTag(t *testing.T) {
	const imageSize = 100 * nwfsimage.SectorSize
	img := make([]byte, imageSize)
	copy(img[32*nwfsimage.SectorSize:], "GARBAGE0")

	path := filepath.Join(t.TempDir(), "bad.img")
	require.NoError(t, os.WriteFile(path, img, 0o644))
	im, err := nwfsimage.Open(path)
	require.NoError(t, err)
	defer im.Close()

	_, err = Mount(im, 0)
	assert.ErrorIs(t, err, vfs.ErrBadMagic)
}

func TestMountDirectoryChainAndFatWalk(t *testing.T) {
	im := buildImage(t)
	volumes, err := Mount(im, 0)
	require.NoError(t, err)
	v := volumes[0]

	blocks, err := v.DirectoryBlocks()
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 11}, blocks)

	next, ok, err := v.FatNext(10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(11), next)

	_, ok, err = v.FatNext(11)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMountEndToEndThroughVFS(t *testing.T) {
	im := buildImage(t)
	volumes, err := Mount(im, 0)
	require.NoError(t, err)

	fsys, err := vfs.NewVFS([]vfs.Backend{volumes[0]})
	require.NoError(t, err)

	dh, err := fsys.OpenDir("SYS:/")
	require.NoError(t, err)
	entries := dh.Entries()
	assert.Len(t, entries, 2, "the soft-deleted third entry is hidden by default")

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

	rights, err := dh.Trustees("FILE1.TXT")
	require.NoError(t, err)
	require.Len(t, rights, 1)
	assert.Equal(t, uint32(0x42), rights[0].ObjectID)
	assert.True(t, rights[0].Has(vfs.RightRead))
	assert.False(t, rights[0].Has(vfs.RightWrite))
}
