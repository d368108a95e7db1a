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

// Package nwfs386 decodes a NetWare 3.x+ (NWFS386) volume: the HOTFIX and
// MIRROR headers, the volume area and its per-volume entries, block
// resolution under the segmented/variable-block-size addressing model, the
// flat FAT, and the 128-byte directory entry pool. It implements
// vfs.Backend so the unified VFS layer never has to know these details.
package nwfs386

import (
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfs/bindec"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
	"github.com/ostafen/nwfsarc/internal/nwfsimage"
)

const (
	hotfixSectorBase  = 32
	hotfixCopySectors = 8 // 4KiB per copy at 512B/sector
	hotfixCopies      = 4
	mirrorSector      = 33

	hotfixTag = "HOTFIX00"
	mirrorTag = "MIRROR00"
	volumeTag = "NetWare Volumes\x00"

	volumeAreaBytes  = 64 * 1024
	volumeEntryBytes = 56
)

// hotfixHeader is the bad-sector-redirection header replicated four times
// starting at sector 32.
type hotfixHeader struct {
	ID               uint32
	DataSectorCount  uint32
	RedirSectorCount uint32
}

func readHotfix(im *nwfsimage.Image, partOffsetSectors uint64) (*hotfixHeader, error) {
	var lastErr error
	for copyIdx := 0; copyIdx < hotfixCopies; copyIdx++ {
		lba := partOffsetSectors + hotfixSectorBase + uint64(copyIdx*hotfixCopySectors)
		raw, err := im.ReadSector(lba)
		if err != nil {
			lastErr = err
			continue
		}
		if string(raw[:8]) != hotfixTag {
			lastErr = fmt.Errorf("%w: hotfix copy %d tag mismatch", vfs.ErrBadMagic, copyIdx)
			continue
		}
		return &hotfixHeader{
			ID:               bindec.Uint32LE(raw, 8),
			DataSectorCount:  bindec.Uint32LE(raw, 12),
			RedirSectorCount: bindec.Uint32LE(raw, 16),
		}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no valid hotfix copy", vfs.ErrBadMagic)
	}
	return nil, lastErr
}

// mirrorHeader duplicates the hotfix area's location across two LBAs; the
// decoder reads from the first valid pair and does not reconcile divergence
// between them.
type mirrorHeader struct {
	Created   bindec.Timestamp
	HotfixLBA [2]uint32
}

func readMirror(im *nwfsimage.Image, partOffsetSectors uint64) (*mirrorHeader, error) {
	raw, err := im.ReadSector(partOffsetSectors + mirrorSector)
	if err != nil {
		return nil, err
	}
	if string(raw[:8]) != mirrorTag {
		return nil, fmt.Errorf("%w: mirror tag mismatch", vfs.ErrBadMagic)
	}
	return &mirrorHeader{
		Created:   bindec.DecodeTimestamp(bindec.Uint32LE(raw, 8)),
		HotfixLBA: [2]uint32{bindec.Uint32LE(raw, 12), bindec.Uint32LE(raw, 16)},
	}, nil
}

// volumeEntry is one 56-byte record from the volume area.
type volumeEntry struct {
	Name              string
	Segment           uint16
	FirstSectorOnPart uint32
	TotalBlocks       uint32
	FirstDataBlockSeg uint32
	BlockValue        uint16
	DirRootBlock      uint32
	DirBackupBlock    uint32
}

func parseVolumeEntry(raw []byte) (volumeEntry, error) {
	name, err := bindec.LengthPrefixedName(raw, 0, 19)
	if err != nil {
		return volumeEntry{}, err
	}
	return volumeEntry{
		Name:              name,
		Segment:           bindec.Uint16LE(raw, 20),
		FirstSectorOnPart: bindec.Uint32LE(raw, 22),
		TotalBlocks:       bindec.Uint32LE(raw, 26),
		FirstDataBlockSeg: bindec.Uint32LE(raw, 30),
		BlockValue:        bindec.Uint16LE(raw, 34),
		DirRootBlock:      bindec.Uint32LE(raw, 36),
		DirBackupBlock:    bindec.Uint32LE(raw, 40),
	}, nil
}

// validBlockValues enumerates the divisors the installer offers; the
// decoder accepts them syntactically and nothing else.
var validBlockValues = map[uint16]bool{4: true, 8: true, 16: true, 32: true, 64: true, 128: true, 256: true}

// Volume is one mounted NWFS386 volume; it implements vfs.Backend.
type Volume struct {
	im         *nwfsimage.Image
	partOffset uint64 // partition's first sector, absolute LBA
	entry      volumeEntry
	blockBytes uint32
	segmentEnd uint32 // first block number past this segment
}

// Mount locates sector 32/33, the volume area, and returns one Volume per
// entry found there.
func Mount(im *nwfsimage.Image, partitionFirstLBA uint32) ([]*Volume, error) {
	partOffset := uint64(partitionFirstLBA)

	hotfix, err := readHotfix(im, partOffset)
	if err != nil {
		return nil, fmt.Errorf("nwfs386: hotfix: %w", err)
	}
	if _, err := readMirror(im, partOffset); err != nil {
		return nil, fmt.Errorf("nwfs386: mirror: %w", err)
	}

	volAreaSector := partOffset + hotfixSectorBase + uint64(hotfix.RedirSectorCount)
	volAreaOffset := int64(volAreaSector) * nwfsimage.SectorSize
	raw, err := im.ReadAt(volAreaOffset, volumeAreaBytes)
	if err != nil {
		return nil, fmt.Errorf("nwfs386: volume area: %w", err)
	}

	if string(raw[:16]) != volumeTag {
		return nil, fmt.Errorf("%w: volume area tag mismatch", vfs.ErrBadMagic)
	}
	count := bindec.Uint32LE(raw, 16)
	if int(count)*volumeEntryBytes+32 > volumeAreaBytes {
		return nil, fmt.Errorf("%w: volume entry count %d overflows volume area", vfs.ErrBadMagic, count)
	}

	var volumes []*Volume
	for i := uint32(0); i < count; i++ {
		off := 20 + int(i)*volumeEntryBytes
		ve, err := parseVolumeEntry(raw[off : off+volumeEntryBytes])
		if err != nil {
			return nil, fmt.Errorf("nwfs386: volume entry %d: %w", i, err)
		}
		if !validBlockValues[ve.BlockValue] {
			return nil, fmt.Errorf("%w: block_value=%d", vfs.ErrBadBlockValue, ve.BlockValue)
		}

		blockBytes := (256 / uint32(ve.BlockValue)) * 1024
		volumes = append(volumes, &Volume{
			im:         im,
			partOffset: partOffset,
			entry:      ve,
			blockBytes: blockBytes,
			segmentEnd: ve.FirstDataBlockSeg + ve.TotalBlocks,
		})
	}
	return volumes, nil
}

// Name implements vfs.Backend.
func (v *Volume) Name() string { return v.entry.Name }

// BlockBytes implements vfs.Backend.
func (v *Volume) BlockBytes() uint32 { return v.blockBytes }

// RootID implements vfs.Backend: the filesystem-assigned sentinel for
// "no parent" on a 386 volume is directory ID 0.
func (v *Volume) RootID() uint32 { return 0 }

// resolveSector maps a block number to its sector within the partition,
// honoring the segmented addressing model. Blocks outside this segment are
// reported, not silently wrong.
func (v *Volume) resolveSector(n uint32) (uint64, error) {
	if n < v.entry.FirstDataBlockSeg || n >= v.segmentEnd {
		return 0, fmt.Errorf("%w: block %d (segment [%d,%d))", vfs.ErrBlockNotInSegment, n, v.entry.FirstDataBlockSeg, v.segmentEnd)
	}
	sectorsPerBlock := uint64(v.blockBytes / nwfsimage.SectorSize)
	sector := uint64(v.entry.FirstSectorOnPart) + uint64(n-v.entry.FirstDataBlockSeg)*sectorsPerBlock
	return sector, nil
}

// ReadBlock implements vfs.Backend.
func (v *Volume) ReadBlock(n uint32) ([]byte, error) {
	sector, err := v.resolveSector(n)
	if err != nil {
		return nil, err
	}
	return v.im.ReadAt(int64(v.partOffset+sector)*nwfsimage.SectorSize, int(v.blockBytes))
}

// fatEntriesPerBlock is how many 32-bit FAT entries fit in one data block.
func (v *Volume) fatEntriesPerBlock() uint32 {
	return v.blockBytes / 4
}

// FatNext implements vfs.Backend. The flat FAT lives in block 0 and, if the
// volume has enough blocks that the table doesn't fit in one block,
// continues into the blocks linearly following it.
func (v *Volume) FatNext(b uint32) (uint32, bool, error) {
	perBlock := v.fatEntriesPerBlock()
	fatBlock := b / perBlock
	offInBlock := int(b%perBlock) * 4

	raw, err := v.ReadBlock(fatBlock)
	if err != nil {
		return 0, false, fmt.Errorf("nwfs386: FAT block %d: %w", fatBlock, err)
	}
	next := bindec.Uint32LE(raw, offInBlock)
	if next == 0xFFFFFFFF || next >= v.entry.TotalBlocks {
		return 0, false, nil
	}
	return next, true, nil
}

// DirectoryBlocks implements vfs.Backend by FAT-walking from the volume's
// directory root block.
func (v *Volume) DirectoryBlocks() ([]uint32, error) {
	return vfs.WalkDirectoryChain(v, v.entry.DirRootBlock)
}
