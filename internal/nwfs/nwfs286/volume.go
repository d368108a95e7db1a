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

// Package nwfs286 decodes a NetWare 2.x (NWFS286) volume: the control
// sector and volume-information record (both pre- and post-2.15 schemas),
// the fixed 4096-byte block addressing, the paired-entry FAT, and the
// 32-byte directory entry pool. It implements vfs.Backend.
package nwfs286

import (
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfs/bindec"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
	"github.com/ostafen/nwfsarc/internal/nwfsimage"
)

const (
	// BlockBytes is the fixed NWFS286 block size.
	BlockBytes = 4096

	volInfoSector = 16

	fadeMagic = 0xFADE
)

// blockNumToSector converts an NWFS286 block number to its absolute sector
// within the partition: block n -> sector (n+4)*8.
func blockNumToSector(n uint32) uint64 {
	return uint64(n+4) * 8
}

// Volume is one mounted NWFS286 volume; it implements vfs.Backend.
type Volume struct {
	im         *nwfsimage.Image
	partOffset uint64 // partition's first sector, absolute LBA

	name string

	// Block lists from the volume-information record.
	dirBlocks1 []uint16
	dirBlocks2 []uint16
	fatBlocks  []uint16

	// fatIndex maps a FAT entry's index field to its next-block value,
	// built once at mount from the FAT blocks.
	fatIndex map[uint16]uint16

	rootID uint32
}

// Mount reads the control/volume-information sector at sector 16 of the
// partition and returns the single volume it describes.
func Mount(im *nwfsimage.Image, partitionFirstLBA uint32) (*Volume, error) {
	partOffset := uint64(partitionFirstLBA)

	raw, err := im.ReadSector(partOffset + volInfoSector)
	if err != nil {
		return nil, fmt.Errorf("nwfs286: volume info: %w", err)
	}

	v := &Volume{im: im, partOffset: partOffset, fatIndex: make(map[uint16]uint16)}

	var name string
	var entryCountOff int
	if bindec.Uint16LE(raw, 0) == 0 && bindec.Uint16LE(raw, 2) == fadeMagic {
		// >= 2.15 layout: name at offset 6, entry count at offset 24.
		name, err = bindec.FixedName(raw, 6, 16)
		entryCountOff = 24
	} else {
		// pre-2.15 layout: name at offset 2, entry count at offset 22.
		name, err = bindec.FixedName(raw, 2, 16)
		entryCountOff = 22
	}
	if err != nil {
		return nil, fmt.Errorf("nwfs286: volume name: %w", err)
	}
	v.name = name

	entryCount := int(bindec.Uint16LE(raw, entryCountOff))
	tableOff := entryCountOff + 2

	// The variable-length table lists, in order: directory-entry-1 blocks,
	// directory-entry-2 blocks, FAT blocks, all 16-bit block numbers. Each of
	// the three regions is entryCount entries long; a real volume-information
	// record carries its own sub-counts, but available documentation for
	// this layout only guarantees a single shared entryCount, so all three
	// share it. Within a region, a zero block number after its first entry
	// ends that region's list.
	for i := 0; i < 3; i++ {
		var list []uint16
		for j := 0; j < entryCount; j++ {
			off := tableOff + (i*entryCount+j)*2
			if off+2 > len(raw) {
				break
			}
			n := bindec.Uint16LE(raw, off)
			if n == 0 && j > 0 {
				break
			}
			if int(n)*8+32 > (1 << 20) { // coarse sanity bound, not a hard format limit
				return nil, fmt.Errorf("%w: block number %d out of range", vfs.ErrBadDirectoryEntry, n)
			}
			list = append(list, n)
		}
		switch i {
		case 0:
			v.dirBlocks1 = list
		case 1:
			v.dirBlocks2 = list
		case 2:
			v.fatBlocks = list
		}
	}

	if err := v.loadFat(); err != nil {
		return nil, fmt.Errorf("nwfs286: FAT: %w", err)
	}

	return v, nil
}

// loadFat reads every FAT block listed in the volume-information record and
// builds the (index -> next-block) map out of its paired (u16 index,
// u16 next-block) entries.
func (v *Volume) loadFat() error {
	for _, blockNum := range v.fatBlocks {
		raw, err := v.ReadBlock(uint32(blockNum))
		if err != nil {
			return err
		}
		for off := 0; off+4 <= len(raw); off += 4 {
			idx := bindec.Uint16LE(raw, off)
			next := bindec.Uint16LE(raw, off+2)
			if idx == 0 && next == 0 {
				continue
			}
			v.fatIndex[idx] = next
		}
	}
	return nil
}

// Name implements vfs.Backend.
func (v *Volume) Name() string { return v.name }

// BlockBytes implements vfs.Backend.
func (v *Volume) BlockBytes() uint32 { return BlockBytes }

// RootID implements vfs.Backend. NWFS286 has no on-disk root directory ID
// field; the decoder uses the sentinel parent value real top-level entries
// carry, 0xFFFF.
func (v *Volume) RootID() uint32 { return 0xFFFF }

// ReadBlock implements vfs.Backend: fixed 4096-byte blocks at sector
// (n+4)*8 within the partition.
func (v *Volume) ReadBlock(n uint32) ([]byte, error) {
	sector := v.partOffset + blockNumToSector(n)
	return v.im.ReadAt(int64(sector)*nwfsimage.SectorSize, BlockBytes)
}

// FatNext implements vfs.Backend: end-of-chain sentinel is 0xFFFF.
func (v *Volume) FatNext(b uint32) (uint32, bool, error) {
	next, ok := v.fatIndex[uint16(b)]
	if !ok {
		return 0, false, fmt.Errorf("%w: no FAT entry for block %d", vfs.ErrFatOutOfRange, b)
	}
	if next == 0xFFFF {
		return 0, false, nil
	}
	return uint32(next), true, nil
}

// DirectoryBlocks implements vfs.Backend: the explicit directory-entry
// blocks table, not a FAT walk.
func (v *Volume) DirectoryBlocks() ([]uint32, error) {
	blocks := make([]uint32, 0, len(v.dirBlocks1)+len(v.dirBlocks2))
	for _, b := range v.dirBlocks1 {
		blocks = append(blocks, uint32(b))
	}
	for _, b := range v.dirBlocks2 {
		blocks = append(blocks, uint32(b))
	}
	return blocks, nil
}
