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
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfs/bindec"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
)

const (
	dirEntrySize = 32
	nameFieldLen = 12

	offParentID = 0
	offName     = 2
	offAttrs    = 14
	offSize     = 16
	offCreated  = 20 // date(2) + time(2)
	offAccessed = 24 // date(2) only
	offModified = 26 // date(2) + time(2)
	offFirstBlk = 30

	attrDirHighByte = 0xFF

	// deletedMarker mirrors the classic FAT on-disk convention (0xE5 as a
	// name's first byte marks the slot soft-deleted rather than free).
	deletedMarker = 0xE5
)

// ParseDirSlots implements vfs.Backend: classifies and decodes every
// 32-byte slot in one directory block.
func (v *Volume) ParseDirSlots(blockNum uint32, block []byte) ([]vfs.DirSlot, error) {
	if len(block)%dirEntrySize != 0 {
		return nil, fmt.Errorf("%w: block length %d not a multiple of %d", vfs.ErrBadDirectoryEntry, len(block), dirEntrySize)
	}

	n := len(block) / dirEntrySize
	slots := make([]vfs.DirSlot, 0, n)

	for i := 0; i < n; i++ {
		raw := block[i*dirEntrySize : (i+1)*dirEntrySize]

		if raw[offName] == 0x00 {
			slots = append(slots, vfs.DirSlot{Kind: vfs.SlotAvailable})
			continue
		}

		deleted := raw[offName] == deletedMarker

		name, err := bindec.FixedName(raw, offName, nameFieldLen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vfs.ErrBadDirectoryEntry, err)
		}

		attrs := bindec.Uint16LE(raw, offAttrs)
		isDir := attrs>>8 == attrDirHighByte

		slot := vfs.DirSlot{
			Kind:     vfs.SlotReal,
			IsDir:    isDir,
			Name:     name,
			ParentID: uint32(bindec.Uint16LE(raw, offParentID)),
			Deleted:  deleted,
		}

		if isDir {
			slot.SelfID = compositeID(blockNum, i)
		} else {
			slot.Size = uint64(bindec.Uint32LE(raw, offSize))
			created := combineDateTime(bindec.Uint16LE(raw, offCreated), bindec.Uint16LE(raw, offCreated+2))
			modified := combineDateTime(bindec.Uint16LE(raw, offModified), bindec.Uint16LE(raw, offModified+2))
			slot.Created = created
			slot.Modified = modified
			slot.FirstBlock = uint32(bindec.Uint16LE(raw, offFirstBlk))
		}

		slots = append(slots, slot)
	}
	return slots, nil
}

// compositeID packs a directory's own ID from its (block, slot) location:
// upper 12 bits block index, lower 4 bits slot within that block.
func compositeID(blockNum uint32, slotIdx int) uint32 {
	return (blockNum << 4) | uint32(slotIdx&0x0F)
}

func combineDateTime(date, time uint16) bindec.Timestamp {
	return bindec.DecodeTimestamp(uint32(date)<<16 | uint32(time))
}
