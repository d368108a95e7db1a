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
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfs/bindec"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
)

const (
	dirEntrySize = 128

	// Sentinel values occupying the first 4 bytes of a slot.
	sentinelAvailable  = 0xFFFFFFFF
	sentinelGrantList  = 0xFFFFFFFE
	sentinelVolumeInfo = 0xFFFFFFFD

	attrDirectory = 0x10 // bit 4

	offParentID  = 0
	offAttrs     = 4
	offNameLen   = 6
	offName      = 7
	nameFieldLen = 12
	offCreated   = 19
	offOwner     = 23
	offModified  = 27

	offSize       = 48
	offFirstBlock = 52
	offDeletedTS  = 56

	offSelfID = 120

	trusteeCount     = 16
	trusteeEntrySize = 6
	offTrustees      = 4

	offVolInfoCreated = 4
	offVolInfoOwner   = 8
)

// ParseDirSlots implements vfs.Backend: it classifies and decodes every
// 128-byte slot in one directory block.
func (v *Volume) ParseDirSlots(_ uint32, block []byte) ([]vfs.DirSlot, error) {
	if len(block)%dirEntrySize != 0 {
		return nil, fmt.Errorf("%w: block length %d not a multiple of %d", vfs.ErrBadDirectoryEntry, len(block), dirEntrySize)
	}

	n := len(block) / dirEntrySize
	slots := make([]vfs.DirSlot, 0, n)

	for i := 0; i < n; i++ {
		raw := block[i*dirEntrySize : (i+1)*dirEntrySize]
		discriminator := bindec.Uint32LE(raw, 0)

		switch discriminator {
		case sentinelAvailable:
			slots = append(slots, vfs.DirSlot{Kind: vfs.SlotAvailable})
			continue
		case sentinelGrantList:
			slots = append(slots, vfs.DirSlot{Kind: vfs.SlotGrantList, Trustees: parseTrustees(raw)})
			continue
		case sentinelVolumeInfo:
			slots = append(slots, vfs.DirSlot{
				Kind: vfs.SlotVolumeInfo,
				VolumeInfo: &vfs.VolumeInfoSlot{
					Created: bindec.DecodeTimestamp(bindec.Uint32LE(raw, offVolInfoCreated)),
					Owner:   bindec.Uint32BE(raw, offVolInfoOwner),
				},
			})
			continue
		}

		name, err := bindec.FixedName(raw, offName, nameFieldLen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vfs.ErrBadDirectoryEntry, err)
		}

		attrs := bindec.Uint16LE(raw, offAttrs)
		isDir := attrs&attrDirectory != 0

		slot := vfs.DirSlot{
			Kind:     vfs.SlotReal,
			IsDir:    isDir,
			Name:     name,
			ParentID: discriminator,
			Created:  bindec.DecodeTimestamp(bindec.Uint32LE(raw, offCreated)),
			Owner:    bindec.Uint32BE(raw, offOwner),
			Modified: bindec.DecodeTimestamp(bindec.Uint32LE(raw, offModified)),
		}

		if isDir {
			slot.SelfID = bindec.Uint32LE(raw, offSelfID)
		} else {
			slot.Size = uint64(bindec.Uint32LE(raw, offSize))
			slot.FirstBlock = bindec.Uint32LE(raw, offFirstBlock)
			deletedTS := bindec.Uint32LE(raw, offDeletedTS)
			slot.Deleted = deletedTS != 0
			slot.Modifier = slot.Owner
		}

		slots = append(slots, slot)
	}
	return slots, nil
}

func parseTrustees(raw []byte) []vfs.Trustee {
	trustees := make([]vfs.Trustee, 0, trusteeCount)
	for i := 0; i < trusteeCount; i++ {
		off := offTrustees + i*trusteeEntrySize
		objID := bindec.Uint32BE(raw, off)
		rights := bindec.Uint16LE(raw, off+4)
		if objID == 0 {
			continue
		}
		trustees = append(trustees, vfs.Trustee{ObjectID: objID, Rights: rights})
	}
	return trustees
}
