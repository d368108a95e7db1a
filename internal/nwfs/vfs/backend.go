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

// Package vfs is the unified, version-neutral view over a mounted NWFS286 or
// NWFS386 volume: path resolution, directory listing, file open/read. It
// hides block-size, endianness, and directory-schema differences behind one
// Backend capability set shared by both on-disk formats (mount, resolve
// block, walk directory, FAT next).
package vfs

import "github.com/ostafen/nwfsarc/internal/nwfs/bindec"

// DirSlotKind classifies a raw directory-pool slot.
type DirSlotKind int

const (
	SlotAvailable DirSlotKind = iota
	SlotGrantList
	SlotVolumeInfo
	SlotReal
)

// Trustee is a (object-ID, rights-mask) grant.
type Trustee struct {
	ObjectID uint32
	Rights   uint16
}

// Rights bit positions.
const (
	RightRead = 1 << iota
	RightWrite
	_ // bit 2 unused
	RightCreate
	RightErase
	RightAccessControl
	RightFileScan
	RightModify
	RightSupervisor
)

// Has reports whether the trustee holds the given right, honoring the
// invariant that the Supervisor bit implies every other right.
func (t Trustee) Has(right uint16) bool {
	if t.Rights&RightSupervisor != 0 {
		return true
	}
	return t.Rights&right != 0
}

// VolumeInfoSlot is the per-volume metadata carried by a 0xFFFFFFFD slot;
// it is not a tree node but is retained for display.
type VolumeInfoSlot struct {
	Created bindec.Timestamp
	Owner   uint32
}

// DirSlot is one classified, decoded directory-pool slot, normalized across
// the NWFS286 (32-byte) and NWFS386 (128-byte) on-disk layouts.
type DirSlot struct {
	Kind DirSlotKind

	IsDir bool
	Name  string

	ParentID uint32
	SelfID   uint32 // valid when IsDir; the directory's own ID

	Size       uint64
	FirstBlock uint32

	Created  bindec.Timestamp
	Modified bindec.Timestamp
	Owner    uint32
	Modifier uint32
	Deleted  bool

	Trustees   []Trustee       // valid when Kind == SlotGrantList
	VolumeInfo *VolumeInfoSlot // valid when Kind == SlotVolumeInfo
}

// Backend is the shared capability set a mounted NWFS286 or NWFS386 volume
// implements. The VFS layer drives directory-index construction, path
// resolution, and file reads entirely through this interface so the two
// on-disk formats' quirks never leak past their own package.
type Backend interface {
	// Name is the volume's name as stored on disk.
	Name() string

	// BlockBytes is this volume's data block size.
	BlockBytes() uint32

	// RootID is the directory ID used as "no parent" / the tree root.
	RootID() uint32

	// ReadBlock returns the raw bytes of data block n, already resolved to
	// its physical sector(s) by the backend's addressing scheme.
	ReadBlock(n uint32) ([]byte, error)

	// DirectoryBlocks returns, in order, every block making up the
	// directory-entry pool: FAT-walked from the root block for NWFS386,
	// or the explicit directory-entry-blocks table for NWFS286.
	DirectoryBlocks() ([]uint32, error)

	// ParseDirSlots classifies and decodes every fixed-size slot in one
	// directory block. blockNum is the block's own number, needed by
	// NWFS286 to compute a directory's composite (block, slot) self-ID.
	ParseDirSlots(blockNum uint32, block []byte) ([]DirSlot, error)

	// FatNext returns the block that follows b in a file's allocation
	// chain. ok is false at end-of-chain; err is non-nil only on a
	// structural problem reading the FAT itself.
	FatNext(b uint32) (next uint32, ok bool, err error)
}
