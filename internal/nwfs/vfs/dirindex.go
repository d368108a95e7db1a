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
package vfs

import (
	"fmt"
	"strings"
)

// entry is one real (file or directory) tree node, with the disambiguation
// name used for case-insensitive path lookup when siblings collide.
type entry struct {
	slot       DirSlot
	lookupName string // slot.Name, or "NAME#2", "NAME#3", ... on collision
	trustees   []Trustee
}

// dirIndex is the eagerly-built directory-ID -> children mapping for one
// volume. Built once at mount; immutable thereafter.
type dirIndex struct {
	rootID     uint32
	children   map[uint32][]*entry
	orphans    []*entry
	volumeInfo *VolumeInfoSlot
}

// buildDirIndex walks every directory-pool block reachable from
// b.DirectoryBlocks(), classifies each fixed-size slot, and assembles the
// parent -> children mapping.
func buildDirIndex(b Backend) (*dirIndex, error) {
	blocks, err := b.DirectoryBlocks()
	if err != nil {
		return nil, fmt.Errorf("vfs: directory chain: %w", err)
	}

	idx := &dirIndex{
		rootID:   b.RootID(),
		children: make(map[uint32][]*entry),
	}

	knownDirs := map[uint32]bool{idx.rootID: true}
	var pending []*entry
	var lastReal *entry // the most recently seen real entry, for grant-list attachment

	for _, blockNum := range blocks {
		raw, err := b.ReadBlock(blockNum)
		if err != nil {
			return nil, fmt.Errorf("vfs: read directory block %d: %w", blockNum, err)
		}

		slots, err := b.ParseDirSlots(blockNum, raw)
		if err != nil {
			return nil, fmt.Errorf("vfs: parse directory block %d: %w", blockNum, err)
		}

		for _, s := range slots {
			switch s.Kind {
			case SlotAvailable:
				continue
			case SlotGrantList:
				// A grant-list slot carries the trustees for the entry that
				// immediately precedes it in the directory pool, not a tree
				// node of its own.
				if lastReal != nil {
					lastReal.trustees = append(lastReal.trustees, s.Trustees...)
				}
				continue
			case SlotVolumeInfo:
				if idx.volumeInfo == nil {
					idx.volumeInfo = s.VolumeInfo
				}
				continue
			}

			e := &entry{slot: s}
			pending = append(pending, e)
			lastReal = e
			if s.IsDir {
				knownDirs[s.SelfID] = true
			}
		}
	}

	for _, e := range pending {
		if !knownDirs[e.slot.ParentID] {
			idx.orphans = append(idx.orphans, e)
			continue
		}
		idx.children[e.slot.ParentID] = append(idx.children[e.slot.ParentID], e)
	}

	for parent, kids := range idx.children {
		assignLookupNames(kids)
		idx.children[parent] = kids
	}

	return idx, nil
}

// assignLookupNames gives every child its case-preserving display name and,
// on a case-insensitive collision within the same parent, a "#N" suffixed
// lookup name so path resolution can still address every duplicate. The
// on-disk format allows duplicate names under one parent; this keeps that
// legal but unusual case navigable instead of silently shadowing entries.
func assignLookupNames(kids []*entry) {
	seen := make(map[string]int)
	for _, k := range kids {
		lower := strings.ToLower(k.slot.Name)
		seen[lower]++
		if seen[lower] == 1 {
			k.lookupName = k.slot.Name
		} else {
			k.lookupName = fmt.Sprintf("%s#%d", k.slot.Name, seen[lower])
		}
	}
}

// lookup finds the child of parent whose lookup name matches name
// case-insensitively.
func (idx *dirIndex) lookup(parent uint32, name string) (*entry, bool) {
	for _, k := range idx.children[parent] {
		if strings.EqualFold(k.lookupName, name) {
			return k, true
		}
	}
	return nil, false
}
