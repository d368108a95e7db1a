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

	"github.com/hashicorp/go-multierror"

	"github.com/ostafen/nwfsarc/internal/nwfs/bindec"
)

// EntryKind distinguishes a directory from a file in listings and stat
// results.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

// EntryMetadata is what `dir` and `stat` show for one tree node.
type EntryMetadata struct {
	Name     string
	Kind     EntryKind
	Size     uint64
	Modified bindec.Timestamp
	Owner    uint32
	Modifier uint32
	Deleted  bool
}

// VolumeHandle is one mounted, named volume and its eagerly-built directory
// index.
type VolumeHandle struct {
	backend Backend
	idx     *dirIndex
}

// Name returns the volume's on-disk name.
func (v *VolumeHandle) Name() string { return v.backend.Name() }

// Info returns the volume-information slot captured during index build, if
// the directory pool carried one.
func (v *VolumeHandle) Info() *VolumeInfoSlot { return v.idx.volumeInfo }

// Orphans lists entries whose parent ID never resolved to a known
// directory; surfaced only for diagnostics, never part of normal traversal.
func (v *VolumeHandle) Orphans() []EntryMetadata {
	out := make([]EntryMetadata, 0, len(v.idx.orphans))
	for _, e := range v.idx.orphans {
		out = append(out, toMetadata(e))
	}
	return out
}

// VFS is the version-neutral view over every volume found on a mounted
// partition.
type VFS struct {
	volumes map[string]*VolumeHandle
	order   []string
}

// NewVFS builds the VFS over already-mounted backends, one dirIndex per
// backend. A backend that fails to index does not prevent the others from
// mounting; failures are collected and returned together.
func NewVFS(backends []Backend) (*VFS, error) {
	v := &VFS{volumes: make(map[string]*VolumeHandle)}

	var merr *multierror.Error
	for _, b := range backends {
		idx, err := buildDirIndex(b)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("volume %q: %w", b.Name(), err))
			continue
		}
		vh := &VolumeHandle{backend: b, idx: idx}
		v.volumes[strings.ToUpper(b.Name())] = vh
		v.order = append(v.order, strings.ToUpper(b.Name()))
	}

	if len(v.volumes) == 0 {
		if merr != nil {
			return nil, merr.ErrorOrNil()
		}
		return nil, fmt.Errorf("vfs: no volumes found")
	}
	return v, merr.ErrorOrNil()
}

// ListVolumes returns every successfully mounted volume, in the order they
// were found in the volume area.
func (v *VFS) ListVolumes() []*VolumeHandle {
	out := make([]*VolumeHandle, 0, len(v.order))
	for _, name := range v.order {
		out = append(out, v.volumes[name])
	}
	return out
}

// parsedPath is an absolute "VOLUME:/a/b/c" path split into its volume name
// and path components.
type parsedPath struct {
	volume string
	parts  []string
}

func parsePath(path string) (parsedPath, error) {
	volSep := strings.IndexByte(path, ':')
	if volSep < 0 {
		return parsedPath{}, fmt.Errorf("%w: path %q missing VOLUME: prefix", ErrNotFound, path)
	}
	vol := path[:volSep]
	rest := strings.TrimPrefix(path[volSep+1:], "/")

	var parts []string
	if rest != "" {
		for _, p := range strings.Split(rest, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	return parsedPath{volume: vol, parts: parts}, nil
}

// resolve walks a path down to the entry it names, returning the volume it
// lies on and the matched entry, or a nil entry for the volume root itself.
func (v *VFS) resolve(path string) (*VolumeHandle, *entry, error) {
	pp, err := parsePath(path)
	if err != nil {
		return nil, nil, err
	}

	vh, ok := v.volumes[strings.ToUpper(pp.volume)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: volume %q", ErrNotFound, pp.volume)
	}

	dirID := vh.idx.rootID
	var cur *entry
	for i, part := range pp.parts {
		if part == "." {
			continue
		}
		if part == ".." {
			if cur != nil {
				dirID = cur.slot.ParentID
				cur = parentEntry(vh, dirID)
			}
			continue
		}

		next, ok := vh.idx.lookup(dirID, part)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, part)
		}
		if !next.slot.IsDir && i != len(pp.parts)-1 {
			return nil, nil, fmt.Errorf("%w: %q", ErrNotADirectory, part)
		}
		cur = next
		if next.slot.IsDir {
			dirID = next.slot.SelfID
		}
	}
	return vh, cur, nil
}

// parentEntry finds the entry whose SelfID equals dirID, used to resolve
// ".." by identity rather than by re-walking from the root.
func parentEntry(vh *VolumeHandle, dirID uint32) *entry {
	if dirID == vh.idx.rootID {
		return nil
	}
	for _, kids := range vh.idx.children {
		for _, k := range kids {
			if k.slot.IsDir && k.slot.SelfID == dirID {
				return k
			}
		}
	}
	return nil
}

// DirHandle is an open directory; its Entries are read from the
// already-built index, never by re-scanning the disk.
type DirHandle struct {
	vh             *VolumeHandle
	dirID          uint32
	includeDeleted bool
}

// OpenDir resolves path to a directory and returns a handle over its
// children.
func (v *VFS) OpenDir(path string) (*DirHandle, error) {
	vh, e, err := v.resolve(path)
	if err != nil {
		return nil, err
	}
	dirID := vh.idx.rootID
	if e != nil {
		if !e.slot.IsDir {
			return nil, fmt.Errorf("%w: %q", ErrNotADirectory, path)
		}
		dirID = e.slot.SelfID
	}
	return &DirHandle{vh: vh, dirID: dirID}, nil
}

// WithDeleted returns a copy of the handle that also exposes soft-deleted
// entries, which are suppressed by default.
func (d *DirHandle) WithDeleted() *DirHandle {
	return &DirHandle{vh: d.vh, dirID: d.dirID, includeDeleted: true}
}

// Entries lists the directory's children, insertion order preserved.
func (d *DirHandle) Entries() []EntryMetadata {
	kids := d.vh.idx.children[d.dirID]
	out := make([]EntryMetadata, 0, len(kids))
	for _, k := range kids {
		if k.slot.Deleted && !d.includeDeleted {
			continue
		}
		out = append(out, toMetadata(k))
	}
	return out
}

// Trustees returns the trustee grants recorded for the named child of this
// directory. A trustee grant is stored as a grant-list slot immediately
// following the entry it applies to in the directory pool; buildDirIndex
// already collects those onto the entry they follow, so this is a plain
// lookup.
func (d *DirHandle) Trustees(name string) ([]Trustee, error) {
	e, ok := d.vh.idx.lookup(d.dirID, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e.trustees, nil
}

// Child resolves one path component under this directory, returning
// whichever of subdir/file is non-nil. It is the handle-native alternative
// to building a "VOL:/a/b" string for every step, used by the FUSE
// front-end to walk the tree node by node.
func (d *DirHandle) Child(name string) (subdir *DirHandle, file *FileHandle, err error) {
	e, ok := d.vh.idx.lookup(d.dirID, name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if e.slot.IsDir {
		return &DirHandle{vh: d.vh, dirID: e.slot.SelfID, includeDeleted: d.includeDeleted}, nil, nil
	}
	return nil, &FileHandle{vh: d.vh, slot: e.slot}, nil
}

// VolumeRoot returns a DirHandle positioned at this volume's root
// directory, for front-ends (FUSE, the shell) that navigate per-volume.
func (v *VolumeHandle) VolumeRoot() *DirHandle {
	return &DirHandle{vh: v, dirID: v.idx.rootID}
}

func toMetadata(e *entry) EntryMetadata {
	kind := KindFile
	if e.slot.IsDir {
		kind = KindDirectory
	}
	return EntryMetadata{
		Name:     e.slot.Name,
		Kind:     kind,
		Size:     e.slot.Size,
		Modified: e.slot.Modified,
		Owner:    e.slot.Owner,
		Modifier: e.slot.Modifier,
		Deleted:  e.slot.Deleted,
	}
}

// FileHandle is an open file ready for reading.
type FileHandle struct {
	vh   *VolumeHandle
	slot DirSlot
}

// OpenFile resolves path to a file.
func (v *VFS) OpenFile(path string) (*FileHandle, error) {
	vh, e, err := v.resolve(path)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrIsADirectory, path)
	}
	if e.slot.IsDir {
		return nil, fmt.Errorf("%w: %q", ErrIsADirectory, path)
	}
	return &FileHandle{vh: vh, slot: e.slot}, nil
}

// Size returns the file's declared byte length.
func (f *FileHandle) Size() uint64 { return f.slot.Size }

// Metadata returns the file's listing metadata.
func (f *FileHandle) Metadata() EntryMetadata {
	return toMetadata(&entry{slot: f.slot})
}

// Stat resolves path to its metadata without opening it as a directory or
// file specifically.
func (v *VFS) Stat(path string) (EntryMetadata, error) {
	vh, e, err := v.resolve(path)
	if err != nil {
		return EntryMetadata{}, err
	}
	if e == nil {
		return EntryMetadata{Name: vh.Name(), Kind: KindDirectory}, nil
	}
	return toMetadata(e), nil
}
