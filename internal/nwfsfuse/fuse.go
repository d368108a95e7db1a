//go:build linux
// +build linux

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

// Package nwfsfuse exposes a mounted NWFS286/NWFS386 volume tree as a
// read-only FUSE filesystem, a second front-end alongside the interactive
// shell onto the same *vfs.VFS. Directories and files are backed by
// vfs.DirHandle/vfs.FileHandle, and there is no write path at all.
package nwfsfuse

import (
	"context"
	"os"
	"sort"
	"strings"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
)

// FS is the root of the FUSE tree: one subdirectory per mounted volume.
type FS struct {
	v *vfs.VFS
}

// New wraps a mounted VFS for serving over FUSE.
func New(v *vfs.VFS) *FS {
	return &FS{v: v}
}

func (f *FS) Root() (fs.Node, error) {
	return &volumeListDir{fs: f}, nil
}

// volumeListDir is the synthetic root directory whose children are the
// volume names.
type volumeListDir struct {
	fs *FS
}

func (*volumeListDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *volumeListDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	for _, vh := range d.fs.v.ListVolumes() {
		if strings.EqualFold(vh.Name(), name) {
			return &dirNode{dh: vh.VolumeRoot()}, nil
		}
	}
	return nil, fuse.ENOENT
}

func (d *volumeListDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	vols := d.fs.v.ListVolumes()
	out := make([]fuse.Dirent, 0, len(vols))
	for i, vh := range vols {
		out = append(out, fuse.Dirent{Inode: uint64(i + 1), Name: vh.Name(), Type: fuse.DT_Dir})
	}
	return out, nil
}

// dirNode is a directory inside a mounted volume.
type dirNode struct {
	dh *vfs.DirHandle
}

func (*dirNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (n *dirNode) Lookup(ctx context.Context, name string) (fs.Node, error) {
	sub, file, err := n.dh.Child(name)
	if err != nil {
		return nil, fuse.ENOENT
	}
	if sub != nil {
		return &dirNode{dh: sub}, nil
	}
	return &fileNode{fh: file}, nil
}

func (n *dirNode) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries := n.dh.Entries()
	out := make([]fuse.Dirent, 0, len(entries))
	for i, e := range entries {
		typ := fuse.DT_File
		if e.Kind == vfs.KindDirectory {
			typ = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Inode: uint64(i + 1), Name: e.Name, Type: typ})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fileNode is a read-only file handle: Attr + ReadAll, nothing else. There is
// deliberately no Write/Create/Setattr implementation.
type fileNode struct {
	fh *vfs.FileHandle
}

func (n *fileNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = n.fh.Size()
	return nil
}

func (n *fileNode) ReadAll(ctx context.Context) ([]byte, error) {
	return n.fh.ReadAll()
}
