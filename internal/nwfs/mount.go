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

// Package nwfs ties the partition locator to the version-specific volume
// layers and hands the result to the unified VFS. This is the only package
// that knows both NWFS286 and NWFS386 exist; everything downstream of Mount
// talks to *vfs.VFS.
package nwfs

import (
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfs/nwfs286"
	"github.com/ostafen/nwfsarc/internal/nwfs/nwfs386"
	"github.com/ostafen/nwfsarc/internal/nwfs/partition"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
	"github.com/ostafen/nwfsarc/internal/nwfsimage"
)

// Mount opens the image at path, locates its NetWare partition, and mounts
// every volume found there behind a single *vfs.VFS.
func Mount(path string) (*vfs.VFS, func() error, error) {
	return mount(path, false)
}

// MountMmapped is Mount but backs the image with a whole-file memory
// mapping instead of regular reads, worthwhile for large images that get
// browsed repeatedly in one session.
func MountMmapped(path string) (*vfs.VFS, func() error, error) {
	return mount(path, true)
}

func mount(path string, useMmap bool) (*vfs.VFS, func() error, error) {
	open := nwfsimage.Open
	if useMmap {
		open = nwfsimage.OpenMmapped
	}

	im, err := open(path)
	if err != nil {
		return nil, nil, err
	}

	v, err := MountImage(im)
	if err != nil {
		im.Close()
		return nil, nil, err
	}
	return v, im.Close, nil
}

// MountImage mounts an already-opened image, dispatching on the NetWare
// partition's type byte.
func MountImage(im *nwfsimage.Image) (*vfs.VFS, error) {
	part, err := partition.Locate(im)
	if err != nil {
		return nil, fmt.Errorf("nwfs: %w", err)
	}

	var backends []vfs.Backend
	switch part.Version {
	case partition.NWFS386:
		volumes, err := nwfs386.Mount(im, part.FirstLBA)
		if err != nil {
			return nil, fmt.Errorf("nwfs: %w", err)
		}
		for _, vol := range volumes {
			backends = append(backends, vol)
		}
	case partition.NWFS286:
		vol, err := nwfs286.Mount(im, part.FirstLBA)
		if err != nil {
			return nil, fmt.Errorf("nwfs: %w", err)
		}
		backends = append(backends, vol)
	default:
		return nil, fmt.Errorf("nwfs: unsupported partition version %v", part.Version)
	}

	return vfs.NewVFS(backends)
}
