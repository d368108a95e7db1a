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

// Package nwfsimage is the random-access byte source over a disk image:
// read a sector or an arbitrary byte span by absolute offset. It has no
// knowledge of partitions, volumes, or filesystems above it.
package nwfsimage

import (
	"fmt"
	"io"
	"os"
)

const SectorSize = 512

// File is the minimal handle an Image needs from the host: ReadAt plus a
// size. A regular *os.File satisfies it; OpenRaw wraps raw device nodes
// behind the same interface.
type File interface {
	io.ReaderAt
	io.Closer
	Stat() (os.FileInfo, error)
}

// Image is a byte-addressable disk image or raw device.
type Image struct {
	f    File
	size int64
}

// Open opens path as a disk image through OpenRaw. Outside Windows this is a
// thin wrapper around os.Open; on Windows every path, raw volumes (\\.\C:)
// and regular image files alike, is opened with CreateFile instead, since
// os.Open cannot read a raw volume there.
func Open(path string) (*Image, error) {
	f, err := OpenRaw(path)
	if err != nil {
		return nil, fmt.Errorf("nwfsimage: open %q: %w", path, err)
	}

	size, err := sizeOf(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nwfsimage: stat %q: %w", path, err)
	}

	return &Image{f: f, size: size}, nil
}

// Close releases the underlying file handle.
func (im *Image) Close() error {
	return im.f.Close()
}

// Size returns the image's total byte length.
func (im *Image) Size() int64 {
	return im.size
}

// ErrOutOfRange is returned by ReadAt/ReadSector when the requested span
// exceeds the image's bounds.
var ErrOutOfRange = fmt.Errorf("nwfsimage: read out of range")

// ErrShortRead is returned when fewer bytes were available than requested
// even though the span nominally fit within the image.
var ErrShortRead = fmt.Errorf("nwfsimage: short read")

// ReadAt reads exactly length bytes starting at the absolute byte offset.
func (im *Image) ReadAt(offset int64, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+int64(length) > im.size {
		return nil, fmt.Errorf("%w: offset=%d length=%d image_size=%d", ErrOutOfRange, offset, length, im.size)
	}

	buf := make([]byte, length)
	n, err := im.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("nwfsimage: read at %d: %w", offset, err)
	}
	if n != length {
		return nil, fmt.Errorf("%w: offset=%d wanted=%d got=%d", ErrShortRead, offset, length, n)
	}
	return buf, nil
}

// ReadSector reads the 512-byte sector at the given LBA (relative to the
// start of the image, i.e. absolute, not partition-relative).
func (im *Image) ReadSector(lba uint64) ([]byte, error) {
	return im.ReadAt(int64(lba)*SectorSize, SectorSize)
}
