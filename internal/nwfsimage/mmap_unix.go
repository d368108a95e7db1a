//go:build !windows
// +build !windows

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
package nwfsimage

import (
	"fmt"
	"io"
	"os"

	"github.com/ostafen/nwfsarc/internal/mmap"
)

// mmapFile adapts an mmap.MmapFile to the File interface, letting an Image
// read directly out of the page cache instead of issuing a pread syscall
// per ReadAt. Only worthwhile on a regular file large enough to amortize
// the mapping setup cost, which is why OpenMmapped is opt-in rather than
// OpenRaw's default.
type mmapFile struct {
	m *mmap.MmapFile
}

// OpenMmapped opens path as a disk image backed by a whole-file memory
// mapping rather than regular reads. Raw device nodes are rejected:
// os.Stat reports their size as 0 and mmap.NewMmapFile refuses an empty file.
func OpenMmapped(path string) (*Image, error) {
	m, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, fmt.Errorf("nwfsimage: mmap open %q: %w", path, err)
	}
	return &Image{f: &mmapFile{m: m}, size: int64(m.FileSize)}, nil
}

func (f *mmapFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(f.m.Data)) {
		return 0, io.EOF
	}
	n := copy(p, f.m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *mmapFile) Close() error {
	return f.m.Close()
}

func (f *mmapFile) Stat() (os.FileInfo, error) {
	return f.m.File.Stat()
}
