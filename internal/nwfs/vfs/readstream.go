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
	"io"
)

// ReadAll materializes the file's entire byte stream by composing the FAT
// walk with block reads, truncating the final block to the declared length.
// The returned slice is always exactly f.Size() bytes long when err is nil.
func (f *FileHandle) ReadAll() ([]byte, error) {
	blocks, err := walkFile(f.vh.backend, f.slot.FirstBlock, f.slot.Size)
	if err != nil {
		return nil, fmt.Errorf("vfs: read %q: %w", f.slot.Name, err)
	}

	out := make([]byte, 0, f.slot.Size)
	remaining := f.slot.Size
	for _, blk := range blocks {
		data, err := f.vh.backend.ReadBlock(blk)
		if err != nil {
			return nil, fmt.Errorf("vfs: read block %d of %q: %w", blk, f.slot.Name, err)
		}
		n := uint64(len(data))
		if n > remaining {
			n = remaining
		}
		out = append(out, data[:n]...)
		remaining -= n
	}
	return out, nil
}

// ReadStream writes the file's bytes to w one block at a time instead of
// materializing the whole file; the shell's `get` uses it (`cat` uses ReadAll).
// It returns the number of bytes written.
func (f *FileHandle) ReadStream(w io.Writer) (int64, error) {
	blocks, err := walkFile(f.vh.backend, f.slot.FirstBlock, f.slot.Size)
	if err != nil {
		return 0, fmt.Errorf("vfs: read %q: %w", f.slot.Name, err)
	}

	var written int64
	remaining := f.slot.Size
	for _, blk := range blocks {
		data, err := f.vh.backend.ReadBlock(blk)
		if err != nil {
			return written, fmt.Errorf("vfs: read block %d of %q: %w", blk, f.slot.Name, err)
		}
		n := uint64(len(data))
		if n > remaining {
			n = remaining
		}
		nw, err := w.Write(data[:n])
		written += int64(nw)
		if err != nil {
			return written, fmt.Errorf("vfs: write %q: %w", f.slot.Name, err)
		}
		remaining -= n
	}
	return written, nil
}
