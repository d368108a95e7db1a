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

import "errors"

// Each error kind below is a sentinel wrapped with fmt.Errorf at the point
// it's raised so errors.Is still matches while the message keeps the
// offending block/offset.
var (
	ErrBadMagic          = errors.New("vfs: bad magic")
	ErrBadBlockValue     = errors.New("vfs: invalid block-size divisor")
	ErrBlockNotInSegment = errors.New("vfs: block not in this partition's segment")

	ErrFatCycle      = errors.New("vfs: FAT chain cycle")
	ErrFatTruncated  = errors.New("vfs: FAT chain ended before declared length")
	ErrFatOutOfRange = errors.New("vfs: FAT pointer out of range")

	ErrBadDirectoryEntry = errors.New("vfs: malformed directory entry")

	ErrNotFound      = errors.New("vfs: not found")
	ErrNotADirectory = errors.New("vfs: not a directory")
	ErrIsADirectory  = errors.New("vfs: is a directory")
)
