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
package cmd

import (
	"errors"

	"github.com/ostafen/nwfsarc/internal/nwfs/partition"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
)

// Exit codes for the shell's process, not the interactive REPL's per-command
// status line.
const (
	ExitOK             = 0
	ExitUsageError     = 1
	ExitImageError     = 2
	ExitTraversalError = 3
)

// MountExit wraps an error together with the process exit code it should
// produce, letting main set os.Exit accurately instead of collapsing every
// failure into cobra's generic code 1.
type MountExit struct {
	code int
	err  error
}

func newMountExit(code int, err error) *MountExit { return &MountExit{code: code, err: err} }

func (m *MountExit) Code() int     { return m.code }
func (m *MountExit) Error() string { return m.err.Error() }
func (m *MountExit) Unwrap() error { return m.err }

// ClassifyExitCode maps an error surfaced from Mount or a shell operation to
// one of the process exit codes. Usage errors are caught by cobra itself
// before this is consulted; this only distinguishes "the image/partition is
// bad" from "the path inside an otherwise-good volume doesn't resolve".
func ClassifyExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, partition.ErrNoPartition),
		errors.Is(err, partition.ErrMultiplePartitions),
		errors.Is(err, vfs.ErrBadMagic),
		errors.Is(err, vfs.ErrBadBlockValue):
		return ExitImageError
	case errors.Is(err, vfs.ErrNotFound),
		errors.Is(err, vfs.ErrNotADirectory),
		errors.Is(err, vfs.ErrIsADirectory),
		errors.Is(err, vfs.ErrFatCycle),
		errors.Is(err, vfs.ErrFatTruncated),
		errors.Is(err, vfs.ErrFatOutOfRange):
		return ExitTraversalError
	default:
		return ExitImageError
	}
}
