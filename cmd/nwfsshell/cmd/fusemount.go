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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ostafen/nwfsarc/internal/nwfs"
	"github.com/ostafen/nwfsarc/internal/nwfsfuse"
)

func DefineFuseMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fusemount <image_path> <mountpoint>",
		Short: "Mount an NWFS286/NWFS386 image as a read-only FUSE filesystem",
		Long: `The 'fusemount' command exposes a decoded volume tree at the given mountpoint
as a read-only FUSE filesystem: one subdirectory per volume, files read
straight through the block chain. Linux only; blocks until a termination
signal is received and the unmount it triggers succeeds (an unmount made
from outside the process does not end the command).`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunFuseMount,
	}
	return cmd
}

func RunFuseMount(cmd *cobra.Command, args []string) error {
	v, closeFn, err := nwfs.Mount(args[0])
	if err != nil {
		return newMountExit(ClassifyExitCode(err), fmt.Errorf("mount: %w", err))
	}
	defer closeFn()

	if err := nwfsfuse.Mount(args[1], v); err != nil {
		return newMountExit(ExitImageError, fmt.Errorf("fusemount: %w", err))
	}
	return nil
}
