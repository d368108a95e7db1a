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
	"os"

	"github.com/spf13/cobra"

	"github.com/ostafen/nwfsarc/internal/nwfs"
	"github.com/ostafen/nwfsarc/internal/nwfslog"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <image_path>",
		Short: "Mount an NWFS286/NWFS386 image and open an interactive browsing shell",
		Long: `The 'mount' command opens a raw disk or partition image, locates its NetWare
partition, decodes every volume found there, and drops into an interactive
shell supporting dir, cd, stat, get and cat over the decoded tree.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}
	cmd.Flags().Bool("mmap", false, "back the image with a memory mapping instead of regular reads")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	levelStr, _ := cmd.Flags().GetString("log-level")
	log := nwfslog.New(os.Stderr, nwfslog.ParseLevel(levelStr))

	useMmap, _ := cmd.Flags().GetBool("mmap")
	mountFn := nwfs.Mount
	if useMmap {
		mountFn = nwfs.MountMmapped
	}

	v, closeFn, err := mountFn(args[0])
	if err != nil {
		return newMountExit(ClassifyExitCode(err), fmt.Errorf("mount: %w", err))
	}
	defer closeFn()

	log.Info("mounted", "volumes", len(v.ListVolumes()))
	for _, vh := range v.ListVolumes() {
		fmt.Fprintf(cmd.OutOrStdout(), "volume %s mounted\n", vh.Name())
	}

	s := newSession(v, log)
	code := runREPL(s, cmd.InOrStdin(), cmd.OutOrStdout())
	if code != ExitOK {
		return newMountExit(code, fmt.Errorf("shell exited with errors"))
	}
	return nil
}
