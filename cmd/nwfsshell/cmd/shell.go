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

// shell.go drives the interactive session: Unmounted -> Mounted(volumes[])
// -> Browsing(cwd) -> [Reading(file)] -> Browsing, one volume's worth of
// state at a time.
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ostafen/nwfsarc/internal/nwfs/bindec"
	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
	"github.com/ostafen/nwfsarc/pkg/pbar"
	"github.com/ostafen/nwfsarc/pkg/util/format"
)

// session holds the shell's current position: which volume, and the path
// stack walked to get to cwd.
type session struct {
	v      *vfs.VFS
	log    *slog.Logger
	volume string // "" until a volume is selected with cd VOL:
	cwd    []string
}

func newSession(v *vfs.VFS, log *slog.Logger) *session {
	return &session{v: v, log: log}
}

func (s *session) prompt() string {
	if s.volume == "" {
		return "nwfsshell> "
	}
	return fmt.Sprintf("%s:/%s> ", s.volume, strings.Join(s.cwd, "/"))
}

func (s *session) currentPath() string {
	if s.volume == "" {
		return ""
	}
	return s.volume + ":/" + strings.Join(s.cwd, "/")
}

// runREPL reads commands from r until "exit" or EOF, writing results to w.
// It returns the process exit code the shell should terminate with.
func runREPL(s *session, r io.Reader, w io.Writer) int {
	scanner := bufio.NewScanner(r)
	fmt.Fprint(w, s.prompt())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			code, shouldExit := s.dispatch(line, w)
			if shouldExit {
				return code
			}
		}
		fmt.Fprint(w, s.prompt())
	}
	fmt.Fprintln(w)
	return ExitOK
}

// dispatch executes one command line. The returned bool is true only for
// "exit" or "quit", at which point code is the process's final exit status.
func (s *session) dispatch(line string, w io.Writer) (code int, shouldExit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return ExitOK, true
	case "volumes":
		s.cmdVolumes(w)
	case "cd":
		s.cmdCd(fields[1:], w)
	case "dir", "ls":
		s.cmdDir(fields[1:], w)
	case "stat":
		s.cmdStat(fields[1:], w)
	case "rights":
		s.cmdRights(fields[1:], w)
	case "get":
		s.cmdGet(fields[1:], w)
	case "cat":
		s.cmdCat(fields[1:], w)
	case "help":
		s.cmdHelp(w)
	default:
		fmt.Fprintf(w, "unknown command %q (try: help)\n", fields[0])
	}
	return ExitOK, false
}

func (s *session) cmdHelp(w io.Writer) {
	fmt.Fprintln(w, "commands: volumes, cd <path>, dir [-a], stat [path], rights <file>, get <file>, cat <file>, exit")
}

func (s *session) cmdVolumes(w io.Writer) {
	for _, vh := range s.v.ListVolumes() {
		fmt.Fprintf(w, "%s\n", vh.Name())
		if info := vh.Info(); info != nil {
			fmt.Fprintf(w, "  created %s, owner %s\n", info.Created, bindec.ObjectIDString(info.Owner))
		}
	}
}

func (s *session) cmdCd(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: cd <VOLUME:/path>|<path>|..")
		return
	}
	target := args[0]

	if strings.Contains(target, ":") {
		if _, err := s.v.OpenDir(normalizeVolumeRoot(target)); err != nil {
			fmt.Fprintf(w, "cd: %v\n", err)
			return
		}
		parts := strings.SplitN(target, ":", 2)
		s.volume = strings.ToUpper(parts[0])
		rest := strings.Trim(strings.TrimPrefix(parts[1], "/"), "/")
		if rest == "" {
			s.cwd = nil
		} else {
			s.cwd = strings.Split(rest, "/")
		}
		return
	}

	if s.volume == "" {
		fmt.Fprintln(w, "cd: no volume selected; use cd VOLUME:")
		return
	}

	switch target {
	case "..":
		if len(s.cwd) > 0 {
			s.cwd = s.cwd[:len(s.cwd)-1]
		}
		return
	case ".":
		return
	}

	newCwd := append(append([]string{}, s.cwd...), target)
	path := s.volume + ":/" + strings.Join(newCwd, "/")
	if _, err := s.v.OpenDir(path); err != nil {
		fmt.Fprintf(w, "cd: %v\n", err)
		return
	}
	s.cwd = newCwd
}

func normalizeVolumeRoot(target string) string {
	if strings.HasSuffix(target, ":") {
		return target + "/"
	}
	return target
}

func (s *session) resolvePath(arg string) (string, error) {
	if strings.Contains(arg, ":") {
		return arg, nil
	}
	if s.volume == "" {
		return "", fmt.Errorf("no volume selected; use cd VOLUME: first")
	}
	parts := append(append([]string{}, s.cwd...), arg)
	return s.volume + ":/" + strings.Join(parts, "/"), nil
}

func (s *session) cmdDir(args []string, w io.Writer) {
	includeDeleted := false
	var pathArg string
	for _, a := range args {
		if a == "-a" {
			includeDeleted = true
		} else {
			pathArg = a
		}
	}

	path := s.currentPath()
	if pathArg != "" {
		resolved, err := s.resolvePath(pathArg)
		if err != nil {
			fmt.Fprintf(w, "dir: %v\n", err)
			return
		}
		path = resolved
	}
	if path == "" {
		fmt.Fprintln(w, "dir: no volume selected; use cd VOLUME:")
		return
	}

	dh, err := s.v.OpenDir(path)
	if err != nil {
		fmt.Fprintf(w, "dir: %v\n", err)
		return
	}
	if includeDeleted {
		dh = dh.WithDeleted()
	}

	for _, e := range dh.Entries() {
		kind := "F"
		if e.Kind == vfs.KindDirectory {
			kind = "D"
		}
		deleted := ""
		if e.Deleted {
			deleted = " (deleted)"
		}
		fmt.Fprintf(w, "%s %10s  %s  %8s  %s%s\n", kind, format.FormatBytes(e.Size), e.Modified, bindec.ObjectIDString(e.Modifier), e.Name, deleted)
	}
}

func (s *session) cmdStat(args []string, w io.Writer) {
	path := s.currentPath()
	if len(args) == 1 {
		resolved, err := s.resolvePath(args[0])
		if err != nil {
			fmt.Fprintf(w, "stat: %v\n", err)
			return
		}
		path = resolved
	}
	if path == "" {
		fmt.Fprintln(w, "stat: no volume selected; use cd VOLUME:")
		return
	}

	md, err := s.v.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "stat: %v\n", err)
		return
	}
	fmt.Fprintf(w, "name:     %s\n", md.Name)
	if md.Kind == vfs.KindDirectory {
		fmt.Fprintln(w, "type:     directory")
	} else {
		fmt.Fprintln(w, "type:     file")
		fmt.Fprintf(w, "size:     %s\n", format.FormatBytes(md.Size))
	}
	fmt.Fprintf(w, "modified: %s\n", md.Modified)
	fmt.Fprintf(w, "owner:    %s\n", bindec.ObjectIDString(md.Owner))
	fmt.Fprintf(w, "modifier: %s\n", bindec.ObjectIDString(md.Modifier))
	fmt.Fprintf(w, "deleted:  %t\n", md.Deleted)
}

// splitParentPath splits a resolved "VOL:/a/b/c" path into its containing
// directory ("VOL:/a/b") and the final component ("c").
func splitParentPath(path string) (parent, name string) {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path, ""
	}
	return path[:idx], path[idx+1:]
}

var rightFlags = []struct {
	bit uint16
	ch  byte
}{
	{vfs.RightRead, 'R'},
	{vfs.RightWrite, 'W'},
	{vfs.RightCreate, 'C'},
	{vfs.RightErase, 'E'},
	{vfs.RightAccessControl, 'A'},
	{vfs.RightFileScan, 'F'},
	{vfs.RightModify, 'M'},
	{vfs.RightSupervisor, 'S'},
}

func rightsString(t vfs.Trustee) string {
	var b strings.Builder
	for _, f := range rightFlags {
		if t.Has(f.bit) {
			b.WriteByte(f.ch)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func (s *session) cmdRights(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: rights <file>")
		return
	}
	path, err := s.resolvePath(args[0])
	if err != nil {
		fmt.Fprintf(w, "rights: %v\n", err)
		return
	}

	parentPath, name := splitParentPath(path)
	dh, err := s.v.OpenDir(parentPath)
	if err != nil {
		fmt.Fprintf(w, "rights: %v\n", err)
		return
	}
	trustees, err := dh.Trustees(name)
	if err != nil {
		fmt.Fprintf(w, "rights: %v\n", err)
		return
	}
	if len(trustees) == 0 {
		fmt.Fprintln(w, "no trustee grants recorded")
		return
	}
	for _, t := range trustees {
		fmt.Fprintf(w, "%s  %s\n", bindec.ObjectIDString(t.ObjectID), rightsString(t))
	}
}

func (s *session) cmdGet(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: get <file>")
		return
	}
	path, err := s.resolvePath(args[0])
	if err != nil {
		fmt.Fprintf(w, "get: %v\n", err)
		return
	}

	fh, err := s.v.OpenFile(path)
	if err != nil {
		fmt.Fprintf(w, "get: %v\n", err)
		return
	}

	localName := args[0]
	if idx := strings.LastIndexByte(localName, '/'); idx >= 0 {
		localName = localName[idx+1:]
	}

	out, err := os.Create(localName)
	if err != nil {
		fmt.Fprintf(w, "get: %v\n", err)
		return
	}
	defer out.Close()

	// Large extractions get a progress bar the same way digler's scan
	// command reports carving progress; small ones would just flicker.
	const progressThreshold = 4 << 20
	dest := io.Writer(out)
	var bar *pbar.ProgressBarState
	if fh.Size() >= progressThreshold {
		bar = pbar.NewProgressBarState(int64(fh.Size()))
		dest = &progressWriter{w: out, bar: bar}
	}

	n, err := fh.ReadStream(dest)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		fmt.Fprintf(w, "get: %v\n", err)
		return
	}
	fmt.Fprintf(w, "wrote %s (%d bytes)\n", localName, n)
}

// progressWriter drives a pbar.ProgressBarState from the byte counts
// ReadStream already produces per block, without vfs needing to know
// anything about progress reporting.
type progressWriter struct {
	w   io.Writer
	bar *pbar.ProgressBarState
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.bar.ProcessedBytes += int64(n)
	p.bar.Render(false)
	return n, err
}

func (s *session) cmdCat(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: cat <file>")
		return
	}
	path, err := s.resolvePath(args[0])
	if err != nil {
		fmt.Fprintf(w, "cat: %v\n", err)
		return
	}

	fh, err := s.v.OpenFile(path)
	if err != nil {
		fmt.Fprintf(w, "cat: %v\n", err)
		return
	}

	data, err := fh.ReadAll()
	if err != nil {
		fmt.Fprintf(w, "cat: %v\n", err)
		return
	}
	w.Write(data)
	fmt.Fprintln(w)
}
