//go:build !windows
// +build !windows

package nwfsimage

import "os"

// OpenRaw opens path with the host's ordinary file-open call. On Unix-like
// systems a block device node and a flat image file are both just files.
func OpenRaw(path string) (File, error) {
	return os.Open(path)
}
