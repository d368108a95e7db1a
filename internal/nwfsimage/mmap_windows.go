//go:build windows
// +build windows

package nwfsimage

import "fmt"

// OpenMmapped is only supported on the platforms internal/mmap targets.
func OpenMmapped(path string) (*Image, error) {
	return nil, fmt.Errorf("nwfsimage: mmap-backed image is not supported on windows")
}
