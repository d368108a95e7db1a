//go:build !linux
// +build !linux

package nwfsfuse

import (
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfs/vfs"
)

// Mount is only supported on Linux; bazil.org/fuse itself doesn't build
// elsewhere.
func Mount(mountpoint string, v *vfs.VFS) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
