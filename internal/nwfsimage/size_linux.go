//go:build linux
// +build linux

package nwfsimage

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// blkGetSize64 is the ioctl request number for BLKGETSIZE64 on Linux, used
// to size a raw block device (a disk image may be given as /dev/sdX rather
// than a regular file, the way a plain os.Stat would report 0).
const blkGetSize64 = 0x80081272

func sizeOf(f File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Mode()&os.ModeDevice == 0 {
		return fi.Size(), nil
	}

	osf, ok := f.(*os.File)
	if !ok {
		return fi.Size(), nil
	}

	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, osf.Fd(), blkGetSize64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return fi.Size(), nil
	}
	return int64(size), nil
}
