//go:build !windows && !linux
// +build !windows,!linux

package nwfsimage

func sizeOf(f File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
