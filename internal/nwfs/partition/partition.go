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

// Package partition parses the classic MBR partition table at sector 0 of an
// image and picks out the NetWare partition by its type byte.
package partition

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ostafen/nwfsarc/internal/nwfsimage"
)

// Version identifies which NWFS decoder a partition's type byte selects.
type Version int

const (
	NWFS286 Version = iota
	NWFS386
)

func (v Version) String() string {
	if v == NWFS286 {
		return "NWFS286"
	}
	return "NWFS386"
}

// Partition type bytes for the two NetWare on-disk formats.
const (
	TypeNWFS286 = 0x64
	TypeNWFS386 = 0x65
)

// ErrNoPartition is returned when no MBR entry carries a NetWare type byte.
var ErrNoPartition = errors.New("partition: no NetWare partition found")

// ErrMultiplePartitions is returned when more than one MBR entry carries a
// NetWare type byte; NetWare's own design permits at most one.
var ErrMultiplePartitions = errors.New("partition: more than one NetWare partition found")

const (
	mbrSize           = 512
	partitionTableOff = 446
	entrySize         = 16
	entryCount        = 4
)

// Partition describes the NetWare partition located on an image.
type Partition struct {
	Version     Version
	FirstLBA    uint32
	SectorCount uint32
}

// ByteOffset returns the absolute byte offset of the start of the partition.
func (p Partition) ByteOffset() int64 {
	return int64(p.FirstLBA) * nwfsimage.SectorSize
}

// ByteLength returns the partition's length in bytes.
func (p Partition) ByteLength() int64 {
	return int64(p.SectorCount) * nwfsimage.SectorSize
}

// Locate reads sector 0 of im and returns the single NetWare partition found
// there, dispatching on the MBR type byte (0x64 = NWFS286, 0x65 = NWFS386).
func Locate(im *nwfsimage.Image) (Partition, error) {
	sector, err := im.ReadAt(0, mbrSize)
	if err != nil {
		return Partition{}, fmt.Errorf("partition: read MBR: %w", err)
	}

	var found []Partition
	for i := 0; i < entryCount; i++ {
		off := partitionTableOff + i*entrySize
		entry := sector[off : off+entrySize]

		typeByte := entry[4]
		var v Version
		switch typeByte {
		case TypeNWFS286:
			v = NWFS286
		case TypeNWFS386:
			v = NWFS386
		default:
			continue
		}

		firstLBA := binary.LittleEndian.Uint32(entry[8:12])
		sectorCount := binary.LittleEndian.Uint32(entry[12:16])
		found = append(found, Partition{Version: v, FirstLBA: firstLBA, SectorCount: sectorCount})
	}

	switch len(found) {
	case 0:
		return Partition{}, ErrNoPartition
	case 1:
		return found[0], nil
	default:
		return Partition{}, fmt.Errorf("%w: found %d candidates", ErrMultiplePartitions, len(found))
	}
}
