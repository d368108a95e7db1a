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
package vfs

import "fmt"

// fatSlack is the number of extra blocks beyond the length-derived bound
// that a bounded walk (maxBlocks > 0) may collect before it is reported as
// a cycle. walkChain returns as soon as it has maxBlocks blocks, so that
// bound is not exceeded in practice; unbounded directory walks
// (maxBlocks == 0) have no length check and rely on the visited set alone.
const fatSlack = 4

// walkChain follows the FAT chain starting at b0 until end-of-chain,
// detecting cycles with a bounded visited set. Used both for file reads
// (with a byte-length bound, see walkFile) and for NWFS386 directory chains
// (unbounded, maxBlocks == 0 meaning "until end-of-chain").
func walkChain(b Backend, b0 uint32, maxBlocks int) ([]uint32, error) {
	visited := make(map[uint32]bool)
	var blocks []uint32

	cur := b0
	for {
		if visited[cur] {
			return nil, fmt.Errorf("%w: block %d revisited", ErrFatCycle, cur)
		}
		visited[cur] = true
		blocks = append(blocks, cur)

		if maxBlocks > 0 && len(blocks) >= maxBlocks {
			return blocks, nil
		}

		next, ok, err := b.FatNext(cur)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrFatOutOfRange, cur, err)
		}
		if !ok {
			if maxBlocks > 0 && len(blocks) < maxBlocks {
				return nil, fmt.Errorf("%w: chain ended after %d of %d blocks", ErrFatTruncated, len(blocks), maxBlocks)
			}
			return blocks, nil
		}
		cur = next

		if maxBlocks > 0 && len(blocks) > maxBlocks+fatSlack {
			return nil, fmt.Errorf("%w: chain exceeds expected length", ErrFatCycle)
		}
	}
}

// WalkDirectoryChain follows a backend's FAT from its directory root block
// until end-of-chain, with no byte-length bound. Exported for NWFS386,
// whose directory pool is FAT-chained rather than listed explicitly.
func WalkDirectoryChain(b Backend, root uint32) ([]uint32, error) {
	return walkChain(b, root, 0)
}

// walkFile returns the ordered block numbers covering a file of declared
// byte length length starting at block b0.
func walkFile(b Backend, b0 uint32, length uint64) ([]uint32, error) {
	if length == 0 {
		return nil, nil
	}
	blockBytes := uint64(b.BlockBytes())
	need := int((length + blockBytes - 1) / blockBytes)
	return walkChain(b, b0, need)
}
