package piecechain

import "golang.org/x/sys/unix"

// MinBlockSize is the default minimum capacity of a heap block. Small
// insertions keep landing in the same block until it fills up.
const MinBlockSize = 1 << 20

type blockKind int

const (
	blockHeap blockKind = iota
	blockMapped
)

// block owns a contiguous byte region. Heap blocks grow by appending at the
// tail; bytes below len are frozen as soon as a piece references them, and
// only the cached piece may move the tail back. Mapped blocks are read-only
// views of the seed file and never change for the lifetime of the chain.
type block struct {
	data []byte
	len  int64
	kind blockKind
}

// allocHeap registers a new heap block of capacity max(n, c.minBlockSize).
func (c *PieceChain) allocHeap(n int64) *block {
	size := n
	if size < c.minBlockSize {
		size = c.minBlockSize
	}
	b := &block{data: make([]byte, size), kind: blockHeap}
	c.allBlocks = append(c.allBlocks, b)
	return b
}

// allocMapped maps size bytes of fd read-only and registers the block. The
// mapping is private, so later writers of the underlying file cannot change
// what the chain sees.
func (c *PieceChain) allocMapped(fd int, size int64) (*block, error) {
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	b := &block{data: data, len: size, kind: blockMapped}
	c.allBlocks = append(c.allBlocks, b)
	return b, nil
}

// canFit reports whether n more bytes fit in the block tail. Mapped blocks
// never accept appends.
func (b *block) canFit(n int64) bool {
	if b.kind != blockHeap {
		return false
	}
	return int64(len(b.data))-b.len >= n
}

// append copies data to the block tail and returns the offset it landed at.
// The caller has checked canFit.
func (b *block) append(data []byte) int64 {
	off := b.len
	copy(b.data[off:], data)
	b.len += int64(len(data))
	return off
}

// release returns a mapped block's address space to the operating system.
// Heap blocks are left to the garbage collector.
func (b *block) release() error {
	if b.kind != blockMapped || b.data == nil {
		return nil
	}
	data := b.data
	b.data = nil
	return unix.Munmap(data)
}

// lastBlock returns the append target, nil before the first allocation.
func (c *PieceChain) lastBlock() *block {
	if len(c.allBlocks) == 0 {
		return nil
	}
	return c.allBlocks[len(c.allBlocks)-1]
}
