package piecechain

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Options configures a PieceChain at construction time.
type Options struct {
	// MinBlockSize overrides the minimum capacity of heap blocks. Zero
	// keeps the default of MinBlockSize (1 MiB).
	MinBlockSize int64
}

// PieceChain is an editable in-memory byte buffer. The contents are an
// ordered chain of pieces, each referencing bytes in an append-only heap
// block or in the read-only memory mapping of the seed file; edits swap
// sub-chains of pieces in and out, which is what makes unlimited undo and
// redo cheap.
//
// A PieceChain is single-threaded: no operation blocks, spawns work, or
// takes locks, and concurrent mutation is not supported. The chain does not
// interpret its bytes in any way.
type PieceChain struct {
	size  int64
	dirty bool

	allBlocks []*block // every block allocated; the tail is the append target
	head      piece    // sentinel of the active piece ring

	pending   []*change   // changes not yet attached to a revision
	revisions []*revision // linear history
	current   int         // index of the active revision

	cache *piece // last mutable piece, target for coalescing

	minBlockSize int64
	lastErr      *ChainError
}

func newChain(opts []Options) *PieceChain {
	c := &PieceChain{minBlockSize: MinBlockSize}
	if len(opts) > 0 && opts[0].MinBlockSize > 0 {
		c.minBlockSize = opts[0].MinBlockSize
	}
	c.head.prev, c.head.next = &c.head, &c.head
	return c
}

// New returns an empty piece chain.
func New(opts ...Options) *PieceChain {
	c := newChain(opts)
	c.revisions = []*revision{{}} // the empty initial revision
	return c
}

// Open seeds a piece chain with the contents of path. Regular files are
// sized with stat and block devices with the BLKGETSIZE64 ioctl; any other
// file type is rejected. The contents are memory-mapped read-only and
// referenced without copying, so opening a large file is cheap. The seeded
// contents form the initial revision, which cannot be undone; the source
// descriptor is closed before Open returns.
func Open(path string, opts ...Options) (*PieceChain, error) {
	c := newChain(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	var size int64
	mode := fi.Mode()
	switch {
	case mode.IsRegular():
		size = fi.Size()
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0:
		n, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKGETSIZE64)
		if err != nil {
			return nil, fmt.Errorf("ioctl: %w", err)
		}
		size = int64(n)
	default:
		return nil, ErrUnsupportedFileType
	}

	var p *piece
	if size > 0 {
		b, err := c.allocMapped(int(f.Fd()), size)
		if err != nil {
			return nil, fmt.Errorf("mmap: %w", err)
		}
		p = &piece{blk: b, off: 0, size: size}
		p.prev, p.next = &c.head, &c.head
	}

	// The whole file is one insertion, committed as the initial revision.
	ch := c.openChange(0)
	if p != nil {
		ch.replacement = newSpan(p, p)
	}
	c.spanSwap(&ch.original, &ch.replacement)
	c.Commit()

	return c, nil
}

// Close releases the chain's memory-mapped blocks. The chain must not be
// used afterwards; heap blocks are left to the garbage collector.
func (c *PieceChain) Close() error {
	var first error
	for _, b := range c.allBlocks {
		if err := b.release(); err != nil && first == nil {
			first = err
		}
	}
	c.allBlocks = nil
	return first
}

// Size returns the number of bytes in the chain.
func (c *PieceChain) Size() int64 { return c.size }

// Empty reports whether the chain holds no bytes.
func (c *PieceChain) Empty() bool { return c.size == 0 }

// Dirty reports whether the contents changed since the last successful save.
func (c *PieceChain) Dirty() bool { return c.dirty }

// LastError returns the most recent recorded failure, or nil.
func (c *PieceChain) LastError() *ChainError { return c.lastErr }

// ReadByte returns the byte at offset.
func (c *PieceChain) ReadByte(offset int64) (byte, error) {
	p, off, ok := c.locate(offset)
	if !ok {
		return 0, c.fail("cannot read", ErrOutOfRange)
	}
	return p.bytes()[off], nil
}

// Bytes materializes the whole contents as one flat slice.
func (c *PieceChain) Bytes() []byte {
	out := make([]byte, 0, c.size)
	c.Visit(0, c.size, func(_ int64, data []byte) bool {
		out = append(out, data...)
		return true
	})
	return out
}

// ReadAt implements io.ReaderAt over the active chain.
func (c *PieceChain) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > c.size {
		return 0, ErrOutOfRange
	}
	n := 0
	c.Visit(off, int64(len(p)), func(_ int64, data []byte) bool {
		n += copy(p[n:], data)
		return true
	})
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteTo implements io.WriterTo, streaming the contents to w one fragment
// at a time without materializing them.
func (c *PieceChain) WriteTo(w io.Writer) (int64, error) {
	var written int64
	var werr error
	c.Visit(0, c.size, func(_ int64, data []byte) bool {
		n, err := w.Write(data)
		written += int64(n)
		if err != nil {
			werr = err
			return false
		}
		return true
	})
	return written, werr
}
