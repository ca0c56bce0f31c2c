package piecechain

// piece describes size bytes starting at off within blk. A piece never owns
// bytes. Pieces are immutable, with one exception: the piece currently held
// in the cache slot may grow and shrink in lockstep with its backing heap
// block's tail. Once displaced from the cache a piece is frozen for good.
//
// Active pieces are linked into a ring through the chain's sentinel. The
// prev/next pointers of a piece removed by undo are deliberately left
// untouched: a later redo re-splices the piece using them, exactly as the
// span it belongs to recorded them.
type piece struct {
	prev, next *piece
	blk        *block
	off        int64
	size       int64
}

// bytes returns the live view of the piece contents.
func (p *piece) bytes() []byte {
	return p.blk.data[p.off : p.off+p.size]
}

func (c *PieceChain) chainEmpty() bool {
	return c.head.next == &c.head
}

// lastPiece returns nil on an empty chain.
func (c *PieceChain) lastPiece() *piece {
	if c.chainEmpty() {
		return nil
	}
	return c.head.prev
}

// locate walks the active chain and returns the piece containing byte abs
// together with the offset inside that piece. It reports false for an empty
// chain and for abs at or past the end; Insert layers its own end-of-chain
// handling on top of this.
func (c *PieceChain) locate(abs int64) (*piece, int64, bool) {
	if abs < 0 || abs > c.size {
		return nil, 0, false
	}
	pos := int64(0)
	for p := c.head.next; p != &c.head; p = p.next {
		if abs < pos+p.size {
			return p, abs - pos, true
		}
		pos += p.size
	}
	return nil, 0, false
}

// span names the contiguous run of chain pieces [start, end], inclusive on
// both ends. Both ends nil is the empty span, standing for "no pieces": the
// original of a pure insertion or the replacement of a pure deletion.
type span struct {
	start, end *piece
	length     int64
}

// newSpan measures the run from start to end. The pieces must already be
// linked to one another, though not necessarily into the chain.
func newSpan(start, end *piece) span {
	s := span{start: start, end: end}
	if start == nil {
		return s
	}
	for p := start; ; p = p.next {
		s.length += p.size
		if p == end {
			break
		}
	}
	return s
}

// spanSwap replaces the pieces linked as orig in the active chain with the
// pieces linked as repl, and adjusts the chain size. For insertions the
// replacement pieces' own prev/next pointers have been set by the caller;
// only the neighbours get rewired here.
func (c *PieceChain) spanSwap(orig, repl *span) {
	switch {
	case orig.length == 0 && repl.length == 0:
		return
	case orig.length == 0:
		// A pure insertion.
		repl.start.prev.next = repl.start
		repl.end.next.prev = repl.end
	case repl.length == 0:
		// A pure deletion.
		orig.start.prev.next = orig.end.next
		orig.end.next.prev = orig.start.prev
	default:
		orig.start.prev.next = repl.start
		orig.end.next.prev = repl.end
	}
	c.size += repl.length - orig.length
}
