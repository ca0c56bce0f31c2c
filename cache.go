package piecechain

// The cache is a single-slot reference to the last mutated piece, whose tail
// coincides with the tail of the most recently allocated heap block. It lets
// runs of small neighbouring edits coalesce into one piece and one pending
// change instead of sprouting a piece per keystroke. The price is that
// coalesced bytes share a change and cannot be undone separately.

// cachePut sets the cache slot. A non-nil piece must end exactly where the
// last block ends.
func (c *PieceChain) cachePut(p *piece) {
	c.cache = p
	if p != nil {
		blk := c.lastBlock()
		if p.blk != blk || p.off+p.size != blk.len {
			panic("piecechain: cached piece does not end at the last block tail")
		}
	}
}

// cacheInsert coalesces an insertion into the cached piece. It succeeds only
// when p is the cached piece and the backing block can fit the bytes. The
// piece bytes after the insertion point shift towards the block tail and the
// new bytes drop into the gap; piece, block, chain and the most recent
// pending change all grow by n, so that undo removes the coalesced bytes
// together with the rest of the change.
func (c *PieceChain) cacheInsert(p *piece, pieceOff int64, data []byte) bool {
	if c.cache == nil || c.cache != p || len(c.pending) == 0 {
		return false
	}
	blk := c.lastBlock()
	n := int64(len(data))
	if !blk.canFit(n) {
		return false
	}

	tail := p.size - pieceOff
	at := blk.len - tail
	if tail == 0 {
		blk.append(data)
	} else {
		copy(blk.data[at+n:blk.len+n], blk.data[at:blk.len])
		copy(blk.data[at:at+n], data)
		blk.len += n
	}

	p.size += n
	c.size += n
	last := c.pending[len(c.pending)-1]
	last.replacement.length += n
	return true
}

// cacheDelete coalesces a deletion that falls entirely inside the cached
// piece, shifting the surviving tail bytes down and shrinking the piece, the
// block and the most recent pending change in place.
func (c *PieceChain) cacheDelete(p *piece, pieceOff, n int64) bool {
	if c.cache == nil || c.cache != p || len(c.pending) == 0 {
		return false
	}
	if p.size-pieceOff < n {
		return false
	}

	blk := c.lastBlock()
	at := blk.len - (p.size - pieceOff)
	copy(blk.data[at:], blk.data[at+n:blk.len])
	blk.len -= n

	p.size -= n
	c.size -= n
	last := c.pending[len(c.pending)-1]
	last.replacement.length -= n
	return true
}
