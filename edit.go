package piecechain

// Insert writes data into the chain at offset. Inserting at offset Size()
// appends; greater offsets fail with ErrOutOfRange. Inserting nothing
// succeeds without touching the chain.
func (c *PieceChain) Insert(offset int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if offset < 0 || offset > c.size {
		return c.fail("cannot insert", ErrOutOfRange)
	}

	p, pieceOff, ok := c.locate(offset)
	if !ok {
		if c.chainEmpty() {
			p, pieceOff = nil, 0
		} else {
			// Appending at the very end of the chain.
			p = c.lastPiece()
			pieceOff = p.size
		}
	}

	// A mutation forfeits whatever could still be redone.
	c.purgeRedoTail()

	// Try to coalesce into the cached piece. An insertion at the head of a
	// piece equally belongs at the tail of its predecessor, which may be
	// the cached one.
	if p != nil {
		if c.cacheInsert(p, pieceOff, data) {
			c.dirty = true
			return nil
		}
		if pieceOff == 0 && p.prev != &c.head {
			prev := p.prev
			if c.cacheInsert(prev, prev.size, data) {
				c.dirty = true
				return nil
			}
		}
	}

	n := int64(len(data))
	blk := c.lastBlock()
	if blk == nil || !blk.canFit(n) {
		blk = c.allocHeap(n)
	}
	off := blk.append(data)

	ch := c.openChange(offset)
	var fresh *piece

	switch {
	case p == nil:
		// First insertion into an empty chain.
		fresh = &piece{blk: blk, off: off, size: n}
		fresh.prev, fresh.next = &c.head, &c.head
		ch.replacement = newSpan(fresh, fresh)

	case pieceOff == 0 || pieceOff == p.size:
		// At a piece boundary: one new piece spliced before or after p.
		// pieceOff == p.size only happens when appending at the end.
		fresh = &piece{blk: blk, off: off, size: n}
		if pieceOff == 0 {
			fresh.prev, fresh.next = p.prev, p
		} else {
			fresh.prev, fresh.next = p, p.next
		}
		ch.replacement = newSpan(fresh, fresh)

	default:
		// Inside a piece: p splits in two around the new bytes.
		before := &piece{blk: p.blk, off: p.off, size: pieceOff}
		middle := &piece{blk: blk, off: off, size: n}
		after := &piece{blk: p.blk, off: p.off + pieceOff, size: p.size - pieceOff}
		before.prev, before.next = p.prev, middle
		middle.prev, middle.next = before, after
		after.prev, after.next = middle, p.next
		ch.original = newSpan(p, p)
		ch.replacement = newSpan(before, after)
		fresh = middle
	}

	c.cachePut(fresh)
	c.spanSwap(&ch.original, &ch.replacement)
	c.dirty = true
	return nil
}

// Delete removes n bytes starting at offset. A range running past the end
// of the chain is clamped; an offset at or past the end fails with
// ErrOutOfRange. Deleting nothing succeeds without touching the chain.
func (c *PieceChain) Delete(offset, n int64) error {
	if n == 0 {
		return nil
	}
	if offset < 0 || n < 0 || offset > c.size {
		return c.fail("cannot delete", ErrOutOfRange)
	}

	start, startOff, ok := c.locate(offset)
	if !ok {
		return c.fail("cannot delete", ErrOutOfRange)
	}
	end, endOff, ok := c.locate(offset + n)
	if !ok {
		// The range runs off the end: delete up to the last byte.
		end = c.lastPiece()
		endOff = end.size
	}

	c.purgeRedoTail()

	if c.cacheDelete(start, startOff, n) {
		c.dirty = true
		return nil
	}

	ch := c.openChange(offset)

	// The range may start or stop midway through a piece; each cut end
	// needs a new piece for the surviving bytes.
	splitStart := startOff != 0
	splitEnd := endOff != end.size

	before, after := start.prev, end.next

	var newStart, newEnd *piece
	if splitStart {
		newStart = &piece{blk: start.blk, off: start.off, size: startOff}
		newStart.prev, newStart.next = before, after
	}
	if splitEnd {
		newEnd = &piece{blk: end.blk, off: end.off + endOff, size: end.size - endOff}
		newEnd.prev, newEnd.next = before, after
		if splitStart {
			newStart.next = newEnd
			newEnd.prev = newStart
		}
	}
	if newStart == nil {
		newStart = newEnd
	} else if newEnd == nil {
		newEnd = newStart
	}

	ch.original = newSpan(start, end)
	ch.replacement = newSpan(newStart, newEnd)
	c.spanSwap(&ch.original, &ch.replacement)

	// A deletion produces no fresh appendable piece. The cache must not
	// survive it either: a still-cached piece belongs to an earlier pending
	// change, and coalescing into it now would book the bytes against this
	// change's span.
	c.cachePut(nil)
	c.dirty = true
	return nil
}

// Replace overwrites len(data) bytes at offset: a deletion followed by an
// insertion, sharing the pending-change list so one Commit groups both. The
// offset is validated before anything mutates, so a failed Replace never
// leaves half of the pair behind.
func (c *PieceChain) Replace(offset int64, data []byte) error {
	if offset < 0 || offset > c.size {
		return c.fail("cannot replace", ErrOutOfRange)
	}
	if err := c.Delete(offset, int64(len(data))); err != nil {
		return err
	}
	return c.Insert(offset, data)
}
