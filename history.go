package piecechain

// change records one structural edit as an "original span is replaced by
// replacement span" swap, plus the byte offset the caller addressed. The
// offset is what Undo and Redo report back for cursor repositioning.
type change struct {
	pos         int64
	original    span
	replacement span
}

// revision groups the changes committed together as one undo unit.
// Revisions form a linear history: entries to the right of the cursor are
// the redo tail, forfeited by the next mutation.
type revision struct {
	changes []*change
}

// openChange appends a fresh change to the pending list.
func (c *PieceChain) openChange(pos int64) *change {
	ch := &change{pos: pos}
	c.pending = append(c.pending, ch)
	return ch
}

// purgeRedoTail discards every revision to the right of the cursor. Pieces
// referenced only as replacements of the purged changes become unreachable
// here; originals may still be referenced by retained changes or by the
// active chain, so nothing else is touched.
func (c *PieceChain) purgeRedoTail() {
	if len(c.revisions) == 0 || c.current >= len(c.revisions)-1 {
		return
	}
	for i := c.current + 1; i < len(c.revisions); i++ {
		c.revisions[i] = nil
	}
	c.revisions = c.revisions[:c.current+1]
}

// Commit moves any pending changes into a new revision, turning them into a
// single undo unit, and invalidates the piece cache. Committing with
// nothing pending only drops the cache.
func (c *PieceChain) Commit() {
	if len(c.pending) > 0 {
		c.revisions = append(c.revisions, &revision{changes: c.pending})
		c.pending = nil
		c.current = len(c.revisions) - 1
	}
	c.cachePut(nil)
}

// Undo reverts the most recent revision, committing pending changes first.
// It returns the smallest byte offset touched by the reverted revision, for
// cursor repositioning, and false when there is nothing left to undo.
func (c *PieceChain) Undo() (int64, bool) {
	c.Commit()

	if c.current <= 0 {
		return 0, false
	}

	rev := c.revisions[c.current]
	pos := c.size
	for i := len(rev.changes) - 1; i >= 0; i-- {
		ch := rev.changes[i]
		c.spanSwap(&ch.replacement, &ch.original)
		if ch.pos < pos {
			pos = ch.pos
		}
	}
	c.current--
	return pos, true
}

// Redo reapplies the revision right of the cursor, committing pending
// changes first. It returns the smallest byte offset touched and false when
// the cursor is already at the latest revision.
func (c *PieceChain) Redo() (int64, bool) {
	c.Commit()

	if c.current >= len(c.revisions)-1 {
		return 0, false
	}

	c.current++
	rev := c.revisions[c.current]
	pos := c.size
	for _, ch := range rev.changes {
		c.spanSwap(&ch.original, &ch.replacement)
		if ch.pos < pos {
			pos = ch.pos
		}
	}
	return pos, true
}
