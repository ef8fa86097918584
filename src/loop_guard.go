// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Detect scripts that loop without making progress.
 *
 * Description:	A scan that fails can branch back to an earlier
 *		statement.  If nothing consumed any data in between,
 *		the same statement will start again at the same
 *		position, forever.
 *
 *		We remember the most recent (statement, position) pairs
 *		and complain if one shows up again while still remembered.
 *
 * Limitation:	History is a fixed size ring, oldest evicted first.
 *		A loop that visits more distinct pairs than the capacity
 *		before repeating will not be caught.  Raise the capacity
 *		with the loop_history setting if you have such a script.
 *
 *------------------------------------------------------------------*/

// DefaultLoopHistory is the number of (statement, position) pairs kept.
const DefaultLoopHistory = 50

// FormatPositionRecord is one visit of a statement at a buffer position.
type FormatPositionRecord struct {
	Statement int
	Position  int
}

// LoopGuard is a bounded history of statement visits.
type LoopGuard struct {
	ring  []FormatPositionRecord
	next  int // Where the next record goes.
	count int // Number of live records, never more than len(ring).
}

// NewLoopGuard makes a guard holding up to capacity records.
// Zero or negative means DefaultLoopHistory.
func NewLoopGuard(capacity int) *LoopGuard {
	if capacity <= 0 {
		capacity = DefaultLoopHistory
	}

	return &LoopGuard{ring: make([]FormatPositionRecord, capacity)}
}

func (g *LoopGuard) Capacity() int {
	return len(g.ring)
}

// Len is the number of records currently remembered.
func (g *LoopGuard) Len() int {
	return g.count
}

// Visit records a statement starting at a position.  If the exact pair is
// still in the history the guard trips and nothing is recorded.
func (g *LoopGuard) Visit(statement int, position int) error {
	var rec = FormatPositionRecord{Statement: statement, Position: position}

	for i := 0; i < g.count; i++ {
		if g.ring[i] == rec {
			return &EndlessLoopError{Statement: statement, Position: position}
		}
	}

	g.ring[g.next] = rec
	g.next = (g.next + 1) % len(g.ring)
	if g.count < len(g.ring) {
		g.count++
	}

	return nil
}

// Reset forgets everything.
func (g *LoopGuard) Reset() {
	g.next = 0
	g.count = 0
}
