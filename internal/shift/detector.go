// Package shift decides whether a virtualized window must compensate for rows
// inserted at the head of the sequence.
package shift

import "github.com/rshade/feedlist/internal/rows"

// Detector compares each new sequence with the previous one.
// It must be evaluated in the same pass that hands the new row count to the
// window, otherwise the window renders one frame with a stale decision.
type Detector struct {
	previous *rows.Sequence
	decision bool
}

// Evaluate returns whether the window should shift for seq and records seq
// for the next call.
//
// The same sequence pointer returns the previous decision unchanged. Otherwise
// the first rows are compared by kind and key: a different head means rows
// were prepended (or the head was replaced) and the window must shift; the
// same head means only later rows changed. An empty sequence on either side
// never shifts.
func (d *Detector) Evaluate(seq *rows.Sequence) bool {
	if seq == d.previous {
		return d.decision
	}

	d.decision = headChanged(d.previous, seq)
	d.previous = seq
	return d.decision
}

// Decision returns the last computed decision without evaluating.
func (d *Detector) Decision() bool {
	return d.decision
}

// Reset forgets the previous sequence, e.g. when the list is cleared.
func (d *Detector) Reset() {
	d.previous = nil
	d.decision = false
}

func headChanged(prev, next *rows.Sequence) bool {
	oldHead, newHead := prev.First(), next.First()
	if oldHead == nil || newHead == nil {
		return false
	}
	return oldHead.Kind() != newHead.Kind() || oldHead.Key() != newHead.Key()
}
