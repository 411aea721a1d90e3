// invbatch.go implements component B: the batched-inversion coordinator.
// Rounds in a Sign/Verify call share one InvBatch per normalization pass
// (one pass in Sign, up to three in Verify; see batchNormalize in driver.go)
// so the many field inversions a signature would otherwise perform one at a
// time are combined into a single Montgomery's-trick batch inversion per
// pass, mirroring original_source/SIDH_signature.c's invBatchA/B/C pthread
// barriers, collapsed here to one mutex-guarded generation counter and a
// single condition variable since Go's scheduler needs no separate
// "slots full" signal to hand off to the last arriving goroutine.
package sidh

import (
	"fmt"
	"sync"
)

// InvBatch coordinates N concurrent field-inversion requests into one
// Montgomery's-trick batch inversion. Every participant calls
// SubmitAndWait exactly once per generation; the last arrival performs the
// batch inversion and wakes the others, after which the instance is ready
// for its next generation without reallocation.
type InvBatch struct {
	mu   sync.Mutex
	done *sync.Cond

	n          int
	vals       []FieldElem
	count      int
	generation uint64
	err        error
}

// NewInvBatch allocates a coordinator for exactly n participants.
func NewInvBatch(n int) (*InvBatch, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invbatch: new: %w", ErrNoMemory)
	}
	b := &InvBatch{n: n, vals: make([]FieldElem, n)}
	b.done = sync.NewCond(&b.mu)
	return b, nil
}

// SubmitAndWait submits v at slot idx and blocks until all n participants
// of the current generation have submitted. It returns v^-1, computed as
// part of the shared batch inversion, or the batch's error if any
// participant submitted a zero value (field elements have no inverse at
// zero, so one bad submission fails the whole batch, matching
// original_source's invBatch* which aborts the whole round group on a
// degenerate point).
func (b *InvBatch) SubmitAndWait(idx int, v FieldElem) (FieldElem, error) {
	if idx < 0 || idx >= b.n {
		return FieldElem{}, fmt.Errorf("invbatch: submit: %w", ErrInvalidParameter)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.vals[idx] = v
	b.count++

	if b.count == b.n {
		b.computeLocked()
		b.count = 0
		b.generation++
		b.done.Broadcast()
	} else {
		for b.generation == gen {
			b.done.Wait()
		}
	}

	if b.err != nil {
		return FieldElem{}, b.err
	}
	return b.vals[idx], nil
}

// computeLocked runs Montgomery's simultaneous-inversion trick over the
// current batch: one forward pass of prefix products, one inversion, and
// one backward pass recovering each individual inverse. Called with mu
// held, by the participant that filled the last slot.
func (b *InvBatch) computeLocked() {
	b.err = nil
	prefix := make([]FieldElem, b.n)
	acc := FieldOne()
	for i := 0; i < b.n; i++ {
		if b.vals[i].IsZero() {
			b.err = fmt.Errorf("invbatch: slot %d: %w", i, ErrInvalidParameter)
			return
		}
		prefix[i] = acc
		acc = acc.Mul(b.vals[i])
	}

	inv := acc.Inv()
	for i := b.n - 1; i >= 0; i-- {
		orig := b.vals[i]
		b.vals[i] = inv.Mul(prefix[i])
		if !b.vals[i].Mul(orig).Equal(FieldOne()) {
			b.err = fmt.Errorf("invbatch: slot %d: %w", i, ErrUnknown)
			return
		}
		inv = inv.Mul(orig)
	}
}

// Reset clears the batch for reuse with a different participant count
// mapping (same n). It must not be called while any participant is
// blocked in SubmitAndWait.
func (b *InvBatch) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.vals {
		b.vals[i] = FieldElem{}
	}
	b.count = 0
	b.err = nil
}
