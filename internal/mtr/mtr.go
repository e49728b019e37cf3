// Package mtr implements the mini-transaction assembler: the state machine
// that distinguishes single-record and multi-record mini-transactions,
// buffers the component records of a multi, and commits them atomically
// only once its END marker has been consumed, grounded on recv_single_rec
// and recv_multi_rec in the original scanner.
package mtr

import "github.com/yamaru/redolog-scan/internal/redorec"

// State is the assembler's current phase.
type State int

const (
	StateIdle State = iota
	StateInMulti
	StateCommitted
	StateCorrupt
)

// Outcome reports what Step accomplished on one call.
type Outcome int

const (
	// OutcomeNeedMore means the buffer didn't hold a complete MTR; the
	// caller should append more input and retry. No records were
	// committed; the cursor was not advanced.
	OutcomeNeedMore Outcome = iota
	// OutcomeCommitted means a complete MTR (single or multi) was
	// decoded and its records are available via Drain.
	OutcomeCommitted
	// OutcomeCorrupt means the assembler observed a malformed sequence
	// (an unknown type byte, or a single-record flag inside a
	// multi-record group) and has transitioned to the terminal CORRUPT
	// state.
	OutcomeCorrupt
)

// Assembler drives one scan's worth of mini-transaction reconstruction.
// It is not safe for concurrent use; spec.md §5 specifies a
// single-threaded, cooperative scan.
type Assembler struct {
	state    State
	pending  []redorec.Record
	multi    bool
}

// New creates an Assembler in the IDLE state.
func New() *Assembler {
	return &Assembler{state: StateIdle}
}

// State returns the assembler's current phase.
func (a *Assembler) State() State {
	return a.state
}

// Step attempts to advance the assembler by decoding as many records as
// are available starting at pos in buf, stopping once an MTR has
// committed, the assembler needs more bytes, or corruption is detected.
// scannedLSN is the highest LSN ingested into the parse buffer so far;
// recoveredLSN is the LSN corresponding to pos. Step never consumes bytes
// belonging to an MTR it rolls back.
//
// It returns the outcome and the new cursor (equal to pos on NeedMore or
// Corrupt); the caller derives the new recoveredLSN from the bytes consumed.
func (a *Assembler) Step(buf []byte, pos int, recoveredLSN, scannedLSN uint64) (Outcome, int) {
	if a.state == StateCorrupt {
		return OutcomeCorrupt, pos
	}

	if a.state == StateIdle {
		a.pending = a.pending[:0]
		a.multi = false
	}

	cursor := pos
	for {
		rec, next, status := redorec.Decode(buf, cursor)
		switch status {
		case redorec.StatusShortBuffer:
			a.rollback()
			return OutcomeNeedMore, pos

		case redorec.StatusCorruptLog:
			a.state = StateCorrupt
			return OutcomeCorrupt, pos

		case redorec.StatusOK:
			if !a.multi && len(a.pending) == 0 && (rec.SingleRec || rec.Type == redorec.DummyRecord) {
				// IDLE fast path: one record is the whole MTR.
				newLSN := recoveredLSN + uint64(next-pos)
				if newLSN > scannedLSN {
					return OutcomeNeedMore, pos
				}
				a.pending = append(a.pending, rec)
				a.state = StateCommitted
				return OutcomeCommitted, next
			}

			if rec.SingleRec {
				// A single-record flag on a component inside a
				// multi-record group is malformed.
				a.state = StateCorrupt
				return OutcomeCorrupt, pos
			}

			a.multi = true
			a.state = StateInMulti
			a.pending = append(a.pending, rec)
			cursor = next

			if rec.Type == redorec.MultiRecEnd {
				newLSN := recoveredLSN + uint64(cursor-pos)
				if newLSN > scannedLSN {
					a.rollback()
					return OutcomeNeedMore, pos
				}
				a.state = StateCommitted
				return OutcomeCommitted, cursor
			}
		}
	}
}

// rollback discards any buffered components of an incomplete multi-record
// MTR and returns the assembler to IDLE without emitting anything — the
// atomicity guarantee spec.md §4.5 requires.
func (a *Assembler) rollback() {
	a.pending = a.pending[:0]
	a.multi = false
	a.state = StateIdle
}

// Drain returns the records committed by the most recent Step call that
// returned OutcomeCommitted, in input order, and resets the assembler to
// IDLE so it can begin the next MTR.
func (a *Assembler) Drain() []redorec.Record {
	out := make([]redorec.Record, len(a.pending))
	copy(out, a.pending)
	a.pending = a.pending[:0]
	a.multi = false
	a.state = StateIdle
	return out
}
