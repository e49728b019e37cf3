// Package parsebuf implements the append-only logical byte stream the
// record decoder and MTR assembler read from. It accumulates block
// payloads (header and trailer already stripped) into one contiguous
// buffer, growing on demand, independent of the 512-byte physical framing
// above it.
package parsebuf

import "fmt"

// growLowWatermarkBlocks mirrors recv_sys_resize_buf's trigger: resize once
// fewer than four blocks of headroom remain before the buffer is full.
const growLowWatermarkBlocks = 4

// ErrAtCapacity reports that the buffer has reached its configured maximum
// and cannot grow further; the caller treats this as found_corrupt_log.
type ErrAtCapacity struct {
	Capacity int
}

func (e *ErrAtCapacity) Error() string {
	return fmt.Sprintf("parse buffer exhausted configured capacity of %d bytes", e.Capacity)
}

// Buffer is the growable parse buffer. Bytes are appended at the tail and
// consumed from the head as the MTR assembler resolves records; Consume
// does not physically shift memory until the head has advanced far enough
// to make a copy-down worthwhile relative to growing further, keeping the
// common case (pure append + cursor advance) allocation-free.
type Buffer struct {
	data     []byte
	consumed int
	maxLen   int
	blockLen int
}

// New creates a Buffer with an initial capacity of five blocks (the
// four-block low watermark plus one), capped at maxLen, and a hard
// ceiling of maxLen bytes, mirroring srv_log_buffer_size. blockLen is the
// physical block size used to size the low-watermark check (512 in
// production, parameterized here so tests can use smaller blocks).
func New(maxLen, blockLen int) *Buffer {
	initial := blockLen * (growLowWatermarkBlocks + 1)
	if initial > maxLen {
		initial = maxLen
	}
	return &Buffer{
		data:     make([]byte, 0, initial),
		maxLen:   maxLen,
		blockLen: blockLen,
	}
}

// Len returns the number of unconsumed bytes available to read.
func (b *Buffer) Len() int {
	return len(b.data) - b.consumed
}

// Bytes returns the unconsumed portion of the buffer. The returned slice is
// only valid until the next call to Append or Consume.
func (b *Buffer) Bytes() []byte {
	return b.data[b.consumed:]
}

// Consume advances the read cursor by n bytes, discarding them. It
// compacts the backing array once the consumed prefix grows past half of
// capacity, so long-running scans don't retain unboundedly large slices of
// fully-consumed data.
func (b *Buffer) Consume(n int) {
	if n <= 0 {
		return
	}
	b.consumed += n
	if b.consumed > cap(b.data)/2 {
		remaining := len(b.data) - b.consumed
		copy(b.data[:remaining], b.data[b.consumed:])
		b.data = b.data[:remaining]
		b.consumed = 0
	}
}

// NeedsGrow reports whether no more than four blocks of headroom remain
// before the buffer is full, i.e. whether the caller should call Grow
// before the next Append.
func (b *Buffer) NeedsGrow() bool {
	return len(b.data)+growLowWatermarkBlocks*b.blockLen >= cap(b.data)
}

// Grow doubles the buffer's capacity up to maxLen. It reports ErrAtCapacity
// if the buffer is already at its configured ceiling.
func (b *Buffer) Grow() error {
	if cap(b.data) >= b.maxLen {
		return &ErrAtCapacity{Capacity: b.maxLen}
	}
	newCap := cap(b.data) * 2
	if newCap > b.maxLen {
		newCap = b.maxLen
	}
	if newCap <= cap(b.data) {
		return &ErrAtCapacity{Capacity: b.maxLen}
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Append adds payload to the tail of the buffer, growing first if the
// low-watermark threshold has been crossed or if payload would not
// otherwise fit. Callers are responsible for only calling Append once
// parse_start_lsn is known, per spec.md §4.3 — this package has no opinion
// on that gating, it only manages bytes.
func (b *Buffer) Append(payload []byte) error {
	for b.NeedsGrow() || len(b.data)+len(payload) > cap(b.data) {
		if err := b.Grow(); err != nil {
			if len(b.data)+len(payload) > cap(b.data) {
				return err
			}
			break
		}
	}
	b.data = append(b.data, payload...)
	return nil
}
