// Package scan implements the top-level scan driver: the loop that feeds
// physical blocks into the parse buffer, drives the mini-transaction
// assembler, advances log-sequence numbers, and terminates on end-of-log
// or corruption, grounded on my_recv_scan_log_recs / my_parse_begin.
package scan

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/yamaru/redolog-scan/internal/blockio"
	"github.com/yamaru/redolog-scan/internal/mtr"
	"github.com/yamaru/redolog-scan/internal/parsebuf"
	"github.com/yamaru/redolog-scan/internal/sink"
)

// Options configures one scan invocation.
type Options struct {
	// CheckpointLSN is the LSN scanning was requested to begin at.
	CheckpointLSN uint64
	// StopLSN is the caller-supplied upper bound; scanning halts once
	// recovered_lsn exceeds it.
	StopLSN uint64
	// Checksum selects the block checksum algorithm.
	Checksum blockio.ChecksumKind
	// MaxParseBufLen caps the parse buffer's growth, mirroring
	// srv_log_buffer_size.
	MaxParseBufLen int
	// Logger receives diagnostics; a nil Logger discards them.
	Logger *log.Logger
}

// Scanner owns all scan state for one invocation; spec.md §9's
// re-architecture note replaces the source's process-wide globals with
// this value, passed by reference, so tests can instantiate independent
// scanners.
type Scanner struct {
	opts Options
	log  *log.Logger

	checksum blockio.ChecksumVerifier
	buf      *parsebuf.Buffer
	asm      *mtr.Assembler
	sink     sink.EventSink

	checkpointLSN           uint64
	parseStartLSN           uint64
	scannedLSN              uint64
	recoveredLSN            uint64
	previousRecoveredLSN    uint64
	lastBlockFirstRecGroup  uint16
	bytesToIgnoreBeforeCkpt uint64
	scannedEpochNo          uint64

	// payloadTotal and blockBoundaries track the parse buffer's payload
	// stream against the true, framing-inclusive LSN axis scannedLSN lives
	// on. The buffer only ever holds stripped block payload (no header,
	// no trailer), so a span of consumed payload bytes that crosses from
	// one block's payload into the next must have blockio.HeaderSize
	// added back to land on the LSN that span actually spans, mirroring
	// checkpoint.Offset's inverse conversion. blockBoundaries holds the
	// payloadTotal value at which each block after the first begins;
	// consumedTotal (tracked alongside recoveredLSN's updates) retires
	// them as the buffer drains.
	payloadTotal    uint64
	blockBoundaries []uint64
	consumedTotal   uint64
	havePayload     bool

	foundCorruptLog bool
	foundCorruptFS  bool
	finished        bool

	haveScannedAnyBlock bool
}

// New creates a Scanner ready to consume blocks via Run.
func New(opts Options, es sink.EventSink) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	maxLen := opts.MaxParseBufLen
	if maxLen == 0 {
		maxLen = 1 << 30 // 1 GiB, per spec.md §5's typical cap
	}
	return &Scanner{
		opts:          opts,
		log:           logger,
		checksum:      blockio.NewChecksumVerifier(opts.Checksum),
		buf:           parsebuf.New(maxLen, blockio.BlockSize),
		asm:           mtr.New(),
		sink:          es,
		checkpointLSN: opts.CheckpointLSN,
		recoveredLSN:  opts.CheckpointLSN,
		scannedLSN:    opts.CheckpointLSN,
	}
}

// FoundCorruptLog reports whether a logical-level corruption was observed.
func (s *Scanner) FoundCorruptLog() bool { return s.foundCorruptLog }

// RecoveredLSN returns the highest LSN whose records have been fully
// decoded and dispatched.
func (s *Scanner) RecoveredLSN() uint64 { return s.recoveredLSN }

// ScannedLSN returns the highest LSN whose block has been ingested.
func (s *Scanner) ScannedLSN() uint64 { return s.scannedLSN }

// ParseStartLSN returns the LSN of the first record-group boundary at or
// after CheckpointLSN, or 0 if none has been discovered yet.
func (s *Scanner) ParseStartLSN() uint64 { return s.parseStartLSN }

// Run scans consecutive BlockSize blocks starting at file[offset:],
// stopping at end of input, StopLSN, or corruption. It mirrors
// my_recv_scan_log_recs's per-block loop followed by draining the
// assembler after each block.
func (s *Scanner) Run(file []byte, offset int) {
	for offset+blockio.BlockSize <= len(file) && !s.finished && !s.foundCorruptLog {
		if s.opts.StopLSN != 0 && s.recoveredLSN > s.opts.StopLSN {
			break
		}
		block := file[offset : offset+blockio.BlockSize]
		blockStartLSN := s.scannedLSN

		hdr, err := blockio.DecodeHeader(block)
		if err != nil {
			s.log.Debugf("stopping: %v", err)
			s.finished = true
			break
		}

		expected := blockio.ExpectedHdrNo(blockStartLSN)
		if hdr.HdrNo != expected {
			s.log.Debugf("header number mismatch: got %d want %d", hdr.HdrNo, expected)
			s.finished = true
			break
		}

		if !s.checksum.Verify(block, hdr.Checksum) {
			s.log.Debugf("checksum mismatch at lsn %d", blockStartLSN)
			s.finished = true
			break
		}

		if s.haveScannedAnyBlock && !blockio.EpochValid(hdr.EpochNo, s.scannedEpochNo) {
			s.log.Debugf("stale epoch at lsn %d: got %d want %d or %d", blockStartLSN, hdr.EpochNo, s.scannedEpochNo, s.scannedEpochNo+1)
			s.finished = true
			break
		}
		s.haveScannedAnyBlock = true

		if s.parseStartLSN == 0 && hdr.FirstRecGroup > 0 {
			s.parseStartLSN = blockStartLSN + uint64(hdr.FirstRecGroup)
			if s.parseStartLSN < s.checkpointLSN {
				s.bytesToIgnoreBeforeCkpt = s.checkpointLSN - s.parseStartLSN
			}
			s.scannedLSN = s.parseStartLSN
			s.recoveredLSN = s.parseStartLSN
			s.previousRecoveredLSN = s.parseStartLSN
			s.lastBlockFirstRecGroup = hdr.FirstRecGroup
		}

		s.scannedLSN += uint64(hdr.DataLen)
		s.scannedEpochNo = hdr.EpochNo

		if s.parseStartLSN != 0 {
			payloadEnd := int(hdr.DataLen)
			if payloadEnd > blockio.BlockSize-blockio.TrailerSize {
				payloadEnd = blockio.BlockSize - blockio.TrailerSize
			}
			payload := block[blockio.HeaderSize:payloadEnd]
			if s.havePayload {
				s.blockBoundaries = append(s.blockBoundaries, s.payloadTotal)
			}
			if err := s.buf.Append(payload); err != nil {
				s.log.Debugf("parse buffer exhausted: %v", err)
				s.foundCorruptLog = true
				break
			}
			s.payloadTotal += uint64(len(payload))
			s.havePayload = true
			s.drainAssembler()
		}

		lastOfBurst := hdr.DataLen < blockio.MaxDataLen
		offset += blockio.BlockSize
		if lastOfBurst {
			s.finished = true
		}
	}
}

// drainAssembler invokes the assembler repeatedly until it needs more
// input or recoveredLSN has passed StopLSN, per spec.md §4.6 step 8.
func (s *Scanner) drainAssembler() {
	for {
		if s.opts.StopLSN != 0 && s.recoveredLSN > s.opts.StopLSN {
			return
		}

		buf := s.buf.Bytes()
		outcome, next := s.asm.Step(buf, 0, s.recoveredLSN, s.scannedLSN)
		switch outcome {
		case mtr.OutcomeNeedMore:
			return
		case mtr.OutcomeCorrupt:
			s.foundCorruptLog = true
			return
		case mtr.OutcomeCommitted:
			recs := s.asm.Drain()
			consumed := next
			startLSN := s.recoveredLSN

			// rec.StartLSN/EndLSN arrive as cursor positions into buf
			// (relative to the current unconsumed head, per Step's pos=0
			// contract), not true LSNs; translate before the head moves.
			for i := range recs {
				recs[i].StartLSN = s.lsnAt(int(recs[i].StartLSN))
				recs[i].EndLSN = s.lsnAt(int(recs[i].EndLSN))
			}

			s.recoveredLSN += s.advanceLSN(consumed)
			s.previousRecoveredLSN = startLSN

			kind := sink.MTRSingle
			if len(recs) > 1 {
				kind = sink.MTRMulti
			}
			if s.sink != nil {
				s.sink.EmitMTRBoundary(kind, startLSN, s.recoveredLSN)
				for _, rec := range recs {
					s.sink.EmitRecord(rec)
				}
			}
			s.buf.Consume(consumed)
		}
	}
}

// lsnAt converts cursor, a payload-buffer-relative offset counted from the
// current unconsumed head (as redorec.Decode stamps into Record.StartLSN/
// EndLSN), into the true LSN it names: the head's own LSN plus cursor, plus
// blockio.HeaderSize for every block boundary the span [0, cursor) crosses.
func (s *Scanner) lsnAt(cursor int) uint64 {
	abs := s.consumedTotal + uint64(cursor)
	var crossed uint64
	for _, b := range s.blockBoundaries {
		if b > s.consumedTotal && b <= abs {
			crossed++
		}
	}
	return s.recoveredLSN + uint64(cursor) + crossed*blockio.HeaderSize
}

// advanceLSN reports the true LSN delta for consuming n payload bytes from
// the current head and retires any block boundaries that span falls past.
// Each boundary crossed re-adds blockio.HeaderSize, the header byte count
// the parse buffer strips out of every block before appending its payload.
// It is the inverse of the framing overhead checkpoint.Offset adds when it
// walks an LSN forward into a physical file offset.
func (s *Scanner) advanceLSN(n int) uint64 {
	delta := uint64(n)
	newTotal := s.consumedTotal + uint64(n)
	for len(s.blockBoundaries) > 0 && s.blockBoundaries[0] <= newTotal {
		delta += blockio.HeaderSize
		s.blockBoundaries = s.blockBoundaries[1:]
	}
	s.consumedTotal = newTotal
	return delta
}
