// Package blockio decodes and validates the 512-byte physical framing of
// the redo log: block headers, trailers, and checksums. It knows nothing
// about the logical record stream carried inside block payloads.
package blockio

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Physical block layout, mirroring OS_FILE_LOG_BLOCK_SIZE and friends.
const (
	BlockSize    = 512                            // OS_FILE_LOG_BLOCK_SIZE
	HeaderSize   = 12                              // LOG_BLOCK_HDR_SIZE
	TrailerSize  = 4                               // LOG_BLOCK_TRL_SIZE
	MaxDataLen   = BlockSize - TrailerSize         // upper bound for data_len itself
	PayloadLimit = BlockSize - HeaderSize - TrailerSize

	hdrOffsetNo            = 0
	hdrOffsetDataLen       = 4
	hdrOffsetFirstRecGroup = 6
	hdrOffsetEpochNo       = 8

	flushBit = uint32(1) << 31
)

// ChecksumKind selects the algorithm used to validate a block's trailer.
// The original installs a function pointer at startup; here it is a small
// closed enumeration consulted by the scanner.
type ChecksumKind int

const (
	ChecksumCRC32 ChecksumKind = iota
	ChecksumNone
)

// Header is the decoded 12-byte physical block header plus the checksum
// recovered from the 4-byte trailer.
type Header struct {
	HdrNo         uint32
	DataLen       uint16
	FirstRecGroup uint16
	EpochNo       uint64
	Checksum      uint32
}

// ErrCorruptBlock reports a structurally invalid block header: the kind of
// error that is non-fatal per spec — it tells the scan driver to stop
// cleanly, not to fail loudly.
type ErrCorruptBlock struct {
	Reason string
}

func (e *ErrCorruptBlock) Error() string {
	return fmt.Sprintf("corrupt block: %s", e.Reason)
}

// DecodeHeader parses the header of a single 512-byte block. It validates
// data_len and first_rec_group ranges but does not validate the checksum;
// callers that need checksum validation call VerifyChecksum separately so
// that header-shape and checksum failures can be distinguished.
func DecodeHeader(block []byte) (Header, error) {
	if len(block) != BlockSize {
		return Header{}, &ErrCorruptBlock{Reason: fmt.Sprintf("block size %d != %d", len(block), BlockSize)}
	}

	rawNo := binary.BigEndian.Uint32(block[hdrOffsetNo : hdrOffsetNo+4])
	dataLen := binary.BigEndian.Uint16(block[hdrOffsetDataLen : hdrOffsetDataLen+2])
	firstRecGroup := binary.BigEndian.Uint16(block[hdrOffsetFirstRecGroup : hdrOffsetFirstRecGroup+2])
	epochNo := binary.BigEndian.Uint32(block[hdrOffsetEpochNo : hdrOffsetEpochNo+4])
	checksum := binary.BigEndian.Uint32(block[BlockSize-TrailerSize:])

	h := Header{
		HdrNo:    rawNo &^ flushBit,
		DataLen:  dataLen,
		EpochNo:  uint64(epochNo),
		Checksum: checksum,
	}

	if int(dataLen) < HeaderSize || int(dataLen) > BlockSize-TrailerSize {
		return h, &ErrCorruptBlock{Reason: fmt.Sprintf("data_len %d out of range", dataLen)}
	}
	if firstRecGroup != 0 && (int(firstRecGroup) < HeaderSize || firstRecGroup > dataLen) {
		return h, &ErrCorruptBlock{Reason: fmt.Sprintf("first_rec_group %d out of range for data_len %d", firstRecGroup, dataLen)}
	}
	h.FirstRecGroup = firstRecGroup

	return h, nil
}

// ExpectedHdrNo computes the header number a block beginning at lsn should
// carry, with the flush-generation bit already cleared.
func ExpectedHdrNo(lsn uint64) uint32 {
	return uint32(lsn/BlockSize) + 1
}

// EpochValid reports whether next is a legal successor epoch to prev: the
// same epoch, or exactly one greater.
func EpochValid(next, prev uint64) bool {
	return next == prev || next == prev+1
}

// ChecksumVerifier validates a block's trailer checksum. It is a narrow,
// substitutable seam so tests can force a checksum failure without
// constructing genuinely corrupt bytes.
//
//go:generate mockgen -source=blockio.go -destination=mocks/blockio_mock.go -package=mocks
type ChecksumVerifier interface {
	Verify(block []byte, stored uint32) bool
}

// CRC32Verifier validates the block checksum as a CRC-32 over the first
// BlockSize-TrailerSize bytes, the algorithm named in spec.md §4.2.
type CRC32Verifier struct{}

func (CRC32Verifier) Verify(block []byte, stored uint32) bool {
	if len(block) != BlockSize {
		return false
	}
	calculated := crc32.ChecksumIEEE(block[:BlockSize-TrailerSize])
	return calculated == stored
}

// NoneVerifier always reports the checksum as valid; selected by
// ChecksumKind when the caller knows the source never wrote checksums.
type NoneVerifier struct{}

func (NoneVerifier) Verify(block []byte, stored uint32) bool { return true }

// NewChecksumVerifier resolves a ChecksumKind to its ChecksumVerifier implementation.
func NewChecksumVerifier(kind ChecksumKind) ChecksumVerifier {
	switch kind {
	case ChecksumNone:
		return NoneVerifier{}
	default:
		return CRC32Verifier{}
	}
}
