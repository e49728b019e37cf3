// Package checkpoint parses the file header and checkpoint blocks needed
// to locate a scan's starting offset, and converts between log-sequence
// numbers and physical file offsets, grounded on innodb_log::read_file /
// deserialize_header and mysqlredo.cc's checkpoint selection.
package checkpoint

import (
	"encoding/binary"
	"fmt"

	"github.com/yamaru/redolog-scan/internal/blockio"
)

// File layout offsets, per spec.md §6.
const (
	HeaderOffset       = 0
	HeaderSize         = 512
	StartLSNOffset     = 8 // offset within the header block of start_lsn
	Checkpoint1Offset  = 512
	Checkpoint2Offset  = 1536
	CheckpointLSNField = 8 // offset within a checkpoint block of checkpoint_lsn
	DataBlocksOffset   = 2048
)

// ErrTooShort reports a file too small to carry the header and checkpoint
// blocks this package requires.
type ErrTooShort struct {
	Need, Have int
}

func (e *ErrTooShort) Error() string {
	return fmt.Sprintf("file too short: need at least %d bytes, have %d", e.Need, e.Have)
}

// Header is the subset of the file header the core inspects.
type Header struct {
	StartLSN uint64
}

// ParseHeader reads the file's start_lsn field from its first 512-byte
// block. Parsing of the rest of the header is out of scope per spec.md §1.
func ParseHeader(file []byte) (Header, error) {
	if len(file) < HeaderSize {
		return Header{}, &ErrTooShort{Need: HeaderSize, Have: len(file)}
	}
	lsn := binary.BigEndian.Uint64(file[HeaderOffset+StartLSNOffset : HeaderOffset+StartLSNOffset+8])
	return Header{StartLSN: lsn}, nil
}

// ParseCheckpointLSN reads the checkpoint_lsn field from the 512-byte
// checkpoint block starting at offset.
func ParseCheckpointLSN(file []byte, offset int) (uint64, error) {
	if len(file) < offset+HeaderSize {
		return 0, &ErrTooShort{Need: offset + HeaderSize, Have: len(file)}
	}
	return binary.BigEndian.Uint64(file[offset+CheckpointLSNField : offset+CheckpointLSNField+8]), nil
}

// SelectCheckpointLSN reads both checkpoint blocks and returns the greater
// checkpoint_lsn, mirroring mysqlredo.cc's max(checkpoint_lsn1,
// checkpoint_lsn2).
func SelectCheckpointLSN(file []byte) (uint64, error) {
	lsn1, err := ParseCheckpointLSN(file, Checkpoint1Offset)
	if err != nil {
		return 0, err
	}
	lsn2, err := ParseCheckpointLSN(file, Checkpoint2Offset)
	if err != nil {
		return 0, err
	}
	if lsn2 > lsn1 {
		return lsn2, nil
	}
	return lsn1, nil
}

// Offset converts an LSN to its physical file offset, per spec.md §6:
//
//	offset(lsn) = 2048 + (lsn - file_start_lsn)
//	              + floor((lsn - file_start_lsn) / (512 - HDR - TRL)) * (HDR + TRL)
func Offset(lsn, fileStartLSN uint64) uint64 {
	delta := lsn - fileStartLSN
	framingOverhead := uint64(blockio.HeaderSize + blockio.TrailerSize)
	payloadPerBlock := uint64(blockio.PayloadLimit)
	return uint64(DataBlocksOffset) + delta + (delta/payloadPerBlock)*framingOverhead
}

// AlignDownBlock rounds offset down to the nearest BlockSize boundary
// relative to the data-blocks region, for callers that need a
// block-aligned address.
func AlignDownBlock(offset uint64) uint64 {
	rel := offset - DataBlocksOffset
	return DataBlocksOffset + (rel/blockio.BlockSize)*blockio.BlockSize
}
