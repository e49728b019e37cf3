// Package fixtures builds synthetic physical blocks and record byte
// sequences for integration-style tests, generalizing the private
// per-package helpers (buildBlock, buildFullBlock, repeatDummy) found in
// internal/scan's and internal/blockio's own test files into one shared,
// importable form. Those packages' tests still use their private copies.
package fixtures

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/yamaru/redolog-scan/internal/blockio"
	"github.com/yamaru/redolog-scan/internal/redorec"
)

// Block builds one syntactically valid, correctly checksummed 512-byte
// block. payload is placed right after the header; data_len is set to
// exactly HeaderSize+len(payload) — a block that may be the last of its
// write burst.
func Block(hdrNo, epochNo uint32, firstRecGroup uint16, payload []byte) []byte {
	block := make([]byte, blockio.BlockSize)
	binary.BigEndian.PutUint32(block[0:4], hdrNo)
	dataLen := uint16(blockio.HeaderSize + len(payload))
	binary.BigEndian.PutUint16(block[4:6], dataLen)
	binary.BigEndian.PutUint16(block[6:8], firstRecGroup)
	binary.BigEndian.PutUint32(block[8:12], epochNo)
	copy(block[blockio.HeaderSize:], payload)
	stampChecksum(block)
	return block
}

// FullBlock is like Block but forces data_len to the maximum valid value
// regardless of len(payload), marking the block as not the last of its
// write burst. Callers are responsible for making payload's length equal
// blockio.PayloadLimit when every byte must be genuine record content;
// shorter payloads leave the remainder zeroed, and once the scanner reaches
// those bytes a zero decodes as an unrecognized record type, which it
// reports as a corrupt log.
func FullBlock(hdrNo, epochNo uint32, firstRecGroup uint16, payload []byte) []byte {
	block := make([]byte, blockio.BlockSize)
	binary.BigEndian.PutUint32(block[0:4], hdrNo)
	binary.BigEndian.PutUint16(block[4:6], uint16(blockio.MaxDataLen))
	binary.BigEndian.PutUint16(block[6:8], firstRecGroup)
	binary.BigEndian.PutUint32(block[8:12], epochNo)
	copy(block[blockio.HeaderSize:], payload)
	stampChecksum(block)
	return block
}

func stampChecksum(block []byte) {
	checksum := crc32.ChecksumIEEE(block[:blockio.BlockSize-blockio.TrailerSize])
	binary.BigEndian.PutUint32(block[blockio.BlockSize-blockio.TrailerSize:], checksum)
}

// RepeatDummy fills n bytes with single-byte DUMMY records, the filler
// pattern a "full" block's payload region needs when no real record
// occupies the remaining space: any other byte value risks decoding as an
// unrecognized or misaligned record.
func RepeatDummy(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(redorec.DummyRecord)
	}
	return out
}
