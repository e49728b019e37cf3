package checkpoint_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yamaru/redolog-scan/internal/checkpoint"
)

type CheckpointSuite struct {
	suite.Suite
}

func TestCheckpointSuite(t *testing.T) {
	suite.Run(t, new(CheckpointSuite))
}

func buildFile(startLSN, ckpt1, ckpt2 uint64) []byte {
	file := make([]byte, checkpoint.DataBlocksOffset)
	binary.BigEndian.PutUint64(file[checkpoint.StartLSNOffset:checkpoint.StartLSNOffset+8], startLSN)
	binary.BigEndian.PutUint64(file[checkpoint.Checkpoint1Offset+checkpoint.CheckpointLSNField:checkpoint.Checkpoint1Offset+checkpoint.CheckpointLSNField+8], ckpt1)
	binary.BigEndian.PutUint64(file[checkpoint.Checkpoint2Offset+checkpoint.CheckpointLSNField:checkpoint.Checkpoint2Offset+checkpoint.CheckpointLSNField+8], ckpt2)
	return file
}

func (s *CheckpointSuite) TestParseHeader() {
	file := buildFile(8192, 9000, 8000)
	h, err := checkpoint.ParseHeader(file)
	s.Require().NoError(err)
	s.Equal(uint64(8192), h.StartLSN)
}

func (s *CheckpointSuite) TestParseHeaderTooShort() {
	_, err := checkpoint.ParseHeader(make([]byte, 10))
	s.Require().Error(err)
}

func (s *CheckpointSuite) TestSelectCheckpointLSNPicksMax() {
	file := buildFile(0, 9000, 8000)
	lsn, err := checkpoint.SelectCheckpointLSN(file)
	s.Require().NoError(err)
	s.Equal(uint64(9000), lsn)

	file2 := buildFile(0, 1000, 5000)
	lsn2, err := checkpoint.SelectCheckpointLSN(file2)
	s.Require().NoError(err)
	s.Equal(uint64(5000), lsn2)
}

func (s *CheckpointSuite) TestOffsetWithinFirstBlock() {
	off := checkpoint.Offset(100, 0)
	s.Equal(uint64(checkpoint.DataBlocksOffset+100), off)
}

func (s *CheckpointSuite) TestOffsetAccountsForFramingAcrossBlocks() {
	// payloadPerBlock = 512 - 12 - 4 = 496
	off := checkpoint.Offset(496, 0)
	s.Equal(uint64(checkpoint.DataBlocksOffset+496+16), off)
}

func (s *CheckpointSuite) TestAlignDownBlock() {
	aligned := checkpoint.AlignDownBlock(checkpoint.DataBlocksOffset + 600)
	s.Equal(uint64(checkpoint.DataBlocksOffset+512), aligned)
}
