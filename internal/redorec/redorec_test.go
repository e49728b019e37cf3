package redorec_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yamaru/redolog-scan/internal/redorec"
)

type DecodeSuite struct {
	suite.Suite
}

func TestDecodeSuite(t *testing.T) {
	suite.Run(t, new(DecodeSuite))
}

func (s *DecodeSuite) TestDummyRecord() {
	buf := []byte{byte(redorec.DummyRecord), 0xFF, 0xFF}
	rec, next, status := redorec.Decode(buf, 0)
	s.Equal(redorec.StatusOK, status)
	s.Equal(redorec.DummyRecord, rec.Type)
	s.Equal(1, next)
}

func (s *DecodeSuite) TestMultiRecEnd() {
	buf := []byte{byte(redorec.MultiRecEnd)}
	rec, next, status := redorec.Decode(buf, 0)
	s.Equal(redorec.StatusOK, status)
	s.Equal(redorec.MultiRecEnd, rec.Type)
	s.Equal(1, next)
}

func (s *DecodeSuite) TestSingleRecFlagOnEndIsCorrupt() {
	buf := []byte{byte(redorec.MultiRecEnd) | redorec.SingleRecFlag}
	_, _, status := redorec.Decode(buf, 0)
	s.Equal(redorec.StatusCorruptLog, status)
}

func (s *DecodeSuite) TestSingleRecFlagOnDummyIsCorrupt() {
	buf := []byte{byte(redorec.DummyRecord) | redorec.SingleRecFlag}
	_, _, status := redorec.Decode(buf, 0)
	s.Equal(redorec.StatusCorruptLog, status)
}

func (s *DecodeSuite) TestUnknownTypeByteIsCorrupt() {
	buf := []byte{0x7F} // not in the closed enumeration
	_, _, status := redorec.Decode(buf, 0)
	s.Equal(redorec.StatusCorruptLog, status)
}

func (s *DecodeSuite) TestShortBufferOnBareTypeByte() {
	buf := []byte{}
	_, next, status := redorec.Decode(buf, 0)
	s.Equal(redorec.StatusShortBuffer, status)
	s.Equal(0, next)
}

// TestFourBytesSingleRecMTR mirrors spec.md §8 scenario 3: a single-record
// MTR of type 4BYTES with space_id=7, page_no=42, offset=0x0038,
// value=0x00000100 (space_id and page_no fit in 1-byte varints; the value
// needs the two-byte compressed form).
func (s *DecodeSuite) TestFourBytesSingleRecMTR() {
	buf := []byte{
		byte(redorec.FourBytes) | redorec.SingleRecFlag,
		7,          // space_id varint
		42,         // page_no varint
		0x00, 0x38, // offset
		0x00, 0x00, 0x01, 0x00, // value as fixed-width bytes; not a valid varint encoding, replaced below
	}
	// The value 0x100 = 256 doesn't fit in one varint byte (>=0x80), so encode
	// it as a two-byte compressed varint: 0x81 0x00 means high bit set,
	// 7 low bits of first byte (0x01) shifted up, second byte 0x00 -> 256.
	buf = []byte{
		byte(redorec.FourBytes) | redorec.SingleRecFlag,
		7,
		42,
		0x00, 0x38,
		0x81, 0x00,
	}
	rec, next, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.True(rec.SingleRec)
	s.Equal(redorec.FourBytes, rec.Type)
	s.Equal(uint32(7), rec.SpaceID)
	s.Equal(uint32(42), rec.PageNo)
	s.Equal(len(buf), next)
}

func (s *DecodeSuite) TestWriteStringEncryptionSubTag() {
	payload := make([]byte, redorec.EncryptionInfoSize)
	buf := []byte{byte(redorec.WriteString)}
	buf = append(buf, 0)    // space_id varint = 0
	buf = append(buf, 0)    // page_no varint = 0
	buf = append(buf, 0x00, redorec.EncryptionOffset)
	buf = append(buf, 0x00, redorec.EncryptionInfoSize)
	buf = append(buf, payload...)

	rec, next, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.Equal("encryption", rec.Sub)
	s.Equal(len(buf), next)
}

func (s *DecodeSuite) TestWriteStringOrdinaryHasNoSubTag() {
	raw := []byte("hello")
	buf := []byte{byte(redorec.WriteString), 1, 1}
	buf = append(buf, 0x00, 0x10)
	buf = append(buf, 0x00, byte(len(raw)))
	buf = append(buf, raw...)

	rec, _, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.Empty(rec.Sub)
	s.Equal(raw, rec.Body)
}

func (s *DecodeSuite) TestIndexLoadAlwaysEightBytes() {
	buf := []byte{byte(redorec.IndexLoad), 3, 9}
	buf = append(buf, 1, 2, 3, 4, 5, 6, 7, 8)
	rec, next, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.Equal(8, len(rec.Body))
	s.Equal(len(buf), next)
}

func (s *DecodeSuite) TestPageCreateHasEmptyBody() {
	buf := []byte{byte(redorec.PageCreate), 2, 5}
	rec, next, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.Empty(rec.Body)
	s.Equal(3, next)
}

func (s *DecodeSuite) TestTableDynamicMetaStub() {
	buf := []byte{byte(redorec.TableDynamicMeta)}
	buf = append(buf, 5)    // table_id compressed high (VarUint32 part)
	buf = append(buf, 0, 0, 0, 9) // low 32 bits
	buf = append(buf, 2)    // version
	buf = append(buf, 3)    // blob length
	buf = append(buf, 0xAA, 0xBB, 0xCC)

	rec, next, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.Equal(redorec.TableDynamicMeta, rec.Type)
	s.Equal(uint32(2), rec.Version)
	s.Equal([]byte{0xAA, 0xBB, 0xCC}, rec.Body)
	s.Equal(len(buf), next)
}

func (s *DecodeSuite) TestTableDynamicMetaHasNoSpacePage() {
	s.False(redorec.TableDynamicMeta.HasSpacePage())
	s.False(redorec.MultiRecEnd.HasSpacePage())
	s.False(redorec.DummyRecord.HasSpacePage())
	s.True(redorec.RecInsert.HasSpacePage())
}

func (s *DecodeSuite) TestIndexBearingLegacyAndModernShareShape() {
	build := func(typ redorec.RecordType) []byte {
		buf := []byte{byte(typ), 1, 1}
		buf = append(buf, 2)    // field count
		buf = append(buf, 10, 20) // two field type codes
		buf = append(buf, 0x00, 0x40) // rec offset
		buf = append(buf, 3)    // blob length
		buf = append(buf, 0x01, 0x02, 0x03)
		return buf
	}

	modern := build(redorec.RecInsert)
	legacy := build(redorec.RecInsert8027)

	recM, nextM, statusM := redorec.Decode(modern, 0)
	recL, nextL, statusL := redorec.Decode(legacy, 0)

	s.Require().Equal(redorec.StatusOK, statusM)
	s.Require().Equal(redorec.StatusOK, statusL)
	s.Equal(len(modern), nextM)
	s.Equal(len(legacy), nextL)
	s.Equal(recM.Body, recL.Body)
}

func (s *DecodeSuite) TestFileRenameConsumesTwoNames() {
	buf := []byte{byte(redorec.FileRename), 1, 1}
	buf = append(buf, 0, 3) // old name len
	buf = append(buf, 'a', 'b', 'c')
	buf = append(buf, 0, 0, 0, 0) // ext metadata
	buf = append(buf, 0, 3)       // new name len
	buf = append(buf, 'x', 'y', 'z')

	rec, next, status := redorec.Decode(buf, 0)
	s.Require().Equal(redorec.StatusOK, status)
	s.Equal(len(buf), next)
	s.Equal([]byte("abc\x00\x00\x00\x00xyz"), rec.Body)
}

func (s *DecodeSuite) TestTypeStringFallsBackToNumericForUnknown() {
	s.Equal("MLOG_1BYTE", redorec.OneByte.String())
	unknown := redorec.RecordType(0x7F)
	s.Equal("MLOG_127", unknown.String())
}
