package sink_test

import (
	"bytes"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/yamaru/redolog-scan/internal/redorec"
	"github.com/yamaru/redolog-scan/internal/sink"
	"github.com/yamaru/redolog-scan/internal/sink/mocks"
)

type TextSinkSuite struct {
	suite.Suite
	buf  *bytes.Buffer
	sink *sink.TextSink
}

func TestTextSinkSuite(t *testing.T) {
	suite.Run(t, new(TextSinkSuite))
}

func (s *TextSinkSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.sink = sink.NewTextSink(s.buf)
}

func (s *TextSinkSuite) TestEmitMTRBoundarySingle() {
	s.sink.EmitMTRBoundary(sink.MTRSingle, 100, 108)
	s.Contains(s.buf.String(), "single")
	s.Contains(s.buf.String(), "[100,108)")
}

func (s *TextSinkSuite) TestEmitMTRBoundaryMulti() {
	s.sink.EmitMTRBoundary(sink.MTRMulti, 100, 200)
	s.Contains(s.buf.String(), "multi")
}

func (s *TextSinkSuite) TestEmitRecordIncludesSpaceAndPage() {
	s.sink.EmitRecord(redorec.Record{Type: redorec.RecInsert, SpaceID: 7, PageNo: 42, Body: []byte{1, 2}})
	out := s.buf.String()
	s.Contains(out, "MLOG_REC_INSERT")
	s.Contains(out, "space=7")
	s.Contains(out, "page=42")
	s.Contains(out, "len=2")
}

func (s *TextSinkSuite) TestEmitRecordDynamicMetaOmitsSpacePage() {
	s.sink.EmitRecord(redorec.Record{Type: redorec.TableDynamicMeta, TableID: 5, Version: 2})
	out := s.buf.String()
	s.Contains(out, "table_id=5")
	s.Contains(out, "version=2")
	s.NotContains(out, "space=")
}

func (s *TextSinkSuite) TestEmitRecordEncryptionSubTag() {
	s.sink.EmitRecord(redorec.Record{Type: redorec.WriteString, Sub: "encryption"})
	s.Contains(s.buf.String(), "sub=encryption")
}

func TestEventSinkMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockEventSink(ctrl)
	m.EXPECT().EmitMTRBoundary(sink.MTRSingle, uint64(10), uint64(20))
	m.EXPECT().EmitRecord(gomock.Any())

	var es sink.EventSink = m
	es.EmitMTRBoundary(sink.MTRSingle, 10, 20)
	es.EmitRecord(redorec.Record{Type: redorec.DummyRecord})
}
