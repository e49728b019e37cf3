package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yamaru/redolog-scan/internal/redorec"
	"github.com/yamaru/redolog-scan/internal/report"
	"github.com/yamaru/redolog-scan/internal/sink"
)

type ReportSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportSuite))
}

func (s *ReportSuite) TestCollectorTalliesByType() {
	c := report.NewCollector(nil)
	c.EmitMTRBoundary(sink.MTRSingle, 0, 10)
	c.EmitRecord(redorec.Record{Type: redorec.DummyRecord, EndLSN: 10})
	c.EmitMTRBoundary(sink.MTRMulti, 10, 30)
	c.EmitRecord(redorec.Record{Type: redorec.RecInsert, EndLSN: 20})
	c.EmitRecord(redorec.Record{Type: redorec.MultiRecEnd, EndLSN: 30})

	sum := c.Summary()
	s.Equal(3, sum.TotalRecords)
	s.Equal(1, sum.SingleMTRs)
	s.Equal(1, sum.MultiMTRs)
	s.Equal(1, sum.ByType[redorec.DummyRecord])
	s.Equal(1, sum.ByType[redorec.RecInsert])
	s.Equal(uint64(30), sum.RecoveredLSN)
}

func (s *ReportSuite) TestCollectorForwardsToInner() {
	rs := &recordingSink{}
	c := report.NewCollector(rs)
	c.EmitRecord(redorec.Record{Type: redorec.DummyRecord})
	c.EmitMTRBoundary(sink.MTRSingle, 0, 1)

	s.Len(rs.records, 1)
	s.Len(rs.boundaries, 1)
}

func (s *ReportSuite) TestWriteTextIncludesCounts() {
	var buf bytes.Buffer
	report.WriteText(&buf, report.Summary{
		TotalRecords: 2,
		SingleMTRs:   2,
		ByType:       map[redorec.RecordType]int{redorec.DummyRecord: 2},
	})
	out := buf.String()
	s.Contains(out, "records: 2")
	s.Contains(out, "MLOG_DUMMY_RECORD")
}

func (s *ReportSuite) TestWriteTextIncludesCorruption() {
	var buf bytes.Buffer
	report.WriteText(&buf, report.Summary{FoundCorrupt: true, RecoveredLSN: 512, ByType: map[redorec.RecordType]int{}})
	s.Contains(buf.String(), "corrupt log detected at recovered_lsn=512")
}

type recordingSink struct {
	boundaries []sink.MTRKind
	records    []redorec.Record
}

func (r *recordingSink) EmitMTRBoundary(kind sink.MTRKind, startLSN, endLSN uint64) {
	r.boundaries = append(r.boundaries, kind)
}

func (r *recordingSink) EmitRecord(rec redorec.Record) {
	r.records = append(r.records, rec)
}
