// Package report accumulates per-type record counts and MTR statistics
// into a single summary, adapted from the teacher's analyzer
// AnalysisResult/CorruptionReport shape down to the fields a single
// scan pass can actually produce without page-level reconstruction.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/yamaru/redolog-scan/internal/redorec"
	"github.com/yamaru/redolog-scan/internal/sink"
)

// Summary tallies a completed scan for --verbose output.
type Summary struct {
	TotalRecords  int
	SingleMTRs    int
	MultiMTRs     int
	ByType        map[redorec.RecordType]int
	FoundCorrupt  bool
	RecoveredLSN  uint64
}

// Collector implements sink.EventSink, wrapping an inner sink so callers
// can tally a scan's events while still forwarding them for display.
type Collector struct {
	inner   sink.EventSink
	summary Summary
}

// NewCollector creates a Collector. inner may be nil to tally silently.
func NewCollector(inner sink.EventSink) *Collector {
	return &Collector{inner: inner, summary: Summary{ByType: make(map[redorec.RecordType]int)}}
}

func (c *Collector) EmitMTRBoundary(kind sink.MTRKind, startLSN, endLSN uint64) {
	if kind == sink.MTRMulti {
		c.summary.MultiMTRs++
	} else {
		c.summary.SingleMTRs++
	}
	if c.inner != nil {
		c.inner.EmitMTRBoundary(kind, startLSN, endLSN)
	}
}

func (c *Collector) EmitRecord(rec redorec.Record) {
	c.summary.TotalRecords++
	c.summary.ByType[rec.Type]++
	if rec.EndLSN > c.summary.RecoveredLSN {
		c.summary.RecoveredLSN = rec.EndLSN
	}
	if c.inner != nil {
		c.inner.EmitRecord(rec)
	}
}

// Summary returns the tally accumulated so far.
func (c *Collector) Summary() Summary { return c.summary }

// WriteText renders s as human-readable summary lines, sorted by numeric
// record type value for stable output.
func WriteText(w io.Writer, s Summary) {
	fmt.Fprintf(w, "records: %d (mtrs: %d single, %d multi)\n", s.TotalRecords, s.SingleMTRs, s.MultiMTRs)
	types := make([]redorec.RecordType, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(w, "  %-30s %d\n", t, s.ByType[t])
	}
	if s.FoundCorrupt {
		fmt.Fprintf(w, "corrupt log detected at recovered_lsn=%d\n", s.RecoveredLSN)
	}
}
