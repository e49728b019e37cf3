// Package sink defines the narrow interface the scan driver and
// mini-transaction assembler use to report recognized records and MTR
// boundaries, plus a reference text implementation, mirroring the
// teacher's narrow-interface-plus-mockgen pattern
// (internal/parser/interfaces.go, internal/analyzer/interfaces.go).
package sink

import (
	"fmt"
	"io"

	"github.com/yamaru/redolog-scan/internal/redorec"
)

// MTRKind distinguishes the two shapes of mini-transaction for the
// delimiter line spec.md §6 requires ("per-MTR delimiter line noting
// whether it was single or multi").
type MTRKind int

const (
	MTRSingle MTRKind = iota
	MTRMulti
)

// EventSink is the reference sink interface. EmitRecord is called once per
// decoded record, in order, only after the enclosing MTR has committed —
// never for rolled-back components. EmitMTRBoundary is called once per
// committed MTR, before its records, so a reader can tell where one MTR
// ends and the next begins without re-deriving it from record order.
//
//go:generate mockgen -source=sink.go -destination=mocks/sink_mock.go -package=mocks
type EventSink interface {
	EmitMTRBoundary(kind MTRKind, startLSN, endLSN uint64)
	EmitRecord(rec redorec.Record)
}

// TextSink formats events as human-readable lines, matching spec.md §6's
// "type name, space id, page number, and type-specific fields" shape.
type TextSink struct {
	w io.Writer
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (t *TextSink) EmitMTRBoundary(kind MTRKind, startLSN, endLSN uint64) {
	label := "single"
	if kind == MTRMulti {
		label = "multi"
	}
	fmt.Fprintf(t.w, "-- mtr %s [%d,%d)\n", label, startLSN, endLSN)
}

func (t *TextSink) EmitRecord(rec redorec.Record) {
	switch rec.Type {
	case redorec.TableDynamicMeta:
		fmt.Fprintf(t.w, "%s table_id=%d version=%d len=%d\n",
			rec.Type, rec.TableID, rec.Version, len(rec.Body))
	case redorec.MultiRecEnd, redorec.DummyRecord:
		fmt.Fprintf(t.w, "%s\n", rec.Type)
	default:
		sub := ""
		if rec.Sub != "" {
			sub = " sub=" + rec.Sub
		}
		fmt.Fprintf(t.w, "%s space=%d page=%d len=%d%s\n",
			rec.Type, rec.SpaceID, rec.PageNo, len(rec.Body), sub)
	}
}
