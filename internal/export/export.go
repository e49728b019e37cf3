// Package export writes decoded records as JSON or CSV, adapted from the
// teacher's exportJSON/exportCSV pair in its TUI entrypoint to the new
// typed redorec.Record model.
package export

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/yamaru/redolog-scan/internal/redorec"
)

// jsonRecord mirrors redorec.Record's fields but renders Type by name and
// Body as hex, since the decoded body has no stable field layout to
// marshal structurally.
type jsonRecord struct {
	Type      string `json:"type"`
	TypeID    uint8  `json:"type_id"`
	SingleRec bool   `json:"single_rec"`
	SpaceID   uint32 `json:"space_id,omitempty"`
	PageNo    uint32 `json:"page_no,omitempty"`
	TableID   uint64 `json:"table_id,omitempty"`
	Version   uint32 `json:"version,omitempty"`
	Sub       string `json:"sub,omitempty"`
	StartLSN  uint64 `json:"start_lsn"`
	EndLSN    uint64 `json:"end_lsn"`
	BodyHex   string `json:"body_hex,omitempty"`
	BodyLen   int    `json:"body_len"`
}

func toJSONRecord(rec redorec.Record) jsonRecord {
	return jsonRecord{
		Type:      rec.Type.String(),
		TypeID:    uint8(rec.Type),
		SingleRec: rec.SingleRec,
		SpaceID:   rec.SpaceID,
		PageNo:    rec.PageNo,
		TableID:   rec.TableID,
		Version:   rec.Version,
		Sub:       rec.Sub,
		StartLSN:  rec.StartLSN,
		EndLSN:    rec.EndLSN,
		BodyHex:   hex.EncodeToString(rec.Body),
		BodyLen:   len(rec.Body),
	}
}

// JSON writes records as an indented JSON document with a small stats
// envelope, mirroring the teacher's exportJSON shape.
func JSON(w io.Writer, records []redorec.Record) error {
	out := make([]jsonRecord, len(records))
	for i, rec := range records {
		out[i] = toJSONRecord(rec)
	}
	doc := struct {
		Records []jsonRecord   `json:"records"`
		Stats   map[string]int `json:"stats"`
	}{
		Records: out,
		Stats:   map[string]int{"total_records": len(records)},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// CSV writes one row per record, adapted from the teacher's exportCSV
// column layout to the new Record fields.
func CSV(w io.Writer, records []redorec.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"record_number", "start_lsn", "end_lsn", "type", "type_id",
		"space_id", "page_no", "table_id", "version", "sub", "body_len", "body_preview",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, rec := range records {
		preview := hex.EncodeToString(rec.Body)
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", rec.StartLSN),
			fmt.Sprintf("%d", rec.EndLSN),
			rec.Type.String(),
			fmt.Sprintf("%d", uint8(rec.Type)),
			fmt.Sprintf("%d", rec.SpaceID),
			fmt.Sprintf("%d", rec.PageNo),
			fmt.Sprintf("%d", rec.TableID),
			fmt.Sprintf("%d", rec.Version),
			rec.Sub,
			fmt.Sprintf("%d", len(rec.Body)),
			preview,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
