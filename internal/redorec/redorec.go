// Package redorec decodes the typed log record stream carried inside the
// parse buffer. It implements the closed tagged enumeration of record
// variants and the per-variant body decoders. Every decoder here is a pure
// function over a bounded slice: it either consumes exactly the number of
// bytes the writer produced and returns a Record, or reports that the
// slice was too short (never a panic, never a partial read past the
// slice's end).
//
// The original engine's body decoders call into the buffer pool,
// tablespace cache, and dictionary to apply each change to a page. None of
// that exists here: each decoder advances the cursor by the length the
// writer produced and returns the body as an opaque byte slice, tagged by
// type. The zip, undo and TEST bodies, whose exact field layout is
// unspecified, are a single length-prefixed blob — the same stubbing the
// dynamic-metadata sub-stream uses. The page-creation, page-reorganize,
// list, ibuf-bitmap and init-file-page records are decoded with an empty
// body: no bytes are consumed after space_id/page_no.
package redorec

import (
	"fmt"

	"github.com/yamaru/redolog-scan/internal/binreader"
)

// SingleRecFlag marks a record as forming a complete mini-transaction by
// itself (MTR_SINGLE_REC_FLAG in the source).
const SingleRecFlag = 0x80

// RecordType is the record's base tag with SingleRecFlag already masked
// off. The numbering mirrors the engine's mlog_id_t values the teacher
// already carried for the types it recognized (1/2/4/8-byte writes,
// INSERT, UPDATE_IN_PLACE, DELETE, the LIST_* and PAGE_* family, and the
// UNDO_* family); the remaining variants extend that numbering into the
// gaps the teacher's partial enumeration left open.
type RecordType uint8

const (
	OneByte   RecordType = 1
	TwoBytes  RecordType = 2
	FourBytes RecordType = 4
	EightBytes RecordType = 8

	RecInsert          RecordType = 9
	RecClustDeleteMark RecordType = 10
	RecSecDeleteMark   RecordType = 11
	RecUpdateInPlace   RecordType = 13
	RecDelete          RecordType = 14

	ListEndDelete      RecordType = 15
	ListStartDelete    RecordType = 16
	ListEndCopyCreated RecordType = 17

	PageReorganize RecordType = 18
	PageCreate     RecordType = 19

	UndoInsert    RecordType = 20
	UndoEraseEnd  RecordType = 21
	UndoInit      RecordType = 22
	UndoHdrCreate RecordType = 23
	UndoHdrReuse  RecordType = 24

	RecMinMark     RecordType = 25
	IbufBitmapInit RecordType = 26
	InitFilePage   RecordType = 27
	WriteString    RecordType = 28
	DummyRecord    RecordType = 29
	MultiRecEnd    RecordType = 30

	FileDelete RecordType = 31
	FileCreate RecordType = 32
	FileRename RecordType = 33
	FileExtend RecordType = 34

	PageCreateRTree RecordType = 35
	PageCreateSDI   RecordType = 36

	ZipWriteNodePtr       RecordType = 37
	ZipWriteBlobPtr       RecordType = 38
	ZipWriteHeader        RecordType = 39
	ZipPageCompress       RecordType = 40
	ZipPageCompressNoData RecordType = 41
	ZipPageReorganize     RecordType = 42

	InitFilePage2    RecordType = 43
	IndexLoad        RecordType = 44
	Test             RecordType = 45
	TableDynamicMeta RecordType = 46

	RecInsert8027          RecordType = 47
	RecUpdateInPlace8027   RecordType = 48
	RecDelete8027          RecordType = 49
	RecClustDeleteMark8027 RecordType = 50
)

var typeNames = map[RecordType]string{
	OneByte:    "MLOG_1BYTE",
	TwoBytes:   "MLOG_2BYTES",
	FourBytes:  "MLOG_4BYTES",
	EightBytes: "MLOG_8BYTES",

	RecInsert:          "MLOG_REC_INSERT",
	RecClustDeleteMark: "MLOG_REC_CLUST_DELETE_MARK",
	RecSecDeleteMark:   "MLOG_REC_SEC_DELETE_MARK",
	RecUpdateInPlace:   "MLOG_REC_UPDATE_IN_PLACE",
	RecDelete:          "MLOG_REC_DELETE",

	ListEndDelete:      "MLOG_LIST_END_DELETE",
	ListStartDelete:    "MLOG_LIST_START_DELETE",
	ListEndCopyCreated: "MLOG_LIST_END_COPY_CREATED",

	PageReorganize: "MLOG_PAGE_REORGANIZE",
	PageCreate:     "MLOG_PAGE_CREATE",

	UndoInsert:    "MLOG_UNDO_INSERT",
	UndoEraseEnd:  "MLOG_UNDO_ERASE_END",
	UndoInit:      "MLOG_UNDO_INIT",
	UndoHdrCreate: "MLOG_UNDO_HDR_CREATE",
	UndoHdrReuse:  "MLOG_UNDO_HDR_REUSE",

	RecMinMark:     "MLOG_REC_MIN_MARK",
	IbufBitmapInit: "MLOG_IBUF_BITMAP_INIT",
	InitFilePage:   "MLOG_INIT_FILE_PAGE",
	WriteString:    "MLOG_WRITE_STRING",
	MultiRecEnd:    "MLOG_MULTI_REC_END",
	DummyRecord:    "MLOG_DUMMY_RECORD",

	FileDelete: "MLOG_FILE_DELETE",
	FileCreate: "MLOG_FILE_CREATE",
	FileRename: "MLOG_FILE_RENAME",
	FileExtend: "MLOG_FILE_EXTEND",

	PageCreateRTree: "MLOG_PAGE_CREATE_RTREE",
	PageCreateSDI:   "MLOG_PAGE_CREATE_SDI",

	ZipWriteNodePtr:       "MLOG_ZIP_WRITE_NODE_PTR",
	ZipWriteBlobPtr:       "MLOG_ZIP_WRITE_BLOB_PTR",
	ZipWriteHeader:        "MLOG_ZIP_WRITE_HEADER",
	ZipPageCompress:       "MLOG_ZIP_PAGE_COMPRESS",
	ZipPageCompressNoData: "MLOG_ZIP_PAGE_COMPRESS_NO_DATA",
	ZipPageReorganize:     "MLOG_ZIP_PAGE_REORGANIZE",

	InitFilePage2:    "MLOG_INIT_FILE_PAGE2",
	IndexLoad:        "MLOG_INDEX_LOAD",
	Test:             "MLOG_TEST",
	TableDynamicMeta: "MLOG_TABLE_DYNAMIC_META",

	RecInsert8027:          "MLOG_REC_INSERT_8027",
	RecUpdateInPlace8027:   "MLOG_REC_UPDATE_IN_PLACE_8027",
	RecDelete8027:          "MLOG_REC_DELETE_8027",
	RecClustDeleteMark8027: "MLOG_REC_CLUST_DELETE_MARK_8027",
}

// String renders a known type by name and falls back to a numeric form for
// anything outside the closed enumeration, matching the teacher's
// LogType.String() fallback.
func (t RecordType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MLOG_%d", uint8(t))
}

// encryption metadata sub-tag constants for the MLOG_WRITE_STRING special
// case, grounded on fil_tablespace_redo_encryption / check_encryption: a
// 2-byte page offset compared against a well-known constant, and a 2-byte
// length compared against the encryption info size.
const (
	EncryptionOffset   = 38
	EncryptionInfoSize = 76
)

// HasSpacePage reports whether t carries space_id/page_no fields. Only the
// three bare markers (END, DUMMY, TABLE_DYNAMIC_META) omit them.
func (t RecordType) HasSpacePage() bool {
	switch t {
	case MultiRecEnd, DummyRecord, TableDynamicMeta:
		return false
	default:
		return true
	}
}

// Status reports the outcome of a decode attempt.
type Status int

const (
	StatusOK Status = iota
	StatusShortBuffer
	StatusCorruptLog
)

// Record is the immutable decoded entry, matching spec.md §3's tuple.
type Record struct {
	Type      RecordType
	SingleRec bool
	SpaceID   uint32
	PageNo    uint32
	Body      []byte
	StartLSN  uint64
	EndLSN    uint64

	// Sub distinguishes a special-cased sub-variant of Type, e.g.
	// "encryption" for an MLOG_WRITE_STRING body recognized as
	// encryption metadata. Empty for the common case.
	Sub string

	// TableID/Version are populated only for TableDynamicMeta.
	TableID uint64
	Version uint32
}

// IndexDesc is the shared index-descriptor prefix that every index-bearing
// record body begins with: a field count followed by one type code per
// field. LegacyWire selects the pre-8027 wire format, which the spec notes
// differs only in this descriptor, not in the trailing operation body.
type IndexDesc struct {
	LegacyWire bool
	Fields     []uint32
}

// decodeIndexDesc reads the shared index descriptor: a compressed field
// count followed by that many compressed per-field type codes. The legacy
// wire format uses the same shape; callers distinguish it only by which
// RecordType dispatched here (see DESIGN.md).
func decodeIndexDesc(buf []byte, pos int, legacy bool) (IndexDesc, int, bool) {
	count, next, ok := binreader.VarUint32(buf, pos)
	if !ok {
		return IndexDesc{}, pos, false
	}
	fields := make([]uint32, 0, count)
	cursor := next
	for i := uint32(0); i < count; i++ {
		var code uint32
		code, cursor, ok = binreader.VarUint32(buf, cursor)
		if !ok {
			return IndexDesc{}, pos, false
		}
		fields = append(fields, code)
	}
	return IndexDesc{LegacyWire: legacy, Fields: fields}, cursor, true
}

// lengthPrefixedBlob reads a compressed length followed by that many raw
// bytes. Several record bodies whose exact field layout only matters to
// the full engine (zip, undo, the trailing segment of index-bearing ops)
// are stubbed to this shape, consistent with spec.md's own resolution for
// MLOG_TABLE_DYNAMIC_META.
func lengthPrefixedBlob(buf []byte, pos int) ([]byte, int, bool) {
	n, next, ok := binreader.VarUint32(buf, pos)
	if !ok {
		return nil, pos, false
	}
	body, next2, ok := binreader.Bytes(buf, next, int(n))
	if !ok {
		return nil, pos, false
	}
	return body, next2, true
}

// Decode decodes exactly one record starting at pos. On success it returns
// the record, the cursor just past its body, and StatusOK. A short buffer
// returns StatusShortBuffer with the cursor unchanged (zero consumed per
// spec.md §4.4). An unrecognized type byte, or a single-record flag on an
// END/DUMMY marker, returns StatusCorruptLog.
func Decode(buf []byte, pos int) (Record, int, Status) {
	raw, cursor, ok := binreader.Uint8(buf, pos)
	if !ok {
		return Record{}, pos, StatusShortBuffer
	}

	single := raw&SingleRecFlag != 0
	typ := RecordType(raw &^ SingleRecFlag)

	if typ == MultiRecEnd || typ == DummyRecord {
		if single {
			return Record{}, pos, StatusCorruptLog
		}
		return Record{Type: typ, StartLSN: uint64(pos), EndLSN: uint64(cursor)}, cursor, StatusOK
	}

	if typ == TableDynamicMeta {
		return decodeTableDynamicMeta(buf, pos, cursor, single)
	}

	if _, known := typeNames[typ]; !known {
		return Record{}, pos, StatusCorruptLog
	}

	spaceID, c, ok := binreader.VarUint32(buf, cursor)
	if !ok {
		return Record{}, pos, StatusShortBuffer
	}
	pageNo, c, ok := binreader.VarUint32(buf, c)
	if !ok {
		return Record{}, pos, StatusShortBuffer
	}

	rec := Record{Type: typ, SingleRec: single, SpaceID: spaceID, PageNo: pageNo, StartLSN: uint64(pos)}

	body, end, ok := decodeBody(buf, c, typ, pageNo)
	if !ok {
		return Record{}, pos, StatusShortBuffer
	}
	rec.Body = body.bytes
	rec.Sub = body.sub
	rec.EndLSN = uint64(end)
	return rec, end, StatusOK
}

func decodeTableDynamicMeta(buf []byte, start, cursor int, single bool) (Record, int, Status) {
	tableID, c, ok := binreader.VarUint64(buf, cursor)
	if !ok {
		return Record{}, start, StatusShortBuffer
	}
	version, c, ok := binreader.VarUint32(buf, c)
	if !ok {
		return Record{}, start, StatusShortBuffer
	}
	blob, c, ok := lengthPrefixedBlob(buf, c)
	if !ok {
		return Record{}, start, StatusShortBuffer
	}
	return Record{
		Type:      TableDynamicMeta,
		SingleRec: single,
		TableID:   tableID,
		Version:   version,
		Body:      blob,
		StartLSN:  uint64(start),
		EndLSN:    uint64(c),
	}, c, StatusOK
}

type decodedBody struct {
	bytes []byte
	sub   string
}

// decodeBody dispatches to the per-category body decoder for typ. pos is
// positioned just past space_id/page_no.
func decodeBody(buf []byte, pos int, typ RecordType, pageNo uint32) (decodedBody, int, bool) {
	switch typ {
	case FileDelete, FileCreate:
		return decodeFileOp(buf, pos)
	case FileRename:
		return decodeFileRename(buf, pos)
	case FileExtend:
		return decodeFileExtend(buf, pos)

	case OneByte, TwoBytes, FourBytes, EightBytes:
		return decodeNByteWrite(buf, pos)

	case WriteString:
		return decodeWriteString(buf, pos, pageNo)

	case RecInsert, RecUpdateInPlace, RecDelete, RecClustDeleteMark, RecSecDeleteMark, RecMinMark:
		return decodeIndexBearing(buf, pos, false)
	case RecInsert8027, RecUpdateInPlace8027, RecDelete8027, RecClustDeleteMark8027:
		return decodeIndexBearing(buf, pos, true)

	case PageReorganize, PageCreate, PageCreateRTree, PageCreateSDI,
		ListEndDelete, ListStartDelete, ListEndCopyCreated,
		IbufBitmapInit, InitFilePage, InitFilePage2:
		return decodedBody{}, pos, true

	case ZipWriteNodePtr, ZipWriteBlobPtr, ZipWriteHeader,
		ZipPageCompress, ZipPageCompressNoData, ZipPageReorganize:
		blob, next, ok := lengthPrefixedBlob(buf, pos)
		return decodedBody{bytes: blob}, next, ok

	case UndoInsert, UndoEraseEnd, UndoInit, UndoHdrCreate, UndoHdrReuse:
		blob, next, ok := lengthPrefixedBlob(buf, pos)
		return decodedBody{bytes: blob}, next, ok

	case IndexLoad:
		raw, next, ok := binreader.Bytes(buf, pos, 8)
		return decodedBody{bytes: raw}, next, ok

	case Test:
		blob, next, ok := lengthPrefixedBlob(buf, pos)
		return decodedBody{bytes: blob}, next, ok

	default:
		// Unreachable: typ was already checked against typeNames by the
		// caller, and every named variant is handled above.
		return decodedBody{}, pos, false
	}
}

func decodeFileOp(buf []byte, pos int) (decodedBody, int, bool) {
	nameLen, c, ok := binreader.Uint16(buf, pos)
	if !ok {
		return decodedBody{}, pos, false
	}
	name, c, ok := binreader.Bytes(buf, c, int(nameLen))
	if !ok {
		return decodedBody{}, pos, false
	}
	ext, c, ok := binreader.Uint32(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	body := make([]byte, 0, len(name)+4)
	body = append(body, name...)
	body = appendUint32(body, ext)
	return decodedBody{bytes: body}, c, true
}

func decodeFileRename(buf []byte, pos int) (decodedBody, int, bool) {
	first, c, ok := decodeFileOp(buf, pos)
	if !ok {
		return decodedBody{}, pos, false
	}
	newLen, c2, ok := binreader.Uint16(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	newName, c2, ok := binreader.Bytes(buf, c2, int(newLen))
	if !ok {
		return decodedBody{}, pos, false
	}
	body := append(first.bytes, newName...)
	return decodedBody{bytes: body}, c2, true
}

func decodeFileExtend(buf []byte, pos int) (decodedBody, int, bool) {
	nameLen, c, ok := binreader.Uint16(buf, pos)
	if !ok {
		return decodedBody{}, pos, false
	}
	name, c, ok := binreader.Bytes(buf, c, int(nameLen))
	if !ok {
		return decodedBody{}, pos, false
	}
	newSize, c, ok := binreader.Uint32(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	body := make([]byte, 0, len(name)+4)
	body = append(body, name...)
	body = appendUint32(body, newSize)
	return decodedBody{bytes: body}, c, true
}

func decodeNByteWrite(buf []byte, pos int) (decodedBody, int, bool) {
	offset, c, ok := binreader.Uint16(buf, pos)
	if !ok {
		return decodedBody{}, pos, false
	}
	value, c, ok := binreader.VarUint32(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	body := make([]byte, 0, 6)
	body = appendUint16(body, offset)
	body = appendUint32(body, value)
	return decodedBody{bytes: body}, c, true
}

func decodeWriteString(buf []byte, pos int, pageNo uint32) (decodedBody, int, bool) {
	offset, c, ok := binreader.Uint16(buf, pos)
	if !ok {
		return decodedBody{}, pos, false
	}
	length, c, ok := binreader.Uint16(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	raw, c, ok := binreader.Bytes(buf, c, int(length))
	if !ok {
		return decodedBody{}, pos, false
	}

	sub := ""
	if pageNo == 0 && offset == EncryptionOffset && length == EncryptionInfoSize {
		sub = "encryption"
	}

	body := make([]byte, len(raw))
	copy(body, raw)
	return decodedBody{bytes: body, sub: sub}, c, true
}

func decodeIndexBearing(buf []byte, pos int, legacy bool) (decodedBody, int, bool) {
	_, c, ok := decodeIndexDesc(buf, pos, legacy)
	if !ok {
		return decodedBody{}, pos, false
	}
	recOffset, c, ok := binreader.Uint16(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	blob, c, ok := lengthPrefixedBlob(buf, c)
	if !ok {
		return decodedBody{}, pos, false
	}
	body := make([]byte, 0, 2+len(blob))
	body = appendUint16(body, recOffset)
	body = append(body, blob...)
	return decodedBody{bytes: body}, c, true
}

func appendUint16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

func appendUint32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
