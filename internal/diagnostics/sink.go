// Package diagnostics implements the Diagnostics Sink (spec.md §4.6):
// write_line/write_file, each side-effecting only and charged virtual
// time via skip_time, never failing the simulation.
package diagnostics

import (
	"bytes"
	"encoding/csv"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
)

// TimeSkipper is the subset of vclock.Clock the sink needs: charging
// virtual time for "free" host work. Kept as an interface so this package
// doesn't import vclock; callers pass the guest's remaining fuel through.
type TimeSkipper interface {
	SkipTime(remainingFuel uint64, durationUS uint64) error
}

// Sink accumulates an in-memory log buffer and any written files; it
// mirrors to stdout when MirrorStdout is set.
type Sink struct {
	MirrorStdout bool

	lines []string
	files map[string][]byte
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{files: make(map[string][]byte)}
}

// WriteLineCostUS is the per-byte virtual time cost of write_line.
const WriteLineCostUS = 100

// WriteFileCostUS is the per-byte virtual time cost of write_file.
const WriteFileCostUS = 10

// WriteLine appends text to the log buffer (and optionally stdout),
// returning the virtual-time cost to charge via skip_time: 100us * len(text).
func (s *Sink) WriteLine(text string) uint64 {
	s.lines = append(s.lines, text)
	if s.MirrorStdout {
		fmt.Fprintln(os.Stdout, text)
	}
	return WriteLineCostUS * uint64(len(text))
}

// Lines returns the accumulated log lines, for persisting to log.txt.
func (s *Sink) Lines() []string { return s.lines }

// ColumnKind tags one field of a fixed-width CSV schema row.
type ColumnKind uint8

const (
	Int8 ColumnKind = iota
	Int16
	Int32
	Uint8
	Uint16
	Uint32
	Named // enum-valued column: decode as Uint8, look up in a name map
	Pad8
	Pad16
)

// Column is one field of a Schema: its kind, and (for Named columns) the
// value->name lookup table.
type Column struct {
	Kind  ColumnKind
	Names map[uint8]string // only used when Kind == Named
}

// width returns the column's byte width in the packed record.
func (c Column) width() int {
	switch c.Kind {
	case Int8, Uint8, Named, Pad8:
		return 1
	case Int16, Uint16, Pad16:
		return 2
	case Int32, Uint32:
		return 4
	default:
		return 0
	}
}

// Schema describes a fixed-width record layout for decoding a raw byte
// buffer into CSV rows.
type Schema struct {
	Columns []Column
}

func (sc Schema) recordWidth() int {
	w := 0
	for _, c := range sc.Columns {
		w += c.width()
	}
	return w
}

// WriteFile records name/bytes (and decodes+emits a CSV if schema is
// non-nil), returning the virtual-time cost to charge via skip_time:
// 10us * len(bytes). Decode errors are non-fatal: the raw bytes are still
// stored, no CSV bytes are returned, and the error is the caller's to log,
// per spec.md §7 ("I/O error... never fails the run").
func (s *Sink) WriteFile(name string, data []byte, schema *Schema) (cost uint64, csvBytes []byte, err error) {
	s.files[name] = data
	cost = WriteFileCostUS * uint64(len(data))

	if schema == nil {
		return cost, nil, nil
	}

	csvBytes, err = decodeCSV(*schema, data)
	return cost, csvBytes, err
}

// File returns a previously written file's raw bytes.
func (s *Sink) File(name string) ([]byte, bool) {
	b, ok := s.files[name]
	return b, ok
}

// decodeCSV decodes data as repeated fixed-width records per schema,
// emitting one CSV row per record. A truncated final partial record is
// silently dropped (nothing in the spec defines its handling, and
// discarding rather than guessing keeps the decode total and side-effect
// free).
func decodeCSV(schema Schema, data []byte) ([]byte, error) {
	width := schema.recordWidth()
	if width == 0 {
		return nil, fmt.Errorf("diagnostics: schema has zero-width record")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	n := len(data) / width
	for i := 0; i < n; i++ {
		rec := data[i*width : (i+1)*width]
		row, err := decodeRow(schema, rec)
		if err != nil {
			return nil, err
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeRow(schema Schema, rec []byte) ([]string, error) {
	row := make([]string, 0, len(schema.Columns))
	off := 0
	for _, col := range schema.Columns {
		w := col.width()
		if off+w > len(rec) {
			return nil, fmt.Errorf("diagnostics: record too short for schema")
		}
		field := rec[off : off+w]
		off += w

		switch col.Kind {
		case Pad8, Pad16:
			continue // padding columns contribute no CSV field
		case Int8:
			row = append(row, strconv.Itoa(int(int8(field[0]))))
		case Uint8:
			row = append(row, strconv.Itoa(int(field[0])))
		case Named:
			name, ok := col.Names[field[0]]
			if !ok {
				name = strconv.Itoa(int(field[0]))
			}
			row = append(row, name)
		case Int16:
			row = append(row, strconv.Itoa(int(int16(binary.LittleEndian.Uint16(field)))))
		case Uint16:
			row = append(row, strconv.Itoa(int(binary.LittleEndian.Uint16(field))))
		case Int32:
			row = append(row, strconv.Itoa(int(int32(binary.LittleEndian.Uint32(field)))))
		case Uint32:
			row = append(row, strconv.Itoa(int(binary.LittleEndian.Uint32(field))))
		}
	}
	return row, nil
}
