package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mathysgrapotte/bio2parquet/schema"
)

// FormatError reports a malformed record with the 1-based line number of the
// offending input line.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid FASTA at line %d: %s", e.Line, e.Msg)
}

const maxLineSize = 64 * 1024 * 1024

// Reader yields records from a FASTA stream in file order. It is lazy and
// finite; restarting requires reopening the underlying stream.
//
// A *FormatError from Next refers to a single malformed record. The Reader
// stays usable afterwards and resumes at the next header line, so callers
// can either abort or skip-and-report. Any other error is sticky.
type Reader struct {
	sc     *bufio.Scanner
	closer io.Closer

	line       int
	header     string
	headerLine int
	haveHeader bool
	err        error
}

// Open opens a FASTA file, transparently decompressing gzip input.
func Open(path string) (*Reader, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(rc)
	r.closer = rc
	return r, nil
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (schema.Record, error) {
	if r.err != nil {
		return schema.Record{}, r.err
	}

	if !r.haveHeader {
		if err := r.findHeader(); err != nil {
			return schema.Record{}, err
		}
		if !r.haveHeader {
			return schema.Record{}, io.EOF
		}
	}

	var (
		seq       []byte
		lineWidth int
	)
	for r.scan() {
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			next, nextLine := line[1:], r.line
			if len(seq) == 0 {
				badLine := r.line
				r.header, r.headerLine = next, nextLine
				return schema.Record{}, &FormatError{Line: badLine, Msg: "header without sequence data"}
			}
			rec := r.makeRecord(seq, lineWidth)
			r.header, r.headerLine = next, nextLine
			return rec, nil
		}
		if lineWidth == 0 {
			lineWidth = len(line)
		}
		seq = append(seq, line...)
	}
	if err := r.sc.Err(); err != nil {
		r.err = errors.Wrap(err, "failed reading input stream")
		return schema.Record{}, r.err
	}

	r.haveHeader = false
	if len(seq) == 0 {
		return schema.Record{}, &FormatError{Line: r.headerLine, Msg: "missing sequence for last header"}
	}
	return r.makeRecord(seq, lineWidth), nil
}

// findHeader advances to the next header line. Sequence data outside any
// record is reported once per stretch, after skipping past it.
func (r *Reader) findHeader() error {
	badLine := 0
	for r.scan() {
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			r.header, r.headerLine = line[1:], r.line
			r.haveHeader = true
			break
		}
		if badLine == 0 {
			badLine = r.line
		}
	}
	if err := r.sc.Err(); err != nil {
		r.err = errors.Wrap(err, "failed reading input stream")
		return r.err
	}
	if badLine != 0 {
		return &FormatError{Line: badLine, Msg: "sequence data found before a header line"}
	}
	return nil
}

func (r *Reader) scan() bool {
	if !r.sc.Scan() {
		return false
	}
	r.line++
	return true
}

func (r *Reader) makeRecord(seq []byte, lineWidth int) schema.Record {
	id, desc := splitHeader(r.header)
	return schema.Record{
		Identifier:  id,
		Description: desc,
		Sequence:    seq,
		LineWidth:   lineWidth,
	}
}

func splitHeader(hdr string) (string, string) {
	hdr = strings.TrimSpace(hdr)
	if i := strings.IndexAny(hdr, " \t"); i >= 0 {
		return hdr[:i], strings.TrimSpace(hdr[i+1:])
	}
	return hdr, ""
}
