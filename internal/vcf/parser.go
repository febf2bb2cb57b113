// Package vcf provides VCF record parsing functionality.
package vcf

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// minColumns is the number of mandatory VCF columns (CHROM through INFO).
const minColumns = 8

// Reader reads raw lines from a VCF file.
// Supports plain VCF, gzipped VCF (.vcf.gz) and stdin ("-").
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	path       string
	lineNumber int
}

// Open creates a Reader for the file at path. Gzip compression is detected
// from the magic bytes rather than the file extension.
func Open(path string) (*Reader, error) {
	if path == "-" {
		r, err := NewReader(os.Stdin)
		if err != nil {
			return nil, err
		}
		r.path = "<stdin>"
		return r, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	r.path = path
	return r, nil
}

// NewReader creates a Reader from an io.Reader, transparently
// decompressing gzip input.
func NewReader(src io.Reader) (*Reader, error) {
	r := &Reader{reader: bufio.NewReader(src)}

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := r.reader.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(r.reader)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	}

	return r, nil
}

// ReadLine returns the next line without its trailing newline.
// Returns "", io.EOF when there are no more lines. A final line that is not
// newline-terminated is still returned.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			r.lineNumber++
			return line, nil
		}
		if err == io.EOF {
			return "", io.EOF
		}
		return "", fmt.Errorf("read %s: %w", r.path, err)
	}
	r.lineNumber++
	return line[:len(line)-1], nil
}

// LineNumber returns the number of the line most recently returned.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Path returns the path the reader was opened on.
func (r *Reader) Path() string {
	return r.path
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// IsHeader returns true for VCF meta-information and column header lines.
func IsHeader(line string) bool {
	return strings.HasPrefix(line, "#")
}

// ParseRecord parses a single VCF data line into a Record.
// Only the eight mandatory columns are required; FORMAT and sample columns
// are captured when present.
func ParseRecord(line string) (*Record, error) {
	line = strings.TrimRight(line, "\r\n")

	fields := strings.Split(line, "\t")
	if len(fields) < minColumns {
		return nil, Malformedf("expected at least %d columns, found %d", minColumns, len(fields))
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, Malformedf("invalid position: %q", fields[1])
	}

	r := &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Qual:   fields[5],
		Filter: fields[6],
		Info:   fields[7],
	}

	switch {
	case r.Chrom == "":
		return nil, Malformedf("missing chromosome")
	case r.Ref == "":
		return nil, Malformedf("missing reference allele")
	case r.Alt == "":
		return nil, Malformedf("missing alternative allele")
	}

	// Capture FORMAT + sample columns if present
	if len(fields) > minColumns {
		r.Format = fields[8]
		r.Samples = fields[9:]
	}

	return r, nil
}

// ScanRecords calls fn for every data line of the VCF file at path, in file
// order. Header lines and empty lines are skipped. Scanning stops at the
// first error, which is returned with the offending line attached.
func ScanRecords(path string, fn func(*Record) error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" || IsHeader(line) {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return AtLine(err, r.Path(), r.LineNumber())
		}
		if err := fn(rec); err != nil {
			return AtLine(err, r.Path(), r.LineNumber())
		}
	}
}

// MalformedRecordError reports a data line that cannot be parsed, either
// because it has too few columns or because an annotation key is present
// but unparseable.
type MalformedRecordError struct {
	Path    string
	Line    int
	Message string
}

// Malformedf returns a MalformedRecordError without position information.
// Use AtLine to attach the file and line once they are known.
func Malformedf(format string, args ...any) *MalformedRecordError {
	return &MalformedRecordError{Message: fmt.Sprintf(format, args...)}
}

func (e *MalformedRecordError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("malformed record at %s:%d: %s", e.Path, e.Line, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Message)
	default:
		return "malformed record: " + e.Message
	}
}

// AtLine attaches path and line to a MalformedRecordError that does not yet
// carry a position. Other errors are returned unchanged.
func AtLine(err error, path string, line int) error {
	var me *MalformedRecordError
	if !errors.As(err, &me) || me.Line > 0 {
		return err
	}
	return &MalformedRecordError{Path: path, Line: line, Message: me.Message}
}
