// Package vcf provides VCF record parsing functionality.
package vcf

import (
	"strconv"
	"strings"
)

// Filter tags the selector acts on.
const (
	FilterPass         = "PASS"
	FilterGermlineRisk = "germline_risk"
)

// Identity is the genomic identity of a variant. Two records with the same
// identity describe the same physical variant regardless of their source.
type Identity struct {
	Chrom string // Chromosome name as written in the file (e.g. "12", "chr12")
	Pos   int64  // 1-based genomic position
	Ref   string // Reference allele
	Alt   string // Alternate allele
}

// String renders the identity as "chrom,pos,ref,alt".
func (id Identity) String() string {
	var b strings.Builder
	b.Grow(len(id.Chrom) + len(id.Ref) + len(id.Alt) + 24)
	b.WriteString(id.Chrom)
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(id.Pos, 10))
	b.WriteByte(',')
	b.WriteString(id.Ref)
	b.WriteByte(',')
	b.WriteString(id.Alt)
	return b.String()
}

// Record represents a single data line from a VCF file.
// Records are built once by ParseRecord and treated as read-only afterwards.
type Record struct {
	Chrom   string   // Chromosome name
	Pos     int64    // 1-based genomic position
	ID      string   // Semicolon-joined identifiers or "."
	Ref     string   // Reference allele
	Alt     string   // Alternate allele
	Qual    string   // Quality, kept as written
	Filter  string   // Semicolon-joined filter tags or "PASS"
	Info    string   // Raw INFO column
	Format  string   // FORMAT column, empty for annotation-only files
	Samples []string // Per-sample columns, nil for annotation-only files
}

// Identity returns the genomic identity of the record.
func (r *Record) Identity() Identity {
	return Identity{Chrom: r.Chrom, Pos: r.Pos, Ref: r.Ref, Alt: r.Alt}
}

// HasFilter reports whether tag is one of the record's filter tags.
func (r *Record) HasFilter(tag string) bool {
	return hasToken(r.Filter, ';', tag)
}

// IDs returns the record's external identifiers, or nil when the column is ".".
func (r *Record) IDs() []string {
	if r.ID == "" || r.ID == "." {
		return nil
	}
	return strings.Split(r.ID, ";")
}

// HasSamples returns true if the record carries FORMAT and sample columns.
func (r *Record) HasSamples() bool {
	return r.Format != ""
}

// hasToken reports whether s, split on sep, contains token.
func hasToken(s string, sep byte, token string) bool {
	for rest := s; rest != ""; {
		field := rest
		if i := strings.IndexByte(rest, sep); i >= 0 {
			field = rest[:i]
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		if field == token {
			return true
		}
	}
	return false
}
