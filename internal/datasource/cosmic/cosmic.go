// Package cosmic provides COSMIC mutation lookups loaded from a COSMIC VCF export.
package cosmic

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/inodb/mutect-vcf-selector/internal/vcf"
)

// INFO keys and flags used by COSMIC VCF exports.
const (
	infoGene = "GENE"
	infoSNP  = "SNP"
)

// idPrefix starts every COSMIC identifier (COSM, COSV, COSN).
const idPrefix = "COS"

// Info holds the COSMIC-specific fields parsed from an INFO column.
type Info struct {
	IsSNP   bool   // INFO carries the standalone SNP flag
	Gene    string // Gene from GENE=, valid only when HasGene is set
	HasGene bool
}

// Mutation is a single COSMIC entry.
type Mutation struct {
	Identity vcf.Identity
	Info
}

// Index maps genomic identity to the COSMIC entry last seen for it.
type Index map[vcf.Identity]*Mutation

// Lookup returns the entry for id. A miss is a normal outcome.
func (idx Index) Lookup(id vcf.Identity) (*Mutation, bool) {
	m, ok := idx[id]
	return m, ok
}

// ParseInfo parses the COSMIC fields of a raw INFO column. A missing GENE
// key is not an error; a GENE key without a value is.
func ParseInfo(info string) (Info, error) {
	var ci Info
	ci.IsSNP = vcf.InfoFlag(info, infoSNP)

	value, ok := vcf.InfoValue(info, infoGene)
	if !ok {
		return ci, nil
	}
	if i := strings.IndexFunc(value, unicode.IsSpace); i >= 0 {
		value = value[:i]
	}
	if value == "" {
		return Info{}, vcf.Malformedf("%s key has no value", infoGene)
	}
	ci.Gene = value
	ci.HasGene = true
	return ci, nil
}

// FromRecord builds a Mutation from a parsed COSMIC VCF record.
func FromRecord(r *vcf.Record) (*Mutation, error) {
	info, err := ParseInfo(r.Info)
	if err != nil {
		return nil, err
	}
	return &Mutation{Identity: r.Identity(), Info: info}, nil
}

// LoadIndex reads a COSMIC VCF (plain or gzipped) into an Index.
// Duplicate identities keep the last entry in file order. The first
// malformed line aborts the load.
func LoadIndex(path string) (Index, error) {
	idx := make(Index)
	err := vcf.ScanRecords(path, func(r *vcf.Record) error {
		m, err := FromRecord(r)
		if err != nil {
			return err
		}
		idx[m.Identity] = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load cosmic index: %w", err)
	}
	return idx, nil
}

// IsCosmicID returns true if id looks like a COSMIC identifier.
func IsCosmicID(id string) bool {
	return strings.HasPrefix(id, idPrefix)
}

// HasCosmicID returns true if any of the record's identifiers is a COSMIC identifier.
func HasCosmicID(r *vcf.Record) bool {
	for _, id := range r.IDs() {
		if IsCosmicID(id) {
			return true
		}
	}
	return false
}

// IsSNP reports whether the record's own INFO column carries the SNP flag.
func IsSNP(r *vcf.Record) bool {
	return vcf.InfoFlag(r.Info, infoSNP)
}
