// Package clinvar provides ClinVar clinical significance lookups loaded from
// a ClinVar VCF release.
package clinvar

import (
	"fmt"
	"strings"

	"github.com/inodb/mutect-vcf-selector/internal/vcf"
)

// infoSignificance is the INFO key holding clinical significance terms.
const infoSignificance = "CLNSIG"

// DefaultSignificance lists the terms that make a ClinVar match interesting
// when no override is configured.
var DefaultSignificance = []string{
	"Likely_pathogenic",
	"Pathogenic",
	"drug_response",
	"association",
	"risk_factor",
	"protective",
}

// Variant is a single ClinVar entry.
type Variant struct {
	Identity     vcf.Identity
	Significance []string // CLNSIG terms in file order, empty when not annotated
}

// Index maps genomic identity to the ClinVar entry last seen for it.
type Index map[vcf.Identity]*Variant

// Lookup returns the entry for id. A miss is a normal outcome.
func (idx Index) Lookup(id vcf.Identity) (*Variant, bool) {
	v, ok := idx[id]
	return v, ok
}

// ParseSignificance returns the slash-separated CLNSIG terms of a raw INFO
// column. An absent key yields an empty list; a key with an empty value or
// an empty term is malformed.
func ParseSignificance(info string) ([]string, error) {
	value, ok := vcf.InfoValue(info, infoSignificance)
	if !ok {
		return nil, nil
	}
	if value == "" {
		return nil, vcf.Malformedf("%s key has no value", infoSignificance)
	}

	terms := strings.Split(value, "/")
	for _, term := range terms {
		if term == "" {
			return nil, vcf.Malformedf("%s has an empty term: %q", infoSignificance, value)
		}
	}
	return terms, nil
}

// FromRecord builds a Variant from a parsed ClinVar VCF record.
func FromRecord(r *vcf.Record) (*Variant, error) {
	sig, err := ParseSignificance(r.Info)
	if err != nil {
		return nil, err
	}
	return &Variant{Identity: r.Identity(), Significance: sig}, nil
}

// LoadIndex reads a ClinVar VCF (plain or gzipped) into an Index.
// Duplicate identities keep the last entry in file order. The first
// malformed line aborts the load.
func LoadIndex(path string) (Index, error) {
	idx := make(Index)
	err := vcf.ScanRecords(path, func(r *vcf.Record) error {
		v, err := FromRecord(r)
		if err != nil {
			return err
		}
		idx[v.Identity] = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load clinvar index: %w", err)
	}
	return idx, nil
}

// Terms is a set of clinical significance terms.
type Terms map[string]struct{}

// NewTerms builds a Terms set. Surrounding whitespace and empty entries are
// dropped so comma lists from the command line can be passed as-is.
func NewTerms(terms []string) Terms {
	t := make(Terms, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term != "" {
			t[term] = struct{}{}
		}
	}
	return t
}

// Matches reports whether any of sig is in the set.
func (t Terms) Matches(sig []string) bool {
	for _, s := range sig {
		if _, ok := t[s]; ok {
			return true
		}
	}
	return false
}

// List returns the terms in the set in no particular order.
func (t Terms) List() []string {
	out := make([]string, 0, len(t))
	for term := range t {
		out = append(out, term)
	}
	return out
}
