// Package classify decides which caller variants are worth keeping.
package classify

import (
	"strings"

	"github.com/inodb/mutect-vcf-selector/internal/datasource/cgc"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/clinvar"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/cosmic"
	"github.com/inodb/mutect-vcf-selector/internal/vcf"
)

// geneInfoKeys are the INFO keys carrying pipe-delimited consequence
// entries whose 4th field is the gene symbol (VEP CSQ, snpEff ANN).
var geneInfoKeys = []string{"CSQ", "ANN"}

// geneField is the index of the gene symbol inside a consequence entry.
const geneField = 3

// Sources holds the annotation data a Policy consults. A nil index means
// the source was not supplied for this run.
type Sources struct {
	Cosmic       cosmic.Index
	Clinvar      clinvar.Index
	Significance clinvar.Terms // nil selects clinvar.DefaultSignificance
	Genes        cgc.GeneSet   // nil disables the gene gate
}

// Policy classifies caller records against a fixed set of sources.
// A Policy is read-only after construction.
type Policy struct {
	src Sources
}

// NewPolicy creates a policy over the given sources.
func NewPolicy(src Sources) *Policy {
	if src.Significance == nil {
		src.Significance = clinvar.NewTerms(clinvar.DefaultSignificance)
	}
	return &Policy{src: src}
}

// SelfAnnotated returns true when neither COSMIC nor ClinVar data was
// supplied, in which case records are judged on their own ID and INFO.
func (p *Policy) SelfAnnotated() bool {
	return p.src.Cosmic == nil && p.src.Clinvar == nil
}

// GeneGate returns true when a Cancer Gene Census set restricts retains.
func (p *Policy) GeneGate() bool {
	return p.src.Genes != nil
}

// Classify decides whether r is retained. engine is the caller generation
// detected from the VCF header so far.
//
// PASS records are always retained and bypass the gene gate. Otherwise each
// source is consulted and any match retains the record, subject to the gene
// gate when one is configured. The only error is a malformed CLNSIG in the
// record's own INFO column in self-annotated mode.
func (p *Policy) Classify(r *vcf.Record, engine Engine) (Decision, error) {
	if r.HasFilter(vcf.FilterPass) {
		return Decision{Retain: true, Reason: ReasonPass}, nil
	}

	reason, err := p.match(r, engine)
	if err != nil {
		return Decision{}, err
	}
	if reason == ReasonNoMatch {
		return Decision{Reason: ReasonNoMatch}, nil
	}

	if !p.GeneGate() {
		return Decision{Retain: true, Reason: reason}, nil
	}
	gene, ok := p.censusGene(r)
	if !ok {
		return Decision{Reason: ReasonGeneNotInCensus}, nil
	}
	return Decision{Retain: true, Reason: reason, Gene: gene}, nil
}

func (p *Policy) match(r *vcf.Record, engine Engine) (Reason, error) {
	if p.SelfAnnotated() {
		return p.matchSelf(r)
	}

	id := r.Identity()

	// The COSMIC rule only applies to MuTect calls, or to Mutect2 calls the
	// caller suspects are germline.
	if p.src.Cosmic != nil && (engine == EngineV1 || r.HasFilter(vcf.FilterGermlineRisk)) {
		if m, ok := p.src.Cosmic.Lookup(id); ok && !m.IsSNP {
			return ReasonCosmic, nil
		}
	}

	if p.src.Clinvar != nil {
		if v, ok := p.src.Clinvar.Lookup(id); ok && p.src.Significance.Matches(v.Significance) {
			return ReasonClinvar, nil
		}
	}

	return ReasonNoMatch, nil
}

// matchSelf applies the COSMIC and ClinVar rules to the record's own columns.
func (p *Policy) matchSelf(r *vcf.Record) (Reason, error) {
	if cosmic.HasCosmicID(r) && !cosmic.IsSNP(r) {
		return ReasonSelfCosmic, nil
	}

	sig, err := clinvar.ParseSignificance(r.Info)
	if err != nil {
		return ReasonNoMatch, err
	}
	if p.src.Significance.Matches(sig) {
		return ReasonSelfClinvar, nil
	}

	return ReasonNoMatch, nil
}

// censusGene returns the first gene symbol annotated on r that is in the census.
func (p *Policy) censusGene(r *vcf.Record) (string, bool) {
	for _, gene := range GeneSymbols(r.Info) {
		if p.src.Genes.Contains(gene) {
			return gene, true
		}
	}
	return "", false
}

// GeneSymbols returns the gene symbols of every consequence entry in a raw
// INFO column, in order. Entries are read from CSQ, then ANN.
func GeneSymbols(info string) []string {
	var genes []string
	for _, key := range geneInfoKeys {
		value, ok := vcf.InfoValue(info, key)
		if !ok {
			continue
		}
		for _, entry := range strings.Split(value, ",") {
			fields := strings.Split(entry, "|")
			if len(fields) > geneField && fields[geneField] != "" {
				genes = append(genes, fields[geneField])
			}
		}
	}
	return genes
}
