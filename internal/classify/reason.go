package classify

// Reason explains a retain or drop decision.
type Reason int

const (
	ReasonNoMatch         Reason = iota // no source retained the record
	ReasonPass                          // caller filter is PASS
	ReasonCosmic                        // non-SNP COSMIC entry
	ReasonClinvar                       // ClinVar entry with a significant term
	ReasonSelfCosmic                    // own ID column carries a COSMIC identifier
	ReasonSelfClinvar                   // own CLNSIG carries a significant term
	ReasonGeneNotInCensus               // matched, but the gene is not in the census

	numReasons
)

var reasonNames = [numReasons]string{
	"no_match",
	"pass",
	"cosmic",
	"clinvar",
	"self_cosmic",
	"self_clinvar",
	"gene_not_in_census",
}

func (r Reason) String() string {
	if r < 0 || r >= numReasons {
		return "unknown"
	}
	return reasonNames[r]
}

// Reasons returns every reason in declaration order.
func Reasons() []Reason {
	out := make([]Reason, numReasons)
	for i := range out {
		out[i] = Reason(i)
	}
	return out
}

// Decision is the outcome of classifying one record.
type Decision struct {
	Retain bool
	Reason Reason
	Gene   string // census gene that let the record through the gene gate
}

// Stats counts classification outcomes over a run.
type Stats struct {
	Records  int64
	Retained int64
	reasons  [numReasons]int64
}

// Add records one decision.
func (s *Stats) Add(d Decision) {
	s.Records++
	if d.Retain {
		s.Retained++
	}
	if d.Reason >= 0 && d.Reason < numReasons {
		s.reasons[d.Reason]++
	}
}

// Dropped returns the number of records that were not retained.
func (s *Stats) Dropped() int64 {
	return s.Records - s.Retained
}

// Count returns the number of decisions made for reason r.
func (s *Stats) Count(r Reason) int64 {
	if r < 0 || r >= numReasons {
		return 0
	}
	return s.reasons[r]
}

// Retains returns true for reasons attached to retained records.
func (r Reason) Retains() bool {
	return r > ReasonNoMatch && r < ReasonGeneNotInCensus
}
