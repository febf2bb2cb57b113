package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason_String(t *testing.T) {
	assert.Equal(t, "pass", ReasonPass.String())
	assert.Equal(t, "gene_not_in_census", ReasonGeneNotInCensus.String())
	assert.Equal(t, "unknown", Reason(99).String())
	assert.Len(t, Reasons(), int(numReasons))
}

func TestStats(t *testing.T) {
	var s Stats
	s.Add(Decision{Retain: true, Reason: ReasonPass})
	s.Add(Decision{Retain: true, Reason: ReasonCosmic})
	s.Add(Decision{Reason: ReasonNoMatch})
	s.Add(Decision{Reason: ReasonNoMatch})
	s.Add(Decision{Reason: ReasonGeneNotInCensus})

	assert.Equal(t, int64(5), s.Records)
	assert.Equal(t, int64(2), s.Retained)
	assert.Equal(t, int64(3), s.Dropped())
	assert.Equal(t, int64(2), s.Count(ReasonNoMatch))
	assert.Equal(t, int64(1), s.Count(ReasonCosmic))
	assert.Equal(t, int64(0), s.Count(ReasonClinvar))
	assert.Equal(t, int64(0), s.Count(Reason(-1)))
}

func TestReason_Retains(t *testing.T) {
	retaining := map[Reason]bool{
		ReasonPass:        true,
		ReasonCosmic:      true,
		ReasonClinvar:     true,
		ReasonSelfCosmic:  true,
		ReasonSelfClinvar: true,
	}
	for _, r := range Reasons() {
		assert.Equal(t, retaining[r], r.Retains(), r.String())
	}
}
