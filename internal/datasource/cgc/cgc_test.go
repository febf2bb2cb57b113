package cgc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Excerpt of the COSMIC Cancer Gene Census CSV export.
const testCSV = `Gene Symbol,Name,Entrez GeneId,Genome Location,Tier,Hallmark
ABL1,"ABL proto-oncogene 1, non-receptor tyrosine kinase",25,9:130713946-130887675,1,Yes
KRAS,"KRAS proto-oncogene, GTPase",3845,12:25205246-25250929,1,Yes
TP53,tumor protein p53,7157,17:7661779-7687550,1,Yes

 BRCA1 ,"BRCA1 DNA repair associated",672,17:43044295-43170245,1,Yes
`

func TestLoadGeneSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cancer_gene_census.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0644))

	genes, err := LoadGeneSet(path)
	require.NoError(t, err)
	assert.Len(t, genes, 4)

	for _, gene := range []string{"ABL1", "KRAS", "TP53", "BRCA1"} {
		assert.True(t, genes.Contains(gene), "gene %s should be in census", gene)
	}
	assert.False(t, genes.Contains("Gene Symbol"), "header row should be skipped")
	assert.False(t, genes.Contains("UNKNOWN"))
}

func TestParseGeneSet_OneGenePerLine(t *testing.T) {
	genes, err := ParseGeneSet(strings.NewReader("EGFR\nBRAF\nPIK3CA\n"))
	require.NoError(t, err)
	assert.Len(t, genes, 3)
	assert.True(t, genes.Contains("EGFR"))
}

func TestParseGeneSet_Empty(t *testing.T) {
	genes, err := ParseGeneSet(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func TestLoadGeneSet_NotFound(t *testing.T) {
	_, err := LoadGeneSet("/nonexistent/path.csv")
	assert.Error(t, err)
}
