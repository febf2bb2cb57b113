// Package cgc provides Cancer Gene Census gene list loading.
package cgc

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// headerSymbol is the first column name of the COSMIC Cancer Gene Census export.
const headerSymbol = "Gene Symbol"

// GeneSet is the set of Cancer Gene Census gene symbols.
type GeneSet map[string]struct{}

// Contains returns true if gene is in the census.
func (g GeneSet) Contains(gene string) bool {
	_, ok := g[gene]
	return ok
}

// LoadGeneSet loads a Cancer Gene Census CSV file. Only the first column is
// used; a leading "Gene Symbol" header row is skipped.
func LoadGeneSet(path string) (GeneSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cancer gene census: %w", err)
	}
	defer f.Close()

	return ParseGeneSet(f)
}

// ParseGeneSet parses Cancer Gene Census CSV content.
func ParseGeneSet(r io.Reader) (GeneSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	genes := make(GeneSet)
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading cancer gene census: %w", err)
		}

		symbol := strings.TrimSpace(record[0])
		if first {
			first = false
			if strings.EqualFold(symbol, headerSymbol) {
				continue
			}
		}
		if symbol == "" {
			continue
		}
		genes[symbol] = struct{}{}
	}

	return genes, nil
}
