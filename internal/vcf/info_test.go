package vcf

import "testing"

func TestInfoFlag(t *testing.T) {
	tests := []struct {
		name string
		info string
		want bool
	}{
		{"flag first", "SNP;GENE=KRAS;STRAND=-", true},
		{"flag last", "GENE=KRAS;STRAND=-;SNP", true},
		{"flag alone", "SNP", true},
		{"no flag", "GENE=KRAS;STRAND=-", false},
		{"key containing flag", "SNP_COUNT=3;GENE=KRAS", false},
		{"value equal to flag", "TYPE=SNP", false},
		{"missing", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InfoFlag(tt.info, "SNP"); got != tt.want {
				t.Errorf("InfoFlag(%q) = %v, want %v", tt.info, got, tt.want)
			}
		})
	}
}

func TestInfoValue(t *testing.T) {
	tests := []struct {
		name   string
		info   string
		key    string
		want   string
		wantOK bool
	}{
		{"first key", "GENE=KRAS;STRAND=-", "GENE", "KRAS", true},
		{"later key", "SNP;STRAND=-;GENE=TP53", "GENE", "TP53", true},
		{"first occurrence wins", "CLNSIG=Pathogenic;CLNSIG=Benign", "CLNSIG", "Pathogenic", true},
		{"empty value", "GENE=;STRAND=+", "GENE", "", true},
		{"longer key not matched", "GENE_ALT=ABC", "GENE", "", false},
		{"flag not matched", "GENE", "GENE", "", false},
		{"absent", "DP=10", "GENE", "", false},
		{"missing column", ".", "GENE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InfoValue(tt.info, tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("InfoValue(%q, %q) = %q, %v; want %q, %v", tt.info, tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
