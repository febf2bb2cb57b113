package selector

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/mutect-vcf-selector/internal/classify"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/cgc"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/clinvar"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/cosmic"
	"github.com/inodb/mutect-vcf-selector/internal/vcf"
)

const (
	callerHeader = "##fileformat=VCFv4.1\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tTUMOR\tNORMAL\n"
	mutect2Header = "##GATKCommandLine=<ID=Mutect2,CommandLine=\"Mutect2\",Mutect Version=2.2>\n"

	passLine    = "1\t1000\t.\tA\tG\t.\tPASS\tDP=40\tGT\t0/1\t0/0"
	krasLine    = "12\t25245351\t.\tC\tA\t.\tclustered_events\tDP=80;CSQ=A|missense_variant|MODERATE|KRAS|ENSG00000133703\tGT\t0/1\t0/0"
	krasGermRsk = "12\t25245351\t.\tC\tA\t.\tgermline_risk\tDP=80\tGT\t0/1\t0/0"
	dropLine    = "3\t500\t.\tT\tC\t.\tlow_t_alt\tDP=10\tGT\t0/1\t0/0"
	selfClnLine = "7\t140753336\t.\tA\tT\t.\tstr_contraction\tCLNSIG=Pathogenic\tGT\t0/1\t0/0"
)

var kras = vcf.Identity{Chrom: "12", Pos: 25245351, Ref: "C", Alt: "A"}

func run(t *testing.T, p *classify.Policy, input string, echo bool) (string, classify.Stats) {
	t.Helper()
	d := NewDriver(p)
	d.SetEchoHeader(echo)
	var out bytes.Buffer
	stats, err := d.Run(strings.NewReader(input), &out)
	require.NoError(t, err)
	return out.String(), stats
}

func cosmicPolicy(isSNP bool) *classify.Policy {
	return classify.NewPolicy(classify.Sources{
		Cosmic: cosmic.Index{kras: {Identity: kras, Info: cosmic.Info{IsSNP: isSNP}}},
	})
}

func TestRun_PassOnlyNoSources(t *testing.T) {
	p := classify.NewPolicy(classify.Sources{})
	out, stats := run(t, p, callerHeader+passLine+"\n"+dropLine+"\n", false)

	assert.Equal(t, passLine+"\n", out)
	assert.Equal(t, int64(2), stats.Records)
	assert.Equal(t, int64(1), stats.Retained)
	assert.Equal(t, int64(1), stats.Count(classify.ReasonPass))
	assert.Equal(t, int64(1), stats.Count(classify.ReasonNoMatch))
}

func TestRun_HeaderEcho(t *testing.T) {
	p := classify.NewPolicy(classify.Sources{})
	input := callerHeader + passLine + "\n"

	out, _ := run(t, p, input, true)
	assert.Equal(t, input, out)

	out, _ = run(t, p, input, false)
	assert.Equal(t, passLine+"\n", out)
}

func TestRun_GermlineRiskCosmic(t *testing.T) {
	input := callerHeader + mutect2Header + krasGermRsk + "\n"

	out, _ := run(t, cosmicPolicy(false), input, false)
	assert.Equal(t, krasGermRsk+"\n", out)

	out, _ = run(t, cosmicPolicy(true), input, false)
	assert.Empty(t, out, "COSMIC entries flagged SNP never retain")
}

func TestRun_EngineSwitchMidStream(t *testing.T) {
	krasV2 := strings.Replace(krasLine, "\t.\tC", "\tsecond\tC", 1)
	input := callerHeader +
		krasLine + "\n" +
		mutect2Header +
		krasV2 + "\n" +
		krasGermRsk + "\n"

	out, stats := run(t, cosmicPolicy(false), input, false)

	assert.Equal(t, krasLine+"\n"+krasGermRsk+"\n", out,
		"after the Mutect2 header only germline_risk records consult COSMIC")
	assert.Equal(t, int64(2), stats.Count(classify.ReasonCosmic))
	assert.Equal(t, int64(1), stats.Count(classify.ReasonNoMatch))
}

func TestRun_SelfAnnotated(t *testing.T) {
	out, stats := run(t, classify.NewPolicy(classify.Sources{}), selfClnLine+"\n", false)
	assert.Equal(t, selfClnLine+"\n", out)
	assert.Equal(t, int64(1), stats.Count(classify.ReasonSelfClinvar))
}

func TestRun_GeneGate(t *testing.T) {
	p := classify.NewPolicy(classify.Sources{
		Clinvar: clinvar.Index{kras: {Identity: kras, Significance: []string{"Pathogenic"}}},
		Genes:   cgc.GeneSet{"TP53": {}},
	})

	out, stats := run(t, p, krasLine+"\n"+passLine+"\n", false)
	assert.Equal(t, passLine+"\n", out)
	assert.Equal(t, int64(1), stats.Count(classify.ReasonGeneNotInCensus))
}

func TestRun_RoundTripBytes(t *testing.T) {
	lines := []string{
		"1\t1000\t.\tA\tG\t.\tPASS\tDP=40;  spaced = value\tGT\t0/1\t0/0",
		"1\t2000\t.\tA\tG\t.\tPASS\t.",
		"1\t3000\t.\tA\tG\t.\tPASS\tDP=1\tGT\t0/1\t0/0\r",
	}
	input := strings.Join(lines, "\n")

	out, _ := run(t, classify.NewPolicy(classify.Sources{}), input, false)
	assert.Equal(t, input+"\n", out, "retained lines are copied byte for byte")
}

func TestRun_Idempotent(t *testing.T) {
	p := classify.NewPolicy(classify.Sources{})
	input := callerHeader + passLine + "\n" + dropLine + "\n" + selfClnLine + "\n"

	once, _ := run(t, p, input, true)
	twice, _ := run(t, p, once, true)
	assert.Equal(t, once, twice)
}

func TestRun_PreservesOrderAndSkipsBlankLines(t *testing.T) {
	a := "1\t1\t.\tA\tG\t.\tPASS\t."
	b := "2\t1\t.\tA\tG\t.\tPASS\t."
	c := "1\t2\t.\tA\tG\t.\tPASS\t."

	out, stats := run(t, classify.NewPolicy(classify.Sources{}), a+"\n\n"+b+"\n"+c+"\n", false)
	assert.Equal(t, a+"\n"+b+"\n"+c+"\n", out)
	assert.Equal(t, int64(3), stats.Records)
}

func TestRun_EmptyInput(t *testing.T) {
	out, stats := run(t, classify.NewPolicy(classify.Sources{}), "", true)
	assert.Empty(t, out)
	assert.Zero(t, stats.Records)
}

func TestRun_MalformedLineAborts(t *testing.T) {
	d := NewDriver(classify.NewPolicy(classify.Sources{}))
	d.SetPath("calls.vcf")

	input := callerHeader + passLine + "\n1\t200\t.\tA\n"
	var out bytes.Buffer
	_, err := d.Run(strings.NewReader(input), &out)

	var me *vcf.MalformedRecordError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, "calls.vcf", me.Path)
	assert.Equal(t, 4, me.Line)
}

func TestRun_MalformedOwnCLNSIG(t *testing.T) {
	d := NewDriver(classify.NewPolicy(classify.Sources{}))
	line := "1\t100\t.\tA\tT\t.\tweak_evidence\tCLNSIG=\tGT\t0/1\t0/0\n"

	_, err := d.Run(strings.NewReader(line), &bytes.Buffer{})
	var me *vcf.MalformedRecordError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, 1, me.Line)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRun_WriteError(t *testing.T) {
	d := NewDriver(classify.NewPolicy(classify.Sources{}))
	_, err := d.Run(strings.NewReader(passLine+"\n"), failingWriter{})
	assert.ErrorContains(t, err, "disk full")
}

func TestRun_DebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDriver(classify.NewPolicy(classify.Sources{}))
	d.SetLogger(zap.New(core))

	_, err := d.Run(strings.NewReader(passLine+"\n"+dropLine+"\n"), &bytes.Buffer{})
	require.NoError(t, err)

	entries := logs.FilterMessage("classified record").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "pass", entries[0].ContextMap()["reason"])
	assert.Equal(t, false, entries[1].ContextMap()["retain"])
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "calls.vcf", callerHeader+mutect2Header+passLine+"\n"+"1\t2\t.\tA\n")

	d := NewDriver(classify.NewPolicy(classify.Sources{}))
	var out bytes.Buffer
	_, err := d.RunFile(path, &out)

	var me *vcf.MalformedRecordError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, path, me.Path)
	assert.Equal(t, 5, me.Line)
	assert.Equal(t, classify.EngineV2, d.Engine())
}

func TestRunFile_NotFound(t *testing.T) {
	d := NewDriver(classify.NewPolicy(classify.Sources{}))
	_, err := d.RunFile(filepath.Join(t.TempDir(), "missing.vcf"), &bytes.Buffer{})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
