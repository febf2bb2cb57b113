// Package selector streams a caller VCF through a classification policy.
package selector

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/inodb/mutect-vcf-selector/internal/classify"
	"github.com/inodb/mutect-vcf-selector/internal/vcf"
)

// Driver copies retained caller VCF lines from input to output.
type Driver struct {
	policy     *classify.Policy
	echoHeader bool
	path       string
	engine     classify.Engine
	logger     *zap.Logger
}

// NewDriver creates a driver over the given policy.
func NewDriver(p *classify.Policy) *Driver {
	return &Driver{
		policy: p,
		path:   "<input>",
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for per-record debug messages.
func (d *Driver) SetLogger(l *zap.Logger) {
	d.logger = l
}

// SetEchoHeader configures whether header lines are copied to the output.
func (d *Driver) SetEchoHeader(echo bool) {
	d.echoHeader = echo
}

// SetPath sets the name reported in malformed-record errors.
func (d *Driver) SetPath(path string) {
	d.path = path
}

// Engine returns the caller generation detected by the last run.
func (d *Driver) Engine() classify.Engine {
	return d.engine
}

// RunFile opens the caller VCF at path ("-" for stdin, gzip detected) and
// runs it as Run does.
func (d *Driver) RunFile(path string, w io.Writer) (classify.Stats, error) {
	reader, err := vcf.Open(path)
	if err != nil {
		return classify.Stats{}, err
	}
	defer reader.Close()

	d.path = reader.Path()
	return d.run(reader, w)
}

// Run reads caller VCF lines from r and writes every retained line to w,
// unchanged and newline-terminated, in input order. A line that cannot be
// parsed or classified aborts the run with a *vcf.MalformedRecordError.
func (d *Driver) Run(r io.Reader, w io.Writer) (classify.Stats, error) {
	reader, err := vcf.NewReader(r)
	if err != nil {
		return classify.Stats{}, err
	}
	return d.run(reader, w)
}

func (d *Driver) run(reader *vcf.Reader, w io.Writer) (classify.Stats, error) {
	var stats classify.Stats
	out := bufio.NewWriter(w)
	engine := classify.EngineV1
	defer func() { d.engine = engine }()

	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		if line == "" {
			continue
		}

		if vcf.IsHeader(line) {
			engine = classify.DetectEngine(engine, line)
			if d.echoHeader {
				if err := writeLine(out, line); err != nil {
					return stats, err
				}
			}
			continue
		}

		record, err := vcf.ParseRecord(line)
		if err != nil {
			return stats, vcf.AtLine(err, d.path, reader.LineNumber())
		}

		decision, err := d.policy.Classify(record, engine)
		if err != nil {
			return stats, vcf.AtLine(err, d.path, reader.LineNumber())
		}
		stats.Add(decision)

		if ce := d.logger.Check(zap.DebugLevel, "classified record"); ce != nil {
			ce.Write(
				zap.Stringer("variant", record.Identity()),
				zap.Stringer("reason", decision.Reason),
				zap.Bool("retain", decision.Retain),
				zap.Stringer("engine", engine))
		}

		if decision.Retain {
			if err := writeLine(out, line); err != nil {
				return stats, err
			}
		}
	}

	if err := out.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	return stats, nil
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
