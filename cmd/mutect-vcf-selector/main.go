// Package main provides the mutect-vcf-selector command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/mutect-vcf-selector/internal/classify"
	"github.com/inodb/mutect-vcf-selector/internal/config"
	"github.com/inodb/mutect-vcf-selector/internal/output"
	"github.com/inodb/mutect-vcf-selector/internal/selector"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks failures caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	v := config.New()
	root := newRootCmd(v, stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) || isConfigError(err) {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
			return ExitUsage
		}
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "Hint: Check that the file path is correct\n")
		}
		return ExitError
	}
	return ExitSuccess
}

func isConfigError(err error) bool {
	return errors.Is(err, config.ErrMissingVCF) ||
		errors.Is(err, config.ErrInvalidLogLevel) ||
		errors.Is(err, config.ErrEmptySignificance)
}

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mutect-vcf-selector",
		Short: "Select clinically relevant variants from a MuTect VCF",
		Long: `Filter a MuTect or Mutect2 VCF down to records that either passed the caller's
filters or match a COSMIC or ClinVar annotation, optionally restricted to genes
in the Cancer Gene Census. Retained lines are copied unchanged.

Without --cosmic and --clinvar, each record's own ID and CLNSIG are used.`,
		Example: `  mutect-vcf-selector -f calls.vcf -c CosmicCodingMuts.vcf.gz --clinvar clinvar.vcf.gz
  mutect-vcf-selector -f calls.vcf --clinvar clinvar.vcf.gz --cgc cancer_gene_census.csv --header
  mutect-vcf-selector -f calls.vcf --clinical-significance-value Pathogenic,drug_response
  zcat calls.vcf.gz | mutect-vcf-selector -f - --header > selected.vcf`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Decode(v)
			if err != nil {
				return err
			}
			return runSelect(cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/"+config.FileName+")")

	flags := cmd.Flags()
	flags.StringP(config.KeyVCF, "f", "", "Caller VCF file, plain or gzipped (use '-' for stdin)")
	flags.StringP(config.KeyCosmic, "c", "", "COSMIC VCF file")
	flags.String(config.KeyClinvar, "", "ClinVar VCF file")
	flags.String(config.KeyCGC, "", "Cancer Gene Census CSV; only retain annotated variants in listed genes")
	flags.Bool(config.KeyHeader, false, "Copy header lines to the output")
	flags.StringSlice(config.KeySignificance, nil, "ClinVar CLNSIG terms that retain a variant (default "+
		fmt.Sprint(v.GetStringSlice(config.KeySignificance))+")")
	flags.StringP(config.KeyOutput, "o", "", "Output file (default: stdout)")
	flags.String(config.KeyIndexCache, "", "DuckDB file caching parsed COSMIC and ClinVar indexes")
	flags.Bool(config.KeySummary, false, "Print a decision summary to stderr")
	flags.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(newConfigCmd(v, stdout))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

func runSelect(cfg *config.Config, stdout, stderr io.Writer) error {
	logger := newLogger(cfg.Level(), stderr)
	defer logger.Sync() //nolint:errcheck

	start := time.Now()

	src, err := selector.LoadSources(cfg, logger)
	if err != nil {
		return err
	}
	policy := classify.NewPolicy(src)

	out := stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	driver := selector.NewDriver(policy)
	driver.SetLogger(logger)
	driver.SetEchoHeader(cfg.Header)

	stats, err := driver.RunFile(cfg.VCF, out)
	if err != nil {
		return err
	}

	logger.Info("selection complete",
		zap.Int64("records", stats.Records),
		zap.Int64("retained", stats.Retained),
		zap.Int64("dropped", stats.Dropped()),
		zap.Duration("elapsed", time.Since(start)))

	if cfg.Summary {
		return output.WriteSummary(stderr, output.Summary{
			Input:   inputName(cfg.VCF),
			Engine:  driver.Engine(),
			Stats:   stats,
			Elapsed: time.Since(start),
		})
	}
	return nil
}

// newLogger builds a console logger writing to w at the given level.
func newLogger(level zapcore.Level, w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

func inputName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "mutect-vcf-selector version %s (%s) built %s\n", version, commit, date)
		},
	}
}
