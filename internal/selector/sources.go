package selector

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/inodb/mutect-vcf-selector/internal/classify"
	"github.com/inodb/mutect-vcf-selector/internal/config"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/cgc"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/clinvar"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/cosmic"
	"github.com/inodb/mutect-vcf-selector/internal/duckdb"
)

// SourceKind names an annotation index file format.
type SourceKind string

const (
	SourceCosmic  SourceKind = duckdb.KindCosmic
	SourceClinvar SourceKind = duckdb.KindClinvar
)

// LoadSources builds the policy inputs named by cfg. COSMIC and ClinVar
// indexes go through the DuckDB cache at cfg.IndexCache when one is set.
func LoadSources(cfg *config.Config, logger *zap.Logger) (classify.Sources, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src := classify.Sources{Significance: clinvar.NewTerms(cfg.Significance)}

	var store *duckdb.Store
	if cfg.IndexCache != "" && (cfg.Cosmic != "" || cfg.Clinvar != "") {
		var err error
		store, err = duckdb.Open(cfg.IndexCache)
		if err != nil {
			return src, fmt.Errorf("open index cache: %w", err)
		}
		defer store.Close()
	}

	if cfg.Cosmic != "" {
		idx, cached, err := loadCached(store, SourceCosmic, cfg.Cosmic, logger,
			cosmic.LoadIndex, store.LoadCosmic, store.WriteCosmic)
		if err != nil {
			return src, err
		}
		src.Cosmic = idx
		logLoaded(logger, SourceCosmic, cfg.Cosmic, len(idx), cached)
	}

	if cfg.Clinvar != "" {
		idx, cached, err := loadCached(store, SourceClinvar, cfg.Clinvar, logger,
			clinvar.LoadIndex, store.LoadClinvar, store.WriteClinvar)
		if err != nil {
			return src, err
		}
		src.Clinvar = idx
		logLoaded(logger, SourceClinvar, cfg.Clinvar, len(idx), cached)
	}

	if cfg.CGC != "" {
		genes, err := cgc.LoadGeneSet(cfg.CGC)
		if err != nil {
			return src, err
		}
		src.Genes = genes
		logger.Info("loaded cancer gene census",
			zap.String("path", cfg.CGC),
			zap.String("genes", humanize.Comma(int64(len(genes)))))
	}

	if src.Cosmic == nil && src.Clinvar == nil {
		logger.Info("no annotation index given, using the caller's own ID and CLNSIG")
	}
	return src, nil
}

// loadCached returns the index for path, reading it from store when the
// cached copy matches the file on disk and refreshing the cache otherwise.
// Cache failures are logged and fall back to parsing the file. read and
// write are only called when store is non-nil.
func loadCached[T ~map[K]V, K comparable, V any](
	store *duckdb.Store,
	kind SourceKind,
	path string,
	logger *zap.Logger,
	build func(string) (T, error),
	read func(duckdb.FileFingerprint) (T, error),
	write func(duckdb.FileFingerprint, T) error,
) (T, bool, error) {
	if store == nil || path == "-" {
		idx, err := build(path)
		return idx, false, err
	}

	fp, err := duckdb.StatFile(path)
	if err != nil {
		idx, err := build(path)
		return idx, false, err
	}

	if store.Valid(string(kind), fp) {
		idx, err := read(fp)
		if err == nil && int64(len(idx)) != store.Entries(string(kind), fp) {
			err = fmt.Errorf("cached entry count mismatch: got %d", len(idx))
		}
		if err == nil {
			return idx, true, nil
		}
		logger.Warn("index cache read failed, reparsing",
			zap.String("kind", string(kind)), zap.String("path", path), zap.Error(err))
	}

	idx, err := build(path)
	if err != nil {
		return nil, false, err
	}
	if err := write(fp, idx); err != nil {
		logger.Warn("index cache write failed",
			zap.String("kind", string(kind)), zap.String("path", path), zap.Error(err))
	}
	return idx, false, nil
}

func logLoaded(logger *zap.Logger, kind SourceKind, path string, n int, cached bool) {
	logger.Info("loaded annotation index",
		zap.String("kind", string(kind)),
		zap.String("path", path),
		zap.String("entries", humanize.Comma(int64(n))),
		zap.Bool("cached", cached))
}
