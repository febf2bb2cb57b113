package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/mutect-vcf-selector/internal/datasource/clinvar"
	"github.com/inodb/mutect-vcf-selector/internal/datasource/cosmic"
	"github.com/inodb/mutect-vcf-selector/internal/vcf"
)

// Source kinds stored in annotation_sources.
const (
	KindCosmic  = "cosmic"
	KindClinvar = "clinvar"
)

// Valid checks whether the cache holds a complete index of the given kind
// parsed from the file described by fp.
func (s *Store) Valid(kind string, fp FileFingerprint) bool {
	var size int64
	var modTime string
	err := s.db.QueryRow(
		"SELECT size, mod_time FROM annotation_sources WHERE kind=? AND path=?",
		kind, fp.Path,
	).Scan(&size, &modTime)
	if err != nil {
		return false
	}
	return size == fp.Size && modTime == fp.modTimeKey()
}

// Entries returns the number of index entries cached for the file, or 0.
func (s *Store) Entries(kind string, fp FileFingerprint) int64 {
	var n int64
	if err := s.db.QueryRow(
		"SELECT entries FROM annotation_sources WHERE kind=? AND path=?",
		kind, fp.Path,
	).Scan(&n); err != nil {
		return 0
	}
	return n
}

// LoadCosmic reads the cached COSMIC index for fp into memory.
func (s *Store) LoadCosmic(fp FileFingerprint) (cosmic.Index, error) {
	rows, err := s.db.Query(
		"SELECT chrom, pos, ref, alt, is_snp, gene, has_gene FROM cosmic_entries WHERE path=?",
		fp.Path,
	)
	if err != nil {
		return nil, fmt.Errorf("query cosmic entries: %w", err)
	}
	defer rows.Close()

	idx := make(cosmic.Index)
	for rows.Next() {
		var m cosmic.Mutation
		if err := rows.Scan(&m.Identity.Chrom, &m.Identity.Pos, &m.Identity.Ref, &m.Identity.Alt,
			&m.IsSNP, &m.Gene, &m.HasGene); err != nil {
			return nil, fmt.Errorf("scan cosmic entry: %w", err)
		}
		idx[m.Identity] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cosmic entry rows: %w", err)
	}
	return idx, nil
}

// WriteCosmic replaces the cached COSMIC index for fp.
func (s *Store) WriteCosmic(fp FileFingerprint, idx cosmic.Index) error {
	return s.replace(KindCosmic, "cosmic_entries", fp, int64(len(idx)), func(a *goduckdb.Appender) error {
		for id, m := range idx {
			if err := a.AppendRow(fp.Path, id.Chrom, id.Pos, id.Ref, id.Alt, m.IsSNP, m.Gene, m.HasGene); err != nil {
				return fmt.Errorf("append cosmic entry %s: %w", id, err)
			}
		}
		return nil
	})
}

// LoadClinvar reads the cached ClinVar index for fp into memory.
func (s *Store) LoadClinvar(fp FileFingerprint) (clinvar.Index, error) {
	rows, err := s.db.Query(
		"SELECT chrom, pos, ref, alt, clnsig FROM clinvar_entries WHERE path=?",
		fp.Path,
	)
	if err != nil {
		return nil, fmt.Errorf("query clinvar entries: %w", err)
	}
	defer rows.Close()

	idx := make(clinvar.Index)
	for rows.Next() {
		var id vcf.Identity
		var sig string
		if err := rows.Scan(&id.Chrom, &id.Pos, &id.Ref, &id.Alt, &sig); err != nil {
			return nil, fmt.Errorf("scan clinvar entry: %w", err)
		}
		v := &clinvar.Variant{Identity: id}
		if sig != "" {
			v.Significance = strings.Split(sig, "/")
		}
		idx[id] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clinvar entry rows: %w", err)
	}
	return idx, nil
}

// WriteClinvar replaces the cached ClinVar index for fp.
func (s *Store) WriteClinvar(fp FileFingerprint, idx clinvar.Index) error {
	return s.replace(KindClinvar, "clinvar_entries", fp, int64(len(idx)), func(a *goduckdb.Appender) error {
		for id, v := range idx {
			if err := a.AppendRow(fp.Path, id.Chrom, id.Pos, id.Ref, id.Alt, strings.Join(v.Significance, "/")); err != nil {
				return fmt.Errorf("append clinvar entry %s: %w", id, err)
			}
		}
		return nil
	})
}

// replace drops any cached rows for fp, bulk-appends the new entries with
// the Appender API, and records the source row last so an interrupted write
// never looks valid.
func (s *Store) replace(kind, table string, fp FileFingerprint, entries int64, appendRows func(*goduckdb.Appender) error) error {
	if _, err := s.db.Exec("DELETE FROM annotation_sources WHERE kind=? AND path=?", kind, fp.Path); err != nil {
		return fmt.Errorf("clear %s source: %w", kind, err)
	}
	if _, err := s.db.Exec("DELETE FROM "+table+" WHERE path=?", fp.Path); err != nil {
		return fmt.Errorf("clear %s entries: %w", kind, err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := appendAll(conn, table, appendRows); err != nil {
		return err
	}

	if _, err := s.db.Exec(
		"INSERT INTO annotation_sources VALUES (?, ?, ?, ?, ?, ?)",
		kind, fp.Path, fp.Size, fp.modTimeKey(), entries, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record %s source: %w", kind, err)
	}
	return nil
}

func appendAll(conn *sql.Conn, table string, appendRows func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	if err := appendRows(appender); err != nil {
		appender.Close()
		return err
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", table, err)
	}
	return nil
}
