package glossary

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TermRepository stores the merged glossary.
type TermRepository interface {
	FindAll(ctx context.Context) ([]MergedRow, error)
	UpsertAll(ctx context.Context, rows []MergedRow) error
}

// DBTermRepository implements TermRepository using MySQL.
type DBTermRepository struct {
	db *sqlx.DB
}

// NewDBTermRepository creates a new DBTermRepository.
func NewDBTermRepository(db *sqlx.DB) *DBTermRepository {
	return &DBTermRepository{db: db}
}

// FindAll returns every stored term ordered by the Japanese term.
func (r *DBTermRepository) FindAll(ctx context.Context) ([]MergedRow, error) {
	var rows []MergedRow
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT source_term, target_term, source_lang, target_lang FROM glossary_terms ORDER BY source_term"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(glossary_terms) > %w", err)
	}
	return rows, nil
}

// UpsertAll inserts or updates rows in a single transaction.
func (r *DBTermRepository) UpsertAll(ctx context.Context, rows []MergedRow) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO glossary_terms (source_term, target_term, source_lang, target_lang)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE target_term = VALUES(target_term), source_lang = VALUES(source_lang), target_lang = VALUES(target_lang)`,
			row.SourceTerm, row.TargetTerm, row.SourceLang, row.TargetLang); err != nil {
			return fmt.Errorf("tx.ExecContext(upsert glossary_term %s) > %w", row.SourceTerm, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}
