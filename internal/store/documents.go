package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"population-pipeline/internal/config"
	"population-pipeline/internal/model"
)

// Save appends the document as a new api_data row. Under the supersede
// policy earlier active rows with the same doc_id are deactivated in the
// same transaction.
func (s *Store) Save(ctx context.Context, doc *model.DatasetDocument) error {
	primary, err := doc.Primary()
	if err != nil {
		return err
	}
	record, err := doc.Bytes()
	if err != nil {
		return model.PersistenceError("save document", err)
	}

	row := model.PersistedDocument{
		ID:        uuid.New().String(),
		APIName:   primary.Name,
		DocID:     primary.Annotations.TableID,
		DocName:   primary.Annotations.DatasetName,
		DocRecord: record,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if s.cfg.SavePolicy == config.SavePolicySupersede {
		err = s.saveSuperseding(ctx, row)
	} else {
		err = s.insertDocument(ctx, s.q, row)
	}
	if err != nil {
		return model.PersistenceError("save document", err)
	}
	log.Printf("💾 API data saved successfully (id=%s doc_id=%s)", row.ID, row.DocID)
	return nil
}

func (s *Store) saveSuperseding(ctx context.Context, row model.PersistedDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	q := s.wrap(tx)

	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`UPDATE %s SET is_active = %s WHERE doc_id = %s AND is_active = %s AND is_deleted = %s`,
		s.table(documentsTable), s.dialect.boolean(false), p(1), s.dialect.boolean(true), s.dialect.boolean(false))
	res, err := q.ExecContext(ctx, stmt, row.DocID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("supersede previous rows: %w", err)
	}
	if err := s.insertDocument(ctx, q, row); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("♻️ superseded %d earlier row(s) for doc_id=%s", n, row.DocID)
	}
	return nil
}

func (s *Store) insertDocument(ctx context.Context, q queryer, row model.PersistedDocument) error {
	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`INSERT INTO %s (id, api_name, doc_id, doc_name, doc_record, is_active, is_deleted, created_at) VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`,
		s.table(documentsTable), p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8))
	_, err := q.ExecContext(ctx, stmt,
		row.ID, row.APIName, row.DocID, row.DocName, string(row.DocRecord), row.IsActive, row.IsDeleted, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// QueryInlineSum expands every active, non-deleted document server-side and
// sums the population of the target years.
func (s *Store) QueryInlineSum(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.q.QueryRowContext(ctx, s.dialect.populationSum(s.table(documentsTable))).Scan(&total)
	if err != nil {
		return 0, model.QueryError("inline sum", err)
	}
	if !total.Valid {
		return 0, model.QueryError("inline sum", errors.New("stored data failed integer cast"))
	}
	return total.Int64, nil
}

// QueryViewSum reads the precomputed total from vw_population_sum.
func (s *Store) QueryViewSum(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	stmt := fmt.Sprintf(`SELECT total_population FROM %s`, s.table(sumView))
	err := s.q.QueryRowContext(ctx, stmt).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.QueryError("view sum", fmt.Errorf("%s returned no rows", sumView))
	}
	if err != nil {
		return 0, model.QueryError("view sum", err)
	}
	if !total.Valid {
		return 0, model.QueryError("view sum", fmt.Errorf("%s returned no total", sumView))
	}
	return total.Int64, nil
}

// Documents lists every stored row, oldest first.
func (s *Store) Documents(ctx context.Context) ([]model.PersistedDocument, error) {
	stmt := fmt.Sprintf(`SELECT id, api_name, doc_id, doc_name, doc_record, is_active, is_deleted, created_at FROM %s ORDER BY created_at, id`,
		s.table(documentsTable))
	rows, err := s.q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, model.QueryError("list documents", err)
	}
	defer rows.Close()

	docs := []model.PersistedDocument{}
	for rows.Next() {
		var d model.PersistedDocument
		var apiName, docID, docName sql.NullString
		if err := rows.Scan(&d.ID, &apiName, &docID, &docName, &d.DocRecord, &d.IsActive, &d.IsDeleted, &d.CreatedAt); err != nil {
			return nil, model.QueryError("list documents", err)
		}
		d.APIName, d.DocID, d.DocName = apiName.String, docID.String, docName.String
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, model.QueryError("list documents", err)
	}
	return docs, nil
}
