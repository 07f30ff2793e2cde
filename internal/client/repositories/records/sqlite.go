package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/common"
	"github.com/dmitrijs2005/kidkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts a record by id. created_at is kept from the first insert.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, rec *models.StoredRecord) error {
	query := `INSERT INTO records (id, family_code, kind, payload, created_at, deleted)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET payload = excluded.payload,
				deleted = excluded.deleted
			WHERE records.family_code = excluded.family_code AND records.kind = excluded.kind
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.FamilyCode, string(rec.Kind), rec.Payload, rec.CreatedAt, rec.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return checkUpsert(res)
}

// GetByID returns a single non-deleted record.
func (r *SQLiteRepository) GetByID(ctx context.Context, familyCode string, kind models.Kind, id string) (*models.StoredRecord, error) {
	query := `SELECT id, family_code, kind, payload, created_at FROM records
		WHERE id=? AND family_code=? AND kind=? AND deleted=0`
	row := r.db.QueryRowContext(ctx, query, id, familyCode, string(kind))
	return scanRecord(row)
}

// List returns non-deleted records of one kind, newest first.
func (r *SQLiteRepository) List(ctx context.Context, familyCode string, kind models.Kind) ([]*models.StoredRecord, error) {
	query := `SELECT id, family_code, kind, payload, created_at FROM records
		WHERE family_code=? AND kind=? AND deleted=0
		ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, familyCode, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	return scanRecords(rows)
}

// DeleteByID marks a record as deleted. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, familyCode string, kind models.Kind, id string) error {
	query := `UPDATE records SET deleted=1 WHERE id=? AND family_code=? AND kind=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, id, familyCode, string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return checkDelete(res)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(s rowScanner) (*models.StoredRecord, error) {
	var (
		rec  models.StoredRecord
		kind string
	)
	if err := s.Scan(&rec.ID, &rec.FamilyCode, &kind, &rec.Payload, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Kind = models.Kind(kind)
	return &rec, nil
}

func scanRecord(row *sql.Row) (*models.StoredRecord, error) {
	rec, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]*models.StoredRecord, error) {
	defer rows.Close()

	result := make([]*models.StoredRecord, 0)
	for rows.Next() {
		rec, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return result, nil
}

func checkUpsert(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrRecordConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func checkDelete(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	if n != 1 {
		return fmt.Errorf("wrong rows affected count: %d", n)
	}
	return nil
}
