package records

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/dbx"
)

// PostgresRepository implements Repository over a remote PostgreSQL database.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrUpdate upserts a record by id. If the id exists under another
// family or kind no row is updated and common.ErrRecordConflict is returned.
func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, rec *models.StoredRecord) error {
	query := `
		INSERT INTO records (id, family_code, kind, payload, created_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			deleted = EXCLUDED.deleted
			WHERE records.family_code = EXCLUDED.family_code AND records.kind = EXCLUDED.kind;
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.FamilyCode, string(rec.Kind), string(rec.Payload), rec.CreatedAt, rec.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkUpsert(res)
}

// GetByID returns a single non-deleted record.
func (r *PostgresRepository) GetByID(ctx context.Context, familyCode string, kind models.Kind, id string) (*models.StoredRecord, error) {
	query := `SELECT id, family_code, kind, payload, created_at FROM records
		WHERE id=$1 AND family_code=$2 AND kind=$3 AND NOT deleted`
	row := r.db.QueryRowContext(ctx, query, id, familyCode, string(kind))
	return scanRecord(row)
}

// List returns non-deleted records of one kind, newest first.
func (r *PostgresRepository) List(ctx context.Context, familyCode string, kind models.Kind) ([]*models.StoredRecord, error) {
	query := `SELECT id, family_code, kind, payload, created_at FROM records
		WHERE family_code=$1 AND kind=$2 AND NOT deleted
		ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, familyCode, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	return scanRecords(rows)
}

// DeleteByID soft-deletes a record.
func (r *PostgresRepository) DeleteByID(ctx context.Context, familyCode string, kind models.Kind, id string) error {
	query := `UPDATE records SET deleted=TRUE WHERE id=$1 AND family_code=$2 AND kind=$3 AND NOT deleted`
	res, err := r.db.ExecContext(ctx, query, id, familyCode, string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return checkDelete(res)
}
