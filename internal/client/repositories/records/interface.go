package records

import (
	"context"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
)

// Repository describes CRUD operations on stored records. Every lookup is
// scoped to a family code and kind.
type Repository interface {
	// CreateOrUpdate inserts a record or replaces the payload of an existing
	// one with the same id. Returns common.ErrRecordConflict when the id
	// belongs to a different family or kind.
	CreateOrUpdate(ctx context.Context, rec *models.StoredRecord) error

	// GetByID returns a non-deleted record or common.ErrorNotFound.
	GetByID(ctx context.Context, familyCode string, kind models.Kind, id string) (*models.StoredRecord, error)

	// List returns non-deleted records, newest first.
	List(ctx context.Context, familyCode string, kind models.Kind) ([]*models.StoredRecord, error)

	// DeleteByID soft-deletes a record or returns common.ErrorNotFound.
	DeleteByID(ctx context.Context, familyCode string, kind models.Kind, id string) error
}
