package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/kidkeeper/internal/cryptox"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

// FieldCrypter is the field-level encryption surface the services depend on.
// *fieldcrypt.Service implements it.
type FieldCrypter interface {
	DeriveKey(ctx context.Context, familyCode string) (*cryptox.Key, error)
	EncryptFields(ctx context.Context, record map[string]any, fields []string, familyCode string) (map[string]any, error)
	DecryptFields(ctx context.Context, record map[string]any, fields []string, familyCode string) (map[string]any, error)
	DecryptArrayFields(ctx context.Context, records []map[string]any, fields []string, familyCode string) ([]map[string]any, error)
	ClearKeyCache()
}

// Test seams.
var (
	newID = uuid.NewString
	now   = time.Now
)

// decoded is a stored record with its payload decoded and decrypted.
type decoded struct {
	ID        string
	CreatedAt int64
	Record    models.Record
}

// recordStore moves records of one kind between services and a repository,
// encrypting fields on the way in and decrypting them on the way out.
type recordStore struct {
	kind   models.Kind
	fields []string
	repo   records.Repository
	crypt  FieldCrypter
	family FamilyService
	log    logging.Logger
}

func newRecordStore(kind models.Kind, fields []string, repo records.Repository, crypt FieldCrypter, family FamilyService, log logging.Logger) *recordStore {
	return &recordStore{
		kind:   kind,
		fields: fields,
		repo:   repo,
		crypt:  crypt,
		family: family,
		log:    log.With("kind", string(kind)),
	}
}

// create stores rec under a fresh id and returns the id and creation time.
func (s *recordStore) create(ctx context.Context, rec models.Record) (string, int64, error) {
	code, err := s.family.Current(ctx)
	if err != nil {
		return "", 0, err
	}

	enc, err := s.crypt.EncryptFields(ctx, rec, s.fields, code)
	if err != nil {
		return "", 0, fmt.Errorf("encryption error: %w", err)
	}

	payload, err := models.EncodePayload(enc)
	if err != nil {
		return "", 0, err
	}

	stored := &models.StoredRecord{
		ID:         newID(),
		FamilyCode: code,
		Kind:       s.kind,
		Payload:    payload,
		CreatedAt:  now().UnixNano(),
	}
	if err := s.repo.CreateOrUpdate(ctx, stored); err != nil {
		return "", 0, fmt.Errorf("saving error: %w", err)
	}

	s.log.Debug(ctx, "record saved", "id", stored.ID)
	return stored.ID, stored.CreatedAt, nil
}

// get returns one decrypted record.
func (s *recordStore) get(ctx context.Context, id string) (decoded, error) {
	code, err := s.family.Current(ctx)
	if err != nil {
		return decoded{}, err
	}

	stored, err := s.repo.GetByID(ctx, code, s.kind, id)
	if err != nil {
		return decoded{}, fmt.Errorf("error retrieving record: %w", err)
	}

	rec, err := models.DecodePayload(stored.Payload)
	if err != nil {
		return decoded{}, err
	}

	dec, err := s.crypt.DecryptFields(ctx, rec, s.fields, code)
	if err != nil {
		return decoded{}, fmt.Errorf("error decrypting record: %w", err)
	}
	return decoded{ID: stored.ID, CreatedAt: stored.CreatedAt, Record: dec}, nil
}

// list returns every decrypted record of the store's kind, newest first.
// Rows whose payload cannot be parsed are logged and skipped.
func (s *recordStore) list(ctx context.Context) ([]decoded, error) {
	code, err := s.family.Current(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, code, s.kind)
	if err != nil {
		return nil, fmt.Errorf("error: %w", err)
	}

	kept := make([]*models.StoredRecord, 0, len(rows))
	recs := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec, err := models.DecodePayload(row.Payload)
		if err != nil {
			s.log.Warn(ctx, "skipping unreadable record", "id", row.ID, "error", err)
			continue
		}
		kept = append(kept, row)
		recs = append(recs, rec)
	}

	dec, err := s.crypt.DecryptArrayFields(ctx, recs, s.fields, code)
	if err != nil {
		return nil, fmt.Errorf("error decrypting records: %w", err)
	}

	out := make([]decoded, len(kept))
	for i, row := range kept {
		out[i] = decoded{ID: row.ID, CreatedAt: row.CreatedAt, Record: dec[i]}
	}
	return out, nil
}

func (s *recordStore) delete(ctx context.Context, id string) error {
	code, err := s.family.Current(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, code, s.kind, id); err != nil {
		return fmt.Errorf("error deleting record: %w", err)
	}
	return nil
}

func unixTime(ns int64) time.Time {
	return time.Unix(0, ns)
}
