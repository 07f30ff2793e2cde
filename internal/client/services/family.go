package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/kidkeeper/internal/common"
	"github.com/dmitrijs2005/kidkeeper/internal/dbx"
	"github.com/dmitrijs2005/kidkeeper/internal/familycode"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

// FamilyService manages the family code that scopes and protects every
// record on this device.
//
// Contract:
//   - Join: validate the code, derive its key and remember it locally.
//   - Current: return the remembered code or common.ErrNoFamilyCode.
//   - Leave: forget the code and every cached key.
type FamilyService interface {
	Join(ctx context.Context, code string) error
	Current(ctx context.Context) (string, error)
	Leave(ctx context.Context) error
}

type familyService struct {
	db    *sql.DB
	crypt FieldCrypter
	log   logging.Logger
}

// NewFamilyService returns a FamilyService that keeps the code in db's
// metadata table.
func NewFamilyService(db *sql.DB, crypt FieldCrypter, log logging.Logger) FamilyService {
	return &familyService{db: db, crypt: crypt, log: log.With("component", "family")}
}

func (f *familyService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(f.db)
}

// Join switches the device to code. Keys cached for a previous code are
// dropped before the new key is derived.
func (f *familyService) Join(ctx context.Context, code string) error {
	if err := familycode.Validate(code); err != nil {
		return err
	}

	f.crypt.ClearKeyCache()
	if _, err := f.crypt.DeriveKey(ctx, code); err != nil {
		return fmt.Errorf("error deriving family key: %w", err)
	}

	err := dbx.WithTx(ctx, f.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		return repo.Set(ctx, common.MetadataKeyFamilyCode, []byte(code))
	})
	if err != nil {
		return fmt.Errorf("error saving family code: %w", err)
	}

	f.log.Info(ctx, "joined family")
	return nil
}

func (f *familyService) Current(ctx context.Context) (string, error) {
	v, err := f.getMetadataRepo().Get(ctx, common.MetadataKeyFamilyCode)
	if errors.Is(err, common.ErrorNotFound) || (err == nil && len(v) == 0) {
		return "", common.ErrNoFamilyCode
	}
	if err != nil {
		return "", fmt.Errorf("error reading family code: %w", err)
	}
	return string(v), nil
}

func (f *familyService) Leave(ctx context.Context) error {
	if err := f.getMetadataRepo().Delete(ctx, common.MetadataKeyFamilyCode); err != nil {
		return fmt.Errorf("error clearing family code: %w", err)
	}
	f.crypt.ClearKeyCache()
	f.log.Info(ctx, "left family")
	return nil
}
