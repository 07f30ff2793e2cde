// Package records provides the generic record persistence boundary used by
// the client services.
//
// # Data Model
//
// A record is an opaque JSON payload stored under (family_code, kind, id).
// Protected string fields inside the payload are already ciphertext when they
// reach this package; repositories never see keys or plaintext of those
// fields. Deletion is soft (deleted flag).
//
// Key Types
//
//   - type Repository: interface used by higher-level services
//   - type SQLiteRepository: local SQLite implementation over dbx.DBTX
//   - type PostgresRepository: remote PostgreSQL implementation over dbx.DBTX
//
// Typical Usage
//
//	repo := records.NewSQLiteRepository(db)
//	_ = repo.CreateOrUpdate(ctx, rec)
//	list, _ := repo.List(ctx, code, models.KindDiary)
//	one, _ := repo.GetByID(ctx, code, models.KindDiary, id)
//	_ = repo.DeleteByID(ctx, code, models.KindDiary, id)
package records
