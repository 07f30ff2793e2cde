package services

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

// DiaryService keeps a child's diary. Titles and contents are encrypted.
type DiaryService interface {
	Add(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error)
	List(ctx context.Context) ([]models.DiaryEntry, error)
	Get(ctx context.Context, id string) (models.DiaryEntry, error)
	Delete(ctx context.Context, id string) error
}

type diaryService struct {
	store *recordStore
}

func NewDiaryService(repo records.Repository, crypt FieldCrypter, family FamilyService, log logging.Logger) DiaryService {
	return &diaryService{
		store: newRecordStore(models.KindDiary, models.DiaryFields, repo, crypt, family, log),
	}
}

// Add stores entry and returns it with its id and creation time set.
func (s *diaryService) Add(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error) {
	err := validateInput(validation.Errors{
		"title":   validation.Validate(entry.Title, validation.RuneLength(0, maxTitleLength)),
		"content": requiredText(entry.Content, maxContentLength),
	})
	if err != nil {
		return models.DiaryEntry{}, err
	}

	id, createdAt, err := s.store.create(ctx, entry.ToRecord())
	if err != nil {
		return models.DiaryEntry{}, err
	}
	return models.DiaryFromRecord(id, createdAt, entry.ToRecord()), nil
}

// List returns the diary newest first.
func (s *diaryService) List(ctx context.Context) ([]models.DiaryEntry, error) {
	rows, err := s.store.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.DiaryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.DiaryFromRecord(r.ID, r.CreatedAt, r.Record))
	}
	return out, nil
}

func (s *diaryService) Get(ctx context.Context, id string) (models.DiaryEntry, error) {
	r, err := s.store.get(ctx, id)
	if err != nil {
		return models.DiaryEntry{}, err
	}
	return models.DiaryFromRecord(r.ID, r.CreatedAt, r.Record), nil
}

func (s *diaryService) Delete(ctx context.Context, id string) error {
	return s.store.delete(ctx, id)
}
