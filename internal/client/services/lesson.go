package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

// LessonService manages parent-authored custom lessons. Titles and texts are
// encrypted; the scheduled day is not.
type LessonService interface {
	Add(ctx context.Context, lesson models.Lesson) (models.Lesson, error)
	List(ctx context.Context) ([]models.Lesson, error)
	Get(ctx context.Context, id string) (models.Lesson, error)
}

type lessonService struct {
	store *recordStore
}

func NewLessonService(repo records.Repository, crypt FieldCrypter, family FamilyService, log logging.Logger) LessonService {
	return &lessonService{
		store: newRecordStore(models.KindLesson, models.LessonFields, repo, crypt, family, log),
	}
}

func (s *lessonService) Add(ctx context.Context, lesson models.Lesson) (models.Lesson, error) {
	err := validateInput(validation.Errors{
		"day":     validation.Validate(lesson.Day, validation.Required, validation.Min(int64(1))),
		"title":   requiredText(lesson.Title, maxTitleLength),
		"content": requiredText(lesson.Content, maxContentLength),
	})
	if err != nil {
		return models.Lesson{}, err
	}

	id, createdAt, err := s.store.create(ctx, lesson.ToRecord())
	if err != nil {
		return models.Lesson{}, err
	}
	lesson.ID = id
	lesson.CreatedAt = unixTime(createdAt)
	return lesson, nil
}

// List returns lessons ordered by day, then by creation time.
func (s *lessonService) List(ctx context.Context) ([]models.Lesson, error) {
	rows, err := s.store.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Lesson, 0, len(rows))
	for _, r := range rows {
		l, err := models.LessonFromRecord(r.ID, r.CreatedAt, r.Record)
		if err != nil {
			return nil, fmt.Errorf("lesson %s: %w", r.ID, err)
		}
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b models.Lesson) int {
		if c := cmp.Compare(a.Day, b.Day); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *lessonService) Get(ctx context.Context, id string) (models.Lesson, error) {
	r, err := s.store.get(ctx, id)
	if err != nil {
		return models.Lesson{}, err
	}
	return models.LessonFromRecord(r.ID, r.CreatedAt, r.Record)
}
