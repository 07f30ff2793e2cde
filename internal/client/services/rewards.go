package services

import (
	"context"
	"fmt"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/kidkeeper/internal/common"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

// RewardService runs the behavior points economy: tasks earn points, gifts
// cost points, and every movement is kept in an encrypted ledger.
//
// Contract:
//   - AddTask/AddGift: amounts must be positive (common.ErrInvalidAmount).
//   - CompleteTask: credits the task's points to the ledger.
//   - LogPoints: manual credit or penalty; delta must be non-zero.
//   - Redeem: debits a gift's cost, or returns common.ErrInsufficientPoints.
//   - Balance: sum of every ledger delta.
type RewardService interface {
	AddTask(ctx context.Context, task models.Task) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	CompleteTask(ctx context.Context, taskID string) (models.PointEntry, error)
	LogPoints(ctx context.Context, delta int64, reason string) (models.PointEntry, error)
	Balance(ctx context.Context) (int64, error)
	History(ctx context.Context) ([]models.PointEntry, error)
	AddGift(ctx context.Context, gift models.Gift) (models.Gift, error)
	ListGifts(ctx context.Context) ([]models.Gift, error)
	Redeem(ctx context.Context, giftID string) (models.PointEntry, error)
}

type rewardService struct {
	tasks  *recordStore
	gifts  *recordStore
	ledger *recordStore
	log    logging.Logger

	// serializes balance checks with ledger writes
	mu sync.Mutex
}

func NewRewardService(repo records.Repository, crypt FieldCrypter, family FamilyService, log logging.Logger) RewardService {
	return &rewardService{
		tasks:  newRecordStore(models.KindTask, models.TaskFields, repo, crypt, family, log),
		gifts:  newRecordStore(models.KindGift, models.GiftFields, repo, crypt, family, log),
		ledger: newRecordStore(models.KindPoints, models.PointFields, repo, crypt, family, log),
		log:    log.With("component", "rewards"),
	}
}

func (s *rewardService) AddTask(ctx context.Context, task models.Task) (models.Task, error) {
	if task.Points <= 0 {
		return models.Task{}, common.ErrInvalidAmount
	}
	if err := validateInput(validation.Errors{"name": requiredText(task.Name, maxTitleLength)}); err != nil {
		return models.Task{}, err
	}

	id, _, err := s.tasks.create(ctx, task.ToRecord())
	if err != nil {
		return models.Task{}, err
	}
	task.ID = id
	return task, nil
}

func (s *rewardService) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.tasks.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		t, err := models.TaskFromRecord(r.ID, r.Record)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", r.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *rewardService) CompleteTask(ctx context.Context, taskID string) (models.PointEntry, error) {
	r, err := s.tasks.get(ctx, taskID)
	if err != nil {
		return models.PointEntry{}, err
	}
	task, err := models.TaskFromRecord(r.ID, r.Record)
	if err != nil {
		return models.PointEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLedger(ctx, models.PointEntry{Delta: task.Points, Reason: task.Name, TaskID: task.ID})
}

func (s *rewardService) LogPoints(ctx context.Context, delta int64, reason string) (models.PointEntry, error) {
	if delta == 0 {
		return models.PointEntry{}, common.ErrInvalidAmount
	}
	if err := validateInput(validation.Errors{"reason": requiredText(reason, maxTitleLength)}); err != nil {
		return models.PointEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLedger(ctx, models.PointEntry{Delta: delta, Reason: reason})
}

func (s *rewardService) Balance(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance(ctx)
}

// History returns ledger entries newest first.
func (s *rewardService) History(ctx context.Context) ([]models.PointEntry, error) {
	rows, err := s.ledger.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PointEntry, 0, len(rows))
	for _, r := range rows {
		p, err := models.PointEntryFromRecord(r.ID, r.CreatedAt, r.Record)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", r.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *rewardService) AddGift(ctx context.Context, gift models.Gift) (models.Gift, error) {
	if gift.Cost <= 0 {
		return models.Gift{}, common.ErrInvalidAmount
	}
	err := validateInput(validation.Errors{
		"name":        requiredText(gift.Name, maxTitleLength),
		"description": validation.Validate(gift.Description, validation.RuneLength(0, maxContentLength)),
	})
	if err != nil {
		return models.Gift{}, err
	}

	id, _, err := s.gifts.create(ctx, gift.ToRecord())
	if err != nil {
		return models.Gift{}, err
	}
	gift.ID = id
	return gift, nil
}

func (s *rewardService) ListGifts(ctx context.Context) ([]models.Gift, error) {
	rows, err := s.gifts.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Gift, 0, len(rows))
	for _, r := range rows {
		g, err := models.GiftFromRecord(r.ID, r.Record)
		if err != nil {
			return nil, fmt.Errorf("gift %s: %w", r.ID, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *rewardService) Redeem(ctx context.Context, giftID string) (models.PointEntry, error) {
	r, err := s.gifts.get(ctx, giftID)
	if err != nil {
		return models.PointEntry{}, err
	}
	gift, err := models.GiftFromRecord(r.ID, r.Record)
	if err != nil {
		return models.PointEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.balance(ctx)
	if err != nil {
		return models.PointEntry{}, err
	}
	if balance < gift.Cost {
		return models.PointEntry{}, fmt.Errorf("%w: have %d, need %d", common.ErrInsufficientPoints, balance, gift.Cost)
	}

	return s.appendLedger(ctx, models.PointEntry{Delta: -gift.Cost, Reason: gift.Name, GiftID: gift.ID})
}

// balance must be called with s.mu held.
func (s *rewardService) balance(ctx context.Context) (int64, error) {
	history, err := s.History(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, p := range history {
		total += p.Delta
	}
	return total, nil
}

// appendLedger must be called with s.mu held.
func (s *rewardService) appendLedger(ctx context.Context, p models.PointEntry) (models.PointEntry, error) {
	id, createdAt, err := s.ledger.create(ctx, p.ToRecord())
	if err != nil {
		return models.PointEntry{}, err
	}
	p.ID = id
	p.CreatedAt = unixTime(createdAt)
	s.log.Debug(ctx, "points logged", "id", id, "delta", p.Delta)
	return p, nil
}
