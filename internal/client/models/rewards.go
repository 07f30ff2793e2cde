package models

import "time"

// GiftFields are encrypted on every gift record.
var GiftFields = []string{"name", "description"}

// Gift is a reward a child can exchange points for.
type Gift struct {
	ID          string
	Name        string
	Description string
	Cost        int64
}

func (g Gift) ToRecord() Record {
	return Record{"name": g.Name, "description": g.Description, "cost": g.Cost}
}

func GiftFromRecord(id string, r Record) (Gift, error) {
	cost, err := intField(r, "cost")
	if err != nil {
		return Gift{}, err
	}
	return Gift{ID: id, Name: stringField(r, "name"), Description: stringField(r, "description"), Cost: cost}, nil
}

// TaskFields are encrypted on every task record.
var TaskFields = []string{"name"}

// Task is a behavior the parents reward with points.
type Task struct {
	ID     string
	Name   string
	Points int64
}

func (t Task) ToRecord() Record {
	return Record{"name": t.Name, "points": t.Points}
}

func TaskFromRecord(id string, r Record) (Task, error) {
	points, err := intField(r, "points")
	if err != nil {
		return Task{}, err
	}
	return Task{ID: id, Name: stringField(r, "name"), Points: points}, nil
}

// PointFields are encrypted on every points ledger record.
var PointFields = []string{"reason"}

// PointEntry is one ledger movement: positive for earned points, negative
// for redeemed gifts or penalties.
type PointEntry struct {
	ID        string
	Delta     int64
	Reason    string
	TaskID    string
	GiftID    string
	CreatedAt time.Time
}

func (p PointEntry) ToRecord() Record {
	return Record{"delta": p.Delta, "reason": p.Reason, "task_id": p.TaskID, "gift_id": p.GiftID}
}

func PointEntryFromRecord(id string, createdAt int64, r Record) (PointEntry, error) {
	delta, err := intField(r, "delta")
	if err != nil {
		return PointEntry{}, err
	}
	return PointEntry{
		ID:        id,
		Delta:     delta,
		Reason:    stringField(r, "reason"),
		TaskID:    stringField(r, "task_id"),
		GiftID:    stringField(r, "gift_id"),
		CreatedAt: time.Unix(0, createdAt),
	}, nil
}
