package models

import "time"

// DiaryFields are encrypted on every diary record.
var DiaryFields = []string{"title", "content"}

// DiaryEntry is a child's diary page.
type DiaryEntry struct {
	ID        string
	Title     string
	Content   string
	Mood      string
	CreatedAt time.Time
}

func (d DiaryEntry) ToRecord() Record {
	return Record{"title": d.Title, "content": d.Content, "mood": d.Mood}
}

func DiaryFromRecord(id string, createdAt int64, r Record) DiaryEntry {
	return DiaryEntry{
		ID:        id,
		Title:     stringField(r, "title"),
		Content:   stringField(r, "content"),
		Mood:      stringField(r, "mood"),
		CreatedAt: time.Unix(0, createdAt),
	}
}

// LessonFields are encrypted on every custom lesson record.
var LessonFields = []string{"title", "content"}

// Lesson is a parent-authored classical text lesson scheduled for a day.
type Lesson struct {
	ID        string
	Day       int64
	Title     string
	Content   string
	CreatedAt time.Time
}

func (l Lesson) ToRecord() Record {
	return Record{"day": l.Day, "title": l.Title, "content": l.Content}
}

func LessonFromRecord(id string, createdAt int64, r Record) (Lesson, error) {
	day, err := intField(r, "day")
	if err != nil {
		return Lesson{}, err
	}
	return Lesson{
		ID:        id,
		Day:       day,
		Title:     stringField(r, "title"),
		Content:   stringField(r, "content"),
		CreatedAt: time.Unix(0, createdAt),
	}, nil
}
