package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/common"
	"github.com/dmitrijs2005/kidkeeper/internal/cryptox"
	"github.com/dmitrijs2005/kidkeeper/internal/familycode"
)

// getSimpleText, getMultiline, getNumber and getFamilyCode are indirections
// used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
	getNumber     = GetNumber
	getFamilyCode = GetFamilyCode
)

const timeLayout = "2006-01-02 15:04"

// describe turns service errors into short user-facing messages.
func describe(err error) string {
	var kdErr *cryptox.KeyDerivationError
	switch {
	case errors.Is(err, common.ErrNoFamilyCode):
		return "no family code: type 'join' first"
	case errors.Is(err, common.ErrInvalidFamilyCode):
		return fmt.Sprintf("family code must be %d-%d characters", familycode.MinLength, familycode.MaxLength)
	case errors.Is(err, common.ErrorNotFound):
		return "not found"
	case errors.Is(err, common.ErrInsufficientPoints):
		return err.Error()
	case errors.Is(err, common.ErrInvalidAmount):
		return "amount must be a positive number"
	case errors.Is(err, common.ErrorIncorrectPayload):
		return err.Error()
	case errors.As(err, &kdErr):
		return "could not prepare the family key"
	default:
		return err.Error()
	}
}

// Join prompts for a family code without echo and activates it.
// The entered bytes are wiped before returning.
func (a *App) Join(ctx context.Context) error {
	code, err := getFamilyCode(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(code)

	if err := a.family.Join(ctx, string(code)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Joined. Records are now encrypted with this family code.")
	return nil
}

func (a *App) Leave(ctx context.Context) error {
	if err := a.family.Leave(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Family code forgotten on this device.")
	return nil
}

func (a *App) AddDiary(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	mood, err := getSimpleText(a.reader, "Mood", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "What happened today?", a.out)
	if err != nil {
		return err
	}

	entry, err := a.diary.Add(ctx, models.DiaryEntry{Title: title, Content: content, Mood: mood})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved diary entry %s\n", entry.ID)
	return nil
}

func (a *App) ListDiary(ctx context.Context) error {
	entries, err := a.diary.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "The diary is empty.")
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  %s  %s [%s]\n", e.ID, e.CreatedAt.Format(timeLayout), e.Title, e.Mood)
	}
	return nil
}

func (a *App) ReadDiary(ctx context.Context, id string) error {
	e, err := a.diary.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s [%s]\n\n%s\n", e.CreatedAt.Format(timeLayout), e.Title, e.Mood, e.Content)
	return nil
}

func (a *App) DeleteDiary(ctx context.Context, id string) error {
	if err := a.diary.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) AddLesson(ctx context.Context) error {
	day, err := getNumber(a.reader, "Day number", a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Lesson text", a.out)
	if err != nil {
		return err
	}

	l, err := a.lessons.Add(ctx, models.Lesson{Day: day, Title: title, Content: content})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved lesson %s for day %d\n", l.ID, l.Day)
	return nil
}

func (a *App) ListLessons(ctx context.Context) error {
	lessons, err := a.lessons.List(ctx)
	if err != nil {
		return err
	}
	for _, l := range lessons {
		fmt.Fprintf(a.out, "day %-3d %s  %s\n", l.Day, l.ID, l.Title)
	}
	return nil
}

func (a *App) AddTask(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Task", a.out)
	if err != nil {
		return err
	}
	points, err := getNumber(a.reader, "Points", a.out)
	if err != nil {
		return err
	}

	t, err := a.rewards.AddTask(ctx, models.Task{Name: name, Points: points})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved task %s\n", t.ID)
	return nil
}

func (a *App) ListTasks(ctx context.Context) error {
	tasks, err := a.rewards.ListTasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		fmt.Fprintf(a.out, "%s  +%d  %s\n", t.ID, t.Points, t.Name)
	}
	return nil
}

func (a *App) CompleteTask(ctx context.Context, id string) error {
	p, err := a.rewards.CompleteTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "+%d points for %q\n", p.Delta, p.Reason)
	return nil
}

func (a *App) AddGift(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Gift", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	cost, err := getNumber(a.reader, "Cost in points", a.out)
	if err != nil {
		return err
	}

	g, err := a.rewards.AddGift(ctx, models.Gift{Name: name, Description: desc, Cost: cost})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved gift %s\n", g.ID)
	return nil
}

func (a *App) ListGifts(ctx context.Context) error {
	gifts, err := a.rewards.ListGifts(ctx)
	if err != nil {
		return err
	}
	for _, g := range gifts {
		fmt.Fprintf(a.out, "%s  %d pts  %s  %s\n", g.ID, g.Cost, g.Name, g.Description)
	}
	return nil
}

func (a *App) Redeem(ctx context.Context, id string) error {
	p, err := a.rewards.Redeem(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Redeemed %q for %d points\n", p.Reason, -p.Delta)
	return nil
}

// LogPoints records a manual credit or penalty.
func (a *App) LogPoints(ctx context.Context) error {
	delta, err := getNumber(a.reader, "Points (negative for a penalty)", a.out)
	if err != nil {
		return err
	}
	reason, err := getSimpleText(a.reader, "Reason", a.out)
	if err != nil {
		return err
	}

	if _, err := a.rewards.LogPoints(ctx, delta, reason); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged.")
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	b, err := a.rewards.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %d points\n", b)
	return nil
}

func (a *App) History(ctx context.Context) error {
	h, err := a.rewards.History(ctx)
	if err != nil {
		return err
	}
	for _, p := range h {
		fmt.Fprintf(a.out, "%s  %+d  %s\n", p.CreatedAt.Format(timeLayout), p.Delta, p.Reason)
	}
	return nil
}
