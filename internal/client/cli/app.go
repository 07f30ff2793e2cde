package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/kidkeeper/internal/client/config"
	"github.com/dmitrijs2005/kidkeeper/internal/client/services"
	"github.com/dmitrijs2005/kidkeeper/internal/client/storage"
	"github.com/dmitrijs2005/kidkeeper/internal/cryptox"
	"github.com/dmitrijs2005/kidkeeper/internal/fieldcrypt"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

type App struct {
	storage *storage.Storage
	family  services.FamilyService
	diary   services.DiaryService
	lessons services.LessonService
	rewards services.RewardService
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens storage described by c and builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	st, err := storage.Open(ctx, storage.Options{LocalPath: c.LocalDBPath, RemoteDSN: c.RemoteDSN})
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}
	return newApp(st, log, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(st *storage.Storage, log logging.Logger, r *bufio.Reader, w io.Writer) *App {
	crypt := fieldcrypt.New(cryptox.NewKeyCache(), log,
		fieldcrypt.WithDegradedHook(func(ctx context.Context, field string, err error) {
			fmt.Fprintf(w, "warning: %q was saved without encryption\n", field)
		}))

	family := services.NewFamilyService(st.Local, crypt, log)

	return &App{
		storage: st,
		family:  family,
		diary:   services.NewDiaryService(st.Records, crypt, family, log),
		lessons: services.NewLessonService(st.Records, crypt, family, log),
		rewards: services.NewRewardService(st.Records, crypt, family, log),
		log:     log.With("component", "cli"),
		reader:  r,
		out:     w,
	}
}

// Run greets the user and blocks in the REPL until exit or end of input.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.storage.Close(); err != nil {
			a.log.Error(ctx, "closing storage", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Welcome to kidkeeper (type 'help' for commands)")
	if !a.hasFamily(ctx) {
		fmt.Fprintln(a.out, "No family code yet: type 'join' to enter one.")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) hasFamily(ctx context.Context) bool {
	_, err := a.family.Current(ctx)
	return err == nil
}

func (a *App) getStatus() string {
	if a.hasFamily(context.Background()) {
		return "(family)"
	}
	return "(no family)"
}
