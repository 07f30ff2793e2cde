package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/kidkeeper/internal/client/storage"
	"github.com/dmitrijs2005/kidkeeper/internal/cryptox"
	"github.com/dmitrijs2005/kidkeeper/internal/fieldcrypt"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

type env struct {
	st     *storage.Storage
	crypt  *fieldcrypt.Service
	family FamilyService
}

// setupEnv opens a migrated store in a temp dir and installs a deterministic
// clock and id generator.
func setupEnv(t *testing.T) *env {
	t.Helper()

	st, err := storage.Open(context.Background(), storage.Options{
		LocalPath: filepath.Join(t.TempDir(), "kidkeeper.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var seq atomic.Int64
	oldID, oldNow := newID, now
	newID = func() string { return fmt.Sprintf("id-%03d", seq.Add(1)) }
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	now = func() time.Time { return base.Add(time.Duration(tick.Add(1)) * time.Second) }
	t.Cleanup(func() { newID, now = oldID, oldNow })

	crypt := fieldcrypt.New(cryptox.NewKeyCache(), logging.NewNop())
	return &env{
		st:     st,
		crypt:  crypt,
		family: NewFamilyService(st.Local, crypt, logging.NewNop()),
	}
}

func (e *env) join(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, e.family.Join(context.Background(), code))
}
