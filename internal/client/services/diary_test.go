package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/kidkeeper/internal/client/models"
	"github.com/dmitrijs2005/kidkeeper/internal/common"
	"github.com/dmitrijs2005/kidkeeper/internal/cryptox"
	"github.com/dmitrijs2005/kidkeeper/internal/fieldcrypt"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

func newDiary(e *env) DiaryService {
	return NewDiaryService(e.st.Records, e.crypt, e.family, logging.NewNop())
}

func TestDiary_AddListGet(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "abcd")
	ctx := context.Background()
	svc := newDiary(e)

	first, err := svc.Add(ctx, models.DiaryEntry{Title: "Park", Content: "Fed the ducks", Mood: "happy"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := svc.Add(ctx, models.DiaryEntry{Title: "Rain", Content: "Stayed in", Mood: "calm"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "Fed the ducks", list[1].Content)
	assert.Equal(t, "happy", list[1].Mood)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Park", got.Title)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
}

func TestDiary_ProtectedFieldsEncryptedAtRest(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "abcd")
	ctx := context.Background()

	entry, err := newDiary(e).Add(ctx, models.DiaryEntry{Title: "Secret", Content: "I hid the cookies", Mood: "sly"})
	require.NoError(t, err)

	stored, err := e.st.Records.GetByID(ctx, "abcd", models.KindDiary, entry.ID)
	require.NoError(t, err)

	rec, err := models.DecodePayload(stored.Payload)
	require.NoError(t, err)
	assert.True(t, cryptox.IsEncrypted(rec["title"].(string)))
	assert.True(t, cryptox.IsEncrypted(rec["content"].(string)))
	assert.Equal(t, "sly", rec["mood"])
	assert.NotContains(t, string(stored.Payload), "cookies")
}

func TestDiary_ScopedByFamily(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := newDiary(e)

	e.join(t, "abcd")
	_, err := svc.Add(ctx, models.DiaryEntry{Content: "ours"})
	require.NoError(t, err)

	e.join(t, "wxyz")
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDiary_ForeignCiphertextShowsSentinel(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "abcd")
	ctx := context.Background()

	other := fieldcrypt.New(cryptox.NewKeyCache(), logging.NewNop())
	enc, err := other.EncryptFields(ctx, models.Record{"title": "t", "content": "c"}, models.DiaryFields, "wxyz")
	require.NoError(t, err)
	payload, err := models.EncodePayload(enc)
	require.NoError(t, err)
	require.NoError(t, e.st.Records.CreateOrUpdate(ctx, &models.StoredRecord{
		ID: "foreign", FamilyCode: "abcd", Kind: models.KindDiary, Payload: payload, CreatedAt: 1,
	}))

	got, err := newDiary(e).Get(ctx, "foreign")
	require.NoError(t, err)
	assert.Equal(t, fieldcrypt.DecryptionFailedText, got.Title)
	assert.Equal(t, fieldcrypt.DecryptionFailedText, got.Content)
}

func TestDiary_LegacyPlaintextPassesThrough(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "abcd")
	ctx := context.Background()

	require.NoError(t, e.st.Records.CreateOrUpdate(ctx, &models.StoredRecord{
		ID: "old", FamilyCode: "abcd", Kind: models.KindDiary,
		Payload: []byte(`{"title":"old","content":"written before encryption"}`), CreatedAt: 1,
	}))
	require.NoError(t, e.st.Records.CreateOrUpdate(ctx, &models.StoredRecord{
		ID: "broken", FamilyCode: "abcd", Kind: models.KindDiary, Payload: []byte(`[1,2]`), CreatedAt: 2,
	}))

	list, err := newDiary(e).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "written before encryption", list[0].Content)
}

func TestDiary_Delete(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "abcd")
	ctx := context.Background()
	svc := newDiary(e)

	entry, err := svc.Add(ctx, models.DiaryEntry{Content: "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	_, err = svc.Get(ctx, entry.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, svc.Delete(ctx, entry.ID), common.ErrorNotFound)
}

func TestDiary_Validation(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "abcd")
	ctx := context.Background()
	svc := newDiary(e)

	_, err := svc.Add(ctx, models.DiaryEntry{Title: "no content"})
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)

	_, err = svc.Add(ctx, models.DiaryEntry{Title: strings.Repeat("x", maxTitleLength+1), Content: "c"})
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)
}

func TestDiary_RequiresFamily(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := newDiary(e)

	_, err := svc.Add(ctx, models.DiaryEntry{Content: "c"})
	require.ErrorIs(t, err, common.ErrNoFamilyCode)
	_, err = svc.List(ctx)
	require.ErrorIs(t, err, common.ErrNoFamilyCode)
}
