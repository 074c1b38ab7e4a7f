package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kuafsurvey/internal/store"
)

type fakeRoster struct {
	stats    store.Stats
	statsErr error
	got      []store.Student
}

func (f *fakeRoster) Stats(context.Context) (store.Stats, error) { return f.stats, f.statsErr }

func (f *fakeRoster) UpsertStudent(_ context.Context, s store.Student) (store.UpsertResult, error) {
	f.got = append(f.got, s)
	return store.UpsertResult{Action: store.ActionAdded}, nil
}

func writeRoster(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"#", "ID", "F.I.O"}
	row := make([]interface{}, 11)
	for i := range row {
		row[i] = ""
	}
	row[2] = "Aliyev Vali"
	row[10] = "AB1234567"
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSeedRosterImportsIntoEmptyTable(t *testing.T) {
	dst := &fakeRoster{}
	require.NoError(t, seedRoster(context.Background(), dst, writeRoster(t)))
	require.Len(t, dst.got, 1)
	assert.Equal(t, "Aliyev Vali", dst.got[0].Fullname)
}

func TestSeedRosterSkips(t *testing.T) {
	ctx := context.Background()

	populated := &fakeRoster{stats: store.Stats{Students: 3}}
	require.NoError(t, seedRoster(ctx, populated, writeRoster(t)))
	assert.Empty(t, populated.got)

	unset := &fakeRoster{}
	require.NoError(t, seedRoster(ctx, unset, " "))
	assert.Empty(t, unset.got)

	missing := &fakeRoster{}
	require.NoError(t, seedRoster(ctx, missing, filepath.Join(t.TempDir(), "none.xlsx")))
	assert.Empty(t, missing.got)
}

func TestSeedRosterFailsOnStoreError(t *testing.T) {
	dst := &fakeRoster{statsErr: errors.New("db down")}
	require.Error(t, seedRoster(context.Background(), dst, writeRoster(t)))
}

type respondContext struct {
	tele.Context
	responded int
}

func (r *respondContext) Respond(...*tele.CallbackResponse) error {
	r.responded++
	return nil
}

func TestOnLimitedAnswersCallbacksOnly(t *testing.T) {
	cb := &respondContext{Context: tele.NewContext(nil, tele.Update{Callback: &tele.Callback{ID: "1"}})}
	require.NoError(t, onLimited(cb))
	assert.Equal(t, 1, cb.responded)

	msg := &respondContext{Context: tele.NewContext(nil, tele.Update{Message: &tele.Message{Text: "hi"}})}
	require.NoError(t, onLimited(msg))
	assert.Zero(t, msg.responded)
}

func TestCountUpdates(t *testing.T) {
	c := tele.NewContext(nil, tele.Update{Message: &tele.Message{Location: &tele.Location{}}})
	called := false
	h := countUpdates(func(tele.Context) error {
		called = true
		return nil
	})
	require.NoError(t, h(c))
	assert.True(t, called)
}
