package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"
	"github.com/m3rciful/kuafsurvey/core/telegram/sender"
	"github.com/m3rciful/kuafsurvey/core/telegram/state"
	"github.com/m3rciful/kuafsurvey/internal/exchange"
	"github.com/m3rciful/kuafsurvey/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func (h *harness) admin(t *testing.T, st state.State) {
	t.Helper()
	require.NoError(t, h.sessions.SetState(context.Background(), uid, st))
}

func TestAdminCallbacksRequirePrivilege(t *testing.T) {
	h := newHarness(t)
	c := callback(cbAdminStats)

	require.NoError(t, h.bot.privileged(h.bot.onStats)(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, textNoPermission, c.responses[0].Text)
	assert.Empty(t, c.sent)
}

func TestSuperAdminOnlyActions(t *testing.T) {
	h := newHarness(t)
	h.gate.privileged = true
	c := callback(cbAdminImport)

	require.NoError(t, h.bot.superAdmin(h.bot.onImportStart)(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, textSuperAdminOnly, c.responses[0].Text)
	assert.True(t, h.session(t).Idle())
}

func TestDenyAccessOnCommand(t *testing.T) {
	h := newHarness(t)
	c := textMessage("/admin")
	assert.False(t, h.bot.AllowAdmin(c))
	require.NoError(t, h.bot.DenyAccess(c))
	assert.Equal(t, []string{textAccessDenied}, c.texts())
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.records.stats = store.Stats{Students: 5, Surveys: 2, Staff: 1}
	h.bot.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	c := callback(cbAdminStats)

	require.NoError(t, h.bot.onStats(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].text, "Jami talabalar: 5")
	assert.Contains(t, c.sent[0].text, "18.10.2026 09:30")
}

func TestExportEmptyReportsNoData(t *testing.T) {
	h := newHarness(t)
	c := callback(cbAdminExport)

	require.NoError(t, h.bot.onExportResponses(c))
	assert.Equal(t, []string{textExportPreparing, textExportEmpty}, c.texts())
}

func TestAddAndRemoveStaff(t *testing.T) {
	h := newHarness(t)
	h.gate.super = true

	require.NoError(t, h.bot.onAddStaffStart(callback(cbAdminAddStaff)))
	assert.Equal(t, stateAdminAddStaff, h.session(t).State)

	bad := textMessage("abc")
	require.NoError(t, h.bot.onAdminInput(bad))
	assert.Equal(t, []string{textBadID}, bad.texts())
	assert.Equal(t, stateAdminAddStaff, h.session(t).State)

	ok := textMessage(" 777 ")
	require.NoError(t, h.bot.onAdminInput(ok))
	assert.Equal(t, []string{fmt.Sprintf(textStaffAdded, 777), textAdminPanel}, ok.texts())
	assert.True(t, h.records.staff[777])
	assert.True(t, h.session(t).Idle())

	require.NoError(t, h.bot.onRemoveStaffStart(callback(cbAdminRemoveStaff)))
	missing := textMessage("778")
	require.NoError(t, h.bot.onAdminInput(missing))
	assert.Equal(t, []string{textStaffNotFound, textAdminPanel}, missing.texts())
}

func TestClearSurveys(t *testing.T) {
	h := newHarness(t)

	empty := callback(cbAdminClear)
	require.NoError(t, h.bot.onClearStart(empty))
	require.Len(t, empty.responses, 1)
	assert.Equal(t, textNothingToClear, empty.responses[0].Text)

	h.records.stats.Surveys = 3
	start := callback(cbAdminClear)
	require.NoError(t, h.bot.onClearStart(start))
	require.Len(t, start.edited, 1)
	assert.Equal(t, fmt.Sprintf(textClearConfirm, 3), start.edited[0].text)

	cancel := callback(cbClearConfirm, "no")
	require.NoError(t, h.bot.onClearConfirm(cancel))
	assert.Equal(t, textClearCancelled, cancel.edited[0].text)
	assert.Zero(t, h.records.cleared)

	confirm := callback(cbClearConfirm, "yes")
	require.NoError(t, h.bot.onClearConfirm(confirm))
	assert.Equal(t, fmt.Sprintf(textCleared, 3), confirm.edited[0].text)
	assert.Equal(t, 3, h.records.cleared)
}

func TestAdminCancelClearsState(t *testing.T) {
	h := newHarness(t)
	h.admin(t, stateAdminAnnounce)
	c := callback(cbAdminCancel)

	require.NoError(t, h.bot.onAdminCancel(c))
	assert.Equal(t, textCancelled, c.edited[0].text)
	assert.True(t, h.session(t).Idle())
}

func TestAnnounceReachesEveryRespondent(t *testing.T) {
	h := newHarness(t)
	h.records.userIDs = []int64{101, 102}
	h.admin(t, stateAdminAnnounce)
	c := textMessage("Ertaga dars yo'q")

	require.NoError(t, h.bot.onAdminInput(c))
	assert.Equal(t, []string{fmt.Sprintf(textAnnounceQueued, 2), textAdminPanel}, c.texts())
	assert.Eventually(t, func() bool { return len(h.api.recipients()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"101", "102"}, h.api.recipients())
}

func TestAnnounceWithoutRecipients(t *testing.T) {
	h := newHarness(t)
	h.admin(t, stateAdminAnnounce)
	c := textMessage("Salom")

	require.NoError(t, h.bot.onAdminInput(c))
	assert.Equal(t, []string{textAnnounceNoUsers, textAdminPanel}, c.texts())
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	h := newHarness(t)
	h.admin(t, stateAdminImport)

	c := documentMessage("roster.csv", 10)
	require.NoError(t, h.bot.onAdminInput(c))
	assert.Equal(t, []string{textImportExpectXLS}, c.texts())

	h.bot.maxImport = 5
	big := documentMessage("roster.xlsx", 10)
	require.NoError(t, h.bot.onAdminInput(big))
	assert.Equal(t, []string{textImportTooLarge}, big.texts())
	assert.Equal(t, stateAdminImport, h.session(t).State)
}

func TestImportRoster(t *testing.T) {
	h := newHarness(t)
	h.api.file = rosterFile(t, "Aliyev Vali", "AB1234567")
	h.admin(t, stateAdminImport)
	c := documentMessage("roster.xlsx", int64(len(h.api.file)))

	require.NoError(t, h.bot.onAdminInput(c))
	require.Len(t, h.records.upserted, 1)
	assert.Equal(t, "AB1234567", h.records.upserted[0].Passport)

	texts := c.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, textImportStarted, texts[0])
	assert.Equal(t, fmt.Sprintf(textImportDone, 1, 0, 0), texts[1])
	assert.Equal(t, textAdminPanel, texts[2])
	assert.True(t, h.session(t).Idle())
}

func TestImportSummaryPrecedesPanel(t *testing.T) {
	disp := sender.NewDispatcher(sender.Options{Workers: 1})
	tghelpers.SetDispatcher(disp)
	t.Cleanup(func() { tghelpers.SetDispatcher(nil) })

	h := newHarness(t)
	h.api.file = rosterFile(t, "Aliyev Vali", "AB1234567")
	h.admin(t, stateAdminImport)
	c := documentMessage("roster.xlsx", int64(len(h.api.file)))
	// The queued notice occupies the only worker until the handler returns.
	c.holdText = textImportStarted
	c.release = make(chan struct{})

	require.NoError(t, h.bot.onAdminInput(c))
	assert.Equal(t, []string{fmt.Sprintf(textImportDone, 1, 0, 0), textAdminPanel}, c.texts())

	close(c.release)
	disp.Close()
	assert.Equal(t, []string{fmt.Sprintf(textImportDone, 1, 0, 0), textAdminPanel, textImportStarted}, c.texts())
}

func TestImportSummaryTruncatesErrors(t *testing.T) {
	res := exchange.ImportResult{Added: 1}
	for i := 0; i < maxImportErrors+3; i++ {
		res.Errors = append(res.Errors, fmt.Sprintf("Qator %d: bad_value", i+2))
	}
	out := importSummary(res)
	assert.Equal(t, maxImportErrors, strings.Count(out, "• "))
	assert.Contains(t, out, "yana 3 ta")
	assert.Contains(t, out, `bad\_value`)
}

func rosterFile(t *testing.T, name, passport string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := make([]interface{}, 29)
	row := make([]interface{}, 29)
	for i := range header {
		header[i] = "col"
		row[i] = ""
	}
	row[0] = "1"
	row[2] = name
	row[10] = passport
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.String()
}
