package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/m3rciful/kuafsurvey/core/telegram/callbacks"
	"github.com/m3rciful/kuafsurvey/core/telegram/format"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"
	"github.com/m3rciful/kuafsurvey/core/telegram/sender"
	"github.com/m3rciful/kuafsurvey/core/telegram/state"
	"github.com/m3rciful/kuafsurvey/internal/exchange"
	"github.com/m3rciful/kuafsurvey/internal/metrics"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// Admin conversation states.
const (
	stateAdminImport      state.State = "admin_import"
	stateAdminAddStaff    state.State = "admin_add_staff"
	stateAdminRemoveStaff state.State = "admin_remove_staff"
	stateAdminAnnounce    state.State = "admin_announce"
)

// maxImportErrors bounds the row errors echoed back after an import.
const maxImportErrors = 10

// enqueueRetry is the pause before retrying a full dispatcher queue.
var enqueueRetry = 200 * time.Millisecond

func (b *Bot) onAdmin(c tele.Context) error {
	if err := b.sessions.Clear(tghelpers.BuildContext(c), senderID(c)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	state.Forget(c)
	return c.Send(textAdminPanel, adminMarkup())
}

// showPanel returns the admin to the panel after a finished action.
func (b *Bot) showPanel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := b.sessions.Clear(ctx, senderID(c)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	state.Forget(c)
	return c.Send(textAdminPanel, adminMarkup())
}

func (b *Bot) onExportResponses(c tele.Context) error {
	return b.export(c, "responses", textExportResponses, exchange.ExportResponses)
}

func (b *Bot) onExportStudents(c tele.Context) error {
	return b.export(c, "students", textExportStudents, exchange.ExportStudents)
}

type exportFunc func(ctx context.Context, src exchange.Sources, now time.Time) (exchange.File, error)

func (b *Bot) export(c tele.Context, kind, caption string, run exportFunc) error {
	respond(c)
	ctx := tghelpers.BuildContext(c)
	if err := tghelpers.SendText(c, textExportPreparing); err != nil {
		logger.Debug(ctx, logger.CompAdmin, "export.notice", logger.Err(err))
	}

	now := b.now()
	file, err := run(ctx, b.records, now)
	if err != nil {
		level := logger.Warn
		if errors.Is(err, exchange.ErrEmpty) {
			level = logger.Info
		}
		level(ctx, logger.CompAdmin, "export."+kind, slog.String("status", "empty"), logger.Err(err))
		return c.Send(textExportEmpty)
	}
	metrics.RecordExchangeRows("export", kind, file.Rows)

	doc := &tele.Document{
		File:     tele.FromReader(file.Data),
		FileName: file.Name,
		Caption:  fmt.Sprintf("%s\n\n📊 Jami: %d ta\n📅 %s", caption, file.Rows, now.Format("02.01.2006 15:04")),
	}
	if err := c.Send(doc); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	logger.Info(ctx, logger.CompAdmin, "export."+kind,
		slog.String("status", "ok"),
		slog.Int("rows", file.Rows),
		slog.String("file", file.Name),
	)
	return nil
}

func (b *Bot) onStats(c tele.Context) error {
	respond(c)
	ctx := tghelpers.BuildContext(c)
	st, err := b.records.Stats(ctx)
	if err != nil {
		logger.Error(ctx, logger.CompAdmin, "stats", logger.Err(err))
		return c.Send(textError)
	}
	return tghelpers.SendMD(c, statsText(st, b.now()))
}

func (b *Bot) onImportStart(c tele.Context) error {
	return b.prompt(c, stateAdminImport, textImportPrompt)
}

func (b *Bot) onAddStaffStart(c tele.Context) error {
	return b.prompt(c, stateAdminAddStaff, textStaffPrompt)
}

func (b *Bot) onRemoveStaffStart(c tele.Context) error {
	return b.prompt(c, stateAdminRemoveStaff, textRemovePrompt)
}

func (b *Bot) onAnnounceStart(c tele.Context) error {
	return b.prompt(c, stateAdminAnnounce, textAnnouncePrompt)
}

// prompt moves the admin into st and asks for its input.
func (b *Bot) prompt(c tele.Context, st state.State, text string) error {
	respond(c)
	if err := b.sessions.SetState(tghelpers.BuildContext(c), senderID(c), st); err != nil {
		return fmt.Errorf("set admin state: %w", err)
	}
	state.Forget(c)
	return c.Send(text, adminCancelMarkup())
}

func (b *Bot) onAdminCancel(c tele.Context) error {
	respond(c)
	if err := b.sessions.Clear(tghelpers.BuildContext(c), senderID(c)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	state.Forget(c)
	if err := c.Edit(textCancelled); err != nil {
		return c.Send(textCancelled)
	}
	return nil
}

func (b *Bot) onClearStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	st, err := b.records.Stats(ctx)
	if err != nil {
		respond(c)
		logger.Error(ctx, logger.CompAdmin, "clear.count", logger.Err(err))
		return c.Send(textError)
	}
	if st.Surveys == 0 {
		return c.Respond(&tele.CallbackResponse{Text: textNothingToClear, ShowAlert: true})
	}
	respond(c)
	return c.Edit(fmt.Sprintf(textClearConfirm, st.Surveys), clearConfirmMarkup())
}

func (b *Bot) onClearConfirm(c tele.Context) error {
	respond(c)
	ctx := tghelpers.BuildContext(c)
	if callbacks.CallbackPayload(c) != "yes" {
		return c.Edit(textClearCancelled)
	}
	n, err := b.records.ClearSurveys(ctx)
	if err != nil {
		logger.Error(ctx, logger.CompAdmin, "clear", logger.Err(err))
		return c.Edit(textError)
	}
	logger.Warn(ctx, logger.CompAdmin, "clear",
		slog.Int("deleted", n),
		slog.Int64("by", senderID(c)),
	)
	return c.Edit(fmt.Sprintf(textCleared, n))
}

// onAdminInput handles messages sent while an admin action waits for input.
func (b *Bot) onAdminInput(c tele.Context) error {
	sess, err := state.Load(c, b.sessions)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	switch sess.State {
	case stateAdminImport:
		return b.importRoster(c)
	case stateAdminAddStaff:
		return b.changeStaff(c, true)
	case stateAdminRemoveStaff:
		return b.changeStaff(c, false)
	case stateAdminAnnounce:
		return b.announce(c)
	}
	return nil
}

func (b *Bot) changeStaff(c tele.Context, add bool) error {
	ctx := tghelpers.BuildContext(c)
	id, err := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 64)
	if err != nil || id <= 0 {
		return c.Send(textBadID, adminCancelMarkup())
	}

	var (
		ok    bool
		event string
		reply string
	)
	if add {
		event = "staff.add"
		ok, err = b.records.AddStaff(ctx, id, senderID(c), "")
		reply = textStaffAddFailed
		if ok {
			reply = fmt.Sprintf(textStaffAdded, id)
		}
	} else {
		event = "staff.remove"
		ok, err = b.records.RemoveStaff(ctx, id)
		reply = textStaffNotFound
		if ok {
			reply = fmt.Sprintf(textStaffRemoved, id)
		}
	}
	if err != nil {
		logger.Error(ctx, logger.CompAdmin, event, slog.Int64("staff_id", id), logger.Err(err))
		reply = textError
	} else {
		logger.Info(ctx, logger.CompAdmin, event,
			slog.Int64("staff_id", id),
			slog.Bool("changed", ok),
			slog.Int64("by", senderID(c)),
		)
	}
	if err := c.Send(reply); err != nil {
		return err
	}
	return b.showPanel(c)
}

func (b *Bot) importRoster(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	msg := c.Message()
	if msg == nil || msg.Document == nil || !strings.HasSuffix(strings.ToLower(msg.Document.FileName), ".xlsx") {
		return c.Send(textImportExpectXLS, adminCancelMarkup())
	}
	doc := msg.Document
	if b.maxImport > 0 && doc.FileSize > b.maxImport {
		return c.Send(textImportTooLarge, adminCancelMarkup())
	}
	if b.api == nil {
		return fmt.Errorf("bot: telegram api is not configured")
	}
	if err := tghelpers.SendText(c, textImportStarted); err != nil {
		logger.Debug(ctx, logger.CompAdmin, "import.notice", logger.Err(err))
	}

	importID := uuid.NewString()
	res, err := b.runImport(ctx, importID, &doc.File)
	if err != nil {
		logger.Error(ctx, logger.CompAdmin, "import",
			slog.String("import_id", importID),
			slog.String("file", doc.FileName),
			logger.Err(err),
		)
		if sendErr := c.Send(fmt.Sprintf(textImportFailed, err.Error())); sendErr != nil {
			return sendErr
		}
		return b.showPanel(c)
	}

	metrics.RecordExchangeRows("import", "added", res.Added)
	metrics.RecordExchangeRows("import", "updated", res.Updated)
	metrics.RecordExchangeRows("import", "skipped", res.Skipped)
	metrics.RecordExchangeRows("import", "error", len(res.Errors))
	logger.Info(ctx, logger.CompAdmin, "import",
		slog.String("import_id", importID),
		slog.String("file", doc.FileName),
		slog.Int("added", res.Added),
		slog.Int("updated", res.Updated),
		slog.Int("errors", len(res.Errors)),
	)

	// Sent inline so the summary lands before the panel.
	if err := c.Send(importSummary(res), &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
		return err
	}
	return b.showPanel(c)
}

// runImport stores the upload in a temporary file and feeds it to the importer.
func (b *Bot) runImport(ctx context.Context, importID string, file *tele.File) (exchange.ImportResult, error) {
	rc, err := b.api.File(file)
	if err != nil {
		return exchange.ImportResult{}, fmt.Errorf("download: %w", err)
	}
	defer rc.Close()

	dir := b.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "import-"+importID+".xlsx")
	f, err := os.Create(path)
	if err != nil {
		return exchange.ImportResult{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(path)
	}()

	var src io.Reader = rc
	if b.maxImport > 0 {
		src = io.LimitReader(rc, b.maxImport+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return exchange.ImportResult{}, fmt.Errorf("download: %w", err)
	}
	if b.maxImport > 0 && n > b.maxImport {
		return exchange.ImportResult{}, fmt.Errorf("file exceeds %d bytes", b.maxImport)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return exchange.ImportResult{}, fmt.Errorf("rewind temp file: %w", err)
	}
	return exchange.ImportStudents(ctx, b.records, f)
}

func importSummary(res exchange.ImportResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, textImportDone, res.Added, res.Updated, len(res.Errors))
	if len(res.Errors) == 0 {
		return sb.String()
	}
	sb.WriteString("\n")
	for i, e := range res.Errors {
		if i == maxImportErrors {
			fmt.Fprintf(&sb, "\n... va yana %d ta", len(res.Errors)-maxImportErrors)
			break
		}
		sb.WriteString("\n• ")
		sb.WriteString(format.MD(e))
	}
	return sb.String()
}

// announce queues the text for every user with a stored survey. Delivery runs
// on the dispatcher, so the reply only reports how many were queued.
func (b *Bot) announce(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return c.Send(textAnnounceEmpty, adminCancelMarkup())
	}
	ids, err := b.records.SurveyUserIDs(ctx)
	if err != nil {
		logger.Error(ctx, logger.CompAdmin, "announce", logger.Err(err))
		return c.Send(textError)
	}
	if len(ids) == 0 {
		if err := c.Send(textAnnounceNoUsers); err != nil {
			return err
		}
		return b.showPanel(c)
	}
	if b.api == nil {
		return fmt.Errorf("bot: telegram api is not configured")
	}

	batch := uuid.NewString()
	logger.Info(ctx, logger.CompAdmin, "announce",
		slog.String("batch", batch),
		slog.Int("recipients", len(ids)),
		slog.Int64("by", senderID(c)),
	)
	// Detached from the update: the update context ends with the handler.
	bctx := logger.WithRID(context.WithoutCancel(ctx), batch)
	go b.broadcast(bctx, ids, text)

	if err := c.Send(fmt.Sprintf(textAnnounceQueued, len(ids))); err != nil {
		return err
	}
	return b.showPanel(c)
}

func (b *Bot) broadcast(ctx context.Context, ids []int64, text string) {
	var queued, failed int
	for _, id := range ids {
		to := tele.ChatID(id)
		run := func() error {
			_, err := b.api.Send(to, text)
			return err
		}
		if b.dispatcher == nil {
			if err := run(); err != nil {
				failed++
				logger.Debug(ctx, logger.CompSender, "announce.send", slog.Int64("chat_id", id), logger.Err(err))
				continue
			}
			queued++
			continue
		}
		if err := b.enqueue(ctx, run); err != nil {
			failed++
			continue
		}
		queued++
	}
	metrics.RecordBroadcast("queued", queued)
	metrics.RecordBroadcast("failed", failed)
	logger.Info(ctx, logger.CompAdmin, "announce.done",
		slog.Int("queued", queued),
		slog.Int("failed", failed),
	)
}

// enqueue waits for room in the dispatcher queue instead of dropping the job.
func (b *Bot) enqueue(ctx context.Context, run func() error) error {
	for {
		err := b.dispatcher.Enqueue(ctx, "announce", "sendMessage", run)
		if !errors.Is(err, sender.ErrQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(enqueueRetry):
		}
	}
}
