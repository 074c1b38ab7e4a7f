package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/kuafsurvey/core/logger"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"
	"github.com/m3rciful/kuafsurvey/core/telegram/keyboard"
	"github.com/m3rciful/kuafsurvey/core/telegram/state"
	"github.com/m3rciful/kuafsurvey/internal/metrics"
	"github.com/m3rciful/kuafsurvey/internal/store"
	"github.com/m3rciful/kuafsurvey/internal/survey"

	tele "gopkg.in/telebot.v4"
)

// onStart drops any session and gates entry on the channel subscription.
// Staff and super admins are never gated.
func (b *Bot) onStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := senderID(c)
	if err := b.sessions.Clear(ctx, uid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	state.Forget(c)

	if !b.gate.IsPrivileged(ctx, uid) && !b.gate.HasSubscription(ctx, uid) {
		return c.Send(textSubscribe, subscribeMarkup(b.gate.Channel()))
	}
	return b.beginSearch(c)
}

func (b *Bot) onCheckSubscription(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := senderID(c)
	if !b.gate.IsPrivileged(ctx, uid) && !b.gate.HasSubscription(ctx, uid) {
		return c.Respond(&tele.CallbackResponse{Text: textNotSubscribed, ShowAlert: true})
	}
	if err := b.sessions.Clear(ctx, uid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	state.Forget(c)
	respond(c)
	if err := c.Edit(textSubscribed); err != nil {
		logger.Debug(ctx, logger.CompTG, "subscription.edit", logger.Err(err))
	}
	return b.beginSearch(c)
}

func (b *Bot) beginSearch(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := senderID(c)
	if err := b.sessions.SetState(ctx, uid, stepState(survey.StepSearch)); err != nil {
		return fmt.Errorf("set search state: %w", err)
	}
	state.Forget(c)
	if err := c.Send(textWelcome, keyboard.RemoveKeyboard()); err != nil {
		b.rollback(c, state.NewSession())
		return err
	}
	return nil
}

// search resolves the subject typed by the user and starts the questionnaire.
func (b *Bot) search(c tele.Context, sess *state.Session) error {
	ctx := tghelpers.BuildContext(c)
	q := survey.ClassifyQuery(c.Text())
	if q.Empty() {
		return c.Send(textWelcome)
	}

	st, err := b.records.FindSubject(ctx, q)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordSearch(q.Kind.String(), "not_found")
		logger.Info(ctx, logger.CompSurvey, "search",
			slog.String("kind", q.Kind.String()),
			slog.String("outcome", "not_found"),
		)
		return c.Send(textNotFound)
	case err != nil:
		metrics.RecordSearch(q.Kind.String(), "error")
		return fmt.Errorf("find subject: %w", err)
	}
	metrics.RecordSearch(q.Kind.String(), "found")

	subject := st.Subject()
	res := b.engine.Bind(subject)
	snapshot := sess.Clone()
	if err := b.sessions.Merge(ctx, senderID(c), stepState(res.Step), res.Merge); err != nil {
		return fmt.Errorf("bind subject: %w", err)
	}
	state.Forget(c)
	metrics.RecordTransition(res.From.String(), res.Step.String(), "bind")
	logger.Info(ctx, logger.CompSurvey, "search",
		slog.String("kind", q.Kind.String()),
		slog.String("outcome", "found"),
		slog.String("unique_id", subject.UniqueID),
	)

	if err := c.Send(studentCard(subject)); err != nil {
		b.rollback(c, snapshot)
		return err
	}
	if err := b.render(c, res.Step, res.Hint); err != nil {
		b.rollback(c, snapshot)
		return err
	}
	return nil
}
