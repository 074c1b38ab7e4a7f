package bot

import (
	"fmt"
	"log/slog"

	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/m3rciful/kuafsurvey/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"
	"github.com/m3rciful/kuafsurvey/core/telegram/keyboard"
	"github.com/m3rciful/kuafsurvey/core/telegram/state"
	"github.com/m3rciful/kuafsurvey/internal/metrics"
	"github.com/m3rciful/kuafsurvey/internal/survey"

	tele "gopkg.in/telebot.v4"
)

// onStepInput handles text, location and document messages sent while a
// survey step is active.
func (b *Bot) onStepInput(c tele.Context) error {
	sess, err := state.Load(c, b.sessions)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	step, ok := survey.ParseStep(string(sess.State))
	if !ok {
		return nil
	}
	if step == survey.StepSearch {
		return b.search(c, sess)
	}

	msg := c.Message()
	var in survey.Input
	switch {
	case msg != nil && msg.Location != nil:
		in = survey.Location(msg.Location.Lat, msg.Location.Lng)
	case msg != nil && msg.Document != nil:
		return b.reprompt(c, step)
	default:
		in = survey.Text(c.Text())
	}
	return b.advance(c, sess, step, survey.Answer(in))
}

// onAnswer handles "ans" buttons. The payload names the step the button was
// rendered for, so presses on old prompts are ignored.
func (b *Bot) onAnswer(c tele.Context) error {
	defer respond(c)
	stepName, code, err := callbacks.PayloadPair(c, "|")
	if err != nil {
		return nil
	}
	sess, step, ok, err := b.currentStep(c, stepName)
	if err != nil || !ok {
		return err
	}
	return b.advance(c, sess, step, survey.Answer(survey.Pick(code)))
}

func (b *Bot) onBack(c tele.Context) error {
	defer respond(c)
	sess, step, ok, err := b.currentStep(c, callbacks.CallbackPayload(c))
	if err != nil || !ok {
		return err
	}
	return b.advance(c, sess, step, survey.Back(survey.StepNone))
}

func (b *Bot) currentStep(c tele.Context, stepName string) (*state.Session, survey.Step, bool, error) {
	sess, err := state.Load(c, b.sessions)
	if err != nil {
		return nil, survey.StepNone, false, fmt.Errorf("load session: %w", err)
	}
	step, ok := survey.ParseStep(stepName)
	if !ok || string(sess.State) != stepName || !step.Question() {
		logger.Debug(tghelpers.BuildContext(c), logger.CompSurvey, "callback.stale",
			slog.String("button_step", stepName),
			slog.String("state", string(sess.State)),
		)
		return sess, survey.StepNone, false, nil
	}
	return sess, step, true, nil
}

// advance runs one engine transition, persists it and renders the next
// prompt. A failed render restores the session as it was before the update.
func (b *Bot) advance(c tele.Context, sess *state.Session, step survey.Step, ev survey.Event) error {
	ctx := tghelpers.BuildContext(c)
	answers := survey.Answers(sess.Data).Clone()

	res, err := b.engine.Handle(step, answers, ev)
	if err != nil {
		if survey.IsRejected(err) {
			metrics.RecordRejected(step.String())
			logger.Debug(ctx, logger.CompSurvey, "input.rejected",
				slog.String("step", step.String()),
				logger.Err(err),
			)
			return b.reprompt(c, step)
		}
		return err
	}

	kind := "answer"
	if res.Back {
		kind = "back"
	}
	metrics.RecordTransition(res.From.String(), res.Step.String(), kind)
	logger.Debug(ctx, logger.CompSurvey, "transition",
		slog.String("from", res.From.String()),
		slog.String("to", res.Step.String()),
		slog.String("kind", kind),
		slog.String("hint", res.Hint.String()),
	)

	if res.Completed {
		return b.complete(c, answers.Merge(res.Merge))
	}

	snapshot := sess.Clone()
	if err := b.sessions.Merge(ctx, senderID(c), stepState(res.Step), res.Merge); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	state.Forget(c)

	if c.Callback() == nil && b.isLocationStep(res.From) {
		ack := textAccepted
		if res.Back {
			ack = survey.BackLabel
		}
		if err := c.Send(ack, keyboard.RemoveKeyboard()); err != nil {
			b.rollback(c, snapshot)
			return err
		}
	}
	if err := b.render(c, res.Step, res.Hint); err != nil {
		b.rollback(c, snapshot)
		return err
	}
	return nil
}

func (b *Bot) isLocationStep(s survey.Step) bool {
	n := b.engine.Node(s)
	return n != nil && n.LocationCapable()
}

// render delivers the prompt of step. Edits are only possible for callbacks
// and never for reply keyboards.
func (b *Bot) render(c tele.Context, step survey.Step, hint survey.RenderHint) error {
	n := b.engine.Node(step)
	text := prompts[step]
	markup := promptMarkup(n)

	if n != nil && n.LocationCapable() && hint == survey.HintEdit {
		hint = survey.HintResend
	}
	if c.Callback() == nil {
		hint = survey.HintSend
	}

	switch hint {
	case survey.HintEdit:
		if len(markup.InlineKeyboard) == 0 {
			return c.Edit(text)
		}
		return c.Edit(text, markup)
	case survey.HintResend:
		if err := c.Delete(); err != nil {
			logger.Debug(tghelpers.BuildContext(c), logger.CompTG, "prompt.delete", logger.Err(err))
		}
		return c.Send(text, markup)
	default:
		return c.Send(text, markup)
	}
}

// reprompt repeats the current prompt after rejected input.
func (b *Bot) reprompt(c tele.Context, step survey.Step) error {
	if c.Callback() != nil {
		return nil
	}
	n := b.engine.Node(step)
	text := prompts[step]
	if n != nil && n.Kind != survey.KindFreeText && n.Kind != survey.KindLocation {
		text = textUseButtons + "\n\n" + text
	}
	return c.Send(text, promptMarkup(n))
}

func (b *Bot) complete(c tele.Context, answers survey.Answers) error {
	ctx := tghelpers.BuildContext(c)
	out, err := b.completer.Complete(ctx, senderID(c), answers)
	state.Forget(c)

	attrs := []slog.Attr{
		slog.String("outcome", string(out.Status)),
		slog.String("unique_id", out.Record.UniqueID),
	}
	text := textCompleted
	switch out.Status {
	case survey.StatusSaved:
		if err != nil {
			logger.Warn(ctx, logger.CompSurvey, "survey.completed", append(attrs, logger.Err(err))...)
		} else {
			logger.Info(ctx, logger.CompSurvey, "survey.completed", attrs...)
		}
	case survey.StatusDuplicate:
		text = textAlreadySubmitted
		logger.Info(ctx, logger.CompSurvey, "survey.completed", attrs...)
	default:
		text = textError
		logger.Error(ctx, logger.CompSurvey, "survey.completed", append(attrs, logger.Err(err))...)
	}

	if c.Callback() != nil {
		return c.Edit(text)
	}
	return c.Send(text, keyboard.RemoveKeyboard())
}

// rollback restores snapshot after a failed delivery and tells the user to retry.
func (b *Bot) rollback(c tele.Context, snapshot *state.Session) {
	ctx := tghelpers.BuildContext(c)
	err := b.sessions.Save(ctx, senderID(c), snapshot)
	state.Forget(c)
	logger.Warn(ctx, logger.CompSurvey, "session.rollback",
		slog.String("state", string(snapshot.State)),
		slog.String("status", logger.Status(err)),
		logger.Err(err),
	)
	if sendErr := c.Send(textError); sendErr != nil {
		logger.Debug(ctx, logger.CompTG, "rollback.notify", logger.Err(sendErr))
	}
}
