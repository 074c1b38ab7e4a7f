package bot

import (
	"github.com/m3rciful/kuafsurvey/core/telegram/keyboard"
	"github.com/m3rciful/kuafsurvey/internal/survey"

	tele "gopkg.in/telebot.v4"
)

// Callback keys.
const (
	cbAnswer             = "ans"
	cbBack               = "back"
	cbCheckSubscription  = "check_subscription"
	cbAdminExport        = "admin_export"
	cbAdminExportStudent = "admin_export_students"
	cbAdminImport        = "admin_import"
	cbAdminStats         = "admin_stats"
	cbAdminAddStaff      = "admin_add_staff"
	cbAdminRemoveStaff   = "admin_remove_staff"
	cbAdminAnnounce      = "admin_announce"
	cbAdminClear         = "admin_clear_surveys"
	cbClearConfirm       = "confirm_clear"
	cbAdminCancel        = "admin_cancel"
)

func answerBtn(step survey.Step, text, code string) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: text, Unique: cbAnswer, Data: step.String() + "|" + code}
}

func backRow(step survey.Step) []keyboard.InlineBtn {
	return []keyboard.InlineBtn{{Text: survey.BackLabel, Unique: cbBack, Data: step.String()}}
}

// promptMarkup renders the controls of a node. Location nodes get a reply
// keyboard; everything else is inline with a back row.
func promptMarkup(n *survey.Node) *tele.ReplyMarkup {
	if n == nil || n.Step == survey.StepSearch {
		return keyboard.RemoveKeyboard()
	}
	back := backRow(n.Step)

	switch n.Kind {
	case survey.KindLocation:
		return keyboard.LocationKeyboard(textSendLocation,
			[]string{survey.SkipLabel},
			[]string{survey.BackLabel},
		)
	case survey.KindYesNo:
		return keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{
				answerBtn(n.Step, textYes, survey.CodeYes),
				answerBtn(n.Step, textNo, survey.CodeNo),
			},
			back,
		)
	case survey.KindYesNoSkippable:
		return keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{
				answerBtn(n.Step, textYes, survey.CodeYes),
				answerBtn(n.Step, textNo, survey.CodeNo),
			},
			[]keyboard.InlineBtn{answerBtn(n.Step, survey.SkipLabel, survey.CodeSkip)},
			back,
		)
	case survey.KindChoiceSet:
		buttons := make([]keyboard.InlineBtn, 0, len(n.Choices))
		for _, c := range n.Choices {
			buttons = append(buttons, answerBtn(n.Step, c.Button, c.Code))
		}
		return keyboard.InlineButtonsNPerRow(buttons, 1, back)
	default:
		return keyboard.InlineButtonsRows(back)
	}
}

func subscribeMarkup(channel string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: textSubscribeButton, URL: "https://t.me/" + channel}},
		[]keyboard.InlineBtn{{Text: textCheckButton, Unique: cbCheckSubscription}},
	)
}

func adminMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnExportResponses, Unique: cbAdminExport},
		{Text: btnExportStudents, Unique: cbAdminExportStudent},
		{Text: btnImport, Unique: cbAdminImport},
		{Text: btnStats, Unique: cbAdminStats},
		{Text: btnAddStaff, Unique: cbAdminAddStaff},
		{Text: btnRemoveStaff, Unique: cbAdminRemoveStaff},
		{Text: btnAnnounce, Unique: cbAdminAnnounce},
		{Text: btnClearSurveys, Unique: cbAdminClear},
	})
}

func clearConfirmMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: btnConfirmClear, Unique: cbClearConfirm, Data: "yes"},
		{Text: btnCancelClear, Unique: cbClearConfirm, Data: "no"},
	})
}

func adminCancelMarkup() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(cbAdminCancel)
}
