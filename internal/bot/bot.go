// Package bot is the Telegram surface of the survey: entry gating, subject
// search, questionnaire prompts and the admin panel.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/m3rciful/kuafsurvey/core/logger"
	tg "github.com/m3rciful/kuafsurvey/core/telegram"
	"github.com/m3rciful/kuafsurvey/core/telegram/callbacks"
	"github.com/m3rciful/kuafsurvey/core/telegram/commands"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"
	"github.com/m3rciful/kuafsurvey/core/telegram/sender"
	"github.com/m3rciful/kuafsurvey/core/telegram/state"
	"github.com/m3rciful/kuafsurvey/internal/exchange"
	"github.com/m3rciful/kuafsurvey/internal/store"
	"github.com/m3rciful/kuafsurvey/internal/survey"

	tele "gopkg.in/telebot.v4"
)

// Records is the part of the record store the bot reads and writes.
type Records interface {
	FindSubject(ctx context.Context, q survey.Query) (store.Student, error)
	Stats(ctx context.Context) (store.Stats, error)
	AddStaff(ctx context.Context, telegramID, addedBy int64, fullname string) (bool, error)
	RemoveStaff(ctx context.Context, telegramID int64) (bool, error)
	ClearSurveys(ctx context.Context) (int, error)
	SurveyUserIDs(ctx context.Context) ([]int64, error)
	exchange.Sources
	exchange.StudentWriter
}

// Gate answers access questions.
type Gate interface {
	IsSuperAdmin(id int64) bool
	IsPrivileged(ctx context.Context, id int64) bool
	HasSubscription(ctx context.Context, id int64) bool
	Channel() string
}

// API is the slice of *tele.Bot used outside a handler context.
type API interface {
	File(file *tele.File) (io.ReadCloser, error)
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Options wire a Bot.
type Options struct {
	Engine    *survey.Engine
	Sessions  state.Manager
	Records   Records
	Gate      Gate
	Completer *survey.Completer
	API       API
	// Dispatcher delivers announcements; nil sends inline.
	Dispatcher *sender.Dispatcher

	TempDir        string
	MaxImportBytes int64

	Now func() time.Time
}

// Bot holds the handlers.
type Bot struct {
	engine     *survey.Engine
	sessions   state.Manager
	records    Records
	gate       Gate
	completer  *survey.Completer
	api        API
	dispatcher *sender.Dispatcher
	tempDir    string
	maxImport  int64
	now        func() time.Time
}

// New validates opts and builds a Bot.
func New(opts Options) (*Bot, error) {
	switch {
	case opts.Engine == nil:
		return nil, fmt.Errorf("bot: engine is required")
	case opts.Sessions == nil:
		return nil, fmt.Errorf("bot: session manager is required")
	case opts.Records == nil:
		return nil, fmt.Errorf("bot: record store is required")
	case opts.Gate == nil:
		return nil, fmt.Errorf("bot: access gate is required")
	case opts.Completer == nil:
		return nil, fmt.Errorf("bot: completer is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Bot{
		engine:     opts.Engine,
		sessions:   opts.Sessions,
		records:    opts.Records,
		gate:       opts.Gate,
		completer:  opts.Completer,
		api:        opts.API,
		dispatcher: opts.Dispatcher,
		tempDir:    opts.TempDir,
		maxImport:  opts.MaxImportBytes,
		now:        now,
	}, nil
}

// Register binds commands, callbacks and per-state handlers.
func (b *Bot) Register(reg *tg.Registry, fsm *state.Router) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.onStart,
		Description: "So'rovnomani boshlash",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     b.onAdmin,
		Description: "Admin panel",
		AdminOnly:   true,
	})

	routes := map[string]tele.HandlerFunc{
		cbAnswer:             b.onAnswer,
		cbBack:               b.onBack,
		cbCheckSubscription:  b.onCheckSubscription,
		cbAdminExport:        b.privileged(b.onExportResponses),
		cbAdminExportStudent: b.privileged(b.onExportStudents),
		cbAdminImport:        b.superAdmin(b.onImportStart),
		cbAdminStats:         b.privileged(b.onStats),
		cbAdminAddStaff:      b.superAdmin(b.onAddStaffStart),
		cbAdminRemoveStaff:   b.superAdmin(b.onRemoveStaffStart),
		cbAdminAnnounce:      b.superAdmin(b.onAnnounceStart),
		cbAdminClear:         b.superAdmin(b.onClearStart),
		cbClearConfirm:       b.superAdmin(b.onClearConfirm),
		cbAdminCancel:        b.privileged(b.onAdminCancel),
	}
	for key, h := range routes {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	reg.SetCallbackNotFound(b.onStaleCallback)

	steps := make([]state.State, 0, len(survey.Steps()))
	for _, s := range survey.Steps() {
		if s == survey.StepCompleted {
			continue
		}
		steps = append(steps, stepState(s))
	}
	fsm.Handle(b.onStepInput, steps...)
	fsm.Handle(b.onAdminInput, stateAdminImport, stateAdminAddStaff, stateAdminRemoveStaff, stateAdminAnnounce)
	return nil
}

// AllowAdmin reports whether the sender may open the admin panel.
func (b *Bot) AllowAdmin(c tele.Context) bool {
	if c.Sender() == nil {
		return false
	}
	return b.gate.IsPrivileged(tghelpers.BuildContext(c), c.Sender().ID)
}

// DenyAccess answers a rejected admin request.
func (b *Bot) DenyAccess(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: textNoPermission, ShowAlert: true})
	}
	return c.Send(textAccessDenied)
}

func (b *Bot) privileged(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !b.AllowAdmin(c) {
			return b.DenyAccess(c)
		}
		return h(c)
	}
}

func (b *Bot) superAdmin(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil || !b.gate.IsSuperAdmin(c.Sender().ID) {
			return c.Respond(&tele.CallbackResponse{Text: textSuperAdminOnly, ShowAlert: true})
		}
		return h(c)
	}
}

func (b *Bot) onStaleCallback(c tele.Context) error {
	logger.Debug(tghelpers.BuildContext(c), logger.CompTG, "callback.unknown",
		slog.String("cb_key", callbacks.CallbackKey(c)),
	)
	return c.Respond(&tele.CallbackResponse{Text: textStaleButton})
}

func stepState(s survey.Step) state.State { return state.State(s.String()) }

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// respond stops the client spinner; a failure here is not worth surfacing.
func respond(c tele.Context, resp ...*tele.CallbackResponse) {
	if c.Callback() == nil {
		return
	}
	_ = c.Respond(resp...)
}
