// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package bot implements the conversational core: it decodes incoming
// updates, checks channel membership and either delivers the requested film
// or walks the user through joining first.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"go.astrophena.name/filmgate/internal/gate"
	"go.astrophena.name/filmgate/internal/gemini"
	"go.astrophena.name/filmgate/internal/ingest"
	"go.astrophena.name/filmgate/internal/registry"
	"go.astrophena.name/filmgate/internal/telegram"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	listLimit          = 10
)

// Bot ties the registry, the membership gate and the Telegram client
// together. All update handling enters through [Bot.HandleUpdate].
type Bot struct {
	tg       *telegram.Client
	registry *registry.DB
	gate     *gate.Checker
	ingest   *ingest.Ingestor
	gemini   *gemini.Client
	model    string
	ui       *UI
	slog     *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

// session is the short-lived conversational state of a single user. Each
// field is set by one step and consumed by the next; a consumed field is
// cleared immediately.
type session struct {
	// pendingCode is the content code requested while the user wasn't a
	// channel member yet. It is redeemed by the "I've joined" button.
	pendingCode string
	// awaitingQuestion marks that the next free-form message is a question
	// for the model.
	awaitingQuestion bool
}

// Config configures a Bot.
type Config struct {
	// Telegram is the Bot API client.
	Telegram *telegram.Client
	// Registry is the content registry.
	Registry *registry.DB
	// Gate checks membership in the required channel.
	Gate *gate.Checker
	// Ingest consumes feed channel posts.
	Ingest *ingest.Ingestor
	// Gemini is an optional client for free-form questions. When nil, the
	// ask feature is disabled.
	Gemini *gemini.Client
	// GeminiModel is the model used to answer questions. Defaults to
	// gemini-2.5-flash.
	GeminiModel string
	// UI is the static texts and keyboards.
	UI *UI
	// Logger is the logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// New returns a new Bot.
func New(cfg Config) *Bot {
	b := &Bot{
		tg:       cfg.Telegram,
		registry: cfg.Registry,
		gate:     cfg.Gate,
		ingest:   cfg.Ingest,
		gemini:   cfg.Gemini,
		model:    cfg.GeminiModel,
		ui:       cfg.UI,
		slog:     cfg.Logger,
		sessions: make(map[int64]*session),
	}
	if b.model == "" {
		b.model = defaultGeminiModel
	}
	if b.slog == nil {
		b.slog = slog.Default()
	}
	return b
}

// HandleUpdate processes a single update. Updates the bot doesn't care
// about are dropped silently.
func (b *Bot) HandleUpdate(ctx context.Context, upd *telegram.Update) error {
	cmd, ok := decode(upd)
	if !ok {
		b.slog.Debug("ignoring update", "update_id", upd.ID)
		return nil
	}

	if cmd.kind == cmdFeedPost {
		b.ingest.HandlePost(ctx, cmd.post)
		return nil
	}

	b.recordUser(ctx, cmd.from)

	if cmd.callbackID != "" {
		// Ack early so the client stops showing a spinner even if the
		// handler below takes a while.
		if err := b.tg.AnswerCallbackQuery(ctx, cmd.callbackID); err != nil {
			b.slog.Warn("failed to answer callback query", "err", err)
		}
	}

	switch cmd.kind {
	case cmdStart:
		return b.handleStart(ctx, cmd)
	case cmdHelp:
		return b.respond(ctx, cmd, b.ui.Help, b.ui.Main)
	case cmdAsk, cmdAskButton:
		return b.handleAsk(ctx, cmd)
	case cmdFreeText:
		return b.handleFreeText(ctx, cmd)
	case cmdCheckJoin:
		return b.handleCheckJoin(ctx, cmd)
	case cmdListFilms:
		return b.handleListFilms(ctx, cmd)
	case cmdHelpButton:
		return b.respond(ctx, cmd, b.ui.Help, b.ui.Back)
	case cmdBackToMain:
		return b.respond(ctx, cmd, b.ui.Welcome, b.ui.Main)
	}
	return nil
}

func (b *Bot) handleStart(ctx context.Context, cmd command) error {
	if cmd.code == "" {
		b.clearSession(cmd.from.ID)
		return b.respond(ctx, cmd, b.ui.Welcome, b.ui.Main)
	}
	return b.resolve(ctx, cmd, cmd.code)
}

// resolve is the entry point of a content request: check membership, then
// either deliver or park the code and prompt the user to join.
func (b *Bot) resolve(ctx context.Context, cmd command, code string) error {
	code = strings.ToLower(code)
	// A newer request supersedes whatever code was parked before.
	b.takePendingCode(cmd.from.ID)
	if b.gate.Check(ctx, cmd.from.ID) != gate.Member {
		b.setPendingCode(cmd.from.ID, code)
		return b.respond(ctx, cmd, b.ui.JoinPrompt, b.ui.Join)
	}
	return b.deliver(ctx, cmd, code)
}

// deliver looks up code and relays the stored file. Callers must have
// verified membership already.
func (b *Bot) deliver(ctx context.Context, cmd command, code string) error {
	item, err := b.registry.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			// A read failure is indistinguishable from a missing record
			// from the user's point of view.
			b.slog.Error("registry lookup failed", "code", code, "err", err)
		}
		return b.respond(ctx, cmd, b.ui.NotFound, b.ui.Main)
	}

	switch item.Kind {
	case registry.KindDocument:
		err = b.tg.SendDocument(ctx, telegram.SendDocumentParams{
			ChatID:   cmd.chatID,
			Document: item.FileID,
			Caption:  item.Caption,
		})
	default:
		err = b.tg.SendVideo(ctx, telegram.SendVideoParams{
			ChatID:  cmd.chatID,
			Video:   item.FileID,
			Caption: item.Caption,
		})
	}
	if err != nil {
		b.slog.Error("delivery failed", "code", code, "err", err)
		return b.respond(ctx, cmd, b.ui.DeliveryFailed, b.ui.Main)
	}
	b.slog.Info("film delivered", "code", code, "user_id", cmd.from.ID)

	if cmd.messageID != 0 {
		// The user got here from a join prompt; rewrite it so the stale
		// buttons disappear.
		return b.tg.EditMessageText(ctx, telegram.EditMessageTextParams{
			ChatID:    cmd.chatID,
			MessageID: cmd.messageID,
			Text:      b.ui.Delivered(code),
		})
	}
	return nil
}

func (b *Bot) handleCheckJoin(ctx context.Context, cmd command) error {
	if b.gate.Check(ctx, cmd.from.ID) != gate.Member {
		// The pending code stays parked for the next attempt.
		return b.respond(ctx, cmd, b.ui.StillNotMember, b.ui.Join)
	}
	code := b.takePendingCode(cmd.from.ID)
	if code == "" {
		return b.respond(ctx, cmd, b.ui.JoinedOK, b.ui.Main)
	}
	return b.deliver(ctx, cmd, code)
}

func (b *Bot) handleListFilms(ctx context.Context, cmd command) error {
	items, err := b.registry.List(ctx, listLimit)
	if err != nil {
		b.slog.Error("failed to list films", "err", err)
		return b.respond(ctx, cmd, b.ui.ListFailed, b.ui.Back)
	}
	if len(items) == 0 {
		return b.respond(ctx, cmd, b.ui.NoFilms, b.ui.Back)
	}

	var (
		sb   strings.Builder
		rows [][]telegram.InlineKeyboardButton
	)
	sb.WriteString(b.ui.ListHeader)
	for _, item := range items {
		sb.WriteString("\n• ")
		sb.WriteString(item.Title)
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: item.Title, URL: b.ui.StartLink(item.Code)},
		})
	}
	rows = append(rows, b.ui.Back.InlineKeyboard...)

	return b.respond(ctx, cmd, sb.String(), &telegram.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (b *Bot) handleAsk(ctx context.Context, cmd command) error {
	if b.gemini == nil {
		return b.respond(ctx, cmd, b.ui.AskDisabled, b.ui.Main)
	}
	if cmd.text == "" {
		b.setAwaitingQuestion(cmd.from.ID)
		return b.respond(ctx, cmd, b.ui.AskPrompt, b.ui.Back)
	}
	return b.answerQuestion(ctx, cmd, cmd.text)
}

func (b *Bot) handleFreeText(ctx context.Context, cmd command) error {
	if b.gemini != nil && b.takeAwaitingQuestion(cmd.from.ID) {
		return b.answerQuestion(ctx, cmd, cmd.text)
	}
	return b.respond(ctx, cmd, b.ui.Hint, b.ui.Main)
}

func (b *Bot) answerQuestion(ctx context.Context, cmd command, question string) error {
	resp, err := b.gemini.GenerateContent(ctx, b.model, gemini.GenerateContentParams{
		Contents: []*gemini.Content{
			{Parts: []*gemini.Part{{Text: question}}, Role: "user"},
		},
		SystemInstruction: &gemini.Content{
			Parts: []*gemini.Part{{Text: "You are a helpful assistant of a film delivery bot. Answer briefly."}},
		},
	})
	if err != nil {
		b.slog.Error("question answering failed", "err", err)
		return b.respond(ctx, cmd, b.ui.AskFailed, b.ui.Main)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return b.respond(ctx, cmd, b.ui.AskFailed, b.ui.Main)
	}
	return b.respond(ctx, cmd, answer, b.ui.Back)
}

// respond delivers text to the user: button presses edit the message that
// was pressed, everything else gets a fresh message.
func (b *Bot) respond(ctx context.Context, cmd command, text string, kb *telegram.InlineKeyboardMarkup) error {
	if cmd.messageID != 0 {
		return b.tg.EditMessageText(ctx, telegram.EditMessageTextParams{
			ChatID:      cmd.chatID,
			MessageID:   cmd.messageID,
			Text:        text,
			ReplyMarkup: kb,
		})
	}
	return b.tg.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      cmd.chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
}

// recordUser writes an audit record of the interaction. It never blocks the
// request.
func (b *Bot) recordUser(ctx context.Context, u *telegram.User) {
	err := b.registry.UpsertUser(ctx, registry.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
	if err != nil {
		b.slog.Warn("failed to record user", "user_id", u.ID, "err", err)
	}
}

func (b *Bot) session(userID int64) *session {
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{}
		b.sessions[userID] = s
	}
	return s
}

func (b *Bot) setPendingCode(userID int64, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session(userID).pendingCode = code
}

func (b *Bot) takePendingCode(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.session(userID)
	code := s.pendingCode
	s.pendingCode = ""
	return code
}

func (b *Bot) setAwaitingQuestion(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session(userID).awaitingQuestion = true
}

func (b *Bot) takeAwaitingQuestion(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.session(userID)
	awaiting := s.awaitingQuestion
	s.awaitingQuestion = false
	return awaiting
}

func (b *Bot) clearSession(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, userID)
}
