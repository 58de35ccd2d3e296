package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/rechargehub/cardflow/internal/apperr"
)

// titles maps event kinds to the headline shown in the operator chat.
var titles = map[string]string{
	KindSignup:            "✨ Nouvelle Inscription",
	KindLogin:             "🔐 Connexion",
	KindVerifyStart:       "🚀 Début Vérification",
	KindVerifyCodeEntered: "🔢 Code Saisi",
	KindVerifyResult:      "✅ Résultat Vérification",
	KindBuyStart:          "🛒 Achat Démarré",
	KindPurchase:          "💳 Paiement Soumis",
	KindPromoStart:        "🎁 Promotion Démarrée",
	KindPromoClaim:        "🎁 Promotion Réclamée",
}

// Telegram publishes events as Markdown messages to a fixed operator chat.
type Telegram struct {
	bot    *telebot.Bot
	chat   *telebot.Chat
	log    *slog.Logger
	nowFn  func() time.Time
	sendTo func(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// NewTelegram builds a Telegram notifier from a bot token and chat id.
func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	if log == nil {
		log = slog.Default()
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: nil,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chat:   &telebot.Chat{ID: chatID},
		log:    log,
		nowFn:  time.Now,
		sendTo: bot.Send,
	}, nil
}

// Publish renders the event and sends it to the operator chat.
func (t *Telegram) Publish(_ context.Context, ev Event) error {
	if _, err := t.sendTo(t.chat, t.render(ev), telebot.ModeMarkdown); err != nil {
		t.log.Error("failed to publish telegram notification",
			slog.String("kind", ev.Kind), slog.Any("error", err))
		return apperr.NewCollaboratorError("telegram", err)
	}

	return nil
}

func (t *Telegram) render(ev Event) string {
	title, ok := titles[ev.Kind]
	if !ok {
		title = fmt.Sprintf("📊 Événement: %s", ev.Kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", title)

	email := ev.UserEmail
	if email == "" {
		email = "Guest"
	}
	fmt.Fprintf(&b, "👤 User: %s\n", email)

	for _, f := range ev.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}

	fmt.Fprintf(&b, "🕐 %s", t.nowFn().Format("02/01/2006 15:04:05"))

	return b.String()
}

// Bot exposes the underlying bot, e.g. for health checks.
func (t *Telegram) Bot() *telebot.Bot {
	return t.bot
}
