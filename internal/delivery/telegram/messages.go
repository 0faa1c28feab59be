// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
)

const (
	msgWelcome = "سلام! 👋\nمن دستیار قرآنی هستم. سؤالت را بپرس، مثلاً:\n" +
		"• نماز صبح چند رکعت است؟\n" +
		"• آیه ۲ در سوره ۱\n" +
		"• الله چند بار در قرآن تکرار شده؟\n" +
		"• ۲ به توان ۳ چند میشه؟\n\n" +
		"برای دیدن دستورها /help را بزن."
	msgHelp = "دستورها:\n\n" +
		"/history — آخرین پیام‌های گفتگو\n" +
		"/pending — سؤال‌هایی که هنوز پاسخ ندارند\n" +
		"/reset — پاک کردن گفتگو\n" +
		"/fact — یک دانستنی قرآنی\n" +
		"/facts on|off — دریافت روزانه دانستنی‌ها\n\n" +
		"زیر هر پاسخ می‌توانی با 👍 یا 👎 نظرت را بگویی."
	msgUnknownCommand     = "دستور ناشناخته است. برای دیدن دستورها /help را بزن."
	msgInternalError      = "مشکلی پیش آمد. لطفاً دوباره تلاش کن."
	msgHistoryEmpty       = "هنوز گفتگویی نداشته‌ایم."
	msgPendingEmpty       = "سؤال بی‌پاسخی در صف نیست."
	msgResetPrompt        = "گفتگو و تاریخچه سؤال‌ها پاک شود؟"
	msgResetDone          = "گفتگو پاک شد. 🧹"
	msgResetCancelled     = "پاک کردن لغو شد."
	msgFactsUsage         = "استفاده: /facts on یا /facts off"
	msgFactsOn            = "از این پس هر روز یک دانستنی قرآنی برایت می‌فرستم. 📖"
	msgFactsOff           = "ارسال روزانه دانستنی‌ها متوقف شد."
	msgNoFacts            = "فعلاً دانستنی‌ای ندارم."
	msgFeedbackThanks     = "ممنون از نظرت!"
	msgFeedbackNotAllowed = "این پیام قابل ارزیابی نیست."
)

const (
	historyTurns   = 10
	maxMessageSize = 4000
)

// newPlainMessage creates a message without a parse mode; answers contain
// user text and are sent verbatim.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// sessionID maps a Telegram chat onto an assistant session.
func sessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

func formatFact(fact string) string {
	return "📖 دانستنی قرآنی:\n\n" + fact
}

// formatHistory renders the last turns of a conversation.
func formatHistory(turns []entities.ChatTurn) string {
	if len(turns) == 0 {
		return msgHistoryEmpty
	}
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}

	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		icon := "🙂"
		if t.Role == entities.RoleAssistant {
			icon = "🤖"
		}
		fmt.Fprintf(&sb, "%s %s\n%s", icon, t.Timestamp, t.Content)
	}
	return truncate(sb.String(), maxMessageSize)
}

func formatPending(pending []entities.PendingQuestion) string {
	if len(pending) == 0 {
		return msgPendingEmpty
	}

	var sb strings.Builder
	sb.WriteString("⏳ سؤال‌های در انتظار پاسخ:\n")
	for i, p := range pending {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, p.Question)
	}
	return truncate(sb.String(), maxMessageSize)
}

// truncate keeps the tail of s within limit runes.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return "…" + string(r[len(r)-limit+1:])
}
