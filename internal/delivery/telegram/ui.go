package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// buildFeedbackKeyboard builds the rating row attached to answers.
func buildFeedbackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍", buildFeedbackCallback(true)),
			tgbotapi.NewInlineKeyboardButtonData("👎", buildFeedbackCallback(false)),
		),
	)
}

// buildResetKeyboard builds the confirmation keyboard for /reset.
func buildResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ بله، پاک کن", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("❌ انصراف", buildResetCancelCallback()),
		),
	)
}

// emptyKeyboard removes an inline keyboard when used in an edit.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}
