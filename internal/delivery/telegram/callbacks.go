package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	data := decodeCallback(cb.Data)

	var notice string
	switch data.Action {
	case actionFeedback:
		notice = h.handleFeedbackCallback(ctx, cb, data)
	case actionReset:
		h.handleResetCallback(ctx, cb, data)
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, notice)
}

func (h *Handler) handleFeedbackCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) string {
	var positive bool
	switch data.param(0) {
	case feedbackUp:
		positive = true
	case feedbackDown:
	default:
		h.logger.Warn("invalid feedback callback", zap.String("data", data.Raw))
		return ""
	}

	chatID := cb.Message.Chat.ID
	err := h.assistant.Feedback(ctx, sessionID(chatID), cb.Message.Text, positive)
	if errors.Is(err, service.ErrFeedbackTargetNotFound) {
		return msgFeedbackNotAllowed
	}
	if err != nil {
		h.logger.Error("failed to record feedback", zap.Int64("chat_id", chatID), zap.Error(err))
		return msgInternalError
	}

	_ = h.send(tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, emptyKeyboard()))
	return msgFeedbackThanks
}

func (h *Handler) handleResetCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) {
	chatID := cb.Message.Chat.ID

	text := msgResetCancelled
	if data.param(0) == resetConfirm {
		if err := h.assistant.Reset(ctx, sessionID(chatID)); err != nil {
			h.logger.Error("failed to reset session", zap.Int64("chat_id", chatID), zap.Error(err))
			text = msgInternalError
		} else {
			text = msgResetDone
		}
	}

	_ = h.send(tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text))
}

func (h *Handler) answerCallback(id, text string) {
	answer := tgbotapi.NewCallback(id, text)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}
