package telegram

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
)

// handleText runs free text through the assistant and sends every assistant
// turn of the reply. The answer turn carries the rating keyboard.
func (h *Handler) handleText(text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		reply, err := h.assistant.Ask(ctx, sessionID(chatID), text)
		if err != nil {
			return err
		}

		first := true
		for _, turn := range reply.Turns {
			if turn.Content == "" || turn.Role == entities.RoleUser {
				continue
			}

			msg := newPlainMessage(chatID, turn.Content)
			if first && reply.Answered {
				msg.ReplyMarkup = buildFeedbackKeyboard()
			}
			first = false

			if err := h.send(msg); err != nil {
				return err
			}
		}

		h.logger.Debug("reply sent",
			zap.Int64("chat_id", chatID),
			zap.String("kind", string(reply.Kind)),
		)
		return nil
	}
}

func (h *Handler) handleHistory() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		turns, err := h.assistant.History(ctx, sessionID(chatID))
		if err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, formatHistory(turns)))
	}
}

func (h *Handler) handlePending() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		pending, err := h.assistant.Pending(ctx, sessionID(chatID))
		if err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, formatPending(pending)))
	}
}

func (h *Handler) handleReset() HandlerFunc {
	return func(_ context.Context, chatID int64) error {
		msg := newPlainMessage(chatID, msgResetPrompt)
		msg.ReplyMarkup = buildResetKeyboard()
		return h.send(msg)
	}
}

// handleFacts toggles the daily fact subscription: /facts on|off.
func (h *Handler) handleFacts(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		switch strings.ToLower(strings.TrimSpace(args)) {
		case "on":
			if err := h.facts.Subscribe(ctx, chatID); err != nil {
				return err
			}
			return h.send(newPlainMessage(chatID, msgFactsOn))
		case "off":
			if err := h.facts.Unsubscribe(ctx, chatID); err != nil {
				return err
			}
			return h.send(newPlainMessage(chatID, msgFactsOff))
		default:
			return h.send(newPlainMessage(chatID, msgFactsUsage))
		}
	}
}

func (h *Handler) handleFact() HandlerFunc {
	return func(_ context.Context, chatID int64) error {
		fact, ok := h.facts.Random()
		if !ok {
			return h.send(newPlainMessage(chatID, msgNoFacts))
		}
		return h.send(newPlainMessage(chatID, formatFact(fact)))
	}
}
