package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot       BotAPI
	logger    *zap.Logger
	assistant AssistantService
	facts     FactService
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	assistant AssistantService,
	facts FactService,
) *Handler {
	return &Handler{
		bot:       bot,
		logger:    logger,
		assistant: assistant,
		facts:     facts,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			_ = h.send(newPlainMessage(chatID, msgWelcome))

		case "help":
			_ = h.send(newPlainMessage(chatID, msgHelp))

		case "history":
			_ = h.withErrorHandling(h.handleHistory())(ctx, chatID)

		case "pending":
			_ = h.withErrorHandling(h.handlePending())(ctx, chatID)

		case "reset":
			_ = h.withErrorHandling(h.handleReset())(ctx, chatID)

		case "facts":
			_ = h.withErrorHandling(h.handleFacts(update.Message.CommandArguments()))(ctx, chatID)

		case "fact":
			_ = h.withErrorHandling(h.handleFact())(ctx, chatID)

		default:
			_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		}

		return
	}

	_ = h.withErrorHandling(h.handleText(update.Message.Text))(ctx, chatID)
}

// SendFact delivers a scheduled fact. It implements service.FactNotifier.
func (h *Handler) SendFact(_ context.Context, chatID int64, fact string) error {
	return h.send(newPlainMessage(chatID, formatFact(fact)))
}

func (h *Handler) sendError(chatID int64, err string) {
	_ = h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}
