package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/service"
)

// BotAPI is the subset of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type AssistantService interface {
	Ask(ctx context.Context, sessionID, text string) (service.Reply, error)
	Feedback(ctx context.Context, sessionID, answer string, positive bool) error
	History(ctx context.Context, sessionID string) ([]entities.ChatTurn, error)
	Pending(ctx context.Context, sessionID string) ([]entities.PendingQuestion, error)
	Reset(ctx context.Context, sessionID string) error
}

type FactService interface {
	Random() (string, bool)
	Subscribe(ctx context.Context, chatID int64) error
	Unsubscribe(ctx context.Context, chatID int64) error
}
