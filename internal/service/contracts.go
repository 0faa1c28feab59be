package service

import (
	"context"
	"time"
)

// Clock abstracts wall-clock time so tests can pin the time of day.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// FactNotifier delivers a scheduled Quran fact to a chat.
type FactNotifier interface {
	SendFact(ctx context.Context, chatID int64, fact string) error
}
