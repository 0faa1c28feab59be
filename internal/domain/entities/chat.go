package entities

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single rendered message of the conversation.
type ChatTurn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // HH:MM
}

// NewChatTurn stamps content with the wall-clock time of now.
func NewChatTurn(role Role, content string, now time.Time) ChatTurn {
	return ChatTurn{
		Role:      role,
		Content:   content,
		Timestamp: now.Format("15:04"),
	}
}

// QuestionHistoryEntry maps a displayed answer back to the question it
// answered. Style is the class of the answer body, without intro or closing.
type QuestionHistoryEntry struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Style    ResponseStyle `json:"style,omitempty"`
}

type FeedbackKind string

const (
	FeedbackPositive FeedbackKind = "positive"
	FeedbackNegative FeedbackKind = "negative"
)

type FeedbackRecord struct {
	Question string        `json:"question"`
	Response string        `json:"response"`
	Feedback FeedbackKind  `json:"feedback"`
	Style    ResponseStyle `json:"style"`
}

const PendingStatusNew = "new"

// PendingQuestion is a question waiting for a curated answer.
type PendingQuestion struct {
	Question string `json:"question"`
	Status   string `json:"status"`
}

// ResponseStyle is the coarse classification of an answer text.
type ResponseStyle string

const (
	StyleUnset    ResponseStyle = ""
	StyleShort    ResponseStyle = "short"
	StyleDetailed ResponseStyle = "detailed"
	StyleFormal   ResponseStyle = "formal"
	StyleCasual   ResponseStyle = "casual"
)

// Valid reports whether s is one of the known styles or unset.
func (s ResponseStyle) Valid() bool {
	switch s {
	case StyleUnset, StyleShort, StyleDetailed, StyleFormal, StyleCasual:
		return true
	default:
		return false
	}
}

// AppendCapped appends items to s and drops the oldest elements so that the
// result never exceeds limit. A non-positive limit disables the cap.
func AppendCapped[T any](s []T, limit int, items ...T) []T {
	s = append(s, items...)
	if limit > 0 && len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}
