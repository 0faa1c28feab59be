package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/knowledge"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

// Names of the persisted session records.
const (
	KeyKnowledgeBase    = "knowledge_base"
	KeyChatHistory      = "chat_history"
	KeyQuestionHistory  = "question_history"
	KeyFeedback         = "feedback"
	KeyPreferredStyle   = "preferred_style"
	KeyPendingQuestions = "pending_questions"
	KeyAwaitingFact     = "awaiting_fact"
)

// session is the mutable state of one conversation. All fields are guarded
// by mu.
type session struct {
	mu sync.Mutex

	id           string
	base         *knowledge.Base
	chat         []entities.ChatTurn
	questions    []entities.QuestionHistoryEntry
	feedback     []entities.FeedbackRecord
	style        entities.ResponseStyle
	pending      []entities.PendingQuestion
	awaitingFact bool

	rng *rand.Rand
	// ephemeral sessions failed to load. They live in memory only and are
	// never persisted, so stored state is not overwritten with a partial
	// snapshot.
	ephemeral bool
	// dirty is set while the last persist failed.
	dirty bool

	// lastUsed is guarded by Assistant.mu.
	lastUsed time.Time
}

func (a *Assistant) newSession(id string) *session {
	return &session{
		id:   id,
		base: knowledge.NewBase(a.seed, a.scorer, a.opts.Thresholds),
		rng:  rand.New(rand.NewSource(a.seed64 ^ int64(hashID(id)))),
	}
}

func hashID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// session returns the cached session or loads it from the store. A session
// whose state cannot be read is cached as ephemeral and returned together
// with the load error; later calls reuse it without retrying until it is
// evicted.
func (a *Assistant) session(ctx context.Context, id string) (*session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.opts.Clock.Now()
	a.evictIdle(now)

	if s, ok := a.sessions[id]; ok {
		s.lastUsed = now
		return s, nil
	}

	s := a.newSession(id)
	err := a.load(ctx, s)
	if err != nil {
		s = a.newSession(id)
		s.ephemeral = true
	}

	s.lastUsed = now
	a.sessions[id] = s
	return s, err
}

// evictIdle drops sessions unused for longer than the idle TTL. Sessions
// holding state the store does not have yet are kept, except ephemeral ones:
// dropping those lets the next call retry the load. Callers hold a.mu.
func (a *Assistant) evictIdle(now time.Time) {
	ttl := a.opts.SessionIdleTTL
	if ttl <= 0 || now.Sub(a.lastSweep) < ttl/2 {
		return
	}
	a.lastSweep = now

	for id, s := range a.sessions {
		if now.Sub(s.lastUsed) < ttl {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		if !s.dirty || s.ephemeral {
			delete(a.sessions, id)
		}
		s.mu.Unlock()
	}
}

func (a *Assistant) load(ctx context.Context, s *session) error {
	var runtime []entities.KnowledgeEntry

	records := []struct {
		key  string
		dest any
	}{
		{KeyKnowledgeBase, &runtime},
		{KeyChatHistory, &s.chat},
		{KeyQuestionHistory, &s.questions},
		{KeyFeedback, &s.feedback},
		{KeyPreferredStyle, &s.style},
		{KeyPendingQuestions, &s.pending},
		{KeyAwaitingFact, &s.awaitingFact},
	}

	for _, r := range records {
		data, err := a.store.Load(ctx, s.id, r.key)
		if errors.Is(err, storage.ErrStateNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", r.key, err)
		}
		if err := json.Unmarshal(data, r.dest); err != nil {
			// A corrupt record is dropped rather than blocking the session.
			a.logger.Warn("discarding unreadable session record",
				zap.String("session_id", s.id),
				zap.String("key", r.key),
				zap.Error(err),
			)
		}
	}

	if !s.style.Valid() {
		s.style = entities.StyleUnset
	}
	s.base.SetRuntime(runtime)
	return nil
}

// persist writes every record of s in one batch. Ephemeral sessions are
// skipped.
func (a *Assistant) persist(ctx context.Context, s *session) error {
	if s.ephemeral {
		return nil
	}

	values := map[string]any{
		KeyKnowledgeBase:    s.base.Runtime(),
		KeyChatHistory:      s.chat,
		KeyQuestionHistory:  s.questions,
		KeyFeedback:         s.feedback,
		KeyPreferredStyle:   s.style,
		KeyPendingQuestions: s.pending,
		KeyAwaitingFact:     s.awaitingFact,
	}

	encoded := make(map[string][]byte, len(values))
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", k, err)
		}
		encoded[k] = data
	}

	if err := a.store.SaveAll(ctx, s.id, encoded); err != nil {
		s.dirty = true
		return fmt.Errorf("save session: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *session) hasAssistantTurn() bool {
	for _, t := range s.chat {
		if t.Role == entities.RoleAssistant {
			return true
		}
	}
	return false
}

// queuePending records question as awaiting an answer unless it already is.
func (s *session) queuePending(question string) {
	for _, p := range s.pending {
		if p.Question == question {
			return
		}
	}
	s.pending = append(s.pending, entities.PendingQuestion{
		Question: question,
		Status:   entities.PendingStatusNew,
	})
}
