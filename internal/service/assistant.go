package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/composer"
	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/interpreter"
	"github.com/aliskhannn/quran-assistant-bot/internal/knowledge"
	"github.com/aliskhannn/quran-assistant-bot/internal/repository"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

const (
	persistFailedNotice = "مشکلی در ذخیره پیام‌ها پیش آمد."
	loadFailedNotice    = "مشکلی در بارگذاری پیام‌های قبلی پیش آمد."
)

var ErrFeedbackTargetNotFound = errors.New("no answer matches the feedback target")

// Kind tells which stage of the pipeline produced a reply.
type Kind string

const (
	KindFact         Kind = "fact"
	KindFactDeclined Kind = "fact_declined"
	KindFrequency    Kind = "word_frequency"
	KindVerse        Kind = "verse"
	KindArithmetic   Kind = "arithmetic"
	KindCompound     Kind = "compound"
	KindExact        Kind = "exact"
	KindCombined     Kind = "combined"
	KindNotFound     Kind = "not_found"
)

// Options tune an Assistant. Zero values select the defaults.
type Options struct {
	MaxChatHistory     int
	MaxQuestionHistory int
	MaxFeedback        int
	Thresholds         knowledge.Thresholds
	SimilarityFloor    float64
	RandomSeed         int64 // 0 seeds from the wall clock
	Location           *time.Location
	Clock              Clock

	// SessionIdleTTL evicts cached sessions unused for this long. Zero keeps
	// them for the lifetime of the Assistant.
	SessionIdleTTL time.Duration
}

// Reply is the outcome of one user submission: the turns appended to the
// chat history, in order. Answered replies are recorded in the question
// history and accept feedback.
type Reply struct {
	Kind     Kind
	Answered bool
	Turns    []entities.ChatTurn
}

// Answer returns the assistant turn that answers the user.
func (r Reply) Answer() entities.ChatTurn {
	for _, t := range r.Turns {
		if t.Role == entities.RoleAssistant {
			return t
		}
	}
	return entities.ChatTurn{}
}

// Assistant answers free-text questions. It owns the static data and one
// state object per session; each session is serialized by its own mutex.
type Assistant struct {
	seed     []entities.KnowledgeEntry
	scorer   *textmatch.Scorer
	composer *composer.Composer
	facts    interpreter.Facts

	arithmetic interpreter.Arithmetic
	frequency  *interpreter.WordFrequency
	verses     *interpreter.VerseLookup

	store  storage.StateStore
	opts   Options
	seed64 int64
	logger *zap.Logger

	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time
}

// NewAssistant wires the matcher over corpus and the knowledge table kb.
func NewAssistant(
	corpus interpreter.Corpus,
	kb *repository.Knowledge,
	store storage.StateStore,
	opts Options,
	logger *zap.Logger,
) *Assistant {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Assistant{
		seed:   kb.Entries,
		scorer: textmatch.NewScorer(textmatch.NewThesaurus(kb.Synonyms), opts.SimilarityFloor),
		composer: composer.New(composer.Messages{
			ClosingRemarks: kb.Messages.ClosingRemarks,
			FactInvitation: kb.Messages.FactInvitation,
			Intros:         kb.Messages.Intros,
			Deferral:       kb.Messages.Deferral,
			FactDecline:    kb.Messages.FactDecline,
		}),
		facts:     interpreter.Facts(kb.Facts),
		frequency: interpreter.NewWordFrequency(corpus),
		verses:    interpreter.NewVerseLookup(corpus),
		store:     store,
		opts:      opts,
		seed64:    seed,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// Ask runs one user submission through the pipeline and records it. Blank
// input is ignored. Storage failures never fail the call; they are logged
// and reported to the user as an extra assistant turn.
func (a *Assistant) Ask(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, nil
	}

	s, loadErr := a.session(ctx, sessionID)
	if loadErr != nil {
		a.logger.Error("failed to load session", zap.String("session_id", sessionID), zap.Error(loadErr))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := a.opts.Clock.Now().In(a.opts.Location)
	firstTurn := !s.hasAssistantTurn()

	res := a.respond(s, text, entities.DayPartAt(now))

	answer := res.text
	if res.answered {
		remark, invitesFact := a.composer.Closing(s.rng)
		answer = composer.WithClosing(answer, remark)
		s.awaitingFact = invitesFact
	}
	if firstTurn {
		if intro := a.composer.Intro(s.rng); intro != "" {
			answer = intro + "\n\n" + answer
		}
	}

	turns := []entities.ChatTurn{
		entities.NewChatTurn(entities.RoleUser, text, now),
		entities.NewChatTurn(entities.RoleAssistant, answer, now),
	}
	s.chat = entities.AppendCapped(s.chat, a.opts.MaxChatHistory, turns...)

	if res.answered {
		s.questions = entities.AppendCapped(s.questions, a.opts.MaxQuestionHistory, entities.QuestionHistoryEntry{
			Question: text,
			Answer:   answer,
			Style:    composer.Classify(res.text),
		})
	}

	a.logger.Debug("answered",
		zap.String("session_id", sessionID),
		zap.String("kind", string(res.kind)),
	)

	notice := ""
	switch {
	case loadErr != nil:
		notice = loadFailedNotice
	default:
		if err := a.persist(ctx, s); err != nil {
			a.logger.Error("failed to persist session", zap.String("session_id", sessionID), zap.Error(err))
			notice = persistFailedNotice
		}
	}
	if notice != "" {
		n := entities.NewChatTurn(entities.RoleAssistant, notice, now)
		s.chat = entities.AppendCapped(s.chat, a.opts.MaxChatHistory, n)
		turns = append(turns, n)
	}

	return Reply{Kind: res.kind, Answered: res.answered, Turns: turns}, nil
}

type response struct {
	kind     Kind
	text     string
	answered bool
}

// respond tries the interpreters in priority order, then compound
// splitting, then the knowledge search on the whole input.
func (a *Assistant) respond(s *session, text string, part entities.DayPart) response {
	if s.awaitingFact {
		s.awaitingFact = false
		if interpreter.IsAffirmative(text) {
			if fact, ok := a.facts.Random(s.rng); ok {
				return response{kind: KindFact, text: fact, answered: true}
			}
		}
		return response{kind: KindFactDeclined, text: a.composer.FactDecline()}
	}

	if out, ok := a.frequency.Answer(text); ok {
		return response{kind: KindFrequency, text: out, answered: true}
	}

	if out, ok := a.verses.Answer(text); ok {
		return response{kind: KindVerse, text: out, answered: true}
	}

	if a.arithmetic.Detect(text) {
		return response{kind: KindArithmetic, text: a.arithmetic.Answer(text), answered: true}
	}

	if segments := interpreter.SplitCompound(text); segments != nil {
		return a.respondCompound(s, segments, part)
	}

	return a.search(s, text, part)
}

func (a *Assistant) respondCompound(s *session, segments []string, part entities.DayPart) response {
	parts := make([]string, 0, len(segments))
	answered := false

	for i, seg := range segments {
		var out string
		if a.arithmetic.Detect(seg) {
			out = a.arithmetic.Answer(seg)
			answered = true
		} else {
			r := a.search(s, seg, part)
			out = r.text
			answered = answered || r.answered
		}
		parts = append(parts, fmt.Sprintf("%d. «%s»\n%s", i+1, seg, out))
	}

	return response{kind: KindCompound, text: strings.Join(parts, "\n\n"), answered: answered}
}

// search runs the knowledge search. Unanswerable input is queued as a
// pending question and added to the knowledge base without answers.
func (a *Assistant) search(s *session, text string, part entities.DayPart) response {
	res := s.base.Search(text)

	switch res.Kind {
	case knowledge.MatchExact:
		if out, ok := composer.SelectAnswer(s.rng, res.Entries[0], s.style, part); ok {
			return response{kind: KindExact, text: out, answered: true}
		}
	case knowledge.MatchCombined:
		if out, ok := composer.Combine(s.rng, res.Entries, s.style, part); ok {
			return response{kind: KindCombined, text: out, answered: true}
		}
	}

	s.queuePending(text)
	s.base.Append(text)
	return response{kind: KindNotFound, text: a.composer.Deferral()}
}

// Feedback rates a displayed answer. The answer is matched by exact text
// against the question history, most recent first. Positive feedback makes
// the answer's style the preferred one; negative feedback queues the
// question again.
func (a *Assistant) Feedback(ctx context.Context, sessionID, answer string, positive bool) error {
	s, err := a.session(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := len(s.questions) - 1; i >= 0; i-- {
		if s.questions[i].Answer == answer {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrFeedbackTargetNotFound
	}

	q := s.questions[idx]
	style := q.Style
	if style == entities.StyleUnset {
		style = composer.Classify(q.Answer)
	}

	kind := entities.FeedbackNegative
	if positive {
		kind = entities.FeedbackPositive
		s.style = style
	} else {
		s.queuePending(q.Question)
	}

	s.feedback = entities.AppendCapped(s.feedback, a.opts.MaxFeedback, entities.FeedbackRecord{
		Question: q.Question,
		Response: q.Answer,
		Feedback: kind,
		Style:    style,
	})

	if err := a.persist(ctx, s); err != nil {
		a.logger.Error("failed to persist feedback", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("persist feedback: %w", err)
	}
	return nil
}

// History returns a copy of the session's chat history.
func (a *Assistant) History(ctx context.Context, sessionID string) ([]entities.ChatTurn, error) {
	s, err := a.session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.ChatTurn(nil), s.chat...), nil
}

// QuestionHistory returns a copy of the answered questions of the session.
func (a *Assistant) QuestionHistory(ctx context.Context, sessionID string) ([]entities.QuestionHistoryEntry, error) {
	s, err := a.session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.QuestionHistoryEntry(nil), s.questions...), nil
}

// Pending returns the questions waiting for a curated answer.
func (a *Assistant) Pending(ctx context.Context, sessionID string) ([]entities.PendingQuestion, error) {
	s, err := a.session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.PendingQuestion(nil), s.pending...), nil
}

// PreferredStyle returns the style learned from positive feedback.
func (a *Assistant) PreferredStyle(ctx context.Context, sessionID string) (entities.ResponseStyle, error) {
	s, err := a.session(ctx, sessionID)
	if err != nil {
		return entities.StyleUnset, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style, nil
}

// Reset clears the conversation of a session. Learned knowledge, feedback
// and pending questions are kept.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	s, err := a.session(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chat = nil
	s.questions = nil
	s.awaitingFact = false

	if err := a.persist(ctx, s); err != nil {
		return fmt.Errorf("persist reset: %w", err)
	}
	return nil
}
