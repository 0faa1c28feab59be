package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/repository"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

const (
	testIntro    = "سلام! من دستیار قرآنی هستم."
	testClosing  = "سوال دیگه‌ای داری؟"
	testDeferral = "هنوز پاسخی برای این سوال ندارم."
	testDecline  = "باشه، هر وقت خواستی بگو."
	testInvite   = "دوست داری یه دانستنی قرآنی بشنوی؟"
	fajrQuestion = "نماز صبح چند رکعت است؟"
	fajrAnswer   = "نماز صبح دو رکعت است."
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }

func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type failingStore struct {
	*storage.MemoryStore
	loadErr error
	saveErr error
}

func (s *failingStore) Load(ctx context.Context, session, key string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.MemoryStore.Load(ctx, session, key)
}

func (s *failingStore) SaveAll(ctx context.Context, session string, values map[string][]byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.SaveAll(ctx, session, values)
}

func testKnowledge() *repository.Knowledge {
	return &repository.Knowledge{
		Entries: []entities.KnowledgeEntry{
			{
				Question: fajrQuestion,
				Keywords: []string{"نماز", "صبح", "رکعت", "چند"},
				Answers:  []entities.Answer{entities.TextAnswer(fajrAnswer)},
			},
			{
				Question: "نماز ظهر چند رکعت است؟",
				Keywords: []string{"نماز", "ظهر", "رکعت", "چند"},
				Answers:  []entities.Answer{entities.TextAnswer("نماز ظهر چهار رکعت است.")},
			},
			{
				Question: "روزه چیست؟",
				Keywords: []string{"روزه", "چیست"},
				Answers:  []entities.Answer{entities.TextAnswer("روزه خودداری از خوردن و آشامیدن است.")},
			},
			{
				Question: "سلام",
				Keywords: []string{"سلام"},
				Answers: []entities.Answer{{
					TimeBased: true,
					Morning:   "صبح بخیر",
					Night:     "شب بخیر",
				}},
			},
		},
		Synonyms: map[string][]string{"روزه": {"صوم"}},
		Facts:    []string{"سوره کوثر کوتاه‌ترین سوره قرآن است."},
		Messages: repository.Messages{
			ClosingRemarks: []string{testClosing},
			Intros:         []string{testIntro},
			Deferral:       testDeferral,
			FactDecline:    testDecline,
		},
	}
}

func newTestAssistant(t *testing.T, kb *repository.Knowledge, store storage.StateStore, opts Options) *Assistant {
	t.Helper()

	corpus, err := repository.NewQuranRepository("")
	require.NoError(t, err)

	if opts.Clock == nil {
		opts.Clock = fixedClock{time.Date(2026, 3, 1, 22, 15, 0, 0, time.UTC)}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	opts.RandomSeed = 42

	return NewAssistant(corpus, kb, store, opts, zap.NewNop())
}

func TestAskExactMatchScenario(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	a := newTestAssistant(t, testKnowledge(), store, Options{})

	reply, err := a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.Equal(t, KindExact, reply.Kind)
	require.Len(t, reply.Turns, 2)

	assert.Equal(t, entities.RoleUser, reply.Turns[0].Role)
	assert.Equal(t, fajrQuestion, reply.Turns[0].Content)
	assert.Equal(t, "22:15", reply.Turns[0].Timestamp)

	// First turn of the session carries the introduction.
	assert.Equal(t, testIntro+"\n\n"+fajrAnswer+"\n\n"+testClosing, reply.Answer().Content)

	history, err := a.QuestionHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, fajrQuestion, history[0].Question)
	assert.Equal(t, reply.Answer().Content, history[0].Answer)

	reply, err = a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.Equal(t, fajrAnswer+"\n\n"+testClosing, reply.Answer().Content)

	data, err := store.Load(ctx, "s1", KeyChatHistory)
	require.NoError(t, err)
	var chat []entities.ChatTurn
	require.NoError(t, json.Unmarshal(data, &chat))
	assert.Len(t, chat, 4)
}

func TestAskCombinedMatchKeepsBaseOrder(t *testing.T) {
	a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{})

	reply, err := a.Ask(context.Background(), "s1", "نمار صبح چند رکعت")
	require.NoError(t, err)
	assert.Equal(t, KindCombined, reply.Kind)

	content := reply.Answer().Content
	fajr := strings.Index(content, fajrAnswer)
	dhuhr := strings.Index(content, "نماز ظهر چهار رکعت است.")
	require.GreaterOrEqual(t, fajr, 0)
	require.GreaterOrEqual(t, dhuhr, 0)
	assert.Less(t, fajr, dhuhr)
}

func TestAskNotFoundQueuesPendingQuestion(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	a := newTestAssistant(t, testKnowledge(), store, Options{})

	const question = "کتابخانه ملی کجاست"

	reply, err := a.Ask(ctx, "s1", question)
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, reply.Kind)
	assert.True(t, strings.HasSuffix(reply.Answer().Content, testDeferral))

	pending, err := a.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []entities.PendingQuestion{{Question: question, Status: "new"}}, pending)

	history, err := a.QuestionHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// A fresh assistant reloads the queued question from the store; asking
	// again hits the unanswered entry and is deferred once more.
	b := newTestAssistant(t, testKnowledge(), store, Options{})
	reply, err = b.Ask(ctx, "s1", question)
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, reply.Kind)
	assert.Equal(t, testDeferral, reply.Answer().Content)

	pending, err = b.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAskInterpreters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		want  string
	}{
		{"arithmetic", "10 - 2 * 3", KindArithmetic, "برابر است با 4"},
		{"linear equation", "x + 5 = 10", KindArithmetic, "x = 5"},
		{"division by zero", "۵ تقسیم بر ۰", KindArithmetic, "خطا در محاسبه"},
		{"word frequency", "الله چند بار در قرآن تکرار شده؟", KindFrequency, "5 بار"},
		{"verse", "آیه ۱ در سوره ۱۱۲", KindVerse, "یکتا"},
		{"compound", "نماز صبح چند رکعت است و روزه چیست", KindCompound, "روزه خودداری"},
		{"time variant", "سلام", KindExact, "شب بخیر"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{})

			reply, err := a.Ask(context.Background(), "s1", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, reply.Kind)
			assert.Contains(t, reply.Answer().Content, tt.want)
		})
	}
}

func TestCompoundWithoutAnswersIsNotAnswered(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{})

	reply, err := a.Ask(ctx, "s1", "کتابخانه ملی کجاست و موزه ایران کجاست")
	require.NoError(t, err)
	assert.Equal(t, KindCompound, reply.Kind)
	assert.False(t, reply.Answered)

	err = a.Feedback(ctx, "s1", reply.Answer().Content, true)
	assert.ErrorIs(t, err, ErrFeedbackTargetNotFound)

	reply, err = a.Ask(ctx, "s1", "کتابخانه ملی کجاست و روزه چیست")
	require.NoError(t, err)
	assert.True(t, reply.Answered)
	require.NoError(t, a.Feedback(ctx, "s1", reply.Answer().Content, true))
}

func TestAskIgnoresBlankInput(t *testing.T) {
	a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{})

	reply, err := a.Ask(context.Background(), "s1", "   ")
	require.NoError(t, err)
	assert.Empty(t, reply.Turns)

	history, err := a.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatHistoryCap(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{MaxChatHistory: 4})

	for _, q := range []string{"سلام", fajrQuestion, "روزه چیست؟"} {
		_, err := a.Ask(ctx, "s1", q)
		require.NoError(t, err)
	}

	history, err := a.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, fajrQuestion, history[0].Content)
	assert.Equal(t, "روزه چیست؟", history[2].Content)
}

func TestFactInvitationFlow(t *testing.T) {
	ctx := context.Background()
	kb := testKnowledge()
	kb.Messages.ClosingRemarks = nil
	kb.Messages.FactInvitation = testInvite
	a := newTestAssistant(t, kb, storage.NewMemoryStore(), Options{})

	reply, err := a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(reply.Answer().Content, testInvite))

	reply, err = a.Ask(ctx, "s1", "بله حتماً")
	require.NoError(t, err)
	assert.Equal(t, KindFact, reply.Kind)
	assert.Contains(t, reply.Answer().Content, kb.Facts[0])

	// The fact reply invites again; anything but yes is a decline.
	reply, err = a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.Equal(t, KindFactDeclined, reply.Kind)
	assert.Equal(t, testDecline, reply.Answer().Content)

	reply, err = a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.Equal(t, KindExact, reply.Kind)
}

func TestFeedback(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{})

	reply, err := a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	answer := reply.Answer().Content

	err = a.Feedback(ctx, "s1", "not an answer", true)
	assert.ErrorIs(t, err, ErrFeedbackTargetNotFound)

	require.NoError(t, a.Feedback(ctx, "s1", answer, true))
	style, err := a.PreferredStyle(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entities.StyleShort, style)

	require.NoError(t, a.Feedback(ctx, "s1", answer, false))
	pending, err := a.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []entities.PendingQuestion{{Question: fajrQuestion, Status: "new"}}, pending)
}

func TestPersistenceFailureIsReported(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), saveErr: errors.New("disk full")}
	a := newTestAssistant(t, testKnowledge(), store, Options{})

	reply, err := a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	require.Len(t, reply.Turns, 3)
	assert.Equal(t, persistFailedNotice, reply.Turns[2].Content)

	// In-memory state is kept.
	history, err := a.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 3)

	err = a.Feedback(ctx, "s1", reply.Answer().Content, true)
	assert.Error(t, err)
}

func TestLoadFailureKeepsSessionInMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), loadErr: errors.New("connection refused")}
	a := newTestAssistant(t, testKnowledge(), store, Options{})

	reply, err := a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.Equal(t, KindExact, reply.Kind)
	require.Len(t, reply.Turns, 3)
	assert.True(t, strings.HasPrefix(reply.Answer().Content, testIntro))
	assert.Equal(t, loadFailedNotice, reply.Turns[2].Content)

	// The second turn continues the same conversation.
	reply, err = a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	require.Len(t, reply.Turns, 2)
	assert.Equal(t, fajrAnswer+"\n\n"+testClosing, reply.Answer().Content)

	history, err := a.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 5)

	require.NoError(t, a.Feedback(ctx, "s1", reply.Answer().Content, true))
	style, err := a.PreferredStyle(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entities.StyleShort, style)

	// Nothing was written over the stored state.
	_, err = store.MemoryStore.Load(ctx, "s1", KeyChatHistory)
	assert.ErrorIs(t, err, storage.ErrStateNotFound)
}

func TestLoadFailureOnReadIsReturned(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), loadErr: errors.New("connection refused")}
	a := newTestAssistant(t, testKnowledge(), store, Options{})

	_, err := a.History(ctx, "s1")
	assert.Error(t, err)
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	a := newTestAssistant(t, testKnowledge(), store, Options{Clock: clock, SessionIdleTTL: 10 * time.Minute})

	_, err := a.Ask(ctx, "saved", fajrQuestion)
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	_, err = a.Ask(ctx, "unsaved", fajrQuestion)
	require.NoError(t, err)
	store.saveErr = nil

	clock.Advance(11 * time.Minute)
	_, err = a.Ask(ctx, "other", "سلام")
	require.NoError(t, err)

	a.mu.Lock()
	_, saved := a.sessions["saved"]
	_, unsaved := a.sessions["unsaved"]
	a.mu.Unlock()
	assert.False(t, saved)
	assert.True(t, unsaved, "sessions with unsaved state stay cached")

	// An evicted session is reloaded from the store.
	history, err := a.History(ctx, "saved")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestResetKeepsLearnedKnowledge(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, testKnowledge(), storage.NewMemoryStore(), Options{})

	_, err := a.Ask(ctx, "s1", "کتابخانه ملی کجاست")
	require.NoError(t, err)
	_, err = a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)

	require.NoError(t, a.Reset(ctx, "s1"))

	history, err := a.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	pending, err := a.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// The next turn introduces the assistant again.
	reply, err := a.Ask(ctx, "s1", fajrQuestion)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Answer().Content, testIntro))
}
