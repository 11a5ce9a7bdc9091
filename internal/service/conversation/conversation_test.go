package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/model/chat"
	"github.com/erickai/companion/backend/internal/model/persona"
)

type fakeRelay struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]chat.Turn
}

func (f *fakeRelay) Complete(_ context.Context, turns []chat.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]chat.Turn(nil), turns...))
	return f.reply, f.err
}

func (f *fakeRelay) lastCall(t *testing.T) []chat.Turn {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

// blockingRelay parks every call until release is closed.
type blockingRelay struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRelay) Complete(ctx context.Context, _ []chat.Turn) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return "ya estoy aquí", nil
}

func newTestConversation(relay Relay) *Conversation {
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return New(relay, Config{Now: func() time.Time { return fixed }})
}

func TestNewStartsWithGreeting(t *testing.T) {
	conv := newTestConversation(&fakeRelay{})
	state := conv.Snapshot()

	require.Len(t, state.Messages, 1)
	assert.Equal(t, chat.RoleAssistant, state.Messages[0].Role)
	assert.Equal(t, persona.Erick().OpeningLine, state.Messages[0].Content)
	assert.Equal(t, emotion.Neutral, state.LastDetectedEmotion)
	assert.False(t, state.Busy)
	assert.False(t, state.CrisisModeActive)
	assert.False(t, state.CrisisAlertVisible)
}

func TestSubmitIgnoresBlankText(t *testing.T) {
	relay := &fakeRelay{reply: "hola"}
	conv := newTestConversation(relay)
	before := conv.Snapshot()

	for _, text := range []string{"", "   ", "\n\t"} {
		outcome := conv.Submit(context.Background(), text)
		assert.False(t, outcome.Accepted)
		assert.Equal(t, RejectEmpty, outcome.Reason)
		assert.Equal(t, before, conv.Snapshot())
	}
	assert.Empty(t, relay.calls)
}

func TestSubmitAppendsUserAndAssistantMessages(t *testing.T) {
	relay := &fakeRelay{reply: "Hey, lamento mucho que estés pasando por esto 💙"}
	conv := newTestConversation(relay)

	outcome := conv.Submit(context.Background(), "me siento muy triste y solo")
	require.True(t, outcome.Accepted)
	assert.False(t, outcome.RelayFailed)

	state := conv.Snapshot()
	require.Len(t, state.Messages, 3)
	assert.False(t, state.Busy)

	user := state.Messages[1]
	assert.Equal(t, chat.RoleUser, user.Role)
	assert.Equal(t, "me siento muy triste y solo", user.Content)
	assert.Equal(t, emotion.Sadness, user.Emotion)

	reply := state.Messages[2]
	assert.Equal(t, chat.RoleAssistant, reply.Role)
	assert.Equal(t, relay.reply, reply.Content)
	assert.Empty(t, reply.Emotion)

	assert.Equal(t, emotion.Sadness, state.LastDetectedEmotion)
	require.NotNil(t, outcome.Analysis)
	assert.Equal(t, emotion.High, outcome.Analysis.Intensity)
}

func TestSubmitBuildsPromptFromPersonaAndHistory(t *testing.T) {
	relay := &fakeRelay{reply: "cuéntame más"}
	conv := newTestConversation(relay)

	conv.Submit(context.Background(), "hola")
	first := relay.lastCall(t)
	require.Len(t, first, 3)
	assert.Equal(t, chat.Turn{Role: chat.RoleSystem, Content: persona.BuildSystemPrompt(persona.Erick())}, first[0])
	assert.Equal(t, chat.Turn{Role: chat.RoleAssistant, Content: persona.Erick().OpeningLine}, first[1])
	assert.Equal(t, chat.Turn{Role: chat.RoleUser, Content: "hola"}, first[2])

	conv.Submit(context.Background(), "estoy nervioso")
	second := relay.lastCall(t)
	require.Len(t, second, 5)
	assert.Equal(t, chat.RoleSystem, second[0].Role)
	assert.Equal(t, chat.Turn{Role: chat.RoleAssistant, Content: "cuéntame más"}, second[3])
	assert.Equal(t, chat.Turn{Role: chat.RoleUser, Content: "estoy nervioso"}, second[4])

	for _, msg := range conv.Snapshot().Messages {
		assert.NotEqual(t, chat.RoleSystem, msg.Role, "system prompt must never be logged")
	}
}

func TestSubmitRecoversFromRelayFailure(t *testing.T) {
	relay := &fakeRelay{err: errors.New("connection refused")}
	conv := newTestConversation(relay)

	outcome := conv.Submit(context.Background(), "hola")
	assert.True(t, outcome.Accepted)
	assert.True(t, outcome.RelayFailed)

	state := conv.Snapshot()
	require.Len(t, state.Messages, 3)
	assert.Equal(t, persona.Erick().FallbackLine, state.Messages[2].Content)
	assert.Equal(t, chat.RoleAssistant, state.Messages[2].Role)
	assert.False(t, state.Busy)
}

type panickingRelay struct{}

func (panickingRelay) Complete(context.Context, []chat.Turn) (string, error) {
	panic("nil model")
}

func TestSubmitRecoversFromRelayPanic(t *testing.T) {
	conv := newTestConversation(panickingRelay{})

	outcome := conv.Submit(context.Background(), "hola")
	assert.True(t, outcome.Accepted)
	assert.True(t, outcome.RelayFailed)

	state := conv.Snapshot()
	assert.False(t, state.Busy)
	require.Len(t, state.Messages, 3)
	assert.Equal(t, persona.Erick().FallbackLine, state.Messages[2].Content)

	_, ok := conv.Reset()
	assert.True(t, ok, "session must not stay stuck after a panic")
}

func TestCrisisModeIsSticky(t *testing.T) {
	relay := &fakeRelay{reply: "aquí estoy"}
	conv := newTestConversation(relay)

	conv.Submit(context.Background(), "ya no quiero vivir")
	state := conv.Snapshot()
	assert.True(t, state.CrisisModeActive)
	assert.True(t, state.CrisisAlertVisible)

	state = conv.CloseCrisisAlert()
	assert.False(t, state.CrisisAlertVisible)
	assert.True(t, state.CrisisModeActive)

	for _, text := range []string{"estoy feliz", "gracias", "", "bien"} {
		conv.Submit(context.Background(), text)
		assert.True(t, conv.Snapshot().CrisisModeActive, "after %q", text)
	}
	assert.False(t, conv.Snapshot().CrisisAlertVisible)

	conv.Submit(context.Background(), "me quiero morir")
	assert.True(t, conv.Snapshot().CrisisAlertVisible, "later crisis signal reopens the alert")

	state, ok := conv.Reset()
	require.True(t, ok)
	assert.False(t, state.CrisisModeActive)
	assert.False(t, state.CrisisAlertVisible)
}

func TestHelpOfferInReplyOnlyShowsAlert(t *testing.T) {
	relay := &fakeRelay{reply: "Oye, creo que hablar con ayuda profesional te vendría bien 💙"}
	conv := newTestConversation(relay)

	conv.Submit(context.Background(), "estoy agobiado")
	state := conv.Snapshot()
	assert.True(t, state.CrisisAlertVisible)
	assert.False(t, state.CrisisModeActive)
}

func TestLastDetectedEmotionIgnoresUnmatchedMessages(t *testing.T) {
	conv := newTestConversation(&fakeRelay{reply: "ok"})

	conv.Submit(context.Background(), "estoy triste")
	assert.Equal(t, emotion.Sadness, conv.Snapshot().LastDetectedEmotion)

	conv.Submit(context.Background(), "hola, qué tal")
	state := conv.Snapshot()
	assert.Equal(t, emotion.Sadness, state.LastDetectedEmotion)
	assert.Equal(t, emotion.Neutral, state.Messages[len(state.Messages)-2].Emotion)

	conv.Submit(context.Background(), "regular")
	assert.Equal(t, emotion.Neutral, conv.Snapshot().LastDetectedEmotion)
}

func TestResetLeavesSingleGreeting(t *testing.T) {
	conv := newTestConversation(&fakeRelay{reply: "ok"})
	conv.Submit(context.Background(), "estoy muy estresado")
	conv.Submit(context.Background(), "ya no quiero vivir")
	oldIDs := map[string]bool{}
	for _, msg := range conv.Snapshot().Messages {
		oldIDs[msg.ID] = true
	}

	state, ok := conv.Reset()
	require.True(t, ok)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, persona.Erick().ResetLine, state.Messages[0].Content)
	assert.False(t, oldIDs[state.Messages[0].ID])
	assert.Equal(t, emotion.Neutral, state.LastDetectedEmotion)
	assert.False(t, state.Busy)
	assert.False(t, state.CrisisModeActive)
	assert.False(t, state.CrisisAlertVisible)
}

func TestSubmitAndResetAreRejectedWhileBusy(t *testing.T) {
	relay := &blockingRelay{entered: make(chan struct{}), release: make(chan struct{})}
	conv := newTestConversation(relay)

	done := make(chan Outcome, 1)
	go func() {
		done <- conv.Submit(context.Background(), "estoy cansado")
	}()
	<-relay.entered

	busy := conv.Snapshot()
	assert.True(t, busy.Busy)
	require.Len(t, busy.Messages, 2)

	second := conv.Submit(context.Background(), "¿sigues ahí?")
	assert.False(t, second.Accepted)
	assert.Equal(t, RejectBusy, second.Reason)

	state, ok := conv.Reset()
	assert.False(t, ok)
	assert.Len(t, state.Messages, 2)

	close(relay.release)
	outcome := <-done
	assert.True(t, outcome.Accepted)
	assert.False(t, outcome.State.Busy)
	assert.Len(t, outcome.State.Messages, 3)
}

func TestMessageIDsAreUnique(t *testing.T) {
	conv := newTestConversation(&fakeRelay{reply: "ok"})
	for i := 0; i < 10; i++ {
		conv.Submit(context.Background(), "hola")
	}
	seen := map[string]bool{}
	for _, msg := range conv.Snapshot().Messages {
		require.False(t, seen[msg.ID], "duplicate id %s", msg.ID)
		seen[msg.ID] = true
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	conv := newTestConversation(&fakeRelay{reply: "ok"})
	state := conv.Snapshot()
	state.Messages[0].Content = "tampered"
	assert.NotEqual(t, "tampered", conv.Snapshot().Messages[0].Content)
}
