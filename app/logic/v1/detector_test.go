package v1_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/rowdybard/banterbox/app/logic/v1"
	"github.com/rowdybard/banterbox/app/store/memstore"
	"github.com/rowdybard/banterbox/pkg/types"
)

func newDetector(events *memstore.ContextEventStore, responses *memstore.PriorResponseStore) *v1.DirectQuestionDetectorLogic {
	return v1.NewDirectQuestionDetectorWithDeps(context.Background(), events, responses, nil, fixedNow)
}

func seedResponse(t *testing.T, responses *memstore.PriorResponseStore, id, text string, wasDirect bool, age time.Duration) {
	t.Helper()
	createdAt := testClock.Add(-age)
	err := responses.Create(context.Background(), &types.PriorResponse{
		ID:                id,
		OwnerID:           "streamer-1",
		ScopeID:           "twitch:chan1",
		ResponseText:      text,
		ResponseKind:      types.RESPONSE_KIND_CONTEXTUAL,
		WasDirectQuestion: wasDirect,
		CreatedAt:         createdAt.Unix(),
		ExpiresAt:         createdAt.Add(types.PRIOR_RESPONSE_TTL).Unix(),
	})
	require.NoError(t, err)
}

func seedEvent(t *testing.T, events *memstore.ContextEventStore, id string, eventType types.EventType, scopeID, text string, age time.Duration) {
	t.Helper()
	createdAt := testClock.Add(-age)
	err := events.Create(context.Background(), &types.ContextEvent{
		ID:           id,
		OwnerID:      "streamer-1",
		ScopeID:      scopeID,
		EventType:    eventType,
		Payload:      types.EventPayload{Type: eventType},
		OriginalText: text,
		Importance:   types.IMPORTANCE_MIN,
		CreatedAt:    createdAt.Unix(),
		ExpiresAt:    createdAt.Add(types.CONTEXT_EVENT_TTL).Unix(),
	})
	require.NoError(t, err)
}

func TestClassifyThreshold(t *testing.T) {
	detector := newDetector(memstore.NewContextEventStore(), memstore.NewPriorResponseStore())

	testCases := []struct {
		name          string
		message       string
		wantDirect    bool
		minConfidence int
	}{
		{
			// pattern match plus question format lands exactly on the threshold
			name:          "pattern with question mark",
			message:       "What did you say?",
			wantDirect:    true,
			minConfidence: 5,
		},
		{
			name:       "question mark alone is not enough",
			message:    "anyone playing ranked tonight?",
			wantDirect: false,
		},
		{
			name:       "plain chatter",
			message:    "lol that was wild",
			wantDirect: false,
		},
		{
			name:          "repeat request",
			message:       "can you repeat that?",
			wantDirect:    true,
			minConfidence: 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := detector.Classify("streamer-1", "twitch:chan1", tc.message)
			assert.Equal(t, tc.wantDirect, result.IsDirectQuestion)
			if tc.minConfidence > 0 {
				assert.GreaterOrEqual(t, result.Confidence, tc.minConfidence)
			}
		})
	}
}

func TestClassifyDirectQuestionAlwaysResponds(t *testing.T) {
	detector := newDetector(memstore.NewContextEventStore(), memstore.NewPriorResponseStore())

	// lands exactly on the threshold; still must force a response
	result := detector.Classify("streamer-1", "twitch:chan1", "What did you say?")
	assert.Equal(t, types.DIRECT_QUESTION_THRESHOLD, result.Confidence)
	assert.True(t, result.IsDirectQuestion)
	assert.True(t, result.ShouldAlwaysRespond)

	// below the threshold nothing is forced
	result = detector.Classify("streamer-1", "twitch:chan1", "anyone playing ranked tonight?")
	assert.False(t, result.IsDirectQuestion)
	assert.False(t, result.ShouldAlwaysRespond)
}

func TestClassifyScoreMonotonicity(t *testing.T) {
	detector := newDetector(memstore.NewContextEventStore(), memstore.NewPriorResponseStore())

	base := detector.Classify("streamer-1", "twitch:chan1", "what did you say")
	withQuestion := detector.Classify("streamer-1", "twitch:chan1", "what did you say?")
	withTemporal := detector.Classify("streamer-1", "twitch:chan1", "what did you just say?")

	assert.Greater(t, withQuestion.Confidence, base.Confidence)
	assert.Greater(t, withTemporal.Confidence, withQuestion.Confidence)
}

func TestClassifyConfidenceClamped(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	seedResponse(t, responses, "r1", "I was saying the dragon fight is tomorrow", true, time.Minute*5)
	seedEvent(t, events, "e1", types.EVENT_TYPE_MESSAGE, "twitch:chan1", "talking about the dragon fight", time.Minute*5)

	detector := newDetector(events, responses)
	result := detector.Classify("streamer-1", "twitch:chan1", "what did you just say about the dragon fight earlier?")

	assert.True(t, result.IsDirectQuestion)
	assert.LessOrEqual(t, result.Confidence, 10)
	assert.True(t, result.ShouldAlwaysRespond)
}

func TestClassifyRelatedResponses(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	seedResponse(t, responses, "r1", "The speedrun record is held by cheese", true, time.Minute*10)
	seedResponse(t, responses, "r2", "good morning everyone", false, time.Hour*3)

	detector := newDetector(events, responses)
	result := detector.Classify("streamer-1", "twitch:chan1", "wait who holds the speedrun record?")

	require.NotEmpty(t, result.RelatedResponses)
	assert.Equal(t, "r1", result.RelatedResponses[0].ID)
}

func TestClassifyRelatedPhraseMatching(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	// no shared long words, no recency bonus; only the response's key phrase
	// quoted inside the message connects the two
	seedResponse(t, responses, "r1", "the cat ate it on cam", false, time.Minute*90)

	detector := newDetector(events, responses)
	result := detector.Classify("streamer-1", "twitch:chan1", "wait, did you say 'the cat ate' something?")

	require.Len(t, result.RelatedResponses, 1)
	assert.Equal(t, "r1", result.RelatedResponses[0].ID)
}

func TestClassifySpecificReferenceBeyondRelated(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	// too stale and too dissimilar to clear the relevance floor, but still
	// inside the detection window for the reference scan
	seedResponse(t, responses, "r1", "the gizmo arrived", false, time.Minute*90)

	detector := newDetector(events, responses)
	result := detector.Classify("streamer-1", "twitch:chan1", "what did you say about the gizmo?")

	// pattern(4) + specific reference(2) + question(1)
	assert.Equal(t, 7, result.Confidence)
	assert.Empty(t, result.RelatedResponses)
	assert.Contains(t, result.Reasoning, "references specific recent content")
}

func TestClassifyStorageUnavailableFallback(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	events.SetFailing(true)
	responses.SetFailing(true)

	detector := newDetector(events, responses)
	result := detector.Classify("streamer-1", "twitch:chan1", "What did you say?")

	// message-level signals still score, history signals are dropped
	assert.True(t, result.IsDirectQuestion)
	assert.Empty(t, result.RelatedResponses)
	assert.Contains(t, result.Reasoning, "history unavailable, scored on message signals only")
}

// A viewer asks about something the streamer was just talking about; the
// detector should connect the question to the stored exchange.
func TestClassifyFollowUpQuestion(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()

	seedEvent(t, events, "e1", types.EVENT_TYPE_VOICE_UTTERANCE, "twitch:chan1", "I'm thinking about a red car", time.Minute*3)
	seedResponse(t, responses, "r1", "Probably red", true, time.Minute*2)

	detector := newDetector(events, responses)
	result := detector.Classify("streamer-1", "twitch:chan1", "what car was I thinking about?")

	assert.True(t, result.IsDirectQuestion)
	assert.GreaterOrEqual(t, result.Confidence, types.DIRECT_QUESTION_THRESHOLD)
}
