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

func newCorrelator(events *memstore.ContextEventStore, responses *memstore.PriorResponseStore) *v1.ResponseCorrelatorLogic {
	return v1.NewResponseCorrelatorWithDeps(context.Background(), events, responses, fixedNow)
}

func TestAttachResponse(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	seedEvent(t, events, "e1", types.EVENT_TYPE_MESSAGE, "twitch:chan1", "what build are you running", time.Minute)

	logic := newCorrelator(events, responses)
	outcome := logic.AttachResponse("e1", "Running the crit build tonight")
	require.Equal(t, types.RECORD_STORED, outcome)

	stored, err := events.GetOne(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Running the crit build tonight", stored.ResponseText)
}

func TestAttachResponseValidation(t *testing.T) {
	logic := newCorrelator(memstore.NewContextEventStore(), memstore.NewPriorResponseStore())

	assert.Equal(t, types.RECORD_VALIDATION_FAILED, logic.AttachResponse("", "text"))
	assert.Equal(t, types.RECORD_VALIDATION_FAILED, logic.AttachResponse("e1", ""))
}

func TestAttachResponseStorageUnavailable(t *testing.T) {
	events := memstore.NewContextEventStore()
	events.SetFailing(true)

	logic := newCorrelator(events, memstore.NewPriorResponseStore())
	assert.Equal(t, types.RECORD_STORAGE_UNAVAILABLE, logic.AttachResponse("e1", "text"))
}

func TestRecordResponse(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()

	logic := newCorrelator(events, responses)
	outcome := logic.RecordResponse(v1.RecordResponseArgs{
		OwnerID:           "streamer-1",
		ScopeID:           "twitch:chan1",
		ResponseText:      "The next stream is on Friday",
		SourceQuestion:    "when is the next stream?",
		ResponseKind:      types.RESPONSE_KIND_FACTUAL,
		Confidence:        8,
		WasDirectQuestion: true,
	})
	require.Equal(t, types.RECORD_STORED, outcome)

	listed, err := responses.ListRecent(context.Background(), types.ListPriorResponseOptions{
		OwnerID:  "streamer-1",
		ActiveAt: testClock.Unix(),
	}, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, types.RESPONSE_KIND_FACTUAL, listed[0].ResponseKind)
	assert.Equal(t, 8, listed[0].Confidence)
	assert.True(t, listed[0].WasDirectQuestion)
	assert.Equal(t, testClock.Unix(), listed[0].CreatedAt)
	assert.Equal(t, testClock.Add(types.PRIOR_RESPONSE_TTL).Unix(), listed[0].ExpiresAt)
}

func TestRecordResponseNormalization(t *testing.T) {
	testCases := []struct {
		name           string
		kind           types.ResponseKind
		confidence     int
		wantKind       types.ResponseKind
		wantConfidence int
	}{
		{name: "unknown kind and overshoot", kind: "sarcastic", confidence: 42, wantKind: types.RESPONSE_KIND_CONTEXTUAL, wantConfidence: 10},
		{name: "negative confidence floors at one", kind: types.RESPONSE_KIND_FACTUAL, confidence: -3, wantKind: types.RESPONSE_KIND_FACTUAL, wantConfidence: 1},
		{name: "unset confidence floors at one", kind: types.RESPONSE_KIND_PERSONALITY, confidence: 0, wantKind: types.RESPONSE_KIND_PERSONALITY, wantConfidence: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			responses := memstore.NewPriorResponseStore()
			logic := newCorrelator(memstore.NewContextEventStore(), responses)

			outcome := logic.RecordResponse(v1.RecordResponseArgs{
				OwnerID:      "streamer-1",
				ResponseText: "sure thing",
				ResponseKind: tc.kind,
				Confidence:   tc.confidence,
			})
			require.Equal(t, types.RECORD_STORED, outcome)

			listed, err := responses.ListRecent(context.Background(), types.ListPriorResponseOptions{
				OwnerID:  "streamer-1",
				ActiveAt: testClock.Unix(),
			}, 10)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, tc.wantKind, listed[0].ResponseKind)
			assert.Equal(t, tc.wantConfidence, listed[0].Confidence)
		})
	}
}

func TestRecordResponseValidation(t *testing.T) {
	logic := newCorrelator(memstore.NewContextEventStore(), memstore.NewPriorResponseStore())

	assert.Equal(t, types.RECORD_VALIDATION_FAILED, logic.RecordResponse(v1.RecordResponseArgs{ResponseText: "orphan"}))
	assert.Equal(t, types.RECORD_VALIDATION_FAILED, logic.RecordResponse(v1.RecordResponseArgs{OwnerID: "streamer-1"}))
}

func TestRecordResponseStorageUnavailable(t *testing.T) {
	responses := memstore.NewPriorResponseStore()
	responses.SetFailing(true)

	logic := newCorrelator(memstore.NewContextEventStore(), responses)
	outcome := logic.RecordResponse(v1.RecordResponseArgs{
		OwnerID:      "streamer-1",
		ResponseText: "this will not land",
	})
	assert.Equal(t, types.RECORD_STORAGE_UNAVAILABLE, outcome)
}
